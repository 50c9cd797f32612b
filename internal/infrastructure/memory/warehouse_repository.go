package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación en memoria de WarehouseRepository.
type WarehouseRepo struct {
	store *Store
}

func (r *WarehouseRepo) nameTaken(name string, exceptID int64) bool {
	for _, w := range r.store.data.warehouses {
		if w.ID != exceptID && strings.EqualFold(w.Name, name) {
			return true
		}
	}
	return false
}

// Create persiste una bodega y le asigna ID.
func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	defer r.store.guard(false)()
	if r.nameTaken(w.Name, 0) {
		return domain.ErrDuplicate
	}
	w.ID = r.store.data.nextID("warehouses")
	r.store.data.warehouses[w.ID] = *w
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	defer r.store.guard(false)()
	w, ok := r.store.data.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// GetByName obtiene una bodega por nombre.
func (r *WarehouseRepo) GetByName(_ context.Context, name string) (*entity.Warehouse, error) {
	defer r.store.guard(false)()
	for _, w := range r.store.data.warehouses {
		if strings.EqualFold(w.Name, name) {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	defer r.store.guard(false)()
	if _, ok := r.store.data.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(w.Name, w.ID) {
		return domain.ErrDuplicate
	}
	r.store.data.warehouses[w.ID] = *w
	return nil
}

// ListAll lista todas las bodegas.
func (r *WarehouseRepo) ListAll(_ context.Context) ([]*entity.Warehouse, error) {
	defer r.store.guard(false)()
	return r.all(), nil
}

func (r *WarehouseRepo) all() []*entity.Warehouse {
	list := make([]*entity.Warehouse, 0, len(r.store.data.warehouses))
	for _, w := range r.store.data.warehouses {
		w := w
		list = append(list, &w)
	}
	sortByID(list, func(w *entity.Warehouse) int64 { return w.ID })
	return list
}

// HasInventory indica si hay stock > 0 o traslados que referencian la bodega.
func (r *WarehouseRepo) HasInventory(_ context.Context, id int64) (bool, error) {
	defer r.store.guard(false)()
	for _, s := range r.store.data.stocks {
		if s.WarehouseID == id && s.Quantity > 0 {
			return true, nil
		}
	}
	for _, t := range r.store.data.transfers {
		if t.FromWarehouseID == id || t.ToWarehouseID == id {
			return true, nil
		}
	}
	return false, nil
}

// Delete elimina la bodega y en cascada sus filas de stock.
func (r *WarehouseRepo) Delete(_ context.Context, id int64) error {
	defer r.store.guard(false)()
	delete(r.store.data.warehouses, id)
	for sid, s := range r.store.data.stocks {
		if s.WarehouseID == id {
			delete(r.store.data.stocks, sid)
		}
	}
	return nil
}
