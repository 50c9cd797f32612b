package memory

import (
	"context"
	"math"
	"time"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación en memoria de StockRepository.
type StockRepo struct {
	store *Store
	inTx  bool
}

func (r *StockRepo) find(warehouseID, itemID int64) *entity.Stock {
	for _, s := range r.store.data.stocks {
		if s.WarehouseID == warehouseID && s.InventoryItemID == itemID {
			s := s
			return &s
		}
	}
	return nil
}

// references emula las llaves foráneas de stocks.
func (r *StockRepo) references(warehouseID, itemID int64) error {
	if _, ok := r.store.data.warehouses[warehouseID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.store.data.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un stock por ID con su bodega y artículo.
func (r *StockRepo) GetByID(_ context.Context, id int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	s, ok := r.store.data.stocks[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.withRefs(s), nil
}

// GetByIDForUpdate sin relaciones; Run ya serializa las transacciones.
func (r *StockRepo) GetByIDForUpdate(_ context.Context, id int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	s, ok := r.store.data.stocks[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Get obtiene el stock de un artículo en una bodega.
func (r *StockRepo) Get(_ context.Context, warehouseID, itemID int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	s := r.find(warehouseID, itemID)
	if s == nil {
		return nil, nil
	}
	return r.store.data.withRefs(*s), nil
}

// GetForUpdate como Get pero sin relaciones.
func (r *StockRepo) GetForUpdate(_ context.Context, warehouseID, itemID int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	return r.find(warehouseID, itemID), nil
}

// Create inserta la fila o devuelve la existente.
func (r *StockRepo) Create(_ context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	if existing := r.find(warehouseID, itemID); existing != nil {
		return existing, nil
	}
	return r.insert(warehouseID, itemID, quantity)
}

func (r *StockRepo) insert(warehouseID, itemID, quantity int64) (*entity.Stock, error) {
	if err := r.references(warehouseID, itemID); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	now := time.Now().UTC()
	s := entity.Stock{
		ID:              r.store.data.nextID("stocks"),
		WarehouseID:     warehouseID,
		InventoryItemID: itemID,
		Quantity:        quantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.store.data.stocks[s.ID] = s
	return &s, nil
}

// AddQuantity suma a la fila existente o la crea.
func (r *StockRepo) AddQuantity(_ context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	existing := r.find(warehouseID, itemID)
	if existing == nil {
		return r.insert(warehouseID, itemID, quantity)
	}
	if quantity > math.MaxInt64-existing.Quantity {
		return nil, domain.ErrInvalidInput
	}
	if existing.Quantity+quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	existing.Quantity += quantity
	existing.UpdatedAt = time.Now().UTC()
	r.store.data.stocks[existing.ID] = *existing
	return existing, nil
}

// UpdateQuantity fija la cantidad; devuelve nil si la fila no existe.
func (r *StockRepo) UpdateQuantity(_ context.Context, id, quantity int64) (*entity.Stock, error) {
	defer r.store.guard(r.inTx)()
	s, ok := r.store.data.stocks[id]
	if !ok {
		return nil, nil
	}
	if quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	s.Quantity = quantity
	s.UpdatedAt = time.Now().UTC()
	r.store.data.stocks[id] = s
	return &s, nil
}

// List lista stock filtrado, ordenado por ID.
func (r *StockRepo) List(_ context.Context, filter repository.StockFilter, limit, offset int) ([]*entity.Stock, int, error) {
	defer r.store.guard(r.inTx)()
	return r.collect(func(s entity.Stock) bool {
		if filter.WarehouseID != nil && s.WarehouseID != *filter.WarehouseID {
			return false
		}
		if filter.ItemID != nil && s.InventoryItemID != *filter.ItemID {
			return false
		}
		return true
	}, limit, offset)
}

// ListBelow lista stock con cantidad menor al umbral.
func (r *StockRepo) ListBelow(_ context.Context, threshold int64, limit, offset int) ([]*entity.Stock, int, error) {
	defer r.store.guard(r.inTx)()
	return r.collect(func(s entity.Stock) bool { return s.Quantity < threshold }, limit, offset)
}

func (r *StockRepo) collect(match func(entity.Stock) bool, limit, offset int) ([]*entity.Stock, int, error) {
	var list []*entity.Stock
	for _, s := range r.store.data.stocks {
		if match(s) {
			list = append(list, r.store.data.withRefs(s))
		}
	}
	sortByID(list, func(s *entity.Stock) int64 { return s.ID })
	return paginate(list, limit, offset), len(list), nil
}

// Delete elimina un stock por ID.
func (r *StockRepo) Delete(_ context.Context, id int64) error {
	defer r.store.guard(r.inTx)()
	delete(r.store.data.stocks, id)
	return nil
}
