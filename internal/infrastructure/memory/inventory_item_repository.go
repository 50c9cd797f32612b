package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación en memoria de InventoryItemRepository.
type InventoryItemRepo struct {
	store *Store
}

func (r *InventoryItemRepo) skuTaken(sku string, exceptID int64) bool {
	for _, it := range r.store.data.items {
		if it.ID != exceptID && it.SKU == sku {
			return true
		}
	}
	return false
}

// Create persiste un artículo y le asigna ID.
func (r *InventoryItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	defer r.store.guard(false)()
	if r.skuTaken(item.SKU, 0) {
		return domain.ErrDuplicate
	}
	item.ID = r.store.data.nextID("inventory_items")
	r.store.data.items[item.ID] = *item
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *InventoryItemRepo) GetByID(_ context.Context, id int64) (*entity.InventoryItem, error) {
	defer r.store.guard(false)()
	it, ok := r.store.data.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// GetBySKU obtiene un artículo por SKU exacto.
func (r *InventoryItemRepo) GetBySKU(_ context.Context, sku string) (*entity.InventoryItem, error) {
	defer r.store.guard(false)()
	for _, it := range r.store.data.items {
		if it.SKU == sku {
			it := it
			return &it, nil
		}
	}
	return nil, nil
}

// Update actualiza un artículo existente.
func (r *InventoryItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	defer r.store.guard(false)()
	if _, ok := r.store.data.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.skuTaken(item.SKU, item.ID) {
		return domain.ErrDuplicate
	}
	r.store.data.items[item.ID] = *item
	return nil
}

// Search filtra artículos (coincidencia parcial sin distinguir mayúsculas) y pagina por ID.
func (r *InventoryItemRepo) Search(_ context.Context, f repository.ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error) {
	defer r.store.guard(false)()
	var list []*entity.InventoryItem
	for _, it := range r.store.data.items {
		if f.Term != "" && !contains(it.Name, f.Term) && !contains(it.SKU, f.Term) && !contains(it.Description, f.Term) {
			continue
		}
		if f.Name != "" && !contains(it.Name, f.Name) {
			continue
		}
		if f.SKU != "" && !contains(it.SKU, f.SKU) {
			continue
		}
		if f.MinPrice != nil && it.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && it.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		it := it
		list = append(list, &it)
	}
	sortByID(list, func(it *entity.InventoryItem) int64 { return it.ID })
	return paginate(list, limit, offset), len(list), nil
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// HasInventory indica si hay stock > 0 o traslados del artículo.
func (r *InventoryItemRepo) HasInventory(_ context.Context, id int64) (bool, error) {
	defer r.store.guard(false)()
	for _, s := range r.store.data.stocks {
		if s.InventoryItemID == id && s.Quantity > 0 {
			return true, nil
		}
	}
	for _, t := range r.store.data.transfers {
		if t.InventoryItemID == id {
			return true, nil
		}
	}
	return false, nil
}

// Delete elimina el artículo y en cascada sus filas de stock.
func (r *InventoryItemRepo) Delete(_ context.Context, id int64) error {
	defer r.store.guard(false)()
	delete(r.store.data.items, id)
	for sid, s := range r.store.data.stocks {
		if s.InventoryItemID == id {
			delete(r.store.data.stocks, sid)
		}
	}
	return nil
}
