package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// ItemFilter filtros de búsqueda de artículos. Campos vacíos o nil no filtran.
type ItemFilter struct {
	Term     string // busca en nombre, SKU y descripción
	Name     string
	SKU      string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// InventoryItemRepository define el puerto de persistencia para InventoryItem (DIP).
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	Search(ctx context.Context, filter ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error)
	// HasInventory indica si el artículo tiene stock > 0 en alguna bodega o algún traslado.
	HasInventory(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}
