package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// CreateInventoryItemRequest entrada para crear un artículo.
type CreateInventoryItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	SKU         string          `json:"sku" validate:"required,min=1,max=255"`
	Description string          `json:"description" validate:"max=1000"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" validate:"required,min=0,max=999999.99"`
}

// UpdateInventoryItemRequest entrada para actualizar; campos nil no cambian.
type UpdateInventoryItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" validate:"omitempty,min=0,max=999999.99"`
}

// InventoryItemQuery filtros del listado (query string).
type InventoryItemQuery struct {
	Search   string `query:"search" validate:"max=255"`
	Name     string `query:"name" validate:"max=255"`
	SKU      string `query:"sku" validate:"max=255"`
	MinPrice string `query:"min_price" validate:"omitempty,numeric"`
	MaxPrice string `query:"max_price" validate:"omitempty,numeric"`
}

// InventoryItemResponse salida de un artículo.
type InventoryItemResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InventoryItemDetailResponse artículo con su stock por bodega.
type InventoryItemDetailResponse struct {
	InventoryItemResponse
	TotalQuantity int64           `json:"total_quantity"`
	Stocks        []StockResponse `json:"stocks"`
}

// NewInventoryItemResponse convierte la entidad.
func NewInventoryItemResponse(it *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		SKU:         it.SKU,
		Description: it.Description,
		Price:       it.Price,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
