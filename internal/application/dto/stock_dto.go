package dto

import (
	"time"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// RecordStockRequest registra cantidad (suma si la fila ya existe).
type RecordStockRequest struct {
	WarehouseID     int64  `json:"warehouse_id" validate:"required,gt=0"`
	InventoryItemID int64  `json:"inventory_item_id" validate:"required,gt=0"`
	Quantity        *int64 `json:"quantity" validate:"required,min=0"`
}

// SetStockRequest fija la cantidad absoluta. Negativos los rechaza el ledger (422).
type SetStockRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

// AdjustStockRequest cambio relativo de cantidad.
type AdjustStockRequest struct {
	Delta *int64 `json:"delta" validate:"required"`
}

// StockQuery filtros del listado de stock.
type StockQuery struct {
	WarehouseID int64 `query:"warehouse_id" validate:"min=0"`
	ItemID      int64 `query:"inventory_item_id" validate:"min=0"`
}

// LowStockQuery umbral opcional; 0 usa el configurado.
type LowStockQuery struct {
	Threshold int64 `query:"threshold" validate:"min=0"`
}

// WarehouseSummary bodega embebida en stock y traslados.
type WarehouseSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// InventoryItemSummary artículo embebido en stock y traslados.
type InventoryItemSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

func newWarehouseSummary(w *entity.WarehouseSummary) *WarehouseSummary {
	if w == nil {
		return nil
	}
	return &WarehouseSummary{ID: w.ID, Name: w.Name, Location: w.Location}
}

func newInventoryItemSummary(i *entity.InventoryItemSummary) *InventoryItemSummary {
	if i == nil {
		return nil
	}
	return &InventoryItemSummary{ID: i.ID, Name: i.Name, SKU: i.SKU}
}

// StockResponse salida de una fila de stock.
type StockResponse struct {
	ID              int64                 `json:"id"`
	WarehouseID     int64                 `json:"warehouse_id"`
	InventoryItemID int64                 `json:"inventory_item_id"`
	Quantity        int64                 `json:"quantity"`
	LowStock        bool                  `json:"low_stock"`
	Warehouse       *WarehouseSummary     `json:"warehouse,omitempty"`
	InventoryItem   *InventoryItemSummary `json:"inventory_item,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewStockResponse convierte la entidad marcando si está bajo el umbral.
func NewStockResponse(s *entity.Stock, threshold int64) StockResponse {
	return StockResponse{
		ID:              s.ID,
		WarehouseID:     s.WarehouseID,
		InventoryItemID: s.InventoryItemID,
		Quantity:        s.Quantity,
		LowStock:        s.IsBelow(threshold),
		Warehouse:       newWarehouseSummary(s.Warehouse),
		InventoryItem:   newInventoryItemSummary(s.Item),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// NewStockResponses convierte una lista.
func NewStockResponses(list []*entity.Stock, threshold int64) []StockResponse {
	out := make([]StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, NewStockResponse(s, threshold))
	}
	return out
}
