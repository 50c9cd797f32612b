package dto

import (
	"time"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// TransferStockRequest body para POST /api/stock-transfers.
type TransferStockRequest struct {
	InventoryItemID int64 `json:"inventory_item_id" validate:"required,gt=0"`
	FromWarehouseID int64 `json:"from_warehouse_id" validate:"required,gt=0,nefield=ToWarehouseID"`
	ToWarehouseID   int64 `json:"to_warehouse_id" validate:"required,gt=0"`
	Quantity        int64 `json:"quantity" validate:"required,min=1"`
}

// TransferQuery filtros del listado de traslados.
type TransferQuery struct {
	WarehouseID int64 `query:"warehouse_id" validate:"min=0"`
	ItemID      int64 `query:"inventory_item_id" validate:"min=0"`
}

// StockTransferResponse salida de un traslado.
type StockTransferResponse struct {
	ID              int64                 `json:"id"`
	Reference       string                `json:"reference"`
	InventoryItemID int64                 `json:"inventory_item_id"`
	FromWarehouseID int64                 `json:"from_warehouse_id"`
	ToWarehouseID   int64                 `json:"to_warehouse_id"`
	Quantity        int64                 `json:"quantity"`
	InventoryItem   *InventoryItemSummary `json:"inventory_item,omitempty"`
	FromWarehouse   *WarehouseSummary     `json:"from_warehouse,omitempty"`
	ToWarehouse     *WarehouseSummary     `json:"to_warehouse,omitempty"`
	TransferredAt   time.Time             `json:"transferred_at"`
}

// NewStockTransferResponse convierte la entidad.
func NewStockTransferResponse(t *entity.StockTransfer) StockTransferResponse {
	return StockTransferResponse{
		ID:              t.ID,
		Reference:       t.Reference,
		InventoryItemID: t.InventoryItemID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		InventoryItem:   newInventoryItemSummary(t.Item),
		FromWarehouse:   newWarehouseSummary(t.FromWarehouse),
		ToWarehouse:     newWarehouseSummary(t.ToWarehouse),
		TransferredAt:   t.TransferredAt,
	}
}

// NewStockTransferResponses convierte una lista.
func NewStockTransferResponses(list []*entity.StockTransfer) []StockTransferResponse {
	out := make([]StockTransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, NewStockTransferResponse(t))
	}
	return out
}
