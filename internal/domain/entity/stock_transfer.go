package entity

import "time"

// StockTransfer registro inmutable de un traslado entre bodegas (solo inserción).
// Reference correlaciona el traslado con logs y eventos.
type StockTransfer struct {
	ID              int64
	Reference       string
	InventoryItemID int64
	FromWarehouseID int64
	ToWarehouseID   int64
	Quantity        int64
	TransferredAt   time.Time

	Item          *InventoryItemSummary
	FromWarehouse *WarehouseSummary
	ToWarehouse   *WarehouseSummary
}
