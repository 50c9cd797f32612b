package entity

import "time"

// Stock representa la cantidad de un artículo en una bodega.
// Única por (WarehouseID, InventoryItemID); Quantity nunca es negativa.
// Warehouse e Item solo vienen cargados en las lecturas (nil dentro de una tx).
type Stock struct {
	ID              int64
	WarehouseID     int64
	InventoryItemID int64
	Quantity        int64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Warehouse *WarehouseSummary
	Item      *InventoryItemSummary
}

// IsBelow indica si la cantidad está por debajo del umbral dado.
func (s *Stock) IsBelow(threshold int64) bool {
	return s.Quantity < threshold
}

// WarehouseSummary datos mínimos de la bodega relacionada.
type WarehouseSummary struct {
	ID       int64
	Name     string
	Location string
}

// InventoryItemSummary datos mínimos del artículo relacionado.
type InventoryItemSummary struct {
	ID   int64
	Name string
	SKU  string
}
