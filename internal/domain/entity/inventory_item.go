package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un artículo del catálogo. SKU es único y se guarda en mayúsculas.
type InventoryItem struct {
	ID          int64
	Name        string
	SKU         string
	Description string
	Price       decimal.Decimal // >= 0
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
