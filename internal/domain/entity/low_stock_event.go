package entity

import (
	"time"

	"github.com/google/uuid"
)

// LowStockEvent evento transitorio (no persistido) emitido cuando un stock queda bajo el umbral.
type LowStockEvent struct {
	ID         string
	Stock      Stock // copia del stock después de la mutación
	Threshold  int64
	OccurredAt time.Time
}

// NewLowStockEvent construye el evento con una copia del stock.
func NewLowStockEvent(stock Stock, threshold int64, now time.Time) LowStockEvent {
	return LowStockEvent{
		ID:         uuid.New().String(),
		Stock:      stock,
		Threshold:  threshold,
		OccurredAt: now,
	}
}
