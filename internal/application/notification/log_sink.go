package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// LogSink escribe cada evento como warning estructurado.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink de log.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

// Deliver escribe el warning; los nombres de bodega y artículo van si el ledger los cargó.
func (s *LogSink) Deliver(_ context.Context, ev entity.LowStockEvent) error {
	e := s.log.Warn()
	if w := ev.Stock.Warehouse; w != nil {
		e = e.Str("warehouse_name", w.Name)
	}
	if it := ev.Stock.Item; it != nil {
		e = e.Str("item_name", it.Name).Str("sku", it.SKU)
	}
	e.Str("event_id", ev.ID).
		Int64("stock_id", ev.Stock.ID).
		Int64("warehouse_id", ev.Stock.WarehouseID).
		Int64("item_id", ev.Stock.InventoryItemID).
		Int64("quantity", ev.Stock.Quantity).
		Int64("threshold", ev.Threshold).
		Time("occurred_at", ev.OccurredAt).
		Msg("stock bajo detectado")
	return nil
}
