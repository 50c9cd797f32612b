package inventory

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el ledger y los traslados.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}

// LowStockNotifier recibe los eventos de stock bajo. Se invoca después del Commit;
// se espera que encole y entregue de forma asíncrona (no debe bloquear ni fallar la mutación).
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, event entity.LowStockEvent)
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

// NotifyLowStock no hace nada.
func (NopNotifier) NotifyLowStock(context.Context, entity.LowStockEvent) {}
