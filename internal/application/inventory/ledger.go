package inventory

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// DefaultLowStockThreshold umbral de stock bajo cuando la configuración no define otro.
const DefaultLowStockThreshold int64 = 10

// LedgerConfig parámetros del ledger de stock.
type LedgerConfig struct {
	LowStockThreshold int64
}

// StockLedger es la fuente de verdad de la cantidad por (bodega, artículo).
// Mantiene la invariante quantity >= 0 y emite eventos de stock bajo después del Commit:
//   - RecordStock notifica por nivel (cada vez que el resultado queda bajo el umbral).
//   - SetQuantity / AdjustQuantity notifican por flanco (solo al cruzar de >= umbral a < umbral).
type StockLedger struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	notifier  LowStockNotifier
	threshold int64
	now       func() time.Time
}

// NewStockLedger construye el ledger. stockRepo debe estar atado al pool (lecturas fuera de tx).
func NewStockLedger(txRunner TxRunner, stockRepo repository.StockRepository, notifier LowStockNotifier, cfg LedgerConfig) *StockLedger {
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StockLedger{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		notifier:  notifier,
		threshold: threshold,
		now:       time.Now,
	}
}

// Threshold devuelve el umbral de stock bajo configurado.
func (l *StockLedger) Threshold() int64 {
	return l.threshold
}

// Get busca el stock por clave compuesta. La ausencia equivale a stock cero: devuelve nil, nil.
func (l *StockLedger) Get(ctx context.Context, warehouseID, itemID int64) (*entity.Stock, error) {
	return l.stockRepo.Get(ctx, warehouseID, itemID)
}

// GetByID obtiene un stock por ID o domain.ErrNotFound.
func (l *StockLedger) GetByID(ctx context.Context, id int64) (*entity.Stock, error) {
	stock, err := l.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	return stock, nil
}

// RecordStock registra una entrada: suma quantity a la fila existente o la crea.
// Notifica siempre que el resultado quede bajo el umbral, aunque ya estuviera bajo.
func (l *StockLedger) RecordStock(ctx context.Context, warehouseID, itemID, quantity int64) (_ *entity.Stock, err error) {
	ctx, span := tracer.Start(ctx, "StockLedger.RecordStock", trace.WithAttributes(
		attribute.Int64("stock.warehouse_id", warehouseID),
		attribute.Int64("stock.item_id", itemID),
		attribute.Int64("stock.quantity", quantity),
	))
	defer func() { endSpan(span, err) }()

	if quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	// Un único upsert: atómico sin transacción explícita.
	stock, err := l.stockRepo.AddQuantity(ctx, warehouseID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	l.loadRefs(ctx, stock)
	if stock.IsBelow(l.threshold) {
		ev := entity.NewLowStockEvent(*stock, l.threshold, l.now())
		l.dispatch(ctx, &ev)
	}
	return stock, nil
}

// SetQuantity fija la cantidad absoluta. Rechaza negativos antes de escribir.
func (l *StockLedger) SetQuantity(ctx context.Context, id, quantity int64) (_ *entity.Stock, err error) {
	ctx, span := tracer.Start(ctx, "StockLedger.SetQuantity", trace.WithAttributes(
		attribute.Int64("stock.id", id),
		attribute.Int64("stock.quantity", quantity),
	))
	defer func() { endSpan(span, err) }()

	if quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	return l.mutate(ctx, id, func(int64) (int64, error) { return quantity, nil })
}

// AdjustQuantity aplica un delta (puede ser negativo). Falla si el resultado sería negativo.
func (l *StockLedger) AdjustQuantity(ctx context.Context, id, delta int64) (_ *entity.Stock, err error) {
	ctx, span := tracer.Start(ctx, "StockLedger.AdjustQuantity", trace.WithAttributes(
		attribute.Int64("stock.id", id),
		attribute.Int64("stock.delta", delta),
	))
	defer func() { endSpan(span, err) }()

	return l.mutate(ctx, id, func(current int64) (int64, error) { return addQuantity(current, delta) })
}

// addQuantity suma sin desbordar int64. Un resultado negativo lo rechaza applyQuantity.
func addQuantity(current, delta int64) (int64, error) {
	if delta > 0 && current > math.MaxInt64-delta {
		return 0, domain.ErrInvalidInput
	}
	return current + delta, nil
}

// mutate bloquea la fila, calcula la nueva cantidad y la aplica en una transacción.
func (l *StockLedger) mutate(ctx context.Context, id int64, next func(current int64) (int64, error)) (*entity.Stock, error) {
	var (
		stock *entity.Stock
		event *entity.LowStockEvent
	)
	err := l.txRunner.Run(ctx, func(stockRepo repository.StockRepository, _ repository.StockTransferRepository) error {
		current, err := stockRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		quantity, err := next(current.Quantity)
		if err != nil {
			return err
		}
		stock, event, err = l.applyQuantity(ctx, stockRepo, current, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.loadRefs(ctx, stock)
	if event != nil {
		event.Stock.Warehouse, event.Stock.Item = stock.Warehouse, stock.Item
	}
	l.dispatch(ctx, event)
	return stock, nil
}

// applyQuantity es el camino único de escritura de cantidad dentro de una tx.
// Devuelve el evento por flanco (o nil) para despacharlo después del Commit.
func (l *StockLedger) applyQuantity(
	ctx context.Context,
	stockRepo repository.StockRepository,
	current *entity.Stock,
	quantity int64,
) (*entity.Stock, *entity.LowStockEvent, error) {
	if quantity < 0 {
		return nil, nil, domain.ErrNegativeQuantity
	}
	updated, err := stockRepo.UpdateQuantity(ctx, current.ID, quantity)
	if err != nil {
		return nil, nil, err
	}
	if updated == nil {
		return nil, nil, domain.ErrNotFound
	}
	if current.Quantity >= l.threshold && updated.Quantity < l.threshold {
		ev := entity.NewLowStockEvent(*updated, l.threshold, l.now())
		return updated, &ev, nil
	}
	return updated, nil, nil
}

// dispatch entrega los eventos al notificador; los que no traen bodega y artículo
// los cargan aquí, ya fuera de la transacción.
func (l *StockLedger) dispatch(ctx context.Context, events ...*entity.LowStockEvent) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if ev.Stock.Warehouse == nil || ev.Stock.Item == nil {
			l.loadRefs(ctx, &ev.Stock)
		}
		l.notifier.NotifyLowStock(ctx, *ev)
	}
}

// loadRefs completa bodega y artículo leyendo fuera de la tx. Si la lectura falla
// el stock se devuelve sin relaciones: la mutación ya está confirmada.
func (l *StockLedger) loadRefs(ctx context.Context, stock *entity.Stock) {
	loaded, err := l.stockRepo.GetByID(ctx, stock.ID)
	if err != nil || loaded == nil {
		return
	}
	stock.Warehouse, stock.Item = loaded.Warehouse, loaded.Item
}

// Delete elimina un registro de stock.
func (l *StockLedger) Delete(ctx context.Context, id int64) error {
	stock, err := l.stockRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if stock == nil {
		return domain.ErrNotFound
	}
	return l.stockRepo.Delete(ctx, id)
}

// List lista stock con filtros opcionales de bodega y artículo.
func (l *StockLedger) List(ctx context.Context, filter repository.StockFilter, limit, offset int) ([]*entity.Stock, int, error) {
	return l.stockRepo.List(ctx, filter, limit, offset)
}

// ListLowStock lista stock bajo el umbral dado; threshold <= 0 usa el configurado.
func (l *StockLedger) ListLowStock(ctx context.Context, threshold int64, limit, offset int) ([]*entity.Stock, int, error) {
	if threshold <= 0 {
		threshold = l.threshold
	}
	return l.stockRepo.ListBelow(ctx, threshold, limit, offset)
}
