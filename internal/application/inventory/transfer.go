package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// TransferInput entrada para trasladar stock entre bodegas.
type TransferInput struct {
	FromWarehouseID int64
	ToWarehouseID   int64
	ItemID          int64
	Quantity        int64
}

// TransferEngine mueve cantidad de un artículo entre dos bodegas como una unidad atómica:
// leer-validar-debitar-acreditar-registrar dentro de una sola transacción.
type TransferEngine struct {
	txRunner     TxRunner
	ledger       *StockLedger
	transferRepo repository.StockTransferRepository
	now          func() time.Time
}

// NewTransferEngine construye el motor. transferRepo debe estar atado al pool (lecturas fuera de tx).
func NewTransferEngine(txRunner TxRunner, ledger *StockLedger, transferRepo repository.StockTransferRepository) *TransferEngine {
	return &TransferEngine{
		txRunner:     txRunner,
		ledger:       ledger,
		transferRepo: transferRepo,
		now:          time.Now,
	}
}

// Transfer ejecuta el traslado. Si algo falla no queda ningún efecto parcial.
// Los eventos de stock bajo de cada tramo se despachan solo después del Commit.
func (e *TransferEngine) Transfer(ctx context.Context, in TransferInput) (_ *entity.StockTransfer, err error) {
	ctx, span := tracer.Start(ctx, "TransferEngine.Transfer", trace.WithAttributes(
		attribute.Int64("transfer.from_warehouse_id", in.FromWarehouseID),
		attribute.Int64("transfer.to_warehouse_id", in.ToWarehouseID),
		attribute.Int64("transfer.item_id", in.ItemID),
		attribute.Int64("transfer.quantity", in.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if in.FromWarehouseID == in.ToWarehouseID || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var (
		transfer *entity.StockTransfer
		events   []*entity.LowStockEvent
	)
	err = e.txRunner.Run(ctx, func(stockRepo repository.StockRepository, transferRepo repository.StockTransferRepository) error {
		source, dest, err := lockPair(ctx, stockRepo, in)
		if err != nil {
			return err
		}
		if source == nil || source.Quantity < in.Quantity {
			return domain.ErrInsufficientStock
		}
		if dest == nil {
			dest, err = stockRepo.Create(ctx, in.ToWarehouseID, in.ItemID, 0)
			if err != nil {
				return err
			}
		}

		_, debitEvent, err := e.ledger.applyQuantity(ctx, stockRepo, source, source.Quantity-in.Quantity)
		if err != nil {
			return err
		}
		credited, err := addQuantity(dest.Quantity, in.Quantity)
		if err != nil {
			return err
		}
		_, creditEvent, err := e.ledger.applyQuantity(ctx, stockRepo, dest, credited)
		if err != nil {
			return err
		}

		t := &entity.StockTransfer{
			Reference:       uuid.New().String(),
			InventoryItemID: in.ItemID,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Quantity:        in.Quantity,
			TransferredAt:   e.now().UTC(),
		}
		if err := transferRepo.Create(ctx, t); err != nil {
			return err
		}
		transfer = t
		events = []*entity.LowStockEvent{debitEvent, creditEvent}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("transfer.reference", transfer.Reference))
	e.loadRefs(ctx, transfer)
	e.ledger.dispatch(ctx, events...)
	return transfer, nil
}

// loadRefs completa artículo y bodegas del traslado ya confirmado.
func (e *TransferEngine) loadRefs(ctx context.Context, t *entity.StockTransfer) {
	loaded, err := e.transferRepo.GetByID(ctx, t.ID)
	if err != nil || loaded == nil {
		return
	}
	t.Item, t.FromWarehouse, t.ToWarehouse = loaded.Item, loaded.FromWarehouse, loaded.ToWarehouse
}

// lockPair bloquea las dos filas en orden ascendente de bodega para evitar deadlocks
// entre traslados en sentidos opuestos. Filas ausentes se devuelven como nil.
func lockPair(ctx context.Context, stockRepo repository.StockRepository, in TransferInput) (source, dest *entity.Stock, err error) {
	first, second := in.FromWarehouseID, in.ToWarehouseID
	if second < first {
		first, second = second, first
	}
	a, err := stockRepo.GetForUpdate(ctx, first, in.ItemID)
	if err != nil {
		return nil, nil, err
	}
	b, err := stockRepo.GetForUpdate(ctx, second, in.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if first == in.FromWarehouseID {
		return a, b, nil
	}
	return b, a, nil
}

// GetByID obtiene un traslado por ID o domain.ErrNotFound.
func (e *TransferEngine) GetByID(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	t, err := e.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List lista traslados, más recientes primero. El filtro de bodega aplica a origen o destino.
func (e *TransferEngine) List(ctx context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error) {
	return e.transferRepo.List(ctx, filter, limit, offset)
}

// ItemHistory historial de traslados de un artículo.
func (e *TransferEngine) ItemHistory(ctx context.Context, itemID int64, limit, offset int) ([]*entity.StockTransfer, int, error) {
	return e.transferRepo.List(ctx, repository.TransferFilter{ItemID: &itemID}, limit, offset)
}
