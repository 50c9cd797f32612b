package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
)

func (f *fixture) quantity(t *testing.T, warehouseID int64) int64 {
	t.Helper()
	s, err := f.ledger.Get(context.Background(), warehouseID, f.item)
	require.NoError(t, err)
	if s == nil {
		return 0
	}
	return s.Quantity
}

func (f *fixture) transferCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.engine.List(context.Background(), repository.TransferFilter{}, 100, 0)
	require.NoError(t, err)
	return total
}

func TestTransfer_CantidadInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 15)

	_, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 20,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(15), f.quantity(t, f.wh1))
	dest, err := f.ledger.Get(context.Background(), f.wh2, f.item)
	require.NoError(t, err)
	assert.Nil(t, dest, "no se crea la fila destino si el traslado falla")
	assert.Equal(t, 0, f.transferCount(t))
	assert.Equal(t, 0, f.notifier.count())
}

func TestTransfer_OrigenSinStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestTransfer_CreaDestinoYConserva(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 15)
	before := time.Now().UTC()

	tr, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), f.quantity(t, f.wh1))
	assert.Equal(t, int64(5), f.quantity(t, f.wh2))
	assert.Equal(t, int64(5), tr.Quantity)
	assert.Equal(t, f.wh1, tr.FromWarehouseID)
	assert.Equal(t, f.wh2, tr.ToWarehouseID)
	assert.Equal(t, f.item, tr.InventoryItemID)
	assert.NotZero(t, tr.ID)
	assert.NotEmpty(t, tr.Reference)
	assert.WithinDuration(t, before, tr.TransferredAt, 5*time.Second)
	assert.Equal(t, 1, f.transferCount(t))

	require.NotNil(t, tr.Item)
	require.NotNil(t, tr.FromWarehouse)
	require.NotNil(t, tr.ToWarehouse)
	assert.Equal(t, "LAPTOP-001", tr.Item.SKU)
	assert.Equal(t, "Main Warehouse", tr.FromWarehouse.Name)
	assert.Equal(t, "Los Angeles", tr.ToWarehouse.Location)

	got, err := f.engine.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Reference, got.Reference)
	assert.Equal(t, tr.ToWarehouse, got.ToWarehouse)
}

func TestTransfer_DesbordeEnDestino(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 10)
	f.seed(t, f.wh2, math.MaxInt64-5)

	_, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 6,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(10), f.quantity(t, f.wh1), "rollback del débito")
	assert.Equal(t, 0, f.transferCount(t))
}

func TestTransfer_DestinoExistente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 30)
	f.seed(t, f.wh2, 7)

	_, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh2, ToWarehouseID: f.wh1, ItemID: f.item, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.quantity(t, f.wh2))
	assert.Equal(t, int64(37), f.quantity(t, f.wh1))
}

func TestTransfer_NotificaCadaTramoPorFlanco(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 12)

	_, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.notifier.count(), "solo el origen cruza 12 -> 8; el destino parte de 0")
	assert.Equal(t, f.wh1, f.notifier.last().Stock.WarehouseID)

	_, err = f.engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count(), "8 -> 7 ya estaba bajo el umbral")
}

func TestTransfer_ValidaPrecondiciones(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 15)

	cases := []struct {
		name string
		in   inventory.TransferInput
	}{
		{"misma bodega", inventory.TransferInput{FromWarehouseID: f.wh1, ToWarehouseID: f.wh1, ItemID: f.item, Quantity: 1}},
		{"cantidad cero", inventory.TransferInput{FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 0}},
		{"cantidad negativa", inventory.TransferInput{FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Transfer(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(15), f.quantity(t, f.wh1))
}

// failingLogRunner delega en el almacén pero hace fallar el registro del traslado.
type failingLogRunner struct {
	store *memory.Store
}

type failingTransferRepo struct {
	repository.StockTransferRepository
}

var errLogDown = errors.New("registro de traslados no disponible")

func (failingTransferRepo) Create(context.Context, *entity.StockTransfer) error { return errLogDown }

func (r failingLogRunner) Run(ctx context.Context, fn func(repository.StockRepository, repository.StockTransferRepository) error) error {
	return r.store.Run(ctx, func(stockRepo repository.StockRepository, transferRepo repository.StockTransferRepository) error {
		return fn(stockRepo, failingTransferRepo{transferRepo})
	})
}

func TestTransfer_RollbackSiFallaElRegistro(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 15)
	engine := inventory.NewTransferEngine(failingLogRunner{store: f.store}, f.ledger, f.store.Transfers())

	_, err := engine.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 10,
	})
	assert.ErrorIs(t, err, errLogDown)

	assert.Equal(t, int64(15), f.quantity(t, f.wh1), "débito revertido")
	dest, err := f.ledger.Get(context.Background(), f.wh2, f.item)
	require.NoError(t, err)
	assert.Nil(t, dest, "fila destino revertida")
	assert.Equal(t, 0, f.notifier.count(), "sin notificaciones de una tx revertida")
}

func TestTransfer_ConcurrenteNoDejaNegativos(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wh1, 20)

	var ok, insufficient atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := inventory.TransferInput{FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 1}
			if i%5 == 0 {
				// algunos en sentido contrario para ejercitar el orden de bloqueo
				in.FromWarehouseID, in.ToWarehouseID = f.wh2, f.wh1
			}
			_, err := f.engine.Transfer(context.Background(), in)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(50), ok.Load()+insufficient.Load())
	a, b := f.quantity(t, f.wh1), f.quantity(t, f.wh2)
	assert.GreaterOrEqual(t, a, int64(0))
	assert.GreaterOrEqual(t, b, int64(0))
	assert.Equal(t, int64(20), a+b, "la cantidad total se conserva")
	assert.Equal(t, int(ok.Load()), f.transferCount(t))
}

func TestTransfer_HistorialYFiltros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, f.wh1, 50)

	for i := 0; i < 3; i++ {
		_, err := f.engine.Transfer(ctx, inventory.TransferInput{FromWarehouseID: f.wh1, ToWarehouseID: f.wh2, ItemID: f.item, Quantity: 2})
		require.NoError(t, err)
	}

	list, total, err := f.engine.ItemHistory(ctx, f.item, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 2)
	assert.False(t, list[0].TransferredAt.Before(list[1].TransferredAt), "más recientes primero")

	_, total, err = f.engine.List(ctx, repository.TransferFilter{WarehouseID: &f.wh2}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "el filtro de bodega coincide con el destino")

	_, err = f.engine.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
