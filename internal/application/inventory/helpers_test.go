package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
)

// recordingNotifier guarda los eventos recibidos.
type recordingNotifier struct {
	mu     sync.Mutex
	events []entity.LowStockEvent
}

func (n *recordingNotifier) NotifyLowStock(_ context.Context, ev entity.LowStockEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func (n *recordingNotifier) last() entity.LowStockEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	ledger   *inventory.StockLedger
	engine   *inventory.TransferEngine
	wh1      int64
	wh2      int64
	item     int64
}

// newFixture crea dos bodegas y un artículo sobre el almacén en memoria.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	ledger := inventory.NewStockLedger(store, store.Stocks(), notifier, inventory.LedgerConfig{LowStockThreshold: 10})
	engine := inventory.NewTransferEngine(store, ledger, store.Transfers())

	wh1 := &entity.Warehouse{Name: "Main Warehouse", Location: "New York"}
	wh2 := &entity.Warehouse{Name: "Secondary Warehouse", Location: "Los Angeles"}
	require.NoError(t, store.Warehouses().Create(ctx, wh1))
	require.NoError(t, store.Warehouses().Create(ctx, wh2))
	item := &entity.InventoryItem{Name: "Laptop", SKU: "LAPTOP-001", Price: decimal.RequireFromString("1299.99")}
	require.NoError(t, store.Items().Create(ctx, item))

	return &fixture{
		store:    store,
		notifier: notifier,
		ledger:   ledger,
		engine:   engine,
		wh1:      wh1.ID,
		wh2:      wh2.ID,
		item:     item.ID,
	}
}

// seed deja el stock (wh, item) en qty sin disparar notificaciones al notifier del fixture.
func (f *fixture) seed(t *testing.T, warehouseID, qty int64) *entity.Stock {
	t.Helper()
	s, err := f.store.Stocks().AddQuantity(context.Background(), warehouseID, f.item, qty)
	require.NoError(t, err)
	return s
}
