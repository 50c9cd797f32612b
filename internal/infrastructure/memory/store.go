// Package memory implementa los repositorios y el TxRunner en memoria.
// Pensado para desarrollo local (STORAGE_DRIVER=memory) y pruebas; no persiste nada.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type dataset struct {
	warehouses map[int64]entity.Warehouse
	items      map[int64]entity.InventoryItem
	stocks     map[int64]entity.Stock
	transfers  map[int64]entity.StockTransfer
	users      map[int64]entity.User
	seq        map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		warehouses: map[int64]entity.Warehouse{},
		items:      map[int64]entity.InventoryItem{},
		stocks:     map[int64]entity.Stock{},
		transfers:  map[int64]entity.StockTransfer{},
		users:      map[int64]entity.User{},
		seq:        map[string]int64{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.stocks {
		c.stocks[k] = v
	}
	for k, v := range d.transfers {
		c.transfers[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

// withRefs adjunta bodega y artículo como lo hace el JOIN de PostgreSQL.
func (d *dataset) withRefs(s entity.Stock) *entity.Stock {
	s.Warehouse = d.warehouseSummary(s.WarehouseID)
	s.Item = d.itemSummary(s.InventoryItemID)
	return &s
}

func (d *dataset) transferWithRefs(t entity.StockTransfer) *entity.StockTransfer {
	t.Item = d.itemSummary(t.InventoryItemID)
	t.FromWarehouse = d.warehouseSummary(t.FromWarehouseID)
	t.ToWarehouse = d.warehouseSummary(t.ToWarehouseID)
	return &t
}

func (d *dataset) warehouseSummary(id int64) *entity.WarehouseSummary {
	w, ok := d.warehouses[id]
	if !ok {
		return nil
	}
	return &entity.WarehouseSummary{ID: w.ID, Name: w.Name, Location: w.Location}
}

func (d *dataset) itemSummary(id int64) *entity.InventoryItemSummary {
	it, ok := d.items[id]
	if !ok {
		return nil
	}
	return &entity.InventoryItemSummary{ID: it.ID, Name: it.Name, SKU: it.SKU}
}

func (d *dataset) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// Store agrupa las tablas en memoria. Las transacciones se serializan con un mutex global
// y un Rollback restaura la copia tomada al inicio.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// guard toma el mutex salvo que la llamada ocurra dentro de Run (que ya lo tiene).
func (s *Store) guard(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Run ejecuta fn de forma serializable; si fn devuelve error se descartan sus cambios.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&StockRepo{store: s, inTx: true}, &StockTransferRepo{store: s, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Stocks repositorio de stock fuera de transacción.
func (s *Store) Stocks() *StockRepo { return &StockRepo{store: s} }

// Transfers repositorio de traslados fuera de transacción.
func (s *Store) Transfers() *StockTransferRepo { return &StockTransferRepo{store: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{store: s} }

// Items repositorio de artículos.
func (s *Store) Items() *InventoryItemRepo { return &InventoryItemRepo{store: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return []*T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func sortByID[T any](list []*T, id func(*T) int64) {
	sort.Slice(list, func(i, j int) bool { return id(list[i]) < id(list[j]) })
}
