package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación en memoria del registro de traslados.
type StockTransferRepo struct {
	store *Store
	inTx  bool
}

// Create agrega un traslado y le asigna ID.
func (r *StockTransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	defer r.store.guard(r.inTx)()
	if t.FromWarehouseID == t.ToWarehouseID || t.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	t.ID = r.store.data.nextID("stock_transfers")
	r.store.data.transfers[t.ID] = *t
	return nil
}

// GetByID obtiene un traslado por ID con artículo y bodegas.
func (r *StockTransferRepo) GetByID(_ context.Context, id int64) (*entity.StockTransfer, error) {
	defer r.store.guard(r.inTx)()
	t, ok := r.store.data.transfers[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.transferWithRefs(t), nil
}

// List lista traslados por fecha descendente.
func (r *StockTransferRepo) List(_ context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error) {
	defer r.store.guard(r.inTx)()
	var list []*entity.StockTransfer
	for _, t := range r.store.data.transfers {
		if filter.WarehouseID != nil && t.FromWarehouseID != *filter.WarehouseID && t.ToWarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ItemID != nil && t.InventoryItemID != *filter.ItemID {
			continue
		}
		list = append(list, r.store.data.transferWithRefs(t))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TransferredAt.Equal(list[j].TransferredAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].TransferredAt.After(list[j].TransferredAt)
	})
	return paginate(list, limit, offset), len(list), nil
}
