package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferWithRefs = `
	SELECT t.id, t.reference, t.inventory_item_id, t.from_warehouse_id, t.to_warehouse_id, t.quantity, t.transferred_at,
	       i.name, i.sku, fw.name, fw.location, tw.name, tw.location
	FROM stock_transfers t
	JOIN inventory_items i ON i.id = t.inventory_item_id
	JOIN warehouses fw ON fw.id = t.from_warehouse_id
	JOIN warehouses tw ON tw.id = t.to_warehouse_id`

// StockTransferRepo registro de traslados (append-only) sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t        entity.StockTransfer
		item     entity.InventoryItemSummary
		from, to entity.WarehouseSummary
	)
	err := row.Scan(&t.ID, &t.Reference, &t.InventoryItemID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Quantity, &t.TransferredAt,
		&item.Name, &item.SKU, &from.Name, &from.Location, &to.Name, &to.Location)
	if err != nil {
		return nil, err
	}
	item.ID, from.ID, to.ID = t.InventoryItemID, t.FromWarehouseID, t.ToWarehouseID
	t.Item, t.FromWarehouse, t.ToWarehouse = &item, &from, &to
	return &t, nil
}

// Create inserta el traslado y asigna su ID.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (reference, inventory_item_id, from_warehouse_id, to_warehouse_id, quantity, transferred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		t.Reference, t.InventoryItemID, t.FromWarehouseID, t.ToWarehouseID, t.Quantity, t.TransferredAt,
	).Scan(&t.ID)
	if err != nil {
		return mapErr("insert stock transfer", err)
	}
	return nil
}

// GetByID obtiene un traslado con artículo y bodegas; nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, transferWithRefs+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get stock transfer", err)
	}
	return t, nil
}

// List lista traslados, más recientes primero.
func (r *StockTransferRepo) List(ctx context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.WarehouseID != nil {
		args = append(args, *filter.WarehouseID)
		conds = append(conds, fmt.Sprintf("(t.from_warehouse_id = $%d OR t.to_warehouse_id = $%d)", len(args), len(args)))
	}
	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		conds = append(conds, fmt.Sprintf("t.inventory_item_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_transfers t`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count stock transfers", err)
	}
	query := transferWithRefs + where +
		fmt.Sprintf(" ORDER BY t.transferred_at DESC, t.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limitOrAll(limit), offset)...)
	if err != nil {
		return nil, 0, mapErr("list stock transfers", err)
	}
	defer rows.Close()
	list := []*entity.StockTransfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}
