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

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, warehouse_id, inventory_item_id, quantity, created_at, updated_at`

// stockWithRefs consulta de lectura: la fila más el nombre de su bodega y artículo.
const stockWithRefs = `
	SELECT s.id, s.warehouse_id, s.inventory_item_id, s.quantity, s.created_at, s.updated_at,
	       w.name, w.location, i.name, i.sku
	FROM stocks s
	JOIN warehouses w ON w.id = s.warehouse_id
	JOIN inventory_items i ON i.id = s.inventory_item_id`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ID, &s.WarehouseID, &s.InventoryItemID, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStockWithRefs(row pgx.Row) (*entity.Stock, error) {
	var (
		s entity.Stock
		w entity.WarehouseSummary
		i entity.InventoryItemSummary
	)
	err := row.Scan(&s.ID, &s.WarehouseID, &s.InventoryItemID, &s.Quantity, &s.CreatedAt, &s.UpdatedAt,
		&w.Name, &w.Location, &i.Name, &i.SKU)
	if err != nil {
		return nil, err
	}
	w.ID, i.ID = s.WarehouseID, s.InventoryItemID
	s.Warehouse, s.Item = &w, &i
	return &s, nil
}

// queryOne ejecuta una consulta de una fila; sin filas devuelve nil, nil.
func (r *StockRepo) queryOne(ctx context.Context, op, query string, args ...any) (*entity.Stock, error) {
	return r.queryOneWith(ctx, scanStock, op, query, args...)
}

func (r *StockRepo) queryOneWith(ctx context.Context, scan func(pgx.Row) (*entity.Stock, error), op, query string, args ...any) (*entity.Stock, error) {
	s, err := scan(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return s, nil
}

// GetByID obtiene un stock por ID con su bodega y artículo.
func (r *StockRepo) GetByID(ctx context.Context, id int64) (*entity.Stock, error) {
	return r.queryOneWith(ctx, scanStockWithRefs, "get stock", stockWithRefs+` WHERE s.id = $1`, id)
}

// GetByIDForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Stock, error) {
	return r.queryOne(ctx, "get stock for update", `SELECT `+stockColumns+` FROM stocks WHERE id = $1 FOR UPDATE`, id)
}

// Get obtiene el stock de un artículo en una bodega; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, warehouseID, itemID int64) (*entity.Stock, error) {
	return r.queryOneWith(ctx, scanStockWithRefs, "get stock",
		stockWithRefs+` WHERE s.warehouse_id = $1 AND s.inventory_item_id = $2`,
		warehouseID, itemID)
}

// GetForUpdate igual que Get pero bloqueando la fila.
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, itemID int64) (*entity.Stock, error) {
	return r.queryOne(ctx, "get stock for update",
		`SELECT `+stockColumns+` FROM stocks WHERE warehouse_id = $1 AND inventory_item_id = $2 FOR UPDATE`,
		warehouseID, itemID)
}

// Create inserta la fila. Si otra transacción la creó antes, se devuelve la existente bloqueada.
func (r *StockRepo) Create(ctx context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error) {
	s, err := r.queryOne(ctx, "insert stock", `
		INSERT INTO stocks (warehouse_id, inventory_item_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (warehouse_id, inventory_item_id) DO NOTHING
		RETURNING `+stockColumns, warehouseID, itemID, quantity)
	if err != nil || s != nil {
		return s, err
	}
	return r.GetForUpdate(ctx, warehouseID, itemID)
}

// AddQuantity suma de forma atómica (upsert) la cantidad a la fila (bodega, artículo).
// Un desborde de BIGINT (22003) llega como domain.ErrInvalidInput.
func (r *StockRepo) AddQuantity(ctx context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error) {
	return r.queryOne(ctx, "upsert stock", `
		INSERT INTO stocks (warehouse_id, inventory_item_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (warehouse_id, inventory_item_id)
		DO UPDATE SET quantity = stocks.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING `+stockColumns, warehouseID, itemID, quantity)
}

// UpdateQuantity fija la cantidad; nil si la fila no existe.
func (r *StockRepo) UpdateQuantity(ctx context.Context, id, quantity int64) (*entity.Stock, error) {
	return r.queryOne(ctx, "update stock", `
		UPDATE stocks SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+stockColumns, id, quantity)
}

// List lista stock con filtros opcionales, ordenado por ID.
func (r *StockRepo) List(ctx context.Context, filter repository.StockFilter, limit, offset int) ([]*entity.Stock, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.WarehouseID != nil {
		args = append(args, *filter.WarehouseID)
		conds = append(conds, fmt.Sprintf("s.warehouse_id = $%d", len(args)))
	}
	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		conds = append(conds, fmt.Sprintf("s.inventory_item_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	return r.list(ctx, where, args, limit, offset)
}

// ListBelow lista stock con cantidad menor al umbral.
func (r *StockRepo) ListBelow(ctx context.Context, threshold int64, limit, offset int) ([]*entity.Stock, int, error) {
	return r.list(ctx, " WHERE s.quantity < $1", []any{threshold}, limit, offset)
}

func (r *StockRepo) list(ctx context.Context, where string, args []any, limit, offset int) ([]*entity.Stock, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stocks s`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count stock", err)
	}
	query := stockWithRefs + where +
		fmt.Sprintf(" ORDER BY s.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limitOrAll(limit), offset)...)
	if err != nil {
		return nil, 0, mapErr("list stock", err)
	}
	defer rows.Close()
	list := []*entity.Stock{}
	for rows.Next() {
		s, err := scanStockWithRefs(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Delete elimina un stock por ID.
func (r *StockRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stocks WHERE id = $1`, id); err != nil {
		return mapErr("delete stock", err)
	}
	return nil
}

// limitOrAll convierte limit <= 0 en NULL (LIMIT ALL).
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
