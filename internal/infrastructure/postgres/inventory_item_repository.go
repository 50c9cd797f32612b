package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, name, sku, description, price, created_at, updated_at`

// InventoryItemRepo implementación del puerto InventoryItemRepository sobre PostgreSQL.
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de persistencia para artículos.
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	if err := row.Scan(&it.ID, &it.Name, &it.SKU, &it.Description, &it.Price, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un artículo. SKU duplicado -> domain.ErrDuplicate.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (name, sku, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, it.Name, it.SKU, it.Description, it.Price).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapErr("insert inventory item", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetBySKU obtiene un artículo por SKU exacto (ya normalizado).
func (r *InventoryItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE sku = $1`, sku)
}

func (r *InventoryItemRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get inventory item", err)
	}
	return it, nil
}

// Update actualiza un artículo existente.
func (r *InventoryItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET name = $2, sku = $3, description = $4, price = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, it.ID, it.Name, it.SKU, it.Description, it.Price).Scan(&it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapErr("update inventory item", err)
	}
	return nil
}

// Search filtra por término libre, nombre, SKU y rango de precio (ILIKE) con paginación por ID.
func (r *InventoryItemRepo) Search(ctx context.Context, f repository.ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Term != "" {
		p := arg("%" + f.Term + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR sku ILIKE %s OR description ILIKE %s)", p, p, p))
	}
	if f.Name != "" {
		conds = append(conds, "name ILIKE "+arg("%"+f.Name+"%"))
	}
	if f.SKU != "" {
		conds = append(conds, "sku ILIKE "+arg("%"+f.SKU+"%"))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_items`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count inventory items", err)
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items` + where +
		` ORDER BY id LIMIT ` + arg(limitOrAll(limit)) + ` OFFSET ` + arg(offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr("search inventory items", err)
	}
	defer rows.Close()
	list := []*entity.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, total, rows.Err()
}

// HasInventory indica si el artículo tiene stock > 0 en alguna bodega o algún traslado.
func (r *InventoryItemRepo) HasInventory(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stocks WHERE inventory_item_id = $1 AND quantity > 0)
		    OR EXISTS (SELECT 1 FROM stock_transfers WHERE inventory_item_id = $1)`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, mapErr("item inventory check", err)
	}
	return has, nil
}

// Delete elimina un artículo por ID.
func (r *InventoryItemRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		return mapErr("delete inventory item", err)
	}
	return nil
}
