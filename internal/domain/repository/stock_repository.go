package repository

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// StockFilter filtros opcionales para listar stock.
type StockFilter struct {
	WarehouseID *int64
	ItemID      *int64
}

// StockRepository define el puerto para consultar/actualizar stock por bodega+artículo.
// Las variantes ForUpdate bloquean la fila y solo tienen sentido dentro de una transacción.
type StockRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Stock, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Stock, error)
	Get(ctx context.Context, warehouseID, itemID int64) (*entity.Stock, error)
	GetForUpdate(ctx context.Context, warehouseID, itemID int64) (*entity.Stock, error)
	// Create inserta la fila; si ya existe la devuelve sin cambios (y bloqueada).
	Create(ctx context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error)
	// AddQuantity suma quantity a la fila existente o la crea con quantity.
	AddQuantity(ctx context.Context, warehouseID, itemID, quantity int64) (*entity.Stock, error)
	UpdateQuantity(ctx context.Context, id, quantity int64) (*entity.Stock, error)
	List(ctx context.Context, filter StockFilter, limit, offset int) ([]*entity.Stock, int, error)
	ListBelow(ctx context.Context, threshold int64, limit, offset int) ([]*entity.Stock, int, error)
	Delete(ctx context.Context, id int64) error
}
