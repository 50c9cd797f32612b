package repository

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	GetByName(ctx context.Context, name string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	ListAll(ctx context.Context) ([]*entity.Warehouse, error)
	// HasInventory indica si la bodega tiene stock > 0 o aparece en algún traslado.
	HasInventory(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}
