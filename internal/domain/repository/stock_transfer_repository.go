package repository

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// TransferFilter filtros opcionales. WarehouseID coincide con origen o destino.
type TransferFilter struct {
	WarehouseID *int64
	ItemID      *int64
}

// StockTransferRepository define el puerto del registro de traslados (solo inserción y lectura).
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id int64) (*entity.StockTransfer, error)
	// List ordena por transferred_at descendente.
	List(ctx context.Context, filter TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error)
}
