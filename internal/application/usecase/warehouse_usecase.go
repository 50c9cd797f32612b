package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso de bodegas: CRUD, inventario por bodega y caché de lecturas.
type WarehouseUseCase struct {
	repo   repository.WarehouseRepository
	ledger *inventory.StockLedger
	cache  Cache
	ttl    time.Duration
	log    zerolog.Logger
}

// NewWarehouseUseCase construye el caso de uso. ttl <= 0 usa DefaultCacheTTL.
func NewWarehouseUseCase(repo repository.WarehouseRepository, ledger *inventory.StockLedger, cache Cache, ttl time.Duration, log zerolog.Logger) *WarehouseUseCase {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &WarehouseUseCase{repo: repo, ledger: ledger, cache: cache, ttl: ttl, log: log}
}

// Create crea una nueva bodega. Nombre repetido (sin distinguir mayúsculas) -> ErrDuplicate.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if err := uc.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	w := &entity.Warehouse{
		Name:      name,
		Location:  strings.TrimSpace(in.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	uc.forget(ctx, keyAllWarehouses)
	resp := dto.NewWarehouseResponse(w)
	return &resp, nil
}

func (uc *WarehouseUseCase) ensureNameFree(ctx context.Context, name string, exceptID int64) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return domain.ErrDuplicate
	}
	return nil
}

func (uc *WarehouseUseCase) get(ctx context.Context, id int64) (*entity.Warehouse, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	return w, nil
}

// Exists verifica la bodega (ErrNotFound si no existe).
func (uc *WarehouseUseCase) Exists(ctx context.Context, id int64) error {
	_, err := uc.get(ctx, id)
	return err
}

// Detail bodega con todo su inventario, cacheada en warehouse.{id}.inventory.
func (uc *WarehouseUseCase) Detail(ctx context.Context, id int64) (*dto.WarehouseInventoryResponse, error) {
	key := warehouseInventoryKey(id)
	var cached dto.WarehouseInventoryResponse
	if uc.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	w, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := uc.withInventory(ctx, w)
	if err != nil {
		return nil, err
	}
	uc.store(ctx, key, detail)
	return &detail, nil
}

// ListAll todas las bodegas con su inventario, cacheado en warehouses.all.
func (uc *WarehouseUseCase) ListAll(ctx context.Context) ([]dto.WarehouseInventoryResponse, error) {
	var cached []dto.WarehouseInventoryResponse
	if uc.lookup(ctx, keyAllWarehouses, &cached) {
		return cached, nil
	}
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseInventoryResponse, 0, len(list))
	for _, w := range list {
		detail, err := uc.withInventory(ctx, w)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	uc.store(ctx, keyAllWarehouses, out)
	return out, nil
}

func (uc *WarehouseUseCase) withInventory(ctx context.Context, w *entity.Warehouse) (dto.WarehouseInventoryResponse, error) {
	stocks, _, err := uc.ledger.List(ctx, repository.StockFilter{WarehouseID: &w.ID}, 0, 0)
	if err != nil {
		return dto.WarehouseInventoryResponse{}, err
	}
	detail := dto.WarehouseInventoryResponse{
		WarehouseResponse: dto.NewWarehouseResponse(w),
		Stocks:            dto.NewStockResponses(stocks, uc.ledger.Threshold()),
	}
	for _, s := range stocks {
		detail.TotalQuantity += s.Quantity
	}
	return detail, nil
}

// Inventory stock paginado de una bodega (sin caché).
func (uc *WarehouseUseCase) Inventory(ctx context.Context, id int64, page dto.PageRequest) (*dto.ListResponse[dto.StockResponse], error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	stocks, total, err := uc.ledger.List(ctx, repository.StockFilter{WarehouseID: &id}, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	resp := dto.NewListResponse(dto.NewStockResponses(stocks, uc.ledger.Threshold()), page, total)
	return &resp, nil
}

// Update actualiza nombre y/o ubicación.
func (uc *WarehouseUseCase) Update(ctx context.Context, id int64, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	w, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := uc.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		w.Name = name
	}
	if in.Location != nil {
		w.Location = strings.TrimSpace(*in.Location)
	}
	w.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	uc.InvalidateInventory(ctx, id)
	resp := dto.NewWarehouseResponse(w)
	return &resp, nil
}

// Delete elimina la bodega. Con stock > 0 o traslados registrados -> ErrConflict.
func (uc *WarehouseUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	has, err := uc.repo.HasInventory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.ErrConflict
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.InvalidateInventory(ctx, id)
	return nil
}

// InvalidateInventory olvida el listado general y el detalle de las bodegas dadas.
// Se llama tras cualquier mutación de stock que las toque.
func (uc *WarehouseUseCase) InvalidateInventory(ctx context.Context, warehouseIDs ...int64) {
	keys := []string{keyAllWarehouses}
	for _, id := range warehouseIDs {
		keys = append(keys, warehouseInventoryKey(id))
	}
	uc.forget(ctx, keys...)
}

func (uc *WarehouseUseCase) lookup(ctx context.Context, key string, dest any) bool {
	found, err := uc.cache.Get(ctx, key, dest)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
		return false
	}
	return found
}

func (uc *WarehouseUseCase) store(ctx context.Context, key string, value any) {
	if err := uc.cache.Set(ctx, key, value, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}

func (uc *WarehouseUseCase) forget(ctx context.Context, keys ...string) {
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.log.Warn().Err(err).Strs("keys", keys).Msg("invalidación de caché fallida")
	}
}
