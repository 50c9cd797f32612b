package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var skuCaser = cases.Upper(language.Und)

// NormalizeSKU recorta y pasa a mayúsculas el SKU.
func NormalizeSKU(sku string) string {
	return skuCaser.String(strings.TrimSpace(sku))
}

// InventoryInvalidator olvida las lecturas cacheadas de las bodegas dadas.
type InventoryInvalidator interface {
	InvalidateInventory(ctx context.Context, warehouseIDs ...int64)
}

// InventoryItemUseCase casos de uso CRUD y búsqueda de artículos.
type InventoryItemUseCase struct {
	repo        repository.InventoryItemRepository
	ledger      *inventory.StockLedger
	invalidator InventoryInvalidator
}

// NewInventoryItemUseCase construye el caso de uso.
func NewInventoryItemUseCase(repo repository.InventoryItemRepository, ledger *inventory.StockLedger, invalidator InventoryInvalidator) *InventoryItemUseCase {
	return &InventoryItemUseCase{repo: repo, ledger: ledger, invalidator: invalidator}
}

// Create crea un artículo. SKU repetido -> ErrDuplicate.
func (uc *InventoryItemUseCase) Create(ctx context.Context, in dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if in.Price == nil {
		return nil, domain.ErrInvalidInput
	}
	sku := NormalizeSKU(in.SKU)
	if err := uc.ensureSKUFree(ctx, sku, 0); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	item := &entity.InventoryItem{
		Name:        strings.TrimSpace(in.Name),
		SKU:         sku,
		Description: in.Description,
		Price:       in.Price.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	resp := dto.NewInventoryItemResponse(item)
	return &resp, nil
}

func (uc *InventoryItemUseCase) ensureSKUFree(ctx context.Context, sku string, exceptID int64) error {
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return domain.ErrDuplicate
	}
	return nil
}

func (uc *InventoryItemUseCase) get(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// Exists verifica el artículo (ErrNotFound si no existe).
func (uc *InventoryItemUseCase) Exists(ctx context.Context, id int64) error {
	_, err := uc.get(ctx, id)
	return err
}

// GetByID artículo con su stock en cada bodega.
func (uc *InventoryItemUseCase) GetByID(ctx context.Context, id int64) (*dto.InventoryItemDetailResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	stocks, _, err := uc.ledger.List(ctx, repository.StockFilter{ItemID: &id}, 0, 0)
	if err != nil {
		return nil, err
	}
	detail := &dto.InventoryItemDetailResponse{
		InventoryItemResponse: dto.NewInventoryItemResponse(item),
		Stocks:                dto.NewStockResponses(stocks, uc.ledger.Threshold()),
	}
	for _, s := range stocks {
		detail.TotalQuantity += s.Quantity
	}
	return detail, nil
}

// Update actualiza los campos presentes.
func (uc *InventoryItemUseCase) Update(ctx context.Context, id int64, in dto.UpdateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		sku := NormalizeSKU(*in.SKU)
		if err := uc.ensureSKUFree(ctx, sku, id); err != nil {
			return nil, err
		}
		item.SKU = sku
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = in.Price.Round(2)
	}
	item.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	resp := dto.NewInventoryItemResponse(item)
	return &resp, nil
}

// Delete elimina el artículo. Con stock > 0 o traslados registrados -> ErrConflict.
// Las filas de stock en cero se eliminan con él.
func (uc *InventoryItemUseCase) Delete(ctx context.Context, id int64) error {
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
	stocks, _, err := uc.ledger.List(ctx, repository.StockFilter{ItemID: &id}, 0, 0)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	ids := make([]int64, 0, len(stocks))
	for _, s := range stocks {
		ids = append(ids, s.WarehouseID)
	}
	uc.invalidator.InvalidateInventory(ctx, ids...)
	return nil
}

// Search lista artículos con filtros y paginación.
func (uc *InventoryItemUseCase) Search(ctx context.Context, q dto.InventoryItemQuery, page dto.PageRequest) (*dto.ListResponse[dto.InventoryItemResponse], error) {
	filter := repository.ItemFilter{
		Term: strings.TrimSpace(q.Search),
		Name: strings.TrimSpace(q.Name),
		SKU:  NormalizeSKU(q.SKU),
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice(q.MaxPrice); err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("min_price mayor que max_price: %w", domain.ErrInvalidInput)
	}

	list, total, err := uc.repo.Search(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, dto.NewInventoryItemResponse(it))
	}
	resp := dto.NewListResponse(items, page, total)
	return &resp, nil
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("precio %q: %w", raw, domain.ErrInvalidInput)
	}
	return &d, nil
}
