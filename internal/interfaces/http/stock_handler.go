package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// StockHandler expone el ledger de stock.
type StockHandler struct {
	ledger      *inventory.StockLedger
	warehouseUC *usecase.WarehouseUseCase
	itemUC      *usecase.InventoryItemUseCase
}

// NewStockHandler construye el handler. warehouseUC también se usa para invalidar la caché.
func NewStockHandler(ledger *inventory.StockLedger, warehouseUC *usecase.WarehouseUseCase, itemUC *usecase.InventoryItemUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, warehouseUC: warehouseUC, itemUC: itemUC}
}

// ensureRefs comprueba que bodega y artículo existen antes de tocar el ledger.
func (h *StockHandler) ensureRefs(ctx context.Context, warehouseID, itemID int64) error {
	if err := h.warehouseUC.Exists(ctx, warehouseID); err != nil {
		return err
	}
	return h.itemUC.Exists(ctx, itemID)
}

// Record godoc
// @Summary      Registrar stock
// @Description  Suma la cantidad a la fila (bodega, artículo) o la crea.
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordStockRequest  true  "Bodega, artículo y cantidad"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks [post]
func (h *StockHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	if err := h.ensureRefs(ctx, in.WarehouseID, in.InventoryItemID); err != nil {
		return writeError(c, err)
	}
	stock, err := h.ledger.RecordStock(ctx, in.WarehouseID, in.InventoryItemID, *in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	h.warehouseUC.InvalidateInventory(ctx, stock.WarehouseID)
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockResponse(stock, h.ledger.Threshold()))
}

// List godoc
// @Summary      Listar stock
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id       query  int  false  "Filtrar por bodega"
// @Param        inventory_item_id  query  int  false  "Filtrar por artículo"
// @Param        limit              query  int  false  "Límite"  default(15)
// @Param        offset             query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.StockResponse]
// @Router       /api/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var q dto.StockQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()

	var filter repository.StockFilter
	if q.WarehouseID > 0 {
		filter.WarehouseID = &q.WarehouseID
	}
	if q.ItemID > 0 {
		filter.ItemID = &q.ItemID
	}
	list, total, err := h.ledger.List(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(dto.NewStockResponses(list, h.ledger.Threshold()), page, total))
}

// Low godoc
// @Summary      Stock por debajo del umbral
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral (por defecto el configurado)"
// @Param        limit      query  int  false  "Límite"  default(15)
// @Param        offset     query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.StockResponse]
// @Router       /api/stocks/low [get]
func (h *StockHandler) Low(c *fiber.Ctx) error {
	var q dto.LowStockQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()

	threshold := q.Threshold
	if threshold <= 0 {
		threshold = h.ledger.Threshold()
	}
	list, total, err := h.ledger.ListLowStock(c.UserContext(), threshold, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(dto.NewStockResponses(list, threshold), page, total))
}

// GetByID godoc
// @Summary      Obtener fila de stock
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del stock"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	stock, err := h.ledger.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock, h.ledger.Threshold()))
}

// Set godoc
// @Summary      Fijar cantidad
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del stock"
// @Param        body  body  dto.SetStockRequest  true  "Cantidad absoluta"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [put]
func (h *StockHandler) Set(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	stock, err := h.ledger.SetQuantity(ctx, id, *in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	h.warehouseUC.InvalidateInventory(ctx, stock.WarehouseID)
	return c.JSON(dto.NewStockResponse(stock, h.ledger.Threshold()))
}

// Adjust godoc
// @Summary      Ajustar cantidad
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID del stock"
// @Param        body  body  dto.AdjustStockRequest  true  "Delta (positivo o negativo)"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/adjust [patch]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AdjustStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	stock, err := h.ledger.AdjustQuantity(ctx, id, *in.Delta)
	if err != nil {
		return writeError(c, err)
	}
	h.warehouseUC.InvalidateInventory(ctx, stock.WarehouseID)
	return c.JSON(dto.NewStockResponse(stock, h.ledger.Threshold()))
}

// Delete godoc
// @Summary      Eliminar fila de stock
// @Tags         stocks
// @Security     Bearer
// @Param        id   path  int  true  "ID del stock"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	stock, err := h.ledger.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.ledger.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	h.warehouseUC.InvalidateInventory(ctx, stock.WarehouseID)
	return c.SendStatus(fiber.StatusNoContent)
}
