package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// TransferHandler expone el motor de traslados y su historial.
type TransferHandler struct {
	engine      *inventory.TransferEngine
	warehouseUC *usecase.WarehouseUseCase
	itemUC      *usecase.InventoryItemUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(engine *inventory.TransferEngine, warehouseUC *usecase.WarehouseUseCase, itemUC *usecase.InventoryItemUseCase) *TransferHandler {
	return &TransferHandler{engine: engine, warehouseUC: warehouseUC, itemUC: itemUC}
}

// Create godoc
// @Summary      Trasladar stock entre bodegas
// @Description  Debita el origen y acredita el destino en una sola transacción.
// @Tags         stock-transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "Artículo, bodegas y cantidad"
// @Success      201   {object}  dto.StockTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	for _, id := range []int64{in.FromWarehouseID, in.ToWarehouseID} {
		if err := h.warehouseUC.Exists(ctx, id); err != nil {
			return writeError(c, err)
		}
	}
	if err := h.itemUC.Exists(ctx, in.InventoryItemID); err != nil {
		return writeError(c, err)
	}

	transfer, err := h.engine.Transfer(ctx, inventory.TransferInput{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		ItemID:          in.InventoryItemID,
		Quantity:        in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.warehouseUC.InvalidateInventory(ctx, in.FromWarehouseID, in.ToWarehouseID)
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockTransferResponse(transfer))
}

// List godoc
// @Summary      Listar traslados
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id       query  int  false  "Bodega de origen o destino"
// @Param        inventory_item_id  query  int  false  "Artículo"
// @Param        limit              query  int  false  "Límite"  default(15)
// @Param        offset             query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.StockTransferResponse]
// @Router       /api/stock-transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var q dto.TransferQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()

	var filter repository.TransferFilter
	if q.WarehouseID > 0 {
		filter.WarehouseID = &q.WarehouseID
	}
	if q.ItemID > 0 {
		filter.ItemID = &q.ItemID
	}
	list, total, err := h.engine.List(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(dto.NewStockTransferResponses(list), page, total))
}

// ItemHistory godoc
// @Summary      Historial de traslados de un artículo
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        inventory_item_id  query  int  true   "Artículo"
// @Param        limit              query  int  false  "Límite"  default(15)
// @Param        offset             query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.StockTransferResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/item-history [get]
func (h *TransferHandler) ItemHistory(c *fiber.Ctx) error {
	var q dto.TransferQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	if q.ItemID <= 0 {
		return writeError(c, newValidationError("inventory_item_id es requerido"))
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()

	ctx := c.UserContext()
	if err := h.itemUC.Exists(ctx, q.ItemID); err != nil {
		return writeError(c, err)
	}
	list, total, err := h.engine.ItemHistory(ctx, q.ItemID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(dto.NewStockTransferResponses(list), page, total))
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	transfer, err := h.engine.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockTransferResponse(transfer))
}
