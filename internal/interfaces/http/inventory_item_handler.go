package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
)

// InventoryItemHandler maneja el catálogo de artículos.
type InventoryItemHandler struct {
	uc *usecase.InventoryItemUseCase
}

// NewInventoryItemHandler construye el handler.
func NewInventoryItemHandler(uc *usecase.InventoryItemUseCase) *InventoryItemHandler {
	return &InventoryItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear artículo
// @Tags         inventory-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryItemRequest  true  "Datos del artículo"
// @Success      201   {object}  dto.InventoryItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory-items [post]
func (h *InventoryItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryItemRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar / buscar artículos
// @Tags         inventory-items
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Texto en nombre, SKU o descripción"
// @Param        name       query  string  false  "Nombre"
// @Param        sku        query  string  false  "SKU"
// @Param        min_price  query  string  false  "Precio mínimo"
// @Param        max_price  query  string  false  "Precio máximo"
// @Param        limit      query  int     false  "Límite"  default(15)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200        {object}  dto.ListResponse[dto.InventoryItemResponse]
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/inventory-items [get]
func (h *InventoryItemHandler) List(c *fiber.Ctx) error {
	var q dto.InventoryItemQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()
	out, err := h.uc.Search(c.UserContext(), q, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo con su stock por bodega
// @Tags         inventory-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del artículo"
// @Success      200  {object}  dto.InventoryItemDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-items/{id} [get]
func (h *InventoryItemHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar artículo
// @Tags         inventory-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                             true  "ID del artículo"
// @Param        body  body  dto.UpdateInventoryItemRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.InventoryItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory-items/{id} [put]
func (h *InventoryItemHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateInventoryItemRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar artículo
// @Tags         inventory-items
// @Security     Bearer
// @Param        id   path  int  true  "ID del artículo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory-items/{id} [delete]
func (h *InventoryItemHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
