package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/warehouse-api/internal/application/auth"
	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/cache"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/warehouse-api/internal/interfaces/http"
)

// newTestAPI arma la API completa sobre el store en memoria.
func newTestAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store, store.Stocks(), nil, inventory.LedgerConfig{})
	engine := inventory.NewTransferEngine(store, ledger, store.Transfers())
	warehouseUC := usecase.NewWarehouseUseCase(store.Warehouses(), ledger, cache.Noop{}, 0, zerolog.Nop())
	itemUC := usecase.NewInventoryItemUseCase(store.Items(), ledger, warehouseUC)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	}).WithBcryptCost(bcrypt.MinCost)

	app := apphttp.NewApp("warehouse-api-test")
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		WarehouseUC: warehouseUC,
		ItemUC:      itemUC,
		Ledger:      ledger,
		Transfers:   engine,
		JWTSecret:   testJWTSecret,
	})
	return app
}

// call hace una petición JSON y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	return decode[dto.ErrorResponse](t, raw).Code
}

type scenario struct {
	app       *fiber.App
	admin     string
	bodeguero string
	vendedor  string
	from, to  int64
	item      int64
}

// newScenario crea dos bodegas y un artículo; la bodega origen queda con initial unidades.
func newScenario(t *testing.T, initial int64) *scenario {
	t.Helper()
	s := &scenario{
		app:       newTestAPI(t),
		admin:     tokenForRole(t, "admin"),
		bodeguero: tokenForRole(t, "bodeguero"),
		vendedor:  tokenForRole(t, "vendedor"),
	}
	s.from = s.createWarehouse(t, "Main Warehouse", "New York")
	s.to = s.createWarehouse(t, "Secondary Warehouse", "Los Angeles")

	status, body := call(t, s.app, http.MethodPost, "/api/inventory-items", s.admin, map[string]any{
		"name": "Laptop", "sku": "laptop-001", "description": "High-performance laptop", "price": "1299.99",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	item := decode[dto.InventoryItemResponse](t, body)
	assert.Equal(t, "LAPTOP-001", item.SKU)
	s.item = item.ID

	if initial > 0 {
		status, body = call(t, s.app, http.MethodPost, "/api/stocks", s.bodeguero, map[string]any{
			"warehouse_id": s.from, "inventory_item_id": s.item, "quantity": initial,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
	}
	return s
}

func (s *scenario) createWarehouse(t *testing.T, name, location string) int64 {
	t.Helper()
	status, body := call(t, s.app, http.MethodPost, "/api/warehouses", s.admin, map[string]any{
		"name": name, "location": location,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[dto.WarehouseResponse](t, body).ID
}

// stockIn devuelve la fila de stock del artículo en la bodega (nil si no existe).
func (s *scenario) stockIn(t *testing.T, warehouseID int64) *dto.StockResponse {
	t.Helper()
	path := fmt.Sprintf("/api/stocks?warehouse_id=%d&inventory_item_id=%d", warehouseID, s.item)
	status, body := call(t, s.app, http.MethodGet, path, s.vendedor, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	list := decode[dto.ListResponse[dto.StockResponse]](t, body)
	if len(list.Items) == 0 {
		return nil
	}
	return &list.Items[0]
}

func (s *scenario) transfer(t *testing.T, qty int64) (int, []byte) {
	return call(t, s.app, http.MethodPost, "/api/stock-transfers", s.bodeguero, map[string]any{
		"inventory_item_id": s.item, "from_warehouse_id": s.from, "to_warehouse_id": s.to, "quantity": qty,
	})
}

func TestTransfer_CantidadInsuficienteDevuelve409(t *testing.T) {
	s := newScenario(t, 15)

	status, body := s.transfer(t, 20)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	assert.Equal(t, int64(15), s.stockIn(t, s.from).Quantity)
	assert.Nil(t, s.stockIn(t, s.to))

	status, body = call(t, s.app, http.MethodGet, "/api/stock-transfers", s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[dto.ListResponse[dto.StockTransferResponse]](t, body).Page.Total)
}

func TestTransfer_ExitoMueveCantidadYRegistra(t *testing.T) {
	s := newScenario(t, 15)

	status, body := s.transfer(t, 5)
	require.Equal(t, http.StatusCreated, status, string(body))
	tr := decode[dto.StockTransferResponse](t, body)
	assert.Equal(t, int64(5), tr.Quantity)
	assert.NotEmpty(t, tr.Reference)
	require.NotNil(t, tr.InventoryItem)
	require.NotNil(t, tr.FromWarehouse)
	require.NotNil(t, tr.ToWarehouse)
	assert.Equal(t, "LAPTOP-001", tr.InventoryItem.SKU)
	assert.Equal(t, "Main Warehouse", tr.FromWarehouse.Name)
	assert.Equal(t, "Secondary Warehouse", tr.ToWarehouse.Name)

	dest := s.stockIn(t, s.to)
	require.NotNil(t, dest.Warehouse)
	require.NotNil(t, dest.InventoryItem)
	assert.Equal(t, "Los Angeles", dest.Warehouse.Location)
	assert.Equal(t, "Laptop", dest.InventoryItem.Name)

	assert.Equal(t, int64(10), s.stockIn(t, s.from).Quantity)
	assert.Equal(t, int64(5), s.stockIn(t, s.to).Quantity)

	status, body = call(t, s.app, http.MethodGet, fmt.Sprintf("/api/stock-transfers/%d", tr.ID), s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tr.Reference, decode[dto.StockTransferResponse](t, body).Reference)

	status, body = call(t, s.app, http.MethodGet,
		fmt.Sprintf("/api/stock-transfers/item-history?inventory_item_id=%d", s.item), s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[dto.ListResponse[dto.StockTransferResponse]](t, body).Page.Total)
}

func TestTransfer_Validaciones(t *testing.T) {
	s := newScenario(t, 15)

	status, body := call(t, s.app, http.MethodPost, "/api/stock-transfers", s.bodeguero, map[string]any{
		"inventory_item_id": s.item, "from_warehouse_id": s.from, "to_warehouse_id": s.from, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, _ = s.transfer(t, 0)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, s.app, http.MethodPost, "/api/stock-transfers", s.bodeguero, map[string]any{
		"inventory_item_id": s.item, "from_warehouse_id": s.from, "to_warehouse_id": 999, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, _ = call(t, s.app, http.MethodPost, "/api/stock-transfers", s.vendedor, map[string]any{
		"inventory_item_id": s.item, "from_warehouse_id": s.from, "to_warehouse_id": s.to, "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestStock_FijarNegativoDevuelve422(t *testing.T) {
	s := newScenario(t, 15)
	stock := s.stockIn(t, s.from)

	status, body := call(t, s.app, http.MethodPut, fmt.Sprintf("/api/stocks/%d", stock.ID), s.bodeguero,
		map[string]any{"quantity": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "NEGATIVE_QUANTITY", errorCode(t, body))
	assert.Equal(t, int64(15), s.stockIn(t, s.from).Quantity)

	status, body = call(t, s.app, http.MethodPut, fmt.Sprintf("/api/stocks/%d", stock.ID), s.bodeguero,
		map[string]any{"quantity": 8})
	require.Equal(t, http.StatusOK, status)
	updated := decode[dto.StockResponse](t, body)
	assert.Equal(t, int64(8), updated.Quantity)
	assert.True(t, updated.LowStock)
}

func TestStock_AjusteQueDejariaNegativoDevuelve422(t *testing.T) {
	s := newScenario(t, 5)
	stock := s.stockIn(t, s.from)

	status, body := call(t, s.app, http.MethodPatch, fmt.Sprintf("/api/stocks/%d/adjust", stock.ID), s.bodeguero,
		map[string]any{"delta": -1000})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "NEGATIVE_QUANTITY", errorCode(t, body))

	status, body = call(t, s.app, http.MethodPatch, fmt.Sprintf("/api/stocks/%d/adjust", stock.ID), s.bodeguero,
		map[string]any{"delta": 7})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(12), decode[dto.StockResponse](t, body).Quantity)
}

func TestStock_AjusteQueDesbordariaDevuelve400(t *testing.T) {
	s := newScenario(t, 5)
	stock := s.stockIn(t, s.from)

	status, body := call(t, s.app, http.MethodPatch, fmt.Sprintf("/api/stocks/%d/adjust", stock.ID), s.bodeguero,
		map[string]any{"delta": int64(math.MaxInt64)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
	assert.Equal(t, int64(5), s.stockIn(t, s.from).Quantity)
}

func TestStock_RegistroAcumulaYValidaReferencias(t *testing.T) {
	s := newScenario(t, 15)

	status, body := call(t, s.app, http.MethodPost, "/api/stocks", s.admin, map[string]any{
		"warehouse_id": s.from, "inventory_item_id": s.item, "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(25), decode[dto.StockResponse](t, body).Quantity)

	status, body = call(t, s.app, http.MethodPost, "/api/stocks", s.admin, map[string]any{
		"warehouse_id": 404, "inventory_item_id": s.item, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, _ = call(t, s.app, http.MethodPost, "/api/stocks", s.admin, map[string]any{
		"warehouse_id": s.from, "inventory_item_id": s.item, "quantity": -3,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, s.app, http.MethodPost, "/api/stocks", s.admin, map[string]any{
		"warehouse_id": s.from, "inventory_item_id": s.item,
	})
	assert.Equal(t, http.StatusBadRequest, status, "quantity ausente")
}

func TestStock_ListadoBajoUmbral(t *testing.T) {
	s := newScenario(t, 4)

	status, body := call(t, s.app, http.MethodGet, "/api/stocks/low", s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.ListResponse[dto.StockResponse]](t, body)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(4), list.Items[0].Quantity)

	status, body = call(t, s.app, http.MethodGet, "/api/stocks/low?threshold=3", s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.ListResponse[dto.StockResponse]](t, body).Items)
}

func TestStock_EliminarSoloAdmin(t *testing.T) {
	s := newScenario(t, 3)
	stock := s.stockIn(t, s.from)
	path := fmt.Sprintf("/api/stocks/%d", stock.ID)

	status, _ := call(t, s.app, http.MethodDelete, path, s.bodeguero, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, s.app, http.MethodDelete, path, s.admin, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body := call(t, s.app, http.MethodGet, path, s.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestWarehouse_RolesYBorradoConInventario(t *testing.T) {
	s := newScenario(t, 15)

	status, body := call(t, s.app, http.MethodPost, "/api/warehouses", s.vendedor, map[string]any{
		"name": "Regional Hub", "location": "Chicago",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, body = call(t, s.app, http.MethodGet, "/api/warehouses", s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	all := decode[[]dto.WarehouseInventoryResponse](t, body)
	require.Len(t, all, 2)

	status, body = call(t, s.app, http.MethodPost, "/api/warehouses", s.admin, map[string]any{
		"name": "main warehouse", "location": "Boston",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))

	status, body = call(t, s.app, http.MethodDelete, fmt.Sprintf("/api/warehouses/%d", s.from), s.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, _ = call(t, s.app, http.MethodDelete, fmt.Sprintf("/api/warehouses/%d", s.to), s.admin, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(t, s.app, http.MethodGet, "/api/warehouses/abc", s.vendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestWarehouse_InventarioPaginado(t *testing.T) {
	s := newScenario(t, 15)

	status, body := call(t, s.app, http.MethodGet, fmt.Sprintf("/api/warehouses/%d/inventory?limit=1", s.from), s.vendedor, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	page := decode[dto.ListResponse[dto.StockResponse]](t, body)
	assert.Equal(t, 1, page.Page.Limit)
	assert.Equal(t, 1, page.Page.Total)

	status, body = call(t, s.app, http.MethodGet, fmt.Sprintf("/api/warehouses/%d", s.from), s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decode[dto.WarehouseInventoryResponse](t, body)
	assert.Equal(t, int64(15), detail.TotalQuantity)

	status, _ = call(t, s.app, http.MethodGet, "/api/warehouses/999/inventory", s.vendedor, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInventoryItem_ValidacionYBusqueda(t *testing.T) {
	s := newScenario(t, 0)

	status, body := call(t, s.app, http.MethodPost, "/api/inventory-items", s.admin, map[string]any{
		"name": "Mouse", "sku": "MOUSE-001", "price": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, _ = call(t, s.app, http.MethodPost, "/api/inventory-items", s.admin, map[string]any{
		"name": "Sample", "sku": "FREE-001", "price": "0",
	})
	assert.Equal(t, http.StatusCreated, status, "precio cero permitido")

	status, body = call(t, s.app, http.MethodPost, "/api/inventory-items", s.admin, map[string]any{
		"name": "Otra laptop", "sku": "LAPTOP-001", "price": "10",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))

	status, body = call(t, s.app, http.MethodGet, "/api/inventory-items?search=laptop", s.vendedor, nil)
	require.Equal(t, http.StatusOK, status)
	found := decode[dto.ListResponse[dto.InventoryItemResponse]](t, body)
	require.Len(t, found.Items, 1)
	assert.Equal(t, s.item, found.Items[0].ID)

	status, _ = call(t, s.app, http.MethodGet, "/api/inventory-items?min_price=100&max_price=10", s.vendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuth_RegistroLoginYPerfil(t *testing.T) {
	app := newTestAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "Bodega@Example.com", "password": "secreto123", "role": "bodeguero",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "bodega@example.com", "password": "secreto123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "corto@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "bodega@example.com", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "bodega@example.com", "password": "secreto123",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	login := decode[dto.LoginResponse](t, body)
	require.NotEmpty(t, login.Token)

	status, body = call(t, app, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[dto.UserResponse](t, body)
	assert.Equal(t, "bodega@example.com", me.Email)
	assert.Equal(t, "bodeguero", me.Role)
}

func TestRouter_RutaProtegidaSinToken(t *testing.T) {
	app := newTestAPI(t)
	status, body := call(t, app, http.MethodGet, "/api/stocks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))
}
