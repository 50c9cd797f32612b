package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/warehouse-api/internal/application/auth"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	WarehouseUC *usecase.WarehouseUseCase
	ItemUC      *usecase.InventoryItemUseCase
	Ledger      *inventory.StockLedger
	Transfers   *inventory.TransferEngine
	JWTSecret   string
}

// NewApp crea la app Fiber con el manejador de errores JSON y recover.
func NewApp(appName string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	adminOnly := RequireRole(entity.RoleAdmin)
	stockWriters := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Warehouses
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := protected.Group("/warehouses")
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Get("/:id/inventory", warehouseHandler.Inventory)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)

	// Inventory items
	itemHandler := NewInventoryItemHandler(deps.ItemUC)
	items := protected.Group("/inventory-items")
	items.Get("/", itemHandler.List)
	items.Post("/", adminOnly, itemHandler.Create)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", adminOnly, itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Delete)

	// Stocks (/low antes de /:id)
	stockHandler := NewStockHandler(deps.Ledger, deps.WarehouseUC, deps.ItemUC)
	stocks := protected.Group("/stocks")
	stocks.Get("/", stockHandler.List)
	stocks.Post("/", stockWriters, stockHandler.Record)
	stocks.Get("/low", stockHandler.Low)
	stocks.Get("/:id", stockHandler.GetByID)
	stocks.Put("/:id", stockWriters, stockHandler.Set)
	stocks.Patch("/:id/adjust", stockWriters, stockHandler.Adjust)
	stocks.Delete("/:id", adminOnly, stockHandler.Delete)

	// Stock transfers
	transferHandler := NewTransferHandler(deps.Transfers, deps.WarehouseUC, deps.ItemUC)
	transfers := protected.Group("/stock-transfers")
	transfers.Get("/", transferHandler.List)
	transfers.Post("/", stockWriters, transferHandler.Create)
	transfers.Get("/item-history", transferHandler.ItemHistory)
	transfers.Get("/:id", transferHandler.GetByID)
}
