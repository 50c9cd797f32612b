package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	_ "github.com/jhoicas/warehouse-api/docs"
	"github.com/jhoicas/warehouse-api/internal/application/auth"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/notification"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/cache"
	infrakafka "github.com/jhoicas/warehouse-api/internal/infrastructure/kafka"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/observability"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/warehouse-api/internal/interfaces/http"
	"github.com/jhoicas/warehouse-api/pkg/config"
	"github.com/jhoicas/warehouse-api/pkg/logger"
)

// repositories agrupa los puertos que necesita la aplicación, sea cual sea el backend.
type repositories struct {
	tx         inventory.TxRunner
	stocks     repository.StockRepository
	transfers  repository.StockTransferRepository
	warehouses repository.WarehouseRepository
	items      repository.InventoryItemRepository
	users      repository.UserRepository
}

// @title                       Warehouse API
// @version                     1.0
// @description                 Inventario multi-bodega: artículos, stock por bodega y traslados atómicos.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Otel.Endpoint,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.App.Env,
		Insecure:    cfg.App.Env != "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	var repos repositories
	var pool *pgxpool.Pool
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		repos = repositories{
			tx:         store,
			stocks:     store.Stocks(),
			transfers:  store.Transfers(),
			warehouses: store.Warehouses(),
			items:      store.Items(),
			users:      store.Users(),
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.Migrate(ctx, pool, logger.Component(log, "migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		repos = repositories{
			tx:         postgres.NewTxRunner(pool),
			stocks:     postgres.NewStockRepository(pool),
			transfers:  postgres.NewStockTransferRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			items:      postgres.NewInventoryItemRepository(pool),
			users:      postgres.NewUserRepository(pool),
		}
	}

	// Notificaciones de stock bajo: log siempre, Kafka si hay brokers.
	notifyLog := logger.Component(log, "notification")
	sinks := []notification.Sink{notification.NewLogSink(notifyLog)}
	var publisher *infrakafka.LowStockPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = infrakafka.NewLowStockPublisher(infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.LowStockTopic))
		sinks = append(sinks, publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.LowStockTopic).Msg("publicación Kafka activa")
	}
	dispatcher := notification.NewDispatcher(notification.Config{
		QueueSize:   cfg.Notify.QueueSize,
		Workers:     cfg.Notify.Workers,
		MaxAttempts: cfg.Notify.MaxAttempts,
	}, notifyLog, sinks...)

	readCache := newCache(ctx, cfg.Redis, log)

	ledger := inventory.NewStockLedger(repos.tx, repos.stocks, dispatcher, inventory.LedgerConfig{
		LowStockThreshold: cfg.Stock.LowThreshold,
	})
	transferEngine := inventory.NewTransferEngine(repos.tx, ledger, repos.transfers)
	warehouseUC := usecase.NewWarehouseUseCase(repos.warehouses, ledger, readCache, cfg.Redis.TTL, logger.Component(log, "warehouses"))
	itemUC := usecase.NewInventoryItemUseCase(repos.items, ledger, warehouseUC)
	authUC := auth.NewAuthUseCase(repos.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(cfg.App.Name)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		WarehouseUC: warehouseUC,
		ItemUC:      itemUC,
		Ledger:      ledger,
		Transfers:   transferEngine,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Después del servidor: ya no entran mutaciones, se vacía la cola.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del despachador de notificaciones")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del productor Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}
	if pool != nil {
		pool.Close()
	}

	log.Info().Msg("aplicación detenida")
}

// newCache usa Redis si está configurado; si no responde, sigue sin caché.
func newCache(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) usecase.Cache {
	if cfg.Addr == "" {
		return cache.Noop{}
	}
	client, err := cache.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis no disponible, caché deshabilitada")
		return cache.Noop{}
	}
	return cache.NewRedisCache(client, "warehouse-api:")
}
