// seed carga los datos de demostración (bodegas, artículos y stock) en el almacenamiento
// configurado y, opcionalmente, importa artículos desde un CSV.
//
// Uso: go run ./cmd/seed [-items articulos.csv] [-latin1]
// El CSV lleva encabezado name,sku,description,price. Con -latin1 se decodifica como ISO-8859-1
// (exportaciones de hojas de cálculo antiguas).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/cache"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-api/pkg/config"
	"github.com/jhoicas/warehouse-api/pkg/logger"
)

type seedWarehouse struct{ name, location string }

type seedItem struct {
	name, sku, description, price string
}

type seedStock struct {
	warehouse, sku string
	quantity       int64
}

var (
	demoWarehouses = []seedWarehouse{
		{"Main Warehouse", "New York"},
		{"Secondary Warehouse", "Los Angeles"},
		{"Regional Hub", "Chicago"},
	}
	demoItems = []seedItem{
		{"Laptop", "LAPTOP-001", "High-performance laptop", "1299.99"},
		{"Mouse", "MOUSE-001", "Wireless mouse", "29.99"},
		{"Keyboard", "KEYBOARD-001", "Mechanical keyboard", "149.99"},
		{"Monitor", "MONITOR-001", "27-inch 4K monitor", "499.99"},
		{"USB Cable", "CABLE-001", "USB-C cable 2m", "9.99"},
	}
	demoStocks = []seedStock{
		{"Main Warehouse", "LAPTOP-001", 25},
		{"Main Warehouse", "MOUSE-001", 5},
		{"Main Warehouse", "KEYBOARD-001", 100},
		{"Secondary Warehouse", "LAPTOP-001", 15},
		{"Secondary Warehouse", "MONITOR-001", 8},
		{"Secondary Warehouse", "CABLE-001", 250},
		{"Regional Hub", "MOUSE-001", 50},
		{"Regional Hub", "KEYBOARD-001", 3},
		{"Regional Hub", "MONITOR-001", 12},
	}
)

func main() {
	itemsCSV := flag.String("items", "", "CSV con artículos adicionales (name,sku,description,price)")
	latin1 := flag.Bool("latin1", false, "decodificar el CSV como ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, logger.Component(log, "migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	// Sin notificador: la carga inicial no dispara alertas de stock bajo.
	ledger := inventory.NewStockLedger(postgres.NewTxRunner(pool), postgres.NewStockRepository(pool), nil,
		inventory.LedgerConfig{LowStockThreshold: cfg.Stock.LowThreshold})
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	itemRepo := postgres.NewInventoryItemRepository(pool)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo, ledger, cache.Noop{}, 0, log)
	s := &seeder{
		log:           log,
		ledger:        ledger,
		warehouseRepo: warehouseRepo,
		itemRepo:      itemRepo,
		warehouseUC:   warehouseUC,
		itemUC:        usecase.NewInventoryItemUseCase(itemRepo, ledger, warehouseUC),
	}

	items := demoItems
	if *itemsCSV != "" {
		extra, err := readItemsCSV(*itemsCSV, *latin1)
		if err != nil {
			log.Fatal().Err(err).Str("file", *itemsCSV).Msg("leer CSV de artículos")
		}
		items = append(items, extra...)
	}

	if err := s.run(ctx, demoWarehouses, items, demoStocks); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Int("warehouses", len(demoWarehouses)).
		Int("items", len(items)).
		Int("stocks", len(demoStocks)).
		Msg("datos de demostración cargados")
}

type seeder struct {
	log           zerolog.Logger
	ledger        *inventory.StockLedger
	warehouseRepo repository.WarehouseRepository
	itemRepo      repository.InventoryItemRepository
	warehouseUC   *usecase.WarehouseUseCase
	itemUC        *usecase.InventoryItemUseCase
}

// run es idempotente: lo que ya existe (por nombre, SKU o fila de stock) se deja como está.
func (s *seeder) run(ctx context.Context, warehouses []seedWarehouse, items []seedItem, stocks []seedStock) error {
	for _, w := range warehouses {
		_, err := s.warehouseUC.Create(ctx, dto.CreateWarehouseRequest{Name: w.name, Location: w.location})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("bodega %s: %w", w.name, err)
		}
	}
	for _, it := range items {
		price, err := decimal.NewFromString(it.price)
		if err != nil {
			return fmt.Errorf("precio de %s: %w", it.sku, err)
		}
		_, err = s.itemUC.Create(ctx, dto.CreateInventoryItemRequest{
			Name: it.name, SKU: it.sku, Description: it.description, Price: &price,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("artículo %s: %w", it.sku, err)
		}
	}
	for _, st := range stocks {
		w, err := s.warehouseRepo.GetByName(ctx, st.warehouse)
		if err != nil || w == nil {
			return fmt.Errorf("bodega %s no encontrada: %w", st.warehouse, errors.Join(err, domain.ErrNotFound))
		}
		it, err := s.itemRepo.GetBySKU(ctx, usecase.NormalizeSKU(st.sku))
		if err != nil || it == nil {
			return fmt.Errorf("artículo %s no encontrado: %w", st.sku, errors.Join(err, domain.ErrNotFound))
		}
		existing, err := s.ledger.Get(ctx, w.ID, it.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			s.log.Debug().Str("warehouse", st.warehouse).Str("sku", st.sku).Msg("stock ya cargado")
			continue
		}
		if _, err := s.ledger.RecordStock(ctx, w.ID, it.ID, st.quantity); err != nil {
			return fmt.Errorf("stock %s/%s: %w", st.warehouse, st.sku, err)
		}
	}
	return nil
}

// readItemsCSV lee name,sku,description,price con encabezado.
func readItemsCSV(path string, latin1 bool) ([]seedItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	return parseItemsCSV(r)
}

func parseItemsCSV(r io.Reader) ([]seedItem, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"name", "sku", "price"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []seedItem
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		it := seedItem{
			name:        field(rec, "name"),
			sku:         field(rec, "sku"),
			description: field(rec, "description"),
			price:       field(rec, "price"),
		}
		if it.name == "" || it.sku == "" {
			return nil, fmt.Errorf("línea %d: name y sku son requeridos", line)
		}
		items = append(items, it)
	}
	return items, nil
}
