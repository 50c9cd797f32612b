package usecase

import (
	"context"
	"fmt"
	"time"
)

// Cache puerto de caché de lecturas. Los errores de caché nunca fallan la petición.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DefaultCacheTTL vigencia de los listados cacheados.
const DefaultCacheTTL = time.Hour

const keyAllWarehouses = "warehouses.all"

func warehouseInventoryKey(id int64) string {
	return fmt.Sprintf("warehouse.%d.inventory", id)
}
