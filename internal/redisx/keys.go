package redisx

import "time"

const (
	// Duplicate-order screen: guard:order:{signature} -> 1 while the window
	// is open. Absorbs client-side double-submits, not a security control.
	KeyOrderGuard = "guard:order:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Latest known quantity per product/branch for UI subscribers:
	// stock:qty:{product_id}:{branch_id}. Advisory only, the availability
	// gate always reads Postgres.
	KeyStockQty = "stock:qty:%s:%d"
)

var (
	TTLDedup      = 48 * time.Hour
	TTLStockCache = 5 * time.Minute
)
