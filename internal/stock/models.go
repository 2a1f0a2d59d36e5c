package stock

import "time"

// GlobalBranch is the branch id used for unscoped (storefront-wide) stock.
// Branch-scoped and global pools never mix: a hold at branch 0 only counts
// against the global ledger row, and vice versa.
const GlobalBranch int64 = 0

type Product struct {
	ID             string
	SKU            string
	Name           string
	PriceCents     int
	SalePriceCents *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BranchStock is the committed quantity of one product at one branch.
// Single source of truth for inventory; quantity never goes negative.
type BranchStock struct {
	ProductID          string
	BranchID           int64
	Quantity           int
	PriceOverrideCents *int
	UpdatedAt          time.Time
}

// StockHold is a temporary, advisory reservation scoped to one checkout
// session. A hold past ExpiresAt is treated as gone by every reader, whether
// or not the sweeper has physically deleted the row.
type StockHold struct {
	ProductID  string
	BranchID   int64
	SessionKey string
	Quantity   int
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Pricing is the catalog view checkout freezes into order items: effective
// unit price resolves branch override, then sale price, then list price.
type Pricing struct {
	ProductID      string
	Name           string
	UnitPriceCents int
}
