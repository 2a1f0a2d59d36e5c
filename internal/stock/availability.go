package stock

import (
	"context"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/clock"
)

// AvailabilityStore is what the calculator reads: the committed ledger and
// the active-hold aggregate. Both reads hit current state; no cache sits in
// front of this because its result gates a sale.
type AvailabilityStore interface {
	GetQuantity(ctx context.Context, productID string, branchID int64) (int, error)
	SumActive(ctx context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error)
}

// Store bundles the two pgx repos behind AvailabilityStore.
type Store struct {
	Ledger *LedgerRepo
	Holds  *HoldRepo
}

func (s Store) GetQuantity(ctx context.Context, productID string, branchID int64) (int, error) {
	return s.Ledger.GetQuantity(ctx, productID, branchID)
}

func (s Store) SumActive(ctx context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error) {
	return s.Holds.SumActive(ctx, productID, branchID, excludeSessionKey, now)
}

// Availability computes "available to sell" on demand:
// ledger quantity minus other sessions' non-expired holds.
type Availability struct {
	Store AvailabilityStore
	Clock clock.Clock
}

// AvailableQuantity returns the raw signed figure, no flooring at zero here,
// so a caller comparing against a requested quantity still fails correctly
// when holds exceed the ledger. Flooring belongs to display code.
// Returns ErrNotStocked when the (product, branch) pair has no ledger row.
func (a *Availability) AvailableQuantity(ctx context.Context, productID string, branchID int64, excludeSessionKey string) (int, error) {
	qty, err := a.Store.GetQuantity(ctx, productID, branchID)
	if err != nil {
		return 0, err
	}
	held, err := a.Store.SumActive(ctx, productID, branchID, excludeSessionKey, a.Clock.Now())
	if err != nil {
		return 0, err
	}
	return qty - held, nil
}
