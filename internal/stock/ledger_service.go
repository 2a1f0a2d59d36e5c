package stock

import (
	"context"
	"errors"
)

type LedgerStore interface {
	GetQuantity(ctx context.Context, productID string, branchID int64) (int, error)
	SetQuantity(ctx context.Context, productID string, branchID int64, quantity int) (int, error)
}

type PricingReader interface {
	GetPricing(ctx context.Context, productID string, branchID int64) (Pricing, error)
}

// LedgerService is the admin stock-edit path. Every mutation emits a
// stock.changed event with old and new quantity; emission is fire-and-forget.
type LedgerService struct {
	Ledger      LedgerStore
	Catalog     PricingReader
	Producer    Publisher
	ServiceName string
}

func (s *LedgerService) SetQuantity(ctx context.Context, productID string, branchID int64, quantity int) (oldQty, newQty int, err error) {
	if quantity < 0 {
		return 0, 0, ErrInvalidQuantity
	}

	pricing, err := s.Catalog.GetPricing(ctx, productID, branchID)
	if err != nil {
		return 0, 0, err
	}

	oldQty, err = s.Ledger.GetQuantity(ctx, productID, branchID)
	if errors.Is(err, ErrNotStocked) {
		oldQty = 0
	} else if err != nil {
		return 0, 0, err
	}

	newQty, err = s.Ledger.SetQuantity(ctx, productID, branchID, quantity)
	if err != nil {
		return 0, 0, err
	}

	PublishStockChanged(s.Producer, s.ServiceName, "", StockChangedPayload{
		ProductID:   productID,
		BranchID:    branchID,
		ProductName: pricing.Name,
		OldQuantity: oldQty,
		NewQuantity: newQty,
	})
	return oldQty, newQty, nil
}
