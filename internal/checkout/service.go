package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/clock"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/google/uuid"
)

// Repository is the storage surface of the checkout validator. All calls made
// inside WithTx share one transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetStockForUpdate(ctx context.Context, productID string, branchID int64) (int, error)
	SumActiveHolds(ctx context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error)
	GetPricing(ctx context.Context, productID string, branchID int64) (stock.Pricing, error)
	InsertOrder(ctx context.Context, o Order, items []OrderItem) error
	DecrementStock(ctx context.Context, productID string, branchID int64, amount int) (int, error)
	DeleteHolds(ctx context.Context, sessionKey string) (int64, error)
}

type DuplicateGuard interface {
	FirstSubmission(ctx context.Context, signature string, window time.Duration) (bool, error)
	Forget(ctx context.Context, signature string) error
}

const (
	defaultGuardWindow      = 5 * time.Second
	defaultDeliveryLeadDays = 3
)

// Service is the only component allowed to decrement the ledger as part of a
// sale.
type Service struct {
	Repo             Repository
	Guard            DuplicateGuard
	Producer         stock.Publisher
	Clock            clock.Clock
	ServiceName      string
	GuardWindow      time.Duration
	DeliveryLeadDays int
}

// PlaceOrder runs the order attempt to completion or first failure:
// duplicate screen, per-line availability with the caller's own hold
// excluded, then commit + ledger decrement + hold consumption in one
// transaction. No partial order is ever persisted.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (OrderSummary, error) {
	if len(in.Items) == 0 {
		return OrderSummary{}, stock.ErrNoItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return OrderSummary{}, stock.ErrInvalidQuantity
		}
	}
	if in.UserID == "" && in.Shipping.Address == "" {
		return OrderSummary{}, ErrMissingRecipient
	}

	// Freeze name and unit price per line as of validation time.
	items := make([]OrderItem, 0, len(in.Items))
	total := 0
	for _, it := range in.Items {
		pricing, err := s.Repo.GetPricing(ctx, it.ProductID, in.BranchID)
		if err != nil {
			return OrderSummary{}, err
		}
		items = append(items, OrderItem{
			ProductID:      it.ProductID,
			ProductName:    pricing.Name,
			Qty:            it.Quantity,
			UnitPriceCents: pricing.UnitPriceCents,
		})
		total += pricing.UnitPriceCents * it.Quantity
	}

	sig := orderSignature(in.UserID, in.Shipping, total)
	if err := s.screenDuplicate(ctx, sig); err != nil {
		return OrderSummary{}, err
	}

	now := s.Clock.Now()
	orderID := uuid.NewString()
	order := Order{
		ID:              orderID,
		Number:          newOrderNumber(orderID),
		UserID:          in.UserID,
		ShippingName:    in.Shipping.Name,
		ShippingAddress: in.Shipping.Address,
		ShippingPhone:   in.Shipping.Phone,
		BranchID:        in.BranchID,
		TotalCents:      total,
		DeliveryDate:    now.AddDate(0, 0, s.deliveryLeadDays()),
		CreatedAt:       now,
	}

	var changes []stock.StockChangedPayload
	var consumed int64

	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		// Validation stops at the first failing line item; it does not
		// aggregate every shortfall into one response.
		oldQty := make([]int, len(in.Items))
		for i, it := range in.Items {
			qty, err := s.Repo.GetStockForUpdate(txCtx, it.ProductID, in.BranchID)
			if errors.Is(err, stock.ErrNotStocked) {
				// No ledger row means not sold at this branch, not unlimited.
				return &InsufficientStockError{ProductID: it.ProductID, Available: 0, Requested: it.Quantity}
			}
			if err != nil {
				return err
			}
			held, err := s.Repo.SumActiveHolds(txCtx, it.ProductID, in.BranchID, in.HoldKey, now)
			if err != nil {
				return err
			}
			if available := qty - held; available < it.Quantity {
				return &InsufficientStockError{ProductID: it.ProductID, Available: available, Requested: it.Quantity}
			}
			oldQty[i] = qty
		}

		if err := s.Repo.InsertOrder(txCtx, order, items); err != nil {
			return err
		}

		for i, it := range in.Items {
			newQty, err := s.Repo.DecrementStock(txCtx, it.ProductID, in.BranchID, it.Quantity)
			if err != nil {
				return err
			}
			changes = append(changes, stock.StockChangedPayload{
				ProductID:   it.ProductID,
				BranchID:    in.BranchID,
				ProductName: items[i].ProductName,
				OldQuantity: oldQty[i],
				NewQuantity: newQty,
			})
		}

		if in.HoldKey != "" {
			n, err := s.Repo.DeleteHolds(txCtx, in.HoldKey)
			if err != nil {
				return err
			}
			consumed = n
		}
		return nil
	})
	if err != nil {
		// The signature claim stands for a created order only; a failed
		// attempt must not block an immediate retry.
		if ferr := s.Guard.Forget(ctx, sig); ferr != nil {
			log.Printf("duplicate guard forget: %v", ferr)
		}
		return OrderSummary{}, err
	}

	for _, c := range changes {
		stock.PublishStockChanged(s.Producer, s.ServiceName, "", c)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	return OrderSummary{
		OrderID:       order.ID,
		Number:        order.Number,
		TotalCents:    order.TotalCents,
		Items:         items,
		Shipping:      in.Shipping,
		DeliveryDate:  order.DeliveryDate,
		HoldsConsumed: consumed,
	}, nil
}

func (s *Service) screenDuplicate(ctx context.Context, sig string) error {
	first, err := s.Guard.FirstSubmission(ctx, sig, s.guardWindow())
	if err != nil {
		// A broken guard must not block sales.
		log.Printf("duplicate guard: %v", err)
		return nil
	}
	if !first {
		return ErrDuplicateOrder
	}
	return nil
}

func (s *Service) guardWindow() time.Duration {
	if s.GuardWindow > 0 {
		return s.GuardWindow
	}
	return defaultGuardWindow
}

func (s *Service) deliveryLeadDays() int {
	if s.DeliveryLeadDays > 0 {
		return s.DeliveryLeadDays
	}
	return defaultDeliveryLeadDays
}

// orderSignature fingerprints (user or guest shipping address, total) for the
// double-submit screen.
func orderSignature(userID string, sh Shipping, totalCents int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", userID, sh.Address, totalCents)))
	return hex.EncodeToString(h[:])
}

// newOrderNumber derives the public number from the order's uuid. The id is
// the primary key, so the number can never collide with another order's and
// the UNIQUE constraint on it never rejects a valid sale.
func newOrderNumber(orderID string) string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
}
