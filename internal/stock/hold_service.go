package stock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/clock"
)

// TTL policy bounds how long inventory can be shadow-reserved.
const (
	MinHoldTTL     = 60 * time.Second
	MaxHoldTTL     = 3600 * time.Second
	DefaultHoldTTL = 600 * time.Second
)

type HoldStore interface {
	Upsert(ctx context.Context, h StockHold) error
	Delete(ctx context.Context, productID string, branchID int64, sessionKey string) error
	DeleteBySessionKey(ctx context.Context, sessionKey string) (int64, error)
}

type ProductChecker interface {
	Exists(ctx context.Context, productID string) (bool, error)
}

// HoldService creates, refreshes and releases holds keyed by an opaque
// session key.
type HoldService struct {
	Store   HoldStore
	Catalog ProductChecker
	Clock   clock.Clock
}

type HoldItem struct {
	ProductID string
	Quantity  int
}

type PlaceHoldsInput struct {
	SessionKey string // generated when empty
	BranchID   int64  // GlobalBranch for unscoped holds
	TTLSeconds int    // clamped to [MinHoldTTL, MaxHoldTTL]; 0 means default
	Items      []HoldItem
}

// PlaceHolds upserts one hold per item, all sharing the same session key and
// expiry. Nothing here is fatal: bad input surfaces as a validation error.
func (s *HoldService) PlaceHolds(ctx context.Context, in PlaceHoldsInput) (sessionKey string, expiresAt time.Time, err error) {
	if len(in.Items) == 0 {
		return "", time.Time{}, ErrNoItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return "", time.Time{}, ErrInvalidQuantity
		}
		ok, err := s.Catalog.Exists(ctx, it.ProductID)
		if err != nil {
			return "", time.Time{}, err
		}
		if !ok {
			return "", time.Time{}, ErrProductNotFound
		}
	}

	sessionKey = in.SessionKey
	if sessionKey == "" {
		sessionKey = NewSessionKey()
	}
	expiresAt = s.Clock.Now().Add(ClampTTL(in.TTLSeconds))

	for i, it := range in.Items {
		h := StockHold{
			ProductID:  it.ProductID,
			BranchID:   in.BranchID,
			SessionKey: sessionKey,
			Quantity:   it.Quantity,
			ExpiresAt:  expiresAt,
		}
		if err := s.Store.Upsert(ctx, h); err != nil {
			// The batch is all-or-nothing: rows already written would shadow
			// stock under a key the caller never sees. Best effort, the rows
			// also lapse at the TTL.
			for _, placed := range in.Items[:i] {
				if derr := s.Store.Delete(ctx, placed.ProductID, in.BranchID, sessionKey); derr != nil {
					log.Printf("hold rollback %s: %v", placed.ProductID, derr)
				}
			}
			return "", time.Time{}, err
		}
	}
	return sessionKey, expiresAt, nil
}

// Release deletes every hold under the key. Idempotent: unknown or already
// expired keys release zero rows without error.
func (s *HoldService) Release(ctx context.Context, sessionKey string) (int64, error) {
	if sessionKey == "" {
		return 0, nil
	}
	return s.Store.DeleteBySessionKey(ctx, sessionKey)
}

// Consume is Release under another name: the reservation became a real sale.
func (s *HoldService) Consume(ctx context.Context, sessionKey string) (int64, error) {
	return s.Release(ctx, sessionKey)
}

// ClampTTL maps a caller-supplied TTL in seconds onto the allowed window.
func ClampTTL(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultHoldTTL
	}
	d := time.Duration(seconds) * time.Second
	if d < MinHoldTTL {
		return MinHoldTTL
	}
	if d > MaxHoldTTL {
		return MaxHoldTTL
	}
	return d
}

// NewSessionKey returns 16 hex chars from a secure random source. The key is
// unguessable so one session cannot release another's holds.
func NewSessionKey() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failing means the host is broken
	}
	return hex.EncodeToString(b)
}
