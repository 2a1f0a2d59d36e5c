package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// fakeStore is an in-memory stand-in for the pgx repos, good enough for the
// service and availability tests.
type fakeStore struct {
	products map[string]Pricing
	ledger   map[string]int       // productID|branchID -> quantity
	holds    map[string]StockHold // productID|branchID|sessionKey
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]Pricing{},
		ledger:   map[string]int{},
		holds:    map[string]StockHold{},
	}
}

func ledgerKey(productID string, branchID int64) string {
	return fmt.Sprintf("%s|%d", productID, branchID)
}

func holdKey(productID string, branchID int64, sessionKey string) string {
	return fmt.Sprintf("%s|%d|%s", productID, branchID, sessionKey)
}

func (f *fakeStore) addProduct(id, name string, unitPriceCents int) {
	f.products[id] = Pricing{ProductID: id, Name: name, UnitPriceCents: unitPriceCents}
}

func (f *fakeStore) GetQuantity(_ context.Context, productID string, branchID int64) (int, error) {
	qty, ok := f.ledger[ledgerKey(productID, branchID)]
	if !ok {
		return 0, ErrNotStocked
	}
	return qty, nil
}

func (f *fakeStore) SetQuantity(_ context.Context, productID string, branchID int64, quantity int) (int, error) {
	if quantity < 0 {
		return 0, ErrInvalidQuantity
	}
	if _, ok := f.products[productID]; !ok {
		return 0, ErrProductNotFound
	}
	f.ledger[ledgerKey(productID, branchID)] = quantity
	return quantity, nil
}

func (f *fakeStore) SumActive(_ context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error) {
	total := 0
	for _, h := range f.holds {
		if h.ProductID != productID || h.BranchID != branchID {
			continue
		}
		if h.SessionKey == excludeSessionKey {
			continue
		}
		if !h.ExpiresAt.After(now) {
			continue
		}
		total += h.Quantity
	}
	return total, nil
}

func (f *fakeStore) Upsert(_ context.Context, h StockHold) error {
	if _, ok := f.products[h.ProductID]; !ok {
		return ErrProductNotFound
	}
	f.holds[holdKey(h.ProductID, h.BranchID, h.SessionKey)] = h
	return nil
}

func (f *fakeStore) Delete(_ context.Context, productID string, branchID int64, sessionKey string) error {
	delete(f.holds, holdKey(productID, branchID, sessionKey))
	return nil
}

func (f *fakeStore) DeleteBySessionKey(_ context.Context, sessionKey string) (int64, error) {
	var n int64
	for k, h := range f.holds {
		if h.SessionKey == sessionKey {
			delete(f.holds, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, h := range f.holds {
		if !h.ExpiresAt.After(now) {
			delete(f.holds, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Exists(_ context.Context, productID string) (bool, error) {
	_, ok := f.products[productID]
	return ok, nil
}

func (f *fakeStore) GetPricing(_ context.Context, productID string, _ int64) (Pricing, error) {
	p, ok := f.products[productID]
	if !ok {
		return Pricing{}, ErrProductNotFound
	}
	return p, nil
}

// flakyHoldStore fails upserts for one product, for batch rollback tests.
type flakyHoldStore struct {
	*fakeStore
	failOn string
}

func (s *flakyHoldStore) Upsert(ctx context.Context, h StockHold) error {
	if h.ProductID == s.failOn {
		return errors.New("storage unavailable")
	}
	return s.fakeStore.Upsert(ctx, h)
}

// fakePublisher captures published envelopes.
type fakePublisher struct {
	envelopes []Envelope
}

func (p *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		panic(err)
	}
	p.envelopes = append(p.envelopes, env)
}
