package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	kafkago "github.com/segmentio/kafka-go"
)

type holdRow struct {
	productID  string
	branchID   int64
	sessionKey string
	quantity   int
	expiresAt  time.Time
}

type repoState struct {
	ledger map[string]int
	holds  map[string]holdRow
	orders []Order
	items  []OrderItem
}

func (s repoState) clone() repoState {
	cp := repoState{
		ledger: make(map[string]int, len(s.ledger)),
		holds:  make(map[string]holdRow, len(s.holds)),
		orders: append([]Order(nil), s.orders...),
		items:  append([]OrderItem(nil), s.items...),
	}
	for k, v := range s.ledger {
		cp.ledger[k] = v
	}
	for k, v := range s.holds {
		cp.holds[k] = v
	}
	return cp
}

// fakeRepo mimics the pgx repo including transaction semantics: mutations
// inside WithTx are discarded when the callback errors.
type fakeRepo struct {
	pricing map[string]stock.Pricing
	state   repoState
	tx      *repoState
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pricing: map[string]stock.Pricing{},
		state: repoState{
			ledger: map[string]int{},
			holds:  map[string]holdRow{},
		},
	}
}

func (r *fakeRepo) addProduct(id, name string, unitPriceCents int) {
	r.pricing[id] = stock.Pricing{ProductID: id, Name: name, UnitPriceCents: unitPriceCents}
}

func (r *fakeRepo) setLedger(productID string, branchID int64, qty int) {
	r.state.ledger[lkey(productID, branchID)] = qty
}

func (r *fakeRepo) addHold(productID string, branchID int64, sessionKey string, qty int, expiresAt time.Time) {
	r.state.holds[hkey(productID, branchID, sessionKey)] = holdRow{productID, branchID, sessionKey, qty, expiresAt}
}

func lkey(productID string, branchID int64) string {
	return fmt.Sprintf("%s|%d", productID, branchID)
}

func hkey(productID string, branchID int64, sessionKey string) string {
	return fmt.Sprintf("%s|%d|%s", productID, branchID, sessionKey)
}

func (r *fakeRepo) cur() *repoState {
	if r.tx != nil {
		return r.tx
	}
	return &r.state
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	cp := r.state.clone()
	r.tx = &cp
	err := fn(ctx)
	if err != nil {
		r.tx = nil
		return err
	}
	r.state = *r.tx
	r.tx = nil
	return nil
}

func (r *fakeRepo) GetStockForUpdate(_ context.Context, productID string, branchID int64) (int, error) {
	qty, ok := r.cur().ledger[lkey(productID, branchID)]
	if !ok {
		return 0, stock.ErrNotStocked
	}
	return qty, nil
}

func (r *fakeRepo) SumActiveHolds(_ context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error) {
	total := 0
	for _, h := range r.cur().holds {
		if h.productID != productID || h.branchID != branchID || h.sessionKey == excludeSessionKey {
			continue
		}
		if !h.expiresAt.After(now) {
			continue
		}
		total += h.quantity
	}
	return total, nil
}

func (r *fakeRepo) GetPricing(_ context.Context, productID string, _ int64) (stock.Pricing, error) {
	p, ok := r.pricing[productID]
	if !ok {
		return stock.Pricing{}, stock.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeRepo) InsertOrder(_ context.Context, o Order, items []OrderItem) error {
	st := r.cur()
	st.orders = append(st.orders, o)
	for _, it := range items {
		it.OrderID = o.ID
		st.items = append(st.items, it)
	}
	return nil
}

func (r *fakeRepo) DecrementStock(_ context.Context, productID string, branchID int64, amount int) (int, error) {
	st := r.cur()
	key := lkey(productID, branchID)
	qty, ok := st.ledger[key]
	if !ok {
		return 0, stock.ErrNotStocked
	}
	qty -= amount
	if qty < 0 {
		qty = 0
	}
	st.ledger[key] = qty
	return qty, nil
}

func (r *fakeRepo) DeleteHolds(_ context.Context, sessionKey string) (int64, error) {
	st := r.cur()
	var n int64
	for k, h := range st.holds {
		if h.sessionKey == sessionKey {
			delete(st.holds, k)
			n++
		}
	}
	return n, nil
}

// stepClock is a settable clock for simulating the guard window.
type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

// fakeGuard reproduces the SET NX EX window semantics in memory.
type fakeGuard struct {
	clk  *stepClock
	seen map[string]time.Time
}

func newFakeGuard(clk *stepClock) *fakeGuard {
	return &fakeGuard{clk: clk, seen: map[string]time.Time{}}
}

func (g *fakeGuard) FirstSubmission(_ context.Context, signature string, window time.Duration) (bool, error) {
	if at, ok := g.seen[signature]; ok && g.clk.now.Sub(at) < window {
		return false, nil
	}
	g.seen[signature] = g.clk.now
	return true, nil
}

func (g *fakeGuard) Forget(_ context.Context, signature string) error {
	delete(g.seen, signature)
	return nil
}

type fakePublisher struct {
	changes []stock.StockChangedPayload
}

func (p *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	var env stock.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		panic(err)
	}
	if env.EventType != stock.EventStockChanged {
		return
	}
	var pl stock.StockChangedPayload
	if err := json.Unmarshal(env.Payload, &pl); err != nil {
		panic(err)
	}
	p.changes = append(p.changes, pl)
}
