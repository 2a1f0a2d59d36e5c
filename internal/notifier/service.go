package notifier

import (
	"context"
	"encoding/json"
	"log"

	kafkax "github.com/ariefcatur/go-branch-stock.git/internal/kafka"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	kafkago "github.com/segmentio/kafka-go"
)

// StateStore is the notifier's Redis surface (dedup + advisory cache).
type StateStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
	CacheQuantity(ctx context.Context, productID string, branchID int64, qty int) error
}

// Service consumes stock.changed, keeps the per-product quantity cache warm
// for UI subscribers, and republishes a stock.low alert when the new quantity
// drops to zero or under the threshold.
type Service struct {
	Store       StateStore
	ProducerLow stock.Publisher
	ServiceName string
	Threshold   int
}

// HandleStockChanged is wired as the consumer handler.
func (s *Service) HandleStockChanged(ctx context.Context, m kafkago.Message) error {
	var env stock.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != stock.EventStockChanged {
		return nil // ignore
	}

	// dedup by event_id; redelivery after a crash-before-commit is expected
	if seen, _ := s.Store.Seen(ctx, env.EventID); seen {
		return nil
	}
	if err := s.Store.MarkSeen(ctx, env.EventID); err != nil {
		log.Printf("notifier dedup: %v", err)
	}

	p, err := kafkax.UnwrapPayload[stock.StockChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Store.CacheQuantity(ctx, p.ProductID, p.BranchID, p.NewQuantity); err != nil {
		log.Printf("notifier cache: %v", err)
	}

	// Only alert on the way down; admin restocks crossing the threshold
	// upward are not low-stock events.
	if p.NewQuantity >= p.OldQuantity || p.NewQuantity > s.Threshold {
		return nil
	}

	stock.PublishStockLow(s.ProducerLow, s.ServiceName, env.TraceID, stock.StockLowPayload{
		ProductID:   p.ProductID,
		BranchID:    p.BranchID,
		ProductName: p.ProductName,
		Quantity:    p.NewQuantity,
		Threshold:   s.Threshold,
	})
	return nil
}
