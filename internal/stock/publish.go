package stock

import (
	"time"

	kafkax "github.com/ariefcatur/go-branch-stock.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is the slice of kafkax.Producer the stock services need.
// Publishing is fire-and-forget: a mutation must never fail because a
// downstream subscriber was unreachable.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

func PublishStockChanged(p Publisher, producer, traceID string, pl StockChangedPayload) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventStockChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: pl.ProductID,
		Payload:       kafkax.MustMarshal(pl),
	}
	p.Publish(PartitionKey(pl.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStockChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func PublishStockLow(p Publisher, producer, traceID string, pl StockLowPayload) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: pl.ProductID,
		Payload:       kafkax.MustMarshal(pl),
	}
	p.Publish(PartitionKey(pl.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
