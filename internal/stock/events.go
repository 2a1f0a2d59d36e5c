package stock

import (
	"encoding/json"
	"time"
)

const (
	EventStockChanged = "StockChanged"
	EventStockLow     = "StockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product_id
	Payload       json.RawMessage `json:"payload"`
}

// StockChangedPayload is emitted on every ledger mutation (admin edit or
// order fulfillment). Carries old and new quantity so subscribers can decide
// whether to alert without re-querying.
type StockChangedPayload struct {
	ProductID   string `json:"product_id"`
	BranchID    int64  `json:"branch_id"`
	ProductName string `json:"product_name,omitempty"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
}

type StockLowPayload struct {
	ProductID   string `json:"product_id"`
	BranchID    int64  `json:"branch_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
}
