package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOrder: a near-identical order was just created. Meant to be
	// retried by the human once the window lapses, not by client code.
	ErrDuplicateOrder = errors.New("duplicate order submission")

	ErrMissingRecipient = errors.New("user id or shipping address required")
)

// InsufficientStockError reports the first line item that failed the
// availability check, with enough detail for the caller to adjust and retry.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}
