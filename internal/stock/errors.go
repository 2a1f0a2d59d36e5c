package stock

import "errors"

var (
	// ErrNotStocked: no ledger row for (product, branch). Distinct from a row
	// with quantity 0; callers must treat it as unavailable, not unlimited.
	ErrNotStocked = errors.New("product not stocked at branch")

	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrNoItems         = errors.New("no items")
)
