package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-branch-stock.git/internal/checkout"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
)

const (
	codeInvalidJSON       = "invalid_json"
	codeMissingFields     = "missing_fields"
	codeInvalidQuantity   = "invalid_quantity"
	codeProductNotFound   = "product_not_found"
	codeNotStocked        = "not_stocked"
	codeDuplicateOrder    = "duplicate_order"
	codeInsufficientStock = "insufficient_stock"
	codeInternalError     = "internal_error"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type insufficientStockResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps domain errors onto the wire. Anything unrecognized
// becomes an opaque 500 so ledger and hold internals never leak to callers.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *checkout.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, insufficientStockResponse{
			Error:     insufficient.Error(),
			Code:      codeInsufficientStock,
			ProductID: insufficient.ProductID,
			Available: insufficient.Available,
			Requested: insufficient.Requested,
		})
	case errors.Is(err, checkout.ErrDuplicateOrder):
		writeError(w, http.StatusConflict, codeDuplicateOrder, err.Error())
	case errors.Is(err, stock.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, stock.ErrNotStocked):
		writeError(w, http.StatusNotFound, codeNotStocked, err.Error())
	case errors.Is(err, stock.ErrInvalidQuantity):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidQuantity, err.Error())
	case errors.Is(err, stock.ErrNoItems), errors.Is(err, checkout.ErrMissingRecipient):
		writeError(w, http.StatusUnprocessableEntity, codeMissingFields, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
