package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/go-chi/chi/v5"
)

type AvailabilityReader interface {
	AvailableQuantity(ctx context.Context, productID string, branchID int64, excludeSessionKey string) (int, error)
}

type LedgerEditor interface {
	SetQuantity(ctx context.Context, productID string, branchID int64, quantity int) (oldQty, newQty int, err error)
}

type ProductLister interface {
	List(ctx context.Context) ([]stock.Product, error)
}

type StockHandler struct {
	Avail   AvailabilityReader
	Ledger  LedgerEditor
	Catalog ProductLister
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Get("/availability/{productID}", h.availability)
	r.Get("/products", h.listProducts)
	r.Put("/admin/stock", h.setStock)
}

type availabilityResp struct {
	ProductID string `json:"product_id"`
	BranchID  int64  `json:"branch_id"`
	Available int    `json:"available"`
}

func (h *StockHandler) availability(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	branchID, err := parseBranchID(r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid branch_id")
		return
	}
	sessionKey := r.URL.Query().Get("session_key")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	available, err := h.Avail.AvailableQuantity(ctx, productID, branchID, sessionKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResp{ProductID: productID, BranchID: branchID, Available: available})
}

func (h *StockHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	type productResp struct {
		ID             string `json:"id"`
		SKU            string `json:"sku"`
		Name           string `json:"name"`
		PriceCents     int    `json:"price_cents"`
		SalePriceCents *int   `json:"sale_price_cents,omitempty"`
	}
	out := make([]productResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, productResp{
			ID: p.ID, SKU: p.SKU, Name: p.Name,
			PriceCents: p.PriceCents, SalePriceCents: p.SalePriceCents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type setStockReq struct {
	ProductID string `json:"product_id"`
	BranchID  int64  `json:"branch_id"`
	Quantity  int    `json:"quantity"`
}

type setStockResp struct {
	ProductID   string `json:"product_id"`
	BranchID    int64  `json:"branch_id"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
}

func (h *StockHandler) setStock(w http.ResponseWriter, r *http.Request) {
	var req setStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusUnprocessableEntity, codeMissingFields, "product_id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	oldQty, newQty, err := h.Ledger.SetQuantity(ctx, req.ProductID, req.BranchID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setStockResp{
		ProductID: req.ProductID, BranchID: req.BranchID,
		OldQuantity: oldQty, NewQuantity: newQty,
	})
}

func parseBranchID(s string) (int64, error) {
	if s == "" {
		return stock.GlobalBranch, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
