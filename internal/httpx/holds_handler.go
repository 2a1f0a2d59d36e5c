package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/go-chi/chi/v5"
)

// HoldPlacer is what the handler needs from stock.HoldService.
type HoldPlacer interface {
	PlaceHolds(ctx context.Context, in stock.PlaceHoldsInput) (sessionKey string, expiresAt time.Time, err error)
	Release(ctx context.Context, sessionKey string) (int64, error)
}

type HoldsHandler struct {
	Holds HoldPlacer
}

func (h *HoldsHandler) Register(r *chi.Mux) {
	r.Post("/holds", h.placeHolds)
	r.Post("/holds/release", h.release)
}

type productQtyReq struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type placeHoldsReq struct {
	SessionKey string          `json:"session_key"`
	BranchID   int64           `json:"branch_id"`
	TTLSeconds int             `json:"ttl_seconds"`
	Products   []productQtyReq `json:"products"`
}

type placeHoldsResp struct {
	SessionKey string    `json:"session_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (h *HoldsHandler) placeHolds(w http.ResponseWriter, r *http.Request) {
	var req placeHoldsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid json")
		return
	}
	if len(req.Products) == 0 {
		writeError(w, http.StatusUnprocessableEntity, codeMissingFields, "products required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items := make([]stock.HoldItem, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, stock.HoldItem{ProductID: p.ID, Quantity: p.Quantity})
	}

	key, expiresAt, err := h.Holds.PlaceHolds(ctx, stock.PlaceHoldsInput{
		SessionKey: req.SessionKey,
		BranchID:   req.BranchID,
		TTLSeconds: req.TTLSeconds,
		Items:      items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placeHoldsResp{SessionKey: key, ExpiresAt: expiresAt})
}

type releaseReq struct {
	SessionKey string `json:"session_key"`
}

type releaseResp struct {
	Released int64 `json:"released"`
}

func (h *HoldsHandler) release(w http.ResponseWriter, r *http.Request) {
	var req releaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid json")
		return
	}
	if req.SessionKey == "" {
		writeError(w, http.StatusUnprocessableEntity, codeMissingFields, "session_key required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Holds.Release(ctx, req.SessionKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, releaseResp{Released: n})
}
