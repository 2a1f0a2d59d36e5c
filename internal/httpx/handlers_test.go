package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/checkout"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
)

type fakeHoldPlacer struct {
	gotInput   stock.PlaceHoldsInput
	key        string
	expiresAt  time.Time
	err        error
	releasedN  int64
	releaseKey string
}

func (f *fakeHoldPlacer) PlaceHolds(_ context.Context, in stock.PlaceHoldsInput) (string, time.Time, error) {
	f.gotInput = in
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.key, f.expiresAt, nil
}

func (f *fakeHoldPlacer) Release(_ context.Context, sessionKey string) (int64, error) {
	f.releaseKey = sessionKey
	return f.releasedN, nil
}

type fakeOrderPlacer struct {
	summary checkout.OrderSummary
	err     error
}

func (f *fakeOrderPlacer) PlaceOrder(_ context.Context, _ checkout.PlaceOrderInput) (checkout.OrderSummary, error) {
	if f.err != nil {
		return checkout.OrderSummary{}, f.err
	}
	return f.summary, nil
}

func newTestRouter(holds *fakeHoldPlacer, orders *fakeOrderPlacer) http.Handler {
	r := NewRouter()
	if holds != nil {
		(&HoldsHandler{Holds: holds}).Register(r)
	}
	if orders != nil {
		(&OrdersHandler{Checkout: orders}).Register(r)
	}
	return r
}

func TestHoldsHandler_PlaceHolds(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	holds := &fakeHoldPlacer{key: "abcdef0123456789", expiresAt: expires}
	router := newTestRouter(holds, nil)

	body := `{"branch_id":2,"ttl_seconds":300,"products":[{"id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/holds", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp placeHoldsResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionKey != "abcdef0123456789" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if holds.gotInput.BranchID != 2 || holds.gotInput.TTLSeconds != 300 || len(holds.gotInput.Items) != 1 {
		t.Fatalf("input not passed through: %+v", holds.gotInput)
	}
}

func TestHoldsHandler_PlaceHolds_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"invalid json", "{", nil, http.StatusBadRequest, codeInvalidJSON},
		{"empty products", `{"products":[]}`, nil, http.StatusUnprocessableEntity, codeMissingFields},
		{"unknown product", `{"products":[{"id":"x","quantity":1}]}`, stock.ErrProductNotFound, http.StatusNotFound, codeProductNotFound},
		{"bad quantity", `{"products":[{"id":"p1","quantity":-1}]}`, stock.ErrInvalidQuantity, http.StatusUnprocessableEntity, codeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeHoldPlacer{err: tt.svcErr}, nil)
			req := httptest.NewRequest(http.MethodPost, "/holds", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestHoldsHandler_Release(t *testing.T) {
	t.Parallel()

	holds := &fakeHoldPlacer{releasedN: 2}
	router := newTestRouter(holds, nil)

	req := httptest.NewRequest(http.MethodPost, "/holds/release", bytes.NewBufferString(`{"session_key":"k1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp releaseResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Released != 2 || holds.releaseKey != "k1" {
		t.Fatalf("unexpected release: %+v key=%s", resp, holds.releaseKey)
	}
}

func TestOrdersHandler_PlaceOrder(t *testing.T) {
	t.Parallel()

	delivery := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	orders := &fakeOrderPlacer{summary: checkout.OrderSummary{
		OrderID:    "o1",
		Number:     "ORD-AB12CD34EF",
		TotalCents: 9800,
		Items: []checkout.OrderItem{
			{ProductID: "p1", ProductName: "Keyboard", Qty: 2, UnitPriceCents: 4900},
		},
		Shipping:      checkout.Shipping{Name: "Budi", Address: "Jl. Melati 5"},
		DeliveryDate:  delivery,
		HoldsConsumed: 1,
	}}
	router := newTestRouter(nil, orders)

	body := `{"user_id":"u1","shipping":{"name":"Budi","address":"Jl. Melati 5"},"hold_key":"k1","products":[{"id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp orderSummaryResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Number != "ORD-AB12CD34EF" || resp.TotalCents != 9800 || resp.HoldsConsumed != 1 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestOrdersHandler_InsufficientStock(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderPlacer{err: &checkout.InsufficientStockError{
		ProductID: "p1", Available: 3, Requested: 5,
	}}
	router := newTestRouter(nil, orders)

	body := `{"user_id":"u1","products":[{"id":"p1","quantity":5}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp insufficientStockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != codeInsufficientStock || resp.ProductID != "p1" || resp.Available != 3 || resp.Requested != 5 {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestOrdersHandler_DuplicateOrder(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil, &fakeOrderPlacer{err: checkout.ErrDuplicateOrder})

	body := `{"user_id":"u1","products":[{"id":"p1","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != codeDuplicateOrder {
		t.Fatalf("expected %q, got %q", codeDuplicateOrder, resp.Code)
	}
}

func TestOrdersHandler_InternalErrorIsOpaque(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil, &fakeOrderPlacer{err: context.DeadlineExceeded})

	body := `{"user_id":"u1","products":[{"id":"p1","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "internal error" || resp.Code != codeInternalError {
		t.Fatalf("internal detail must not leak: %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
