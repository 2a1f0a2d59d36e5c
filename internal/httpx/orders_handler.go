package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/checkout"
	"github.com/go-chi/chi/v5"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in checkout.PlaceOrderInput) (checkout.OrderSummary, error)
}

type OrdersHandler struct {
	Checkout OrderPlacer
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
}

type shippingReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type placeOrderReq struct {
	UserID   string          `json:"user_id"`
	Shipping shippingReq     `json:"shipping"`
	BranchID int64           `json:"branch_id"`
	HoldKey  string          `json:"hold_key"`
	Products []productQtyReq `json:"products"`
}

type orderItemResp struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

type orderSummaryResp struct {
	OrderID       string          `json:"order_id"`
	Number        string          `json:"number"`
	TotalCents    int             `json:"total_cents"`
	Items         []orderItemResp `json:"items"`
	Shipping      shippingReq     `json:"shipping"`
	DeliveryDate  time.Time       `json:"delivery_date"`
	HoldsConsumed int64           `json:"holds_consumed"`
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items := make([]checkout.LineItem, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, checkout.LineItem{ProductID: p.ID, Quantity: p.Quantity})
	}

	summary, err := h.Checkout.PlaceOrder(ctx, checkout.PlaceOrderInput{
		UserID: req.UserID,
		Shipping: checkout.Shipping{
			Name:    req.Shipping.Name,
			Address: req.Shipping.Address,
			Phone:   req.Shipping.Phone,
		},
		BranchID: req.BranchID,
		HoldKey:  req.HoldKey,
		Items:    items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := orderSummaryResp{
		OrderID:    summary.OrderID,
		Number:     summary.Number,
		TotalCents: summary.TotalCents,
		Shipping: shippingReq{
			Name:    summary.Shipping.Name,
			Address: summary.Shipping.Address,
			Phone:   summary.Shipping.Phone,
		},
		DeliveryDate:  summary.DeliveryDate,
		HoldsConsumed: summary.HoldsConsumed,
	}
	for _, it := range summary.Items {
		resp.Items = append(resp.Items, orderItemResp{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Qty:            it.Qty,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}
