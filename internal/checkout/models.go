package checkout

import "time"

// Order items freeze product name and unit price as of validation time; there
// is no live reference back to catalog pricing.
type Order struct {
	ID              string
	Number          string
	UserID          string
	ShippingName    string
	ShippingAddress string
	ShippingPhone   string
	BranchID        int64
	TotalCents      int
	DeliveryDate    time.Time
	CreatedAt       time.Time
}

type OrderItem struct {
	OrderID        string
	ProductID      string
	ProductName    string
	Qty            int
	UnitPriceCents int
}

type Shipping struct {
	Name    string
	Address string
	Phone   string
}

type LineItem struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	UserID   string
	Shipping Shipping
	BranchID int64  // stock.GlobalBranch when the storefront has no branch context
	HoldKey  string // this session's holds are excluded from validation, then consumed
	Items    []LineItem
}

// OrderSummary is the normalized response echoed back to the storefront.
type OrderSummary struct {
	OrderID       string
	Number        string
	TotalCents    int
	Items         []OrderItem
	Shipping      Shipping
	DeliveryDate  time.Time
	HoldsConsumed int64
}
