package shopify

// Order is one order as returned by the Admin API orders listing.
// Monetary fields arrive as decimal strings; the "current_*" variants
// reflect post-refund amounts and take precedence when present.
type Order struct {
	ID                    int64          `json:"id"`
	CreatedAt             string         `json:"created_at"`
	CancelledAt           string         `json:"cancelled_at"`
	Currency              string         `json:"currency"`
	FinancialStatus       string         `json:"financial_status"`
	Email                 string         `json:"email"`
	TotalPrice            string         `json:"total_price"`
	CurrentTotalPrice     string         `json:"current_total_price"`
	SubtotalPrice         string         `json:"subtotal_price"`
	CurrentSubtotalPrice  string         `json:"current_subtotal_price"`
	TotalDiscounts        string         `json:"total_discounts"`
	CurrentTotalDiscounts string         `json:"current_total_discounts"`
	TotalTax              string         `json:"total_tax"`
	CurrentTotalTax       string         `json:"current_total_tax"`
	TotalTipReceived      string         `json:"total_tip_received"`
	LineItems             []LineItem     `json:"line_items"`
	ShippingLines         []ShippingLine `json:"shipping_lines"`
	Refunds               []Refund       `json:"refunds"`
}

// LineItem is one sellable line within an order.
type LineItem struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	Price     string `json:"price"`
}

// ShippingLine carries the shipping charge. Prefer the shop-money amount
// from price_set when present.
type ShippingLine struct {
	Price    string    `json:"price"`
	PriceSet *MoneySet `json:"price_set"`
}

// MoneySet wraps shop- and presentment-currency amounts.
type MoneySet struct {
	ShopMoney Money `json:"shop_money"`
}

// Money is a decimal amount with its currency.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency_code"`
}

// Refund is one refund attached to an order.
type Refund struct {
	Transactions    []RefundTransaction `json:"transactions"`
	RefundLineItems []RefundLineItem    `json:"refund_line_items"`
	Shipping        *RefundShipping     `json:"shipping"`
}

// RefundTransaction is the money movement of a refund.
type RefundTransaction struct {
	Amount string `json:"amount"`
}

// RefundLineItem is one refunded line with its subtotal.
type RefundLineItem struct {
	Subtotal float64 `json:"subtotal"`
}

// RefundShipping is the refunded shipping portion.
type RefundShipping struct {
	Amount string `json:"amount"`
}

// ordersResponse is the envelope of the orders listing endpoint.
type ordersResponse struct {
	Orders []Order `json:"orders"`
}
