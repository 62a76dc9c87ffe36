package square

// MinorMoney is a Square money value in the currency's smallest unit.
type MinorMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Payment is one payment as returned by the Payments API.
type Payment struct {
	ID            string       `json:"id"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
	AmountMoney   *MinorMoney  `json:"amount_money"`
	Status        string       `json:"status"`
	OrderID       string       `json:"order_id"`
	LocationID    string       `json:"location_id"`
	CardDetails   *CardDetails `json:"card_details"`
	ProcessingFee []FeeEntry   `json:"processing_fee"`
}

// CardDetails carries card metadata for card payments.
type CardDetails struct {
	Card        Card   `json:"card"`
	EntryMethod string `json:"entry_method"`
}

// Card identifies the card used for a payment.
type Card struct {
	CardBrand string `json:"card_brand"`
}

// FeeEntry is one processing fee charged on a payment.
type FeeEntry struct {
	AmountMoney *MinorMoney `json:"amount_money"`
}

// Order is one order as returned by the Orders search API.
type Order struct {
	ID         string          `json:"id"`
	LocationID string          `json:"location_id"`
	CreatedAt  string          `json:"created_at"`
	State      string          `json:"state"`
	LineItems  []OrderLineItem `json:"line_items"`
}

// OrderLineItem is one line within an order. Quantity is a decimal
// string in the API; whole-unit sales are the norm for this catalog.
type OrderLineItem struct {
	UID            string      `json:"uid"`
	Name           string      `json:"name"`
	Quantity       string      `json:"quantity"`
	BasePriceMoney *MinorMoney `json:"base_price_money"`
	TotalMoney     *MinorMoney `json:"total_money"`
}

type paymentsResponse struct {
	Payments []Payment `json:"payments"`
	Cursor   string    `json:"cursor"`
}

type ordersSearchResponse struct {
	Orders []Order `json:"orders"`
	Cursor string  `json:"cursor"`
}
