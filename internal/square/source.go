package square

import (
	"context"
	"time"

	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// PaymentsSource loads point-of-sale payments.
type PaymentsSource struct {
	client *Client
	now    func() time.Time
}

// NewPaymentsSource wraps a client as a payments pipeline source.
func NewPaymentsSource(client *Client) *PaymentsSource {
	return &PaymentsSource{client: client, now: time.Now}
}

// Name identifies the source in run reports and logs.
func (s *PaymentsSource) Name() string { return "square_payments" }

// Table returns the fact table this source loads.
func (s *PaymentsSource) Table() schema.Table { return schema.SquarePayments }

// Fetch pulls payments for the window.
func (s *PaymentsSource) Fetch(ctx context.Context, w etl.Window) (*warehouse.Batch, int, error) {
	payments, err := s.client.FetchPayments(ctx, w.Start, w.End)
	if err != nil {
		return nil, 0, err
	}
	return NormalizePayments(payments, s.now())
}

// OrderLinesSource loads itemized in-store orders.
type OrderLinesSource struct {
	client *Client
	now    func() time.Time
}

// NewOrderLinesSource wraps a client as an order-lines pipeline source.
func NewOrderLinesSource(client *Client) *OrderLinesSource {
	return &OrderLinesSource{client: client, now: time.Now}
}

// Name identifies the source in run reports and logs.
func (s *OrderLinesSource) Name() string { return "square_order_lines" }

// Table returns the fact table this source loads.
func (s *OrderLinesSource) Table() schema.Table { return schema.SquareOrderLines }

// Fetch pulls orders for the window and flattens them into line rows.
func (s *OrderLinesSource) Fetch(ctx context.Context, w etl.Window) (*warehouse.Batch, int, error) {
	orders, err := s.client.SearchOrders(ctx, w.Start, w.End)
	if err != nil {
		return nil, 0, err
	}
	return NormalizeOrderLines(orders, s.now())
}
