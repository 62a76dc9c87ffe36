package shopify

import (
	"strconv"
	"time"

	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// NormalizeOrders flattens orders into one warehouse row per line item.
// Cancelled orders produce no rows. Orders missing an id or a parsable
// created_at are skipped and counted; a well-formed order with zero line
// items simply produces nothing.
func NormalizeOrders(orders []Order, now time.Time) (*warehouse.Batch, int, error) {
	batch := warehouse.NewBatch(schema.ShopifyOrderLines)
	skipped := 0

	for _, o := range orders {
		if o.CancelledAt != "" {
			continue
		}
		if o.ID == 0 {
			skipped++
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, o.CreatedAt)
		if err != nil {
			skipped++
			continue
		}

		orderTotal := preferCurrent(o.CurrentTotalPrice, o.TotalPrice)
		subtotal := preferCurrent(o.CurrentSubtotalPrice, o.SubtotalPrice)
		discounts := preferCurrent(o.CurrentTotalDiscounts, o.TotalDiscounts)
		tax := preferCurrent(o.CurrentTotalTax, o.TotalTax)
		tip := money(o.TotalTipReceived)
		shipping := shippingTotal(o.ShippingLines)
		refunds := refundTotal(o.Refunds)
		date := createdAt.Format("2006-01-02")

		for _, li := range o.LineItems {
			if li.ID == 0 {
				skipped++
				continue
			}
			price := money(li.Price)
			err := batch.Append(
				date,
				o.ID,
				li.ID,
				li.ProductID,
				li.VariantID,
				li.SKU,
				li.Title,
				li.Quantity,
				price,
				price*float64(li.Quantity),
				o.Currency,
				o.FinancialStatus,
				orderTotal,
				subtotal,
				discounts,
				tax,
				tip,
				shipping,
				refunds,
				createdAt.UTC(),
				now.UTC(),
			)
			if err != nil {
				return nil, skipped, err
			}
		}
	}
	return batch, skipped, nil
}

// refundTotal prefers the refund transaction amounts, which include any
// refunded shipping and tax. When no transaction carries an amount it
// falls back to the refund line subtotals plus refunded shipping.
func refundTotal(refunds []Refund) float64 {
	var fromTx, fromLines float64
	for _, r := range refunds {
		for _, tx := range r.Transactions {
			fromTx += money(tx.Amount)
		}
		for _, li := range r.RefundLineItems {
			fromLines += li.Subtotal
		}
		if r.Shipping != nil {
			fromLines += money(r.Shipping.Amount)
		}
	}
	if fromTx > 0 {
		return fromTx
	}
	return fromLines
}

func shippingTotal(lines []ShippingLine) float64 {
	var total float64
	for _, sl := range lines {
		if sl.PriceSet != nil && sl.PriceSet.ShopMoney.Amount != "" {
			total += money(sl.PriceSet.ShopMoney.Amount)
			continue
		}
		total += money(sl.Price)
	}
	return total
}

// preferCurrent uses the post-refund amount when the API provides one.
func preferCurrent(current, original string) float64 {
	if current != "" {
		return money(current)
	}
	return money(original)
}

// money parses a decimal string amount, treating empty or malformed
// values as zero.
func money(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
