package square

import (
	"strconv"
	"time"

	"github.com/ignite/commerce-pulse/internal/currency"
	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// NormalizePayments converts payments into warehouse rows, translating
// minor-unit amounts to major units. Payments missing an id, a parsable
// created_at, or an amount are skipped and counted.
func NormalizePayments(payments []Payment, now time.Time) (*warehouse.Batch, int, error) {
	batch := warehouse.NewBatch(schema.SquarePayments)
	skipped := 0

	for _, p := range payments {
		if p.ID == "" || p.AmountMoney == nil {
			skipped++
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, p.CreatedAt)
		if err != nil {
			skipped++
			continue
		}

		var cardBrand, entryMethod string
		if p.CardDetails != nil {
			cardBrand = p.CardDetails.Card.CardBrand
			entryMethod = p.CardDetails.EntryMethod
		}
		var fee float64
		for _, f := range p.ProcessingFee {
			if f.AmountMoney != nil {
				fee += currency.ToMajorUnits(f.AmountMoney.Amount, f.AmountMoney.Currency)
			}
		}

		err = batch.Append(
			p.ID,
			createdAt.Format("2006-01-02"),
			currency.ToMajorUnits(p.AmountMoney.Amount, p.AmountMoney.Currency),
			p.AmountMoney.Currency,
			p.Status,
			p.OrderID,
			p.LocationID,
			cardBrand,
			entryMethod,
			fee,
			createdAt.UTC(),
			now.UTC(),
		)
		if err != nil {
			return nil, skipped, err
		}
	}
	return batch, skipped, nil
}

// NormalizeOrderLines flattens orders into one row per line item.
// Cancelled orders produce no rows.
func NormalizeOrderLines(orders []Order, now time.Time) (*warehouse.Batch, int, error) {
	batch := warehouse.NewBatch(schema.SquareOrderLines)
	skipped := 0

	for _, o := range orders {
		if o.State == "CANCELED" {
			continue
		}
		if o.ID == "" {
			skipped++
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, o.CreatedAt)
		if err != nil {
			skipped++
			continue
		}

		for _, li := range o.LineItems {
			if li.UID == "" {
				skipped++
				continue
			}
			var basePrice, totalPrice float64
			var code string
			if li.BasePriceMoney != nil {
				basePrice = currency.ToMajorUnits(li.BasePriceMoney.Amount, li.BasePriceMoney.Currency)
				code = li.BasePriceMoney.Currency
			}
			if li.TotalMoney != nil {
				totalPrice = currency.ToMajorUnits(li.TotalMoney.Amount, li.TotalMoney.Currency)
				code = li.TotalMoney.Currency
			}

			err := batch.Append(
				o.ID,
				li.UID,
				createdAt.Format("2006-01-02"),
				li.Name,
				quantity(li.Quantity),
				basePrice,
				totalPrice,
				code,
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

// quantity parses the API's decimal-string quantity. Fractional
// quantities round toward zero; missing or malformed values count as 1.
func quantity(s string) int64 {
	if s == "" {
		return 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return int64(v)
}
