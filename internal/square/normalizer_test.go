package square

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadTime = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func usd(amount int64) *MinorMoney { return &MinorMoney{Amount: amount, Currency: "USD"} }

func TestNormalizePaymentsConvertsMinorUnits(t *testing.T) {
	payments := []Payment{
		{
			ID:          "p1",
			CreatedAt:   "2026-08-15T14:30:00Z",
			AmountMoney: usd(1999),
			Status:      "COMPLETED",
			OrderID:     "o1",
			LocationID:  "L123",
			CardDetails: &CardDetails{Card: Card{CardBrand: "VISA"}, EntryMethod: "CONTACTLESS"},
			ProcessingFee: []FeeEntry{
				{AmountMoney: usd(58)},
			},
		},
		{
			ID:          "p2",
			CreatedAt:   "2026-08-15T15:00:00Z",
			AmountMoney: &MinorMoney{Amount: 500, Currency: "JPY"},
			Status:      "COMPLETED",
		},
	}

	batch, skipped, err := NormalizePayments(payments, loadTime)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Equal(t, 2, batch.Len())

	first := batch.Rows[0]
	assert.Equal(t, "p1", first[0])
	assert.Equal(t, "2026-08-15", first[1])
	assert.Equal(t, 19.99, first[2])
	assert.Equal(t, "USD", first[3])
	assert.Equal(t, "VISA", first[7])
	assert.Equal(t, 0.58, first[9])

	// zero-decimal currency passes through unscaled
	assert.Equal(t, 500.0, batch.Rows[1][2])
}

func TestNormalizePaymentsCountsMalformed(t *testing.T) {
	payments := []Payment{
		{ID: "", CreatedAt: "2026-08-15T14:30:00Z", AmountMoney: usd(100)},
		{ID: "p1", CreatedAt: "bad", AmountMoney: usd(100)},
		{ID: "p2", CreatedAt: "2026-08-15T14:30:00Z"},
		{ID: "p3", CreatedAt: "2026-08-15T14:30:00Z", AmountMoney: usd(100)},
	}

	batch, skipped, err := NormalizePayments(payments, loadTime)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, 1, batch.Len())
}

func TestNormalizeOrderLinesSkipsCancelled(t *testing.T) {
	orders := []Order{
		{
			ID:        "o1",
			CreatedAt: "2026-08-10T09:00:00Z",
			State:     "COMPLETED",
			LineItems: []OrderLineItem{
				{UID: "u1", Name: "Latte", Quantity: "2", BasePriceMoney: usd(450), TotalMoney: usd(900)},
				{UID: "u2", Name: "Scone", Quantity: "1", BasePriceMoney: usd(350), TotalMoney: usd(350)},
			},
		},
		{
			ID:        "o2",
			CreatedAt: "2026-08-10T10:00:00Z",
			State:     "CANCELED",
			LineItems: []OrderLineItem{{UID: "u3", Quantity: "1", TotalMoney: usd(100)}},
		},
	}

	batch, skipped, err := NormalizeOrderLines(orders, loadTime)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Equal(t, 2, batch.Len())

	first := batch.Rows[0]
	assert.Equal(t, "o1", first[0])
	assert.Equal(t, "u1", first[1])
	assert.Equal(t, "2026-08-10", first[2])
	assert.Equal(t, "Latte", first[3])
	assert.Equal(t, int64(2), first[4])
	assert.Equal(t, 4.5, first[5])
	assert.Equal(t, 9.0, first[6])
}

func TestQuantityParsing(t *testing.T) {
	assert.Equal(t, int64(2), quantity("2"))
	assert.Equal(t, int64(1), quantity("1.5"))
	assert.Equal(t, int64(1), quantity(""))
	assert.Equal(t, int64(1), quantity("two"))
}
