package schema

import (
	"strings"
	"testing"
)

func TestCreateSQL(t *testing.T) {
	sql := SquarePayments.CreateSQL()
	if !strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS square_payments (") {
		t.Errorf("unexpected prefix: %s", sql)
	}
	if !strings.Contains(sql, "payment_id VARCHAR") {
		t.Errorf("missing key column definition: %s", sql)
	}
	if !strings.Contains(sql, "amount DOUBLE") {
		t.Errorf("missing amount column: %s", sql)
	}
}

func TestKeyIndexes(t *testing.T) {
	idx := ShopifyOrderLines.KeyIndexes()
	if len(idx) != 2 {
		t.Fatalf("len(idx) = %d, want 2", len(idx))
	}
	cols := ShopifyOrderLines.ColumnNames()
	if cols[idx[0]] != "order_id" || cols[idx[1]] != "lineitem_id" {
		t.Errorf("key indexes resolve to %q, %q", cols[idx[0]], cols[idx[1]])
	}
}

func TestAllTablesDeclareValidKeys(t *testing.T) {
	for _, tbl := range All() {
		if tbl.DateColumn == "" {
			t.Errorf("table %s has no date column", tbl.Name)
		}
		// KeyIndexes panics on a key not present in the column set
		if got := tbl.KeyIndexes(); len(got) != len(tbl.Keys) {
			t.Errorf("table %s: %d key indexes for %d keys", tbl.Name, len(got), len(tbl.Keys))
		}
		seen := map[string]bool{}
		for _, c := range tbl.Columns {
			if seen[c.Name] {
				t.Errorf("table %s: duplicate column %s", tbl.Name, c.Name)
			}
			seen[c.Name] = true
		}
	}
}

func TestLookup(t *testing.T) {
	tbl, ok := Lookup("ga4_traffic_daily")
	if !ok || tbl.Name != "ga4_traffic_daily" {
		t.Fatalf("Lookup failed: %v %v", tbl, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup of unknown table should fail")
	}
}

func TestValidate(t *testing.T) {
	row := []any{"p1", "2026-08-01", 19.99, "USD", "COMPLETED", "o1", "L1", "VISA", "CHIP", 0.58, nil, nil}
	if err := SquarePayments.Validate(row); err != nil {
		t.Errorf("valid row rejected: %v", err)
	}

	if err := SquarePayments.Validate(row[:3]); err == nil {
		t.Error("short row accepted")
	}

	empty := append([]any{}, row...)
	empty[0] = ""
	if err := SquarePayments.Validate(empty); err == nil {
		t.Error("empty key accepted")
	}

	nilKey := append([]any{}, row...)
	nilKey[0] = nil
	if err := SquarePayments.Validate(nilKey); err == nil {
		t.Error("nil key accepted")
	}
}
