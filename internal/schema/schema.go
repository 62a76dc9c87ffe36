// Package schema declares the warehouse fact tables: their columns, the
// business keys that uniquely identify a row, and the date column used to
// compute incremental fetch windows. The upsert engine creates tables from
// these declarations and scopes its delete-then-insert merge to the keys.
package schema

import (
	"fmt"
	"strings"
)

// Column types map directly to DuckDB column types.
const (
	TypeVarchar   = "VARCHAR"
	TypeBigint    = "BIGINT"
	TypeDouble    = "DOUBLE"
	TypeDate      = "DATE"
	TypeTimestamp = "TIMESTAMP"
)

// Column is one declared column of a fact table.
type Column struct {
	Name string
	Type string
}

// Table declares one warehouse fact table.
type Table struct {
	Name       string
	Keys       []string // business key columns, in declared order
	DateColumn string   // column the cursor tracker reads max() of
	Columns    []Column
}

// ColumnNames returns the declared column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyIndexes returns the positional index of each key column.
// An unknown key column is a programming error and panics at startup.
func (t Table) KeyIndexes() []int {
	idx := make([]int, len(t.Keys))
	for i, k := range t.Keys {
		pos := -1
		for j, c := range t.Columns {
			if c.Name == k {
				pos = j
				break
			}
		}
		if pos < 0 {
			panic(fmt.Sprintf("schema: table %s declares unknown key column %s", t.Name, k))
		}
		idx[i] = pos
	}
	return idx
}

// Validate checks that a row has the declared column count and that no
// key column is empty or nil. A row that fails here must not reach the
// merge: an empty key would silently collide with every other empty key.
func (t Table) Validate(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d values, declared %d columns",
			t.Name, len(row), len(t.Columns))
	}
	for _, i := range t.KeyIndexes() {
		switch v := row[i].(type) {
		case nil:
			return fmt.Errorf("table %s: key column %s is nil", t.Name, t.Columns[i].Name)
		case string:
			if v == "" {
				return fmt.Errorf("table %s: key column %s is empty", t.Name, t.Columns[i].Name)
			}
		}
	}
	return nil
}

// CreateSQL returns the CREATE TABLE IF NOT EXISTS statement for the table.
func (t Table) CreateSQL() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = c.Name + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, strings.Join(defs, ", "))
}

// Fact table declarations, one per data source.
var (
	// ShopifyOrderLines holds one row per order line item. Order-level
	// aggregates (subtotal, discounts, tax, tip, shipping, refunds) are
	// duplicated onto every line of the order; consumers must deduplicate
	// by order_id before summing them.
	ShopifyOrderLines = Table{
		Name:       "shopify_order_lines",
		Keys:       []string{"order_id", "lineitem_id"},
		DateColumn: "date",
		Columns: []Column{
			{"date", TypeDate},
			{"order_id", TypeBigint},
			{"lineitem_id", TypeBigint},
			{"product_id", TypeBigint},
			{"variant_id", TypeBigint},
			{"sku", TypeVarchar},
			{"title", TypeVarchar},
			{"qty", TypeBigint},
			{"price", TypeDouble},
			{"line_total", TypeDouble},
			{"currency", TypeVarchar},
			{"financial_status", TypeVarchar},
			{"order_total", TypeDouble},
			{"subtotal_price", TypeDouble},
			{"total_discounts", TypeDouble},
			{"total_tax", TypeDouble},
			{"total_tip", TypeDouble},
			{"shipping_price", TypeDouble},
			{"refunds_total", TypeDouble},
			{"created_at", TypeTimestamp},
			{"updated_at", TypeTimestamp},
		},
	}

	// SquarePayments holds one row per point-of-sale payment.
	SquarePayments = Table{
		Name:       "square_payments",
		Keys:       []string{"payment_id"},
		DateColumn: "date",
		Columns: []Column{
			{"payment_id", TypeVarchar},
			{"date", TypeDate},
			{"amount", TypeDouble},
			{"currency", TypeVarchar},
			{"status", TypeVarchar},
			{"order_id", TypeVarchar},
			{"location_id", TypeVarchar},
			{"card_brand", TypeVarchar},
			{"entry_method", TypeVarchar},
			{"processing_fee", TypeDouble},
			{"created_at", TypeTimestamp},
			{"updated_at", TypeTimestamp},
		},
	}

	// SquareOrderLines holds one row per in-store order line item,
	// for product-level reporting alongside payments.
	SquareOrderLines = Table{
		Name:       "square_order_lines",
		Keys:       []string{"order_id", "line_uid"},
		DateColumn: "date",
		Columns: []Column{
			{"order_id", TypeVarchar},
			{"line_uid", TypeVarchar},
			{"date", TypeDate},
			{"product_name", TypeVarchar},
			{"quantity", TypeBigint},
			{"base_price", TypeDouble},
			{"total_price", TypeDouble},
			{"currency", TypeVarchar},
			{"created_at", TypeTimestamp},
			{"updated_at", TypeTimestamp},
		},
	}

	// GA4TrafficDaily holds one row per date/source/medium/campaign
	// combination, already aggregated by the reporting API.
	GA4TrafficDaily = Table{
		Name:       "ga4_traffic_daily",
		Keys:       []string{"date", "source", "medium", "campaign"},
		DateColumn: "date",
		Columns: []Column{
			{"date", TypeDate},
			{"source", TypeVarchar},
			{"medium", TypeVarchar},
			{"campaign", TypeVarchar},
			{"sessions", TypeBigint},
			{"users", TypeBigint},
			{"revenue", TypeDouble},
			{"updated_at", TypeTimestamp},
		},
	}

	// AdsCampaignDaily holds one row per campaign per day.
	AdsCampaignDaily = Table{
		Name:       "ads_campaign_daily",
		Keys:       []string{"date", "campaign_id"},
		DateColumn: "date",
		Columns: []Column{
			{"date", TypeDate},
			{"campaign_id", TypeBigint},
			{"campaign_name", TypeVarchar},
			{"cost", TypeDouble},
			{"clicks", TypeBigint},
			{"impressions", TypeBigint},
			{"conversions", TypeDouble},
			{"conversions_value", TypeDouble},
			{"updated_at", TypeTimestamp},
		},
	}
)

// All lists every declared fact table.
func All() []Table {
	return []Table{ShopifyOrderLines, SquarePayments, SquareOrderLines, GA4TrafficDaily, AdsCampaignDaily}
}

// Lookup returns the table declaration by name.
func Lookup(name string) (Table, bool) {
	for _, t := range All() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
