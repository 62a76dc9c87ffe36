package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/ignite/commerce-pulse/internal/pkg/logger"
)

// DailySummary is one date's revenue and traffic roll-up across sources.
// Sources whose tables are missing (a partially completed ETL run) simply
// contribute zeros.
type DailySummary struct {
	Date         string  `json:"date"`
	OrderRevenue float64 `json:"order_revenue"` // line totals net of refunds
	OrderCount   int64   `json:"order_count"`
	PaymentTotal float64 `json:"payment_total"`
	PaymentCount int64   `json:"payment_count"`
	Sessions     int64   `json:"sessions"`
	WebRevenue   float64 `json:"web_revenue"`
	AdCost       float64 `json:"ad_cost"`
	AdClicks     int64   `json:"ad_clicks"`
}

// CampaignSummary is one ad campaign's aggregated performance over a range.
type CampaignSummary struct {
	CampaignID   int64   `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	Cost         float64 `json:"cost"`
	Clicks       int64   `json:"clicks"`
	Impressions  int64   `json:"impressions"`
	Conversions  float64 `json:"conversions"`
	ConvValue    float64 `json:"conversions_value"`
	ROAS         float64 `json:"roas"`
	CPA          float64 `json:"cpa"`
}

// ChannelRevenue is web revenue and traffic grouped by source/medium.
type ChannelRevenue struct {
	Source   string  `json:"source"`
	Medium   string  `json:"medium"`
	Sessions int64   `json:"sessions"`
	Users    int64   `json:"users"`
	Revenue  float64 `json:"revenue"`
}

// DailySummaries builds the daily roll-up for [start, end] (YYYY-MM-DD,
// inclusive). Each source is queried independently; a source whose table
// does not exist yet is skipped, so the summary degrades rather than fails
// when only some sources have loaded.
func (s *Store) DailySummaries(ctx context.Context, start, end string) ([]DailySummary, error) {
	byDate := map[string]*DailySummary{}
	get := func(d string) *DailySummary {
		if row, ok := byDate[d]; ok {
			return row
		}
		row := &DailySummary{Date: d}
		byDate[d] = row
		return row
	}

	// Order revenue: sum of line totals minus refund totals. refunds_total
	// is an order-level field duplicated onto every line, so deduplicate by
	// order before summing it.
	ordersQ := `
		SELECT CAST(g.d AS VARCHAR), g.gross, g.orders, COALESCE(r.refunds, 0)
		FROM (
			SELECT date AS d, SUM(line_total) AS gross, COUNT(DISTINCT order_id) AS orders
			FROM shopify_order_lines
			WHERE date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
			GROUP BY date
		) g
		LEFT JOIN (
			SELECT d, SUM(refunds_total) AS refunds
			FROM (SELECT DISTINCT date AS d, order_id, refunds_total FROM shopify_order_lines)
			GROUP BY d
		) r ON g.d = r.d`
	err := s.forEachRow(ctx, ordersQ, []any{start, end}, func(rows *sql.Rows) error {
		var d string
		var gross, refunds float64
		var orders int64
		if err := rows.Scan(&d, &gross, &orders, &refunds); err != nil {
			return err
		}
		row := get(d)
		row.OrderRevenue = gross - refunds
		row.OrderCount = orders
		return nil
	})
	if err != nil {
		logger.Warn("daily rollup: orders source unavailable", "error", err.Error())
	}

	paymentsQ := `
		SELECT CAST(date AS VARCHAR), SUM(amount), COUNT(*)
		FROM square_payments
		WHERE status = 'COMPLETED'
		  AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		GROUP BY date`
	err = s.forEachRow(ctx, paymentsQ, []any{start, end}, func(rows *sql.Rows) error {
		var d string
		var total float64
		var count int64
		if err := rows.Scan(&d, &total, &count); err != nil {
			return err
		}
		row := get(d)
		row.PaymentTotal = total
		row.PaymentCount = count
		return nil
	})
	if err != nil {
		logger.Warn("daily rollup: payments source unavailable", "error", err.Error())
	}

	trafficQ := `
		SELECT CAST(date AS VARCHAR), SUM(sessions), SUM(revenue)
		FROM ga4_traffic_daily
		WHERE date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		GROUP BY date`
	err = s.forEachRow(ctx, trafficQ, []any{start, end}, func(rows *sql.Rows) error {
		var d string
		var sessions int64
		var revenue float64
		if err := rows.Scan(&d, &sessions, &revenue); err != nil {
			return err
		}
		row := get(d)
		row.Sessions = sessions
		row.WebRevenue = revenue
		return nil
	})
	if err != nil {
		logger.Warn("daily rollup: web analytics source unavailable", "error", err.Error())
	}

	adsQ := `
		SELECT CAST(date AS VARCHAR), SUM(cost), SUM(clicks)
		FROM ads_campaign_daily
		WHERE date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		GROUP BY date`
	err = s.forEachRow(ctx, adsQ, []any{start, end}, func(rows *sql.Rows) error {
		var d string
		var cost float64
		var clicks int64
		if err := rows.Scan(&d, &cost, &clicks); err != nil {
			return err
		}
		row := get(d)
		row.AdCost = cost
		row.AdClicks = clicks
		return nil
	})
	if err != nil {
		logger.Warn("daily rollup: ads source unavailable", "error", err.Error())
	}

	out := make([]DailySummary, 0, len(byDate))
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// CampaignSummaries aggregates ad campaign performance over [start, end].
func (s *Store) CampaignSummaries(ctx context.Context, start, end string) ([]CampaignSummary, error) {
	q := `
		SELECT campaign_id, any_value(campaign_name),
		       SUM(cost), SUM(clicks), SUM(impressions),
		       SUM(conversions), SUM(conversions_value)
		FROM ads_campaign_daily
		WHERE date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		GROUP BY campaign_id
		ORDER BY SUM(cost) DESC`

	var out []CampaignSummary
	err := s.forEachRow(ctx, q, []any{start, end}, func(rows *sql.Rows) error {
		var c CampaignSummary
		if err := rows.Scan(&c.CampaignID, &c.CampaignName, &c.Cost, &c.Clicks,
			&c.Impressions, &c.Conversions, &c.ConvValue); err != nil {
			return err
		}
		if c.Cost > 0 {
			c.ROAS = c.ConvValue / c.Cost
		}
		if c.Conversions > 0 {
			c.CPA = c.Cost / c.Conversions
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("campaign rollup: %w", err)
	}
	return out, nil
}

// ChannelRevenues groups web revenue and traffic by source/medium over
// [start, end].
func (s *Store) ChannelRevenues(ctx context.Context, start, end string) ([]ChannelRevenue, error) {
	q := `
		SELECT source, medium, SUM(sessions), SUM(users), SUM(revenue)
		FROM ga4_traffic_daily
		WHERE date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		GROUP BY source, medium
		ORDER BY SUM(revenue) DESC`

	var out []ChannelRevenue
	err := s.forEachRow(ctx, q, []any{start, end}, func(rows *sql.Rows) error {
		var c ChannelRevenue
		if err := rows.Scan(&c.Source, &c.Medium, &c.Sessions, &c.Users, &c.Revenue); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("channel rollup: %w", err)
	}
	return out, nil
}

func (s *Store) forEachRow(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
