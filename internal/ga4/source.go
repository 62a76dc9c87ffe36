package ga4

import (
	"context"
	"time"

	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// Source adapts the client to the incremental load pipeline.
type Source struct {
	client *Client
	now    func() time.Time
}

// NewSource wraps a client as a pipeline source.
func NewSource(client *Client) *Source {
	return &Source{client: client, now: time.Now}
}

// Name identifies the source in run reports and logs.
func (s *Source) Name() string { return "ga4_traffic" }

// Table returns the fact table this source loads.
func (s *Source) Table() schema.Table { return schema.GA4TrafficDaily }

// Fetch pulls daily traffic aggregates for the window. The reporting
// API works in whole days, so the window end is clamped to its date.
func (s *Source) Fetch(ctx context.Context, w etl.Window) (*warehouse.Batch, int, error) {
	end := w.End
	if end.IsZero() {
		end = s.now()
	}
	rows, err := s.client.RunReport(ctx, w.Start, end)
	if err != nil {
		return nil, 0, err
	}
	return NormalizeRows(rows, s.now())
}
