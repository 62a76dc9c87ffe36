package googleads

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
func (s *Source) Name() string { return "ads_campaigns" }

// Table returns the fact table this source loads.
func (s *Source) Table() schema.Table { return schema.AdsCampaignDaily }

// Fetch pulls campaign-day metrics for the window.
func (s *Source) Fetch(ctx context.Context, w etl.Window) (*warehouse.Batch, int, error) {
	end := w.End
	if end.IsZero() {
		end = s.now()
	}
	stats, err := s.client.FetchCampaignStats(ctx, w.Start, end)
	if err != nil {
		return nil, 0, err
	}
	return NormalizeStats(stats, s.now())
}
