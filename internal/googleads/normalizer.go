package googleads

import (
	"strconv"
	"time"

	"github.com/ignite/commerce-pulse/internal/currency"
	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// NormalizeStats converts campaign-day results into warehouse rows,
// translating micros cost to major units. Results missing a campaign id
// or date are skipped and counted.
func NormalizeStats(stats []CampaignStat, now time.Time) (*warehouse.Batch, int, error) {
	batch := warehouse.NewBatch(schema.AdsCampaignDaily)
	skipped := 0

	for _, s := range stats {
		campaignID, err := strconv.ParseInt(s.Campaign.ID, 10, 64)
		if err != nil || campaignID == 0 {
			skipped++
			continue
		}
		if _, err := time.Parse("2006-01-02", s.Segments.Date); err != nil {
			skipped++
			continue
		}

		err = batch.Append(
			s.Segments.Date,
			campaignID,
			s.Campaign.Name,
			currency.MicrosToMajor(metricInt(s.Metrics.CostMicros)),
			metricInt(s.Metrics.Clicks),
			metricInt(s.Metrics.Impressions),
			s.Metrics.Conversions,
			s.Metrics.ConversionsValue,
			now.UTC(),
		)
		if err != nil {
			return nil, skipped, err
		}
	}
	return batch, skipped, nil
}

func metricInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
