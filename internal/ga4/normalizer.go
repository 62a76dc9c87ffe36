package ga4

import (
	"strconv"
	"time"

	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// NormalizeRows converts report rows into warehouse rows. The API
// returns dates as YYYYMMDD; rows with an unparsable date or the wrong
// shape are skipped and counted.
func NormalizeRows(rows []ReportRow, now time.Time) (*warehouse.Batch, int, error) {
	batch := warehouse.NewBatch(schema.GA4TrafficDaily)
	skipped := 0

	for _, r := range rows {
		if len(r.DimensionValues) != 4 || len(r.MetricValues) != 3 {
			skipped++
			continue
		}
		day, err := time.Parse("20060102", r.DimensionValues[0].Value)
		if err != nil {
			skipped++
			continue
		}

		err = batch.Append(
			day.Format("2006-01-02"),
			dimension(r.DimensionValues[1].Value),
			dimension(r.DimensionValues[2].Value),
			dimension(r.DimensionValues[3].Value),
			metricInt(r.MetricValues[0].Value),
			metricInt(r.MetricValues[1].Value),
			metricFloat(r.MetricValues[2].Value),
			now.UTC(),
		)
		if err != nil {
			return nil, skipped, err
		}
	}
	return batch, skipped, nil
}

// dimension maps an empty dimension value to the API's own placeholder
// so it can serve as part of the row key.
func dimension(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func metricInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func metricFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
