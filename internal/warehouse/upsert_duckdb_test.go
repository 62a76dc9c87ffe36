package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/commerce-pulse/internal/schema"
)

// These tests run against a real in-memory DuckDB so the merge semantics
// are checked end to end, not just the statement sequence.

func openMemStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func adsRow(date string, campaignID int64, name string, cost float64) []any {
	return []any{date, campaignID, name, cost, int64(100), int64(1000), 2.0, 40.0, time.Now()}
}

func readCampaignCosts(t *testing.T, store *Store) map[int64]float64 {
	t.Helper()
	rows, err := store.db.Query("SELECT campaign_id, cost FROM ads_campaign_daily ORDER BY campaign_id")
	require.NoError(t, err)
	defer rows.Close()
	out := map[int64]float64{}
	for rows.Next() {
		var id int64
		var cost float64
		require.NoError(t, rows.Scan(&id, &cost))
		out[id] = cost
	}
	require.NoError(t, rows.Err())
	return out
}

func TestUpsertIsIdempotent(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	b := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, b.Append(adsRow("2026-08-01", 1, "brand", 100)...))
	require.NoError(t, b.Append(adsRow("2026-08-01", 2, "generic", 200)...))

	for i := 0; i < 2; i++ {
		n, err := store.Upsert(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}

	var count int64
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM ads_campaign_daily").Scan(&count))
	assert.Equal(t, int64(2), count, "re-running the same batch must not duplicate rows")
}

func TestUpsertOverwritesOnlyMatchingKeys(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	first := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, first.Append(adsRow("2026-08-01", 1, "a", 10)...))
	require.NoError(t, first.Append(adsRow("2026-08-01", 2, "b", 20)...))
	require.NoError(t, first.Append(adsRow("2026-08-01", 3, "c", 30)...))
	_, err := store.Upsert(ctx, first)
	require.NoError(t, err)

	// Second batch touches key 2 (new value) and adds key 4.
	second := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, second.Append(adsRow("2026-08-01", 2, "b", 99)...))
	require.NoError(t, second.Append(adsRow("2026-08-01", 4, "d", 40)...))
	_, err = store.Upsert(ctx, second)
	require.NoError(t, err)

	costs := readCampaignCosts(t, store)
	assert.Equal(t, map[int64]float64{1: 10, 2: 99, 3: 30, 4: 40}, costs)
}

func TestUpsertCreatesTableOnFirstUse(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	_, found, err := store.LastDate(ctx, schema.AdsCampaignDaily)
	require.NoError(t, err)
	assert.False(t, found)

	b := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, b.Append(adsRow("2026-08-05", 7, "x", 1)...))
	_, err = store.Upsert(ctx, b)
	require.NoError(t, err)

	last, found, err := store.LastDate(ctx, schema.AdsCampaignDaily)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2026-08-05", last.Format("2006-01-02"))
}

func TestDailySummariesToleratePartialLoad(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	// Only the ads table exists; the other sources never loaded.
	b := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, b.Append(adsRow("2026-08-01", 1, "brand", 150)...))
	_, err := store.Upsert(ctx, b)
	require.NoError(t, err)

	days, err := store.DailySummaries(ctx, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-08-01", days[0].Date)
	assert.Equal(t, 150.0, days[0].AdCost)
	assert.Equal(t, 0.0, days[0].OrderRevenue, "missing sources contribute zeros")
}

func TestCampaignSummariesComputeRatios(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	b := NewBatch(schema.AdsCampaignDaily)
	require.NoError(t, b.Append([]any{"2026-08-01", int64(1), "brand", 100.0, int64(50), int64(500), 4.0, 400.0, time.Now()}...))
	require.NoError(t, b.Append([]any{"2026-08-02", int64(1), "brand", 100.0, int64(50), int64(500), 1.0, 100.0, time.Now()}...))
	_, err := store.Upsert(ctx, b)
	require.NoError(t, err)

	campaigns, err := store.CampaignSummaries(ctx, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	c := campaigns[0]
	assert.Equal(t, int64(1), c.CampaignID)
	assert.Equal(t, 200.0, c.Cost)
	assert.Equal(t, 500.0, c.ConvValue)
	assert.Equal(t, 2.5, c.ROAS)
	assert.Equal(t, 40.0, c.CPA)
}
