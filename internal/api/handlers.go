package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/insights"
	"github.com/ignite/commerce-pulse/internal/pkg/httputil"
	"github.com/ignite/commerce-pulse/internal/pkg/logger"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// defaultRangeDays is the reporting window when no dates are given.
const defaultRangeDays = 30

// RollupStore reads aggregates from the warehouse.
type RollupStore interface {
	DailySummaries(ctx context.Context, start, end string) ([]warehouse.DailySummary, error)
	CampaignSummaries(ctx context.Context, start, end string) ([]warehouse.CampaignSummary, error)
	ChannelRevenues(ctx context.Context, start, end string) ([]warehouse.ChannelRevenue, error)
	Ping(ctx context.Context) error
}

// LoadRunner triggers an incremental load across all sources.
type LoadRunner interface {
	Run(ctx context.Context) etl.Report
}

// Handlers holds the API endpoint implementations
type Handlers struct {
	store      RollupStore
	runner     LoadRunner
	cache      *Cache
	thresholds config.ThresholdConfig
	now        func() time.Time

	etlRunning atomic.Bool
}

// NewHandlers creates the endpoint implementations. runner and cache
// may be nil; the ETL trigger then returns 503 and responses are never
// cached.
func NewHandlers(store RollupStore, runner LoadRunner, cache *Cache, thresholds config.ThresholdConfig) *Handlers {
	return &Handlers{
		store:      store,
		runner:     runner,
		cache:      cache,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// HealthCheck reports service and warehouse health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "warehouse": "ok"}
	if err := h.store.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["warehouse"] = err.Error()
		httputil.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	httputil.OK(w, status)
}

// DailyRollups returns the per-day summary across all sources.
func (h *Handlers) DailyRollups(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	h.respondCached(w, r, func() (any, error) {
		return h.store.DailySummaries(r.Context(), start, end)
	})
}

// CampaignRollups returns per-campaign performance over the range.
func (h *Handlers) CampaignRollups(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	h.respondCached(w, r, func() (any, error) {
		return h.store.CampaignSummaries(r.Context(), start, end)
	})
}

// ChannelRevenues returns web revenue grouped by source and medium.
func (h *Handlers) ChannelRevenues(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	h.respondCached(w, r, func() (any, error) {
		return h.store.ChannelRevenues(r.Context(), start, end)
	})
}

// Suggestions returns campaign actions derived from the rollups.
func (h *Handlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	h.respondCached(w, r, func() (any, error) {
		campaigns, err := h.store.CampaignSummaries(r.Context(), start, end)
		if err != nil {
			return nil, err
		}
		actions := insights.Evaluate(campaigns, h.thresholds)
		if actions == nil {
			actions = []insights.Action{}
		}
		return actions, nil
	})
}

// TriggerETL runs one incremental load and returns its report. Only one
// load may run at a time; a concurrent request gets 409.
func (h *Handlers) TriggerETL(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "no sources configured")
		return
	}
	if !h.etlRunning.CompareAndSwap(false, true) {
		httputil.Error(w, http.StatusConflict, "a load is already running")
		return
	}
	defer h.etlRunning.Store(false)

	report := h.runner.Run(r.Context())
	if h.cache != nil {
		h.cache.Flush(r.Context())
	}
	if report.Failed() > 0 {
		logger.Warn("load finished with failures", "run_id", report.RunID, "failed", report.Failed())
	}
	httputil.OK(w, report)
}

// dateRange reads start/end query parameters (YYYY-MM-DD, inclusive),
// defaulting to the trailing month.
func (h *Handlers) dateRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	end := r.URL.Query().Get("end")
	start := r.URL.Query().Get("start")
	if end == "" {
		end = h.now().UTC().Format("2006-01-02")
	}
	if start == "" {
		endDay, err := time.Parse("2006-01-02", end)
		if err != nil {
			httputil.BadRequest(w, "end must be YYYY-MM-DD")
			return "", "", false
		}
		start = endDay.AddDate(0, 0, -(defaultRangeDays - 1)).Format("2006-01-02")
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			httputil.BadRequest(w, "start and end must be YYYY-MM-DD")
			return "", "", false
		}
	}
	if start > end {
		httputil.BadRequest(w, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

// respondCached serves the response from the rollup cache when possible,
// keyed by path and query.
func (h *Handlers) respondCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.Path + "?" + r.URL.RawQuery
	if h.cache != nil {
		if payload, ok := h.cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	data, err := build()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), key, payload)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
