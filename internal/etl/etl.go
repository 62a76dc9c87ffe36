// Package etl orchestrates one incremental load: compute each source's
// fetch window from its stored cursor, pull and normalize records, and
// merge them into the warehouse. Sources are independent; one source
// failing never stops the others, and the run report carries every
// per-source outcome.
package etl

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/commerce-pulse/internal/schema"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// ErrConfig marks a configuration failure (missing credential or
// identifier). Connectors wrap it so the runner can fail that source
// fast instead of retrying.
var ErrConfig = errors.New("source configuration error")

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// Window bounds one incremental fetch. Start is inclusive; End defaults
// to "now" when the caller leaves it zero.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days splits the window into consecutive sub-windows of at most n days,
// for backfills that must respect source API limits.
func (w Window) Days(n int) []Window {
	if n <= 0 || !w.Start.Before(w.End) {
		return []Window{w}
	}
	var out []Window
	cur := w.Start
	for cur.Before(w.End) {
		next := cur.AddDate(0, 0, n)
		if next.After(w.End) {
			next = w.End
		}
		out = append(out, Window{Start: cur, End: next})
		cur = next
	}
	return out
}

// Source is one external platform connector: it owns fetching a window of
// records and normalizing them into a batch for its table. Connectors
// never write to the warehouse themselves.
type Source interface {
	Name() string
	Table() schema.Table
	// Fetch returns the normalized batch for the window plus the number
	// of malformed records that were skipped.
	Fetch(ctx context.Context, w Window) (*warehouse.Batch, int, error)
}
