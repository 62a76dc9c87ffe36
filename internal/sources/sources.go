// Package sources wires configured connectors into pipeline sources.
package sources

import (
	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/ga4"
	"github.com/ignite/commerce-pulse/internal/googleads"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
	"github.com/ignite/commerce-pulse/internal/shopify"
	"github.com/ignite/commerce-pulse/internal/square"
)

// Build returns one pipeline source per enabled connector. An account
// with no connectors enabled gets an empty slice, not an error; the
// caller decides whether that is fatal.
func Build(cfg *config.Config) []etl.Source {
	policy := httpretry.DefaultPolicy()
	if cfg.ETL.MaxRetries > 0 {
		policy.MaxAttempts = cfg.ETL.MaxRetries
	}

	var out []etl.Source
	if cfg.Shopify.Enabled {
		out = append(out, shopify.NewSource(shopify.NewClient(cfg.Shopify, policy)))
	}
	if cfg.Square.Enabled {
		client := square.NewClient(cfg.Square, policy)
		out = append(out, square.NewPaymentsSource(client))
		if cfg.Square.LocationID != "" {
			out = append(out, square.NewOrderLinesSource(client))
		}
	}
	if cfg.GA4.Enabled {
		out = append(out, ga4.NewSource(ga4.NewClient(cfg.GA4, policy)))
	}
	if cfg.GoogleAds.Enabled {
		out = append(out, googleads.NewSource(googleads.NewClient(cfg.GoogleAds, policy)))
	}
	return out
}
