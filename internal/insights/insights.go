// Package insights turns aggregated campaign performance into
// actionable budget and creative suggestions.
package insights

import (
	"fmt"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// Action kinds, from strongest positive signal to strongest negative.
const (
	KindRaiseBudget      = "raise_budget"
	KindReviewSpend      = "review_spend"
	KindCheckLandingPage = "check_landing_page"
	KindReviseTargeting  = "revise_targeting"
)

// Action is one suggestion for one campaign.
type Action struct {
	CampaignID   int64   `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	Kind         string  `json:"kind"`
	Reason       string  `json:"reason"`
	ROAS         float64 `json:"roas"`
	Cost         float64 `json:"cost"`
	Clicks       int64   `json:"clicks"`
	Conversions  float64 `json:"conversions"`
}

// Evaluate applies the action rules to each campaign summary. A campaign
// can trigger several rules; each match produces its own action.
func Evaluate(campaigns []warehouse.CampaignSummary, th config.ThresholdConfig) []Action {
	var actions []Action

	for _, c := range campaigns {
		base := Action{
			CampaignID:   c.CampaignID,
			CampaignName: c.CampaignName,
			ROAS:         c.ROAS,
			Cost:         c.Cost,
			Clicks:       c.Clicks,
			Conversions:  c.Conversions,
		}

		if c.ROAS >= th.HighROAS && c.Conversions > 0 {
			a := base
			a.Kind = KindRaiseBudget
			a.Reason = fmt.Sprintf("ROAS %.1f is at or above %.1f; the campaign converts profitably and can absorb more budget", c.ROAS, th.HighROAS)
			actions = append(actions, a)
		}

		if c.Cost >= th.WastedSpend && c.Conversions == 0 {
			a := base
			a.Kind = KindReviewSpend
			a.Reason = fmt.Sprintf("spent %.0f with zero conversions; pause or restructure before spending more", c.Cost)
			actions = append(actions, a)
		}

		if c.Clicks >= th.MinClicks && cvr(c) < th.LowCVRPercent {
			a := base
			a.Kind = KindCheckLandingPage
			a.Reason = fmt.Sprintf("%d clicks converted at %.2f%%, below %.2f%%; the ad attracts traffic the landing page loses", c.Clicks, cvr(c), th.LowCVRPercent)
			actions = append(actions, a)
		}

		if ctr(c) >= th.HighCTRPercent && c.ROAS < th.HealthyROAS && c.Cost > 0 {
			a := base
			a.Kind = KindReviseTargeting
			a.Reason = fmt.Sprintf("CTR %.2f%% shows the creative works but ROAS %.1f is below %.1f; revisit targeting and bids, keep the creative", ctr(c), c.ROAS, th.HealthyROAS)
			actions = append(actions, a)
		}
	}
	return actions
}

// cvr is the conversion rate in percent.
func cvr(c warehouse.CampaignSummary) float64 {
	if c.Clicks == 0 {
		return 0
	}
	return c.Conversions / float64(c.Clicks) * 100
}

// ctr is the click-through rate in percent.
func ctr(c warehouse.CampaignSummary) float64 {
	if c.Impressions == 0 {
		return 0
	}
	return float64(c.Clicks) / float64(c.Impressions) * 100
}
