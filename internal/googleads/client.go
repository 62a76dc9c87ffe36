// Package googleads pulls daily campaign performance from the Google
// Ads API via searchStream.
package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
)

// googleTokenURL is the OAuth2 token endpoint for refresh-token grants.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// apiVersion pins the Google Ads REST API version.
const apiVersion = "v17"

// campaignQuery is the GAQL statement for daily campaign performance.
const campaignQuery = `
SELECT
  segments.date,
  campaign.id,
  campaign.name,
  metrics.cost_micros,
  metrics.clicks,
  metrics.impressions,
  metrics.conversions,
  metrics.conversions_value
FROM campaign
WHERE segments.date BETWEEN '%s' AND '%s'
ORDER BY segments.date`

// Client is the Google Ads API client
type Client struct {
	customerID      string
	loginCustomerID string
	developerToken  string
	baseURL         string
	httpClient      httpretry.HTTPDoer
	tokenSource     oauth2.TokenSource
}

// NewClient creates a new Google Ads API client authenticating with an
// OAuth2 refresh token.
func NewClient(cfg config.GoogleAdsConfig, policy httpretry.Policy) *Client {
	c := &Client{
		customerID:      strings.ReplaceAll(cfg.CustomerID, "-", ""),
		loginCustomerID: strings.ReplaceAll(cfg.LoginCustomerID, "-", ""),
		developerToken:  cfg.DeveloperToken,
		baseURL:         cfg.BaseURL,
		httpClient: httpretry.New(&http.Client{
			Timeout: cfg.Timeout(),
		}, policy),
	}
	if cfg.ClientID != "" && cfg.RefreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		}
		c.tokenSource = conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}
	return c
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// SetTokenSource sets a custom token source (useful for testing)
func (c *Client) SetTokenSource(ts oauth2.TokenSource) {
	c.tokenSource = ts
}

// FetchCampaignStats retrieves one result per campaign per day in
// [start, end]. searchStream returns the full result set as a JSON
// array of batches, so no pagination loop is needed.
func (c *Client) FetchCampaignStats(ctx context.Context, start, end time.Time) ([]CampaignStat, error) {
	if c.customerID == "" {
		return nil, fmt.Errorf("google ads customer id is not set: %w", etl.ErrConfig)
	}
	if c.developerToken == "" {
		return nil, fmt.Errorf("google ads developer token is not set: %w", etl.ErrConfig)
	}
	if c.tokenSource == nil {
		return nil, fmt.Errorf("google ads oauth credentials are not set: %w", etl.ErrConfig)
	}

	query := fmt.Sprintf(campaignQuery, start.Format("2006-01-02"), end.Format("2006-01-02"))
	data, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s/customers/%s/googleAds:searchStream", c.baseURL, apiVersion, c.customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.developerToken)
	if c.loginCustomerID != "" {
		req.Header.Set("login-customer-id", c.loginCustomerID)
	}

	tok, err := c.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("google ads token refresh failed: %w: %w", err, etl.ErrConfig)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("google ads rejected credentials (status %d): %w", resp.StatusCode, etl.ErrConfig)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var batches []streamBatch
	if err := json.Unmarshal(body, &batches); err != nil {
		return nil, fmt.Errorf("failed to parse searchStream response: %w", err)
	}

	var all []CampaignStat
	for _, b := range batches {
		all = append(all, b.Results...)
	}
	return all, nil
}

type streamBatch struct {
	Results []CampaignStat `json:"results"`
}

// CampaignStat is one campaign-day result. The REST transport encodes
// int64 metrics as strings.
type CampaignStat struct {
	Campaign struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"campaign"`
	Metrics struct {
		CostMicros       string  `json:"costMicros"`
		Clicks           string  `json:"clicks"`
		Impressions      string  `json:"impressions"`
		Conversions      float64 `json:"conversions"`
		ConversionsValue float64 `json:"conversionsValue"`
	} `json:"metrics"`
	Segments struct {
		Date string `json:"date"`
	} `json:"segments"`
}
