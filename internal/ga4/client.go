// Package ga4 pulls daily traffic aggregates from the Google Analytics
// Data API.
package ga4

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
)

// googleTokenURL is the OAuth2 token endpoint for refresh-token grants.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// pageLimit is the row limit per runReport request.
const pageLimit = 100000

// maxPages bounds the offset loop against a misbehaving API.
const maxPages = 50

// Client is the Analytics Data API client
type Client struct {
	propertyID  string
	baseURL     string
	httpClient  httpretry.HTTPDoer
	tokenSource oauth2.TokenSource
}

// NewClient creates a new Analytics Data API client authenticating with
// an OAuth2 refresh token.
func NewClient(cfg config.GA4Config, policy httpretry.Policy) *Client {
	c := &Client{
		propertyID: cfg.PropertyID,
		baseURL:    cfg.BaseURL,
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

// RunReport retrieves one row per date, source, medium and campaign for
// the date range, paging by offset until the reported row count is
// exhausted.
func (c *Client) RunReport(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
	if c.propertyID == "" {
		return nil, fmt.Errorf("ga4 property id is not set: %w", etl.ErrConfig)
	}
	if c.tokenSource == nil {
		return nil, fmt.Errorf("ga4 oauth credentials are not set: %w", etl.ErrConfig)
	}

	var all []ReportRow
	offset := int64(0)
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("report pagination exceeded %d pages", maxPages)
		}

		body := runReportRequest{
			DateRanges: []dateRange{{
				StartDate: start.Format("2006-01-02"),
				EndDate:   end.Format("2006-01-02"),
			}},
			Dimensions: []named{
				{Name: "date"},
				{Name: "sessionSource"},
				{Name: "sessionMedium"},
				{Name: "sessionCampaignName"},
			},
			Metrics: []named{
				{Name: "sessions"},
				{Name: "totalUsers"},
				{Name: "totalRevenue"},
			},
			Limit:  pageLimit,
			Offset: offset,
		}

		parsed, err := c.runReportPage(ctx, body)
		if err != nil {
			return nil, err
		}

		all = append(all, parsed.Rows...)
		offset += int64(len(parsed.Rows))
		if offset >= parsed.RowCount || len(parsed.Rows) == 0 {
			return all, nil
		}
	}
}

func (c *Client) runReportPage(ctx context.Context, body runReportRequest) (*runReportResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.baseURL, c.propertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	tok, err := c.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("ga4 token refresh failed: %w: %w", err, etl.ErrConfig)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("ga4 rejected credentials (status %d): %w", resp.StatusCode, etl.ErrConfig)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed runReportResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse report response: %w", err)
	}
	return &parsed, nil
}

type runReportRequest struct {
	DateRanges []dateRange `json:"dateRanges"`
	Dimensions []named     `json:"dimensions"`
	Metrics    []named     `json:"metrics"`
	Limit      int64       `json:"limit"`
	Offset     int64       `json:"offset"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type named struct {
	Name string `json:"name"`
}

// ReportRow is one row of a runReport response.
type ReportRow struct {
	DimensionValues []reportValue `json:"dimensionValues"`
	MetricValues    []reportValue `json:"metricValues"`
}

type reportValue struct {
	Value string `json:"value"`
}

type runReportResponse struct {
	Rows     []ReportRow `json:"rows"`
	RowCount int64       `json:"rowCount"`
}
