// Package square pulls point-of-sale payments and itemized orders from
// the Square APIs.
package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
)

// maxPages bounds the cursor loop against a misbehaving API.
const maxPages = 500

// Client is the Square API client
type Client struct {
	baseURL     string
	accessToken string
	locationID  string
	pageSize    int
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a new Square API client
func NewClient(cfg config.SquareConfig, policy httpretry.Policy) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		locationID:  cfg.LocationID,
		pageSize:    cfg.PageSize,
		httpClient: httpretry.New(&http.Client{
			Timeout: cfg.Timeout(),
		}, policy),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// FetchPayments retrieves every payment created in [begin, end], oldest
// first, following the response cursor until exhausted.
func (c *Client) FetchPayments(ctx context.Context, begin, end time.Time) ([]Payment, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	var all []Payment
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("payment pagination exceeded %d pages", maxPages)
		}

		params := url.Values{}
		params.Set("begin_time", begin.Format(time.RFC3339))
		if !end.IsZero() {
			params.Set("end_time", end.Format(time.RFC3339))
		}
		params.Set("sort_order", "ASC")
		params.Set("limit", fmt.Sprintf("%d", c.pageSize))
		if c.locationID != "" {
			params.Set("location_id", c.locationID)
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var parsed paymentsResponse
		if err := c.doRequest(ctx, http.MethodGet, "/v2/payments?"+params.Encode(), nil, &parsed); err != nil {
			return nil, err
		}

		all = append(all, parsed.Payments...)
		if parsed.Cursor == "" {
			return all, nil
		}
		cursor = parsed.Cursor
	}
}

// SearchOrders retrieves every order created in [begin, end] for the
// configured location.
func (c *Client) SearchOrders(ctx context.Context, begin, end time.Time) ([]Order, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}
	if c.locationID == "" {
		return nil, fmt.Errorf("square location id is required for order search: %w", etl.ErrConfig)
	}

	var all []Order
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("order pagination exceeded %d pages", maxPages)
		}

		body := map[string]any{
			"location_ids": []string{c.locationID},
			"limit":        c.pageSize,
			"query": map[string]any{
				"filter": map[string]any{
					"date_time_filter": map[string]any{
						"created_at": map[string]any{
							"start_at": begin.Format(time.RFC3339),
							"end_at":   end.Format(time.RFC3339),
						},
					},
				},
				"sort": map[string]any{
					"sort_field": "CREATED_AT",
					"sort_order": "ASC",
				},
			},
		}
		if cursor != "" {
			body["cursor"] = cursor
		}

		var parsed ordersSearchResponse
		if err := c.doRequest(ctx, http.MethodPost, "/v2/orders/search", body, &parsed); err != nil {
			return nil, err
		}

		all = append(all, parsed.Orders...)
		if parsed.Cursor == "" {
			return all, nil
		}
		cursor = parsed.Cursor
	}
}

func (c *Client) checkCredentials() error {
	if c.baseURL == "" {
		return fmt.Errorf("square base URL is not set: %w", etl.ErrConfig)
	}
	if c.accessToken == "" {
		return fmt.Errorf("square access token is not set: %w", etl.ErrConfig)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("square rejected credentials (status %d): %w", resp.StatusCode, etl.ErrConfig)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
