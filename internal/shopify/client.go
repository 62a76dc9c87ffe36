// Package shopify pulls orders from the Shopify Admin API and flattens
// them into one warehouse row per line item.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
)

// maxPages bounds the pagination loop against a misbehaving API.
const maxPages = 200

// Client is the Shopify Admin API client
type Client struct {
	baseURL     string
	accessToken string
	apiVersion  string
	pageSize    int
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a new Shopify Admin API client
func NewClient(cfg config.ShopifyConfig, policy httpretry.Policy) *Client {
	base := cfg.ShopURL
	if base != "" && !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	return &Client{
		baseURL:     base,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
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

// FetchOrders retrieves every order created in [createdAtMin, createdAtMax],
// following the Link header until the last page. A zero createdAtMax leaves
// the upper bound open.
func (c *Client) FetchOrders(ctx context.Context, createdAtMin, createdAtMax time.Time) ([]Order, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("shopify shop URL is not set: %w", etl.ErrConfig)
	}
	if c.accessToken == "" {
		return nil, fmt.Errorf("shopify access token is not set: %w", etl.ErrConfig)
	}

	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", fmt.Sprintf("%d", c.pageSize))
	params.Set("created_at_min", createdAtMin.Format(time.RFC3339))
	if !createdAtMax.IsZero() {
		params.Set("created_at_max", createdAtMax.Format(time.RFC3339))
	}
	reqURL := fmt.Sprintf("%s/admin/api/%s/orders.json?%s", c.baseURL, c.apiVersion, params.Encode())

	var all []Order
	for page := 0; reqURL != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("order pagination exceeded %d pages", maxPages)
		}

		orders, next, err := c.fetchPage(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		all = append(all, orders...)
		reqURL = next
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, reqURL string) ([]Order, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, "", fmt.Errorf("shopify rejected credentials (status %d): %w", resp.StatusCode, etl.ErrConfig)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed ordersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to parse orders response: %w", err)
	}

	return parsed.Orders, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" URL from a Link header, or "" when
// this was the last page.
func nextPageURL(linkHeader string) string {
	if !strings.Contains(linkHeader, `rel="next"`) {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}
