package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/pkg/httpretry"
)

func testClient(serverURL string) *Client {
	return NewClient(config.ShopifyConfig{
		ShopURL:        serverURL,
		AccessToken:    "shpat_test",
		APIVersion:     "2024-10",
		PageSize:       2,
		TimeoutSeconds: 5,
	}, httpretry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond})
}

func TestFetchOrdersFollowsLinkHeader(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/2024-10/orders.json?limit=2&page_info=abc>; rel="next"`, r.Host))
			fmt.Fprint(w, `{"orders":[{"id":1,"created_at":"2026-08-01T10:00:00Z"},{"id":2,"created_at":"2026-08-01T11:00:00Z"}]}`)
			return
		}
		w.Header().Set("Link", `<http://example.invalid/prev>; rel="previous"`)
		fmt.Fprint(w, `{"orders":[{"id":3,"created_at":"2026-08-02T09:00:00Z"}]}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	orders, err := client.FetchOrders(context.Background(),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, orders, 3)
	assert.Equal(t, int64(1), orders[0].ID)
	assert.Equal(t, int64(3), orders[2].ID)
	require.Len(t, requests, 2)
	assert.Contains(t, requests[0], "created_at_min=2026-08-01")
	assert.Contains(t, requests[0], "created_at_max=2026-08-03")
	assert.Contains(t, requests[1], "page_info=abc")
}

func TestFetchOrdersRejectedCredentialsAreConfigErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":"[API] Invalid API key or access token"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchOrders(context.Background(), time.Now().Add(-24*time.Hour), time.Time{})
	require.Error(t, err)
	assert.True(t, etl.IsConfigError(err))
}

func TestFetchOrdersMissingCredentials(t *testing.T) {
	client := NewClient(config.ShopifyConfig{ShopURL: "store.example.com"}, httpretry.DefaultPolicy())
	_, err := client.FetchOrders(context.Background(), time.Now(), time.Time{})
	require.Error(t, err)
	assert.True(t, etl.IsConfigError(err))
}

func TestFetchOrdersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchOrders(context.Background(), time.Now().Add(-24*time.Hour), time.Time{})
	require.Error(t, err)
	assert.False(t, etl.IsConfigError(err))
	assert.Contains(t, err.Error(), "status 500")
}

func TestNextPageURL(t *testing.T) {
	next := nextPageURL(`<https://s.myshopify.com/admin/api/2024-10/orders.json?page_info=prev>; rel="previous", <https://s.myshopify.com/admin/api/2024-10/orders.json?page_info=next>; rel="next"`)
	assert.Equal(t, "https://s.myshopify.com/admin/api/2024-10/orders.json?page_info=next", next)

	assert.Equal(t, "", nextPageURL(`<https://s.myshopify.com/x>; rel="previous"`))
	assert.Equal(t, "", nextPageURL(""))
}
