package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

warehouse:
  path: "./test-data/commerce.duckdb"

shopify:
  shop_url: "test-store.myshopify.com"
  access_token: "test-token"
  page_size: 100
  timeout_seconds: 45
  enabled: true

square:
  access_token: "sq-token"
  location_id: "L123"
  enabled: true

etl:
  backfill_days: 90
  max_retries: 5

thresholds:
  high_roas: 3.5
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "./test-data/commerce.duckdb", cfg.Warehouse.Path)

	assert.Equal(t, "test-store.myshopify.com", cfg.Shopify.ShopURL)
	assert.Equal(t, 100, cfg.Shopify.PageSize)
	assert.Equal(t, 45, cfg.Shopify.TimeoutSeconds)
	assert.True(t, cfg.Shopify.Enabled)

	assert.Equal(t, "L123", cfg.Square.LocationID)

	assert.Equal(t, 90, cfg.ETL.BackfillDays)
	assert.Equal(t, 5, cfg.ETL.MaxRetries)
	assert.Equal(t, 3.5, cfg.Thresholds.HighROAS)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "data/commerce.duckdb", cfg.Warehouse.Path)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
	assert.Equal(t, 250, cfg.Shopify.PageSize)
	assert.Equal(t, "https://connect.squareup.com", cfg.Square.BaseURL)
	assert.Equal(t, 100, cfg.Square.PageSize)
	assert.Equal(t, "https://analyticsdata.googleapis.com", cfg.GA4.BaseURL)
	assert.Equal(t, 400, cfg.ETL.BackfillDays)
	assert.Equal(t, 3, cfg.ETL.MaxRetries)
	assert.Equal(t, 30, cfg.ETL.BatchDays)
	assert.Equal(t, 4.0, cfg.Thresholds.HighROAS)
	assert.Equal(t, int64(100), cfg.Thresholds.MinClicks)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("shopify:\n  shop_url: file-store.myshopify.com\n"), 0644))

	t.Setenv("SHOPIFY_SHOP_URL", "env-store.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "env-token")
	t.Setenv("DUCKDB_PATH", "/tmp/env.duckdb")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-store.myshopify.com", cfg.Shopify.ShopURL)
	assert.Equal(t, "env-token", cfg.Shopify.AccessToken)
	assert.True(t, cfg.Shopify.Enabled, "token override should enable the source")
	assert.Equal(t, "/tmp/env.duckdb", cfg.Warehouse.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Shopify.Enabled)
}

func TestLoadMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: ["), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}
