package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
	Shopify    ShopifyConfig    `yaml:"shopify"`
	Square     SquareConfig     `yaml:"square"`
	GA4        GA4Config        `yaml:"ga4"`
	GoogleAds  GoogleAdsConfig  `yaml:"google_ads"`
	ETL        ETLConfig        `yaml:"etl"`
	Cache      CacheConfig      `yaml:"cache"`
	Thresholds ThresholdConfig  `yaml:"thresholds"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// WarehouseConfig holds the embedded analytical store configuration
type WarehouseConfig struct {
	Path string `yaml:"path"` // DuckDB database file
}

// ShopifyConfig holds Shopify Admin API configuration
type ShopifyConfig struct {
	ShopURL        string `yaml:"shop_url"` // e.g. "my-store.myshopify.com"
	AccessToken    string `yaml:"access_token"`
	APIVersion     string `yaml:"api_version"`
	PageSize       int    `yaml:"page_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c ShopifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SquareConfig holds Square API configuration
type SquareConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	LocationID     string `yaml:"location_id"`
	PageSize       int    `yaml:"page_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c SquareConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GA4Config holds Google Analytics Data API configuration
type GA4Config struct {
	PropertyID     string `yaml:"property_id"`
	BaseURL        string `yaml:"base_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c GA4Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GoogleAdsConfig holds Google Ads API configuration
type GoogleAdsConfig struct {
	CustomerID      string `yaml:"customer_id"`
	LoginCustomerID string `yaml:"login_customer_id"`
	DeveloperToken  string `yaml:"developer_token"`
	BaseURL         string `yaml:"base_url"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RefreshToken    string `yaml:"refresh_token"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Enabled         bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c GoogleAdsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ETLConfig holds incremental load configuration
type ETLConfig struct {
	BackfillDays  int `yaml:"backfill_days"`   // horizon when a table is empty
	MaxRetries    int `yaml:"max_retries"`     // per-request retry attempts
	BatchDays     int `yaml:"batch_days"`      // backfill batch window size
}

// CacheConfig holds the optional Redis rollup cache configuration
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the cache entry lifetime as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ThresholdConfig holds campaign action rule thresholds
type ThresholdConfig struct {
	HighROAS       float64 `yaml:"high_roas"`
	HealthyROAS    float64 `yaml:"healthy_roas"`
	WastedSpend    float64 `yaml:"wasted_spend"`
	MinClicks      int64   `yaml:"min_clicks"`
	LowCVRPercent  float64 `yaml:"low_cvr_percent"`
	HighCTRPercent float64 `yaml:"high_ctr_percent"`
}

// Load reads and parses the configuration file. A missing file is not
// an error; defaults and environment overrides are enough to run.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Warehouse.Path == "" {
		cfg.Warehouse.Path = "data/commerce.duckdb"
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-10"
	}
	if cfg.Shopify.PageSize == 0 {
		cfg.Shopify.PageSize = 250
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Square.BaseURL == "" {
		cfg.Square.BaseURL = "https://connect.squareup.com"
	}
	if cfg.Square.PageSize == 0 {
		cfg.Square.PageSize = 100
	}
	if cfg.Square.TimeoutSeconds == 0 {
		cfg.Square.TimeoutSeconds = 30
	}
	if cfg.GA4.BaseURL == "" {
		cfg.GA4.BaseURL = "https://analyticsdata.googleapis.com"
	}
	if cfg.GA4.TimeoutSeconds == 0 {
		cfg.GA4.TimeoutSeconds = 60
	}
	if cfg.GoogleAds.BaseURL == "" {
		cfg.GoogleAds.BaseURL = "https://googleads.googleapis.com"
	}
	if cfg.GoogleAds.TimeoutSeconds == 0 {
		cfg.GoogleAds.TimeoutSeconds = 60
	}
	if cfg.ETL.BackfillDays == 0 {
		cfg.ETL.BackfillDays = 400
	}
	if cfg.ETL.MaxRetries == 0 {
		cfg.ETL.MaxRetries = 3
	}
	if cfg.ETL.BatchDays == 0 {
		cfg.ETL.BatchDays = 30
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Thresholds.HighROAS == 0 {
		cfg.Thresholds.HighROAS = 4.0
	}
	if cfg.Thresholds.HealthyROAS == 0 {
		cfg.Thresholds.HealthyROAS = 2.0
	}
	if cfg.Thresholds.WastedSpend == 0 {
		cfg.Thresholds.WastedSpend = 10000
	}
	if cfg.Thresholds.MinClicks == 0 {
		cfg.Thresholds.MinClicks = 100
	}
	if cfg.Thresholds.LowCVRPercent == 0 {
		cfg.Thresholds.LowCVRPercent = 1.0
	}
	if cfg.Thresholds.HighCTRPercent == 0 {
		cfg.Thresholds.HighCTRPercent = 2.0
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so credentials can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("DUCKDB_PATH"); v != "" {
		cfg.Warehouse.Path = v
	}
	if v := os.Getenv("SHOPIFY_SHOP_URL"); v != "" {
		cfg.Shopify.ShopURL = v
	}
	if v := os.Getenv("SHOPIFY_ACCESS_TOKEN"); v != "" {
		cfg.Shopify.AccessToken = v
		cfg.Shopify.Enabled = true
	}
	if v := os.Getenv("SQUARE_ACCESS_TOKEN"); v != "" {
		cfg.Square.AccessToken = v
		cfg.Square.Enabled = true
	}
	if v := os.Getenv("SQUARE_LOCATION_ID"); v != "" {
		cfg.Square.LocationID = v
	}
	if v := os.Getenv("GA4_PROPERTY_ID"); v != "" {
		cfg.GA4.PropertyID = v
	}
	if v := os.Getenv("GA4_CLIENT_ID"); v != "" {
		cfg.GA4.ClientID = v
	}
	if v := os.Getenv("GA4_CLIENT_SECRET"); v != "" {
		cfg.GA4.ClientSecret = v
	}
	if v := os.Getenv("GA4_REFRESH_TOKEN"); v != "" {
		cfg.GA4.RefreshToken = v
		cfg.GA4.Enabled = true
	}
	if v := os.Getenv("GOOGLE_ADS_CUSTOMER_ID"); v != "" {
		cfg.GoogleAds.CustomerID = v
	}
	if v := os.Getenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID"); v != "" {
		cfg.GoogleAds.LoginCustomerID = v
	}
	if v := os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN"); v != "" {
		cfg.GoogleAds.DeveloperToken = v
	}
	if v := os.Getenv("GOOGLE_ADS_CLIENT_ID"); v != "" {
		cfg.GoogleAds.ClientID = v
	}
	if v := os.Getenv("GOOGLE_ADS_CLIENT_SECRET"); v != "" {
		cfg.GoogleAds.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_ADS_REFRESH_TOKEN"); v != "" {
		cfg.GoogleAds.RefreshToken = v
		cfg.GoogleAds.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Enabled = true
	}

	return cfg, nil
}
