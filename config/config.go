/*
Package config loads server settings from the environment.

SOURCES (later wins):
  1. Defaults
  2. .env in the working directory (github.com/joho/godotenv), if present;
     variables already set in the environment are not overridden
  3. Process environment

MISSING CREDENTIALS:
  Shopify and Klara credentials are optional at startup. Warnings() lists
  what is missing so main can log it; the failure surfaces when a fetch or
  send is attempted.

VALIDATION:
  Values that would make the server misbehave (port range, unknown driver,
  unknown log level) fail Load via github.com/go-playground/validator/v10.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting of the server.
type Config struct {
	Port int `validate:"min=1,max=65535"`

	ShopifyStoreDomain string `validate:"omitempty,hostname"`
	ShopifyAccessToken string
	ShopifyAPIVersion  string `validate:"required"`

	KlaraAPIToken   string
	KlaraAPIBaseURL string `validate:"omitempty,url"`

	DBDriver    string `validate:"oneof=memory sqlite postgres"`
	DBPath      string `validate:"required_if=DBDriver sqlite"`
	DatabaseURL string `validate:"required_if=DBDriver postgres"`

	RedisAddress string `validate:"omitempty,hostname_port"`

	MetricsEnabled bool
	LogLevel       string `validate:"oneof=trace debug info warn error"`
	LogPretty      bool

	CollectInterval    time.Duration `validate:"min=0"`
	ImportWriteTimeout time.Duration `validate:"min=0"`
	CORSAllowedOrigins []string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:               3000,
		ShopifyAPIVersion:  "2024-01",
		DBDriver:           "memory",
		DBPath:             "daybook.db",
		LogLevel:           "info",
		LogPretty:          true,
		ImportWriteTimeout: 30 * time.Minute,
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
	}
}

// Load reads .env (if any) and the environment on top of Default.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function and validates it.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("PORT"); v != "" {
		if cfg.Port, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("PORT: %w", err)
		}
	}

	cfg.ShopifyStoreDomain = strings.TrimSpace(getenv("SHOPIFY_STORE_DOMAIN"))
	cfg.ShopifyAccessToken = strings.TrimSpace(getenv("SHOPIFY_ADMIN_API_ACCESS_TOKEN"))
	setString(&cfg.ShopifyAPIVersion, getenv("SHOPIFY_API_VERSION"))

	cfg.KlaraAPIToken = strings.TrimSpace(getenv("KLARA_API_TOKEN"))
	cfg.KlaraAPIBaseURL = strings.TrimSpace(getenv("KLARA_API_BASE_URL"))

	setString(&cfg.DBDriver, getenv("DB_DRIVER"))
	setString(&cfg.DBPath, getenv("DB_PATH"))
	cfg.DatabaseURL = strings.TrimSpace(getenv("DATABASE_URL"))
	cfg.RedisAddress = strings.TrimSpace(getenv("REDIS_ADDRESS"))

	if cfg.MetricsEnabled, err = parseBool(getenv("METRICS_ENABLED"), false); err != nil {
		return cfg, fmt.Errorf("METRICS_ENABLED: %w", err)
	}
	setString(&cfg.LogLevel, strings.ToLower(getenv("LOG_LEVEL")))
	if cfg.LogPretty, err = parseBool(getenv("LOG_PRETTY"), cfg.LogPretty); err != nil {
		return cfg, fmt.Errorf("LOG_PRETTY: %w", err)
	}

	if v := getenv("COLLECT_INTERVAL"); v != "" {
		if cfg.CollectInterval, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("COLLECT_INTERVAL: %w", err)
		}
	}
	if v := getenv("IMPORT_WRITE_TIMEOUT"); v != "" {
		if cfg.ImportWriteTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("IMPORT_WRITE_TIMEOUT: %w", err)
		}
	}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and required combinations.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Warnings lists missing optional credentials.
func (c Config) Warnings() []string {
	var w []string
	if c.ShopifyStoreDomain == "" || c.ShopifyAccessToken == "" {
		w = append(w, "Shopify configuration missing: set SHOPIFY_STORE_DOMAIN and SHOPIFY_ADMIN_API_ACCESS_TOKEN")
	}
	if c.KlaraAPIToken == "" {
		w = append(w, "KLARA_API_TOKEN missing: Klara bookings are not possible yet")
	}
	if c.KlaraDryRun() {
		w = append(w, "KLARA_API_BASE_URL not set: bookings are logged, not sent")
	}
	return w
}

// KlaraDryRun reports whether bookings are only logged.
func (c Config) KlaraDryRun() bool {
	return c.KlaraAPIBaseURL == ""
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func parseBool(v string, fallback bool) (bool, error) {
	if v = strings.TrimSpace(v); v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
