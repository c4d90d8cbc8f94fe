// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the relational store connection string. A plain path or any
	// string without a postgres:// scheme is treated as a SQLite database file.
	DBDSN string

	// Meli contains Mercado Livre API connection and credential settings.
	Meli MeliConfig

	// Pipeline contains per-run extraction and enrichment settings.
	Pipeline PipelineConfig
}

// MeliConfig holds Mercado Livre API settings.
type MeliConfig struct {
	// APIURL is the REST API base URL.
	APIURL string

	// ClientID and ClientSecret identify the OAuth application used
	// for token refresh.
	ClientID     string
	ClientSecret string

	// TokenFile is the path of the JSON file holding the current tokens.
	// Rewritten whenever a refresh succeeds.
	TokenFile string

	// FallbackAccess, FallbackRefresh and FallbackExpires are static
	// credentials used when the token file is absent or refresh fails.
	// FallbackExpires is an RFC 3339 timestamp.
	FallbackAccess  string
	FallbackRefresh string
	FallbackExpires string

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int

	// RateLimit is the maximum number of API calls per one-minute window.
	RateLimit int
}

// PipelineConfig holds per-run extraction settings.
type PipelineConfig struct {
	// Sellers is the list of seller IDs to process (comma-separated in env).
	Sellers []string

	// Track selects which pipelines run per seller: "items", "orders" or "full".
	Track string

	// MaxItems caps catalog extraction per seller. 0 means all available.
	MaxItems int

	// MaxOrders caps order extraction per seller. 0 means all available.
	MaxOrders int

	// PageLimit is the page size used against the order search endpoint.
	PageLimit int

	// IncludeDescriptions and IncludeReviews toggle per-item enrichment fetches.
	IncludeDescriptions bool
	IncludeReviews      bool

	// OrdersDateFrom / OrdersDateTo bound order extraction (ISO 8601, optional).
	OrdersDateFrom string
	OrdersDateTo   string
}

// getDatabaseDSN constructs the store DSN from environment variables.
// DB_DSN wins when set; otherwise a local SQLite file is used.
func getDatabaseDSN() string {
	if dsn := getEnv("DB_DSN", ""); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s/noneca_analytics.db", getEnv("DATA_DIR", "./data"))
}

// getMeliConfig loads Mercado Livre API settings from environment.
func getMeliConfig() MeliConfig {
	return MeliConfig{
		APIURL:          getEnv("ML_API_URL", "https://api.mercadolibre.com"),
		ClientID:        getEnv("ML_CLIENT_ID", ""),
		ClientSecret:    getEnv("ML_CLIENT_SECRET", ""),
		TokenFile:       getEnv("ML_TOKEN_FILE", "ml_tokens.json"),
		FallbackAccess:  getEnv("ACCESS_TOKEN", ""),
		FallbackRefresh: getEnv("REFRESH_TOKEN", ""),
		FallbackExpires: getEnv("TOKEN_EXPIRES", ""),
		TimeoutSeconds:  getEnvInt("API_TIMEOUT", 30),
		RateLimit:       getEnvInt("RATE_LIMIT", 100),
	}
}

// getPipelineConfig loads pipeline settings from environment.
func getPipelineConfig() PipelineConfig {
	sellersRaw := getEnv("SELLER_IDS", "")
	var sellers []string
	if sellersRaw != "" {
		for _, s := range strings.Split(sellersRaw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sellers = append(sellers, s)
			}
		}
	}

	track := getEnv("PIPELINE_TRACK", "full")
	switch track {
	case "items", "orders", "full":
	default:
		track = "full"
	}

	return PipelineConfig{
		Sellers:             sellers,
		Track:               track,
		MaxItems:            getEnvInt("MAX_ITEMS_PER_SELLER", 0),
		MaxOrders:           getEnvInt("MAX_ORDERS_PER_SELLER", 0),
		PageLimit:           getEnvInt("API_PAGINATION_LIMIT", 50),
		IncludeDescriptions: getEnvBool("INCLUDE_DESCRIPTIONS", true),
		IncludeReviews:      getEnvBool("INCLUDE_REVIEWS", false),
		OrdersDateFrom:      getEnv("ORDERS_DATE_FROM", ""),
		OrdersDateTo:        getEnv("ORDERS_DATE_TO", ""),
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		DBDSN:    getDatabaseDSN(),
		Meli:     getMeliConfig(),
		Pipeline: getPipelineConfig(),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
