package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	DataDir         string   // where fetched CSVs are saved
	SaveFormat      string   // csv | json
	Port            int      // proxy listen port
	APIUser         string   // basic auth; gate is active only when both set
	APIPass         string
	CORSOrigins     []string // allowed origins for the proxy
	CacheDir        string   // proxy download cache; empty disables
	RateLimitMax    int      // max requests per window; 0 disables
	RateLimitWindow int      // window length in seconds
	LogLevel        string
	RequestTimeout  int // seconds, for the provider client
}

// defaultCORSOrigins cover common local development setups.
var defaultCORSOrigins = []string{
	"http://localhost:8000",
	"http://localhost:8080",
	"http://127.0.0.1:8000",
	"http://127.0.0.1:8080",
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		DataDir:         getEnvWithDefault("TRADINGUI_DATA_DIR", "data"),
		SaveFormat:      getEnvWithDefault("TRADINGUI_SAVE_FORMAT", "csv"),
		Port:            getEnvIntWithDefault("PORT", 8001),
		APIUser:         os.Getenv("TRADINGUI_API_USER"),
		APIPass:         os.Getenv("TRADINGUI_API_PASS"),
		CacheDir:        os.Getenv("TRADINGUI_API_CACHE_DIR"),
		RateLimitMax:    getEnvIntWithDefault("TRADINGUI_API_RATE_LIMIT_MAX", 0),
		RateLimitWindow: getEnvIntWithDefault("TRADINGUI_API_RATE_LIMIT_WINDOW", 60),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout:  getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
	}
	cfg.CORSOrigins = parseOrigins(os.Getenv("TRADINGUI_CORS_ORIGINS"))

	return cfg, nil
}

// AuthEnabled reports whether the basic auth gate is configured.
// Absence of either credential means unauthenticated access is permitted.
func (c *Config) AuthEnabled() bool {
	return c.APIUser != "" && c.APIPass != ""
}

func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "" {
		return defaultCORSOrigins
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, strings.TrimRight(p, "/"))
		}
	}
	if len(origins) == 0 {
		return defaultCORSOrigins
	}
	return origins
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
