package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	GinMode      string
	IsProduction bool

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds; LTI launches get a fixed idle window
	CookieSecure  bool

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	// Platform (Canvas-shaped LMS)
	CanvasBaseURL string // e.g. https://canvas.example.edu
	CanvasAPIURL  string // e.g. https://canvas.example.edu/api/v1

	// OAuth2 client registered with the platform
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string

	// OAuth HTTP client settings
	OAuthTimeout            time.Duration
	OAuthInsecureSkipVerify bool

	// Tool descriptor settings
	ToolTitle       string
	ToolDescription string

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Rate limiting (launch and oauth endpoints)
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitStore     string // "memory" or "redis"
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	ginMode := getEnv("GIN_MODE", "debug")
	baseURL := getEnv("BASE_URL", "http://localhost:8080")
	canvasBaseURL := strings.TrimRight(getEnv("CANVAS_BASE_URL", ""), "/")

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "ltibridge.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      baseURL,
		GinMode:      ginMode,
		IsProduction: ginMode == "release",

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 3600), // 1 hour
		CookieSecure:  getEnvBool("COOKIE_SECURE", ginMode == "release"),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		CanvasBaseURL: canvasBaseURL,
		CanvasAPIURL: strings.TrimRight(
			getEnv("CANVAS_API_URL", canvasBaseURL+"/api/v1"),
			"/",
		),

		OAuthClientID:     getEnv("OAUTH2_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH2_CLIENT_SECRET", ""),
		OAuthRedirectURL:  getEnv("OAUTH2_REDIRECT_URL", baseURL+"/oauthlogin"),

		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),

		ToolTitle:       getEnv("TOOL_TITLE", "LTIBridge"),
		ToolDescription: getEnv("TOOL_DESCRIPTION", "LTI launch and OAuth token relay"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", false),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitStore:     getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
	}
}

// Validate checks settings that the app cannot run without.
func (c *Config) Validate() error {
	if c.CanvasBaseURL == "" {
		return fmt.Errorf("CANVAS_BASE_URL is required")
	}
	if c.OAuthClientID == "" || c.OAuthClientSecret == "" {
		return fmt.Errorf("OAUTH2_CLIENT_ID and OAUTH2_CLIENT_SECRET are required")
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DatabaseDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
