package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "ltibridge.db", cfg.DatabaseDSN)
	assert.Equal(t, 3600, cfg.SessionMaxAge)
	assert.Equal(t, 15*time.Second, cfg.OAuthTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, RateLimitStoreMemory, cfg.RateLimitStore)
}

func TestLoad_CanvasURLs(t *testing.T) {
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu/")

	cfg := Load()

	// Trailing slashes are stripped, and the API URL is derived from the
	// base URL unless set explicitly.
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasBaseURL)
	assert.Equal(t, "https://canvas.example.edu/api/v1", cfg.CanvasAPIURL)
}

func TestLoad_ExplicitAPIURLOverridesDerived(t *testing.T) {
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu")
	t.Setenv("CANVAS_API_URL", "https://api.example.edu/v1/")

	cfg := Load()

	assert.Equal(t, "https://api.example.edu/v1", cfg.CanvasAPIURL)
}

func TestLoad_RedirectURLDerivedFromBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://tool.example.edu")

	cfg := Load()

	assert.Equal(t, "https://tool.example.edu/oauthlogin", cfg.OAuthRedirectURL)
}

func TestLoad_ReleaseMode_EnablesProductionDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.True(t, cfg.IsProduction)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_PostgresDriver_RequiresExplicitDSN(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Empty(t, cfg.DatabaseDSN)
}

func TestValidate_CompleteConfig_Passes(t *testing.T) {
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu")
	t.Setenv("OAUTH2_CLIENT_ID", "10000000000001")
	t.Setenv("OAUTH2_CLIENT_SECRET", "secret")

	cfg := Load()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingCanvasBaseURL_Fails(t *testing.T) {
	t.Setenv("OAUTH2_CLIENT_ID", "10000000000001")
	t.Setenv("OAUTH2_CLIENT_SECRET", "secret")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CANVAS_BASE_URL")
}

func TestValidate_MissingOAuthCredentials_Fails(t *testing.T) {
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAUTH2_CLIENT_ID")
}

func TestValidate_PostgresWithoutDSN_Fails(t *testing.T) {
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu")
	t.Setenv("OAUTH2_CLIENT_ID", "10000000000001")
	t.Setenv("OAUTH2_CLIENT_SECRET", "secret")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "1")
	t.Setenv("TEST_BOOL_FALSE", "no")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "abc")
	t.Setenv("TEST_DURATION", "30s")

	assert.True(t, getEnvBool("TEST_BOOL_TRUE", false))
	assert.False(t, getEnvBool("TEST_BOOL_FALSE", true))
	assert.True(t, getEnvBool("TEST_BOOL_MISSING", true))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_INT_BAD", 7))
	assert.Equal(t, 30*time.Second, getEnvDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION_MISSING", time.Minute))
}
