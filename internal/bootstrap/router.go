package bootstrap

import (
	"log"
	"net/http"

	"github.com/Thetwam/ltibridge/internal/config"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/middleware"
	"github.com/Thetwam/ltibridge/internal/store"
	"github.com/Thetwam/ltibridge/internal/templates"
	"github.com/Thetwam/ltibridge/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder metrics.Recorder,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware(), util.RequestIDMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// HTML pages
	r.SetHTMLTemplate(templates.Load())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Auth-sensitive routes share the rate limiter when one is configured
	authRoutes := r.Group("/")
	if limiter := setupRateLimiting(cfg); limiter != nil {
		authRoutes.Use(limiter)
	}

	authRoutes.GET("/oauthlogin", h.OAuth.OAuthLogin)
	authRoutes.POST("/oauthlogin", h.OAuth.OAuthLogin)

	launch := authRoutes.Group("/", middleware.RequireLaunchSession())
	launch.GET("/launch", h.Launch.Launch)
	launch.POST("/launch", h.Launch.Launch)

	r.GET("/index", h.Index.Index)
	r.POST("/index", h.Index.Index)
	r.GET("/xml/", h.XML.Descriptor)

	log.Printf("Server configured: addr=%s base_url=%s", cfg.ServerAddr, cfg.BaseURL)

	return r
}

// setupSessionMiddleware configures cookie-backed session handling.
// LTI launches arrive as cross-site POSTs, so production cookies need
// SameSite=None alongside Secure.
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sameSite := http.SameSiteLaxMode
	if cfg.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
	})
	r.Use(sessions.Sessions("ltibridge_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupRateLimiting builds the optional rate limiter for the launch and
// oauth routes.
func setupRateLimiting(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return nil
	}

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		StoreType:         cfg.RateLimitStore,
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		RedisDB:           cfg.RedisDB,
	})
	if err != nil {
		log.Printf("Warning: rate limiting disabled: %v", err)
		return nil
	}

	log.Printf("Rate limiting enabled: %d req/min (%s store)",
		cfg.RateLimitPerMinute, cfg.RateLimitStore)
	return limiter
}

// createHealthCheckHandler returns the health endpoint backed by a
// database ping.
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
