package bootstrap

import (
	"log"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/config"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/store"
)

// initializeDatabase opens and migrates the token store.
func initializeDatabase(cfg *config.Config) (*store.Store, error) {
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	log.Printf("Database initialized: driver=%s", cfg.DatabaseDriver)
	return db, nil
}

// initializeMetrics returns the configured metrics recorder.
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeCanvasClient builds the OAuth/API client for the platform.
func initializeCanvasClient(cfg *config.Config) (*canvas.Client, error) {
	client, err := canvas.New(canvas.ClientConfig{
		BaseURL:            cfg.CanvasBaseURL,
		APIURL:             cfg.CanvasAPIURL,
		ClientID:           cfg.OAuthClientID,
		ClientSecret:       cfg.OAuthClientSecret,
		RedirectURL:        cfg.OAuthRedirectURL,
		Timeout:            cfg.OAuthTimeout,
		InsecureSkipVerify: cfg.OAuthInsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Platform OAuth configured: base=%s redirect=%s", cfg.CanvasBaseURL, cfg.OAuthRedirectURL)
	return client, nil
}
