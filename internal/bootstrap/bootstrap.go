package bootstrap

import (
	"net/http"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/config"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/store"

	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	Canvas          *canvas.Client
	MetricsRecorder metrics.Recorder

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 2: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 3: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and the platform client
func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = initializeDatabase(app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)

	app.Canvas, err = initializeCanvasClient(app.Config)
	return err
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.DB,
		app.Canvas,
		app.MetricsRecorder,
	)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}
