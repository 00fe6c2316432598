package bootstrap

import (
	"log"
	"net/url"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/config"
	"github.com/Thetwam/ltibridge/internal/handlers"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/store"
	"github.com/Thetwam/ltibridge/internal/templates"
)

// handlerSet bundles the route handlers for the router setup
type handlerSet struct {
	Launch *handlers.LaunchHandler
	OAuth  *handlers.OAuthHandler
	Index  *handlers.IndexHandler
	XML    *handlers.XMLHandler
}

func initializeHandlers(
	cfg *config.Config,
	db *store.Store,
	canvasClient *canvas.Client,
	recorder metrics.Recorder,
) handlerSet {
	descriptor, err := templates.LoadDescriptor()
	if err != nil {
		// Served requests fall back to the error page.
		log.Printf("Warning: failed to load tool descriptor template: %v", err)
		descriptor = nil
	}

	return handlerSet{
		Launch: handlers.NewLaunchHandler(db, canvasClient, recorder),
		OAuth:  handlers.NewOAuthHandler(db, canvasClient, recorder),
		Index:  handlers.NewIndexHandler(),
		XML: handlers.NewXMLHandler(descriptor, templates.DescriptorProps{
			Title:       cfg.ToolTitle,
			Description: cfg.ToolDescription,
			LaunchURL:   cfg.BaseURL + "/launch",
			Domain:      hostOf(cfg.BaseURL),
		}),
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
