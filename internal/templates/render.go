package templates

import (
	"embed"
	"html/template"

	"github.com/Thetwam/ltibridge/internal/util"

	"github.com/gin-gonic/gin"
)

//go:embed pages/*.html
var pagesFS embed.FS

// Load parses the embedded HTML pages for gin's renderer.
func Load() *template.Template {
	return template.Must(template.ParseFS(pagesFS, "pages/*.html"))
}

// RenderError renders the generic human-readable error page. Every
// failure in the launch flow lands here; callers log the details.
func RenderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", gin.H{
		"error":      msg,
		"request_id": util.RequestID(c),
	})
}

// RenderIndex renders the post-auth landing page.
func RenderIndex(c *gin.Context, msg string) {
	c.HTML(200, "index.html", gin.H{
		"message": msg,
	})
}
