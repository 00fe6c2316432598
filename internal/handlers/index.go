package handlers

import (
	"log"
	"strconv"

	"github.com/Thetwam/ltibridge/internal/models"
	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// IndexHandler renders the landing page users reach after a successful
// launch or token exchange.
type IndexHandler struct{}

func NewIndexHandler() *IndexHandler {
	return &IndexHandler{}
}

func (h *IndexHandler) Index(c *gin.Context) {
	session := sessions.Default(c)

	// A launch form may re-post the platform ids straight at the index.
	changed := false
	if id, err := strconv.ParseInt(c.PostForm(models.FormCourseID), 10, 64); err == nil {
		session.Set(models.SessionCourseID, id)
		changed = true
	}
	if id, err := strconv.ParseInt(c.PostForm(models.FormUserID), 10, 64); err == nil {
		session.Set(models.SessionUserID, id)
		changed = true
	}
	if changed {
		if err := session.Save(); err != nil {
			log.Printf("[Index] Failed to save session: %v", err)
		}
	}

	templates.RenderIndex(c, "hi!")
}
