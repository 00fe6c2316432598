package middleware

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Thetwam/ltibridge/internal/models"
	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Context keys populated for handlers behind the guard.
const (
	ContextUserID   = "user_id"
	ContextCourseID = "course_id"
)

const notEnrolledMsg = "You are not enrolled in this course as a Teacher or Designer. " +
	"Please refresh and try again. If this error persists, please contact support."

// RequireLaunchSession gates the launch route. An inbound LTI launch form
// updates the session first (ids copied over, role flags recomputed from
// the submitted roles list); the request is then allowed only when the
// session carries a user id, a course id, and an instructor or admin
// role. Session writes happen even on paths that end up denying.
func RequireLaunchSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		hasForm := hasLaunchForm(c)
		if hasForm {
			applyLaunchForm(c, session)
			if err := session.Save(); err != nil {
				log.Printf("[Guard] Failed to save session: %v", err)
			}
		}

		userID, hasUser := sessionInt64(session, models.SessionUserID)
		courseID, hasCourse := sessionInt64(session, models.SessionCourseID)

		if !hasForm && !hasUser && !hasCourse {
			log.Printf("[Guard] No session and no request. Not allowed.")
			deny(c, "No session or request provided.")
			return
		}

		if !hasUser {
			log.Printf("[Guard] No user ID. Not allowed.")
			deny(c, "No user ID provided.")
			return
		}

		if !hasCourse {
			log.Printf("[Guard] No course ID. Not allowed.")
			deny(c, "No course ID provided.")
			return
		}

		instructor, _ := session.Get(models.SessionInstructor).(bool)
		admin, _ := session.Get(models.SessionAdmin).(bool)
		if !instructor && !admin {
			log.Printf("[Guard] Not enrolled as Teacher or an Admin. Not allowed. user=%d course=%d",
				userID, courseID)
			deny(c, notEnrolledMsg)
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextCourseID, courseID)
		c.Next()
	}
}

// applyLaunchForm copies the launch claims into the session. Role flags
// are recomputed from scratch on every launch form, so a roles list that
// stops naming Instructor clears a previously set flag.
func applyLaunchForm(c *gin.Context, session sessions.Session) {
	if id, ok := parseID(c.PostForm(models.FormUserID)); ok {
		session.Set(models.SessionUserID, id)
	}
	if id, ok := parseID(c.PostForm(models.FormCourseID)); ok {
		session.Set(models.SessionCourseID, id)
	}

	roles := c.PostForm(models.FormRoles)
	admin := strings.Contains(roles, models.RoleAdministrator)
	instructor := admin || strings.Contains(roles, models.RoleInstructor)
	session.Set(models.SessionAdmin, admin)
	session.Set(models.SessionInstructor, instructor)
}

func hasLaunchForm(c *gin.Context) bool {
	if err := c.Request.ParseForm(); err != nil {
		return false
	}
	return len(c.Request.PostForm) > 0
}

// parseID parses a platform integer id; a non-numeric or empty value is
// treated the same as an absent one.
func parseID(v string) (int64, bool) {
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func sessionInt64(session sessions.Session, key string) (int64, bool) {
	v, ok := session.Get(key).(int64)
	return v, ok
}

func deny(c *gin.Context, msg string) {
	templates.RenderError(c, http.StatusForbidden, msg)
	c.Abort()
}
