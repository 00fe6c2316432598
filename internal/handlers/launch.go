package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/middleware"
	"github.com/Thetwam/ltibridge/internal/models"
	"github.com/Thetwam/ltibridge/internal/store"
	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const authErrorMsg = "Authentication error, please refresh and try again. " +
	"If this error persists, please contact support."

// LaunchHandler drives the launch flow: decide whether to trust the
// session's access token, refresh it, or send the user through the
// authorization code grant.
type LaunchHandler struct {
	store   *store.Store
	canvas  *canvas.Client
	metrics metrics.Recorder
}

func NewLaunchHandler(s *store.Store, cc *canvas.Client, m metrics.Recorder) *LaunchHandler {
	return &LaunchHandler{
		store:   s,
		canvas:  cc,
		metrics: m,
	}
}

// Launch handles the LTI entry point. The session guard has already
// validated the launch; by the time we get here the session carries a
// user id, a course id, and an authorized role.
func (h *LaunchHandler) Launch(c *gin.Context) {
	session := sessions.Default(c)
	userID := c.GetInt64(middleware.ContextUserID)

	token, err := h.store.GetUserToken(userID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		// First launch for this user; send them through the code grant.
		// Nothing is persisted until /oauthlogin completes the exchange.
		log.Printf("[Launch] No token row for user %d, redirecting to oauth", userID)
		h.metrics.RecordLaunch(metrics.LaunchNewUser)
		h.redirectToAuthorize(c, session)
		return
	case err != nil:
		log.Printf("[Launch] Token lookup failed for user %d: %v", userID, err)
		h.metrics.RecordLaunch(metrics.LaunchError)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	apiKey, _ := session.Get(models.SessionAPIKey).(string)
	if token.IsExpired(time.Now()) || apiKey == "" {
		h.refresh(c, session, userID, token)
		return
	}

	valid, err := h.canvas.ProbeProfile(c.Request.Context(), userID, apiKey)
	if err != nil {
		log.Printf("[Launch] Profile probe failed for user %d: %v", userID, err)
		h.metrics.RecordLaunch(metrics.LaunchError)
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}
	h.metrics.RecordProfileProbe(valid)

	if valid {
		h.metrics.RecordLaunch(metrics.LaunchValid)
		c.Redirect(http.StatusFound, "/index")
		return
	}

	// The platform rejected a token we still considered valid. Forces a
	// full re-auth rather than attempting a refresh first.
	log.Printf("[Launch] Reauthenticating user %d: token rejected by profile API", userID)
	h.metrics.RecordLaunch(metrics.LaunchReauth)
	h.redirectToAuthorize(c, session)
}

// refresh performs the refresh_token grant and keeps the session and the
// stored row in step before redirecting to the index.
func (h *LaunchHandler) refresh(
	c *gin.Context,
	session sessions.Session,
	userID int64,
	token *models.UserToken,
) {
	log.Printf("[Launch] Expired token or no api key in session, refreshing: user=%d expires_at=%d",
		userID, token.ExpiresAt)

	newToken, err := h.canvas.RefreshToken(c.Request.Context(), token.RefreshToken)
	if err != nil {
		h.metrics.RecordTokenRefresh(false)
		h.metrics.RecordLaunch(metrics.LaunchError)
		if canvas.IsServerError(err) {
			log.Printf("[Launch] Authorization server error during refresh: user=%d err=%v body=%s",
				userID, err, canvas.UpstreamBody(err))
		} else {
			log.Printf("[Launch] Access token not in refresh response. Bad refresh token? user=%d err=%v",
				userID, err)
		}
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}

	if newToken.Expiry.IsZero() {
		// Token endpoint answered without expires_in; there is no sane
		// expiry to persist.
		h.metrics.RecordTokenRefresh(false)
		h.metrics.RecordLaunch(metrics.LaunchError)
		log.Printf("[Launch] Refresh response missing expires_in: user=%d", userID)
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}

	// The platform may not rotate the refresh token on every grant.
	refreshToken := newToken.RefreshToken
	if refreshToken == "" {
		refreshToken = token.RefreshToken
	}
	expiresAt := newToken.Expiry.Unix()

	session.Set(models.SessionAPIKey, newToken.AccessToken)
	session.Set(models.SessionRefreshToken, refreshToken)
	session.Set(models.SessionExpiresAt, expiresAt)
	if err := session.Save(); err != nil {
		log.Printf("[Launch] Failed to save session after refresh: user=%d err=%v", userID, err)
		h.metrics.RecordLaunch(metrics.LaunchError)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	if err := h.store.UpdateUserToken(userID, refreshToken, expiresAt); err != nil {
		log.Printf("[Launch] Error updating user's token row in the db: user=%d err=%v", userID, err)
		h.metrics.RecordTokenRefresh(false)
		h.metrics.RecordLaunch(metrics.LaunchError)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	log.Printf("[Launch] New access token created: user=%d", userID)
	h.metrics.RecordTokenRefresh(true)
	h.metrics.RecordLaunch(metrics.LaunchRefreshed)
	c.Redirect(http.StatusFound, "/index")
}

// redirectToAuthorize sends the user to the platform's authorization URL
// with a fresh CSRF state stashed in the session.
func (h *LaunchHandler) redirectToAuthorize(c *gin.Context, session sessions.Session) {
	state, err := generateRandomState(32)
	if err != nil {
		log.Printf("[Launch] Failed to generate state: %v", err)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	session.Set(models.SessionOAuthState, state)
	if err := session.Save(); err != nil {
		log.Printf("[Launch] Failed to save session: %v", err)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	c.Redirect(http.StatusFound, h.canvas.AuthCodeURL(state))
}

// generateRandomState generates a random state string for OAuth CSRF protection
func generateRandomState(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
