package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/models"
	"github.com/Thetwam/ltibridge/internal/store"
	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// OAuthHandler completes the authorization code leg: the platform
// redirects back here with a one-time code, which gets exchanged for a
// token pair and persisted against the launching user.
type OAuthHandler struct {
	store   *store.Store
	canvas  *canvas.Client
	metrics metrics.Recorder
}

func NewOAuthHandler(s *store.Store, cc *canvas.Client, m metrics.Recorder) *OAuthHandler {
	return &OAuthHandler{
		store:   s,
		canvas:  cc,
		metrics: m,
	}
}

// OAuthLogin is the OAuth2 redirect target.
func (h *OAuthHandler) OAuthLogin(c *gin.Context) {
	session := sessions.Default(c)

	// Verify state when the session holds one (set by /launch before the
	// authorize redirect). Launches that never stashed a state still get
	// their code exchanged.
	if saved, ok := session.Get(models.SessionOAuthState).(string); ok && saved != "" {
		session.Delete(models.SessionOAuthState)
		if err := session.Save(); err != nil {
			log.Printf("[OAuth] Failed to save session: %v", err)
		}
		if c.Query("state") != saved {
			log.Printf("[OAuth] State mismatch on oauth redirect, rejecting")
			templates.RenderError(c, http.StatusBadRequest, authErrorMsg)
			return
		}
	}

	userID, ok := session.Get(models.SessionUserID).(int64)
	if !ok {
		log.Printf("[OAuth] No user id in session during code exchange")
		templates.RenderError(c, http.StatusForbidden, authErrorMsg)
		return
	}

	token, err := h.canvas.ExchangeCode(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.metrics.RecordCodeExchange(false)
		if canvas.IsServerError(err) {
			// Canceled oauth or server error.
			log.Printf("[OAuth] Authorization server error during code exchange: user=%d err=%v body=%s",
				userID, err, canvas.UpstreamBody(err))
		} else {
			log.Printf("[OAuth] Access token not in exchange response: user=%d err=%v", userID, err)
		}
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}

	if token.Expiry.IsZero() {
		h.metrics.RecordCodeExchange(false)
		log.Printf("[OAuth] Token response missing expires_in: user=%d", userID)
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		// Fall back to a refresh token from an earlier exchange; a row
		// without one is useless.
		refreshToken, _ = session.Get(models.SessionRefreshToken).(string)
	}
	if refreshToken == "" {
		h.metrics.RecordCodeExchange(false)
		log.Printf("[OAuth] Token response missing refresh_token: user=%d", userID)
		templates.RenderError(c, http.StatusBadGateway, authErrorMsg)
		return
	}

	expiresAt := token.Expiry.Unix()
	session.Set(models.SessionAPIKey, token.AccessToken)
	session.Set(models.SessionRefreshToken, refreshToken)
	session.Set(models.SessionExpiresAt, expiresAt)
	if err := session.Save(); err != nil {
		log.Printf("[OAuth] Failed to save session: user=%d err=%v", userID, err)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	if err := h.upsertUserToken(userID, refreshToken, expiresAt); err != nil {
		log.Printf("[OAuth] Error adding or updating user token in db: user=%d err=%v", userID, err)
		h.metrics.RecordCodeExchange(false)
		templates.RenderError(c, http.StatusInternalServerError, authErrorMsg)
		return
	}

	h.metrics.RecordCodeExchange(true)
	c.Redirect(http.StatusFound, "/index")
}

// upsertUserToken creates the user's token row on first exchange and
// rewrites it on later ones.
func (h *OAuthHandler) upsertUserToken(userID int64, refreshToken string, expiresAt int64) error {
	_, err := h.store.GetUserToken(userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return h.store.CreateUserToken(&models.UserToken{
			UserID:       userID,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
		})
	}
	if err != nil {
		return err
	}
	return h.store.UpdateUserToken(userID, refreshToken, expiresAt)
}
