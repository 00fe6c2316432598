package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Thetwam/ltibridge/internal/canvas"
	"github.com/Thetwam/ltibridge/internal/metrics"
	"github.com/Thetwam/ltibridge/internal/middleware"
	"github.com/Thetwam/ltibridge/internal/models"
	"github.com/Thetwam/ltibridge/internal/store"
	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// tokenResponse mirrors the platform's token endpoint JSON.
type tokenResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

func writeTokenJSON(w http.ResponseWriter, resp tokenResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// testEnv wires the handlers against a fake platform and an in-memory
// token store, with the same route layout the real router uses.
type testEnv struct {
	router   *gin.Engine
	store    *store.Store
	platform *httptest.Server
}

func newTestEnv(t *testing.T, platform http.Handler) *testEnv {
	t.Helper()

	ts := httptest.NewServer(platform)
	t.Cleanup(ts.Close)

	client, err := canvas.New(canvas.ClientConfig{
		BaseURL:      ts.URL,
		APIURL:       ts.URL + "/api/v1",
		ClientID:     "10000000000001",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/oauthlogin",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)

	db, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	recorder := metrics.NewNoopRecorder()
	launchHandler := NewLaunchHandler(db, client, recorder)
	oauthHandler := NewOAuthHandler(db, client, recorder)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.SetHTMLTemplate(templates.Load())

	r.GET("/oauthlogin", oauthHandler.OAuthLogin)
	launch := r.Group("/", middleware.RequireLaunchSession())
	launch.POST("/launch", launchHandler.Launch)

	// Helper endpoint: seeds session keys from query params.
	r.GET("/test-seed", func(c *gin.Context) {
		sess := sessions.Default(c)
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			require.NoError(t, err)
			sess.Set(models.SessionUserID, id)
		}
		if v := c.Query("course_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			require.NoError(t, err)
			sess.Set(models.SessionCourseID, id)
		}
		if v := c.Query("api_key"); v != "" {
			sess.Set(models.SessionAPIKey, v)
		}
		if v := c.Query("refresh_token"); v != "" {
			sess.Set(models.SessionRefreshToken, v)
		}
		if v := c.Query("state"); v != "" {
			sess.Set(models.SessionOAuthState, v)
		}
		require.NoError(t, sess.Save())
		c.Status(http.StatusNoContent)
	})

	// Helper endpoint: exposes session state for assertions.
	r.GET("/test-session", func(c *gin.Context) {
		sess := sessions.Default(c)
		c.JSON(http.StatusOK, gin.H{
			"api_key":       sess.Get(models.SessionAPIKey),
			"refresh_token": sess.Get(models.SessionRefreshToken),
			"expires_at":    sess.Get(models.SessionExpiresAt),
			"oauth_state":   sess.Get(models.SessionOAuthState),
		})
	})

	return &testEnv{router: r, store: db, platform: ts}
}

// seedSession primes a fresh session via /test-seed and returns its cookies.
func (env *testEnv) seedSession(t *testing.T, query string) []*http.Cookie {
	t.Helper()
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodGet,
		"/test-seed?"+query,
		nil,
	)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	return sessionCookies(w)
}

// readSession makes a GET /test-session request using the provided cookies
// and returns the decoded JSON body.
func (env *testEnv) readSession(t *testing.T, cookies []*http.Cookie) map[string]any {
	t.Helper()
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodGet,
		"/test-session",
		nil,
	)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	return data
}

// sessionCookies extracts Set-Cookie headers from a response recorder.
// A response that saved the session more than once carries several
// cookies with the same name; like a browser jar, the last one wins.
func sessionCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	resp := http.Response{Header: w.Header()}
	return mergeCookies(resp.Cookies())
}

// mergeCookies overlays later cookies over earlier ones by name, so a
// session rewritten mid-flow wins over the seeded one.
func mergeCookies(groups ...[]*http.Cookie) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, group := range groups {
		for _, c := range group {
			if _, seen := byName[c.Name]; !seen {
				order = append(order, c.Name)
			}
			byName[c.Name] = c
		}
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
