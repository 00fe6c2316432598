package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupMetricsAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", MetricsAuthMiddleware(token), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func getMetrics(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMetricsAuth_EmptyToken_LeavesEndpointOpen(t *testing.T) {
	r := setupMetricsAuthRouter("")

	w := getMetrics(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsAuth_MissingHeader_Returns401(t *testing.T) {
	r := setupMetricsAuthRouter("secret-token")

	w := getMetrics(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestMetricsAuth_WrongToken_Returns401(t *testing.T) {
	r := setupMetricsAuthRouter("secret-token")

	w := getMetrics(r, "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsAuth_CorrectToken_Passes(t *testing.T) {
	r := setupMetricsAuthRouter("secret-token")

	w := getMetrics(r, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_MemoryStore_LimitsRequests(t *testing.T) {
	limiter, err := NewMemoryRateLimiter(2)
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(templates.Load())
	r.GET("/limited", limiter, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/limited", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}
