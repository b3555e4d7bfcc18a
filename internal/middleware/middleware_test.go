package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shaygp/boxd/internal/auth"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := auth.NewService([]byte("test_jwt_secret_key"))
	token, _, err := svc.IssueToken(&models.User{ID: "u1", Username: "oscar"}, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/private", AuthMiddleware(svc), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	router.GET("/public", OptionalAuthMiddleware(svc), func(c *gin.Context) {
		c.String(http.StatusOK, "viewer="+c.GetString("user_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "viewer=", w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := serve(router, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-42", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestStoreTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(StoreTimeoutMiddleware(2 * time.Second))
	router.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.Initialize()
	m.HTTPRequestsTotal.Reset()

	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, httptest.NewRequest(http.MethodGet, "/users/a", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/users/b", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/users/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
