package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	initializers.Env.JWTSecret = "middleware-secret"

	r := gin.New()
	r.GET("/me", RequireAuth(), func(ctx *gin.Context) {
		claims, _ := CurrentUser(ctx)
		ctx.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalAuth(), func(ctx *gin.Context) {
		_, ok := CurrentUser(ctx)
		ctx.JSON(http.StatusOK, gin.H{"signedIn": ok})
	})
	return r
}

func get(r *gin.Engine, path string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()
	token, err := utils.GenerateJWT(1, "a@example.com", models.RoleCustomer, "middleware-secret")
	require.NoError(t, err)

	w := get(r, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())

	w = get(r, "/me", bearer("garbage"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())

	w = get(r, "/me", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@example.com"}`, w.Body.String())

	w = get(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()
	customer, err := utils.GenerateJWT(1, "a@example.com", models.RoleCustomer, "middleware-secret")
	require.NoError(t, err)
	admin, err := utils.GenerateJWT(2, "b@example.com", models.RoleAdmin, "middleware-secret")
	require.NoError(t, err)

	w := get(r, "/admin", bearer(customer))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())

	w = get(r, "/admin", bearer(admin))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter()
	token, err := utils.GenerateJWT(1, "a@example.com", models.RoleCustomer, "middleware-secret")
	require.NoError(t, err)

	assert.JSONEq(t, `{"signedIn":false}`, get(r, "/maybe", nil).Body.String())
	assert.JSONEq(t, `{"signedIn":false}`, get(r, "/maybe", bearer("garbage")).Body.String())
	assert.JSONEq(t, `{"signedIn":true}`, get(r, "/maybe", bearer(token)).Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)

	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1"))
	assert.Equal(t, http.StatusOK, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusOK, post("10.0.0.2"))
}

func TestRateLimiterIgnoresForgedForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)

	r := gin.New()
	require.NoError(t, TrustProxies(r, nil))
	r.POST("/email/verify-code", limiter.Middleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	limited := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/email/verify-code", nil)
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 48, limited)
}

func TestRateLimiterBehindTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(rate.Every(time.Hour), 1, time.Minute)

	r := gin.New()
	require.NoError(t, TrustProxies(r, []string{"10.0.0.1"}))
	r.POST("/login", limiter.Middleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	post := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote + ":40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, post("10.0.0.1", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1", "203.0.113.1"))

	// Headers from an untrusted peer are ignored
	assert.Equal(t, http.StatusOK, post("198.51.100.9", "203.0.113.3"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.9", "203.0.113.4"))
}
