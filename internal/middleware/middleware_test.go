package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// A fresh id is generated when the client sends none.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("no request id generated")
	}

	// A client-supplied id is echoed back.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	authService := services.NewAuthService(nil, []byte("secret"), time.Hour)

	r := gin.New()
	r.GET("/", AuthMiddleware(authService), func(c *gin.Context) { c.Status(http.StatusOK) })

	// No Authorization header.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d without a token, want 401", w.Code)
	}

	// Not a bearer token.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d for a non-bearer header, want 401", w.Code)
	}

	// Garbage bearer token fails signature parsing before any store lookup.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d for a malformed token, want 401", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }

	asRole := func(role string) *gin.Engine {
		r := gin.New()
		r.GET("/",
			func(c *gin.Context) { c.Set(UserKey, &models.User{Role: role}) },
			RequireRoles(models.RoleAdmin),
			handler,
		)
		return r
	}

	w := httptest.NewRecorder()
	asRole(models.RoleAdmin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	asRole(models.RoleCustomer).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("customer status = %d, want 403", w.Code)
	}

	// No user in context at all.
	r := gin.New()
	r.GET("/", RequireRoles(models.RoleAdmin), handler)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, nil, RateAuth), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < RateAuth.Limit*2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d with no redis client, want 200", i, w.Code)
		}
	}
}

func TestAuthUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := AuthUser(c); ok {
		t.Error("AuthUser should report false on an empty context")
	}

	want := &models.User{Role: models.RoleAgent}
	c.Set(UserKey, want)
	got, ok := AuthUser(c)
	if !ok || got != want {
		t.Error("AuthUser did not return the stored user")
	}
}
