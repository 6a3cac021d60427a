package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
	"github.com/sudharshini/backend/internal/infrastructure/config"
	"github.com/sudharshini/backend/internal/interfaces/http/dto"
	"github.com/sudharshini/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "/api", r.prefix)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithPrefix("/internal"))
	assert.Equal(t, "/internal", r.prefix)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("items", "/items")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	group.GET("", ok).POST("", ok).PUT("/:id", ok).PATCH("/:id", ok).DELETE("/:id", ok)

	assert.Equal(t, "items", group.Name())
	assert.Equal(t, "/items", group.Prefix())

	NewRouter(engine).Register(group).Setup()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/items"},
		{http.MethodPost, "/api/items"},
		{http.MethodPut, "/api/items/1"},
		{http.MethodPatch, "/api/items/1"},
		{http.MethodDelete, "/api/items/1"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, tc.method, w.Body.String())
	}
}

func TestDomainGroupMiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	var trail []string

	parent := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
		trail = append(trail, "parent")
		c.Next()
	})
	parent.GET("/self", func(c *gin.Context) { c.Status(http.StatusOK) })
	child := parent.Group("child", "/child").Use(func(c *gin.Context) {
		trail = append(trail, "child")
		c.Next()
	})
	child.GET("/leaf", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(parent).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/parent/child/leaf", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent", "child"}, trail)

	trail = nil
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/parent/self", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent"}, trail)
}

type jwtValidator struct {
	svc *auth.JWTService
}

func (v jwtValidator) ValidateAccessToken(_ context.Context, token string) (*auth.Claims, error) {
	return v.svc.ValidateAccessToken(token)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "router-test",
		MaxRefreshCount:        3,
	})
}

func bearer(t *testing.T, svc *auth.JWTService, role identity.Role) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   7,
		Username: "meena",
		Email:    "meena@example.com",
		Role:     string(role),
	})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

// newAPI registers the real route table. Only the system handler is live;
// guarded routes are expected to reject before reaching a handler.
func newAPI(t *testing.T, cfg config.HTTPConfig) (*Engine, *auth.JWTService) {
	t.Helper()
	svc := newJWT()
	e := NewEngine(EngineConfig{HTTP: cfg, ServiceName: "sudharshini-test"})
	t.Cleanup(e.Close)

	h := Handlers{System: handler.NewSystemHandler("sudharshini", "test", nil)}
	NewRouter(e.Engine).Register(Routes(h, NewGuards(jwtValidator{svc}, e.AuthRateLimit(), nil))...).Setup()
	return e, svc
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestRoutesHealth(t *testing.T) {
	e, _ := newAPI(t, config.HTTPConfig{})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutesRequireToken(t *testing.T) {
	e, _ := newAPI(t, config.HTTPConfig{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodGet, "/api/auth/admin/users"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/1"},
		{http.MethodGet, "/api/delivery/available-orders"},
		{http.MethodPost, "/api/stock/in"},
		{http.MethodGet, "/api/cart"},
		{http.MethodGet, "/api/reports/summary"},
		{http.MethodGet, "/api/suppliers"},
		{http.MethodPost, "/api/reviews/product/1"},
	} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}
}

func TestRoutesRoleGating(t *testing.T) {
	e, svc := newAPI(t, config.HTTPConfig{})

	for _, tc := range []struct {
		method, path string
		role         identity.Role
	}{
		{http.MethodGet, "/api/auth/admin/users", identity.RoleCustomer},
		{http.MethodGet, "/api/orders/all", identity.RoleDeliveryMan},
		{http.MethodPatch, "/api/orders/1/status", identity.RoleCustomer},
		{http.MethodPost, "/api/orders", identity.RoleAdmin},
		{http.MethodGet, "/api/delivery/my-orders", identity.RoleCustomer},
		{http.MethodPost, "/api/products", identity.RoleDeliveryMan},
		{http.MethodPost, "/api/stock/out", identity.RoleCustomer},
		{http.MethodGet, "/api/cart", identity.RoleAdmin},
		{http.MethodGet, "/api/reports/summary", identity.RoleCustomer},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", bearer(t, svc, tc.role))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
	}
}

func TestRoutesAuthRateLimit(t *testing.T) {
	e, _ := newAPI(t, config.HTTPConfig{
		AuthRateLimitEnabled:  true,
		AuthRateLimitRequests: 1,
		AuthRateLimitWindow:   time.Minute,
	})

	// The first request passes the limiter and fails on the nil handler
	// recovery path; only the status of the second one matters.
	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/auth/customer/login", nil))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/customer/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, errorCode(t, w))
}
