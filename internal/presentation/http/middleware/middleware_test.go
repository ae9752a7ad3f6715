package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/config"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("user_role", role)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "cashier@example.com", entity.RoleCashier)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("user_id").(uuid.UUID).String()+" "+c.GetString("user_role"))
	})

	w := serve(r, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Token " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String()+" cashier", w.Body.String())
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	refresh, err := jwtManager.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.GET("/cashier", asUser(uuid.New(), entity.RoleCashier), RequireRole(entity.RoleAdmin, entity.RoleManager), ok)
	r.GET("/manager", asUser(uuid.New(), entity.RoleManager), RequireRole(entity.RoleAdmin, entity.RoleManager), ok)
	r.GET("/anonymous", RequireRole(entity.RoleAdmin), ok)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/cashier", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/manager", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/anonymous", "", nil).Code)
}

func TestRateLimiter_PerUserBuckets(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfigFor(2, time.Hour))
	alice, bob := uuid.New(), uuid.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.GET("/alice", asUser(alice, entity.RoleCashier), rl.Middleware(), ok)
	r.GET("/bob", asUser(bob, entity.RoleCashier), rl.Middleware(), ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/alice", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/alice", "", nil).Code)
	w := serve(r, http.MethodGet, "/alice", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/bob", "", nil).Code)
}

func TestRateLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("user:a")
	now = now.Add(rl.entryTTL + time.Second)
	rl.getLimiter("user:b")
	rl.cleanup()

	assert.NotContains(t, rl.limiters, "user:a")
	assert.Contains(t, rl.limiters, "user:b")
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
}

func (m *memoryIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[userID.String()+key], nil
}

func (m *memoryIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[ikey.UserID.String()+ikey.Key] = ikey
	return nil
}

func (m *memoryIdempotencyRepo) DeleteExpired(context.Context) error { return nil }

func TestIdempotency(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	status := http.StatusCreated

	r := gin.New()
	r.POST("/invoices", asUser(uuid.New(), entity.RoleCashier), Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})
	key := map[string]string{IdempotencyKeyHeader: "sale-1"}

	first := serve(r, http.MethodPost, "/invoices", `{"total":100}`, key)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := serve(r, http.MethodPost, "/invoices", `{"total":100}`, key)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)

	reused := serve(r, http.MethodPost, "/invoices", `{"total":999}`, key)
	assert.Equal(t, http.StatusUnprocessableEntity, reused.Code)
	assert.Equal(t, 1, calls)

	serve(r, http.MethodPost, "/invoices", `{"total":100}`, nil)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ServerErrorsAreRetried(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0

	r := gin.New()
	r.POST("/invoices", asUser(uuid.New(), entity.RoleCashier), Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db down"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	key := map[string]string{IdempotencyKeyHeader: "sale-2"}

	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodPost, "/invoices", `{}`, key).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/invoices", `{}`, key).Code)
	assert.Equal(t, 2, calls)
}

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://till.example"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{"X-Custom"},
	}

	t.Run("required headers are always present", func(t *testing.T) {
		got := corsConfig(cfg)
		assert.Equal(t, []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, RequestIDHeader}, got.AllowHeaders)
		assert.Equal(t, []string{"X-Custom", "Content-Disposition", RequestIDHeader, "X-Idempotency-Replayed"}, got.ExposeHeaders)
		assert.Equal(t, defaultCORSMethods, got.AllowMethods)
		assert.Equal(t, defaultPreflightMaxAge, got.MaxAge)
		assert.Equal(t, []string{"Accept"}, cfg.AllowedHeaders)
	})

	t.Run("preflight allows the idempotency header", func(t *testing.T) {
		r := gin.New()
		r.Use(CORSMiddleware(cfg))
		r.POST("/api/invoices", func(c *gin.Context) { c.Status(http.StatusCreated) })

		w := serve(r, http.MethodOptions, "/api/invoices", "", map[string]string{
			"Origin":                         "https://till.example",
			"Access-Control-Request-Method":  http.MethodPost,
			"Access-Control-Request-Headers": IdempotencyKeyHeader,
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://till.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(IdempotencyKeyHeader))
	})
}
