package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meropanditlama/booking-api/models"
	cache "github.com/meropanditlama/booking-api/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func whoAmI(c *fiber.Ctx) error {
	actor, ok := Identity(c)
	if !ok {
		return c.SendStatus(fiber.StatusTeapot)
	}
	return c.JSON(fiber.Map{"id": actor.UserID, "role": actor.Role, "name": actor.Name})
}

func TestProtected(t *testing.T) {
	app := fiber.New()
	app.Get("/me", Protected(testSecret), whoAmI)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", fiber.StatusUnauthorized},
		{"garbage token", "Bearer nope", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + func() string {
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "role": "customer"}).SignedString([]byte("other"))
			return tok
		}(), fiber.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, jwt.MapClaims{"id": 1, "role": "admin"}), fiber.StatusUnauthorized},
		{"missing id", "Bearer " + signToken(t, jwt.MapClaims{"role": "customer"}), fiber.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, jwt.MapClaims{"id": 7, "role": "provider", "name": "Ram"}), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"id": "9", "role": "customer", "name": "Sita"}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 9, body["id"])
	assert.Equal(t, "customer", body["role"])
	assert.Equal(t, "Sita", body["name"])
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Get("/provider", Protected(testSecret), RequireRole(models.RoleProvider), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/provider", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"id": 1, "role": "customer"}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/provider", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"id": 2, "role": "provider"}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", NewRateLimiter(2).Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(HeaderRequestID))
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]cache.CachedResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]cache.CachedResponse{}}
}

func (m *memoryStore) Load(_ context.Context, key string) (*cache.CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp, ok := m.entries[key]; ok {
		return &resp, nil
	}
	return nil, nil
}

func (m *memoryStore) Reserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	m.entries[key] = cache.CachedResponse{Pending: true}
	return true, nil
}

func (m *memoryStore) Save(_ context.Context, key string, resp cache.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = resp
	return nil
}

func (m *memoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func idempotentApp(store IdempotencyStore, status int) (*fiber.App, *int) {
	calls := 0
	app := fiber.New()
	app.Post("/bookings", Idempotency(store), func(c *fiber.Ctx) error {
		calls++
		return c.Status(status).JSON(fiber.Map{"call": calls})
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, key, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	resp, err := app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestIdempotency_ReplaysSameRequest(t *testing.T) {
	app, calls := idempotentApp(newMemoryStore(), fiber.StatusCreated)

	first, body1 := post(t, app, "k1", `{"provider_id":1}`)
	second, body2 := post(t, app, "k1", `{"provider_id":1}`)

	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, body1, body2)
	assert.Equal(t, "true", second.Header.Get(HeaderReplayed))
	assert.Contains(t, second.Header.Get("Content-Type"), "application/json")
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_DifferentBodyOrKeyRunsAgain(t *testing.T) {
	app, calls := idempotentApp(newMemoryStore(), fiber.StatusCreated)

	post(t, app, "k1", `{"provider_id":1}`)
	post(t, app, "k1", `{"provider_id":2}`)
	post(t, app, "k2", `{"provider_id":1}`)
	post(t, app, "", `{"provider_id":1}`)
	post(t, app, "", `{"provider_id":1}`)

	assert.Equal(t, 5, *calls)
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	app, calls := idempotentApp(newMemoryStore(), fiber.StatusInternalServerError)

	post(t, app, "k1", `{}`)
	resp, _ := post(t, app, "k1", `{}`)

	assert.Empty(t, resp.Header.Get(HeaderReplayed))
	assert.Equal(t, 2, *calls)
}

type stuckStore struct{ *memoryStore }

func (stuckStore) Release(context.Context, string) error {
	return errors.New("redis unavailable")
}

func TestIdempotency_LogsReleaseFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	app, calls := idempotentApp(stuckStore{newMemoryStore()}, fiber.StatusInternalServerError)
	resp, _ := post(t, app, "k1", `{}`)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, logs.FilterMessage("idempotency release failed").Len())
}

type pendingStore struct{ *memoryStore }

func (pendingStore) Load(context.Context, string) (*cache.CachedResponse, error) {
	return &cache.CachedResponse{Pending: true}, nil
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	app, calls := idempotentApp(pendingStore{newMemoryStore()}, fiber.StatusCreated)

	resp, _ := post(t, app, "k1", `{}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Zero(t, *calls)
}

func TestIdempotency_NilStorePassesThrough(t *testing.T) {
	app, calls := idempotentApp(nil, fiber.StatusCreated)
	post(t, app, "k1", `{}`)
	post(t, app, "k1", `{}`)
	assert.Equal(t, 2, *calls)
}

func TestGenerateKey(t *testing.T) {
	a := generateKey("1", "k", "POST", "/x", []byte("b"))
	assert.Equal(t, a, generateKey("1", "k", "POST", "/x", []byte("b")))
	assert.NotEqual(t, a, generateKey("2", "k", "POST", "/x", []byte("b")))
	assert.NotEqual(t, generateKey("1", "2k", "POST", "/x", nil), generateKey("12", "k", "POST", "/x", nil))
}
