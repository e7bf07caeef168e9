package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/gofiber/fiber/v2"
	cache "github.com/meropanditlama/booking-api/redis"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// IdempotencyStore persists responses by request fingerprint.
type IdempotencyStore interface {
	Load(ctx context.Context, key string) (*cache.CachedResponse, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp cache.CachedResponse) error
	Release(ctx context.Context, key string) error
}

// generateKey creates a unique key from user ID, idempotency key, and request fingerprint
func generateKey(userID, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(idempotencyKey))
	h.Write([]byte{0})
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key and body. A nil store disables it. Server errors are
// not stored so the client can retry them.
func Idempotency(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil || c.Method() != fiber.MethodPost {
			return c.Next()
		}
		idempotencyKey := c.Get(HeaderIdempotencyKey)
		if idempotencyKey == "" {
			return c.Next()
		}

		owner := c.IP()
		if actor, ok := Identity(c); ok {
			owner = strconv.FormatUint(uint64(actor.UserID), 10)
		}
		key := generateKey(owner, idempotencyKey, c.Method(), c.Path(), c.Body())
		ctx := c.UserContext()

		cached, err := store.Load(ctx, key)
		if err != nil {
			zap.L().Warn("idempotency lookup failed", zap.Error(err))
			return c.Next()
		}
		if cached != nil {
			if cached.Pending {
				return inFlight(c)
			}
			return replay(c, cached)
		}

		reserved, err := store.Reserve(ctx, key)
		if err != nil {
			zap.L().Warn("idempotency reserve failed", zap.Error(err))
			return c.Next()
		}
		if !reserved {
			return inFlight(c)
		}

		if err := c.Next(); err != nil {
			release(ctx, store, key)
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release(ctx, store, key)
			return nil
		}
		resp := cache.CachedResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, key, resp); err != nil {
			zap.L().Warn("idempotency save failed", zap.Error(err))
		}
		return nil
	}
}

func release(ctx context.Context, store IdempotencyStore, key string) {
	if err := store.Release(ctx, key); err != nil {
		zap.L().Warn("idempotency release failed", zap.Error(err))
	}
}

func replay(c *fiber.Ctx, cached *cache.CachedResponse) error {
	c.Set(HeaderReplayed, "true")
	if cached.ContentType != "" {
		c.Set(fiber.HeaderContentType, cached.ContentType)
	}
	return c.Status(cached.Status).Send(cached.Body)
}

func inFlight(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
		Message: "A request with this Idempotency-Key is already being processed",
		Kind:    string(utils.KindConflict),
	})
}
