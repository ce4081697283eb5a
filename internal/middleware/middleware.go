package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
	"github.com/redis/go-redis/v9"
)

// UserKey is the gin context key holding the authenticated *models.User.
const UserKey = "user"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		)
	}
}

// AuthMiddleware resolves the bearer token against the store. Role and
// active status come from the store, never from the token, so deactivation
// and role changes take effect on the next request.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("missing bearer token"))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireRoles rejects authenticated users whose role is outside the
// allowed set.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(UserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		user, ok := value.(*models.User)
		if !ok || !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("insufficient permissions"))
			return
		}

		c.Next()
	}
}

// RateCategory pairs a key prefix with a per-window request allowance.
type RateCategory struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	RateGeneral = RateCategory{Name: "general", Limit: 100, Window: time.Minute}
	RateAuth    = RateCategory{Name: "auth", Limit: 10, Window: time.Minute}
	RatePayment = RateCategory{Name: "payment", Limit: 20, Window: time.Minute}
	RateAdmin   = RateCategory{Name: "admin", Limit: 60, Window: time.Minute}
	RateUpload  = RateCategory{Name: "upload", Limit: 15, Window: time.Minute}
)

// RateLimit implements per-IP fixed-window limits backed by Redis. A Redis
// outage fails open: admission control is best-effort, not correctness.
func RateLimit(client *redis.Client, logger *slog.Logger, cat RateCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", cat.Name, c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, cat.Window)
		}

		if count > int64(cat.Limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse("too many requests, slow down"))
			return
		}

		c.Next()
	}
}

// AuthUser pulls the authenticated user out of the gin context.
func AuthUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
