package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tableguild/tableguild/config"
	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/middleware/jwt"
	"github.com/tableguild/tableguild/middleware/log"
	"github.com/tableguild/tableguild/utils/ratelimit"
)

type MiddlewareManager struct {
	tokenManager *jwt.TokenManager
	rateLimiter  ratelimit.Limiter
	logger       *log.Logger
	rateLimitCfg *config.RateLimitConfig
}

func NewMiddlewareManager(
	tokenManager *jwt.TokenManager,
	rateLimiter ratelimit.Limiter,
	logger *log.Logger,
	rateLimitCfg *config.RateLimitConfig,
) *MiddlewareManager {
	return &MiddlewareManager{
		tokenManager: tokenManager,
		rateLimiter:  rateLimiter,
		logger:       logger,
		rateLimitCfg: rateLimitCfg,
	}
}

// JWTAuth validates the bearer token and stores the member identity on the
// context. Websocket handshakes cannot set headers, so a token query
// parameter is accepted as a fallback.
func (m *MiddlewareManager) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.tokenManager.ParseToken(tokenString)
		if err != nil {
			m.logger.WarnContext(c.Request.Context(), "token validation failed",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)

			message := "invalid token"
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "token has expired"
			case errors.Is(err, jwt.ErrTokenNotYetValid):
				message = "token not yet valid"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set("member_id", claims.MemberID)
		c.Set("username", claims.UserName)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole gates a route group to members holding one of the given
// roles. Admins pass every gate.
func (m *MiddlewareManager) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == model.RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

// RateLimit enforces the per-client fixed window. Authenticated clients
// are keyed by member id, anonymous ones by IP.
func (m *MiddlewareManager) RateLimit() gin.HandlerFunc {
	limit := int(m.rateLimitCfg.RequestsPerWindow)
	window := time.Duration(m.rateLimitCfg.WindowSeconds) * time.Second

	return func(c *gin.Context) {
		var key string
		if memberID := c.GetString("member_id"); memberID != "" {
			key = fmt.Sprintf("member:%s", memberID)
		} else {
			key = fmt.Sprintf("ip:%s", c.ClientIP())
		}

		allowed, err := m.rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			m.logger.ErrorContext(c.Request.Context(), "rate limit check failed",
				zap.String("key", key),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
			c.Abort()
			return
		}

		if !allowed {
			remaining, _ := m.rateLimiter.GetRemaining(c.Request.Context(), key, limit, window)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
				"remaining":   remaining,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestLogger attaches a trace id to each request and logs its outcome.
func (m *MiddlewareManager) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		ctx := log.WithTraceID(c.Request.Context(), log.NewTraceID())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			m.logger.ErrorContext(ctx, "request failed", fields...)
		} else {
			m.logger.InfoContext(ctx, "request completed", fields...)
		}
	}
}
