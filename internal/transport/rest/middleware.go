package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/auth"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/log"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/ratelimit"
)

const identityContextKey = "identity"

// RequestLogger logs each request and records HTTP metrics. A request ID is
// generated and propagated through the context for downstream log lines.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := log.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			duration := time.Since(start)
			metrics.HTTPRequestsTotal.WithLabelValues(
				c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(
				c.Request().Method, c.Path()).Observe(duration.Seconds())

			logger.Info("HTTP request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("request_id", requestID))
			return nil
		}
	}
}

// Authenticate validates the bearer token and stores the caller identity.
func Authenticate(validator auth.Validator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.ExtractTokenFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    domain.ErrCodeUnauthorized,
					Message: "missing bearer token",
				})
			}

			identity, err := validator.Validate(c.Request().Context(), token)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    domain.ErrCodeUnauthorized,
					Message: "invalid token",
				})
			}

			c.Set(identityContextKey, identity)
			ctx := log.WithUserID(c.Request().Context(), identity.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAdmin rejects non-admin callers. Must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := callerIdentity(c)
			if !ok || !identity.IsAdmin() {
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Code:    domain.ErrCodeUnauthorized,
					Message: "admin access required",
				})
			}
			return next(c)
		}
	}
}

// RateLimit throttles requests per caller using the sliding window limiter.
// Anonymous callers are keyed by remote address.
func RateLimit(limiter *ratelimit.RedisLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			key := c.RealIP()
			if identity, ok := callerIdentity(c); ok {
				key = identity.UserID
			}

			allowed, err := limiter.Allow(c.Request().Context(), "http:"+key)
			if err == nil && !allowed {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{
					Code:    "RATE_LIMITED",
					Message: "too many requests",
				})
			}
			return next(c)
		}
	}
}

func callerIdentity(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(auth.Identity)
	return identity, ok
}
