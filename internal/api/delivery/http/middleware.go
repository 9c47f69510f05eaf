package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/ratelimit"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const tooManyRequestsMessage = "Too many requests. Please slow down."

// RateLimit limits requests per client address on /api/ paths.
func RateLimit(limiter *ratelimit.IPLimiter) echo.MiddlewareFunc {
	retryAfter := strconv.Itoa(int(limiter.RetryAfter() / time.Second))

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		Store:               limiter,
		IdentifierExtractor: clientIP,
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": tooManyRequestsMessage})
		},
	})
}

// clientIP is the first X-Forwarded-For entry, falling back to the connection address.
func clientIP(c echo.Context) (string, error) {
	if forwarded := c.Request().Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first, nil
		}
	}
	return c.RealIP(), nil
}

// RequestLogger logs one line per request with the request id attached.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := logger.WithRequestID(c.Request().Context(), v.RequestID)
			if v.Error != nil {
				log.ErrorContext(ctx, "HTTP request failed",
					logger.StringField("method", v.Method),
					logger.StringField("uri", v.URI),
					logger.IntField("status", v.Status),
					logger.Field("latency", v.Latency),
					logger.StringField("remote_ip", v.RemoteIP),
					logger.ErrorField(v.Error),
				)
				return nil
			}
			log.InfoContext(ctx, "HTTP request",
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.Field("latency", v.Latency),
				logger.StringField("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// RequestContext copies the request id into the request context for service logs.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), id)))
			}
			return next(c)
		}
	}
}
