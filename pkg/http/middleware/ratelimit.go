package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// RateLimiter rejects requests above a global token-bucket rate.
type RateLimiter struct {
	limiter *rate.Limiter
	l       *logger.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second with burst.
func NewRateLimiter(rps float64, burst int, l *logger.Logger) *RateLimiter {
	if l == nil {
		l = logger.Nop()
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst), l: l}
}

// Middleware returns the echo middleware.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.limiter.Allow() {
				req := c.Request()
				rl.l.Warn("rate limit exceeded",
					logger.String("method", req.Method),
					logger.String("path", req.URL.Path),
					logger.String("remote_addr", req.RemoteAddr),
				)
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(c)
		}
	}
}
