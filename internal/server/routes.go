package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(quoteHeaders)

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)

	// Routes reading chain state share a per-IP limit
	var limited []echo.MiddlewareFunc
	if cfg.RateLimit > 0 {
		limited = append(limited, middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     cfg.RateBurst,
			ExpiresIn: 2 * time.Minute,
		})))
	}
	v1.GET("/pools/:mint/reserves", h.Reserves, limited...)
	v1.GET("/quote/buy", h.QuoteBuy, limited...)
	v1.GET("/quote/buy-exact-out", h.QuoteBuyExactOut, limited...)
	v1.GET("/quote/sell", h.QuoteSell, limited...)

	// Pure arithmetic, no upstream calls
	v1.GET("/slippage/max-in", h.MaxIn)
	v1.GET("/slippage/min-out", h.MinOut)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

// quoteHeaders marks every response as uncacheable JSON; quotes go stale with
// the next block
func quoteHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hdr := c.Response().Header()
		hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		hdr.Set("Cache-Control", "no-store")
		return next(c)
	}
}
