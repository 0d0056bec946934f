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

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
		}))
	}

	// Provider directory
	e.GET("/", h.Providers)

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)              // Health check endpoint
	v1.GET("/quotes/recent", h.RecentQuotes) // Recently observed quotes

	// Quote endpoints with rate limiting; each quote fans out RPC calls
	quoteGroup := e.Group("/:provider")
	quoteGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(20),  // 20 requests per second per client
		Burst:     40,              // Allow short bursts
		ExpiresIn: 2 * time.Minute, // Rate limit window
	})))
	quoteGroup.POST("/quote", h.Quote)
	quoteGroup.POST("/quote_data", h.QuoteData)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
