package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/cache"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Registry    *swapper.Registry // Configured quote providers
	Feed        *cache.QuoteFeed  // Redis-backed recent quote feed (optional)
	ReferralBps int               // Fee bps applied when a request omits referral_bps
	DevMode     bool              // Enable detailed error responses in development
	Logger      *logrus.Logger    // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Providers lists the registered provider names
func (h *Handlers) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, ProvidersResponse{Providers: h.Registry.Names()})
}

// Quote prices a conversion through the provider named in the path
func (h *Handlers) Quote(c echo.Context) error {
	provider, err := h.Registry.Get(c.Param("provider"))
	if err != nil {
		return h.err(c, statusFor(err), err.Error(), nil)
	}

	// pre-seeded default survives the bind unless the body sets the
	// field, so an explicit referral_bps of zero still disables the fee
	req := swapper.QuoteRequest{ReferralBps: h.ReferralBps}
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	quote, err := provider.GetQuote(ctx, req)
	if err != nil {
		h.Logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"error":    err,
		}).Warn("quote failed")
		return h.err(c, statusFor(err), err.Error(), nil)
	}

	h.recordQuote(provider.Name(), quote)
	return c.JSON(http.StatusOK, quote)
}

// QuoteData turns a previously returned quote into a signable transaction
func (h *Handlers) QuoteData(c echo.Context) error {
	provider, err := h.Registry.Get(c.Param("provider"))
	if err != nil {
		return h.err(c, statusFor(err), err.Error(), nil)
	}

	var quote swapper.Quote
	if err := c.Bind(&quote); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	data, err := provider.GetQuoteData(ctx, quote)
	if err != nil {
		h.Logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"error":    err,
		}).Warn("quote data failed")
		return h.err(c, statusFor(err), err.Error(), nil)
	}
	return c.JSON(http.StatusOK, data)
}

// RecentQuotes returns the most recent observed quotes with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-100)
func (h *Handlers) RecentQuotes(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 0
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be a positive integer"})
		}
		limit = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Feed.Recent(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get quotes", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// recordQuote pushes the quote onto the feed, best effort
func (h *Handlers) recordQuote(provider string, quote *swapper.Quote) {
	if h.Feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := h.Feed.Record(ctx, cache.QuoteRecord{
		Provider:    provider,
		FromAsset:   quote.Quote.FromAsset,
		ToAsset:     quote.Quote.ToAsset,
		FromValue:   quote.Quote.FromValue,
		OutputValue: quote.OutputValue,
		QuotedAt:    time.Now().UTC(),
	})
	if err != nil {
		h.Logger.WithField("error", err).Debug("failed to record quote")
	}
}
