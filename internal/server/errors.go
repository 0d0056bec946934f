package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// statusFor maps the shared provider error taxonomy to HTTP status
// codes. Unknown errors surface as 502 so upstream RPC trouble is
// distinguishable from our own failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, swapper.ErrInvalidAmount),
		errors.Is(err, swapper.ErrUnsupportedAsset),
		errors.Is(err, swapper.ErrInvalidRouteData),
		errors.Is(err, swapper.ErrMissingFeePayer):
		return http.StatusBadRequest
	case errors.Is(err, swapper.ErrProviderNotFound),
		errors.Is(err, swapper.ErrNoLiquidityFound):
		return http.StatusNotFound
	case errors.Is(err, swapper.ErrQuoteComputationFailed),
		errors.Is(err, swapper.ErrFeeOutOfRange):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		// Handle Echo HTTP errors (like 404, 400, etc.)
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		// Handle all other errors as internal server error
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}
