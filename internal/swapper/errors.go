package swapper

import "errors"

// Error taxonomy shared by all providers. Handlers map these to HTTP status
// codes with errors.Is, so providers must wrap (not replace) them.
var (
	// ErrInvalidAmount marks malformed or non-positive numeric input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnsupportedAsset marks an asset the provider cannot route.
	ErrUnsupportedAsset = errors.New("unsupported asset")
	// ErrNoLiquidityFound means no candidate pool has positive liquidity.
	ErrNoLiquidityFound = errors.New("no liquidity found")
	// ErrQuoteComputationFailed means the deterministic swap math rejected
	// the trade; the caller may request a fresh quote.
	ErrQuoteComputationFailed = errors.New("quote computation failed")
	// ErrInvalidRouteData means the Quote passed to phase two is malformed
	// or was produced by a different provider.
	ErrInvalidRouteData = errors.New("invalid route data")
	// ErrFeeOutOfRange means a referral fee exceeds the u64 range usable in
	// a transfer instruction.
	ErrFeeOutOfRange = errors.New("referral fee out of range")
	// ErrMissingFeePayer means no fee payer was available during assembly.
	ErrMissingFeePayer = errors.New("missing fee payer")
	// ErrProviderNotFound means the requested provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")
)
