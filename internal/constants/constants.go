package constants

import "github.com/gagliardetto/solana-go"

// On-chain program addresses used by the quoting pipeline
var (
	// Orca Whirlpool concentrated-liquidity program
	WhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	// Default Whirlpools config account (mainnet)
	WhirlpoolsConfig = solana.MustPublicKeyFromBase58("2LecshUwdy9xi7meFgHtFJQNSKk4KdTrcpvaB56dP2NQ")

	TokenProgramID           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID          = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	ComputeBudgetProgramID   = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
	MemoProgramID            = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TySNcWxMyWCqXgDLGmfcHr")

	// Wrapped SOL mint; native SOL quotes are routed through this mint
	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// BasisPointsDenominator is the denominator for all bps-style rates
const BasisPointsDenominator = 10_000

// Redis keys
const (
	RedisKeyRecentQuotes = "quotes:recent"
)

// Limits
const (
	MaxRecentQuotes = 100
)
