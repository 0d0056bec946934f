package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/referral"
)

type Config struct {
	// RPC settings
	RPCUrl string

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Redis settings (optional, recent-quote feed)
	RedisAddr string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Quote pipeline settings
	PoolCacheTTL        time.Duration
	PriorityFeeCacheTTL time.Duration
	ComputeUnitLimit    uint32

	// Jupiter aggregator settings
	JupiterBaseURL string
	JupiterAPIKey  string

	// Referral settings
	ReferralAddress string
	ReferralBps     int
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),

		// API
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Quote pipeline
		PoolCacheTTL:        getDurationEnv("POOL_CACHE_TTL", 30*time.Second),
		PriorityFeeCacheTTL: getDurationEnv("PRIORITY_FEE_CACHE_TTL", 3*time.Second),
		ComputeUnitLimit:    uint32(getIntEnv("COMPUTE_UNIT_LIMIT", 420_000)),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", "https://lite-api.jup.ag/swap/v1"),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// Referral
		ReferralAddress: getEnv("REFERRAL_ADDRESS", ""),
		ReferralBps:     getIntEnv("REFERRAL_BPS", referral.DefaultFeeBps),
	}
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL must not be empty")
	}
	if c.ReferralBps < 0 || c.ReferralBps > 10_000 {
		return fmt.Errorf("REFERRAL_BPS must be between 0 and 10000, got %d", c.ReferralBps)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
