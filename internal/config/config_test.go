package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/referral"
)

func TestLoadDefaults(t *testing.T) {
	// blank out anything the ambient environment may carry
	for _, key := range []string{"SOLANA_RPC_URL", "API_ADDR", "POOL_CACHE_TTL", "PRIORITY_FEE_CACHE_TTL", "COMPUTE_UNIT_LIMIT", "REFERRAL_BPS", "JUPITER_BASE_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCUrl)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, 30*time.Second, cfg.PoolCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.PriorityFeeCacheTTL)
	assert.Equal(t, uint32(420_000), cfg.ComputeUnitLimit)
	assert.Equal(t, referral.DefaultFeeBps, cfg.ReferralBps)
	assert.Equal(t, "https://lite-api.jup.ag/swap/v1", cfg.JupiterBaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "http://localhost:8899")
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("POOL_CACHE_TTL", "1m")
	t.Setenv("REFERRAL_BPS", "25")
	t.Setenv("DEV_MODE", "true")

	cfg := Load()
	assert.Equal(t, "http://localhost:8899", cfg.RPCUrl)
	assert.Equal(t, ":9090", cfg.APIAddr)
	assert.Equal(t, time.Minute, cfg.PoolCacheTTL)
	assert.Equal(t, 25, cfg.ReferralBps)
	assert.True(t, cfg.DevMode)
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("MAX_RETRIES", "lots")
	t.Setenv("POOL_CACHE_TTL", "soon")
	t.Setenv("DEV_MODE", "yep")

	cfg := Load()
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.PoolCacheTTL)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.RPCUrl = ""
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.ReferralBps = 10_001
	assert.Error(t, cfg.Validate())

	cfg.ReferralBps = -1
	assert.Error(t, cfg.Validate())
}
