package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
)

func setupFeedTest(t *testing.T) *QuoteFeed {
	t.Helper()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   3, // separate DB for feed tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.Del(ctx, constants.RedisKeyRecentQuotes).Err())
	t.Cleanup(func() { _ = client.Close() })

	feed, err := NewQuoteFeed(client)
	require.NoError(t, err)
	return feed
}

func TestQuoteFeedRecordAndRecent(t *testing.T) {
	feed := setupFeedTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := feed.Record(ctx, QuoteRecord{
			Provider:    "orca_whirlpool",
			FromAsset:   "solana",
			ToAsset:     "solana_mint",
			FromValue:   fmt.Sprintf("%d", (i+1)*1000),
			OutputValue: fmt.Sprintf("%d", (i+1)*990),
			QuotedAt:    time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	records, err := feed.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// newest first
	assert.Equal(t, "3000", records[0].FromValue)
	assert.Equal(t, "1000", records[2].FromValue)
	assert.Equal(t, "orca_whirlpool", records[0].Provider)
}

func TestQuoteFeedTrimsToRetentionLimit(t *testing.T) {
	feed := setupFeedTest(t)
	ctx := context.Background()

	for i := 0; i < constants.MaxRecentQuotes+20; i++ {
		err := feed.Record(ctx, QuoteRecord{
			Provider:  "jupiter",
			FromValue: fmt.Sprintf("%d", i),
			QuotedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	records, err := feed.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, constants.MaxRecentQuotes)
}

func TestQuoteFeedLimitClamp(t *testing.T) {
	feed := setupFeedTest(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, feed.Record(ctx, QuoteRecord{Provider: "jupiter", QuotedAt: time.Now().UTC()}))
	}

	records, err := feed.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestNilFeedIsInert(t *testing.T) {
	var feed *QuoteFeed
	ctx := context.Background()

	assert.NoError(t, feed.Record(ctx, QuoteRecord{Provider: "jupiter"}))

	records, err := feed.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewQuoteFeedRequiresClient(t *testing.T) {
	_, err := NewQuoteFeed(nil)
	assert.Error(t, err)
}
