package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
)

// QuoteRecord is one observed quote, kept for the recent-quotes feed.
type QuoteRecord struct {
	Provider    string    `json:"provider"`
	FromAsset   string    `json:"from_asset"`
	ToAsset     string    `json:"to_asset"`
	FromValue   string    `json:"from_value"`
	OutputValue string    `json:"output_value"`
	QuotedAt    time.Time `json:"quoted_at"`
}

// QuoteFeed keeps a bounded list of recent quotes in redis. A nil feed
// is valid and drops everything, so the pipeline works without redis.
type QuoteFeed struct {
	client redis.Cmdable
}

func NewQuoteFeed(client redis.Cmdable) (*QuoteFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &QuoteFeed{client: client}, nil
}

// Record pushes a quote onto the feed and trims it to the retention
// limit.
func (f *QuoteFeed) Record(ctx context.Context, rec QuoteRecord) error {
	if f == nil {
		return nil
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal quote record: %w", err)
	}

	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentQuotes, b)
	pipe.LTrim(ctx, constants.RedisKeyRecentQuotes, 0, constants.MaxRecentQuotes-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record quote: %w", err)
	}
	return nil
}

// Recent returns up to limit quote records, newest first.
func (f *QuoteFeed) Recent(ctx context.Context, limit int) ([]QuoteRecord, error) {
	if f == nil {
		return []QuoteRecord{}, nil
	}
	if limit <= 0 || limit > constants.MaxRecentQuotes {
		limit = constants.MaxRecentQuotes
	}

	vals, err := f.client.LRange(ctx, constants.RedisKeyRecentQuotes, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent quotes: %w", err)
	}

	out := make([]QuoteRecord, 0, len(vals))
	for _, v := range vals {
		var rec QuoteRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
