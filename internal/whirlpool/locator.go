package whirlpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// DefaultPoolCacheTTL bounds how stale a cached pool may be before it
// is revalidated against the chain.
const DefaultPoolCacheTTL = 30 * time.Second

type cachedPool struct {
	pool      *Pool
	fetchedAt time.Time
}

// PoolLocator discovers the deepest whirlpool for a mint pair and
// caches the result per canonical pair.
type PoolLocator struct {
	accessor ChainAccessor
	ttl      time.Duration
	logger   *logrus.Logger

	mu    sync.Mutex
	cache map[string]cachedPool
	now   func() time.Time
}

func NewPoolLocator(accessor ChainAccessor, ttl time.Duration, logger *logrus.Logger) *PoolLocator {
	if ttl <= 0 {
		ttl = DefaultPoolCacheTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &PoolLocator{
		accessor: accessor,
		ttl:      ttl,
		logger:   logger,
		cache:    make(map[string]cachedPool),
		now:      time.Now,
	}
}

// BestPool returns the highest-liquidity whirlpool for the two mints,
// in either order. Fresh cache hits are served without touching the
// chain; stale hits are revalidated and evicted when the pool has
// drained.
func (l *PoolLocator) BestPool(ctx context.Context, mintX, mintY solana.PublicKey) (*Pool, error) {
	mintA, mintB := OrderMints(mintX, mintY)
	key := mintA.String() + ":" + mintB.String()

	l.mu.Lock()
	entry, ok := l.cache[key]
	l.mu.Unlock()

	if ok {
		if l.now().Sub(entry.fetchedAt) < l.ttl {
			return entry.pool, nil
		}

		refreshed, err := l.revalidate(ctx, entry.pool.Address)
		if err != nil {
			return nil, err
		}
		if refreshed != nil {
			l.store(key, refreshed)
			return refreshed, nil
		}

		// pool drained or closed since it was cached
		l.logger.WithField("pool", entry.pool.Address.String()).
			Info("cached pool no longer viable, rediscovering")
		l.mu.Lock()
		delete(l.cache, key)
		l.mu.Unlock()
	}

	pool, err := l.discover(ctx, mintA, mintB)
	if err != nil {
		return nil, err
	}
	l.store(key, pool)
	return pool, nil
}

// PoolByAddress returns a specific pool, serving it from the cache
// when a fresh entry matches the address.
func (l *PoolLocator) PoolByAddress(ctx context.Context, address solana.PublicKey) (*Pool, error) {
	l.mu.Lock()
	for _, entry := range l.cache {
		if entry.pool.Address == address && l.now().Sub(entry.fetchedAt) < l.ttl {
			l.mu.Unlock()
			return entry.pool, nil
		}
	}
	l.mu.Unlock()

	account, err := l.accessor.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool %s: %w", address, err)
	}
	if account == nil {
		return nil, fmt.Errorf("pool %s does not exist: %w", address, swapper.ErrInvalidRouteData)
	}

	pool, err := DecodePool(address, account.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pool %s: %w", address, err)
	}

	// never cache a drained pool; BestPool serves fresh entries without
	// rechecking liquidity
	if pool.Liquidity.Sign() > 0 {
		mintA, mintB := OrderMints(pool.TokenMintA, pool.TokenMintB)
		l.store(mintA.String()+":"+mintB.String(), pool)
	}
	return pool, nil
}

func (l *PoolLocator) store(key string, pool *Pool) {
	l.mu.Lock()
	l.cache[key] = cachedPool{pool: pool, fetchedAt: l.now()}
	l.mu.Unlock()
}

// revalidate refetches a known pool address. Returns nil when the
// account is gone or has zero liquidity.
func (l *PoolLocator) revalidate(ctx context.Context, address solana.PublicKey) (*Pool, error) {
	account, err := l.accessor.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to revalidate pool %s: %w", address, err)
	}
	if account == nil {
		return nil, nil
	}

	pool, err := DecodePool(address, account.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pool %s: %w", address, err)
	}
	if pool.Liquidity.Sign() == 0 {
		return nil, nil
	}
	return pool, nil
}

// discover derives one candidate pool PDA per supported tick spacing,
// fetches them in a single batch and picks the deepest one.
func (l *PoolLocator) discover(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, error) {
	candidates := make([]solana.PublicKey, 0, len(SupportedTickSpacings))
	for _, spacing := range SupportedTickSpacings {
		addr, err := DerivePoolAddress(mintA, mintB, spacing)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, addr)
	}

	accounts, err := l.accessor.GetMultipleAccounts(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool candidates: %w", err)
	}

	var best *Pool
	for i, account := range accounts {
		if account == nil {
			continue
		}
		pool, err := DecodePool(candidates[i], account.Data)
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"pool":  candidates[i].String(),
				"error": err,
			}).Warn("skipping undecodable pool candidate")
			continue
		}
		if pool.Liquidity.Sign() == 0 {
			continue
		}
		if best == nil || pool.Liquidity.Cmp(best.Liquidity) > 0 {
			best = pool
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no whirlpool for %s/%s: %w", mintA, mintB, swapper.ErrNoLiquidityFound)
	}

	l.logger.WithFields(logrus.Fields{
		"pool":         best.Address.String(),
		"tick_spacing": best.TickSpacing,
		"liquidity":    best.Liquidity.String(),
	}).Debug("selected best pool")

	return best, nil
}
