package whirlpool

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/rpc"
)

// ChainAccessor is the read-only chain surface the quote pipeline needs.
// *rpc.Client satisfies it; tests substitute in-memory fakes.
type ChainAccessor interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.Account, error)
	GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*rpc.Account, error)
	GetLatestBlockhash(ctx context.Context) (*rpc.BlockRef, error)
	GetRecentPrioritizationFees(ctx context.Context) ([]uint64, error)
	GetEpoch(ctx context.Context) (uint64, error)
}
