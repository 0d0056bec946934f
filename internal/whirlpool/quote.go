package whirlpool

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// tickArrayWindow is how many tick arrays past the current one are
// fetched for a quote, matching the three arrays a swap instruction
// can cross.
const tickArrayWindow = 3

// SwapQuote is the result of simulating an exact-input swap against
// the pool's current state.
type SwapQuote struct {
	Pool       *Pool
	AToB       bool
	InputMint  MintInfo
	OutputMint MintInfo

	// AmountIn is the gross input handed to the pool, before its
	// transfer fee if the input mint has one.
	AmountIn uint64
	// EstimatedAmountOut is the expected output after any output-side
	// transfer fee.
	EstimatedAmountOut uint64
	// MinAmountOut applies the slippage floor to EstimatedAmountOut.
	MinAmountOut uint64

	SqrtPriceLimit *big.Int
}

// QuoteEngine simulates exact-input swaps off-chain from pool and tick
// array state.
type QuoteEngine struct {
	accessor ChainAccessor
	resolver *TransferFeeResolver
	logger   *logrus.Logger
}

func NewQuoteEngine(accessor ChainAccessor, resolver *TransferFeeResolver, logger *logrus.Logger) *QuoteEngine {
	if logger == nil {
		logger = logrus.New()
	}
	return &QuoteEngine{accessor: accessor, resolver: resolver, logger: logger}
}

// ComputeExactIn quotes swapping amountIn of the input mint against
// the pool. The caller resolves the input mint and epoch once and
// passes them in. Transfer fees of token-2022 mints are applied on
// both sides and the slippage floor is taken on the fee-adjusted
// output.
func (e *QuoteEngine) ComputeExactIn(ctx context.Context, pool *Pool, input *MintInfo, epoch uint64, amountIn uint64, slippageBps uint16) (*SwapQuote, error) {
	if amountIn == 0 {
		return nil, fmt.Errorf("zero input amount: %w", swapper.ErrInvalidAmount)
	}

	var aToB bool
	var outputMint solana.PublicKey
	switch input.Mint {
	case pool.TokenMintA:
		aToB = true
		outputMint = pool.TokenMintB
	case pool.TokenMintB:
		aToB = false
		outputMint = pool.TokenMintA
	default:
		return nil, fmt.Errorf("mint %s not in pool %s: %w", input.Mint, pool.Address, swapper.ErrUnsupportedAsset)
	}

	var outInfo *MintInfo
	var tickArrays []*TickArray
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outInfo, err = e.resolver.Resolve(gctx, outputMint, epoch)
		return err
	})
	g.Go(func() error {
		var err error
		tickArrays, err = e.fetchTickArrays(gctx, pool, aToB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// fee on the way into the pool
	swapInput := amountIn - input.TransferFee.Apply(amountIn)
	if swapInput == 0 {
		return nil, fmt.Errorf("input consumed by transfer fee: %w", swapper.ErrInvalidAmount)
	}

	rawOut, err := e.walk(pool, tickArrays, swapInput, aToB)
	if err != nil {
		return nil, err
	}

	// fee on the way out of the pool
	amountOut := rawOut - outInfo.TransferFee.Apply(rawOut)

	minOut := new(big.Int).SetUint64(amountOut)
	minOut.Mul(minOut, big.NewInt(constants.BasisPointsDenominator-int64(slippageBps)))
	minOut.Quo(minOut, big.NewInt(constants.BasisPointsDenominator))

	limit := minSqrtPrice
	if !aToB {
		limit = maxSqrtPrice
	}

	return &SwapQuote{
		Pool:               pool,
		AToB:               aToB,
		InputMint:          *input,
		OutputMint:         *outInfo,
		AmountIn:           amountIn,
		EstimatedAmountOut: amountOut,
		MinAmountOut:       minOut.Uint64(),
		SqrtPriceLimit:     new(big.Int).Set(limit),
	}, nil
}

func (e *QuoteEngine) fetchTickArrays(ctx context.Context, pool *Pool, aToB bool) ([]*TickArray, error) {
	addrs, err := TickArrayAddresses(pool.Address, pool.TickCurrentIndex, pool.TickSpacing, aToB, tickArrayWindow)
	if err != nil {
		return nil, err
	}

	accounts, err := e.accessor.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tick arrays: %w", err)
	}

	arrays := make([]*TickArray, 0, len(accounts))
	for i, account := range accounts {
		if account == nil {
			continue // uninitialized arrays hold no liquidity transitions
		}
		ta, err := DecodeTickArray(account.Data)
		if err != nil {
			return nil, fmt.Errorf("tick array %s: %w", addrs[i], err)
		}
		arrays = append(arrays, ta)
	}
	return arrays, nil
}

type tickCrossing struct {
	index        int32
	liquidityNet *big.Int
}

// walk consumes swapInput against the pool price curve, crossing
// initialized ticks as liquidity ranges are exhausted. Returns the raw
// pool output.
func (e *QuoteEngine) walk(pool *Pool, arrays []*TickArray, swapInput uint64, aToB bool) (uint64, error) {
	crossings := collectCrossings(pool, arrays, aToB)

	remaining := new(big.Int).SetUint64(swapInput)
	amountOut := new(big.Int)
	sqrtPrice := new(big.Int).Set(pool.SqrtPrice)
	liquidity := new(big.Int).Set(pool.Liquidity)

	bound := minSqrtPrice
	if !aToB {
		bound = maxSqrtPrice
	}

	next := 0
	for remaining.Sign() > 0 {
		target := bound
		var crossing *tickCrossing
		if next < len(crossings) {
			crossing = &crossings[next]
			tp, err := TickIndexToSqrtPrice(crossing.index)
			if err != nil {
				return 0, fmt.Errorf("quote walk: %w", err)
			}
			target = tp
		}

		if liquidity.Sign() > 0 {
			step := computeSwapStep(sqrtPrice, target, liquidity, remaining, pool.FeeRate, aToB)
			consumed := new(big.Int).Add(step.amountIn, step.feeAmount)
			remaining.Sub(remaining, consumed)
			amountOut.Add(amountOut, step.amountOut)
			sqrtPrice = step.nextSqrtPrice
		} else {
			// empty range, jump straight to the next crossing
			sqrtPrice = new(big.Int).Set(target)
		}

		if remaining.Sign() <= 0 {
			break
		}
		if crossing == nil || sqrtPrice.Cmp(target) != 0 {
			return 0, fmt.Errorf("input exceeds available liquidity: %w", swapper.ErrQuoteComputationFailed)
		}

		// cross the tick into the next liquidity range
		if aToB {
			liquidity.Sub(liquidity, crossing.liquidityNet)
		} else {
			liquidity.Add(liquidity, crossing.liquidityNet)
		}
		if liquidity.Sign() < 0 {
			return 0, fmt.Errorf("negative liquidity after crossing tick %d: %w",
				crossing.index, swapper.ErrQuoteComputationFailed)
		}
		next++
	}

	if !amountOut.IsUint64() {
		return 0, fmt.Errorf("output overflows u64: %w", swapper.ErrQuoteComputationFailed)
	}
	return amountOut.Uint64(), nil
}

// collectCrossings gathers the initialized ticks ahead of the current
// price in the swap direction, nearest first.
func collectCrossings(pool *Pool, arrays []*TickArray, aToB bool) []tickCrossing {
	var crossings []tickCrossing
	for _, ta := range arrays {
		for i := 0; i < TickArraySize; i++ {
			tick := ta.Ticks[i]
			if !tick.Initialized {
				continue
			}
			idx := ta.StartTickIndex + int32(i)*int32(pool.TickSpacing)
			if aToB {
				if idx <= pool.TickCurrentIndex {
					crossings = append(crossings, tickCrossing{index: idx, liquidityNet: tick.LiquidityNet})
				}
			} else {
				if idx > pool.TickCurrentIndex {
					crossings = append(crossings, tickCrossing{index: idx, liquidityNet: tick.LiquidityNet})
				}
			}
		}
	}

	sort.Slice(crossings, func(i, j int) bool {
		if aToB {
			return crossings[i].index > crossings[j].index
		}
		return crossings[i].index < crossings[j].index
	})
	return crossings
}
