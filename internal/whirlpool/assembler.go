package whirlpool

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/rpc"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

const (
	// DefaultComputeUnitLimit caps a swap transaction's compute budget.
	DefaultComputeUnitLimit = 420_000
	// DefaultPriorityFeeCacheTTL bounds how long a sampled priority
	// fee is reused.
	DefaultPriorityFeeCacheTTL = 3 * time.Second

	minPriorityFee      = 1_000
	fallbackPriorityFee = 50_000
)

// ReferralTransfer describes the referral payout appended after the
// swap instruction.
type ReferralTransfer struct {
	Amount   uint64
	Referrer solana.PublicKey
	// Native pays lamports via the system program; otherwise the fee
	// moves between the payer's and referrer's token accounts.
	Native  bool
	Mint    solana.PublicKey
	Program TokenProgram
}

// TransactionAssembler turns a swap instruction into a serialized
// unsigned transaction with compute budget and referral instructions
// attached.
type TransactionAssembler struct {
	accessor         ChainAccessor
	computeUnitLimit uint32
	feeTTL           time.Duration
	logger           *logrus.Logger

	mu           sync.Mutex
	cachedFee    uint64
	feeFetchedAt time.Time
	now          func() time.Time
}

func NewTransactionAssembler(accessor ChainAccessor, computeUnitLimit uint32, feeTTL time.Duration, logger *logrus.Logger) *TransactionAssembler {
	if computeUnitLimit == 0 {
		computeUnitLimit = DefaultComputeUnitLimit
	}
	if feeTTL <= 0 {
		feeTTL = DefaultPriorityFeeCacheTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &TransactionAssembler{
		accessor:         accessor,
		computeUnitLimit: computeUnitLimit,
		feeTTL:           feeTTL,
		logger:           logger,
		now:              time.Now,
	}
}

// Assemble builds and serializes the unsigned transaction. The compute
// budget instructions lead, the referral transfer (when present) is
// appended last, and the blockhash is bound after assembly.
func (a *TransactionAssembler) Assemble(ctx context.Context, payer solana.PublicKey, swapIx solana.Instruction, referral *ReferralTransfer) (string, error) {
	if payer.IsZero() {
		return "", fmt.Errorf("transaction payer not set: %w", swapper.ErrMissingFeePayer)
	}

	var block *rpc.BlockRef
	var priorityFee uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		block, err = a.accessor.GetLatestBlockhash(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		priorityFee, err = a.PriorityFee(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("failed to prepare transaction: %w", err)
	}

	instructions := []solana.Instruction{
		NewComputeUnitLimitInstruction(a.computeUnitLimit),
		NewComputeUnitPriceInstruction(priorityFee),
		swapIx,
	}

	if referral != nil && referral.Amount > 0 {
		ix, err := a.referralInstruction(payer, referral)
		if err != nil {
			return "", err
		}
		instructions = append(instructions, ix)
	}

	tx, err := solana.NewTransaction(
		instructions,
		block.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	// leave signature slots empty; the wallet signs client-side
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (a *TransactionAssembler) referralInstruction(payer solana.PublicKey, referral *ReferralTransfer) (solana.Instruction, error) {
	if referral.Native {
		return NewSystemTransferInstruction(payer, referral.Referrer, referral.Amount), nil
	}

	source, err := AssociatedTokenAddress(payer, referral.Mint, referral.Program)
	if err != nil {
		return nil, err
	}
	destination, err := AssociatedTokenAddress(referral.Referrer, referral.Mint, referral.Program)
	if err != nil {
		return nil, err
	}
	return NewTokenTransferInstruction(referral.Program, source, destination, payer, referral.Amount), nil
}

// PriorityFee returns the micro-lamport compute unit price to attach,
// sampled from recent prioritization fees and cached briefly.
func (a *TransactionAssembler) PriorityFee(ctx context.Context) (uint64, error) {
	a.mu.Lock()
	if a.cachedFee > 0 && a.now().Sub(a.feeFetchedAt) < a.feeTTL {
		fee := a.cachedFee
		a.mu.Unlock()
		return fee, nil
	}
	a.mu.Unlock()

	samples, err := a.accessor.GetRecentPrioritizationFees(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prioritization fees: %w", err)
	}

	fee := estimatePriorityFee(samples)

	a.mu.Lock()
	a.cachedFee = fee
	a.feeFetchedAt = a.now()
	a.mu.Unlock()

	return fee, nil
}

// estimatePriorityFee takes the 75th percentile of the positive
// samples with a 20% headroom. Falls back to a fixed default when no
// slot paid a priority fee.
func estimatePriorityFee(samples []uint64) uint64 {
	positive := make([]uint64, 0, len(samples))
	for _, s := range samples {
		if s > 0 {
			positive = append(positive, s)
		}
	}
	if len(positive) == 0 {
		return fallbackPriorityFee
	}

	sort.Slice(positive, func(i, j int) bool { return positive[i] < positive[j] })
	idx := len(positive) * 3 / 4
	if idx >= len(positive) {
		idx = len(positive) - 1
	}
	p75 := positive[idx]

	fee := (p75*6 + 4) / 5 // ceil(p75 * 1.2)
	if fee < minPriorityFee {
		fee = minPriorityFee
	}
	return fee
}
