package whirlpool

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

func TestEstimatePriorityFee(t *testing.T) {
	// no samples at all
	assert.Equal(t, uint64(fallbackPriorityFee), estimatePriorityFee(nil))
	// only zero samples
	assert.Equal(t, uint64(fallbackPriorityFee), estimatePriorityFee([]uint64{0, 0, 0}))

	// p75 of {100..800} is 700, plus 20% headroom = 840, below the floor
	fee := estimatePriorityFee([]uint64{100, 200, 300, 400, 500, 600, 700, 800})
	assert.Equal(t, uint64(minPriorityFee), fee)

	// large samples keep the headroom: ceil(10000 * 1.2) = 12000
	fee = estimatePriorityFee([]uint64{10_000, 10_000, 10_000, 10_000})
	assert.Equal(t, uint64(12_000), fee)
}

func TestPriorityFeeCaching(t *testing.T) {
	chain := newFakeChain()
	chain.fees = []uint64{10_000, 10_000, 10_000, 10_000}

	asm := NewTransactionAssembler(chain, 0, 3*time.Second, nil)
	now := time.Now()
	asm.now = func() time.Time { return now }

	ctx := context.Background()
	first, err := asm.PriorityFee(ctx)
	require.NoError(t, err)

	// change the chain data; the cached value must be served
	chain.fees = []uint64{1_000_000}
	second, err := asm.PriorityFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// after the TTL the fresh samples win
	now = now.Add(5 * time.Second)
	third, err := asm.PriorityFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_200_000), third)
}

func decodeTx(t *testing.T, encoded string) *solana.Transaction {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	require.NoError(t, err)
	return tx
}

func instructionPrograms(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	programs := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		require.Less(t, int(ix.ProgramIDIndex), len(tx.Message.AccountKeys))
		programs = append(programs, tx.Message.AccountKeys[ix.ProgramIDIndex])
	}
	return programs
}

func TestAssembleOrdering(t *testing.T) {
	chain := newFakeChain()
	payer := testKey(0x50)
	referrer := testKey(0x51)

	asm := NewTransactionAssembler(chain, 0, time.Second, nil)
	swapIx := solana.NewInstruction(constants.WhirlpoolProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
	}, []byte{1, 2, 3})

	encoded, err := asm.Assemble(context.Background(), payer, swapIx, &ReferralTransfer{
		Amount:   5_000,
		Referrer: referrer,
		Native:   true,
	})
	require.NoError(t, err)

	tx := decodeTx(t, encoded)
	programs := instructionPrograms(t, tx)
	require.Len(t, programs, 4)

	// compute budget first, swap in the middle, referral transfer last
	assert.Equal(t, constants.ComputeBudgetProgramID, programs[0])
	assert.Equal(t, constants.ComputeBudgetProgramID, programs[1])
	assert.Equal(t, constants.WhirlpoolProgramID, programs[2])
	assert.Equal(t, constants.SystemProgramID, programs[3])

	// payer funds the transaction, signature slots stay empty
	assert.Equal(t, payer, tx.Message.AccountKeys[0])
	require.Len(t, tx.Signatures, int(tx.Message.Header.NumRequiredSignatures))
	for _, sig := range tx.Signatures {
		assert.Equal(t, solana.Signature{}, sig)
	}

	assert.Equal(t, chain.blockRef.Blockhash, tx.Message.RecentBlockhash)
}

func TestAssembleWithoutReferral(t *testing.T) {
	chain := newFakeChain()
	payer := testKey(0x52)

	asm := NewTransactionAssembler(chain, 0, time.Second, nil)
	swapIx := solana.NewInstruction(constants.WhirlpoolProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
	}, []byte{1})

	encoded, err := asm.Assemble(context.Background(), payer, swapIx, nil)
	require.NoError(t, err)

	tx := decodeTx(t, encoded)
	programs := instructionPrograms(t, tx)
	require.Len(t, programs, 3)
	assert.Equal(t, constants.WhirlpoolProgramID, programs[2])
}

func TestAssembleSPLReferral(t *testing.T) {
	chain := newFakeChain()
	payer := testKey(0x53)

	asm := NewTransactionAssembler(chain, 0, time.Second, nil)
	swapIx := solana.NewInstruction(constants.WhirlpoolProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
	}, []byte{1})

	encoded, err := asm.Assemble(context.Background(), payer, swapIx, &ReferralTransfer{
		Amount:   5_000,
		Referrer: testKey(0x54),
		Native:   false,
		Mint:     testKey(0x55),
		Program:  TokenProgramLegacy,
	})
	require.NoError(t, err)

	tx := decodeTx(t, encoded)
	programs := instructionPrograms(t, tx)
	require.Len(t, programs, 4)
	assert.Equal(t, constants.TokenProgramID, programs[3])
}

func TestAssembleRequiresPayer(t *testing.T) {
	chain := newFakeChain()
	asm := NewTransactionAssembler(chain, 0, time.Second, nil)

	swapIx := solana.NewInstruction(constants.WhirlpoolProgramID, solana.AccountMetaSlice{}, []byte{1})
	_, err := asm.Assemble(context.Background(), solana.PublicKey{}, swapIx, nil)
	assert.ErrorIs(t, err, swapper.ErrMissingFeePayer)
}
