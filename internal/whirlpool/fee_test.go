package whirlpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

func TestComputeReferralFee(t *testing.T) {
	fee, err := ComputeReferralFee(1_000_000, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), fee)

	fee, err = ComputeReferralFee(1_000_000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), fee)

	// floor semantics: 999 * 50 / 10000 = 4.995 -> 4
	fee, err = ComputeReferralFee(999, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), fee)

	fee, err = ComputeReferralFee(1_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestComputeReferralDeductionLegacy(t *testing.T) {
	d, err := ComputeReferralDeduction(1_000_000, 100, TokenProgramLegacy)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), d.Fee)
	assert.Equal(t, uint64(990_000), d.SwapAmount)
	assert.True(t, d.Collect)

	// fee and swap amount always reassemble the original input
	assert.Equal(t, uint64(1_000_000), d.Fee+d.SwapAmount)
}

func TestComputeReferralDeductionToken2022(t *testing.T) {
	// token-2022 inputs swap the full amount, no carve-out
	d, err := ComputeReferralDeduction(1_000_000, 100, TokenProgram2022)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), d.Fee)
	assert.Equal(t, uint64(1_000_000), d.SwapAmount)
	assert.False(t, d.Collect)
}

func TestComputeReferralDeductionZeroBps(t *testing.T) {
	d, err := ComputeReferralDeduction(1_000_000, 0, TokenProgramLegacy)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), d.Fee)
	assert.Equal(t, uint64(1_000_000), d.SwapAmount)
	assert.False(t, d.Collect)
}

func TestComputeReferralDeductionConsumesInput(t *testing.T) {
	// 10000 bps would leave nothing to swap
	_, err := ComputeReferralDeduction(100, 10_000, TokenProgramLegacy)
	assert.ErrorIs(t, err, swapper.ErrFeeOutOfRange)

	// tiny amounts where the fee floors to zero still swap
	d, err := ComputeReferralDeduction(10, 50, TokenProgramLegacy)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), d.Fee)
	assert.False(t, d.Collect)
	assert.Equal(t, uint64(10), d.SwapAmount)
}
