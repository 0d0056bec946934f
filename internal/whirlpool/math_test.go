package whirlpool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDivRounding(t *testing.T) {
	a := big.NewInt(10)
	b := big.NewInt(3)
	d := big.NewInt(4)

	assert.Equal(t, int64(7), mulDivFloor(a, b, d).Int64())
	assert.Equal(t, int64(8), mulDivCeil(a, b, d).Int64())

	// exact division rounds the same both ways
	assert.Equal(t, int64(5), mulDivFloor(a, big.NewInt(2), d).Int64())
	assert.Equal(t, int64(5), mulDivCeil(a, big.NewInt(2), d).Int64())
}

func TestTickIndexToSqrtPrice(t *testing.T) {
	p0, err := TickIndexToSqrtPrice(0)
	require.NoError(t, err)
	assert.Equal(t, 0, p0.Cmp(oneX64), "tick 0 must map to exactly 1.0")

	// positive ticks raise the price, negative ticks lower it
	pUp, err := TickIndexToSqrtPrice(1000)
	require.NoError(t, err)
	pDown, err := TickIndexToSqrtPrice(-1000)
	require.NoError(t, err)
	assert.Equal(t, 1, pUp.Cmp(oneX64))
	assert.Equal(t, -1, pDown.Cmp(oneX64))

	// sqrt(1.0001^t) * sqrt(1.0001^-t) == 1, within integer sqrt error
	product := new(big.Int).Mul(pUp, pDown)
	product.Rsh(product, x64Resolution)
	diff := new(big.Int).Sub(product, oneX64)
	assert.True(t, diff.CmpAbs(big.NewInt(1<<20)) < 0, "inverse ticks should cancel, got diff %s", diff)

	_, err = TickIndexToSqrtPrice(500000)
	assert.Error(t, err)
}

func TestTickIndexToSqrtPriceBounds(t *testing.T) {
	pMin, err := TickIndexToSqrtPrice(-443636)
	require.NoError(t, err)
	pMax, err := TickIndexToSqrtPrice(443636)
	require.NoError(t, err)

	// protocol constants are within one unit of the exact values
	assert.True(t, new(big.Int).Sub(pMin, minSqrtPrice).CmpAbs(big.NewInt(2)) <= 0)
	assert.True(t, new(big.Int).Sub(pMax, maxSqrtPrice).CmpAbs(big.NewInt(2)) <= 0)
}

func TestNextSqrtPriceFromInput(t *testing.T) {
	price := new(big.Int).Set(oneX64)
	liquidity := new(big.Int).Lsh(big.NewInt(1), 40)

	down := nextSqrtPriceFromInput(price, liquidity, big.NewInt(1000), true)
	up := nextSqrtPriceFromInput(price, liquidity, big.NewInt(1000), false)
	assert.Equal(t, -1, down.Cmp(price))
	assert.Equal(t, 1, up.Cmp(price))

	same := nextSqrtPriceFromInput(price, liquidity, big.NewInt(0), true)
	assert.Equal(t, 0, same.Cmp(price))
}

func TestComputeSwapStepConservation(t *testing.T) {
	price := new(big.Int).Set(oneX64)
	liquidity := new(big.Int).Lsh(big.NewInt(1), 48)
	remaining := big.NewInt(1_000_000)

	step := computeSwapStep(price, minSqrtPrice, liquidity, remaining, 3000, true)

	consumed := new(big.Int).Add(step.amountIn, step.feeAmount)
	assert.True(t, consumed.Cmp(remaining) <= 0, "cannot consume more than the input")
	assert.True(t, step.amountOut.Sign() > 0)
	assert.True(t, step.nextSqrtPrice.Cmp(price) < 0, "aToB must push the price down")

	// at price ~1 with a 0.3% fee the output is slightly below the input
	assert.True(t, step.amountOut.Cmp(remaining) < 0)
}

func TestComputeSwapStepReachesTarget(t *testing.T) {
	price := new(big.Int).Set(oneX64)
	target, err := TickIndexToSqrtPrice(-10)
	require.NoError(t, err)
	liquidity := new(big.Int).Lsh(big.NewInt(1), 40)

	// a huge input moves the price all the way to the target
	step := computeSwapStep(price, target, liquidity, big.NewInt(1_000_000_000), 3000, true)
	assert.Equal(t, 0, step.nextSqrtPrice.Cmp(target))
	assert.True(t, step.feeAmount.Sign() > 0)
}

func TestTokenAmountsFromLiquidity(t *testing.T) {
	lo, err := TickIndexToSqrtPrice(-100)
	require.NoError(t, err)
	hi := new(big.Int).Set(oneX64)
	liquidity := new(big.Int).Lsh(big.NewInt(1), 40)

	a := tokenAFromLiquidity(lo, hi, liquidity, false)
	aUp := tokenAFromLiquidity(lo, hi, liquidity, true)
	b := tokenBFromLiquidity(lo, hi, liquidity, false)

	assert.True(t, a.Sign() > 0)
	assert.True(t, b.Sign() > 0)
	assert.True(t, aUp.Cmp(a) >= 0, "rounding up can only increase the amount")

	// argument order must not matter
	assert.Equal(t, 0, a.Cmp(tokenAFromLiquidity(hi, lo, liquidity, false)))
}
