package whirlpool

import (
	"fmt"
	"math/big"
)

// Sqrt prices are Q64.64 fixed point. Fee rates are parts per million.
const (
	x64Resolution      = 64
	feeRateDenominator = 1_000_000
)

// Protocol price bounds for sqrtPrice, matching tick indices -443636
// and 443636.
var (
	minSqrtPrice, _ = new(big.Int).SetString("4295048016", 10)
	maxSqrtPrice, _ = new(big.Int).SetString("79226673515401279992447579055", 10)

	oneX64 = new(big.Int).Lsh(big.NewInt(1), x64Resolution)
)

func mulDivFloor(a, b, denominator *big.Int) *big.Int {
	if denominator.Sign() == 0 {
		panic("division by zero")
	}
	numerator := new(big.Int).Mul(a, b)
	return numerator.Quo(numerator, denominator)
}

func mulDivCeil(a, b, denominator *big.Int) *big.Int {
	if denominator.Sign() == 0 {
		panic("division by zero")
	}
	numerator := new(big.Int).Mul(a, b)
	numerator.Add(numerator, new(big.Int).Sub(denominator, big.NewInt(1)))
	return numerator.Quo(numerator, denominator)
}

func divCeil(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// tokenAFromLiquidity returns the token A delta for moving liquidity
// between two sqrt prices: L * (pB - pA) / (pB * pA), scaled out of X64.
func tokenAFromLiquidity(sqrtPrice0, sqrtPrice1, liquidity *big.Int, roundUp bool) *big.Int {
	lo, hi := orderPrices(sqrtPrice0, sqrtPrice1)
	if lo.Sign() <= 0 {
		panic("sqrt price must be positive")
	}

	numerator1 := new(big.Int).Lsh(liquidity, x64Resolution)
	numerator2 := new(big.Int).Sub(hi, lo)

	if roundUp {
		return divCeil(mulDivCeil(numerator1, numerator2, hi), lo)
	}
	return new(big.Int).Quo(mulDivFloor(numerator1, numerator2, hi), lo)
}

// tokenBFromLiquidity returns the token B delta for moving liquidity
// between two sqrt prices: L * (pB - pA), scaled out of X64.
func tokenBFromLiquidity(sqrtPrice0, sqrtPrice1, liquidity *big.Int, roundUp bool) *big.Int {
	lo, hi := orderPrices(sqrtPrice0, sqrtPrice1)
	if lo.Sign() <= 0 {
		panic("sqrt price must be positive")
	}

	diff := new(big.Int).Sub(hi, lo)
	if roundUp {
		return mulDivCeil(liquidity, diff, oneX64)
	}
	return mulDivFloor(liquidity, diff, oneX64)
}

func orderPrices(a, b *big.Int) (lo, hi *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// nextSqrtPriceFromInput returns the sqrt price after consuming the
// given input amount against the current liquidity. aToB swaps push the
// price down, bToA push it up.
func nextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *big.Int, aToB bool) *big.Int {
	if sqrtPrice.Sign() <= 0 || liquidity.Sign() <= 0 {
		panic("sqrt price and liquidity must be positive")
	}
	if amountIn.Sign() == 0 {
		return new(big.Int).Set(sqrtPrice)
	}

	if aToB {
		// p' = L*p / (L + amount*p), rounded up
		liquidityX64 := new(big.Int).Lsh(liquidity, x64Resolution)
		denominator := new(big.Int).Mul(amountIn, sqrtPrice)
		denominator.Add(denominator, liquidityX64)
		return mulDivCeil(liquidityX64, sqrtPrice, denominator)
	}

	// p' = p + amount / L, rounded down
	deltaX64 := new(big.Int).Lsh(amountIn, x64Resolution)
	delta := deltaX64.Quo(deltaX64, liquidity)
	return new(big.Int).Add(sqrtPrice, delta)
}

// swapStepResult is the outcome of swapping within a single liquidity
// range, bounded by a target sqrt price.
type swapStepResult struct {
	nextSqrtPrice *big.Int
	amountIn      *big.Int
	amountOut     *big.Int
	feeAmount     *big.Int
}

// computeSwapStep advances an exact-input swap from the current sqrt
// price toward the target, limited by amountRemaining (gross of the
// pool fee). feeRate is parts per million.
func computeSwapStep(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining *big.Int, feeRate uint16, aToB bool) swapStepResult {
	feeComplement := big.NewInt(feeRateDenominator - int64(feeRate))
	denominator := big.NewInt(feeRateDenominator)
	amountAvailable := mulDivFloor(amountRemaining, feeComplement, denominator)

	var amountToTarget *big.Int
	if aToB {
		amountToTarget = tokenAFromLiquidity(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
	} else {
		amountToTarget = tokenBFromLiquidity(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
	}

	var res swapStepResult
	reachedTarget := amountAvailable.Cmp(amountToTarget) >= 0
	if reachedTarget {
		res.nextSqrtPrice = new(big.Int).Set(sqrtPriceTarget)
		res.amountIn = amountToTarget
	} else {
		res.nextSqrtPrice = nextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, amountAvailable, aToB)
		if aToB {
			res.amountIn = tokenAFromLiquidity(res.nextSqrtPrice, sqrtPriceCurrent, liquidity, true)
		} else {
			res.amountIn = tokenBFromLiquidity(sqrtPriceCurrent, res.nextSqrtPrice, liquidity, true)
		}
	}

	if aToB {
		res.amountOut = tokenBFromLiquidity(res.nextSqrtPrice, sqrtPriceCurrent, liquidity, false)
	} else {
		res.amountOut = tokenAFromLiquidity(sqrtPriceCurrent, res.nextSqrtPrice, liquidity, false)
	}

	if reachedTarget {
		res.feeAmount = mulDivCeil(res.amountIn, big.NewInt(int64(feeRate)), feeComplement)
	} else {
		// price exhausted the input: everything not swapped is fee
		res.feeAmount = new(big.Int).Sub(amountRemaining, res.amountIn)
	}

	return res
}

// TickIndexToSqrtPrice returns sqrt(1.0001^tick) in Q64.64 fixed
// point, computed from the exact rational power of 10001/10000.
func TickIndexToSqrtPrice(tick int32) (*big.Int, error) {
	const maxTick = 443636
	if tick > maxTick || tick < -maxTick {
		return nil, fmt.Errorf("tick index %d out of bounds", tick)
	}
	if tick == 0 {
		return new(big.Int).Set(oneX64), nil
	}

	abs := tick
	if abs < 0 {
		abs = -abs
	}

	// 1.0001^|tick| as an exact fraction
	num := big.NewInt(1)
	den := big.NewInt(1)
	baseNum := big.NewInt(10001)
	baseDen := big.NewInt(10000)
	for e := abs; e > 0; e >>= 1 {
		if e&1 == 1 {
			num.Mul(num, baseNum)
			den.Mul(den, baseDen)
		}
		baseNum = new(big.Int).Mul(baseNum, baseNum)
		baseDen = new(big.Int).Mul(baseDen, baseDen)
	}

	// sqrt(num/den) << 64 == isqrt(num << 128 / den); invert the
	// fraction for negative ticks
	if tick < 0 {
		num, den = den, num
	}
	scaled := new(big.Int).Lsh(num, 2*x64Resolution)
	scaled.Quo(scaled, den)
	return scaled.Sqrt(scaled), nil
}
