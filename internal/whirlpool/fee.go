package whirlpool

import (
	"fmt"
	"math/big"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// ReferralDeduction is the outcome of applying the referral policy to
// an input amount before the swap is quoted.
type ReferralDeduction struct {
	// Fee is the amount withheld for the referrer, zero when the
	// policy does not collect for this token program.
	Fee uint64
	// SwapAmount is what remains to be swapped.
	SwapAmount uint64
	// Collect reports whether a referral transfer instruction must be
	// appended to the transaction.
	Collect bool
}

// ComputeReferralFee returns floor(amount * bps / 10000).
func ComputeReferralFee(amount uint64, bps uint16) (uint64, error) {
	fee := new(big.Int).SetUint64(amount)
	fee.Mul(fee, big.NewInt(int64(bps)))
	fee.Quo(fee, big.NewInt(constants.BasisPointsDenominator))
	return feeToUint64(fee)
}

// ComputeReferralDeduction applies the referral policy. Native SOL and
// legacy token program inputs have the fee carved out before the swap;
// token-2022 inputs swap the full amount because their transfer fee
// extension makes a pre-swap carve-out unreliable.
func ComputeReferralDeduction(amount uint64, bps uint16, program TokenProgram) (ReferralDeduction, error) {
	if bps == 0 || program == TokenProgram2022 {
		return ReferralDeduction{SwapAmount: amount}, nil
	}

	fee, err := ComputeReferralFee(amount, bps)
	if err != nil {
		return ReferralDeduction{}, err
	}
	if fee >= amount {
		return ReferralDeduction{}, fmt.Errorf("referral fee %d consumes the whole input %d: %w",
			fee, amount, swapper.ErrFeeOutOfRange)
	}
	return ReferralDeduction{
		Fee:        fee,
		SwapAmount: amount - fee,
		Collect:    fee > 0,
	}, nil
}

func feeToUint64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("fee %s outside u64 range: %w", v, swapper.ErrFeeOutOfRange)
	}
	return v.Uint64(), nil
}
