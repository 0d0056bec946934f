package whirlpool

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
)

// SupportedTickSpacings are the tick spacings Orca deploys fee tiers
// for. One pool PDA candidate exists per spacing for a given mint pair.
var SupportedTickSpacings = []uint16{1, 2, 4, 8, 16, 64, 96, 128, 256}

// OrderMints returns the pair in the canonical order the whirlpool PDA
// expects (byte-wise ascending).
func OrderMints(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}

// DerivePoolAddress derives the whirlpool PDA for a canonical mint pair
// and tick spacing.
func DerivePoolAddress(mintA, mintB solana.PublicKey, tickSpacing uint16) (solana.PublicKey, error) {
	spacing := make([]byte, 2)
	binary.LittleEndian.PutUint16(spacing, tickSpacing)

	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("whirlpool"),
			constants.WhirlpoolsConfig.Bytes(),
			mintA.Bytes(),
			mintB.Bytes(),
			spacing,
		},
		constants.WhirlpoolProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive whirlpool PDA: %w", err)
	}
	return addr, nil
}

// DeriveTickArrayAddress derives the tick array PDA for a pool and
// start tick index. The index seed is its base-10 ASCII form.
func DeriveTickArrayAddress(pool solana.PublicKey, startTickIndex int32) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("tick_array"),
			pool.Bytes(),
			[]byte(strconv.Itoa(int(startTickIndex))),
		},
		constants.WhirlpoolProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive tick array PDA: %w", err)
	}
	return addr, nil
}

// DeriveOracleAddress derives the oracle PDA for a pool.
func DeriveOracleAddress(pool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("oracle"),
			pool.Bytes(),
		},
		constants.WhirlpoolProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive oracle PDA: %w", err)
	}
	return addr, nil
}

// TickArrayStartIndex returns the start index of the tick array that
// contains tickIndex. Floors toward negative infinity.
func TickArrayStartIndex(tickIndex int32, tickSpacing uint16) int32 {
	span := int32(tickSpacing) * TickArraySize
	idx := tickIndex / span
	if tickIndex < 0 && tickIndex%span != 0 {
		idx--
	}
	return idx * span
}

// TickArrayAddresses derives the window of tick array PDAs a swap in
// the given direction can cross, starting at the array containing the
// current tick. aToB swaps walk toward lower ticks.
func TickArrayAddresses(pool solana.PublicKey, tickCurrentIndex int32, tickSpacing uint16, aToB bool, count int) ([]solana.PublicKey, error) {
	span := int32(tickSpacing) * TickArraySize
	start := TickArrayStartIndex(tickCurrentIndex, tickSpacing)

	addrs := make([]solana.PublicKey, 0, count)
	for i := 0; i < count; i++ {
		var idx int32
		if aToB {
			idx = start - int32(i)*span
		} else {
			idx = start + int32(i)*span
		}
		addr, err := DeriveTickArrayAddress(pool, idx)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
