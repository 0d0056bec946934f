package whirlpool

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// TickArraySize is the number of ticks held by one tick array account.
const TickArraySize = 88

const (
	poolAccountLen      = 653
	tickLen             = 113
	tickArrayAccountLen = 8 + 4 + TickArraySize*tickLen + 32
)

// Pool mirrors the on-chain Whirlpool account.
//
// Layout (653 bytes including the 8-byte discriminator):
// whirlpoolsConfig(32) bump(1) tickSpacing(2) feeTierIndexSeed(2)
// feeRate(2) protocolFeeRate(2) liquidity(16) sqrtPrice(16)
// tickCurrentIndex(4) protocolFeeOwedA(8) protocolFeeOwedB(8)
// tokenMintA(32) tokenVaultA(32) feeGrowthGlobalA(16)
// tokenMintB(32) tokenVaultB(32) feeGrowthGlobalB(16)
// rewardLastUpdatedTimestamp(8) rewardInfos(3*128)
type Pool struct {
	Address          solana.PublicKey
	WhirlpoolsConfig solana.PublicKey
	TickSpacing      uint16
	FeeRate          uint16
	ProtocolFeeRate  uint16
	Liquidity        *big.Int
	SqrtPrice        *big.Int
	TickCurrentIndex int32
	TokenMintA       solana.PublicKey
	TokenVaultA      solana.PublicKey
	TokenMintB       solana.PublicKey
	TokenVaultB      solana.PublicKey
}

// DecodePool parses a Whirlpool account into a Pool.
func DecodePool(address solana.PublicKey, data []byte) (*Pool, error) {
	if len(data) < poolAccountLen {
		return nil, fmt.Errorf("whirlpool account too short: %d bytes", len(data))
	}

	p := &Pool{Address: address}
	offset := 8 // skip discriminator

	p.WhirlpoolsConfig = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	offset += 1 // whirlpoolBump

	p.TickSpacing = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2

	offset += 2 // feeTierIndexSeed

	p.FeeRate = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2

	p.ProtocolFeeRate = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2

	p.Liquidity = u128LE(data[offset : offset+16])
	offset += 16

	p.SqrtPrice = u128LE(data[offset : offset+16])
	offset += 16

	p.TickCurrentIndex = int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	offset += 16 // protocolFeeOwedA, protocolFeeOwedB

	p.TokenMintA = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	p.TokenVaultA = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	offset += 16 // feeGrowthGlobalA

	p.TokenMintB = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	p.TokenVaultB = solana.PublicKeyFromBytes(data[offset : offset+32])

	return p, nil
}

// Tick is one initialized or empty tick slot inside a tick array.
type Tick struct {
	Initialized    bool
	LiquidityNet   *big.Int
	LiquidityGross *big.Int
}

// TickArray mirrors the on-chain TickArray account: a fixed window of
// TickArraySize ticks starting at StartTickIndex.
type TickArray struct {
	StartTickIndex int32
	Ticks          [TickArraySize]Tick
	Whirlpool      solana.PublicKey
}

// DecodeTickArray parses a TickArray account.
func DecodeTickArray(data []byte) (*TickArray, error) {
	if len(data) < tickArrayAccountLen {
		return nil, fmt.Errorf("tick array account too short: %d bytes", len(data))
	}

	ta := &TickArray{}
	offset := 8 // skip discriminator

	ta.StartTickIndex = int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	for i := 0; i < TickArraySize; i++ {
		ta.Ticks[i].Initialized = data[offset] != 0
		ta.Ticks[i].LiquidityNet = i128LE(data[offset+1 : offset+17])
		ta.Ticks[i].LiquidityGross = u128LE(data[offset+17 : offset+33])
		// fee and reward growth fields are not needed for quoting
		offset += tickLen
	}

	ta.Whirlpool = solana.PublicKeyFromBytes(data[offset : offset+32])

	return ta, nil
}

// u128LE reads a little-endian unsigned 128-bit integer.
func u128LE(b []byte) *big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	return new(big.Int).SetBytes(be)
}

// i128LE reads a little-endian two's complement signed 128-bit integer.
func i128LE(b []byte) *big.Int {
	v := u128LE(b)
	if b[15]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return v
}
