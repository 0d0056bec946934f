package whirlpool

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// TokenProgram identifies which token program owns a mint.
type TokenProgram int

const (
	TokenProgramLegacy TokenProgram = iota
	TokenProgram2022
)

// ID returns the program address.
func (p TokenProgram) ID() solana.PublicKey {
	if p == TokenProgram2022 {
		return constants.Token2022ProgramID
	}
	return constants.TokenProgramID
}

func (p TokenProgram) String() string {
	if p == TokenProgram2022 {
		return "token-2022"
	}
	return "token"
}

// TransferFee is one epoch-scheduled transfer fee entry of a
// token-2022 mint.
type TransferFee struct {
	Epoch          uint64
	MaxFee         uint64
	FeeBasisPoints uint16
}

// Apply returns the fee withheld when transferring amount, capped at
// MaxFee.
func (f *TransferFee) Apply(amount uint64) uint64 {
	if f == nil || f.FeeBasisPoints == 0 || amount == 0 {
		return 0
	}
	fee := new(big.Int).SetUint64(amount)
	fee.Mul(fee, big.NewInt(int64(f.FeeBasisPoints)))
	fee.Quo(fee, big.NewInt(constants.BasisPointsDenominator))
	if !fee.IsUint64() || fee.Uint64() > f.MaxFee {
		return f.MaxFee
	}
	return fee.Uint64()
}

// MintInfo describes the token program owning a mint and, for
// token-2022 mints, its active transfer fee.
type MintInfo struct {
	Mint        solana.PublicKey
	Program     TokenProgram
	TransferFee *TransferFee // nil when the mint carries no fee
}

// TransferFeeResolver fetches mints and resolves their token program
// and currently effective transfer fee.
type TransferFeeResolver struct {
	accessor ChainAccessor
}

func NewTransferFeeResolver(accessor ChainAccessor) *TransferFeeResolver {
	return &TransferFeeResolver{accessor: accessor}
}

// Resolve fetches the mint account and decodes its transfer fee
// schedule, selecting the entry effective at currentEpoch.
func (r *TransferFeeResolver) Resolve(ctx context.Context, mint solana.PublicKey, currentEpoch uint64) (*MintInfo, error) {
	account, err := r.accessor.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mint %s: %w", mint, err)
	}
	if account == nil {
		return nil, fmt.Errorf("mint %s not found: %w", mint, swapper.ErrUnsupportedAsset)
	}
	return ResolveMint(mint, account.Owner, account.Data, currentEpoch)
}

// ResolveMint classifies a mint account by its owner program and, for
// token-2022 mints, extracts the transfer fee effective at
// currentEpoch.
func ResolveMint(mint, owner solana.PublicKey, data []byte, currentEpoch uint64) (*MintInfo, error) {
	switch owner {
	case constants.TokenProgramID:
		return &MintInfo{Mint: mint, Program: TokenProgramLegacy}, nil
	case constants.Token2022ProgramID:
		fee, err := parseTransferFeeConfig(data, currentEpoch)
		if err != nil {
			return nil, fmt.Errorf("mint %s: %w", mint, err)
		}
		return &MintInfo{Mint: mint, Program: TokenProgram2022, TransferFee: fee}, nil
	default:
		return nil, fmt.Errorf("account %s is not a token mint: %w", mint, swapper.ErrUnsupportedAsset)
	}
}

// Token-2022 mints append an account type byte and TLV-encoded
// extensions after the 82-byte base layout padded to 165 bytes.
const (
	mintTLVStart               = 166
	accountTypeMint            = 1
	extensionTransferFeeConfig = 1
	transferFeeConfigLen       = 108
)

// parseTransferFeeConfig walks the mint's extension TLV looking for a
// TransferFeeConfig. Returns nil when the mint has none.
func parseTransferFeeConfig(data []byte, currentEpoch uint64) (*TransferFee, error) {
	if len(data) <= mintTLVStart {
		// base mint without extensions
		return nil, nil
	}
	if data[mintTLVStart-1] != accountTypeMint {
		return nil, fmt.Errorf("unexpected token-2022 account type %d", data[mintTLVStart-1])
	}

	offset := mintTLVStart
	for offset+4 <= len(data) {
		extType := binary.LittleEndian.Uint16(data[offset : offset+2])
		extLen := int(binary.LittleEndian.Uint16(data[offset+2 : offset+4]))
		offset += 4
		if offset+extLen > len(data) {
			return nil, fmt.Errorf("truncated mint extension %d", extType)
		}
		if extType == extensionTransferFeeConfig {
			return decodeTransferFeeConfig(data[offset:offset+extLen], currentEpoch)
		}
		offset += extLen
	}
	return nil, nil
}

// decodeTransferFeeConfig picks the schedule entry in effect: the
// newer one once its epoch has arrived, the older one before that.
func decodeTransferFeeConfig(data []byte, currentEpoch uint64) (*TransferFee, error) {
	if len(data) < transferFeeConfigLen {
		return nil, fmt.Errorf("transfer fee config too short: %d bytes", len(data))
	}

	// authorities (2*32) and withheldAmount (8) precede the schedule
	older := decodeTransferFeeEntry(data[72:90])
	newer := decodeTransferFeeEntry(data[90:108])

	if newer.Epoch <= currentEpoch {
		return newer, nil
	}
	return older, nil
}

func decodeTransferFeeEntry(data []byte) *TransferFee {
	return &TransferFee{
		Epoch:          binary.LittleEndian.Uint64(data[0:8]),
		MaxFee:         binary.LittleEndian.Uint64(data[8:16]),
		FeeBasisPoints: binary.LittleEndian.Uint16(data[16:18]),
	}
}
