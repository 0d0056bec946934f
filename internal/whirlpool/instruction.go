package whirlpool

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
)

// swapV2Discriminator is the anchor discriminator of the Whirlpool
// swapV2 instruction.
var swapV2Discriminator = []byte{43, 4, 237, 11, 26, 201, 30, 98}

// AssociatedTokenAddress derives the ATA for owner and mint under the
// given token program.
func AssociatedTokenAddress(owner, mint solana.PublicKey, program TokenProgram) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			program.ID().Bytes(),
			mint.Bytes(),
		},
		constants.AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return addr, nil
}

// NewSwapInstruction builds the Whirlpool swapV2 instruction for an
// exact-input swap quoted by the engine. authority signs and owns the
// token accounts on both sides.
func NewSwapInstruction(quote *SwapQuote, authority solana.PublicKey) (solana.Instruction, error) {
	pool := quote.Pool

	mintAInfo, mintBInfo := quote.InputMint, quote.OutputMint
	if !quote.AToB {
		mintAInfo, mintBInfo = quote.OutputMint, quote.InputMint
	}

	ownerAccountA, err := AssociatedTokenAddress(authority, pool.TokenMintA, mintAInfo.Program)
	if err != nil {
		return nil, err
	}
	ownerAccountB, err := AssociatedTokenAddress(authority, pool.TokenMintB, mintBInfo.Program)
	if err != nil {
		return nil, err
	}

	tickArrays, err := TickArrayAddresses(pool.Address, pool.TickCurrentIndex, pool.TickSpacing, quote.AToB, 3)
	if err != nil {
		return nil, err
	}
	oracle, err := DeriveOracleAddress(pool.Address)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(swapV2Discriminator, false); err != nil {
		return nil, fmt.Errorf("failed to encode discriminator: %w", err)
	}
	// the program nets out the input transfer fee itself, so the
	// instruction carries the gross amount
	if err := enc.Encode(quote.AmountIn); err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	if err := enc.Encode(quote.MinAmountOut); err != nil {
		return nil, fmt.Errorf("failed to encode otherAmountThreshold: %w", err)
	}
	// u128 sqrt price limit, low word first
	limit := make([]byte, 16)
	quote.SqrtPriceLimit.FillBytes(limit)
	for i, j := 0, 15; i < j; i, j = i+1, j-1 {
		limit[i], limit[j] = limit[j], limit[i]
	}
	if err := enc.WriteBytes(limit, false); err != nil {
		return nil, fmt.Errorf("failed to encode sqrtPriceLimit: %w", err)
	}
	if err := enc.Encode(true); err != nil { // amountSpecifiedIsInput
		return nil, fmt.Errorf("failed to encode amountSpecifiedIsInput: %w", err)
	}
	if err := enc.Encode(quote.AToB); err != nil {
		return nil, fmt.Errorf("failed to encode aToB: %w", err)
	}
	if err := enc.WriteOption(false); err != nil { // remainingAccountsInfo: None
		return nil, fmt.Errorf("failed to encode remainingAccountsInfo: %w", err)
	}

	accounts := solana.AccountMetaSlice{}
	accounts.Append(solana.NewAccountMeta(mintAInfo.Program.ID(), false, false))      // token_program_a
	accounts.Append(solana.NewAccountMeta(mintBInfo.Program.ID(), false, false))      // token_program_b
	accounts.Append(solana.NewAccountMeta(constants.MemoProgramID, false, false))     // memo_program
	accounts.Append(solana.NewAccountMeta(authority, false, true))                    // token_authority (signer)
	accounts.Append(solana.NewAccountMeta(pool.Address, true, false))                 // whirlpool (writable)
	accounts.Append(solana.NewAccountMeta(pool.TokenMintA, false, false))             // token_mint_a
	accounts.Append(solana.NewAccountMeta(pool.TokenMintB, false, false))             // token_mint_b
	accounts.Append(solana.NewAccountMeta(ownerAccountA, true, false))                // token_owner_account_a (writable)
	accounts.Append(solana.NewAccountMeta(pool.TokenVaultA, true, false))             // token_vault_a (writable)
	accounts.Append(solana.NewAccountMeta(ownerAccountB, true, false))                // token_owner_account_b (writable)
	accounts.Append(solana.NewAccountMeta(pool.TokenVaultB, true, false))             // token_vault_b (writable)
	accounts.Append(solana.NewAccountMeta(tickArrays[0], true, false))                // tick_array_0 (writable)
	accounts.Append(solana.NewAccountMeta(tickArrays[1], true, false))                // tick_array_1 (writable)
	accounts.Append(solana.NewAccountMeta(tickArrays[2], true, false))                // tick_array_2 (writable)
	accounts.Append(solana.NewAccountMeta(oracle, true, false))                       // oracle (writable)

	return solana.NewInstruction(constants.WhirlpoolProgramID, accounts, buf.Bytes()), nil
}

// NewComputeUnitLimitInstruction caps the compute units a transaction
// may consume.
func NewComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 0x02
	binary.LittleEndian.PutUint32(data[1:], units)
	return solana.NewInstruction(constants.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// NewComputeUnitPriceInstruction sets the priority fee in micro
// lamports per compute unit.
func NewComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 0x03
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return solana.NewInstruction(constants.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// NewSystemTransferInstruction moves lamports between system accounts.
func NewSystemTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2) // Transfer
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	accounts := solana.AccountMetaSlice{}
	accounts.Append(solana.NewAccountMeta(from, true, true))
	accounts.Append(solana.NewAccountMeta(to, true, false))
	return solana.NewInstruction(constants.SystemProgramID, accounts, data)
}

// NewTokenTransferInstruction moves SPL tokens between token accounts
// owned by the same token program.
func NewTokenTransferInstruction(program TokenProgram, source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 3 // Transfer
	binary.LittleEndian.PutUint64(data[1:], amount)

	accounts := solana.AccountMetaSlice{}
	accounts.Append(solana.NewAccountMeta(source, true, false))
	accounts.Append(solana.NewAccountMeta(destination, true, false))
	accounts.Append(solana.NewAccountMeta(owner, false, true))
	return solana.NewInstruction(program.ID(), accounts, data)
}
