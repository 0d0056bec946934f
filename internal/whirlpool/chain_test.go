package whirlpool

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/rpc"
)

// fakeChain is an in-memory ChainAccessor for tests. It serves
// accounts from a map and counts reads per method.
type fakeChain struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*rpc.Account
	epoch    uint64
	fees     []uint64
	blockRef rpc.BlockRef

	singleReads uint64
	batchReads  uint64
}

func newFakeChain() *fakeChain {
	var hash solana.Hash
	copy(hash[:], []byte("test-blockhash-for-assembly-----"))
	return &fakeChain{
		accounts: make(map[solana.PublicKey]*rpc.Account),
		epoch:    500,
		blockRef: rpc.BlockRef{Blockhash: hash, LastValidBlockHeight: 1000},
	}
}

func (f *fakeChain) put(addr solana.PublicKey, acc *rpc.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr] = acc
}

func (f *fakeChain) GetAccountInfo(_ context.Context, address solana.PublicKey) (*rpc.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleReads++
	return f.accounts[address], nil
}

func (f *fakeChain) GetMultipleAccounts(_ context.Context, addresses []solana.PublicKey) ([]*rpc.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchReads++
	out := make([]*rpc.Account, len(addresses))
	for i, a := range addresses {
		out[i] = f.accounts[a]
	}
	return out, nil
}

func (f *fakeChain) GetLatestBlockhash(_ context.Context) (*rpc.BlockRef, error) {
	ref := f.blockRef
	return &ref, nil
}

func (f *fakeChain) GetRecentPrioritizationFees(_ context.Context) ([]uint64, error) {
	return f.fees, nil
}

func (f *fakeChain) GetEpoch(_ context.Context) (uint64, error) {
	return f.epoch, nil
}

func (f *fakeChain) reads() (single, batch uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.singleReads, f.batchReads
}

// buildPoolAccount serializes a minimal whirlpool account with the
// given state at the documented offsets.
func buildPoolAccount(tickSpacing, feeRate uint16, liquidity, sqrtPrice *big.Int, tickCurrentIndex int32, mintA, mintB, vaultA, vaultB solana.PublicKey) []byte {
	data := make([]byte, poolAccountLen)
	offset := 8

	copy(data[offset:], constants.WhirlpoolsConfig.Bytes())
	offset += 32

	offset++ // bump
	binary.LittleEndian.PutUint16(data[offset:], tickSpacing)
	offset += 2
	offset += 2 // feeTierIndexSeed
	binary.LittleEndian.PutUint16(data[offset:], feeRate)
	offset += 2
	offset += 2 // protocolFeeRate

	putU128LE(data[offset:], liquidity)
	offset += 16
	putU128LE(data[offset:], sqrtPrice)
	offset += 16

	binary.LittleEndian.PutUint32(data[offset:], uint32(tickCurrentIndex))
	offset += 4
	offset += 16 // protocol fees owed

	copy(data[offset:], mintA.Bytes())
	offset += 32
	copy(data[offset:], vaultA.Bytes())
	offset += 32
	offset += 16 // feeGrowthGlobalA
	copy(data[offset:], mintB.Bytes())
	offset += 32
	copy(data[offset:], vaultB.Bytes())

	return data
}

func putU128LE(dst []byte, v *big.Int) {
	be := make([]byte, 16)
	v.FillBytes(be)
	for i := 0; i < 16; i++ {
		dst[i] = be[15-i]
	}
}

// poolAccount wraps raw whirlpool data in an account record.
func poolAccount(data []byte) *rpc.Account {
	return &rpc.Account{Owner: constants.WhirlpoolProgramID, Data: data, Lamports: 1}
}

// buildLegacyMint returns an 82-byte mint account owned by the legacy
// token program.
func buildLegacyMint() *rpc.Account {
	return &rpc.Account{Owner: constants.TokenProgramID, Data: make([]byte, 82), Lamports: 1}
}

// buildToken2022Mint returns a token-2022 mint carrying a transfer fee
// config whose older and newer entries activate at the given epochs.
func buildToken2022Mint(olderEpoch, newerEpoch uint64, olderBps, newerBps uint16, maxFee uint64) *rpc.Account {
	data := make([]byte, mintTLVStart+4+transferFeeConfigLen)
	data[mintTLVStart-1] = accountTypeMint

	offset := mintTLVStart
	binary.LittleEndian.PutUint16(data[offset:], extensionTransferFeeConfig)
	binary.LittleEndian.PutUint16(data[offset+2:], transferFeeConfigLen)
	offset += 4

	// two authorities and withheld amount, all zero
	older := offset + 72
	binary.LittleEndian.PutUint64(data[older:], olderEpoch)
	binary.LittleEndian.PutUint64(data[older+8:], maxFee)
	binary.LittleEndian.PutUint16(data[older+16:], olderBps)

	newer := offset + 90
	binary.LittleEndian.PutUint64(data[newer:], newerEpoch)
	binary.LittleEndian.PutUint64(data[newer+8:], maxFee)
	binary.LittleEndian.PutUint16(data[newer+16:], newerBps)

	return &rpc.Account{Owner: constants.Token2022ProgramID, Data: data, Lamports: 1}
}

// buildTickArrayAccount serializes a tick array with the given
// initialized ticks (absolute index -> liquidityNet).
func buildTickArrayAccount(pool solana.PublicKey, startTickIndex int32, spacing uint16, ticks map[int32]*big.Int) *rpc.Account {
	data := make([]byte, tickArrayAccountLen)
	binary.LittleEndian.PutUint32(data[8:], uint32(startTickIndex))

	for idx, net := range ticks {
		slot := int(idx-startTickIndex) / int(spacing)
		offset := 12 + slot*tickLen
		data[offset] = 1 // initialized
		putI128LE(data[offset+1:], net)
	}
	copy(data[len(data)-32:], pool.Bytes())
	return &rpc.Account{Owner: constants.WhirlpoolProgramID, Data: data, Lamports: 1}
}

func putI128LE(dst []byte, v *big.Int) {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	putU128LE(dst, u)
}

// testKey derives a deterministic throwaway public key.
func testKey(seed byte) solana.PublicKey {
	var b [32]byte
	for i := range b {
		b[i] = seed
	}
	b[0] = 1 // keep off the ed25519 curve identity
	return solana.PublicKeyFromBytes(b[:])
}
