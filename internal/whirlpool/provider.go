package whirlpool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// ProviderName is the registry key of the Orca Whirlpool adapter.
const ProviderName = "orca_whirlpool"

const etaSeconds = 5

// RouteData carries the pool selection from phase one to phase two. It
// travels opaquely through the caller inside Quote.RouteData.
type RouteData struct {
	PoolAddress string `json:"pool_address"`
	InputMint   string `json:"input_mint"`
	OutputMint  string `json:"output_mint"`
	// Amount is the input actually swapped, net of any referral
	// deduction taken in phase one.
	Amount      string `json:"amount"`
	SlippageBps int    `json:"slippage_bps"`
}

// Provider quotes swaps against Orca Whirlpool pools and assembles the
// resulting transactions.
type Provider struct {
	locator   *PoolLocator
	engine    *QuoteEngine
	resolver  *TransferFeeResolver
	assembler *TransactionAssembler
	accessor  ChainAccessor
	referrer  string
	logger    *logrus.Logger
}

func NewProvider(accessor ChainAccessor, locator *PoolLocator, engine *QuoteEngine, resolver *TransferFeeResolver, assembler *TransactionAssembler, referrer string, logger *logrus.Logger) *Provider {
	if logger == nil {
		logger = logrus.New()
	}
	return &Provider{
		locator:   locator,
		engine:    engine,
		resolver:  resolver,
		assembler: assembler,
		accessor:  accessor,
		referrer:  referrer,
		logger:    logger,
	}
}

func (p *Provider) Name() string { return ProviderName }

// GetQuote prices an exact-input swap: find the deepest pool for the
// pair, carve out the referral fee where the policy allows it, and
// simulate the swap off-chain.
func (p *Provider) GetQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.Quote, error) {
	fromAsset, fromMint, err := parseSolanaAsset(req.FromAsset)
	if err != nil {
		return nil, err
	}
	_, toMint, err := parseSolanaAsset(req.ToAsset)
	if err != nil {
		return nil, err
	}
	if fromMint == toMint {
		return nil, fmt.Errorf("from and to assets are identical: %w", swapper.ErrUnsupportedAsset)
	}

	fromValue, err := parseAmount(req.FromValue)
	if err != nil {
		return nil, err
	}
	bps, err := parseBps(req.ReferralBps)
	if err != nil {
		return nil, err
	}
	slippage, err := parseBps(req.SlippageBps)
	if err != nil {
		return nil, err
	}

	pool, err := p.locator.BestPool(ctx, fromMint, toMint)
	if err != nil {
		return nil, err
	}

	epoch, err := p.accessor.GetEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch epoch: %w", err)
	}
	inInfo, err := p.resolver.Resolve(ctx, fromMint, epoch)
	if err != nil {
		return nil, err
	}

	deduction, err := ComputeReferralDeduction(fromValue, bps, inInfo.Program)
	if err != nil {
		return nil, err
	}

	quote, err := p.engine.ComputeExactIn(ctx, pool, inInfo, epoch, deduction.SwapAmount, slippage)
	if err != nil {
		return nil, err
	}

	route, err := json.Marshal(RouteData{
		PoolAddress: pool.Address.String(),
		InputMint:   fromMint.String(),
		OutputMint:  toMint.String(),
		Amount:      strconv.FormatUint(deduction.SwapAmount, 10),
		SlippageBps: int(slippage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode route data: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"pool":         pool.Address.String(),
		"from":         fromAsset.String(),
		"input":        deduction.SwapAmount,
		"referral_fee": deduction.Fee,
		"output":       quote.EstimatedAmountOut,
	}).Debug("quote computed")

	return &swapper.Quote{
		Quote:          req,
		OutputValue:    strconv.FormatUint(quote.EstimatedAmountOut, 10),
		OutputMinValue: strconv.FormatUint(quote.MinAmountOut, 10),
		EtaInSeconds:   etaSeconds,
		RouteData:      route,
	}, nil
}

// GetQuoteData turns an accepted Quote into a serialized unsigned
// transaction. The referral fee is rederived from the difference
// between the original input and the routed amount, so both phases
// agree exactly.
func (p *Provider) GetQuoteData(ctx context.Context, quote swapper.Quote) (*swapper.QuoteData, error) {
	var route RouteData
	if err := json.Unmarshal(quote.RouteData, &route); err != nil {
		return nil, fmt.Errorf("%w: %v", swapper.ErrInvalidRouteData, err)
	}
	poolAddress, err := solana.PublicKeyFromBase58(route.PoolAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pool address %q", swapper.ErrInvalidRouteData, route.PoolAddress)
	}
	inputMint, err := solana.PublicKeyFromBase58(route.InputMint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad input mint %q", swapper.ErrInvalidRouteData, route.InputMint)
	}
	routeAmount, err := strconv.ParseUint(route.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q", swapper.ErrInvalidRouteData, route.Amount)
	}
	slippage, err := parseBps(route.SlippageBps)
	if err != nil {
		return nil, fmt.Errorf("%w: bad slippage %d", swapper.ErrInvalidRouteData, route.SlippageBps)
	}

	if quote.Quote.FromAddress == "" {
		return nil, swapper.ErrMissingFeePayer
	}
	payer, err := solana.PublicKeyFromBase58(quote.Quote.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: bad from address %q", swapper.ErrMissingFeePayer, quote.Quote.FromAddress)
	}

	fromAsset, _, err := parseSolanaAsset(quote.Quote.FromAsset)
	if err != nil {
		return nil, err
	}
	fromValue, err := parseAmount(quote.Quote.FromValue)
	if err != nil {
		return nil, err
	}
	if routeAmount > fromValue {
		return nil, fmt.Errorf("%w: routed amount exceeds input", swapper.ErrInvalidRouteData)
	}
	referralFee := fromValue - routeAmount

	pool, err := p.locator.PoolByAddress(ctx, poolAddress)
	if err != nil {
		return nil, err
	}

	epoch, err := p.accessor.GetEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch epoch: %w", err)
	}
	inInfo, err := p.resolver.Resolve(ctx, inputMint, epoch)
	if err != nil {
		return nil, err
	}

	swapQuote, err := p.engine.ComputeExactIn(ctx, pool, inInfo, epoch, routeAmount, slippage)
	if err != nil {
		return nil, err
	}
	swapIx, err := NewSwapInstruction(swapQuote, payer)
	if err != nil {
		return nil, err
	}

	var transfer *ReferralTransfer
	if referralFee > 0 && p.referrer != "" {
		referrer, err := solana.PublicKeyFromBase58(p.referrer)
		if err != nil {
			return nil, fmt.Errorf("invalid referrer address: %w", err)
		}
		transfer = &ReferralTransfer{
			Amount:   referralFee,
			Referrer: referrer,
			Native:   fromAsset.IsNative(),
			Mint:     inputMint,
			Program:  swapQuote.InputMint.Program,
		}
	}

	data, err := p.assembler.Assemble(ctx, payer, swapIx, transfer)
	if err != nil {
		return nil, err
	}

	return &swapper.QuoteData{
		To:       "",
		Value:    "0",
		Data:     data,
		DataType: swapper.DataTypeTransaction,
	}, nil
}

// parseSolanaAsset validates the asset id and maps it to a mint.
// Native SOL routes through the wrapped SOL mint.
func parseSolanaAsset(s string) (swapper.AssetID, solana.PublicKey, error) {
	asset, err := swapper.ParseAssetID(s)
	if err != nil {
		return swapper.AssetID{}, solana.PublicKey{}, err
	}
	if asset.Chain != swapper.ChainSolana {
		return swapper.AssetID{}, solana.PublicKey{}, fmt.Errorf("%w: chain %q", swapper.ErrUnsupportedAsset, asset.Chain)
	}
	if asset.IsNative() {
		return asset, constants.WSOLMint, nil
	}

	raw, err := base58.Decode(asset.TokenID)
	if err != nil || len(raw) != solana.PublicKeyLength {
		return swapper.AssetID{}, solana.PublicKey{}, fmt.Errorf("%w: bad token id %q", swapper.ErrUnsupportedAsset, asset.TokenID)
	}
	return asset, solana.PublicKeyFromBytes(raw), nil
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", swapper.ErrInvalidAmount, s)
	}
	return v, nil
}

func parseBps(v int) (uint16, error) {
	if v < 0 || v > constants.BasisPointsDenominator {
		return 0, fmt.Errorf("%w: bps %d", swapper.ErrInvalidAmount, v)
	}
	return uint16(v), nil
}
