package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
)

// ProviderName is the registry key of the Jupiter aggregator adapter.
const ProviderName = "jupiter"

const etaSeconds = 5

// Provider routes quotes through the Jupiter aggregator API. The
// aggregator's quote response travels as opaque route data between the
// two phases.
type Provider struct {
	client *Client
	logger *logrus.Logger
}

func NewProvider(client *Client, logger *logrus.Logger) *Provider {
	if logger == nil {
		logger = logrus.New()
	}
	return &Provider{client: client, logger: logger}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) GetQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.Quote, error) {
	inputMint, err := assetToMint(req.FromAsset)
	if err != nil {
		return nil, err
	}
	outputMint, err := assetToMint(req.ToAsset)
	if err != nil {
		return nil, err
	}
	if _, err := strconv.ParseUint(req.FromValue, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: %q", swapper.ErrInvalidAmount, req.FromValue)
	}
	if req.SlippageBps < 0 || req.SlippageBps > constants.BasisPointsDenominator {
		return nil, fmt.Errorf("%w: slippage %d", swapper.ErrInvalidAmount, req.SlippageBps)
	}

	slippage := uint16(req.SlippageBps)
	quoteReq := QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      req.FromValue,
		SlippageBps: &slippage,
		SwapMode:    "ExactIn",
	}
	if req.ReferralBps > 0 {
		bps := uint16(req.ReferralBps)
		quoteReq.PlatformFeeBps = &bps
	}

	resp, err := p.client.Quote(ctx, quoteReq)
	if err != nil {
		return nil, mapClientError(err)
	}

	route, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode route data: %w", err)
	}

	return &swapper.Quote{
		Quote:          req,
		OutputValue:    resp.OutAmount,
		OutputMinValue: resp.OtherAmountThreshold,
		EtaInSeconds:   etaSeconds,
		RouteData:      route,
	}, nil
}

func (p *Provider) GetQuoteData(ctx context.Context, quote swapper.Quote) (*swapper.QuoteData, error) {
	if len(quote.RouteData) == 0 {
		return nil, fmt.Errorf("%w: empty route data", swapper.ErrInvalidRouteData)
	}
	var check QuoteResponse
	if err := json.Unmarshal(quote.RouteData, &check); err != nil || check.OutAmount == "" {
		return nil, fmt.Errorf("%w: not a jupiter route", swapper.ErrInvalidRouteData)
	}
	if strings.TrimSpace(quote.Quote.FromAddress) == "" {
		return nil, swapper.ErrMissingFeePayer
	}

	resp, err := p.client.Swap(ctx, SwapRequest{
		UserPublicKey:           quote.Quote.FromAddress,
		QuoteResponse:           quote.RouteData,
		WrapAndUnwrapSol:        true,
		DynamicComputeUnitLimit: true,
	})
	if err != nil {
		return nil, mapClientError(err)
	}

	return &swapper.QuoteData{
		To:       "",
		Value:    "0",
		Data:     resp.SwapTransaction,
		DataType: swapper.DataTypeTransaction,
	}, nil
}

func assetToMint(s string) (string, error) {
	asset, err := swapper.ParseAssetID(s)
	if err != nil {
		return "", err
	}
	if asset.Chain != swapper.ChainSolana {
		return "", fmt.Errorf("%w: chain %q", swapper.ErrUnsupportedAsset, asset.Chain)
	}
	if asset.IsNative() {
		return constants.WSOLMint.String(), nil
	}
	return asset.TokenID, nil
}

// mapClientError translates aggregator HTTP failures into the shared
// error taxonomy.
func mapClientError(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", swapper.ErrInvalidAmount, err)
		case httpErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %v", swapper.ErrNoLiquidityFound, err)
		default:
			return fmt.Errorf("%w: %v", swapper.ErrQuoteComputationFailed, err)
		}
	}
	return err
}
