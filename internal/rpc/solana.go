package rpc

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account is a decoded on-chain account. A nil *Account means the
// address does not exist on chain.
type Account struct {
	Owner    solana.PublicKey
	Data     []byte
	Lamports uint64
}

// BlockRef identifies a recent block used to anchor a transaction.
type BlockRef struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type accountValue struct {
	Owner    string   `json:"owner"`
	Data     []string `json:"data"`
	Lamports uint64   `json:"lamports"`
}

func decodeAccountValue(v *accountValue) (*Account, error) {
	if v == nil {
		return nil, nil
	}
	owner, err := solana.PublicKeyFromBase58(v.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid account owner: %w", err)
	}
	if len(v.Data) < 1 {
		return nil, fmt.Errorf("account data missing")
	}
	raw, err := base64.StdEncoding.DecodeString(v.Data[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}
	return &Account{Owner: owner, Data: raw, Lamports: v.Lamports}, nil
}

// GetAccountInfo fetches a single account. Returns nil when the account
// does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*Account, error) {
	var resp struct {
		Result struct {
			Value *accountValue `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{
		address.String(),
		map[string]interface{}{"encoding": "base64", "commitment": "confirmed"},
	}
	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return decodeAccountValue(resp.Result.Value)
}

// GetMultipleAccounts fetches a batch of accounts in one round trip.
// The returned slice matches the input order; missing accounts are nil.
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*Account, error) {
	keys := make([]string, len(addresses))
	for i, a := range addresses {
		keys[i] = a.String()
	}

	var resp struct {
		Result struct {
			Value []*accountValue `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{
		keys,
		map[string]interface{}{"encoding": "base64", "commitment": "confirmed"},
	}
	if err := c.Call(ctx, "getMultipleAccounts", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if len(resp.Result.Value) != len(addresses) {
		return nil, fmt.Errorf("expected %d accounts, got %d", len(addresses), len(resp.Result.Value))
	}

	accounts := make([]*Account, len(addresses))
	for i, v := range resp.Result.Value {
		acc, err := decodeAccountValue(v)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", keys[i], err)
		}
		accounts[i] = acc
	}
	return accounts, nil
}

// GetLatestBlockhash fetches the most recent blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*BlockRef, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{map[string]interface{}{"commitment": "confirmed"}}
	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("invalid blockhash: %w", err)
	}
	return &BlockRef{
		Blockhash:            hash,
		LastValidBlockHeight: resp.Result.Value.LastValidBlockHeight,
	}, nil
}

// GetRecentPrioritizationFees returns per-compute-unit priority fee
// samples from recent slots.
func (c *Client) GetRecentPrioritizationFees(ctx context.Context) ([]uint64, error) {
	var resp struct {
		Result []struct {
			Slot              uint64 `json:"slot"`
			PrioritizationFee uint64 `json:"prioritizationFee"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	if err := c.Call(ctx, "getRecentPrioritizationFees", []interface{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	fees := make([]uint64, 0, len(resp.Result))
	for _, r := range resp.Result {
		fees = append(fees, r.PrioritizationFee)
	}
	return fees, nil
}

// GetEpoch returns the current epoch number.
func (c *Client) GetEpoch(ctx context.Context) (uint64, error) {
	var resp struct {
		Result struct {
			Epoch uint64 `json:"epoch"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	if err := c.Call(ctx, "getEpochInfo", []interface{}{}, &resp); err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	return resp.Result.Epoch, nil
}
