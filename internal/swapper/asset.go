package swapper

import (
	"fmt"
	"strings"
)

// Chain identifiers as they appear in asset ids
const (
	ChainSolana = "solana"
)

// AssetID identifies an asset as a chain plus an optional token id.
// An empty TokenID means the chain's native asset.
type AssetID struct {
	Chain   string
	TokenID string
}

// ParseAssetID parses the "<chain>" or "<chain>_<tokenId>" wire form.
func ParseAssetID(s string) (AssetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AssetID{}, fmt.Errorf("%w: empty asset id", ErrUnsupportedAsset)
	}
	chain, tokenID, _ := strings.Cut(s, "_")
	if chain == "" {
		return AssetID{}, fmt.Errorf("%w: invalid asset id %q", ErrUnsupportedAsset, s)
	}
	return AssetID{Chain: chain, TokenID: tokenID}, nil
}

// IsNative reports whether the asset is the chain's native currency.
func (a AssetID) IsNative() bool {
	return a.TokenID == ""
}

func (a AssetID) String() string {
	if a.TokenID == "" {
		return a.Chain
	}
	return a.Chain + "_" + a.TokenID
}

// Equals compares by (chain, tokenId).
func (a AssetID) Equals(other AssetID) bool {
	return a.Chain == other.Chain && a.TokenID == other.TokenID
}
