package referral

import "github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"

// DefaultFeeBps is the integrator fee applied when the caller does not
// override referral_bps.
const DefaultFeeBps = 50

// addresses maps chain id to the referrer account that collects fees.
var addresses = map[string]string{
	swapper.ChainSolana: "5fmLrs2GuhfDP1B51ziV5Kd1xtAr9rw1jf3aQ4ihZ2gy",
}

// AddressFor returns the referrer address for the given chain, or "" when
// no referrer is configured for it.
func AddressFor(chain string) string {
	return addresses[chain]
}
