package swapper

import (
	"context"
	"fmt"
	"sort"
)

// Provider is the two-phase quote contract every adapter implements.
// GetQuote prices the conversion; GetQuoteData turns an accepted Quote into
// a ready-to-sign transaction payload. Both calls are terminal on failure:
// there is no retry state, the caller re-invokes GetQuote for fresh inputs.
type Provider interface {
	Name() string
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
	GetQuoteData(ctx context.Context, quote Quote) (*QuoteData, error)
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry with the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
