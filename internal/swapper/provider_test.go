package swapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GetQuote(context.Context, QuoteRequest) (*Quote, error) {
	return &Quote{}, nil
}

func (s *stubProvider) GetQuoteData(context.Context, Quote) (*QuoteData, error) {
	return &QuoteData{}, nil
}

func TestRegistryGet(t *testing.T) {
	orca := &stubProvider{name: "orca_whirlpool"}
	registry := NewRegistry(orca, &stubProvider{name: "jupiter"})

	p, err := registry.Get("orca_whirlpool")
	require.NoError(t, err)
	assert.Same(t, orca, p)

	_, err = registry.Get("unknown")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry(
		&stubProvider{name: "orca_whirlpool"},
		&stubProvider{name: "jupiter"},
	)
	assert.Equal(t, []string{"jupiter", "orca_whirlpool"}, registry.Names())
}
