package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// PriceQuoteClient defines the interface for the USD quote provider.
type PriceQuoteClient interface {
	// GetTokenPrices returns quotes keyed by lowercased contract address. Unpriced contracts are absent.
	GetTokenPrices(ctx context.Context, platformID string, contractAddresses []string) (map[string]entity.PriceQuote, error)
}
