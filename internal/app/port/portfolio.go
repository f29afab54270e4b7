package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// PortfolioService defines the interface of the balance aggregator.
type PortfolioService interface {
	// GetPortfolio returns the enriched, unordered token holdings of address on chain.
	GetPortfolio(ctx context.Context, address string, chain string) (*entity.WalletPortfolio, error)

	// Networks lists the supported networks and whether a credential is configured for each.
	Networks() []NetworkStatus
}

// NetworkStatus describes a supported network for API consumers.
type NetworkStatus struct {
	entity.NetworkDefinition
	Configured bool `json:"configured"`
	Default    bool `json:"default"`
}
