package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// BlockchainDataClient defines the interface for the token-balance and token-metadata provider
// of a single network.
type BlockchainDataClient interface {
	// GetTokenBalances returns every per-contract balance the provider reports for the wallet.
	GetTokenBalances(ctx context.Context, walletAddress string) ([]entity.RawBalance, error)

	// GetTokenMetadata fetches metadata for the given contracts in one batch.
	// Per-contract failures are reported in the result items, not as the returned error.
	GetTokenMetadata(ctx context.Context, contractAddresses []string) ([]entity.MetadataResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider defines the interface for resolving supported networks.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all supported network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a network definition by its identifier.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)

	// Resolve maps a requested chain name onto a supported network, falling back to the default network.
	Resolve(chain string) entity.NetworkDefinition
}

// BlockchainClientProvider defines the interface for obtaining data clients per network.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition, apiKey string) (BlockchainDataClient, error)
}
