package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

const (
	methodGetTokenBalances = "alchemy_getTokenBalances"
	methodGetTokenMetadata = "alchemy_getTokenMetadata"
)

// AlchemyClient implements port.BlockchainDataClient against an Alchemy-style JSON-RPC endpoint.
type AlchemyClient struct {
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

type tokenBalancesResult struct {
	Address       string              `json:"address"`
	TokenBalances []entity.RawBalance `json:"tokenBalances"`
}

// NewAlchemyClient creates a client for the given network definition and API key.
// The HTTP transport dials lazily, so no request is made here.
func NewAlchemyClient(netDef entity.NetworkDefinition, apiKey string, httpClient *http.Client, rpcCallTimeout time.Duration) (*AlchemyClient, error) {
	if netDef.RPCURLTemplate == "" {
		return nil, fmt.Errorf("network %s has no RPC URL template", netDef.Identifier)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	endpoint := fmt.Sprintf(netDef.RPCURLTemplate, apiKey)
	rpcClient, err := rpc.DialOptions(context.Background(), endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client for network %s: %w", netDef.Name, err)
	}
	return &AlchemyClient{rpcClient: rpcClient, netDef: netDef, rpcCallTimeout: rpcCallTimeout}, nil
}

// GetTokenBalances returns the ERC-20 balances the provider reports for walletAddress.
func (c *AlchemyClient) GetTokenBalances(ctx context.Context, walletAddress string) ([]entity.RawBalance, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var result tokenBalancesResult
	if err := c.rpcClient.CallContext(callCtx, &result, methodGetTokenBalances, common.HexToAddress(walletAddress)); err != nil {
		return nil, fmt.Errorf("%s failed on %s: %w", methodGetTokenBalances, c.netDef.Identifier, err)
	}
	if result.TokenBalances == nil {
		return []entity.RawBalance{}, nil
	}
	return result.TokenBalances, nil
}

// GetTokenMetadata fetches metadata for all contracts in a single JSON-RPC batch.
// The returned error is set only when the batch as a whole could not be executed.
func (c *AlchemyClient) GetTokenMetadata(ctx context.Context, contractAddresses []string) ([]entity.MetadataResultItem, error) {
	if len(contractAddresses) == 0 {
		return []entity.MetadataResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, len(contractAddresses))
	results := make([]entity.MetadataResultItem, len(contractAddresses))
	for i, addr := range contractAddresses {
		results[i] = entity.MetadataResultItem{ContractAddress: addr}
		batchElems[i] = rpc.BatchElem{
			Method: methodGetTokenMetadata,
			Args:   []interface{}{addr},
			Result: new(entity.TokenMetadata),
		}
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.rpcClient.BatchCallContext(callCtx, batchElems); err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for i, elem := range batchElems {
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch metadata for %s: %w", contractAddresses[i], elem.Error)
			continue
		}
		if md, ok := elem.Result.(*entity.TokenMetadata); ok && md != nil {
			results[i].Metadata = *md
		}
	}
	return results, nil
}

// Definition returns the network definition for this client.
func (c *AlchemyClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC client.
func (c *AlchemyClient) Close() {
	c.rpcClient.Close()
}

func (c *AlchemyClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.rpcCallTimeout)
}

var _ port.BlockchainDataClient = (*AlchemyClient)(nil)
