package client

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

const (
	defaultClientIdleTTL     = 30 * time.Minute
	defaultClientSweepPeriod = 5 * time.Minute
)

// alchemyClientProvider implements port.BlockchainClientProvider.
// RPC clients are reused per (network, credential) and closed after sitting idle.
type alchemyClientProvider struct {
	clients        *gocache.Cache
	mu             sync.Mutex
	logger         port.Logger
	httpClient     *http.Client
	rpcCallTimeout time.Duration
}

// NewAlchemyClientProvider creates a new client provider.
func NewAlchemyClientProvider(logger port.Logger, rpcCallTimeout time.Duration) port.BlockchainClientProvider {
	clients := gocache.New(defaultClientIdleTTL, defaultClientSweepPeriod)
	clients.OnEvicted(func(key string, v interface{}) {
		if c, ok := v.(*AlchemyClient); ok {
			c.Close()
			logger.Debug("Closed idle RPC client", "network", c.Definition().Identifier)
		}
	})

	return &alchemyClientProvider{
		clients:        clients,
		logger:         logger,
		httpClient:     &http.Client{Timeout: rpcCallTimeout},
		rpcCallTimeout: rpcCallTimeout,
	}
}

// GetClient returns a data client for the network, creating it on first use.
func (p *alchemyClientProvider) GetClient(netDef entity.NetworkDefinition, apiKey string) (port.BlockchainDataClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := clientCacheKey(netDef, apiKey)
	if cached, found := p.clients.Get(clientKey); found {
		// touch so the idle timer restarts
		p.clients.SetDefault(clientKey, cached)
		return cached.(*AlchemyClient), nil
	}

	p.logger.Info("Creating new RPC client", "network", netDef.Identifier)
	newClient, err := NewAlchemyClient(netDef, apiKey, p.httpClient, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create RPC client", "network", netDef.Identifier, "error", err)
		return nil, fmt.Errorf("failed to create RPC client for %s: %w", netDef.Identifier, err)
	}

	p.clients.SetDefault(clientKey, newClient)
	return newClient, nil
}

// clientCacheKey avoids keeping raw credentials as map keys.
func clientCacheKey(netDef entity.NetworkDefinition, apiKey string) string {
	sum := sha256.Sum256([]byte(netDef.RPCURLTemplate + "|" + apiKey))
	return netDef.Identifier + ":" + hex.EncodeToString(sum[:8])
}
