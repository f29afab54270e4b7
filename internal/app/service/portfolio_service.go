package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/pkg/metrics"
	"portfolio_tracker/internal/pkg/utils"
)

const (
	msgInvalidAddress = "Missing or invalid address"
	msgMissingAPIKey  = "Missing Alchemy API key for this chain"
	msgClientInit     = "Failed to initialize data provider client for this chain"
	msgBalancesFailed = "Failed to fetch token balances"
)

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	networkProvider       port.NetworkDefinitionProvider
	clientProvider        port.BlockchainClientProvider
	priceClient           port.PriceQuoteClient
	providerCfg           entity.ProviderConfig
	logger                port.Logger
	maxConcurrentRequests int
	metadataBatchSize     int
	requestTimeout        time.Duration
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	np port.NetworkDefinitionProvider,
	cp port.BlockchainClientProvider,
	pc port.PriceQuoteClient,
	providerCfg entity.ProviderConfig,
	l port.Logger,
	cfg configloader.PortfolioServiceConfig,
) *PortfolioServiceImpl {
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 1
	}
	if cfg.MetadataBatchSize <= 0 {
		cfg.MetadataBatchSize = 25
	}
	return &PortfolioServiceImpl{
		networkProvider:       np,
		clientProvider:        cp,
		priceClient:           pc,
		providerCfg:           providerCfg,
		logger:                l,
		maxConcurrentRequests: cfg.MaxConcurrentRequests,
		metadataBatchSize:     cfg.MetadataBatchSize,
		requestTimeout:        time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
	}
}

// nonZeroBalance is a RawBalance that survived zero filtering.
type nonZeroBalance struct {
	raw   entity.RawBalance
	value *big.Int
}

// GetPortfolio returns the non-zero token holdings of address on the network resolved from chain.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, address string, chain string) (*entity.WalletPortfolio, error) {
	started := time.Now()
	address = strings.TrimSpace(address)
	if address == "" || !common.IsHexAddress(address) {
		metrics.PortfolioRequests.WithLabelValues("", "invalid_input").Inc()
		return nil, entity.NewInvalidInputError(msgInvalidAddress)
	}

	netDef := s.networkProvider.Resolve(chain)
	log := s.logger.With("address", address, "network", netDef.Identifier)
	defer func() {
		metrics.PortfolioDuration.WithLabelValues(netDef.Identifier).Observe(time.Since(started).Seconds())
	}()

	apiKey, ok := s.providerCfg.APIKey(netDef.Identifier)
	if !ok {
		log.Warn("No data provider credential configured for network")
		metrics.PortfolioRequests.WithLabelValues(netDef.Identifier, "configuration_error").Inc()
		return nil, entity.NewConfigurationError(msgMissingAPIKey)
	}

	client, err := s.clientProvider.GetClient(netDef, apiKey)
	if err != nil {
		log.Error("Failed to get blockchain client", "error", err)
		metrics.PortfolioRequests.WithLabelValues(netDef.Identifier, "configuration_error").Inc()
		return nil, &entity.PortfolioError{Kind: entity.ErrConfiguration, Message: msgClientInit, Cause: err}
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	rawBalances, err := client.GetTokenBalances(ctx, address)
	if err != nil {
		log.Error("Failed to fetch token balances", "error", err)
		metrics.UpstreamFailures.WithLabelValues("alchemy", "getTokenBalances").Inc()
		metrics.PortfolioRequests.WithLabelValues(netDef.Identifier, "upstream_error").Inc()
		return nil, entity.NewUpstreamError(msgBalancesFailed, err)
	}

	holdings := s.filterNonZero(log, rawBalances)
	log.Debug("Filtered raw balances", "reported", len(rawBalances), "non_zero", len(holdings))

	contracts := make([]string, len(holdings))
	for i, h := range holdings {
		contracts[i] = h.raw.ContractAddress
	}

	metadata := s.fetchMetadata(ctx, log, client, contracts)

	tokens := make([]entity.EnrichedToken, 0, len(holdings))
	for _, h := range holdings {
		md := metadata[strings.ToLower(h.raw.ContractAddress)]
		token := entity.EnrichedToken{
			ContractAddress: h.raw.ContractAddress,
			TokenBalance:    h.raw.TokenBalance,
			TokenMetadata:   md,
			Balance:         utils.ScaleBalance(h.value, md.Decimals),
		}
		if md.Decimals != nil && *md.Decimals > 0 && *md.Decimals <= 255 {
			log.Debug("Token balance", "contract", token.ContractAddress, "symbol", md.Symbol,
				"amount", utils.FormatBigInt(h.value, uint8(*md.Decimals)))
		}
		tokens = append(tokens, token)
	}

	if netDef.PriceLookup && len(tokens) > 0 {
		s.attachPrices(ctx, log, netDef, tokens, contracts)
	}

	metrics.PortfolioRequests.WithLabelValues(netDef.Identifier, "ok").Inc()
	metrics.PortfolioTokens.Observe(float64(len(tokens)))
	log.Info("Portfolio aggregated", "tokens", len(tokens))

	return &entity.WalletPortfolio{
		Address: address,
		Chain:   netDef.Identifier,
		Tokens:  tokens,
	}, nil
}

// filterNonZero drops zero sentinels, provider-flagged entries, and anything that does not parse to a positive integer.
func (s *PortfolioServiceImpl) filterNonZero(log port.Logger, rawBalances []entity.RawBalance) []nonZeroBalance {
	holdings := make([]nonZeroBalance, 0, len(rawBalances))
	for _, rb := range rawBalances {
		if rb.IsZeroSentinel() {
			continue
		}
		if rb.Error != "" {
			log.Debug("Provider reported balance error, skipping", "contract", rb.ContractAddress, "error", rb.Error)
			continue
		}
		value, err := utils.ParseHexBalance(rb.TokenBalance)
		if err != nil {
			log.Warn("Unparsable token balance, skipping", "contract", rb.ContractAddress, "balance", rb.TokenBalance, "error", err)
			continue
		}
		if value.Sign() == 0 {
			continue
		}
		holdings = append(holdings, nonZeroBalance{raw: rb, value: value})
	}
	return holdings
}

// fetchMetadata looks up metadata in batches of metadataBatchSize with at most maxConcurrentRequests
// batches in flight. Contracts whose lookup failed are absent from the result.
func (s *PortfolioServiceImpl) fetchMetadata(ctx context.Context, log port.Logger, client port.BlockchainDataClient, contracts []string) map[string]entity.TokenMetadata {
	result := make(map[string]entity.TokenMetadata, len(contracts))
	if len(contracts) == 0 {
		return result
	}

	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(s.maxConcurrentRequests)

	for _, batch := range utils.BatchStrings(contracts, s.metadataBatchSize) {
		eg.Go(func() error {
			metrics.MetadataBatches.Inc()
			items, err := client.GetTokenMetadata(ctx, batch)
			if err != nil {
				log.Warn("Metadata batch failed, continuing with empty metadata", "batch_size", len(batch), "error", err)
				metrics.UpstreamFailures.WithLabelValues("alchemy", "getTokenMetadata").Inc()
				metrics.MetadataDegraded.Add(float64(len(batch)))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, item := range items {
				if item.Error != nil {
					log.Debug("Metadata lookup failed", "contract", item.ContractAddress, "error", item.Error)
					metrics.MetadataDegraded.Inc()
					continue
				}
				result[strings.ToLower(item.ContractAddress)] = item.Metadata
			}
			return nil
		})
	}

	_ = eg.Wait()
	return result
}

// attachPrices sets UsdPrice and UsdValue in place. A failed quote call leaves every price at zero.
func (s *PortfolioServiceImpl) attachPrices(ctx context.Context, log port.Logger, netDef entity.NetworkDefinition, tokens []entity.EnrichedToken, contracts []string) {
	prices, err := s.priceClient.GetTokenPrices(ctx, netDef.PricePlatformID, contracts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Price lookup cancelled", "error", err)
		} else {
			log.Warn("Price lookup failed, returning zero prices", "error", err)
		}
		metrics.UpstreamFailures.WithLabelValues("coingecko", "simpleTokenPrice").Inc()
		metrics.PriceDegraded.Inc()
		return
	}

	for i := range tokens {
		quote, ok := prices[strings.ToLower(tokens[i].ContractAddress)]
		if !ok {
			continue
		}
		tokens[i].UsdPrice = quote.Usd
		tokens[i].UsdValue = tokens[i].Balance * quote.Usd
	}
}

// Networks lists the supported networks with their credential status.
func (s *PortfolioServiceImpl) Networks() []port.NetworkStatus {
	defs := s.networkProvider.GetAllNetworkDefinitions()
	defaultID := s.networkProvider.Resolve("").Identifier

	statuses := make([]port.NetworkStatus, 0, len(defs))
	for _, def := range defs {
		_, configured := s.providerCfg.APIKey(def.Identifier)
		statuses = append(statuses, port.NetworkStatus{
			NetworkDefinition: def,
			Configured:        configured,
			Default:           def.Identifier == defaultID,
		})
	}
	return statuses
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)
