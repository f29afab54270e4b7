package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const demoAPIKeyHeader = "x-cg-demo-api-key"

// CoinGeckoClient fetches USD quotes by contract address from the CoinGecko simple API.
type CoinGeckoClient struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGeckoClient. An empty apiKey uses the public tier.
func NewCoinGeckoClient(baseURL, apiKey, vsCurrency string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	return &CoinGeckoClient{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		vsCurrency: strings.ToLower(vsCurrency),
		timeout:    timeout,
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// GetTokenPrices requests quotes for all contracts in one call.
// The result is keyed by lowercased contract address; unpriced contracts are absent.
func (c *CoinGeckoClient) GetTokenPrices(ctx context.Context, platformID string, contractAddresses []string) (map[string]entity.PriceQuote, error) {
	if len(contractAddresses) == 0 {
		return map[string]entity.PriceQuote{}, nil
	}
	if platformID == "" {
		return nil, fmt.Errorf("platformID cannot be empty")
	}

	lowered := make([]string, len(contractAddresses))
	for i, addr := range contractAddresses {
		lowered[i] = strings.ToLower(addr)
	}

	query := url.Values{}
	query.Set("contract_addresses", strings.Join(lowered, ","))
	query.Set("vs_currencies", c.vsCurrency)
	requestURL := fmt.Sprintf("%s/simple/token_price/%s?%s", c.baseURL, url.PathEscape(platformID), query.Encode())

	c.logger.Debug("Requesting token prices from CoinGecko",
		zap.String("platform", platformID),
		zap.Int("tokenCount", len(lowered)))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(demoAPIKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko", zap.String("platform", platformID), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to CoinGecko: %w", err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko (with default timeout)", zap.String("platform", platformID), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to CoinGecko with default timeout: %w", err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("CoinGecko API request failed",
			zap.String("platform", platformID),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("CoinGecko API request failed with status %d", resp.StatusCode())
	}

	var quotes map[string]map[string]float64
	if err := json.Unmarshal(rawBody, &quotes); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("platform", platformID),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal CoinGecko response: %w", err)
	}

	prices := make(map[string]entity.PriceQuote, len(quotes))
	for addr, byCurrency := range quotes {
		price, ok := byCurrency[c.vsCurrency]
		if !ok {
			continue
		}
		prices[strings.ToLower(addr)] = entity.PriceQuote{Usd: price}
	}

	c.logger.Debug("Received token prices from CoinGecko",
		zap.String("platform", platformID),
		zap.Int("requested", len(lowered)),
		zap.Int("priced", len(prices)))
	return prices, nil
}

var _ port.PriceQuoteClient = (*CoinGeckoClient)(nil)
