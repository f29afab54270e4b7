package view

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from the balances endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("balances request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Fetcher calls the balances endpoint of a portfolio tracker server.
type Fetcher struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher for the server at baseURL.
func NewFetcher(baseURL string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("Fetcher"),
	}
}

// Fetch executes req. A context cancelled while the call was in flight wins over its result.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("address", req.Address)
	if req.Chain != "" {
		query.Set("chain", req.Chain)
	}
	requestURL := f.baseURL + "/balances?" + query.Encode()

	httpReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(httpReq)
	httpReq.SetRequestURI(requestURL)
	httpReq.Header.SetMethod(fasthttp.MethodGet)
	httpReq.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	f.logger.Debug("Fetching portfolio", zap.String("address", req.Address), zap.String("chain", req.Chain), zap.Uint64("generation", req.Generation))

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = f.client.DoDeadline(httpReq, resp, deadline)
	} else {
		err = f.client.DoTimeout(httpReq, resp, f.timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		f.logger.Error("Balances request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to reach portfolio server: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		f.logger.Warn("Balances request rejected", zap.Int("statusCode", resp.StatusCode()), zap.String("error", apiErr.Error))
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}

	var portfolio Portfolio
	if err := json.Unmarshal(body, &portfolio); err != nil {
		f.logger.Error("Failed to decode balances response", zap.ByteString("responseBody", body), zap.Error(err))
		return nil, fmt.Errorf("failed to decode balances response: %w", err)
	}
	if portfolio.Tokens == nil {
		portfolio.Tokens = []Token{}
	}
	return &portfolio, nil
}

// Networks returns the identifiers of the networks the server supports, in server order.
func (f *Fetcher) Networks(ctx context.Context) ([]string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(f.baseURL + "/networks")
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = f.client.DoDeadline(req, resp, deadline)
	} else {
		err = f.client.DoTimeout(req, resp, f.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reach portfolio server: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode()}
	}

	var body struct {
		Networks []struct {
			Identifier string `json:"identifier"`
		} `json:"networks"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode networks response: %w", err)
	}

	ids := make([]string, 0, len(body.Networks))
	for _, n := range body.Networks {
		ids = append(ids, n.Identifier)
	}
	return ids, nil
}
