package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"portfolio_tracker/internal/domain/entity"
)

// FakeCoinGecko serves /simple/token_price/{platform}.
type FakeCoinGecko struct {
	Server *httptest.Server

	mu       sync.Mutex
	prices   map[string]map[string]float64
	status   int
	requests []*http.Request
}

// NewFakeCoinGecko starts a fake quote provider. Close it with f.Server.Close().
func NewFakeCoinGecko() *FakeCoinGecko {
	f := &FakeCoinGecko{prices: make(map[string]map[string]float64), status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	return f
}

// SetPrice registers a USD price for a contract on a platform.
func (f *FakeCoinGecko) SetPrice(platform, contract string, usd float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prices[platform] == nil {
		f.prices[platform] = make(map[string]float64)
	}
	f.prices[platform][strings.ToLower(contract)] = usd
}

// SetStatus forces the HTTP status of subsequent responses.
func (f *FakeCoinGecko) SetStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Requests returns the requests received so far.
func (f *FakeCoinGecko) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *FakeCoinGecko) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Clone(r.Context()))

	if f.status != http.StatusOK {
		http.Error(w, `{"error":"rate limited"}`, f.status)
		return
	}

	const prefix = "/simple/token_price/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	platform := strings.TrimPrefix(r.URL.Path, prefix)

	out := make(map[string]entity.PriceQuote)
	for _, addr := range strings.Split(r.URL.Query().Get("contract_addresses"), ",") {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if price, ok := f.prices[platform][addr]; ok {
			out[addr] = entity.PriceQuote{Usd: price}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
