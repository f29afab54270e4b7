package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type mockPortfolioService struct {
	mock.Mock
}

func (m *mockPortfolioService) GetPortfolio(ctx context.Context, address string, chain string) (*entity.WalletPortfolio, error) {
	args := m.Called(ctx, address, chain)
	p, _ := args.Get(0).(*entity.WalletPortfolio)
	return p, args.Error(1)
}

func (m *mockPortfolioService) Networks() []port.NetworkStatus {
	args := m.Called()
	s, _ := args.Get(0).([]port.NetworkStatus)
	return s
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc port.PortfolioService) *gin.Engine {
	cfg := &configloader.Config{}
	return SetupRouter(NewPortfolioHandler(svc), cfg, zap.NewNop())
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetBalancesHandler_OK(t *testing.T) {
	svc := &mockPortfolioService{}
	svc.On("GetPortfolio", mock.Anything, "0xabc", "polygon").Return(&entity.WalletPortfolio{
		Address: "0xabc",
		Chain:   "polygon",
		Tokens: []entity.EnrichedToken{{
			ContractAddress: "0xt",
			TokenBalance:    "0x3e8",
			TokenMetadata:   entity.TokenMetadata{Symbol: "TKN"},
			Balance:         1000,
		}},
	}, nil)

	w := doGet(t, newTestRouter(svc), "/balances?address=0xabc&chain=polygon")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "0xabc", body["address"])
	assert.Equal(t, "polygon", body["chain"])
	tokens := body["tokens"].([]interface{})
	require.Len(t, tokens, 1)
	tok := tokens[0].(map[string]interface{})
	assert.Equal(t, "TKN", tok["symbol"])
	assert.Equal(t, 1000.0, tok["balance"])
	assert.Equal(t, 0.0, tok["usdPrice"])
	assert.Equal(t, 0.0, tok["usdValue"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestGetBalancesHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid input", entity.NewInvalidInputError("Missing or invalid address"), http.StatusBadRequest, "Missing or invalid address"},
		{"missing credential", entity.NewConfigurationError("Missing Alchemy API key for this chain"), http.StatusBadRequest, "Missing Alchemy API key for this chain"},
		{"upstream", entity.NewUpstreamError("Failed to fetch token balances", errors.New("dial tcp: timeout")), http.StatusBadGateway, "Failed to fetch token balances"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockPortfolioService{}
			svc.On("GetPortfolio", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			w := doGet(t, newTestRouter(svc), "/balances?address=x")
			assert.Equal(t, tc.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}

func TestGetBalancesHandler_V1Alias(t *testing.T) {
	svc := &mockPortfolioService{}
	svc.On("GetPortfolio", mock.Anything, "0xabc", "").Return(&entity.WalletPortfolio{Address: "0xabc", Chain: "ethereum", Tokens: []entity.EnrichedToken{}}, nil)

	w := doGet(t, newTestRouter(svc), "/api/v1/balances?address=0xabc")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetNetworksHandler(t *testing.T) {
	svc := &mockPortfolioService{}
	svc.On("Networks").Return([]port.NetworkStatus{
		{NetworkDefinition: entity.NetworkDefinition{ChainID: 1, Identifier: "ethereum", PriceLookup: true}, Configured: true, Default: true},
	})

	w := doGet(t, newTestRouter(svc), "/networks")
	require.Equal(t, http.StatusOK, w.Code)

	var body NetworksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Networks, 1)
	assert.Equal(t, "ethereum", body.Networks[0].Identifier)
	assert.True(t, body.Networks[0].Configured)
	assert.True(t, body.Networks[0].PriceLookup)
	assert.NotContains(t, w.Body.String(), "rpcUrlTemplate")
}

func TestHealthzAndMetrics(t *testing.T) {
	router := newTestRouter(&mockPortfolioService{})

	w := doGet(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doGet(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(&mockPortfolioService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
