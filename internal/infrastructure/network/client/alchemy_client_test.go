package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/logger"
	"portfolio_tracker/internal/pkg/testutil"
)

const (
	testWallet = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	testUSDC   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	testDAI    = "0x6b175474e89094c44da98b954eedeac495271d0f"
)

func newTestNetwork(fake *testutil.FakeAlchemy) entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:        1,
		Name:           "Test Network",
		Identifier:     "ethereum",
		RPCURLTemplate: fake.URLTemplate(),
	}
}

func TestAlchemyClient_GetTokenBalances(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()
	fake.SetBalances(testWallet, []entity.RawBalance{
		{ContractAddress: testUSDC, TokenBalance: "0x00000000000000000000000000000000000000000000000000000000000f4240"},
		{ContractAddress: testDAI, TokenBalance: "0x0"},
	})

	c, err := NewAlchemyClient(newTestNetwork(fake), "secret-key", nil, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	balances, err := c.GetTokenBalances(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, testUSDC, balances[0].ContractAddress)
	assert.Equal(t, "0x0", balances[1].TokenBalance)

	paths := fake.Paths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "/v2/secret-key", paths[0])
}

func TestAlchemyClient_GetTokenBalances_Empty(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()

	c, err := NewAlchemyClient(newTestNetwork(fake), "k", nil, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	balances, err := c.GetTokenBalances(context.Background(), testWallet)
	require.NoError(t, err)
	assert.NotNil(t, balances)
	assert.Empty(t, balances)
}

func TestAlchemyClient_GetTokenBalances_HTTPFailure(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()
	fake.FailBalances()

	c, err := NewAlchemyClient(newTestNetwork(fake), "k", nil, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetTokenBalances(context.Background(), testWallet)
	assert.Error(t, err)
}

func TestAlchemyClient_GetTokenMetadata_Batch(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()

	six := 6
	fake.SetMetadata(testUSDC, entity.TokenMetadata{Decimals: &six, Name: "USD Coin", Symbol: "USDC"})
	fake.FailMetadata(testDAI)
	unknown := "0x1111111111111111111111111111111111111111"

	c, err := NewAlchemyClient(newTestNetwork(fake), "k", nil, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	items, err := c.GetTokenMetadata(context.Background(), []string{testUSDC, testDAI, unknown})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, testUSDC, items[0].ContractAddress)
	assert.NoError(t, items[0].Error)
	require.NotNil(t, items[0].Metadata.Decimals)
	assert.Equal(t, 6, *items[0].Metadata.Decimals)
	assert.Equal(t, "USDC", items[0].Metadata.Symbol)

	assert.Error(t, items[1].Error)
	assert.Equal(t, entity.TokenMetadata{}, items[1].Metadata)

	// null fields decode to an empty record
	assert.NoError(t, items[2].Error)
	assert.Nil(t, items[2].Metadata.Decimals)
	assert.Empty(t, items[2].Metadata.Symbol)

	assert.Equal(t, int64(1), fake.Batches())
	assert.Equal(t, int64(3), fake.MaxBatchSize())
}

func TestAlchemyClient_GetTokenMetadata_NoAddresses(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()

	c, err := NewAlchemyClient(newTestNetwork(fake), "k", nil, time.Second)
	require.NoError(t, err)
	defer c.Close()

	items, err := c.GetTokenMetadata(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), fake.Batches())
}

func TestNewAlchemyClient_MissingTemplate(t *testing.T) {
	_, err := NewAlchemyClient(entity.NetworkDefinition{Identifier: "ethereum"}, "k", nil, time.Second)
	assert.Error(t, err)
}

func TestAlchemyClientProvider_ReusesClients(t *testing.T) {
	fake := testutil.NewFakeAlchemy()
	defer fake.Server.Close()

	p := NewAlchemyClientProvider(logger.NewNop(), time.Second)
	def := newTestNetwork(fake)

	first, err := p.GetClient(def, "key-a")
	require.NoError(t, err)
	second, err := p.GetClient(def, "key-a")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := p.GetClient(def, "key-b")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, "ethereum", other.Definition().Identifier)
}

func TestClientCacheKey_HidesCredential(t *testing.T) {
	key := clientCacheKey(entity.NetworkDefinition{Identifier: "polygon", RPCURLTemplate: "x/%s"}, "super-secret")
	assert.NotContains(t, key, "super-secret")
	assert.Contains(t, key, "polygon:")
}
