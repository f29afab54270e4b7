package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/domain/entity"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: \"9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "ethereum", cfg.Alchemy.DefaultNetwork)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "usd", cfg.CoinGecko.VsCurrency)
	assert.Equal(t, 4, cfg.PortfolioService.MaxConcurrentRequests)
	assert.Equal(t, 25, cfg.PortfolioService.MetadataBatchSize)
	assert.Equal(t, "/swagger", cfg.Swagger.Path)
}

func TestParseRejectsBadOverride(t *testing.T) {
	_, err := Parse([]byte(`
alchemy:
  networks:
    - identifier: polygon
      rpcUrlTemplate: "http://localhost/no-placeholder"
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("alchemy:\n  defaultNetwork: sepolia\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", cfg.Alchemy.DefaultNetwork)
}

func TestProviderConfigPrecedence(t *testing.T) {
	cfg, err := Parse([]byte(`
alchemy:
  apiKeys:
    polygon: yaml-polygon
    optimism: yaml-optimism
`))
	require.NoError(t, err)

	networks := []entity.NetworkDefinition{
		{Identifier: "ethereum"},
		{Identifier: "polygon"},
		{Identifier: "optimism"},
	}
	env := map[string]string{
		"ALCHEMY_API_KEY_POLYGON": "env-polygon",
		"ALCHEMY_API_KEY":         "shared",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	pc := cfg.ProviderConfig(networks, lookup)

	key, ok := pc.APIKey("polygon")
	assert.True(t, ok)
	assert.Equal(t, "env-polygon", key)

	key, ok = pc.APIKey("optimism")
	assert.True(t, ok)
	assert.Equal(t, "yaml-optimism", key)

	key, ok = pc.APIKey("ethereum")
	assert.True(t, ok)
	assert.Equal(t, "shared", key)

	assert.Equal(t, "ethereum", pc.DefaultNetwork)
}

func TestProviderConfigWithoutKeys(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	pc := cfg.ProviderConfig([]entity.NetworkDefinition{{Identifier: "ethereum"}}, func(string) (string, bool) { return "", false })
	_, ok := pc.APIKey("ethereum")
	assert.False(t, ok)
}
