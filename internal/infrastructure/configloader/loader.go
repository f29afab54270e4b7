package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"portfolio_tracker/internal/domain/entity"
)

const (
	// SharedAPIKeyEnv is consulted when no network-specific key is set.
	SharedAPIKeyEnv = "ALCHEMY_API_KEY"
	// NetworkAPIKeyEnvPrefix + "_" + upper(identifier), e.g. ALCHEMY_API_KEY_POLYGON.
	NetworkAPIKeyEnvPrefix = "ALCHEMY_API_KEY"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  int      `yaml:"readTimeout"`
	WriteTimeout int      `yaml:"writeTimeout"`
	IdleTimeout  int      `yaml:"idleTimeout"`
	AllowOrigins []string `yaml:"allowOrigins"`
	EnablePprof  bool     `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AlchemyConfig holds the blockchain data provider configuration.
type AlchemyConfig struct {
	APIKeys              map[string]string `yaml:"apiKeys"`
	DefaultNetwork       string            `yaml:"defaultNetwork"`
	RequestTimeoutMillis int64             `yaml:"requestTimeoutMillis"`
	Networks             []NetworkOverride `yaml:"networks"`
}

// NetworkOverride patches a built-in network definition, e.g. to point it at a proxy
// or to enable price lookup on an L2 whose platform the quote provider lists.
type NetworkOverride struct {
	Identifier      string `yaml:"identifier"`
	RPCURLTemplate  string `yaml:"rpcUrlTemplate"`
	PriceLookup     *bool  `yaml:"priceLookup"`
	PricePlatformID string `yaml:"pricePlatformId"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	VsCurrency           string `yaml:"vsCurrency"`
}

// PortfolioServiceConfig holds configuration for the balance aggregator.
type PortfolioServiceConfig struct {
	MaxConcurrentRequests int   `yaml:"maxConcurrentRequests"`
	MetadataBatchSize     int   `yaml:"metadataBatchSize"`
	RequestTimeoutMillis  int64 `yaml:"requestTimeoutMillis"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Logging          LoggingConfig          `yaml:"logging"`
	Alchemy          AlchemyConfig          `yaml:"alchemy"`
	CoinGecko        CoinGeckoConfig        `yaml:"coingecko"`
	PortfolioService PortfolioServiceConfig `yaml:"portfolioService"`
	Swagger          SwaggerConfig          `yaml:"swagger"`
}

// Load reads the YAML configuration file from the given path, unmarshals it and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals raw YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Alchemy.DefaultNetwork == "" {
		c.Alchemy.DefaultNetwork = "ethereum"
		logrus.Infof("Alchemy.DefaultNetwork not set, defaulting to %s", c.Alchemy.DefaultNetwork)
	}
	if c.Alchemy.RequestTimeoutMillis <= 0 {
		c.Alchemy.RequestTimeoutMillis = 10000
	}

	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", c.CoinGecko.BaseURL)
	}
	if c.CoinGecko.RequestTimeoutMillis <= 0 {
		c.CoinGecko.RequestTimeoutMillis = 10000
	}
	if c.CoinGecko.VsCurrency == "" {
		c.CoinGecko.VsCurrency = "usd"
	}

	if c.PortfolioService.MaxConcurrentRequests <= 0 {
		c.PortfolioService.MaxConcurrentRequests = 4
		logrus.Infof("PortfolioService.MaxConcurrentRequests not set, defaulting to %d", c.PortfolioService.MaxConcurrentRequests)
	}
	if c.PortfolioService.MetadataBatchSize <= 0 {
		c.PortfolioService.MetadataBatchSize = 25
		logrus.Infof("PortfolioService.MetadataBatchSize not set, defaulting to %d", c.PortfolioService.MetadataBatchSize)
	}
	if c.PortfolioService.RequestTimeoutMillis <= 0 {
		c.PortfolioService.RequestTimeoutMillis = 20000
	}

	if c.Swagger.Path == "" {
		c.Swagger.Path = "/swagger"
	}
	if c.Swagger.SpecFile == "" {
		c.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	for _, n := range c.Alchemy.Networks {
		if n.Identifier == "" {
			return fmt.Errorf("alchemy.networks: override without identifier")
		}
		if n.RPCURLTemplate != "" && strings.Count(n.RPCURLTemplate, "%s") != 1 {
			return fmt.Errorf("alchemy.networks[%s]: rpcUrlTemplate must contain exactly one %%s", n.Identifier)
		}
	}
	return nil
}

// ProviderConfig resolves per-network credentials. Precedence: ALCHEMY_API_KEY_<NETWORK>
// environment variable, then alchemy.apiKeys in the YAML file, then the shared ALCHEMY_API_KEY.
func (c *Config) ProviderConfig(networks []entity.NetworkDefinition, lookupEnv func(string) (string, bool)) entity.ProviderConfig {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	shared, _ := lookupEnv(SharedAPIKeyEnv)

	keys := make(map[string]string, len(networks))
	for _, n := range networks {
		envName := NetworkAPIKeyEnvPrefix + "_" + strings.ToUpper(n.Identifier)
		if v, ok := lookupEnv(envName); ok && v != "" {
			keys[n.Identifier] = v
			continue
		}
		if v := c.Alchemy.APIKeys[n.Identifier]; v != "" {
			keys[n.Identifier] = v
			continue
		}
		if shared != "" {
			keys[n.Identifier] = shared
		}
	}

	return entity.ProviderConfig{
		APIKeys:        keys,
		DefaultNetwork: c.Alchemy.DefaultNetwork,
	}
}
