package entity

// NetworkDefinition describes one supported network of the data provider.
type NetworkDefinition struct {
	ChainID    uint64 `json:"chainId" yaml:"chainId"`
	Name       string `json:"name" yaml:"name"`
	Identifier string `json:"identifier" yaml:"identifier"` // e.g. "ethereum", "sepolia"
	// RPCURLTemplate contains a single %s where the API key is placed.
	RPCURLTemplate string `json:"-" yaml:"rpcUrlTemplate"`
	Testnet        bool   `json:"testnet" yaml:"testnet"`
	// PriceLookup marks networks whose contract addresses the quote provider can price.
	PriceLookup     bool   `json:"priceLookup" yaml:"priceLookup"`
	PricePlatformID string `json:"-" yaml:"pricePlatformId"`
}

// ProviderConfig carries per-network data provider credentials, keyed by network identifier.
type ProviderConfig struct {
	APIKeys        map[string]string
	DefaultNetwork string
}

// APIKey returns the credential for the given network identifier.
func (c ProviderConfig) APIKey(identifier string) (string, bool) {
	key, ok := c.APIKeys[identifier]
	return key, ok && key != ""
}
