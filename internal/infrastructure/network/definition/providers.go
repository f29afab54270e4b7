package networkdefinition

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:         1,
		Name:            "Ethereum Mainnet",
		Identifier:      "ethereum",
		RPCURLTemplate:  "https://eth-mainnet.g.alchemy.com/v2/%s",
		PriceLookup:     true,
		PricePlatformID: "ethereum",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:         137,
		Name:            "Polygon PoS",
		Identifier:      "polygon",
		RPCURLTemplate:  "https://polygon-mainnet.g.alchemy.com/v2/%s",
		PricePlatformID: "polygon-pos",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:         10,
		Name:            "OP Mainnet",
		Identifier:      "optimism",
		RPCURLTemplate:  "https://opt-mainnet.g.alchemy.com/v2/%s",
		PricePlatformID: "optimistic-ethereum",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:         42161,
		Name:            "Arbitrum One",
		Identifier:      "arbitrum",
		RPCURLTemplate:  "https://arb-mainnet.g.alchemy.com/v2/%s",
		PricePlatformID: "arbitrum-one",
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:        11155111,
		Name:           "Sepolia",
		Identifier:     "sepolia",
		RPCURLTemplate: "https://eth-sepolia.g.alchemy.com/v2/%s",
		Testnet:        true,
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{ //nolint:gochecknoglobals
	Ethereum.Identifier: Ethereum,
	Polygon.Identifier:  Polygon,
	Optimism.Identifier: Optimism,
	Arbitrum.Identifier: Arbitrum,
	Sepolia.Identifier:  Sepolia,
}

// aliases maps names used by wallet connectors onto identifiers.
var aliases = map[string]string{ //nolint:gochecknoglobals
	"mainnet":      Ethereum.Identifier,
	"eth":          Ethereum.Identifier,
	"eth-mainnet":  Ethereum.Identifier,
	"matic":        Polygon.Identifier,
	"op":           Optimism.Identifier,
	"arbitrum-one": Arbitrum.Identifier,
	"arb":          Arbitrum.Identifier,
	"eth-sepolia":  Sepolia.Identifier,
}

// NetworkDefinitionProvider provides the closed set of supported networks.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
	defaultID      string
}

// NewNetworkDefinitionProvider creates a provider from the built-in definitions patched by overrides.
// An unknown default network falls back to Ethereum.
func NewNetworkDefinitionProvider(log port.Logger, defaultNetwork string, overrides []configloader.NetworkOverride) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:         log,
		allNetworkDefs: make(map[string]entity.NetworkDefinition, len(allKnownDefinitions)),
		defaultID:      Ethereum.Identifier,
	}
	for id, def := range allKnownDefinitions {
		p.allNetworkDefs[id] = def
	}

	for _, o := range overrides {
		def, ok := p.allNetworkDefs[o.Identifier]
		if !ok {
			p.logger.Warn(fmt.Sprintf("Override for unknown network '%s' ignored. Only built-in networks are supported.", o.Identifier))
			continue
		}
		if o.RPCURLTemplate != "" {
			def.RPCURLTemplate = o.RPCURLTemplate
		}
		if o.PriceLookup != nil {
			def.PriceLookup = *o.PriceLookup
		}
		if o.PricePlatformID != "" {
			def.PricePlatformID = o.PricePlatformID
		}
		if def.PriceLookup && def.PricePlatformID == "" {
			p.logger.Warn("Price lookup enabled without a price platform id, disabling", "network", def.Identifier)
			def.PriceLookup = false
		}
		p.allNetworkDefs[o.Identifier] = def
		p.logger.Debug("Applied network override", "network", def.Identifier, "price_lookup", def.PriceLookup)
	}

	if id, ok := p.lookup(defaultNetwork); ok {
		p.defaultID = id
	} else if defaultNetwork != "" {
		p.logger.Warn(fmt.Sprintf("Default network '%s' is not supported, using '%s'", defaultNetwork, p.defaultID))
	}

	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Networks: %d, default: %s", len(p.allNetworkDefs), p.defaultID))
	return p
}

// GetAllNetworkDefinitions returns all supported network definitions ordered by chain ID.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.allNetworkDefs))
	for _, def := range p.allNetworkDefs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName returns a network definition by identifier, alias or decimal chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	id, ok := p.lookup(identifier)
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	return p.allNetworkDefs[id], true
}

// Resolve maps chain onto a supported network. Unknown or empty values select the default network.
func (p *NetworkDefinitionProvider) Resolve(chain string) entity.NetworkDefinition {
	if def, ok := p.GetNetworkDefinitionByName(chain); ok {
		return def
	}
	if chain != "" {
		p.logger.Debug("Unsupported chain requested, falling back to default network", "chain", chain, "default", p.defaultID)
	}
	return p.allNetworkDefs[p.defaultID]
}

// DefaultNetwork returns the fallback network definition.
func (p *NetworkDefinitionProvider) DefaultNetwork() entity.NetworkDefinition {
	return p.allNetworkDefs[p.defaultID]
}

func (p *NetworkDefinitionProvider) lookup(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}
	if _, ok := p.allNetworkDefs[key]; ok {
		return key, true
	}
	if id, ok := aliases[key]; ok {
		return id, true
	}
	if chainID, err := strconv.ParseUint(key, 10, 64); err == nil {
		for id, def := range p.allNetworkDefs {
			if def.ChainID == chainID {
				return id, true
			}
		}
	}
	return "", false
}
