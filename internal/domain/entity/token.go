package entity

// TokenMetadata holds the descriptive fields of a token contract. Every field is optional:
// providers return null for unknown contracts and a failed lookup yields the zero value.
type TokenMetadata struct {
	Decimals *int   `json:"decimals,omitempty"`
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Logo     string `json:"logo,omitempty"`
}

// EnrichedToken is a non-zero RawBalance merged with its metadata and computed values.
type EnrichedToken struct {
	ContractAddress string `json:"contractAddress"`
	TokenBalance    string `json:"tokenBalance"`
	TokenMetadata
	Balance  float64 `json:"balance"`
	UsdPrice float64 `json:"usdPrice"`
	UsdValue float64 `json:"usdValue"`
}
