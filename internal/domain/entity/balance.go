package entity

// RawBalance is a single per-contract balance as reported by the data provider.
// TokenBalance is the unscaled integer balance in hex ("0x..."), zero balances included.
type RawBalance struct {
	ContractAddress string `json:"contractAddress"`
	TokenBalance    string `json:"tokenBalance"`
	Error           string `json:"error,omitempty"`
}

// IsZeroSentinel reports whether the raw hex value is one of the provider's empty balance markers.
func (b RawBalance) IsZeroSentinel() bool {
	return b.TokenBalance == "0x0" || b.TokenBalance == "0x" || b.TokenBalance == ""
}
