package entity

// WalletPortfolio is the Aggregator response for one address on one network.
type WalletPortfolio struct {
	Address string          `json:"address"`
	Chain   string          `json:"chain"`
	Tokens  []EnrichedToken `json:"tokens"`
}

// TotalValueUSD sums UsdValue over all tokens.
func (p WalletPortfolio) TotalValueUSD() float64 {
	var total float64
	for _, t := range p.Tokens {
		total += t.UsdValue
	}
	return total
}
