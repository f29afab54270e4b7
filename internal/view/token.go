package view

// Token is one holding as served by the balances endpoint. Price and value are pointers so
// that an absent quote renders as a placeholder instead of zero.
type Token struct {
	ContractAddress string   `json:"contractAddress"`
	TokenBalance    string   `json:"tokenBalance,omitempty"`
	Decimals        *int     `json:"decimals,omitempty"`
	Name            string   `json:"name,omitempty"`
	Symbol          string   `json:"symbol,omitempty"`
	Logo            string   `json:"logo,omitempty"`
	Balance         float64  `json:"balance"`
	UsdPrice        *float64 `json:"usdPrice,omitempty"`
	UsdValue        *float64 `json:"usdValue,omitempty"`
}

// Portfolio is the balances endpoint response.
type Portfolio struct {
	Address string  `json:"address"`
	Chain   string  `json:"chain"`
	Tokens  []Token `json:"tokens"`
}

func (t Token) value() float64 {
	if t.UsdValue == nil {
		return 0
	}
	return *t.UsdValue
}

// Label is the symbol, falling back to the name and then the contract address.
func (t Token) Label() string {
	switch {
	case t.Symbol != "":
		return t.Symbol
	case t.Name != "":
		return t.Name
	default:
		return shortAddress(t.ContractAddress)
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
