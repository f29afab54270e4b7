package entity

// MetadataResultItem is the outcome of one metadata lookup inside a JSON-RPC batch.
type MetadataResultItem struct {
	ContractAddress string
	Metadata        TokenMetadata
	Error           error
}

// PriceQuote is the USD quote for a single contract.
type PriceQuote struct {
	Usd float64 `json:"usd"`
}
