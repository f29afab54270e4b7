package view

import (
	"fmt"
	"math"
	"sort"
)

// Placeholder is rendered for an unknown price or value.
const Placeholder = "-"

// ChartSlice is one segment of the distribution chart.
type ChartSlice struct {
	Label string
	Value float64
	Share float64 // 0..1
}

// TableRow is one formatted table line.
type TableRow struct {
	Token    string
	Symbol   string
	Balance  string
	UsdPrice string
	UsdValue string
	Address  string
}

// TotalValue sums usdValue over all tokens. Missing values count as zero.
func (m *Model) TotalValue() float64 {
	var total float64
	for _, t := range m.tokens {
		total += t.value()
	}
	return total
}

// ChartSlices returns the tokens with a strictly positive value and their share of the total.
func (m *Model) ChartSlices() []ChartSlice {
	var positive float64
	for _, t := range m.tokens {
		if v := t.value(); v > 0 {
			positive += v
		}
	}
	if positive <= 0 {
		return []ChartSlice{}
	}

	slices := make([]ChartSlice, 0, len(m.tokens))
	for _, t := range m.tokens {
		v := t.value()
		if v <= 0 {
			continue
		}
		share := v / positive
		slices = append(slices, ChartSlice{
			Label: fmt.Sprintf("%s %.0f%%", t.Label(), math.Round(share*100)),
			Value: v,
			Share: share,
		})
	}
	return slices
}

// SortedTokens returns all tokens ordered by usdValue descending. Ties keep their received order.
func (m *Model) SortedTokens() []Token {
	sorted := append([]Token(nil), m.tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].value() > sorted[j].value()
	})
	return sorted
}

// TableRows formats SortedTokens for display.
func (m *Model) TableRows() []TableRow {
	sorted := m.SortedTokens()
	rows := make([]TableRow, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, TableRow{
			Token:    t.Name,
			Symbol:   t.Symbol,
			Balance:  FormatBalance(t.Balance),
			UsdPrice: formatOptionalUSD(t.UsdPrice),
			UsdValue: formatOptionalUSD(t.UsdValue),
			Address:  t.ContractAddress,
		})
	}
	return rows
}

// ShowEmpty reports whether the empty-portfolio message applies.
func (m *Model) ShowEmpty() bool {
	return m.state == StateLoaded && len(m.tokens) == 0
}

// ShowChart reports whether there is anything to chart.
func (m *Model) ShowChart() bool {
	return m.state == StateLoaded && len(m.tokens) > 0 && m.TotalValue() > 0
}

func formatOptionalUSD(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatUSD(*v)
}
