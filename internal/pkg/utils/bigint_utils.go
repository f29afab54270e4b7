package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseHexBalance converts a provider hex quantity ("0x3e8", zero-padded words included) into a big.Int.
// An empty payload ("0x") parses as zero.
func ParseHexBalance(hex string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hex), "0x"), "0X")
	if digits == "" {
		return new(big.Int), nil
	}
	value, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex balance %q", hex)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative hex balance %q", hex)
	}
	return value, nil
}

// ScaleBalance divides raw by 10^decimals. A nil or non-positive decimals leaves raw unscaled.
// Example: raw=1000, decimals=2 => 10.0
func ScaleBalance(raw *big.Int, decimals *int) float64 {
	if raw == nil {
		return 0
	}
	amount := new(big.Float).SetInt(raw)
	if decimals != nil && *decimals > 0 {
		divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(*decimals)), nil))
		amount.Quo(amount, divisor)
	}
	f, _ := amount.Float64()
	return f
}

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor)

	formatted := value.Text('f', int(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" {
		return "0"
	}
	return formatted
}
