package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseHexBalance(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    string
		wantErr bool
	}{
		{name: "short", hex: "0x3e8", want: "1000"},
		{name: "zero", hex: "0x0", want: "0"},
		{name: "empty payload", hex: "0x", want: "0"},
		{name: "padded word", hex: "0x00000000000000000000000000000000000000000000000000000000000003e8", want: "1000"},
		{name: "one ether", hex: "0xde0b6b3a7640000", want: "1000000000000000000"},
		{name: "garbage", hex: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexBalance(tt.hex)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestScaleBalance(t *testing.T) {
	assert.Equal(t, 10.0, ScaleBalance(big.NewInt(1000), intPtr(2)))
	assert.Equal(t, 1000.0, ScaleBalance(big.NewInt(1000), nil))
	assert.Equal(t, 1000.0, ScaleBalance(big.NewInt(1000), intPtr(0)))
	assert.Equal(t, 0.0, ScaleBalance(nil, intPtr(18)))

	oneEther, ok := new(big.Int).SetString("de0b6b3a7640000", 16)
	require.True(t, ok)
	assert.InDelta(t, 1.0, ScaleBalance(oneEther, intPtr(18)), 1e-12)
}

func TestFormatBigInt(t *testing.T) {
	amount, _ := new(big.Int).SetString("1234500000000000000", 10)
	assert.Equal(t, "1.2345", FormatBigInt(amount, 18))
	assert.Equal(t, "42", FormatBigInt(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatBigInt(big.NewInt(0), 6))
	assert.Equal(t, "0", FormatBigInt(nil, 6))
}

func TestBatchStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, BatchStrings(items, 2))
	assert.Equal(t, [][]string{items}, BatchStrings(items, 0))
	assert.Empty(t, BatchStrings(nil, 3))
}
