package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuantize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		decimals int32
		want     string
	}{
		{name: "half case rounds up", value: "1.005", decimals: 2, want: "1.01"},
		{name: "already quantized", value: "3.36", decimals: 2, want: "3.36"},
		{name: "below half rounds down", value: "2.164", decimals: 2, want: "2.16"},
		{name: "zero decimals", value: "2.5", decimals: 0, want: "3"},
		{name: "negative half goes toward positive", value: "-0.125", decimals: 2, want: "-0.12"},
		{name: "one decimal", value: "0.25", decimals: 1, want: "0.3"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Quantize(decimal.RequireFromString(tc.value), tc.decimals)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestQuantizeIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []float64{1.005, 2.675, 0.1 + 0.2, 3.3599999999, 1234.5678, -7.777} {
		once := QuantizeFloat(raw, 2)
		twice := Quantize(once, 2)
		assert.True(t, once.Equal(twice), "quantize(%v) not idempotent: %s vs %s", raw, once, twice)
	}
}

func TestQuantizeFloatSuppressesBinaryNoise(t *testing.T) {
	t.Parallel()

	// At runtime 1.2 * 1.8 is 2.1599999999999997.
	factor, markup := 1.2, 1.8
	got := QuantizeFloat(factor*markup, 2)
	assert.Equal(t, "2.16", got.String())
}
