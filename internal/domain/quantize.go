package domain

import "github.com/shopspring/decimal"

const quantizeNoisePlaces = 11

var half = decimal.NewFromFloat(0.5)

// Quantize rounds value to the given number of decimal places. The scaled
// value is first rounded to a stable precision so binary noise from float
// inputs cannot tip a half-case, then rounded half toward positive infinity.
func Quantize(value decimal.Decimal, decimals int32) decimal.Decimal {
	scale := decimal.New(1, decimals)
	scaled := value.Mul(scale).Round(quantizeNoisePlaces)
	return scaled.Add(half).Floor().DivRound(scale, decimals)
}

// QuantizeFloat is Quantize for values computed in float64.
func QuantizeFloat(value float64, decimals int32) decimal.Decimal {
	return Quantize(decimal.NewFromFloat(value), decimals)
}
