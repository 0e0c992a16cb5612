package daybook

import (
	"math"

	"github.com/shopspring/decimal"
)

// VATRate is the Swiss standard rate, included in gross prices.
var VATRate = decimal.RequireFromString("0.081")

var vatDivisor = decimal.NewFromInt(1).Add(VATRate)

// ComputeVAT returns the VAT contained in a gross amount, rounded to the cent
// (half away from zero). Zero and negative amounts yield zero.
func ComputeVAT(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	net := gross.Div(vatDivisor)
	return RoundMoney(gross.Sub(net))
}

// ComputeVATFloat is ComputeVAT for callers holding an optional float.
// Missing, non-finite and non-positive amounts yield zero.
func ComputeVATFloat(gross *float64) decimal.Decimal {
	if gross == nil || math.IsNaN(*gross) || math.IsInf(*gross, 0) || *gross <= 0 {
		return decimal.Zero
	}
	return ComputeVAT(decimal.NewFromFloat(*gross))
}

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
