package daybook_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeVAT_KnownValues(t *testing.T) {
	tests := []struct {
		gross string
		want  string
	}{
		{"780", "58.45"},
		{"20", "1.50"},
		{"500", "37.47"},
		{"100", "7.49"},
		{"0.01", "0"},
		{"1081", "81"},
	}

	for _, tt := range tests {
		t.Run(tt.gross, func(t *testing.T) {
			got := daybook.ComputeVAT(dec(tt.gross))
			assert.True(t, dec(tt.want).Equal(got), "ComputeVAT(%s) = %s, want %s", tt.gross, got, tt.want)
		})
	}
}

func TestComputeVAT_NonPositiveIsZero(t *testing.T) {
	assert.True(t, daybook.ComputeVAT(decimal.Zero).IsZero())
	assert.True(t, daybook.ComputeVAT(dec("-50")).IsZero())
}

func TestComputeVAT_NeverExceedsGross(t *testing.T) {
	for _, g := range []string{"0.01", "0.5", "3.33", "19.99", "1234.56", "99999.99"} {
		gross := dec(g)
		vat := daybook.ComputeVAT(gross)
		assert.False(t, vat.IsNegative(), "vat of %s", g)
		assert.True(t, vat.LessThanOrEqual(gross), "vat of %s", g)
		assert.True(t, vat.Equal(vat.Round(2)), "vat of %s has more than 2 decimals", g)
	}
}

func TestComputeVATFloat(t *testing.T) {
	// GIVEN: a missing gross and a present one
	// THEN: missing reads as zero, present matches ComputeVAT
	assert.True(t, daybook.ComputeVATFloat(nil).IsZero())

	gross := 780.0
	assert.True(t, dec("58.45").Equal(daybook.ComputeVATFloat(&gross)))
}

func TestComputeVATFloat_NonFiniteIsZero(t *testing.T) {
	// GIVEN: amounts that have no decimal representation or are not positive
	// THEN: the result is zero instead of a panic
	for _, g := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -12.5} {
		gross := g
		assert.NotPanics(t, func() {
			assert.True(t, daybook.ComputeVATFloat(&gross).IsZero(), "vat of %v", g)
		})
	}
}

func TestRoundMoney_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "2.35", daybook.RoundMoney(dec("2.345")).StringFixed(2))
	assert.Equal(t, "-2.35", daybook.RoundMoney(dec("-2.345")).StringFixed(2))
	assert.Equal(t, "2.34", daybook.RoundMoney(dec("2.3449")).StringFixed(2))
}
