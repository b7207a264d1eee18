package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(price string, qty int64, discount string) Line {
	return Line{UnitPrice: dec(price), Quantity: qty, DiscountPercent: dec(discount)}
}

func TestCalculate_Example(t *testing.T) {
	// 500 x2 at 10% off: net 900, free shipping, 5% tax band.
	totals := DefaultPolicy().Calculate([]Line{line("500", 2, "10")})

	assert.True(t, totals.ItemsSubtotal.Equal(dec("900.00")), "subtotal %s", totals.ItemsSubtotal)
	assert.True(t, totals.DiscountTotal.Equal(dec("100.00")), "discount %s", totals.DiscountTotal)
	assert.True(t, totals.ShippingFee.Equal(dec("0")), "shipping %s", totals.ShippingFee)
	assert.True(t, totals.TaxAmount.Equal(dec("45.00")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.GrandTotal.Equal(dec("945.00")), "total %s", totals.GrandTotal)
}

func TestCalculate_EmptyInput(t *testing.T) {
	totals := DefaultPolicy().Calculate(nil)

	for _, v := range []decimal.Decimal{
		totals.ItemsSubtotal, totals.DiscountTotal, totals.ShippingFee,
		totals.TaxAmount, totals.GrandTotal,
	} {
		assert.True(t, v.IsZero(), "expected zero, got %s", v)
	}
}

func TestCalculate_DiscountClamping(t *testing.T) {
	policy := DefaultPolicy()

	over := policy.Calculate([]Line{line("50", 1, "150")})
	full := policy.Calculate([]Line{line("50", 1, "100")})
	require.True(t, over.GrandTotal.Equal(full.GrandTotal))
	require.True(t, over.ItemsSubtotal.IsZero())

	negative := policy.Calculate([]Line{line("50", 1, "-20")})
	none := policy.Calculate([]Line{line("50", 1, "0")})
	require.True(t, negative.GrandTotal.Equal(none.GrandTotal))
}

func TestCalculate_ZeroLinesContributeNothing(t *testing.T) {
	// A line with missing price or quantity degrades to zero instead
	// of failing the computation.
	withZero := DefaultPolicy().Calculate([]Line{
		line("500", 2, "10"),
		{}, // zero value line
	})
	without := DefaultPolicy().Calculate([]Line{line("500", 2, "10")})

	assert.True(t, withZero.GrandTotal.Equal(without.GrandTotal))
	assert.True(t, withZero.ItemsSubtotal.Equal(without.ItemsSubtotal))
}

func TestCalculate_ShippingBoundary(t *testing.T) {
	policy := DefaultPolicy()

	// Exactly 100.00 still pays shipping; the boundary is exclusive.
	at := policy.Calculate([]Line{line("100", 1, "0")})
	assert.True(t, at.ShippingFee.Equal(dec("10.00")), "shipping %s", at.ShippingFee)

	above := policy.Calculate([]Line{line("100.01", 1, "0")})
	assert.True(t, above.ShippingFee.IsZero(), "shipping %s", above.ShippingFee)
}

func TestCalculate_TaxBoundary(t *testing.T) {
	policy := DefaultPolicy()

	at := policy.Calculate([]Line{line("1000", 1, "0")})
	assert.True(t, at.TaxAmount.Equal(dec("50.00")), "tax %s", at.TaxAmount)

	above := policy.Calculate([]Line{line("1000.01", 1, "0")})
	assert.True(t, above.TaxAmount.Equal(dec("120.00")), "tax %s", above.TaxAmount)
}

func TestCalculate_TiersUseDiscountedSubtotal(t *testing.T) {
	// Gross 2000 but 60% off nets 800: low tax band and free shipping
	// apply to the discounted figure, not the pre-discount sum.
	totals := DefaultPolicy().Calculate([]Line{line("1000", 2, "60")})

	assert.True(t, totals.ItemsSubtotal.Equal(dec("800.00")))
	assert.True(t, totals.ShippingFee.IsZero())
	assert.True(t, totals.TaxAmount.Equal(dec("40.00")), "tax %s", totals.TaxAmount)
}

func TestCalculate_SubtotalIsSumOfDiscountedLines(t *testing.T) {
	totals := DefaultPolicy().Calculate([]Line{
		line("19.99", 3, "0"),
		line("45.50", 1, "25"),
		line("5.05", 2, "50"),
	})

	// 59.97 + 34.125 + 5.05 = 99.145 -> 99.15 rounded half up.
	assert.True(t, totals.ItemsSubtotal.Equal(dec("99.15")), "subtotal %s", totals.ItemsSubtotal)
	// Subtotal of 99.145 is below the free shipping threshold.
	assert.True(t, totals.ShippingFee.Equal(dec("10.00")))
	// 99.145 * 5% = 4.95725 -> 4.96
	assert.True(t, totals.TaxAmount.Equal(dec("4.96")), "tax %s", totals.TaxAmount)
	// 99.145 + 10 + 4.95725 = 114.10225 -> 114.10
	assert.True(t, totals.GrandTotal.Equal(dec("114.10")), "total %s", totals.GrandTotal)
}

func TestCalculate_CustomPolicy(t *testing.T) {
	policy := Policy{
		FreeShippingOver: dec("0"),
		ShippingFee:      dec("99"),
		BaseTaxPercent:   dec("0"),
		HighTaxPercent:   dec("0"),
		HighTaxOver:      dec("1"),
	}

	totals := policy.Calculate([]Line{line("10", 1, "0")})
	assert.True(t, totals.ShippingFee.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.GrandTotal.Equal(dec("10.00")))
}
