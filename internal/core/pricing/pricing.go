package pricing

import "github.com/shopspring/decimal"

// Policy carries the storefront pricing constants so boundary values
// can be exercised in tests instead of living as literals inside the
// calculation.
type Policy struct {
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
	BaseTaxPercent   decimal.Decimal
	HighTaxPercent   decimal.Decimal
	HighTaxOver      decimal.Decimal
}

// DefaultPolicy returns the production policy: flat 10 shipping waived
// strictly above a 100 subtotal, 5% GST up to 1000 and 12% beyond.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingOver: decimal.NewFromInt(100),
		ShippingFee:      decimal.NewFromInt(10),
		BaseTaxPercent:   decimal.NewFromInt(5),
		HighTaxPercent:   decimal.NewFromInt(12),
		HighTaxOver:      decimal.NewFromInt(1000),
	}
}

// Line is one order line as seen by the price engine. Zero values for
// price or quantity contribute nothing; the discount percent is
// clamped to [0, 100] rather than rejected.
type Line struct {
	UnitPrice       decimal.Decimal
	Quantity        int64
	DiscountPercent decimal.Decimal
}

// Totals is the priced order. All five fields are rounded to two
// fractional digits, half up at the cent.
type Totals struct {
	ItemsSubtotal decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingFee   decimal.Decimal
	TaxAmount     decimal.Decimal
	GrandTotal    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Calculate prices a list of order lines. An empty list yields a
// zeroed result, shipping fee included. Shipping and tax tiers are
// decided on the unrounded discounted subtotal; the discount total is
// reported for display and is already netted out of the subtotal.
func (p Policy) Calculate(lines []Line) Totals {
	if len(lines) == 0 {
		return Totals{
			ItemsSubtotal: decimal.Zero,
			DiscountTotal: decimal.Zero,
			ShippingFee:   decimal.Zero,
			TaxAmount:     decimal.Zero,
			GrandTotal:    decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, l := range lines {
		discount := clampPercent(l.DiscountPercent)
		gross := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
		lineDiscount := gross.Mul(discount).Div(hundred)
		subtotal = subtotal.Add(gross.Sub(lineDiscount))
		discountTotal = discountTotal.Add(lineDiscount)
	}

	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = decimal.Zero
	}

	taxRate := p.BaseTaxPercent
	if subtotal.GreaterThan(p.HighTaxOver) {
		taxRate = p.HighTaxPercent
	}
	tax := subtotal.Mul(taxRate).Div(hundred)

	total := subtotal.Add(shipping).Add(tax)

	return Totals{
		ItemsSubtotal: subtotal.Round(2),
		DiscountTotal: discountTotal.Round(2),
		ShippingFee:   shipping.Round(2),
		TaxAmount:     tax.Round(2),
		GrandTotal:    total.Round(2),
	}
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
