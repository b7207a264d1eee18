package domain

// VariantSelector identifies the stock bucket of a product. A nil
// selector means the product has no variants and the flat counter is
// used.
type VariantSelector struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

type StockOutcome string

const (
	StockApplied        StockOutcome = "applied"
	StockProductMissing StockOutcome = "product_missing"
	StockVariantMissing StockOutcome = "variant_missing"
)

type StockDecrement struct {
	ProductID string
	Variant   *VariantSelector
	Quantity  int
}

// StockAdjustment is the per-line result of applying a decrement.
// Lines that could not be applied are reported, never dropped, so
// callers can choose between lenient and strict handling.
type StockAdjustment struct {
	ProductID string
	Variant   *VariantSelector
	Quantity  int
	Outcome   StockOutcome
	Clamped   bool
}

// ApplyStockDecrement mutates p's counters for one purchased line.
// A variant hit decrements the bucket and the denormalized total
// stock; without a selector the flat counter is decremented. Counters
// never go below zero; a decrement that would do so is clamped and
// flagged.
func ApplyStockDecrement(p *Product, dec StockDecrement) StockAdjustment {
	adj := StockAdjustment{
		ProductID: dec.ProductID,
		Variant:   dec.Variant,
		Quantity:  dec.Quantity,
		Outcome:   StockApplied,
	}

	if dec.Variant != nil {
		v := p.FindVariant(dec.Variant.Size, dec.Variant.Color)
		if v == nil {
			adj.Outcome = StockVariantMissing
			return adj
		}
		v.Stock, adj.Clamped = clampSub(v.Stock, dec.Quantity)
		total, clamped := clampSub(p.TotalStock, dec.Quantity)
		p.TotalStock = total
		adj.Clamped = adj.Clamped || clamped
		return adj
	}

	p.CountInStock, adj.Clamped = clampSub(p.CountInStock, dec.Quantity)
	return adj
}

func clampSub(current, qty int) (int, bool) {
	if qty > current {
		return 0, true
	}
	return current - qty, false
}
