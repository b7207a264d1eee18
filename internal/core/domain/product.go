package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one size/color combination of a product with its own
// price and stock bucket.
type Variant struct {
	Size  string
	Color string
	Price decimal.Decimal
	Stock int
}

type ProductImage struct {
	URL           string
	Color         string
	IsVariantMain bool
}

type Specification struct {
	Label string
	Value string
}

type Review struct {
	ID        string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type Product struct {
	ID              string
	Name            string
	Image           string
	Images          []ProductImage
	Brand           string
	Category        string
	Description     string
	Features        []string
	Specifications  []Specification
	BasePrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Rating          float64
	NumReviews      int
	CountInStock    int
	TotalStock      int
	Variants        []Variant
	AvailableSizes  []string
	AvailableColors []string
	Reviews         []Review
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FindVariant returns the variant matching the size/color pair, or nil.
func (p *Product) FindVariant(size, color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}

// HasReviewBy reports whether the user already reviewed this product.
func (p *Product) HasReviewBy(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ProductQuery drives paginated catalog listing. Keyword terms are
// matched across name, description, brand and category; a
// "field:value" term restricts the match to that field.
type ProductQuery struct {
	Keyword  string
	Page     int
	PageSize int
}
