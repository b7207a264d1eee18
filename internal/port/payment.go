package port

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentVerification struct {
	Verified   bool
	Status     string
	UpdateTime string
	PayerEmail string
	Amount     decimal.Decimal
	Currency   string
}

// PaymentGateway checks a provider-side transaction before an order is
// marked paid.
type PaymentGateway interface {
	Verify(ctx context.Context, transactionID string) (*PaymentVerification, error)
}
