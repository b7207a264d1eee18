package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusReturned   OrderStatus = "Returned"
)

type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// OrderItemVariant is the variant snapshot captured when the order was
// created. Size and color identify the stock bucket to decrement on
// payment.
type OrderItemVariant struct {
	Size  string
	Color string
	Price decimal.Decimal
}

// OrderItem is an immutable snapshot of one purchased line. Prices are
// captured at order creation and never re-read from the catalog.
type OrderItem struct {
	ProductID       string
	Name            string
	Image           string
	Brand           string
	Category        string
	Quantity        int
	UnitPrice       decimal.Decimal
	BasePrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Variant         *OrderItemVariant
}

type PaymentResult struct {
	TransactionID string
	Status        string
	UpdateTime    string
	PayerEmail    string
	Amount        decimal.Decimal
	Currency      string
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	DiscountAmount  decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	Status          OrderStatus
	ShippedAt       *time.Time
	TrackingNumber  string
	Carrier         string
	PaymentResult   *PaymentResult
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockDecrements maps the order's lines onto the inventory decrements
// to apply when the order is paid.
func (o *Order) StockDecrements() []StockDecrement {
	decs := make([]StockDecrement, 0, len(o.Items))
	for _, it := range o.Items {
		dec := StockDecrement{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Variant != nil {
			dec.Variant = &VariantSelector{Size: it.Variant.Size, Color: it.Variant.Color}
		}
		decs = append(decs, dec)
	}
	return decs
}
