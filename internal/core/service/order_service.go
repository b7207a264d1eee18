package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/core/pricing"
	"github.com/funkystitch/storefront/internal/port"
)

var (
	ErrNoOrderItems          = errors.New("no order items")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrOrderNotFound         = errors.New("order not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrVariantNotFound       = errors.New("variant not available")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrOrderAlreadyPaid      = errors.New("order already paid")
	ErrPaymentNotVerified    = errors.New("payment not verified")
	ErrDuplicateTransaction  = errors.New("transaction has been used before")
	ErrPaymentAmountMismatch = errors.New("incorrect amount paid")
)

type OrderService struct {
	orders   port.OrderRepository
	products port.ProductRepository
	carts    port.CartStore
	claims   port.PaymentClaimStore
	gateway  port.PaymentGateway
	events   port.EventPublisher
	policy   pricing.Policy
	logger   zerolog.Logger
}

func NewOrderService(
	orders port.OrderRepository,
	products port.ProductRepository,
	carts port.CartStore,
	claims port.PaymentClaimStore,
	gateway port.PaymentGateway,
	events port.EventPublisher,
	policy pricing.Policy,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		claims:   claims,
		gateway:  gateway,
		events:   events,
		policy:   policy,
		logger:   logger,
	}
}

type OrderLineInput struct {
	ProductID       string
	Quantity        int
	Variant         *domain.VariantSelector
	DiscountPercent decimal.Decimal
}

type PlaceOrderInput struct {
	Items           []OrderLineInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// PlaceOrder prices the submitted lines against the catalog and
// persists an immutable order snapshot. Client-supplied prices are
// never trusted; unit prices come from the product or the selected
// variant at the time of ordering.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	ids := make([]string, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
		ids = append(ids, line.ProductID)
	}

	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, line := range in.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}

		unitPrice := product.BasePrice
		var variant *domain.OrderItemVariant
		if line.Variant != nil {
			v := product.FindVariant(line.Variant.Size, line.Variant.Color)
			if v == nil {
				return nil, fmt.Errorf("%w: product %s %s/%s",
					ErrVariantNotFound, product.ID, line.Variant.Size, line.Variant.Color)
			}
			unitPrice = v.Price
			variant = &domain.OrderItemVariant{Size: v.Size, Color: v.Color, Price: v.Price}
		}

		discount := line.DiscountPercent
		if discount.IsZero() {
			discount = product.DiscountPercent
		}

		items = append(items, domain.OrderItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Image:           product.Image,
			Brand:           product.Brand,
			Category:        product.Category,
			Quantity:        line.Quantity,
			UnitPrice:       unitPrice,
			BasePrice:       product.BasePrice,
			DiscountPercent: discount,
			Variant:         variant,
		})
		lines = append(lines, pricing.Line{
			UnitPrice:       unitPrice,
			Quantity:        int64(line.Quantity),
			DiscountPercent: discount,
		})
	}

	totals := s.policy.Calculate(lines)
	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      totals.ItemsSubtotal,
		DiscountAmount:  totals.DiscountTotal,
		ShippingPrice:   totals.ShippingFee,
		TaxPrice:        totals.TaxAmount,
		TotalPrice:      totals.GrandTotal,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to clear cart after order")
	}
	s.publish(ctx, "order.placed", order.ID, map[string]any{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.TotalPrice.StringFixed(2),
	})

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !isAdmin {
		return nil, ErrNotAuthorized
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.orders.Delete(ctx, orderID)
	if isNotFound(err) {
		return ErrOrderNotFound
	}
	return err
}

// PayOrder confirms a payment-provider transaction and transitions the
// order into the paid state, decrementing inventory for every line.
// The duplicate-transaction check plus a first-writer-wins claim
// guarantee the stock adjustment runs at most once per transaction id.
// The per-line adjustments are returned so callers can see lines whose
// stock could not be decremented.
func (s *OrderService) PayOrder(ctx context.Context, orderID, requesterID string, isAdmin bool, transactionID string) (*domain.Order, []domain.StockAdjustment, error) {
	verification, err := s.gateway.Verify(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("verify payment: %w", err)
	}
	if !verification.Verified {
		return nil, nil, ErrPaymentNotVerified
	}

	seen, err := s.orders.PaymentTransactionSeen(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("check transaction: %w", err)
	}
	if seen {
		return nil, nil, ErrDuplicateTransaction
	}

	claimed, err := s.claims.ClaimTransaction(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("claim transaction: %w", err)
	}
	if !claimed {
		return nil, nil, ErrDuplicateTransaction
	}

	order, adjustments, err := s.confirmPayment(ctx, orderID, requesterID, isAdmin, transactionID, verification)
	if err != nil {
		// Free the claim so a corrected retry of the same transaction
		// is not locked out forever.
		if releaseErr := s.claims.ReleaseTransaction(ctx, transactionID); releaseErr != nil {
			s.logger.Error().Err(releaseErr).Str("txn_id", transactionID).Msg("failed to release payment claim")
		}
		return nil, nil, err
	}
	return order, adjustments, nil
}

func (s *OrderService) confirmPayment(ctx context.Context, orderID, requesterID string, isAdmin bool, transactionID string, verification *port.PaymentVerification) (*domain.Order, []domain.StockAdjustment, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != requesterID && !isAdmin {
		return nil, nil, ErrNotAuthorized
	}
	if order.IsPaid {
		return nil, nil, ErrOrderAlreadyPaid
	}
	if !verification.Amount.Equal(order.TotalPrice) {
		return nil, nil, fmt.Errorf("%w: paid %s, order total %s",
			ErrPaymentAmountMismatch, verification.Amount.StringFixed(2), order.TotalPrice.StringFixed(2))
	}

	adjustments, err := s.products.AdjustStockForOrder(ctx, order.StockDecrements())
	if err != nil {
		return nil, nil, fmt.Errorf("adjust stock: %w", err)
	}
	for _, adj := range adjustments {
		if adj.Outcome != domain.StockApplied {
			s.logger.Warn().
				Str("order_id", order.ID).
				Str("product_id", adj.ProductID).
				Str("outcome", string(adj.Outcome)).
				Msg("stock decrement skipped")
		} else if adj.Clamped {
			s.logger.Warn().
				Str("order_id", order.ID).
				Str("product_id", adj.ProductID).
				Msg("stock decrement clamped at zero")
		}
	}

	currency := verification.Currency
	if currency == "" {
		currency = "USD"
	}
	now := time.Now().UTC()
	order.IsPaid = true
	order.PaidAt = &now
	order.UpdatedAt = now
	order.Status = domain.OrderStatusProcessing
	order.PaymentResult = &domain.PaymentResult{
		TransactionID: transactionID,
		Status:        verification.Status,
		UpdateTime:    verification.UpdateTime,
		PayerEmail:    verification.PayerEmail,
		Amount:        verification.Amount,
		Currency:      currency,
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("mark order paid: %w", err)
	}
	s.publish(ctx, "order.paid", order.ID, map[string]any{
		"order_id": order.ID,
		"txn_id":   transactionID,
		"amount":   verification.Amount.StringFixed(2),
	})

	return order, adjustments, nil
}

func (s *OrderService) ShipOrder(ctx context.Context, orderID, trackingNumber, carrier string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusShipped
	order.ShippedAt = &now
	order.UpdatedAt = now
	order.TrackingNumber = trackingNumber
	order.Carrier = carrier

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order shipped: %w", err)
	}
	s.publish(ctx, "order.shipped", order.ID, map[string]any{
		"order_id": order.ID,
		"tracking": trackingNumber,
		"carrier":  carrier,
	})
	return order, nil
}

func (s *OrderService) DeliverOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusDelivered
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.UpdatedAt = now
	order.IsPaid = true
	if order.PaidAt == nil {
		order.PaidAt = &now
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order delivered: %w", err)
	}
	s.publish(ctx, "order.delivered", order.ID, map[string]any{"order_id": order.ID})
	return order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if isNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, key, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
