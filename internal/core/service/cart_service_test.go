package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funkystitch/storefront/internal/core/domain"
)

func newCartFixture(products ...*domain.Product) (*CartService, *memCartStore) {
	carts := newMemCartStore()
	svc := NewCartService(carts, newMemProductRepo(products...), zerolog.Nop())
	return svc, carts
}

func TestGetCart_EmptyWhenNothingStored(t *testing.T) {
	svc, _ := newCartFixture()

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestSaveCart_RoundTrips(t *testing.T) {
	svc, _ := newCartFixture(&domain.Product{
		ID:        "p1",
		BasePrice: decimal.NewFromInt(40),
		Variants:  []domain.Variant{{Size: "M", Color: "Black", Stock: 3}},
	})

	items := []domain.CartItem{{
		ProductID: "p1",
		Quantity:  2,
		Variant:   &domain.VariantSelector{Size: "M", Color: "Black"},
	}}
	_, err := svc.SaveCart(context.Background(), "u1", items)
	require.NoError(t, err)

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestSaveCart_RejectsUnknownProductOrVariant(t *testing.T) {
	svc, _ := newCartFixture(&domain.Product{
		ID:       "p1",
		Variants: []domain.Variant{{Size: "M", Color: "Black", Stock: 3}},
	})

	_, err := svc.SaveCart(context.Background(), "u1", []domain.CartItem{
		{ProductID: "ghost", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.SaveCart(context.Background(), "u1", []domain.CartItem{
		{ProductID: "p1", Quantity: 1, Variant: &domain.VariantSelector{Size: "XXL", Color: "Black"}},
	})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestSaveCart_RejectsBadQuantity(t *testing.T) {
	svc, _ := newCartFixture(&domain.Product{ID: "p1"})

	_, err := svc.SaveCart(context.Background(), "u1", []domain.CartItem{
		{ProductID: "p1", Quantity: 0},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestClearCart(t *testing.T) {
	svc, _ := newCartFixture(&domain.Product{ID: "p1"})

	_, err := svc.SaveCart(context.Background(), "u1", []domain.CartItem{
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(context.Background(), "u1"))

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
