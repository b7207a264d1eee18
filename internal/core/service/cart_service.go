package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/port"
)

type CartService struct {
	carts    port.CartStore
	products port.ProductRepository
	logger   zerolog.Logger
}

func NewCartService(carts port.CartStore, products port.ProductRepository, logger zerolog.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// GetCart returns the stored cart, or an empty one when nothing is
// stored yet.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, port.ErrCacheMiss) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// SaveCart replaces the stored cart wholesale after validating every
// line against the catalog.
func (s *CartService) SaveCart(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, it.ProductID)
		}
		ids = append(ids, it.ProductID)
	}

	if len(ids) > 0 {
		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		byID := make(map[string]*domain.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		for _, it := range items {
			product, ok := byID[it.ProductID]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
			}
			if it.Variant != nil && product.FindVariant(it.Variant.Size, it.Variant.Color) == nil {
				return nil, fmt.Errorf("%w: product %s %s/%s",
					ErrVariantNotFound, it.ProductID, it.Variant.Size, it.Variant.Color)
			}
		}
	}

	cart := &domain.Cart{
		UserID:    userID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.carts.PutCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("store cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.carts.DeleteCart(ctx, userID)
}
