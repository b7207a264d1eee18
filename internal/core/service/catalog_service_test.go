package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funkystitch/storefront/internal/core/domain"
)

func TestAddReview_RecomputesMeanRating(t *testing.T) {
	products := newMemProductRepo(&domain.Product{
		ID: "p1",
		Reviews: []domain.Review{
			{ID: "r1", UserID: "u1", Rating: 5},
		},
		Rating:     5,
		NumReviews: 1,
	})
	svc := NewCatalogService(products, zerolog.Nop())

	err := svc.AddReview(context.Background(), "p1",
		&domain.User{ID: "u2", Name: "Ben"}, 2, "runs small")
	require.NoError(t, err)

	product, err := products.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, product.NumReviews)
	assert.InDelta(t, 3.5, product.Rating, 1e-9)
}

func TestAddReview_OncePerUser(t *testing.T) {
	products := newMemProductRepo(&domain.Product{
		ID:      "p1",
		Reviews: []domain.Review{{ID: "r1", UserID: "u1", Rating: 4}},
	})
	svc := NewCatalogService(products, zerolog.Nop())

	err := svc.AddReview(context.Background(), "p1",
		&domain.User{ID: "u1", Name: "Asha"}, 5, "still great")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestAddReview_RatingBounds(t *testing.T) {
	svc := NewCatalogService(newMemProductRepo(&domain.Product{ID: "p1"}), zerolog.Nop())

	user := &domain.User{ID: "u1"}
	assert.ErrorIs(t, svc.AddReview(context.Background(), "p1", user, 0, ""), ErrInvalidRating)
	assert.ErrorIs(t, svc.AddReview(context.Background(), "p1", user, 6, ""), ErrInvalidRating)
}

func TestUpdateProduct_RecomputesTotalStock(t *testing.T) {
	products := newMemProductRepo(&domain.Product{ID: "p1"})
	svc := NewCatalogService(products, zerolog.Nop())

	updated, err := svc.UpdateProduct(context.Background(), "p1", UpdateProductInput{
		Name: "Tee",
		Variants: []domain.Variant{
			{Size: "S", Color: "Red", Stock: 3},
			{Size: "M", Color: "Red", Stock: 7},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.TotalStock)
}

func TestUpdateProduct_FlatStockWithoutVariants(t *testing.T) {
	products := newMemProductRepo(&domain.Product{ID: "p1"})
	svc := NewCatalogService(products, zerolog.Nop())

	updated, err := svc.UpdateProduct(context.Background(), "p1", UpdateProductInput{
		Name:         "Tee",
		CountInStock: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.TotalStock)
}

func TestListProducts_Paging(t *testing.T) {
	products := newMemProductRepo(
		&domain.Product{ID: "p1"}, &domain.Product{ID: "p2"}, &domain.Product{ID: "p3"},
	)
	svc := NewCatalogService(products, zerolog.Nop())

	page, err := svc.ListProducts(context.Background(), domain.ProductQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := NewCatalogService(newMemProductRepo(), zerolog.Nop())

	_, err := svc.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
