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
	"github.com/funkystitch/storefront/internal/port"
)

var (
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type CatalogService struct {
	products port.ProductRepository
	logger   zerolog.Logger
}

func NewCatalogService(products port.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products []domain.Product
	Page     int
	Pages    int
	Total    int
}

func (s *CatalogService) ListProducts(ctx context.Context, query domain.ProductQuery) (*ProductPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 12
	}

	products, total, err := s.products.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	pages := (total + query.PageSize - 1) / query.PageSize
	if pages < 1 {
		pages = 1
	}
	return &ProductPage{Products: products, Page: query.Page, Pages: pages, Total: total}, nil
}

func (s *CatalogService) TopProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = 3
	}
	return s.products.Top(ctx, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// CreateSampleProduct inserts a placeholder for the back office to
// edit afterwards.
func (s *CatalogService) CreateSampleProduct(ctx context.Context, adminID string) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:           uuid.NewString(),
		Name:         "Sample name",
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		Description:  "Sample description",
		BasePrice:    decimal.Zero,
		CountInStock: 0,
		CreatedBy:    adminID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

type UpdateProductInput struct {
	Name            string
	Image           string
	Images          []domain.ProductImage
	Brand           string
	Category        string
	Description     string
	Features        []string
	Specifications  []domain.Specification
	BasePrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	CountInStock    int
	Variants        []domain.Variant
	AvailableSizes  []string
	AvailableColors []string
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	product.Name = in.Name
	product.Image = in.Image
	product.Images = in.Images
	product.Brand = in.Brand
	product.Category = in.Category
	product.Description = in.Description
	product.Features = in.Features
	product.Specifications = in.Specifications
	product.BasePrice = in.BasePrice
	product.DiscountPercent = in.DiscountPercent
	product.CountInStock = in.CountInStock
	product.Variants = in.Variants
	product.AvailableSizes = in.AvailableSizes
	product.AvailableColors = in.AvailableColors

	product.TotalStock = 0
	for _, v := range product.Variants {
		product.TotalStock += v.Stock
	}
	if len(product.Variants) == 0 {
		product.TotalStock = product.CountInStock
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if isNotFound(err) {
		return ErrProductNotFound
	}
	return err
}

// AddReview appends a review and recomputes the product's mean rating.
// One review per user per product.
func (s *CatalogService) AddReview(ctx context.Context, productID string, user *domain.User, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	product, err := s.products.GetByID(ctx, productID)
	if isNotFound(err) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if product.HasReviewBy(user.ID) {
		return ErrAlreadyReviewed
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	sum := rating
	for _, r := range product.Reviews {
		sum += r.Rating
	}
	numReviews := len(product.Reviews) + 1
	mean := float64(sum) / float64(numReviews)

	if err := s.products.AddReview(ctx, productID, review, mean, numReviews); err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}
