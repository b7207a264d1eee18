package port

import (
	"context"
	"errors"

	"github.com/funkystitch/storefront/internal/core/domain"
)

// ErrNotFound is returned by repositories when the requested record
// does not exist.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailOrPhoneTaken reports whether any user already holds the
	// email address or phone number.
	EmailOrPhoneTaken(ctx context.Context, email, phone string) (bool, error)

	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// List returns one page of products plus the total match count.
	List(ctx context.Context, query domain.ProductQuery) ([]domain.Product, int, error)
	Top(ctx context.Context, limit int) ([]domain.Product, error)

	// AddReview inserts the review and persists the recomputed rating
	// aggregate in the same transaction.
	AddReview(ctx context.Context, productID string, review domain.Review, rating float64, numReviews int) error

	// AdjustStockForOrder applies every decrement of one paid order in
	// a single transaction and reports a per-line outcome. A missing
	// product or variant is an outcome, not an error, and never blocks
	// the remaining lines.
	AdjustStockForOrder(ctx context.Context, decs []domain.StockDecrement) ([]domain.StockAdjustment, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error

	// PaymentTransactionSeen reports whether the payment provider's
	// transaction id was already recorded on any paid order.
	PaymentTransactionSeen(ctx context.Context, transactionID string) (bool, error)
}
