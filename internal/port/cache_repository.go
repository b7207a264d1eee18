package port

import (
	"context"
	"errors"
	"time"

	"github.com/funkystitch/storefront/internal/core/domain"
)

// ErrCacheMiss is returned when a looked-up key does not exist or has
// expired.
var ErrCacheMiss = errors.New("cache miss")

type SessionStore interface {
	PutSession(ctx context.Context, token, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

type RegistrationStore interface {
	// PutPending stores a registration awaiting OTP verification,
	// replacing any previous pending entry for the same email.
	PutPending(ctx context.Context, pending domain.PendingUser, ttl time.Duration) error
	GetPending(ctx context.Context, email string) (*domain.PendingUser, error)
	DeletePending(ctx context.Context, email string) error
}

type ResetTokenStore interface {
	PutResetToken(ctx context.Context, token, userID string, ttl time.Duration) error

	// ConsumeResetToken returns the user id for the token and deletes
	// it so it cannot be replayed.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

type CartStore interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	PutCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type PaymentClaimStore interface {
	// ClaimTransaction sets a first-writer-wins key for the payment
	// transaction id, returning false if it was already claimed.
	ClaimTransaction(ctx context.Context, transactionID string) (bool, error)

	// ReleaseTransaction frees a claim after a failed confirmation so
	// a retry is possible.
	ReleaseTransaction(ctx context.Context, transactionID string) error
}
