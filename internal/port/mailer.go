package port

import (
	"context"

	"github.com/funkystitch/storefront/internal/core/domain"
)

type Mailer interface {
	SendOTP(ctx context.Context, to, otp string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendContact(ctx context.Context, msg domain.ContactMessage) error
}
