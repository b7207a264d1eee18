package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/port"
)

const (
	sessionKeyPrefix = "session:"
	pendingKeyPrefix = "pending:"
	resetKeyPrefix   = "reset:"
	cartKeyPrefix    = "cart:"
	paymentKeyPrefix = "payment:"

	cartTTL         = 30 * 24 * time.Hour
	paymentClaimTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) PutSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err()
}

func (r *RedisAdapter) GetSession(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", port.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}

func (r *RedisAdapter) PutPending(ctx context.Context, pending domain.PendingUser, ttl time.Duration) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending user: %w", err)
	}
	return r.client.Set(ctx, pendingKeyPrefix+pending.Email, data, ttl).Err()
}

func (r *RedisAdapter) GetPending(ctx context.Context, email string) (*domain.PendingUser, error) {
	data, err := r.client.Get(ctx, pendingKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get pending user: %w", err)
	}

	var pending domain.PendingUser
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending user: %w", err)
	}
	return &pending, nil
}

func (r *RedisAdapter) DeletePending(ctx context.Context, email string) error {
	return r.client.Del(ctx, pendingKeyPrefix+email).Err()
}

func (r *RedisAdapter) PutResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
}

// ConsumeResetToken deletes the token as it reads it so the same link
// cannot reset a password twice.
func (r *RedisAdapter) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", port.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (r *RedisAdapter) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (r *RedisAdapter) PutCart(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return r.client.Set(ctx, cartKeyPrefix+cart.UserID, data, cartTTL).Err()
}

func (r *RedisAdapter) DeleteCart(ctx context.Context, userID string) error {
	return r.client.Del(ctx, cartKeyPrefix+userID).Err()
}

// ClaimTransaction is a first-writer-wins guard against confirming the
// same payment transaction twice.
func (r *RedisAdapter) ClaimTransaction(ctx context.Context, transactionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, paymentKeyPrefix+transactionID, 1, paymentClaimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim transaction: %w", err)
	}
	return ok, nil
}

func (r *RedisAdapter) ReleaseTransaction(ctx context.Context, transactionID string) error {
	return r.client.Del(ctx, paymentKeyPrefix+transactionID).Err()
}
