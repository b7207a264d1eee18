package port

import "context"

// EventPublisher emits order lifecycle events for downstream
// consumers. Publishing is best effort; callers log failures instead
// of failing the state transition.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}
