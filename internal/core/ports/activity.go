package ports

import (
	"context"

	"github.com/famlink/family-api/internal/core/domain"
)

// ActivityRepository persists auth audit events.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.AuthActivity) error
}

// ActivityService processes a single audit event end-to-end.
type ActivityService interface {
	Record(ctx context.Context, activity domain.AuthActivity) error
}

// ActivitySink accepts audit events for asynchronous processing. Enqueue is
// best-effort: it must never block the auth flow that produced the event.
type ActivitySink interface {
	Enqueue(activity domain.AuthActivity)
}
