package service

import (
	"context"

	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
)

// ActivityService persists auth audit events dequeued by the dispatcher.
type ActivityService struct {
	repo ports.ActivityRepository
}

func NewActivityService(repo ports.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) Record(ctx context.Context, activity domain.AuthActivity) error {
	return s.repo.Insert(ctx, &activity)
}
