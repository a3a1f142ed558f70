package repository

import (
	"context"

	"cancelflow/entities"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *entities.Subscription) error
	// FindByUserID returns the user's oldest subscription or entities.ErrNotFound.
	FindByUserID(ctx context.Context, userID string) (*entities.Subscription, error)
	FindByID(ctx context.Context, id string) (*entities.Subscription, error)
}
