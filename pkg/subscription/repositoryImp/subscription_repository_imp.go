package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cancelflow/entities"
	"cancelflow/pkg/subscription/repository"
)

type subscriptionRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.SubscriptionRepository { return &subscriptionRepo{db} }

func (r *subscriptionRepo) Create(ctx context.Context, s *entities.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *subscriptionRepo) FindByUserID(ctx context.Context, userID string) (*entities.Subscription, error) {
	var s entities.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").First(&s).Error
	return found(&s, err)
}

func (r *subscriptionRepo) FindByID(ctx context.Context, id string) (*entities.Subscription, error) {
	var s entities.Subscription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return found(&s, err)
}

func found(s *entities.Subscription, err error) (*entities.Subscription, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
