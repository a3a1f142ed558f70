package repositoryImp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cancelflow/entities"
	"cancelflow/pkg/cancellation/repository"
)

type cancellationRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.CancellationRepository { return &cancellationRepo{db} }

func (r *cancellationRepo) FindByUserID(ctx context.Context, userID string) (*entities.Cancellation, error) {
	var c entities.Cancellation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cancellationRepo) CreateIfAbsent(ctx context.Context, c *entities.Cancellation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *cancellationRepo) UpdateState(ctx context.Context, id, state string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entities.Cancellation{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"state_json_array": state, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *cancellationRepo) AssignVariant(ctx context.Context, id, variant string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.Cancellation{}).
		Where("id = ? AND (downsell_variant = '' OR downsell_variant IS NULL)", id).
		UpdateColumn("downsell_variant", variant)
	return res.RowsAffected == 1, res.Error
}

func (r *cancellationRepo) List(ctx context.Context) ([]entities.Cancellation, error) {
	var cs []entities.Cancellation
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}
