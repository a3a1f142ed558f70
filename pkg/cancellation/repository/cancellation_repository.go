package repository

import (
	"context"
	"time"

	"cancelflow/entities"
)

type CancellationRepository interface {
	FindByUserID(ctx context.Context, userID string) (*entities.Cancellation, error)
	// CreateIfAbsent inserts c unless the user already has a record. It
	// reports whether c was inserted.
	CreateIfAbsent(ctx context.Context, c *entities.Cancellation) (bool, error)
	UpdateState(ctx context.Context, id, state string, at time.Time) error
	// AssignVariant sets the variant of a record that has none yet. It
	// reports whether the row was changed.
	AssignVariant(ctx context.Context, id, variant string) (bool, error)
	List(ctx context.Context) ([]entities.Cancellation, error)
}
