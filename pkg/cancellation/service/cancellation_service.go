package service

import (
	"context"
	"errors"

	"cancelflow/pkg/wizard"
)

var (
	ErrInvalidUserID        = errors.New("User ID must be a string")
	ErrInvalidState         = errors.New("State must be a valid JSON array")
	ErrSubscriptionNotFound = errors.New("Subscription not found")
)

// StoreError is a persistence failure. Op names the failed step the way it
// is reported to clients, e.g. "fetch subscription".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "failed to " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Public is the message safe to return to a client.
func (e *StoreError) Public() string { return "Failed to " + e.Op }

type VariantResult struct {
	DownsellVariant wizard.Variant `json:"downsellVariant"`
	MonthlyPrice    int            `json:"monthlyPrice"`
}

// An empty userID is looked up like any other and yields
// ErrSubscriptionNotFound.
type CancellationService interface {
	// DownsellVariant returns the user's variant, assigning one on first use.
	DownsellVariant(ctx context.Context, userID string) (*VariantResult, error)
	// SaveState replaces the stored history with state, a JSON array.
	SaveState(ctx context.Context, userID string, state []byte) error
}
