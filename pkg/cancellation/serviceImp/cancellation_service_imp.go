package serviceImp

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"cancelflow/entities"
	cancelrepo "cancelflow/pkg/cancellation/repository"
	"cancelflow/pkg/cancellation/service"
	"cancelflow/pkg/jsonx"
	subrepo "cancelflow/pkg/subscription/repository"
	"cancelflow/pkg/wizard"
)

const (
	opFetchSubscription = "fetch subscription"
	opFetchState        = "fetch cancellation flow state"
	opInsertState       = "insert cancellation flow state"
	opUpdateState       = "update cancellation flow state"
)

type Option func(*cancellationSvc)

// WithPicker replaces the uniform random variant choice.
func WithPicker(pick func() wizard.Variant) Option {
	return func(s *cancellationSvc) { s.pick = pick }
}

func WithClock(now func() time.Time) Option {
	return func(s *cancellationSvc) { s.now = now }
}

type cancellationSvc struct {
	subs    subrepo.SubscriptionRepository
	cancels cancelrepo.CancellationRepository
	pick    func() wizard.Variant
	now     func() time.Time

	// first-time assignment per user
	assign singleflight.Group
}

func NewCancellationService(subs subrepo.SubscriptionRepository, cancels cancelrepo.CancellationRepository, opts ...Option) service.CancellationService {
	s := &cancellationSvc{subs: subs, cancels: cancels, pick: randomVariant, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func randomVariant() wizard.Variant {
	if rand.IntN(2) == 0 {
		return wizard.VariantA
	}
	return wizard.VariantB
}

func (s *cancellationSvc) DownsellVariant(ctx context.Context, userID string) (*service.VariantResult, error) {
	sub, err := s.subscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	v, err, _ := s.assign.Do(userID, func() (any, error) {
		return s.ensureVariant(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return &service.VariantResult{DownsellVariant: v.(wizard.Variant), MonthlyPrice: sub.MonthlyPrice}, nil
}

func (s *cancellationSvc) subscription(ctx context.Context, userID string) (*entities.Subscription, error) {
	sub, err := s.subs.FindByUserID(ctx, userID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, service.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, &service.StoreError{Op: opFetchSubscription, Err: err}
	}
	return sub, nil
}

// ensureVariant reads the stored variant or assigns one. A lost insert or
// update race is settled by reading again.
func (s *cancellationSvc) ensureVariant(ctx context.Context, sub *entities.Subscription) (wizard.Variant, error) {
	for range 2 {
		c, err := s.cancels.FindByUserID(ctx, sub.UserID)
		switch {
		case errors.Is(err, entities.ErrNotFound):
			v := s.pick()
			created, err := s.cancels.CreateIfAbsent(ctx, &entities.Cancellation{
				UserID:          sub.UserID,
				SubscriptionID:  sub.ID,
				DownsellVariant: string(v),
				StateJSONArray:  "[]",
			})
			if err != nil {
				return "", &service.StoreError{Op: opInsertState, Err: err}
			}
			if created {
				log.Info().Str("user_id", sub.UserID).Str("variant", string(v)).Msg("downsell variant assigned")
				return v, nil
			}
		case err != nil:
			return "", &service.StoreError{Op: opFetchState, Err: err}
		case wizard.Variant(c.DownsellVariant).Valid():
			return wizard.Variant(c.DownsellVariant), nil
		default:
			v := s.pick()
			ok, err := s.cancels.AssignVariant(ctx, c.ID, string(v))
			if err != nil {
				return "", &service.StoreError{Op: opUpdateState, Err: err}
			}
			if ok {
				log.Info().Str("user_id", sub.UserID).Str("variant", string(v)).Msg("downsell variant assigned to existing record")
				return v, nil
			}
		}
	}
	return "", &service.StoreError{Op: opFetchState, Err: errors.New("variant assignment did not settle")}
}

func (s *cancellationSvc) SaveState(ctx context.Context, userID string, state []byte) error {
	state = bytes.TrimSpace(state)
	if !isJSONArray(state) {
		return service.ErrInvalidState
	}
	sub, err := s.subscription(ctx, userID)
	if err != nil {
		return err
	}

	c, err := s.cancels.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, entities.ErrNotFound):
		created, err := s.cancels.CreateIfAbsent(ctx, &entities.Cancellation{
			UserID:          userID,
			SubscriptionID:  sub.ID,
			DownsellVariant: string(s.pick()),
			StateJSONArray:  string(state),
		})
		if err != nil {
			return &service.StoreError{Op: opInsertState, Err: err}
		}
		if created {
			return nil
		}
		// Inserted concurrently; fall through to an update of that row.
		if c, err = s.cancels.FindByUserID(ctx, userID); err != nil {
			return &service.StoreError{Op: opFetchState, Err: err}
		}
	case err != nil:
		return &service.StoreError{Op: opFetchState, Err: err}
	}

	if err := s.cancels.UpdateState(ctx, c.ID, string(state), s.now()); err != nil {
		return &service.StoreError{Op: opUpdateState, Err: err}
	}
	log.Debug().Str("user_id", userID).Int("bytes", len(state)).Msg("cancellation flow state saved")
	return nil
}

func isJSONArray(b []byte) bool {
	return len(b) > 0 && b[0] == '[' && jsonx.Valid(b)
}
