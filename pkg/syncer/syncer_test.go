package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancelflow/pkg/wizard"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls []wizard.History
	err   error
}

func (f *fakeSaver) SaveState(_ context.Context, _ string, h wizard.History) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, h.Clone())
	return f.err
}

// gatedSaver blocks every write until its context is cancelled or release is
// closed, then returns the context error or nil.
type gatedSaver struct {
	release chan struct{}
}

func (g *gatedSaver) SaveState(ctx context.Context, _ string, _ wizard.History) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.release:
		return nil
	}
}

func step(h wizard.History, s wizard.Screen) wizard.History { return h.Push(s) }

func TestSyncer_SaveAdvancesLastSaved(t *testing.T) {
	saver := &fakeSaver{}
	h0 := wizard.NewHistory()
	s := New(saver, "u1", h0)

	h1 := step(h0, wizard.DownsellOffer{})
	res := s.Save(context.Background(), h1)

	assert.Equal(t, Saved, res.Outcome)
	assert.Equal(t, uint64(1), res.Seq)
	assert.True(t, s.LastSaved().Equal(h1))
	require.Len(t, saver.calls, 1)
	assert.True(t, saver.calls[0].Equal(h1), "the full history is sent")
}

func TestSyncer_UnchangedHistoryIsNotWritten(t *testing.T) {
	saver := &fakeSaver{}
	h0 := wizard.NewHistory()
	s := New(saver, "u1", h0)

	res := s.Save(context.Background(), h0.Clone())
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Empty(t, saver.calls)
}

func TestSyncer_FailureReturnsLastSavedForRollback(t *testing.T) {
	saver := &fakeSaver{}
	h0 := wizard.NewHistory()
	s := New(saver, "u1", h0)

	saved := step(h0, wizard.DownsellOffer{})
	require.Equal(t, Saved, s.Save(context.Background(), saved).Outcome)

	saver.err = errors.New("store unavailable")
	h1 := step(saved, wizard.OfferDeclinedSurvey{})
	res := s.Save(context.Background(), h1)

	assert.Equal(t, Failed, res.Outcome)
	assert.EqualError(t, res.Err, "store unavailable")
	assert.True(t, res.Snapshot.Equal(saved))
	assert.False(t, res.Snapshot.Equal(h1))
	assert.True(t, s.LastSaved().Equal(saved))
}

func TestSyncer_NewWriteSupersedesInFlightWrite(t *testing.T) {
	gate := &gatedSaver{release: make(chan struct{})}
	h0 := wizard.NewHistory()
	s := New(gate, "u1", h0)
	ctx := context.Background()

	h1 := step(h0, wizard.DownsellOffer{})
	h2 := step(h1, wizard.OfferDeclinedSurvey{})

	first := s.Begin(ctx, h1)
	require.NotNil(t, first)
	second := s.Begin(ctx, h2)
	require.NotNil(t, second)
	assert.Greater(t, second.Seq(), first.Seq())

	res1 := first.Run()
	assert.Equal(t, Superseded, res1.Outcome)
	assert.ErrorIs(t, res1.Err, context.Canceled)
	assert.True(t, s.LastSaved().Equal(h0), "a superseded write neither saves nor rolls back")

	close(gate.release)
	res2 := second.Run()
	assert.Equal(t, Saved, res2.Outcome)
	assert.True(t, s.LastSaved().Equal(h2))
	assert.True(t, s.IsLatest(second.Seq()))
}

func TestSyncer_StaleSuccessDoesNotOverwriteNewerState(t *testing.T) {
	saver := &fakeSaver{}
	h0 := wizard.NewHistory()
	s := New(saver, "u1", h0)
	ctx := context.Background()

	h1 := step(h0, wizard.DownsellOffer{})
	h2 := step(h1, wizard.OfferAccepted{})
	slow := s.Begin(ctx, h1)
	fast := s.Begin(ctx, h2)

	assert.Equal(t, Saved, fast.Run().Outcome)
	assert.Equal(t, Superseded, slow.Run().Outcome)
	assert.True(t, s.LastSaved().Equal(h2))
}

func TestSyncer_BeginSkipsDuplicateOfPending(t *testing.T) {
	gate := &gatedSaver{release: make(chan struct{})}
	close(gate.release)
	h0 := wizard.NewHistory()
	s := New(gate, "u1", h0)

	h1 := step(h0, wizard.DownsellOffer{})
	w := s.Begin(context.Background(), h1)
	require.NotNil(t, w)
	assert.Nil(t, s.Begin(context.Background(), h1.Clone()))

	back := s.Begin(context.Background(), h0)
	require.NotNil(t, back, "returning to the saved state still overwrites the in-flight write")
	assert.Equal(t, Superseded, w.Run().Outcome)
	assert.Equal(t, Saved, back.Run().Outcome)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "saved", Saved.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
