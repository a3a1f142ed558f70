// Package syncer keeps a remote copy of a wizard history in step with the
// in-memory one. Every write replaces the whole history; writes are numbered
// and only the latest issued write may advance or roll back state.
package syncer

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"cancelflow/pkg/wizard"
)

// Saver persists a user's full history.
type Saver interface {
	SaveState(ctx context.Context, userID string, h wizard.History) error
}

type Outcome int

const (
	// Unchanged: nothing differed from the saved or in-flight snapshot.
	Unchanged Outcome = iota
	// Saved: the write succeeded and is now the last saved snapshot.
	Saved
	// Superseded: a newer write was issued before this one finished; the
	// result is ignored.
	Superseded
	// Failed: the latest write failed; Snapshot is the state to restore.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Saved:
		return "saved"
	case Superseded:
		return "superseded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

type Result struct {
	Outcome Outcome
	Seq     uint64
	// Snapshot is the saved history for Saved and the last saved history to
	// roll back to for Failed.
	Snapshot wizard.History
	Err      error
}

type Syncer struct {
	saver  Saver
	userID string

	mu        sync.Mutex
	lastSaved wizard.History
	pending   wizard.History
	issued    uint64
	cancel    context.CancelFunc
}

// New starts from initial as the confirmed snapshot.
func New(saver Saver, userID string, initial wizard.History) *Syncer {
	return &Syncer{saver: saver, userID: userID, lastSaved: initial.Clone()}
}

func (s *Syncer) LastSaved() wizard.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved.Clone()
}

// IsLatest reports whether seq is the most recently issued write.
func (s *Syncer) IsLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.issued
}

// Write is one issued, not yet executed, save.
type Write struct {
	s        *Syncer
	ctx      context.Context
	seq      uint64
	snapshot wizard.History
}

func (w *Write) Seq() uint64 { return w.seq }

// Begin issues a write for h, cancelling any write still in flight. It
// returns nil when h matches what is saved or already being saved.
//
// Cancellation only stops the local request. A superseded write the server
// has already received can still commit after the newer one, and the store
// keeps whichever arrives last. The sequence number is not sent.
func (s *Syncer) Begin(ctx context.Context, h wizard.History) *Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		if h.Equal(s.pending) {
			return nil
		}
	} else if h.Equal(s.lastSaved) {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}
	wctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.issued++
	s.pending = h.Clone()
	return &Write{s: s, ctx: wctx, seq: s.issued, snapshot: s.pending}
}

// Run performs the write and settles its outcome.
func (w *Write) Run() Result {
	err := w.s.saver.SaveState(w.ctx, w.s.userID, w.snapshot)
	return w.s.settle(w, err)
}

func (s *Syncer) settle(w *Write, err error) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.seq != s.issued {
		log.Debug().Str("user_id", s.userID).Uint64("seq", w.seq).Uint64("latest", s.issued).Msg("sync: superseded write ignored")
		return Result{Outcome: Superseded, Seq: w.seq, Err: err}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = nil
	if err != nil {
		log.Warn().Err(err).Str("user_id", s.userID).Uint64("seq", w.seq).Msg("sync: write failed, rolling back")
		return Result{Outcome: Failed, Seq: w.seq, Snapshot: s.lastSaved.Clone(), Err: err}
	}
	s.lastSaved = w.snapshot
	log.Debug().Str("user_id", s.userID).Uint64("seq", w.seq).Int("entries", len(w.snapshot)).Msg("sync: saved")
	return Result{Outcome: Saved, Seq: w.seq, Snapshot: w.snapshot.Clone()}
}

// Save issues and runs a write synchronously.
func (s *Syncer) Save(ctx context.Context, h wizard.History) Result {
	w := s.Begin(ctx, h)
	if w == nil {
		return Result{Outcome: Unchanged}
	}
	return w.Run()
}
