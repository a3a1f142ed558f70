package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"cancelflow/pkg/syncer"
	"cancelflow/pkg/wizard"
)

// API is what a Session needs from the server.
type API interface {
	DownsellVariant(ctx context.Context, userID string) (*VariantResponse, error)
	syncer.Saver
}

// View is what a UI renders after every change.
type View struct {
	Screen            wizard.Screen
	Step, Total       int
	CanContinue       bool
	CanGoBack         bool
	CanAcceptDiscount bool
	Offer             wizard.Offer
}

// Update is delivered to the Notifier when a write settles.
type Update struct {
	View   View
	Result syncer.Result
	// RolledBack is set when the failed write reverted the wizard.
	RolledBack bool
}

type Notifier interface {
	Notify(Update)
}

type NotifierFunc func(Update)

func (f NotifierFunc) Notify(u Update) { f(u) }

// Session is one mounted wizard: the engine plus the write-through sync to
// the server. Methods are safe for concurrent use.
type Session struct {
	userID string
	offer  wizard.Offer
	notify Notifier

	mu     sync.Mutex
	engine *wizard.Engine
	sync   *syncer.Syncer

	wg sync.WaitGroup
}

// Mount reads the user's variant and price and starts the wizard at Start.
func Mount(ctx context.Context, api API, userID string, rules wizard.Rules, discountCents int, notify Notifier) (*Session, error) {
	v, err := api.DownsellVariant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", userID, err)
	}
	e := wizard.NewEngine(v.DownsellVariant, rules)
	s := &Session{
		userID: userID,
		offer:  wizard.Offer{MonthlyPrice: v.MonthlyPrice, DiscountCents: discountCents},
		notify: notify,
		engine: e,
		sync:   syncer.New(api, userID, e.History()),
	}
	log.Debug().Str("user_id", userID).Str("variant", string(v.DownsellVariant)).Int("monthly_price", v.MonthlyPrice).Msg("session mounted")
	return s, nil
}

func (s *Session) Variant() wizard.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Variant()
}

func (s *Session) History() wizard.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.History()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	cur := s.engine.Current()
	step, total, _ := wizard.Progress(cur)
	return View{
		Screen:            cur,
		Step:              step,
		Total:             total,
		CanContinue:       s.engine.CanContinue(),
		CanGoBack:         s.engine.CanGoBack(),
		CanAcceptDiscount: s.engine.CanAcceptDiscount(),
		Offer:             s.offer,
	}
}

// Apply runs ev and, when the history changed, writes it in the background.
// Engine errors are returned and nothing is written.
func (s *Session) Apply(ctx context.Context, ev wizard.Event) error {
	s.mu.Lock()
	if err := s.engine.Apply(ev); err != nil {
		s.mu.Unlock()
		return err
	}
	w := s.sync.Begin(ctx, s.engine.History())
	if w != nil {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if w != nil {
		go s.run(w)
	}
	return nil
}

// GoBack is Apply(ctx, wizard.Back{}) reporting whether it moved.
func (s *Session) GoBack(ctx context.Context) bool {
	return s.Apply(ctx, wizard.Back{}) == nil
}

func (s *Session) run(w *syncer.Write) {
	defer s.wg.Done()
	res := w.Run()

	s.mu.Lock()
	var rolledBack bool
	if res.Outcome == syncer.Failed && s.sync.IsLatest(res.Seq) {
		if err := s.engine.Restore(res.Snapshot); err != nil {
			log.Error().Err(err).Str("user_id", s.userID).Msg("rollback rejected")
		} else {
			rolledBack = true
		}
	}
	view := s.viewLocked()
	s.mu.Unlock()

	if res.Outcome == syncer.Superseded || s.notify == nil {
		return
	}
	s.notify.Notify(Update{View: view, Result: res, RolledBack: rolledBack})
}

// Wait blocks until every background write has settled.
func (s *Session) Wait() { s.wg.Wait() }
