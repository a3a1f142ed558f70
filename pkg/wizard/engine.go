package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEventNotAllowed is returned for an event the current screen does not
	// accept. The history is left unchanged.
	ErrEventNotAllowed = errors.New("event not allowed on current screen")
	// ErrIncomplete is returned by Continue while required answers are missing.
	ErrIncomplete = errors.New("required answers missing")
	// ErrInvalidAnswer is returned for an answer outside the screen's options.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// Engine owns one user's history for the lifetime of a wizard session. It is
// not safe for concurrent use; callers serialise access.
type Engine struct {
	variant Variant
	rules   Rules
	history History
	rev     uint64
}

func NewEngine(variant Variant, rules Rules) *Engine {
	return &Engine{variant: variant, rules: rules, history: NewHistory()}
}

func (e *Engine) Variant() Variant { return e.variant }

func (e *Engine) Current() Screen { return e.history.Current() }

// History returns a copy of the history; the caller may keep it.
func (e *Engine) History() History { return e.history.Clone() }

// Revision increases on every change of the history.
func (e *Engine) Revision() uint64 { return e.rev }

// Restore replaces the history, e.g. to roll back to a saved snapshot.
func (e *Engine) Restore(h History) error {
	if err := h.Validate(); err != nil {
		return err
	}
	e.set(h.Clone())
	return nil
}

func (e *Engine) set(h History) {
	e.history = h
	e.rev++
}

// CanContinue reports whether the gated continue/complete control of the
// current screen is enabled.
func (e *Engine) CanContinue() bool { return canContinue(e.Current(), e.rules) }

// CanAcceptDiscount reports whether the discounted-offer shortcut is shown.
func (e *Engine) CanAcceptDiscount() bool {
	switch e.Current().(type) {
	case OfferDeclinedSurvey, CancellationReason, ReasonDetail:
		return e.rules.discountShortcut(e.variant)
	}
	return false
}

// CanGoBack reports whether the back control is shown. Start has nothing
// behind it and terminal screens are final.
func (e *Engine) CanGoBack() bool {
	cur := e.Current()
	if IsTerminal(cur.Tag()) {
		return false
	}
	_, ok := e.history.Back()
	return ok
}

// GoBack returns to the previous distinct screen. It reports false when the
// back control is not available.
func (e *Engine) GoBack() bool {
	if !e.CanGoBack() {
		return false
	}
	h, _ := e.history.Back()
	e.set(h)
	return true
}

// Apply runs ev against the current screen. In-screen edits replace the
// current entry; transitions push the next screen. On error the history is
// unchanged.
func (e *Engine) Apply(ev Event) error {
	if _, ok := ev.(Back); ok {
		if !e.GoBack() {
			return e.notAllowed(ev)
		}
		return nil
	}
	cur := e.Current()
	if IsTerminal(cur.Tag()) {
		return e.notAllowed(ev)
	}
	if _, ok := ev.(AcceptDiscount); ok {
		if !e.CanAcceptDiscount() {
			return e.notAllowed(ev)
		}
		e.set(e.history.Push(OfferAccepted{}))
		return nil
	}

	var (
		edit Screen
		next Screen
		err  error
	)
	switch s := cur.(type) {
	case Start:
		edit, next, err = e.onStart(s, ev)
	case JobFoundSurvey:
		edit, next, err = e.onJobFoundSurvey(s, ev)
	case Feedback:
		edit, next, err = e.onFeedback(s, ev)
	case VisaSupport:
		edit, next, err = e.onVisaSupport(s, ev)
	case VisaTypeInput:
		edit, next, err = e.onVisaTypeInput(s, ev)
	case DownsellOffer:
		edit, next, err = e.onDownsellOffer(s, ev)
	case OfferDeclinedSurvey:
		edit, next, err = e.onOfferDeclinedSurvey(s, ev)
	case CancellationReason:
		edit, next, err = e.onCancellationReason(s, ev)
	case ReasonDetail:
		edit, next, err = e.onReasonDetail(s, ev)
	default:
		err = e.notAllowed(ev)
	}
	if err != nil {
		return err
	}

	h := e.history
	if edit != nil {
		h = h.ReplaceTop(edit)
	}
	if next != nil {
		h = h.Push(next)
	}
	e.set(h)
	return nil
}

func (e *Engine) notAllowed(ev Event) error {
	return fmt.Errorf("%w: %s on %s", ErrEventNotAllowed, ev.EventName(), e.Current().Tag())
}

func (e *Engine) incomplete() error {
	return fmt.Errorf("%w: %s", ErrIncomplete, e.Current().Tag())
}

// Start auto-advances as soon as the question is answered.
func (e *Engine) onStart(s Start, ev Event) (Screen, Screen, error) {
	a, ok := ev.(AnswerFoundJob)
	if !ok {
		return nil, nil, e.notAllowed(ev)
	}
	s.FoundJob = boolPtr(a.FoundJob)
	if a.FoundJob {
		return s, JobFoundSurvey{}, nil
	}
	next, err := e.rules.For(e.variant).NoJobRoute.screen()
	if err != nil {
		return nil, nil, err
	}
	return s, next, nil
}

func (e *Engine) onJobFoundSurvey(s JobFoundSurvey, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case AnswerJobSurvey:
		for _, r := range []Range{a.RolesAppliedRange, a.EmailsRange} {
			if r != "" && !rangeIn(r, countRanges) {
				return nil, nil, fmt.Errorf("%w: range %q", ErrInvalidAnswer, r)
			}
		}
		if r := a.CompaniesInterviewedRange; r != "" && !rangeIn(r, interviewRanges) {
			return nil, nil, fmt.Errorf("%w: range %q", ErrInvalidAnswer, r)
		}
		if a.FoundJobUsingMM != nil {
			s.FoundJobUsingMM = boolPtr(*a.FoundJobUsingMM)
		}
		if a.RolesAppliedRange != "" {
			s.RolesAppliedRange = a.RolesAppliedRange
		}
		if a.EmailsRange != "" {
			s.EmailsRange = a.EmailsRange
		}
		if a.CompaniesInterviewedRange != "" {
			s.CompaniesInterviewedRange = a.CompaniesInterviewedRange
		}
		return s, nil, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, Feedback{FoundJobUsingMM: *s.FoundJobUsingMM}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

func (e *Engine) onFeedback(s Feedback, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case EnterFeedback:
		s.Feedback = a.Text
		return s, nil, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, VisaSupport{FoundJobUsingMM: s.FoundJobUsingMM}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

// VisaSupport advances as soon as the lawyer question is answered. Once
// answered, Continue takes the same branch again.
func (e *Engine) onVisaSupport(s VisaSupport, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case AnswerImmigrationLawyer:
		s.HasImmigrationLawyer = boolPtr(a.HasLawyer)
		return s, VisaTypeInput{FoundJobUsingMM: s.FoundJobUsingMM, HasImmigrationLawyer: a.HasLawyer}, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, VisaTypeInput{FoundJobUsingMM: s.FoundJobUsingMM, HasImmigrationLawyer: *s.HasImmigrationLawyer}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

func (e *Engine) onVisaTypeInput(s VisaTypeInput, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case EnterVisaType:
		s.VisaType = a.VisaType
		return s, nil, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		if s.HasImmigrationLawyer {
			return nil, TerminalNoVisaNeeded{}, nil
		}
		return nil, TerminalVisaHandoff{}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

func (e *Engine) onDownsellOffer(_ DownsellOffer, ev Event) (Screen, Screen, error) {
	switch ev.(type) {
	case AcceptOffer:
		return nil, OfferAccepted{}, nil
	case DeclineOffer:
		return nil, OfferDeclinedSurvey{}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

func (e *Engine) onOfferDeclinedSurvey(s OfferDeclinedSurvey, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case AnswerDeclinedSurvey:
		for _, r := range []Range{a.RolesApplied, a.CompaniesEmailed} {
			if r != "" && !rangeIn(r, countRanges) {
				return nil, nil, fmt.Errorf("%w: range %q", ErrInvalidAnswer, r)
			}
		}
		if r := a.CompaniesInterviewed; r != "" && !rangeIn(r, interviewRanges) {
			return nil, nil, fmt.Errorf("%w: range %q", ErrInvalidAnswer, r)
		}
		if a.RolesApplied != "" {
			s.RolesApplied = a.RolesApplied
		}
		if a.CompaniesEmailed != "" {
			s.CompaniesEmailed = a.CompaniesEmailed
		}
		if a.CompaniesInterviewed != "" {
			s.CompaniesInterviewed = a.CompaniesInterviewed
		}
		return s, nil, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, CancellationReason{}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

// Choosing a reason navigates directly to its detail screen; Continue
// reopens the detail of the reason already chosen.
func (e *Engine) onCancellationReason(s CancellationReason, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case ChooseReason:
		if !a.Reason.Valid() {
			return nil, nil, fmt.Errorf("%w: reason %q", ErrInvalidAnswer, a.Reason)
		}
		s.Reason = a.Reason
		return s, ReasonDetail{Kind: a.Reason}, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, ReasonDetail{Kind: s.Reason}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

func (e *Engine) onReasonDetail(s ReasonDetail, ev Event) (Screen, Screen, error) {
	switch a := ev.(type) {
	case EnterReasonDetail:
		if s.Kind.AsksForPrice() {
			s.Detail = SanitizePrice(a.Text)
		} else {
			s.Detail = a.Text
		}
		return s, nil, nil
	case Continue:
		if !canContinue(s, e.rules) {
			return nil, nil, e.incomplete()
		}
		return nil, CancellationComplete{}, nil
	}
	return nil, nil, e.notAllowed(ev)
}

// canContinue is the gating predicate of every screen with a continue or
// complete control. Screens without one report false.
func canContinue(s Screen, rules Rules) bool {
	switch v := s.(type) {
	case JobFoundSurvey:
		return v.FoundJobUsingMM != nil && v.RolesAppliedRange != "" &&
			v.EmailsRange != "" && v.CompaniesInterviewedRange != ""
	case Feedback:
		return textLongEnough(v.Feedback, rules.MinFeedbackChars)
	case VisaSupport:
		return v.HasImmigrationLawyer != nil
	case VisaTypeInput:
		return strings.TrimSpace(v.VisaType) != ""
	case OfferDeclinedSurvey:
		return v.RolesApplied != "" && v.CompaniesEmailed != "" && v.CompaniesInterviewed != ""
	case CancellationReason:
		return v.Reason != ""
	case ReasonDetail:
		if v.Kind.AsksForPrice() {
			return ValidPrice(v.Detail)
		}
		return textLongEnough(v.Detail, rules.MinFeedbackChars)
	}
	return false
}

// CanContinue evaluates the gating predicate of s under rules.
func CanContinue(s Screen, rules Rules) bool { return canContinue(s, rules) }
