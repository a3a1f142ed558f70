// Package wizard is the cancellation flow state machine: the screen graph,
// the per-screen answers that gate forward progress, and the history that
// doubles as navigation stack and persisted state. It performs no I/O.
package wizard

import "fmt"

// ScreenTag identifies a node of the screen graph. It is the "screen" field
// of every persisted history entry.
type ScreenTag string

const (
	TagStart          ScreenTag = "start"
	TagJobFoundSurvey ScreenTag = "job-found-survey"
	TagFeedback       ScreenTag = "job-found-feedback"

	TagVisaSupportMM ScreenTag = "visa-support-mm"
	TagVisaSupport   ScreenTag = "visa-support"

	TagVisaTypeMMLawyer   ScreenTag = "visa-type-mm-lawyer"
	TagVisaTypeMMNoLawyer ScreenTag = "visa-type-mm-no-lawyer"
	TagVisaTypeLawyer     ScreenTag = "visa-type-lawyer"
	TagVisaTypeNoLawyer   ScreenTag = "visa-type-no-lawyer"

	TagCompleteNoVisaNeeded ScreenTag = "complete-no-visa-needed"
	TagCompleteVisaHandoff  ScreenTag = "complete-visa-handoff"

	TagDownsellOffer       ScreenTag = "downsell-offer"
	TagOfferAccepted       ScreenTag = "offer-accepted"
	TagOfferDeclinedSurvey ScreenTag = "offer-declined-survey"
	TagCancellationReason  ScreenTag = "cancellation-reason"

	TagReasonTooExpensive       ScreenTag = "reason-too-expensive"
	TagReasonPlatformNotHelpful ScreenTag = "reason-platform-not-helpful"
	TagReasonNotEnoughJobs      ScreenTag = "reason-not-enough-jobs"
	TagReasonNotMoving          ScreenTag = "reason-not-moving"
	TagReasonOther              ScreenTag = "reason-other"

	TagCancellationComplete ScreenTag = "cancellation-complete"
)

// Screen is one entry of the history. Implementations are plain values; an
// edit produces a new value rather than mutating a stored one.
type Screen interface {
	Tag() ScreenTag
	isScreen()
}

type Start struct {
	FoundJob *bool `json:"foundJob,omitempty"`
}

type JobFoundSurvey struct {
	FoundJobUsingMM           *bool `json:"foundJobUsingMM,omitempty"`
	RolesAppliedRange         Range `json:"rolesAppliedRange,omitempty"`
	EmailsRange               Range `json:"emailsRange,omitempty"`
	CompaniesInterviewedRange Range `json:"companiesInterviewedRange,omitempty"`
}

type Feedback struct {
	Feedback        string `json:"feedback,omitempty"`
	FoundJobUsingMM bool   `json:"foundJobUsingMM"`
}

// VisaSupport asks whether the user already has an immigration lawyer. The
// tag depends on whether the job was found through the product.
type VisaSupport struct {
	FoundJobUsingMM      bool  `json:"foundJobUsingMM"`
	HasImmigrationLawyer *bool `json:"hasImmigrationLawyer,omitempty"`
}

// VisaTypeInput has four tags, one per (found via product, has lawyer) branch.
type VisaTypeInput struct {
	FoundJobUsingMM      bool   `json:"foundJobUsingMM"`
	HasImmigrationLawyer bool   `json:"hasImmigrationLawyer"`
	VisaType             string `json:"visaType,omitempty"`
}

type TerminalNoVisaNeeded struct{}

type TerminalVisaHandoff struct{}

// DownsellOffer is the discounted-price offer shown on the no-job track.
type DownsellOffer struct{}

type OfferAccepted struct{}

type OfferDeclinedSurvey struct {
	RolesApplied         Range `json:"rolesApplied,omitempty"`
	CompaniesEmailed     Range `json:"companiesEmailed,omitempty"`
	CompaniesInterviewed Range `json:"companiesInterviewed,omitempty"`
}

type CancellationReason struct {
	Reason Reason `json:"reason,omitempty"`
}

// ReasonDetail collects the follow-up for the chosen reason: a monthly price
// for ReasonTooExpensive, free text for every other reason.
type ReasonDetail struct {
	Kind   Reason `json:"subKind"`
	Detail string `json:"freeformOrPrice,omitempty"`
}

type CancellationComplete struct{}

func (Start) Tag() ScreenTag          { return TagStart }
func (JobFoundSurvey) Tag() ScreenTag { return TagJobFoundSurvey }
func (Feedback) Tag() ScreenTag       { return TagFeedback }

func (s VisaSupport) Tag() ScreenTag {
	if s.FoundJobUsingMM {
		return TagVisaSupportMM
	}
	return TagVisaSupport
}

func (s VisaTypeInput) Tag() ScreenTag {
	switch {
	case s.FoundJobUsingMM && s.HasImmigrationLawyer:
		return TagVisaTypeMMLawyer
	case s.FoundJobUsingMM:
		return TagVisaTypeMMNoLawyer
	case s.HasImmigrationLawyer:
		return TagVisaTypeLawyer
	default:
		return TagVisaTypeNoLawyer
	}
}

func (TerminalNoVisaNeeded) Tag() ScreenTag { return TagCompleteNoVisaNeeded }
func (TerminalVisaHandoff) Tag() ScreenTag  { return TagCompleteVisaHandoff }
func (DownsellOffer) Tag() ScreenTag        { return TagDownsellOffer }
func (OfferAccepted) Tag() ScreenTag        { return TagOfferAccepted }
func (OfferDeclinedSurvey) Tag() ScreenTag  { return TagOfferDeclinedSurvey }
func (CancellationReason) Tag() ScreenTag   { return TagCancellationReason }
func (s ReasonDetail) Tag() ScreenTag       { return ScreenTag("reason-" + string(s.Kind)) }
func (CancellationComplete) Tag() ScreenTag { return TagCancellationComplete }

func (Start) isScreen()                {}
func (JobFoundSurvey) isScreen()       {}
func (Feedback) isScreen()             {}
func (VisaSupport) isScreen()          {}
func (VisaTypeInput) isScreen()        {}
func (TerminalNoVisaNeeded) isScreen() {}
func (TerminalVisaHandoff) isScreen()  {}
func (DownsellOffer) isScreen()        {}
func (OfferAccepted) isScreen()        {}
func (OfferDeclinedSurvey) isScreen()  {}
func (CancellationReason) isScreen()   {}
func (ReasonDetail) isScreen()         {}
func (CancellationComplete) isScreen() {}

// IsTerminal reports whether no further input is collected on the screen.
func IsTerminal(tag ScreenTag) bool {
	switch tag {
	case TagCompleteNoVisaNeeded, TagCompleteVisaHandoff, TagOfferAccepted, TagCancellationComplete:
		return true
	}
	return false
}

// Progress returns the "step N of total" indicator for a screen. Start and
// terminal screens have none.
func Progress(s Screen) (step, total int, ok bool) {
	const steps = 3
	switch s.(type) {
	case JobFoundSurvey, DownsellOffer:
		return 1, steps, true
	case Feedback, OfferDeclinedSurvey:
		return 2, steps, true
	case VisaSupport, VisaTypeInput, CancellationReason, ReasonDetail:
		return 3, steps, true
	}
	return 0, 0, false
}

func describe(s Screen) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%T)", s.Tag(), s)
}
