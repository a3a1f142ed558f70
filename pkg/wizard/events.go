package wizard

import (
	"fmt"

	"cancelflow/pkg/jsonx"
)

// Event is a user action applied to the current screen.
type Event interface {
	EventName() string
}

// AnswerFoundJob answers the Start question and advances immediately.
type AnswerFoundJob struct {
	FoundJob bool `json:"foundJob"`
}

// AnswerJobSurvey sets any subset of the job-found survey answers. Unset
// fields leave the current answer untouched.
type AnswerJobSurvey struct {
	FoundJobUsingMM           *bool `json:"foundJobUsingMM,omitempty"`
	RolesAppliedRange         Range `json:"rolesAppliedRange,omitempty"`
	EmailsRange               Range `json:"emailsRange,omitempty"`
	CompaniesInterviewedRange Range `json:"companiesInterviewedRange,omitempty"`
}

// EnterFeedback replaces the feedback text.
type EnterFeedback struct {
	Text string `json:"text"`
}

// AnswerImmigrationLawyer answers the visa support question and advances
// immediately.
type AnswerImmigrationLawyer struct {
	HasLawyer bool `json:"hasLawyer"`
}

type EnterVisaType struct {
	VisaType string `json:"visaType"`
}

type AcceptOffer struct{}

type DeclineOffer struct{}

type AnswerDeclinedSurvey struct {
	RolesApplied         Range `json:"rolesApplied,omitempty"`
	CompaniesEmailed     Range `json:"companiesEmailed,omitempty"`
	CompaniesInterviewed Range `json:"companiesInterviewed,omitempty"`
}

// ChooseReason picks the cancellation reason and opens its detail screen.
type ChooseReason struct {
	Reason Reason `json:"reason"`
}

// EnterReasonDetail replaces the detail answer. On the price screen the text
// is sanitized as typed.
type EnterReasonDetail struct {
	Text string `json:"text"`
}

// Continue is the gated "continue"/"complete" button.
type Continue struct{}

// AcceptDiscount takes the discounted offer from the decline track.
type AcceptDiscount struct{}

// Back is the back button; see Engine.GoBack.
type Back struct{}

func (AnswerFoundJob) EventName() string          { return "answer-found-job" }
func (AnswerJobSurvey) EventName() string         { return "answer-job-survey" }
func (EnterFeedback) EventName() string           { return "enter-feedback" }
func (AnswerImmigrationLawyer) EventName() string { return "answer-immigration-lawyer" }
func (EnterVisaType) EventName() string           { return "enter-visa-type" }
func (AcceptOffer) EventName() string             { return "accept-offer" }
func (DeclineOffer) EventName() string            { return "decline-offer" }
func (AnswerDeclinedSurvey) EventName() string    { return "answer-declined-survey" }
func (ChooseReason) EventName() string            { return "choose-reason" }
func (EnterReasonDetail) EventName() string       { return "enter-reason-detail" }
func (Continue) EventName() string                { return "continue" }
func (AcceptDiscount) EventName() string          { return "accept-discount" }
func (Back) EventName() string                    { return "back" }

type eventDecoder func([]byte) (Event, error)

func decodeEvent[T Event]() eventDecoder {
	return func(data []byte) (Event, error) {
		var ev T
		if err := jsonx.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}

var eventDecoders = map[string]eventDecoder{
	AnswerFoundJob{}.EventName():          decodeEvent[AnswerFoundJob](),
	AnswerJobSurvey{}.EventName():         decodeEvent[AnswerJobSurvey](),
	EnterFeedback{}.EventName():           decodeEvent[EnterFeedback](),
	AnswerImmigrationLawyer{}.EventName(): decodeEvent[AnswerImmigrationLawyer](),
	EnterVisaType{}.EventName():           decodeEvent[EnterVisaType](),
	AcceptOffer{}.EventName():             decodeEvent[AcceptOffer](),
	DeclineOffer{}.EventName():            decodeEvent[DeclineOffer](),
	AnswerDeclinedSurvey{}.EventName():    decodeEvent[AnswerDeclinedSurvey](),
	ChooseReason{}.EventName():            decodeEvent[ChooseReason](),
	EnterReasonDetail{}.EventName():       decodeEvent[EnterReasonDetail](),
	Continue{}.EventName():                decodeEvent[Continue](),
	AcceptDiscount{}.EventName():          decodeEvent[AcceptDiscount](),
	Back{}.EventName():                    decodeEvent[Back](),
}

// ParseEvents decodes a script of events, each an object with an "event"
// name and the event's fields, e.g. {"event":"answer-found-job","foundJob":true}.
func ParseEvents(data []byte) ([]Event, error) {
	var raw []jsonx.RawMessage
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]Event, 0, len(raw))
	for i, r := range raw {
		var head struct {
			Event string `json:"event"`
		}
		if err := jsonx.Unmarshal(r, &head); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		dec, ok := eventDecoders[head.Event]
		if !ok {
			return nil, fmt.Errorf("event %d: unknown event %q", i, head.Event)
		}
		ev, err := dec(r)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, head.Event, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
