package wizard

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrInvalidHistory = errors.New("invalid history")

// History is the ordered list of visited screens. The last entry is the
// current screen and the first entry is always a Start screen. Methods never
// modify the receiver's backing array; they return a new History.
type History []Screen

func NewHistory() History { return History{Start{}} }

// Current returns the last entry, or nil for an empty history.
func (h History) Current() Screen {
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Push appends s as the new current screen.
func (h History) Push(s Screen) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, s)
}

// ReplaceTop swaps the current entry for s. Used for in-screen edits.
func (h History) ReplaceTop(s Screen) History {
	if len(h) == 0 {
		return History{s}
	}
	out := h.Clone()
	out[len(out)-1] = s
	return out
}

// Back drops every trailing entry that shares the current screen's tag, so
// repeated edits of one screen count as a single step, and returns the
// truncated history. It reports false, leaving h unchanged, when no earlier
// distinct screen exists.
func (h History) Back() (History, bool) {
	if len(h) == 0 {
		return NewHistory(), false
	}
	cur := h[len(h)-1].Tag()
	i := len(h)
	for i > 0 && h[i-1].Tag() == cur {
		i--
	}
	if i == 0 {
		return h, false
	}
	return h[:i].Clone(), true
}

// Equal compares two histories entry by entry by value.
func (h History) Equal(o History) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if !reflect.DeepEqual(h[i], o[i]) {
			return false
		}
	}
	return true
}

// Tags lists the screen tag of every entry.
func (h History) Tags() []ScreenTag {
	out := make([]ScreenTag, len(h))
	for i, s := range h {
		out[i] = s.Tag()
	}
	return out
}

// Validate checks the structural invariants: non-empty, starting at Start,
// no nil entries.
func (h History) Validate() error {
	if len(h) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidHistory)
	}
	if _, ok := h[0].(Start); !ok {
		return fmt.Errorf("%w: first entry is %s", ErrInvalidHistory, describe(h[0]))
	}
	for i, s := range h {
		if s == nil {
			return fmt.Errorf("%w: nil entry at %d", ErrInvalidHistory, i)
		}
	}
	return nil
}

// Summary is the outcome of a (possibly unfinished) flow, derived from its
// history.
type Summary struct {
	Outcome       ScreenTag
	Completed     bool
	FoundJob      *bool
	AcceptedOffer bool
	Reason        Reason
	Detail        string
	Steps         int
}

func Summarize(h History) Summary {
	sum := Summary{Steps: len(h)}
	if cur := h.Current(); cur != nil {
		sum.Outcome = cur.Tag()
		sum.Completed = IsTerminal(sum.Outcome)
		sum.AcceptedOffer = sum.Outcome == TagOfferAccepted
	}
	for _, s := range h {
		switch v := s.(type) {
		case Start:
			if v.FoundJob != nil {
				sum.FoundJob = v.FoundJob
			}
		case CancellationReason:
			if v.Reason != "" {
				sum.Reason = v.Reason
			}
		case ReasonDetail:
			sum.Reason = v.Kind
			sum.Detail = v.Detail
		}
	}
	return sum
}
