package wizard

import (
	"strings"
	"unicode/utf8"
)

// Range is a bucketed count answer on the surveys.
type Range string

const (
	RangeZero        Range = "0"
	RangeOneToFive   Range = "1-5"
	RangeSixToTwenty Range = "6-20"
	RangeTwentyPlus  Range = "20+"

	RangeOneToTwo    Range = "1-2"
	RangeThreeToFive Range = "3-5"
	RangeFivePlus    Range = "5+"
)

var (
	countRanges     = []Range{RangeZero, RangeOneToFive, RangeSixToTwenty, RangeTwentyPlus}
	interviewRanges = []Range{RangeZero, RangeOneToTwo, RangeThreeToFive, RangeFivePlus}
)

// CountRanges are the options for "how many roles/companies" questions.
func CountRanges() []Range { return append([]Range(nil), countRanges...) }

// InterviewRanges are the options for "how many companies interviewed you".
func InterviewRanges() []Range { return append([]Range(nil), interviewRanges...) }

func rangeIn(r Range, options []Range) bool {
	for _, o := range options {
		if o == r {
			return true
		}
	}
	return false
}

// Reason is the main cancellation reason chosen on CancellationReason.
type Reason string

const (
	ReasonTooExpensive       Reason = "too-expensive"
	ReasonPlatformNotHelpful Reason = "platform-not-helpful"
	ReasonNotEnoughJobs      Reason = "not-enough-jobs"
	ReasonNotMoving          Reason = "not-moving"
	ReasonOther              Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonTooExpensive, ReasonPlatformNotHelpful, ReasonNotEnoughJobs, ReasonNotMoving, ReasonOther:
		return true
	}
	return false
}

// AsksForPrice reports whether the follow-up screen collects a price instead
// of free text.
func (r Reason) AsksForPrice() bool { return r == ReasonTooExpensive }

// Variant is the A/B downsell bucket a user is assigned to.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

func (v Variant) Valid() bool { return v == VariantA || v == VariantB }

// SanitizePrice keeps only digits and the first decimal point of s. Digits
// typed after a second point are appended to the fractional part. The
// function is idempotent.
func SanitizePrice(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPrice reports whether s is a non-empty sanitized price with at least
// one digit.
func ValidPrice(s string) bool {
	if s == "" || SanitizePrice(s) != s {
		return false
	}
	return strings.ContainsAny(s, "0123456789")
}

func textLongEnough(s string, min int) bool { return utf8.RuneCountInString(s) >= min }

func boolPtr(b bool) *bool { return &b }
