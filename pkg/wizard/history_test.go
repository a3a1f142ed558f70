package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushDoesNotAlias(t *testing.T) {
	base := make(History, 1, 4)
	base[0] = Start{}

	a := base.Push(JobFoundSurvey{})
	b := base.Push(DownsellOffer{})

	assert.Equal(t, []ScreenTag{TagStart, TagJobFoundSurvey}, a.Tags())
	assert.Equal(t, []ScreenTag{TagStart, TagDownsellOffer}, b.Tags())
	assert.Len(t, base, 1)
}

func TestHistory_BackCoalescesSameScreenEdits(t *testing.T) {
	h := NewHistory().
		ReplaceTop(Start{FoundJob: boolPtr(true)}).
		Push(JobFoundSurvey{}).
		Push(JobFoundSurvey{FoundJobUsingMM: boolPtr(true)}).
		Push(JobFoundSurvey{FoundJobUsingMM: boolPtr(true), RolesAppliedRange: RangeZero}).
		Push(JobFoundSurvey{FoundJobUsingMM: boolPtr(true), RolesAppliedRange: RangeZero, EmailsRange: RangeOneToFive})

	back, ok := h.Back()
	require.True(t, ok)
	require.Len(t, back, 1)
	assert.Equal(t, Start{FoundJob: boolPtr(true)}, back.Current())
}

func TestHistory_BackLandsOnPreviousDistinctScreen(t *testing.T) {
	h := History{
		Start{FoundJob: boolPtr(false)},
		DownsellOffer{},
		OfferDeclinedSurvey{},
		OfferDeclinedSurvey{RolesApplied: RangeZero},
		OfferDeclinedSurvey{RolesApplied: RangeZero, CompaniesEmailed: RangeZero},
		OfferDeclinedSurvey{RolesApplied: RangeZero, CompaniesEmailed: RangeZero, CompaniesInterviewed: RangeZero},
	}

	back, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, []ScreenTag{TagStart, TagDownsellOffer}, back.Tags())

	back, ok = back.Back()
	require.True(t, ok)
	assert.Equal(t, []ScreenTag{TagStart}, back.Tags())
}

func TestHistory_BackOnStartIsNoop(t *testing.T) {
	h := History{Start{}, Start{FoundJob: boolPtr(true)}}

	back, ok := h.Back()
	assert.False(t, ok)
	assert.True(t, back.Equal(h))

	empty, ok := History(nil).Back()
	assert.False(t, ok)
	assert.Equal(t, NewHistory(), empty)
}

func TestHistory_Validate(t *testing.T) {
	assert.NoError(t, NewHistory().Validate())
	assert.ErrorIs(t, History{}.Validate(), ErrInvalidHistory)
	assert.ErrorIs(t, History{DownsellOffer{}}.Validate(), ErrInvalidHistory)
	assert.ErrorIs(t, History{Start{}, nil}.Validate(), ErrInvalidHistory)
}

func TestHistory_EqualComparesAnswerValues(t *testing.T) {
	a := History{Start{FoundJob: boolPtr(true)}, JobFoundSurvey{}}
	b := History{Start{FoundJob: boolPtr(true)}, JobFoundSurvey{}}
	c := History{Start{FoundJob: boolPtr(false)}, JobFoundSurvey{}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(a[:1]))
}

func TestSummarize(t *testing.T) {
	h := History{
		Start{FoundJob: boolPtr(false)},
		DownsellOffer{},
		OfferDeclinedSurvey{RolesApplied: RangeZero, CompaniesEmailed: RangeZero, CompaniesInterviewed: RangeZero},
		CancellationReason{Reason: ReasonTooExpensive},
		ReasonDetail{Kind: ReasonTooExpensive, Detail: "15"},
		CancellationComplete{},
	}

	sum := Summarize(h)
	assert.Equal(t, TagCancellationComplete, sum.Outcome)
	assert.True(t, sum.Completed)
	assert.False(t, sum.AcceptedOffer)
	require.NotNil(t, sum.FoundJob)
	assert.False(t, *sum.FoundJob)
	assert.Equal(t, ReasonTooExpensive, sum.Reason)
	assert.Equal(t, "15", sum.Detail)
	assert.Equal(t, 6, sum.Steps)

	accepted := Summarize(History{Start{FoundJob: boolPtr(false)}, DownsellOffer{}, OfferAccepted{}})
	assert.True(t, accepted.AcceptedOffer)
	assert.True(t, accepted.Completed)
}
