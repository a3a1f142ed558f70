package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())
	assert.Equal(t, RouteDownsellOffer, r.For(VariantA).NoJobRoute)
	assert.Equal(t, RouteDownsellOffer, r.For(VariantB).NoJobRoute)
	assert.False(t, r.discountShortcut(VariantA))
	assert.True(t, r.discountShortcut(VariantB))
	assert.Equal(t, 25, r.MinFeedbackChars)
}

func TestParseRules_MergesOverDefaults(t *testing.T) {
	r, err := ParseRules([]byte(`
A:
  no_job_route: offer-declined-survey
B:
  discount_shortcut: false
`))
	require.NoError(t, err)

	assert.Equal(t, RouteDeclinedSurvey, r.A.NoJobRoute)
	assert.False(t, r.discountShortcut(VariantA))
	assert.Equal(t, RouteDownsellOffer, r.B.NoJobRoute)
	assert.False(t, r.discountShortcut(VariantB), "explicit false is kept")
	assert.Equal(t, 25, r.MinFeedbackChars)
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte(`A: {no_job_route: somewhere-else}`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`min_feedback_chars: -3`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`A: [`))
	assert.Error(t, err)
}

func TestLoadRules(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), r)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_feedback_chars: 10\n"), 0o600))
	r, err = LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 10, r.MinFeedbackChars)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOffer_DiscountedPrice(t *testing.T) {
	assert.Equal(t, 1500, Offer{MonthlyPrice: 2500, DiscountCents: 1000}.DiscountedPrice())
	assert.Equal(t, 0, Offer{MonthlyPrice: 500, DiscountCents: 1000}.DiscountedPrice())
}
