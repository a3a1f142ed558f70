package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5.6", "12.56"},
		{"ab12.3cd", "12.3"},
		{"", ""},
		{"$25", "25"},
		{"..1", ".1"},
		{"1,000.00", "1000.00"},
		{"٣4", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SanitizePrice(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizePrice(got), "sanitizing twice must be a no-op")
		})
	}
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice("25"))
	assert.True(t, ValidPrice("12.50"))
	assert.True(t, ValidPrice(".5"))
	assert.False(t, ValidPrice(""))
	assert.False(t, ValidPrice("."))
	assert.False(t, ValidPrice("1.2.3"))
	assert.False(t, ValidPrice("12a"))
}

func TestReasonAndVariant(t *testing.T) {
	assert.True(t, ReasonNotMoving.Valid())
	assert.False(t, Reason("bored").Valid())
	assert.True(t, ReasonTooExpensive.AsksForPrice())
	assert.False(t, ReasonOther.AsksForPrice())

	assert.True(t, VariantA.Valid())
	assert.True(t, VariantB.Valid())
	assert.False(t, Variant("C").Valid())
	assert.False(t, Variant("").Valid())
}
