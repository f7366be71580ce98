package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"5":                "5",
		"555":              "555",
		"5551":             "(555) 1",
		"555123":           "(555) 123",
		"5551234":          "(555) 123-4",
		"5551234567":       "(555) 123-4567",
		"555123456789":     "(555) 123-4567",
		"(555) 123-4567":   "(555) 123-4567",
		"+1 555 123 45 67": "(155) 512-3456",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPhoneNumber(in), "input %q", in)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "5551234567", Digits("(555) 123-4567"))
	assert.Equal(t, "", Digits("abc"))
}

func TestE164(t *testing.T) {
	assert.Equal(t, "+15551234567", E164("(555) 123-4567"))
	assert.Equal(t, "+442079460958", E164("44 20 7946 0958"))
}
