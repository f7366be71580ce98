// Package onboarding holds the onboarding model: the record store, the field
// validators, the step transition table and the progress sequencer. Nothing in
// here performs I/O.
package onboarding

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire format of birth_date.
const DateLayout = "2006-01-02"

const (
	MinAge = 18
	MaxAge = 99

	minNameLen = 2

	minHandleLen     = 3
	maxHandleLen     = 30
	maxSnapHandleLen = 15
	maxLinkedInLen   = 100

	minPhoneDigits = 10
	maxPhoneDigits = 15

	verificationCodeLen = 6
)

var (
	handleRe     = regexp.MustCompile(`^[A-Za-z0-9._]+$`)
	snapHandleRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	linkedInRe   = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// ValidName reports whether the trimmed name has at least two characters.
func ValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= minNameLen
}

// ParseBirthDate parses a YYYY-MM-DD date.
func ParseBirthDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Age returns the whole years elapsed between birth and today. A year is not
// counted until the birth month and day have been reached.
func Age(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

// IsValidAge reports whether the age on today is within [MinAge, MaxAge].
func IsValidAge(birth, today time.Time) bool {
	age := Age(birth, today)
	return age >= MinAge && age <= MaxAge
}

// ValidBirthDate combines parsing and the age range check.
func ValidBirthDate(s string, today time.Time) bool {
	birth, err := ParseBirthDate(s)
	if err != nil {
		return false
	}
	return IsValidAge(birth, today)
}

// ValidHandle is the instagram and twitter handle rule.
func ValidHandle(handle string) bool {
	h := strings.TrimSpace(handle)
	return inRange(len(h), minHandleLen, maxHandleLen) && handleRe.MatchString(h)
}

// ValidSnapHandle is the snapchat handle rule used by the profile socials editor.
func ValidSnapHandle(handle string) bool {
	h := strings.TrimSpace(handle)
	return inRange(len(h), minHandleLen, maxSnapHandleLen) && snapHandleRe.MatchString(h)
}

// ValidLinkedInHandle checks a LinkedIn vanity name.
func ValidLinkedInHandle(handle string) bool {
	h := strings.TrimSpace(handle)
	return inRange(len(h), minHandleLen, maxLinkedInLen) && linkedInRe.MatchString(h)
}

// ValidPhone counts digits only; formatting characters are ignored.
func ValidPhone(phone string) bool {
	return inRange(len(Digits(phone)), minPhoneDigits, maxPhoneDigits)
}

// ValidVerificationCode accepts exactly six ASCII digits. The code is not
// compared against the one that was sent.
func ValidVerificationCode(code string) bool {
	if len(code) != verificationCodeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// ValidAccessCode only requires a non-blank value.
func ValidAccessCode(code string) bool {
	return strings.TrimSpace(code) != ""
}

func inRange(n, lo, hi int) bool {
	return n >= lo && n <= hi
}
