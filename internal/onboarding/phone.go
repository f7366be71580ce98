package onboarding

import "strings"

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FormatPhoneNumber renders the first ten digits as (DDD) DDD-DDDD while the
// user is typing. Fewer than four digits are returned unformatted. Display
// formatting is independent of ValidPhone.
func FormatPhoneNumber(s string) string {
	d := Digits(s)
	if len(d) > 10 {
		d = d[:10]
	}
	switch {
	case len(d) < 4:
		return d
	case len(d) < 7:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

// E164 builds the SMS destination. Ten-digit numbers are treated as NANP.
func E164(s string) string {
	d := Digits(s)
	if len(d) == 10 {
		return "+1" + d
	}
	return "+" + d
}
