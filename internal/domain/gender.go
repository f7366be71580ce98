package domain

import "fmt"

// Gender is the closed set of values accepted for both the gender and the
// looking-for steps. The zero value means "not chosen yet".
type Gender uint8

const (
	GenderUnset Gender = iota
	GenderMale
	GenderFemale
	GenderEveryone
)

// Genders lists every selectable value in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderEveryone}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderEveryone:
		return "everyone"
	case GenderUnset:
		return ""
	}
	return fmt.Sprintf("Gender(%d)", uint8(g))
}

// Valid reports whether g is one of the selectable values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderEveryone:
		return true
	}
	return false
}

// ParseGender maps the wire value to a Gender.
func ParseGender(s string) (Gender, error) {
	for _, g := range Genders {
		if g.String() == s {
			return g, nil
		}
	}
	return GenderUnset, fmt.Errorf("unknown gender %q: %w", s, ErrBadRequest)
}

func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*g = GenderUnset
		return nil
	}
	v, err := ParseGender(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
