package onboarding

import (
	"fmt"

	"github.com/go-dating-onboarding/internal/domain"
)

// Step identifies one screen of the onboarding wizard.
type Step uint8

const (
	StepName Step = iota
	StepBirthday
	StepGender
	StepLookingFor
	StepSocials
	StepPhone
	StepPhoneVerification
	StepVoiceIntro
	StepPhotos
	StepGPTInstructions
	StepGPTResponse
	StepDashboard
)

var stepNames = [...]string{
	StepName:              "name",
	StepBirthday:          "birthday",
	StepGender:            "gender",
	StepLookingFor:        "looking-for",
	StepSocials:           "socials",
	StepPhone:             "phone",
	StepPhoneVerification: "phone-verification",
	StepVoiceIntro:        "voice-intro",
	StepPhotos:            "photos",
	StepGPTInstructions:   "gpt-instructions",
	StepGPTResponse:       "gpt-response",
	StepDashboard:         "dashboard",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("Step(%d)", uint8(s))
}

// ParseStep maps a URL segment back to a Step.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q: %w", name, domain.ErrNotFound)
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
