package onboarding

import "github.com/go-dating-onboarding/internal/domain"

// progressSteps is the part of the wizard shown on the progress bar, with the
// percentage precomputed for each position.
var progressSteps = []struct {
	step    Step
	percent int
}{
	{StepName, 14},
	{StepBirthday, 29},
	{StepGender, 43},
	{StepLookingFor, 57},
	{StepSocials, 71},
	{StepPhone, 100},
}

// Progress returns the indicator values for s. Steps that are not on the
// progress bar report false. The verification sub-state counts as the phone step.
func Progress(s Step) (domain.Progress, bool) {
	if s == StepPhoneVerification {
		s = StepPhone
	}
	for i, ps := range progressSteps {
		if ps.step == s {
			return domain.Progress{Index: i + 1, Total: len(progressSteps), Percent: ps.percent}, true
		}
	}
	return domain.Progress{}, false
}
