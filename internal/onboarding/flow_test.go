package onboarding

import (
	"errors"
	"testing"
	"time"

	"github.com/go-dating-onboarding/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
}

func newMachine() *Machine {
	return NewMachine(NewStore(), fixedNow)
}

// walkTo submits valid inputs until m reaches target.
func walkTo(t *testing.T, m *Machine, target Step) {
	t.Helper()
	inputs := []Input{
		NameInput{FullName: "Alice"},
		BirthdayInput{BirthDate: "2000-01-01"},
		GenderInput{Gender: domain.GenderFemale},
		LookingForInput{LookingFor: domain.GenderEveryone},
		SocialsInput{Instagram: "alice.ig"},
		PhoneInput{PhoneNumber: "5551234567"},
		VerificationInput{Code: "123456"},
		VoiceIntroInput{ConversationID: "conv1", Ended: true},
		PhotosInput{Keys: []string{"p1.jpg"}},
		InstructionsInput{},
		GPTResponseInput{Text: "Coffee first."},
	}
	for _, in := range inputs {
		if m.Step() == target {
			return
		}
		_, err := m.Submit(in)
		require.NoError(t, err, "submit %s", in.Step())
	}
	require.Equal(t, target, m.Step())
}

func TestMachine_StartsAtName(t *testing.T) {
	assert.Equal(t, StepName, newMachine().Step())
}

func TestMachine_FullFlow(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepDashboard)

	r := m.Store().Get()
	assert.Equal(t, "Alice", r.FullName)
	assert.Equal(t, "2000-01-01", r.BirthDate)
	assert.Equal(t, domain.GenderFemale, r.Gender)
	assert.Equal(t, domain.GenderEveryone, r.LookingFor)
	assert.Equal(t, "alice.ig", r.InstagramUsername)
	assert.Empty(t, r.TwitterUsername)
	assert.Equal(t, "(555) 123-4567", r.PhoneNumber)
	assert.True(t, r.PhoneVerified)
	assert.Equal(t, "123456", r.SMSVerificationCode)
	assert.Equal(t, "conv1", r.VoiceConversationID)
	assert.Equal(t, []string{"p1.jpg"}, r.PhotoKeys)
	assert.Equal(t, "Coffee first.", r.Bio)
}

func TestMachine_NameGate(t *testing.T) {
	m := newMachine()
	assert.False(t, m.Check(NameInput{FullName: " A "}))
	assert.True(t, m.Check(NameInput{FullName: "Al"}))

	_, err := m.Submit(NameInput{FullName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Equal(t, StepName, m.Step())
	assert.Empty(t, m.Store().Get().FullName)

	next, err := m.Submit(NameInput{FullName: "  Al  "})
	require.NoError(t, err)
	assert.Equal(t, StepBirthday, next)
	assert.Equal(t, "Al", m.Store().Get().FullName)
}

func TestMachine_BirthdayUsesClock(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepBirthday)

	assert.False(t, m.Check(BirthdayInput{BirthDate: "2008-10-19"}))
	assert.True(t, m.Check(BirthdayInput{BirthDate: "2008-10-18"}))

	_, err := m.Submit(BirthdayInput{BirthDate: "2008-10-19"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, m.Store().Get().BirthDate)
}

func TestMachine_GenderAutoAdvances(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepGender)
	assert.True(t, AutoAdvance(StepGender))
	assert.True(t, AutoAdvance(StepLookingFor))
	assert.False(t, AutoAdvance(StepName))

	next, err := m.Submit(GenderInput{Gender: domain.GenderMale})
	require.NoError(t, err)
	assert.Equal(t, StepLookingFor, next)
	assert.Equal(t, domain.GenderMale, m.Store().Get().Gender)
}

func TestMachine_GenderUnsetRejected(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepGender)
	_, err := m.Submit(GenderInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMachine_CannotSkipSteps(t *testing.T) {
	m := newMachine()
	_, err := m.Submit(BirthdayInput{BirthDate: "2000-01-01"})
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, StepName, m.Step())
	assert.Empty(t, m.Store().Get().BirthDate)
}

func TestMachine_SocialsOptionalHandles(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepSocials)

	assert.False(t, m.Check(SocialsInput{Instagram: "jo"}))
	assert.False(t, m.Check(SocialsInput{Instagram: "alice", Twitter: "bad handle"}))
	assert.False(t, m.Check(SocialsInput{Instagram: "alice", LinkedIn: "x"}))

	_, err := m.Submit(SocialsInput{Instagram: "alice", Twitter: " alice_tw ", LinkedIn: "alice-li"})
	require.NoError(t, err)
	r := m.Store().Get()
	assert.Equal(t, "alice_tw", r.TwitterUsername)
	assert.Equal(t, "alice-li", r.LinkedInUsername)
}

func TestMachine_PhoneEditLoop(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepPhoneVerification)
	assert.True(t, CanGoBack(StepPhoneVerification))

	prev, err := m.Back()
	require.NoError(t, err)
	assert.Equal(t, StepPhone, prev)
	assert.Equal(t, "(555) 123-4567", m.Store().Get().PhoneNumber, "cancel keeps the committed number")

	_, err = m.Submit(PhoneInput{PhoneNumber: "+44 20 7946 0958"})
	require.NoError(t, err)
	assert.Equal(t, "+442079460958", m.Store().Get().PhoneNumber)

	_, err = m.Submit(VerificationInput{Code: "12a456"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, m.Store().Get().PhoneVerified)
}

func TestMachine_BackOnlyFromSubStates(t *testing.T) {
	m := newMachine()
	_, err := m.Back()
	assert.ErrorIs(t, err, ErrNoBackTransition)

	walkTo(t, m, StepGPTResponse)
	prev, err := m.Back()
	require.NoError(t, err)
	assert.Equal(t, StepGPTInstructions, prev)
}

func TestMachine_VoiceIntroNeedsEndedConversation(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepVoiceIntro)
	assert.False(t, m.Check(VoiceIntroInput{}))
	assert.False(t, m.Check(VoiceIntroInput{ConversationID: "c1"}))
	assert.True(t, m.Check(VoiceIntroInput{ConversationID: "c1", Ended: true}))
}

func TestMachine_PhotoBounds(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepPhotos)
	assert.False(t, m.Check(PhotosInput{}))
	assert.False(t, m.Check(PhotosInput{Keys: make([]string, MaxPhotos+1)}))
	assert.True(t, m.Check(PhotosInput{Keys: make([]string, MaxPhotos)}))
}

func TestMachine_GPTResponseTrimmed(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepGPTResponse)
	_, err := m.Submit(GPTResponseInput{Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	next, err := m.Submit(GPTResponseInput{Text: "  hi there \n"})
	require.NoError(t, err)
	assert.Equal(t, StepDashboard, next)
	assert.Equal(t, "hi there", m.Store().Get().Bio)
}

func TestMachine_DashboardIsTerminal(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepDashboard)
	_, err := m.Submit(GPTResponseInput{Text: "again"})
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, StepDashboard, m.Step())
}

func TestMachine_Restart(t *testing.T) {
	m := newMachine()
	walkTo(t, m, StepSocials)
	m.Restart()
	assert.Equal(t, StepName, m.Step())
	assert.Equal(t, domain.Record{PhoneVerified: false}, m.Store().Get())
}

func TestMachine_NoFieldWrittenByTwoSteps(t *testing.T) {
	owners := map[string]Step{}
	samples := map[Step]Input{
		StepName:              NameInput{FullName: "Alice"},
		StepBirthday:          BirthdayInput{BirthDate: "2000-01-01"},
		StepGender:            GenderInput{Gender: domain.GenderMale},
		StepLookingFor:        LookingForInput{LookingFor: domain.GenderFemale},
		StepSocials:           SocialsInput{Instagram: "alice", Twitter: "alice", LinkedIn: "alice"},
		StepPhone:             PhoneInput{PhoneNumber: "5551234567"},
		StepPhoneVerification: VerificationInput{Code: "123456"},
		StepVoiceIntro:        VoiceIntroInput{ConversationID: "c", Ended: true},
		StepPhotos:            PhotosInput{Keys: []string{"k"}},
		StepGPTInstructions:   InstructionsInput{},
		StepGPTResponse:       GPTResponseInput{Text: "bio"},
	}
	for step, in := range samples {
		patch, ok := transitions[step].accept(in, fixedNow())
		require.True(t, ok, step.String())
		for _, f := range setFields(patch) {
			if prev, dup := owners[f]; dup {
				t.Fatalf("field %s written by both %s and %s", f, prev, step)
			}
			owners[f] = step
		}
	}
}

func setFields(p domain.Patch) []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("full_name", p.FullName != nil)
	add("birth_date", p.BirthDate != nil)
	add("gender", p.Gender != nil)
	add("looking_for", p.LookingFor != nil)
	add("instagram_username", p.InstagramUsername != nil)
	add("twitter_username", p.TwitterUsername != nil)
	add("linkedin_username", p.LinkedInUsername != nil)
	add("phone_number", p.PhoneNumber != nil)
	add("phone_verified", p.PhoneVerified != nil)
	add("sms_verification_code", p.SMSVerificationCode != nil)
	add("access_code", p.AccessCode != nil)
	add("voice_conversation_id", p.VoiceConversationID != nil)
	add("photo_keys", p.PhotoKeys != nil)
	add("bio", p.Bio != nil)
	return out
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep("looking-for")
	require.NoError(t, err)
	assert.Equal(t, StepLookingFor, s)

	_, err = ParseStep("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
