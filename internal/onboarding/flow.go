package onboarding

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-dating-onboarding/internal/domain"
)

// MaxPhotos bounds the photo step.
const MaxPhotos = 6

var (
	ErrWrongStep        = fmt.Errorf("input does not belong to the current step: %w", domain.ErrConflict)
	ErrInvalidInput     = fmt.Errorf("step input is not valid: %w", domain.ErrBadRequest)
	ErrNoBackTransition = fmt.Errorf("current step has no back transition: %w", domain.ErrConflict)
)

// Input is a committed draft for one step.
type Input interface {
	Step() Step
}

type (
	NameInput struct{ FullName string }

	BirthdayInput struct{ BirthDate string }

	GenderInput struct{ Gender domain.Gender }

	LookingForInput struct{ LookingFor domain.Gender }

	SocialsInput struct {
		Instagram string
		Twitter   string
		LinkedIn  string
	}

	PhoneInput struct{ PhoneNumber string }

	VerificationInput struct{ Code string }

	// VoiceIntroInput is valid once a conversation was started and ended.
	VoiceIntroInput struct {
		ConversationID string
		Ended          bool
	}

	PhotosInput struct{ Keys []string }

	InstructionsInput struct{}

	GPTResponseInput struct{ Text string }
)

func (NameInput) Step() Step         { return StepName }
func (BirthdayInput) Step() Step     { return StepBirthday }
func (GenderInput) Step() Step       { return StepGender }
func (LookingForInput) Step() Step   { return StepLookingFor }
func (SocialsInput) Step() Step      { return StepSocials }
func (PhoneInput) Step() Step        { return StepPhone }
func (VerificationInput) Step() Step { return StepPhoneVerification }
func (VoiceIntroInput) Step() Step   { return StepVoiceIntro }
func (PhotosInput) Step() Step       { return StepPhotos }
func (InstructionsInput) Step() Step { return StepGPTInstructions }
func (GPTResponseInput) Step() Step  { return StepGPTResponse }

type acceptFunc func(in Input, now time.Time) (domain.Patch, bool)

type transition struct {
	next        Step
	autoAdvance bool
	accept      acceptFunc
}

// rule adapts a typed accept function to the table signature.
func rule[T Input](f func(T, time.Time) (domain.Patch, bool)) acceptFunc {
	return func(in Input, now time.Time) (domain.Patch, bool) {
		v, ok := in.(T)
		if !ok {
			return domain.Patch{}, false
		}
		return f(v, now)
	}
}

// transitions is the whole wizard: which validator gates each step, what the
// step commits and where it goes next. Each step only writes its own fields.
var transitions = map[Step]transition{
	StepName: {next: StepBirthday, accept: rule(func(in NameInput, _ time.Time) (domain.Patch, bool) {
		if !ValidName(in.FullName) {
			return domain.Patch{}, false
		}
		return domain.Patch{FullName: ptr(strings.TrimSpace(in.FullName))}, true
	})},
	StepBirthday: {next: StepGender, accept: rule(func(in BirthdayInput, now time.Time) (domain.Patch, bool) {
		if !ValidBirthDate(in.BirthDate, now) {
			return domain.Patch{}, false
		}
		return domain.Patch{BirthDate: ptr(strings.TrimSpace(in.BirthDate))}, true
	})},
	StepGender: {next: StepLookingFor, autoAdvance: true, accept: rule(func(in GenderInput, _ time.Time) (domain.Patch, bool) {
		if !in.Gender.Valid() {
			return domain.Patch{}, false
		}
		return domain.Patch{Gender: ptr(in.Gender)}, true
	})},
	StepLookingFor: {next: StepSocials, autoAdvance: true, accept: rule(func(in LookingForInput, _ time.Time) (domain.Patch, bool) {
		if !in.LookingFor.Valid() {
			return domain.Patch{}, false
		}
		return domain.Patch{LookingFor: ptr(in.LookingFor)}, true
	})},
	StepSocials: {next: StepPhone, accept: rule(acceptSocials)},
	StepPhone: {next: StepPhoneVerification, accept: rule(func(in PhoneInput, _ time.Time) (domain.Patch, bool) {
		if !ValidPhone(in.PhoneNumber) {
			return domain.Patch{}, false
		}
		return domain.Patch{PhoneNumber: ptr(displayPhone(in.PhoneNumber))}, true
	})},
	StepPhoneVerification: {next: StepVoiceIntro, accept: rule(func(in VerificationInput, _ time.Time) (domain.Patch, bool) {
		if !ValidVerificationCode(in.Code) {
			return domain.Patch{}, false
		}
		return domain.Patch{PhoneVerified: ptr(true), SMSVerificationCode: ptr(in.Code)}, true
	})},
	StepVoiceIntro: {next: StepPhotos, accept: rule(func(in VoiceIntroInput, _ time.Time) (domain.Patch, bool) {
		if in.ConversationID == "" || !in.Ended {
			return domain.Patch{}, false
		}
		return domain.Patch{VoiceConversationID: ptr(in.ConversationID)}, true
	})},
	StepPhotos: {next: StepGPTInstructions, accept: rule(func(in PhotosInput, _ time.Time) (domain.Patch, bool) {
		if len(in.Keys) == 0 || len(in.Keys) > MaxPhotos {
			return domain.Patch{}, false
		}
		return domain.Patch{PhotoKeys: in.Keys}, true
	})},
	StepGPTInstructions: {next: StepGPTResponse, accept: rule(func(InstructionsInput, time.Time) (domain.Patch, bool) {
		return domain.Patch{}, true
	})},
	StepGPTResponse: {next: StepDashboard, accept: rule(func(in GPTResponseInput, _ time.Time) (domain.Patch, bool) {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return domain.Patch{}, false
		}
		return domain.Patch{Bio: ptr(text)}, true
	})},
}

// backTransitions are the only moves against the flow. They never touch the record.
var backTransitions = map[Step]Step{
	StepPhoneVerification: StepPhone,
	StepGPTResponse:       StepGPTInstructions,
}

func acceptSocials(in SocialsInput, _ time.Time) (domain.Patch, bool) {
	if !ValidHandle(in.Instagram) {
		return domain.Patch{}, false
	}
	p := domain.Patch{InstagramUsername: ptr(strings.TrimSpace(in.Instagram))}
	if tw := strings.TrimSpace(in.Twitter); tw != "" {
		if !ValidHandle(tw) {
			return domain.Patch{}, false
		}
		p.TwitterUsername = ptr(tw)
	}
	if li := strings.TrimSpace(in.LinkedIn); li != "" {
		if !ValidLinkedInHandle(li) {
			return domain.Patch{}, false
		}
		p.LinkedInUsername = ptr(li)
	}
	return p, true
}

// displayPhone keeps the (DDD) DDD-DDDD form for ten-digit numbers and falls
// back to E.164 for longer ones so no digit is dropped.
func displayPhone(raw string) string {
	if len(Digits(raw)) == 10 {
		return FormatPhoneNumber(raw)
	}
	return E164(raw)
}

// AutoAdvance reports whether s commits and advances on selection alone.
func AutoAdvance(s Step) bool {
	return transitions[s].autoAdvance
}

// CanGoBack reports whether s has a cancel/edit transition.
func CanGoBack(s Step) bool {
	_, ok := backTransitions[s]
	return ok
}

// Check evaluates the validator of in's step without committing anything.
func Check(in Input, now time.Time) bool {
	t, ok := transitions[in.Step()]
	if !ok {
		return false
	}
	_, valid := t.accept(in, now)
	return valid
}

// Machine walks one record through the wizard.
type Machine struct {
	mu    sync.Mutex
	step  Step
	store *Store
	now   func() time.Time
}

// NewMachine starts at the first step. now supplies "today" for the age check.
func NewMachine(store *Store, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{step: StepName, store: store, now: now}
}

// Step returns the current step.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Store exposes the record store the machine commits to.
func (m *Machine) Store() *Store { return m.store }

// Check is the "Next enabled" signal for in.
func (m *Machine) Check(in Input) bool {
	return Check(in, m.now())
}

// Submit commits in and moves to the successor step. Nothing is written when
// in belongs to another step or fails its validator.
func (m *Machine) Submit(in Input) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.Step() != m.step {
		return m.step, fmt.Errorf("submit %s while at %s: %w", in.Step(), m.step, ErrWrongStep)
	}
	t, ok := transitions[m.step]
	if !ok {
		return m.step, fmt.Errorf("%s is terminal: %w", m.step, ErrWrongStep)
	}
	patch, valid := t.accept(in, m.now())
	if !valid {
		return m.step, ErrInvalidInput
	}
	if !patch.Empty() {
		m.store.Update(patch)
	}
	m.step = t.next
	return m.step, nil
}

// Back performs the cancel/edit transition of the current step.
func (m *Machine) Back() (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := backTransitions[m.step]
	if !ok {
		return m.step, ErrNoBackTransition
	}
	m.step = prev
	return m.step, nil
}

// Restart resets the record and returns to the first step.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Reset()
	m.step = StepName
}

func ptr[T any](v T) *T { return &v }
