package onboarding

import (
	"slices"
	"sync"

	"github.com/go-dating-onboarding/internal/domain"
)

// Store holds one onboarding record. Updates are shallow merges with
// last-write-wins semantics; validation is the caller's job.
type Store struct {
	mu     sync.RWMutex
	record domain.Record
}

// NewStore returns a store in its initial state.
func NewStore() *Store {
	return &Store{record: initialRecord()}
}

func initialRecord() domain.Record {
	return domain.Record{PhoneVerified: false}
}

// Get returns a snapshot of the current record.
func (s *Store) Get() domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.record
	r.PhotoKeys = slices.Clone(s.record.PhotoKeys)
	return r
}

// Update merges every set field of p into the record.
func (s *Store) Update(p domain.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &s.record
	setString(&r.FullName, p.FullName)
	setString(&r.BirthDate, p.BirthDate)
	if p.Gender != nil {
		r.Gender = *p.Gender
	}
	if p.LookingFor != nil {
		r.LookingFor = *p.LookingFor
	}
	setString(&r.InstagramUsername, p.InstagramUsername)
	setString(&r.TwitterUsername, p.TwitterUsername)
	setString(&r.LinkedInUsername, p.LinkedInUsername)
	setString(&r.PhoneNumber, p.PhoneNumber)
	if p.PhoneVerified != nil {
		r.PhoneVerified = *p.PhoneVerified
	}
	setString(&r.SMSVerificationCode, p.SMSVerificationCode)
	setString(&r.AccessCode, p.AccessCode)
	setString(&r.VoiceConversationID, p.VoiceConversationID)
	if p.PhotoKeys != nil {
		r.PhotoKeys = slices.Clone(p.PhotoKeys)
	}
	setString(&r.Bio, p.Bio)
}

// Reset restores the record to {phone_verified: false}.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = initialRecord()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
