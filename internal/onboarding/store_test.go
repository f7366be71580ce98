package onboarding

import (
	"testing"

	"github.com/go-dating-onboarding/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStore_InitialState(t *testing.T) {
	s := NewStore()
	assert.Equal(t, domain.Record{PhoneVerified: false}, s.Get())
}

func TestStore_UpdateMerges(t *testing.T) {
	s := NewStore()
	s.Update(domain.Patch{FullName: ptr("Alice")})
	s.Update(domain.Patch{BirthDate: ptr("2000-01-01")})

	r := s.Get()
	assert.Equal(t, "Alice", r.FullName)
	assert.Equal(t, "2000-01-01", r.BirthDate)
}

func TestStore_LastWriteWins(t *testing.T) {
	s := NewStore()
	s.Update(domain.Patch{FullName: ptr("Alice")})
	s.Update(domain.Patch{FullName: ptr("Alicia")})
	assert.Equal(t, "Alicia", s.Get().FullName)
}

func TestStore_ResetReturnsInitialRecord(t *testing.T) {
	s := NewStore()
	s.Update(domain.Patch{
		FullName:      ptr("Alice"),
		Gender:        ptr(domain.GenderFemale),
		PhoneVerified: ptr(true),
		PhotoKeys:     []string{"a.jpg"},
	})
	s.Reset()
	assert.Equal(t, domain.Record{PhoneVerified: false}, s.Get())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Update(domain.Patch{PhotoKeys: []string{"a.jpg"}})

	r := s.Get()
	r.PhotoKeys[0] = "mutated"
	r.FullName = "mutated"

	assert.Equal(t, []string{"a.jpg"}, s.Get().PhotoKeys)
	assert.Empty(t, s.Get().FullName)
}
