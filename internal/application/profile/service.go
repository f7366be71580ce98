package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-dating-onboarding/internal/domain"
	"github.com/go-dating-onboarding/internal/onboarding"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldSnapchat  = "snapchat_username"
	fieldInstagram = "instagram_username"
	fieldTwitter   = "twitter_username"
)

type Service interface {
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
	UpdateSocials(ctx context.Context, profileID string, req domain.UpdateSocialsRequest) (*domain.Profile, error)
}

type profileStore interface {
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) error
}

type service struct {
	repo profileStore
}

type ServiceDeps struct {
	ProfileRepo profileStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ProfileRepo}
}

func (s *service) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	return s.repo.Get(ctx, profileID)
}

// UpdateSocials is the edit mode of the profile screen. Nil fields are left
// untouched; set fields must pass the same handle rules as onboarding.
func (s *service) UpdateSocials(ctx context.Context, profileID string, req domain.UpdateSocialsRequest) (*domain.Profile, error) {
	updates := map[string]interface{}{}
	if req.SnapchatUsername != nil {
		v := strings.TrimSpace(*req.SnapchatUsername)
		if !onboarding.ValidSnapHandle(v) {
			return nil, fmt.Errorf("invalid snapchat username: %w", domain.ErrBadRequest)
		}
		updates[fieldSnapchat] = v
	}
	if req.InstagramUsername != nil {
		v := strings.TrimSpace(*req.InstagramUsername)
		if !onboarding.ValidHandle(v) {
			return nil, fmt.Errorf("invalid instagram username: %w", domain.ErrBadRequest)
		}
		updates[fieldInstagram] = v
	}
	if req.TwitterUsername != nil {
		v := strings.TrimSpace(*req.TwitterUsername)
		if !onboarding.ValidHandle(v) {
			return nil, fmt.Errorf("invalid twitter username: %w", domain.ErrBadRequest)
		}
		updates[fieldTwitter] = v
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, profileID)
	}
	if err := s.repo.Update(ctx, profileID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, profileID)
}
