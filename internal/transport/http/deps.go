package http

import (
	onboardingapp "github.com/go-dating-onboarding/internal/application/onboarding"
	"github.com/go-dating-onboarding/internal/application/profile"
	jwtinfra "github.com/go-dating-onboarding/internal/infrastructure/jwt"
	"github.com/go-dating-onboarding/internal/infrastructure/metrics"
)

// Deps holds everything the router needs. JWTProvider may be nil, in which
// case session tokens are neither issued nor checked.
type Deps struct {
	OnboardingSvc onboardingapp.Service
	ProfileSvc    profile.Service
	JWTProvider   *jwtinfra.Provider
	Metrics       *metrics.Metrics
}
