package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-dating-onboarding/internal/config"
	"github.com/go-dating-onboarding/internal/onboarding"
	"github.com/go-dating-onboarding/internal/transport/http/handler"
	appmiddleware "github.com/go-dating-onboarding/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	passthrough := func(next http.Handler) http.Handler { return next }
	authMw, sessionMw := passthrough, passthrough
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
		sessionMw = appmiddleware.RequireSession
	}

	// 5 requests/second, burst of 10 for opening sessions.
	startRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, cfg.TrustProxyHeaders)
	// one SMS every 30 seconds per client, burst of 3.
	smsRL := appmiddleware.NewRateLimiter(rate.Limit(1.0/30), 3, cfg.TrustProxyHeaders)
	isPhoneStep := func(r *http.Request) bool {
		return chi.URLParam(r, "step") == onboarding.StepPhone.String()
	}

	healthH := handler.NewHealthHandler()
	onboardingH := handler.NewOnboardingHandler(deps.OnboardingSvc, cfg.PhotoMaxBytes)
	profileH := handler.NewProfileHandler(deps.ProfileSvc)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(startRL.Limit).Post("/onboarding", onboardingH.Start)
		r.Get("/onboarding/prompt", onboardingH.Prompt)

		// ── Session-bound routes ─────────────────────────────────────────────
		r.Route("/onboarding/{id}", func(r chi.Router) {
			r.Use(authMw, sessionMw)

			r.Get("/", onboardingH.State)
			r.With(smsRL.LimitIf(isPhoneStep)).Post("/steps/{step}", onboardingH.Submit)
			r.Post("/steps/{step}/check", onboardingH.Check)
			r.Post("/back", onboardingH.Back)
			r.Post("/reset", onboardingH.Reset)
			r.Post("/finalize", onboardingH.Finalize)
			r.Post("/photos", onboardingH.AddPhoto)
			r.Delete("/photos/{photoID}", onboardingH.RemovePhoto)
			r.Post("/voice/start", onboardingH.StartVoice)
			r.Post("/voice/end", onboardingH.EndVoice)
		})

		r.Route("/profiles/{id}", func(r chi.Router) {
			r.Use(authMw, sessionMw)

			r.Get("/", profileH.Get)
			r.Put("/socials", profileH.UpdateSocials)
		})
	})

	return r
}
