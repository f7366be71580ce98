package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	onboardingapp "github.com/go-dating-onboarding/internal/application/onboarding"
	"github.com/go-dating-onboarding/internal/application/profile"
	"github.com/go-dating-onboarding/internal/config"
	"github.com/go-dating-onboarding/internal/domain"
	"github.com/go-dating-onboarding/internal/infrastructure/awscfg"
	"github.com/go-dating-onboarding/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-dating-onboarding/internal/infrastructure/jwt"
	"github.com/go-dating-onboarding/internal/infrastructure/metrics"
	s3infra "github.com/go-dating-onboarding/internal/infrastructure/s3"
	"github.com/go-dating-onboarding/internal/infrastructure/sns"
	"github.com/go-dating-onboarding/internal/infrastructure/voice"
	transporthttp "github.com/go-dating-onboarding/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	profileRepo := dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles)

	// JWT provider (optional; session routes are unguarded without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available, session tokens disabled: %v", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName)

	// SNS in production, log-only sender otherwise.
	var smsSender sns.SMSSender = sns.LogSender{}
	if cfg.AppEnv == "production" || cfg.AWSEndpointURL != "" {
		snsCfg, err := awscfg.Load(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			log.Fatalf("sns config: %v", err)
		}
		smsSender = sns.NewSender(snsCfg, cfg.AWSEndpointURL, cfg.SNSSenderID)
	}

	var voiceProvider voice.Provider = voice.Stub{}
	if cfg.VoiceAPIKey != "" {
		voiceProvider = voice.NewClient(cfg.VoiceAPIURL, cfg.VoiceAPIKey)
	} else {
		log.Println("WARN: VOICE_API_KEY not set, using stub voice provider")
	}

	m := metrics.New()
	deps := onboardingapp.ServiceDeps{
		ProfileRepo:  profileRepo,
		Photos:       s3Store,
		SMSSender:    smsSender,
		Voice:        voiceProvider,
		Metrics:      m,
		SessionTTL:   cfg.SessionTTL,
		PhotoURLTTL:  cfg.PhotoURLTTL,
		PhotoMaxSize: cfg.PhotoMaxBytes,
		VoiceAgentID: cfg.VoiceAgentID,
		Prompt:       domain.GPTPrompt{AppURL: cfg.AssistantAppURL, WebURL: cfg.AssistantWebURL},
	}
	if jwtProvider != nil {
		deps.Tokens = jwtProvider
	}
	onboardingSvc := onboardingapp.NewService(deps)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		OnboardingSvc: onboardingSvc,
		ProfileSvc:    profile.NewService(profile.ServiceDeps{ProfileRepo: profileRepo}),
		JWTProvider:   jwtProvider,
		Metrics:       m,
	})

	go sweep(ctx, onboardingSvc, cfg.SessionTTL)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// sweep drops idle onboarding sessions until ctx is cancelled.
func sweep(ctx context.Context, svc onboardingapp.Service, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := svc.Sweep(ctx, now); n > 0 {
				log.Printf("expired %d onboarding sessions", n)
			}
		}
	}
}
