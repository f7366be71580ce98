package onboarding

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-dating-onboarding/internal/domain"
	"github.com/go-dating-onboarding/internal/infrastructure/metrics"
	s3infra "github.com/go-dating-onboarding/internal/infrastructure/s3"
	"github.com/go-dating-onboarding/internal/onboarding"
	"github.com/go-dating-onboarding/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// DefaultPrompt is copied by the user into their chat assistant on the
// GPT-import step; the assistant's answer becomes the profile bio.
const DefaultPrompt = "Based on everything you know about me from our conversations, " +
	"write a short, warm dating-profile bio in the first person. " +
	"Mention my interests, what I value and what I am looking for. " +
	"Keep it under 120 words and do not invent facts."

// PhotoUpload is a single image posted on the photo step.
type PhotoUpload struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type Service interface {
	Start(ctx context.Context, req domain.StartOnboardingRequest) (*domain.OnboardingState, string, error)
	State(ctx context.Context, sessionID string) (*domain.OnboardingState, error)
	Check(ctx context.Context, sessionID, step string, req domain.StepRequest) (bool, error)
	Submit(ctx context.Context, sessionID, step string, req domain.StepRequest) (*domain.OnboardingState, error)
	Back(ctx context.Context, sessionID string) (*domain.OnboardingState, error)
	Reset(ctx context.Context, sessionID string) (*domain.OnboardingState, error)
	Finalize(ctx context.Context, sessionID string) (*domain.OnboardingState, error)
	AddPhoto(ctx context.Context, sessionID string, in PhotoUpload) (*domain.Photo, error)
	RemovePhoto(ctx context.Context, sessionID, photoID string) error
	StartVoice(ctx context.Context, sessionID string) (*domain.VoiceConversation, error)
	EndVoice(ctx context.Context, sessionID, conversationID string) (*domain.OnboardingState, error)
	Prompt() domain.GPTPrompt
	Sweep(ctx context.Context, now time.Time) int
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type voiceProvider interface {
	StartConversation(ctx context.Context, agentID string) (string, error)
}

type tokenSigner interface {
	Sign(sessionID string) (string, error)
}

type ServiceDeps struct {
	ProfileRepo  profileStore
	Photos       objectStore
	SMSSender    smsSender
	Voice        voiceProvider
	Tokens       tokenSigner // optional; no token is issued when nil
	Metrics      *metrics.Metrics
	Now          func() time.Time
	SessionTTL   time.Duration
	PhotoURLTTL  time.Duration
	PhotoMaxSize int64
	VoiceAgentID string
	Prompt       domain.GPTPrompt
	// SMSInterval and SMSBurst bound verification texts per session.
	// Defaults: one every 30 seconds, burst of 3.
	SMSInterval time.Duration
	SMSBurst    int
}

// session is one in-flight onboarding. mu serializes every operation on it,
// so side effects (SMS, uploads) and the state transition they gate happen
// as one unit. lastSeen is read by the sweeper without taking mu.
type session struct {
	mu           sync.Mutex
	id           string
	accessCode   string
	machine      *onboarding.Machine
	photos       []domain.Photo
	voice        *domain.VoiceConversation
	sms          *rate.Limiter
	profileSaved bool
	closed       bool // set once swept; guarded by mu
	lastSeen     atomic.Int64
}

type service struct {
	deps ServiceDeps

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(deps ServiceDeps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Prompt.Prompt == "" {
		deps.Prompt.Prompt = DefaultPrompt
	}
	if deps.SMSInterval <= 0 {
		deps.SMSInterval = 30 * time.Second
	}
	if deps.SMSBurst <= 0 {
		deps.SMSBurst = 3
	}
	return &service{deps: deps, sessions: make(map[string]*session)}
}

func (s *service) Start(ctx context.Context, req domain.StartOnboardingRequest) (*domain.OnboardingState, string, error) {
	if !onboarding.ValidAccessCode(req.AccessCode) {
		return nil, "", fmt.Errorf("access code required: %w", domain.ErrBadRequest)
	}
	store := onboarding.NewStore()
	code := req.AccessCode
	store.Update(domain.Patch{AccessCode: &code})
	sess := &session{
		id:         id.New(),
		accessCode: code,
		machine:    onboarding.NewMachine(store, s.deps.Now),
		sms:        rate.NewLimiter(rate.Every(s.deps.SMSInterval), s.deps.SMSBurst),
	}
	sess.touch(s.deps.Now())

	var bearer string
	if s.deps.Tokens != nil {
		var err error
		if bearer, err = s.deps.Tokens.Sign(sess.id); err != nil {
			return nil, "", fmt.Errorf("sign session token: %w", err)
		}
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.deps.Metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	s.deps.Metrics.SessionsStarted.Inc()
	slog.Info("onboarding session started", "session_id", sess.id)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshot(ctx, sess), bearer, nil
}

func (s *service) State(ctx context.Context, sessionID string) (*domain.OnboardingState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return s.snapshot(ctx, sess), nil
}

func (s *service) Check(_ context.Context, sessionID, step string, req domain.StepRequest) (bool, error) {
	st, err := onboarding.ParseStep(step)
	if err != nil {
		return false, err
	}
	sess, err := s.acquire(sessionID)
	if err != nil {
		return false, err
	}
	defer sess.mu.Unlock()
	in, err := sess.input(st, req)
	if err != nil {
		return false, err
	}
	return sess.machine.Check(in), nil
}

func (s *service) Submit(ctx context.Context, sessionID, step string, req domain.StepRequest) (*domain.OnboardingState, error) {
	st, err := onboarding.ParseStep(step)
	if err != nil {
		return nil, err
	}
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	in, err := sess.input(st, req)
	if err != nil {
		return nil, err
	}
	if st == onboarding.StepPhone && sess.machine.Step() == onboarding.StepPhone && sess.machine.Check(in) {
		if !sess.sms.AllowN(s.deps.Now(), 1) {
			s.deps.Metrics.StepsRejected.WithLabelValues(st.String(), "rate_limited").Inc()
			return nil, fmt.Errorf("verification code requested too often: %w", domain.ErrRateLimited)
		}
		if err := s.sendVerificationCode(ctx, req.PhoneNumber); err != nil {
			return nil, err
		}
	}
	next, err := sess.machine.Submit(in)
	if err != nil {
		s.deps.Metrics.StepsRejected.WithLabelValues(st.String(), rejectReason(err)).Inc()
		return nil, err
	}
	s.deps.Metrics.StepsCompleted.WithLabelValues(st.String()).Inc()
	slog.Info("onboarding step completed", "session_id", sess.id, "step", st.String(), "next", next.String())

	if next == onboarding.StepDashboard {
		s.deps.Metrics.SessionsCompleted.Inc()
		if err := s.commitProfile(ctx, sess); err != nil {
			slog.Error("profile commit failed, client must finalize", "session_id", sess.id, "err", err)
		}
	}
	return s.snapshot(ctx, sess), nil
}

func (s *service) Back(ctx context.Context, sessionID string) (*domain.OnboardingState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if _, err := sess.machine.Back(); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, sess), nil
}

func (s *service) Reset(ctx context.Context, sessionID string) (*domain.OnboardingState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if sess.profileSaved {
		return nil, fmt.Errorf("profile already saved, edit it instead: %w", domain.ErrConflict)
	}
	s.discardPhotos(ctx, sess)
	sess.machine.Restart()
	sess.photos = nil
	sess.voice = nil
	slog.Info("onboarding session reset", "session_id", sess.id)
	return s.snapshot(ctx, sess), nil
}

func (s *service) Finalize(ctx context.Context, sessionID string) (*domain.OnboardingState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if sess.machine.Step() != onboarding.StepDashboard {
		return nil, fmt.Errorf("onboarding not finished: %w", domain.ErrConflict)
	}
	if !sess.profileSaved {
		if err := s.commitProfile(ctx, sess); err != nil {
			return nil, err
		}
	}
	return s.snapshot(ctx, sess), nil
}

func (s *service) AddPhoto(ctx context.Context, sessionID string, in PhotoUpload) (*domain.Photo, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if sess.machine.Step() != onboarding.StepPhotos {
		return nil, fmt.Errorf("photos can only be added on the photo step: %w", domain.ErrConflict)
	}
	if len(sess.photos) >= onboarding.MaxPhotos {
		return nil, fmt.Errorf("at most %d photos: %w", onboarding.MaxPhotos, domain.ErrBadRequest)
	}
	contentType, ext, ok := s3infra.ImageContentType(in.Filename)
	if !ok {
		return nil, fmt.Errorf("unsupported image type: %w", domain.ErrBadRequest)
	}
	if s.deps.PhotoMaxSize > 0 && in.Size > s.deps.PhotoMaxSize {
		return nil, fmt.Errorf("photo exceeds %d bytes: %w", s.deps.PhotoMaxSize, domain.ErrBadRequest)
	}

	photoID := id.New()
	key := fmt.Sprintf("onboarding/%s/%s%s", sess.id, photoID, ext)
	hasher := sha256.New()
	var n countingWriter
	tee := io.TeeReader(in.Reader, io.MultiWriter(hasher, &n))
	if _, err := s.deps.Photos.Upload(ctx, key, tee, contentType); err != nil {
		slog.Error("photo upload failed", "session_id", sess.id, "err", err)
		return nil, fmt.Errorf("upload photo: %w", domain.ErrUnavailable)
	}
	p := domain.Photo{
		PhotoID:   photoID,
		Object:    key,
		Size:      int64(n),
		Type:      contentType,
		Hash:      hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt: s.deps.Now().UTC(),
	}
	sess.photos = append(sess.photos, p)
	p.URL = s.presign(ctx, key)
	return &p, nil
}

func (s *service) RemovePhoto(ctx context.Context, sessionID, photoID string) error {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()
	if sess.machine.Step() != onboarding.StepPhotos {
		return fmt.Errorf("photos can only be removed on the photo step: %w", domain.ErrConflict)
	}
	for i, p := range sess.photos {
		if p.PhotoID != photoID {
			continue
		}
		if err := s.deps.Photos.Delete(ctx, p.Object); err != nil {
			slog.Error("photo delete failed", "session_id", sess.id, "key", p.Object, "err", err)
			return fmt.Errorf("delete photo: %w", domain.ErrUnavailable)
		}
		sess.photos = append(sess.photos[:i], sess.photos[i+1:]...)
		return nil
	}
	return fmt.Errorf("photo not found: %w", domain.ErrNotFound)
}

func (s *service) StartVoice(ctx context.Context, sessionID string) (*domain.VoiceConversation, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if sess.machine.Step() != onboarding.StepVoiceIntro {
		return nil, fmt.Errorf("voice intro is not the current step: %w", domain.ErrConflict)
	}
	signedURL, err := s.deps.Voice.StartConversation(ctx, s.deps.VoiceAgentID)
	if err != nil {
		slog.Error("voice conversation start failed", "session_id", sess.id, "err", err)
		return nil, fmt.Errorf("start voice conversation: %w", domain.ErrUnavailable)
	}
	sess.voice = &domain.VoiceConversation{ConversationID: id.New(), SignedURL: signedURL}
	v := *sess.voice
	return &v, nil
}

func (s *service) EndVoice(ctx context.Context, sessionID, conversationID string) (*domain.OnboardingState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if sess.voice == nil || sess.voice.ConversationID != conversationID {
		return nil, fmt.Errorf("voice conversation not found: %w", domain.ErrNotFound)
	}
	sess.voice.Ended = true
	return s.snapshot(ctx, sess), nil
}

func (s *service) Prompt() domain.GPTPrompt {
	return s.deps.Prompt
}

// Sweep drops sessions idle for longer than SessionTTL and returns how many
// were removed. Photos of sessions that never produced a profile are deleted.
func (s *service) Sweep(ctx context.Context, now time.Time) int {
	if s.deps.SessionTTL <= 0 {
		return 0
	}
	var expired []*session
	s.mu.Lock()
	for sid, sess := range s.sessions {
		if now.Sub(sess.touched()) > s.deps.SessionTTL {
			expired = append(expired, sess)
			delete(s.sessions, sid)
		}
	}
	s.deps.Metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	// Detached sessions may still be finishing an operation; waiting for it
	// here lets its uploads be cleaned up with the rest.
	for _, sess := range expired {
		sess.mu.Lock()
		sess.closed = true
		if !sess.profileSaved {
			s.discardPhotos(ctx, sess)
		}
		sess.mu.Unlock()
		s.deps.Metrics.SessionsExpired.Inc()
		slog.Info("onboarding session expired", "session_id", sess.id)
	}
	return len(expired)
}

// acquire returns the session locked. Callers must unlock sess.mu.
func (s *service) acquire(sessionID string) (*session, error) {
	if !id.Valid(sessionID) {
		return nil, fmt.Errorf("malformed session id: %w", domain.ErrNotFound)
	}
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		sess.touch(s.deps.Now())
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("onboarding session not found: %w", domain.ErrNotFound)
	}
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, fmt.Errorf("onboarding session expired: %w", domain.ErrNotFound)
	}
	return sess, nil
}

// sendVerificationCode dispatches a code with one retry. The code is not
// kept: the verification step only checks its format.
func (s *service) sendVerificationCode(ctx context.Context, phone string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Your verification code is %06d", n.Int64())
	to := onboarding.E164(phone)
	err = s.deps.SMSSender.SendSMS(ctx, to, msg)
	if err != nil {
		slog.Warn("sms send failed, retrying once", "err", err)
		err = s.deps.SMSSender.SendSMS(ctx, to, msg)
	}
	if err != nil {
		s.deps.Metrics.SMSSent.WithLabelValues("failed").Inc()
		slog.Error("sms send failed", "err", err)
		return fmt.Errorf("send verification code: %w", domain.ErrUnavailable)
	}
	s.deps.Metrics.SMSSent.WithLabelValues("sent").Inc()
	return nil
}

func (s *service) commitProfile(ctx context.Context, sess *session) error {
	rec := sess.machine.Store().Get()
	// A reset clears the record, so the gate code is taken from the session.
	hash, err := bcrypt.GenerateFromPassword([]byte(sess.accessCode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash access code: %w", err)
	}
	now := s.deps.Now().UTC()
	p := &domain.Profile{
		ProfileID:           sess.id,
		FullName:            rec.FullName,
		BirthDate:           rec.BirthDate,
		Gender:              rec.Gender.String(),
		LookingFor:          rec.LookingFor.String(),
		InstagramUsername:   rec.InstagramUsername,
		TwitterUsername:     rec.TwitterUsername,
		LinkedInUsername:    rec.LinkedInUsername,
		PhoneNumber:         rec.PhoneNumber,
		PhoneVerified:       rec.PhoneVerified,
		AccessCodeHash:      string(hash),
		VoiceConversationID: rec.VoiceConversationID,
		PhotoKeys:           rec.PhotoKeys,
		Bio:                 rec.Bio,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err = s.deps.ProfileRepo.Put(ctx, p)
	if err != nil {
		slog.Warn("profile commit failed, retrying once", "session_id", sess.id, "err", err)
		err = s.deps.ProfileRepo.Put(ctx, p)
	}
	if err != nil {
		s.deps.Metrics.ProfileCommits.WithLabelValues("failed").Inc()
		return fmt.Errorf("save profile: %w", domain.ErrUnavailable)
	}
	s.deps.Metrics.ProfileCommits.WithLabelValues("saved").Inc()
	sess.profileSaved = true
	return nil
}

func (s *service) discardPhotos(ctx context.Context, sess *session) {
	for _, p := range sess.photos {
		if err := s.deps.Photos.Delete(ctx, p.Object); err != nil {
			slog.Warn("could not delete photo", "session_id", sess.id, "key", p.Object, "err", err)
		}
	}
}

func (s *service) presign(ctx context.Context, key string) string {
	u, err := s.deps.Photos.PresignedURL(ctx, key, s.deps.PhotoURLTTL)
	if err != nil {
		slog.Warn("could not presign photo url", "key", key, "err", err)
		return ""
	}
	return u
}

// snapshot must be called with sess.mu held.
func (s *service) snapshot(ctx context.Context, sess *session) *domain.OnboardingState {
	step := sess.machine.Step()
	st := &domain.OnboardingState{
		SessionID:    sess.id,
		Step:         step.String(),
		AutoAdvance:  onboarding.AutoAdvance(step),
		CanGoBack:    onboarding.CanGoBack(step),
		Record:       sess.machine.Store().Get(),
		Photos:       make([]domain.Photo, len(sess.photos)),
		ProfileSaved: sess.profileSaved,
	}
	if p, ok := onboarding.Progress(step); ok {
		st.Progress = &p
	}
	for i, p := range sess.photos {
		p.URL = s.presign(ctx, p.Object)
		st.Photos[i] = p
	}
	if sess.voice != nil {
		v := *sess.voice
		st.Voice = &v
	}
	return st
}

// input builds the typed step input from the request body. Must be called
// with sess.mu held; the voice and photo steps read session state.
func (sess *session) input(st onboarding.Step, req domain.StepRequest) (onboarding.Input, error) {
	switch st {
	case onboarding.StepName:
		return onboarding.NameInput{FullName: req.FullName}, nil
	case onboarding.StepBirthday:
		return onboarding.BirthdayInput{BirthDate: req.BirthDate}, nil
	case onboarding.StepGender:
		return onboarding.GenderInput{Gender: parseChoice(req.Gender)}, nil
	case onboarding.StepLookingFor:
		return onboarding.LookingForInput{LookingFor: parseChoice(req.LookingFor)}, nil
	case onboarding.StepSocials:
		return onboarding.SocialsInput{
			Instagram: req.InstagramUsername,
			Twitter:   req.TwitterUsername,
			LinkedIn:  req.LinkedInUsername,
		}, nil
	case onboarding.StepPhone:
		return onboarding.PhoneInput{PhoneNumber: req.PhoneNumber}, nil
	case onboarding.StepPhoneVerification:
		return onboarding.VerificationInput{Code: req.Code}, nil
	case onboarding.StepVoiceIntro:
		if sess.voice == nil {
			return onboarding.VoiceIntroInput{}, nil
		}
		return onboarding.VoiceIntroInput{ConversationID: sess.voice.ConversationID, Ended: sess.voice.Ended}, nil
	case onboarding.StepPhotos:
		keys := make([]string, len(sess.photos))
		for i, p := range sess.photos {
			keys[i] = p.Object
		}
		return onboarding.PhotosInput{Keys: keys}, nil
	case onboarding.StepGPTInstructions:
		return onboarding.InstructionsInput{}, nil
	case onboarding.StepGPTResponse:
		return onboarding.GPTResponseInput{Text: req.Response}, nil
	case onboarding.StepDashboard:
		return nil, fmt.Errorf("dashboard takes no input: %w", domain.ErrConflict)
	}
	return nil, fmt.Errorf("unknown step %s: %w", st, domain.ErrNotFound)
}

func (sess *session) touch(now time.Time) {
	sess.lastSeen.Store(now.UnixNano())
}

func (sess *session) touched() time.Time {
	return time.Unix(0, sess.lastSeen.Load())
}

// parseChoice maps an unknown or missing value to GenderUnset, which the
// step validators reject like any other invalid draft.
func parseChoice(s string) domain.Gender {
	g, err := domain.ParseGender(s)
	if err != nil {
		return domain.GenderUnset
	}
	return g
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, onboarding.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, onboarding.ErrWrongStep):
		return "wrong_step"
	}
	return "error"
}

type countingWriter int64

func (c *countingWriter) Write(p []byte) (int, error) {
	*c += countingWriter(len(p))
	return len(p), nil
}
