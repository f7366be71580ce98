package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	onboardingapp "github.com/go-dating-onboarding/internal/application/onboarding"
	"github.com/go-dating-onboarding/internal/domain"
	"github.com/go-dating-onboarding/internal/pkg/validate"
)

// multipart overhead allowed on top of the photo itself
const formOverhead = 1 << 20

// OnboardingHandler drives the onboarding wizard.
type OnboardingHandler struct {
	svc           onboardingapp.Service
	photoMaxBytes int64
}

func NewOnboardingHandler(svc onboardingapp.Service, photoMaxBytes int64) *OnboardingHandler {
	return &OnboardingHandler{svc: svc, photoMaxBytes: photoMaxBytes}
}

func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req domain.StartOnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	st, bearer, err := h.svc.Start(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, StartEnvelope{Bearer: bearer, State: st})
}

func (h *OnboardingHandler) Prompt(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Prompt())
}

func (h *OnboardingHandler) State(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStep(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Submit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "step"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) Check(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStep(w, r)
	if !ok {
		return
	}
	step := chi.URLParam(r, "step")
	valid, err := h.svc.Check(r.Context(), chi.URLParam(r, "id"), step, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckEnvelope{Step: step, Valid: valid})
}

func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.photoMaxBytes+formOverhead)
	if err := r.ParseMultipartForm(h.photoMaxBytes + formOverhead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer f.Close()

	p, err := h.svc.AddPhoto(r.Context(), chi.URLParam(r, "id"), onboardingapp.PhotoUpload{
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *OnboardingHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemovePhoto(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OnboardingHandler) StartVoice(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.StartVoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *OnboardingHandler) EndVoice(w http.ResponseWriter, r *http.Request) {
	var req domain.EndVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	st, err := h.svc.EndVoice(r.Context(), chi.URLParam(r, "id"), req.ConversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// decodeStep reads an optional step body; steps without input may post nothing.
func decodeStep(w http.ResponseWriter, r *http.Request) (domain.StepRequest, bool) {
	var req domain.StepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}
