package domain

import "time"

// StepRequest is the body accepted by every step endpoint. Each step reads
// only the fields it owns; the rest are ignored.
type StepRequest struct {
	FullName          string `json:"full_name"`
	BirthDate         string `json:"birth_date"`
	Gender            string `json:"gender"`
	LookingFor        string `json:"looking_for"`
	InstagramUsername string `json:"instagram_username"`
	TwitterUsername   string `json:"twitter_username"`
	LinkedInUsername  string `json:"linkedin_username"`
	PhoneNumber       string `json:"phone_number"`
	Code              string `json:"code"`
	Response          string `json:"response"`
}

// StartOnboardingRequest opens a new onboarding session behind the access-code gate.
type StartOnboardingRequest struct {
	AccessCode string `json:"access_code" validate:"required,accesscode"`
}

// EndVoiceRequest closes the voice intro conversation.
type EndVoiceRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

// Progress is what a client needs to render the progress indicator.
type Progress struct {
	Index   int `json:"index"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Photo is an image uploaded during the photo step.
type Photo struct {
	PhotoID   string    `json:"id"`
	Object    string    `json:"object"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	Hash      string    `json:"hash"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created"`
}

// VoiceConversation is a started conversation with the voice intro agent.
type VoiceConversation struct {
	ConversationID string `json:"conversation_id"`
	SignedURL      string `json:"signed_url,omitempty"`
	Ended          bool   `json:"ended"`
}

// OnboardingState is the client-facing snapshot of an onboarding session.
type OnboardingState struct {
	SessionID    string             `json:"id"`
	Step         string             `json:"step"`
	AutoAdvance  bool               `json:"auto_advance"`
	CanGoBack    bool               `json:"can_go_back"`
	Progress     *Progress          `json:"progress,omitempty"`
	Record       Record             `json:"record"`
	Photos       []Photo            `json:"photos"`
	Voice        *VoiceConversation `json:"voice,omitempty"`
	ProfileSaved bool               `json:"profile_saved"`
}

// GPTPrompt is served on the GPT-import instructions step.
type GPTPrompt struct {
	Prompt string `json:"prompt"`
	AppURL string `json:"app_url"`
	WebURL string `json:"web_url"`
}
