package domain

// Record is the partial registration data collected by the onboarding steps.
// Every field except PhoneVerified is optional until its owning step commits it.
type Record struct {
	FullName            string   `json:"full_name,omitempty"`
	BirthDate           string   `json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender              Gender   `json:"gender,omitempty"`
	LookingFor          Gender   `json:"looking_for,omitempty"`
	InstagramUsername   string   `json:"instagram_username,omitempty"`
	TwitterUsername     string   `json:"twitter_username,omitempty"`
	LinkedInUsername    string   `json:"linkedin_username,omitempty"`
	PhoneNumber         string   `json:"phone_number,omitempty"`
	PhoneVerified       bool     `json:"phone_verified"`
	SMSVerificationCode string   `json:"sms_verification_code,omitempty"`
	AccessCode          string   `json:"access_code,omitempty"`
	VoiceConversationID string   `json:"voice_conversation_id,omitempty"`
	PhotoKeys           []string `json:"photo_keys,omitempty"`
	Bio                 string   `json:"bio,omitempty"`
}

// Patch is a shallow update to a Record. Nil fields are left untouched.
type Patch struct {
	FullName            *string
	BirthDate           *string
	Gender              *Gender
	LookingFor          *Gender
	InstagramUsername   *string
	TwitterUsername     *string
	LinkedInUsername    *string
	PhoneNumber         *string
	PhoneVerified       *bool
	SMSVerificationCode *string
	AccessCode          *string
	VoiceConversationID *string
	PhotoKeys           []string
	Bio                 *string
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.FullName == nil && p.BirthDate == nil && p.Gender == nil && p.LookingFor == nil &&
		p.InstagramUsername == nil && p.TwitterUsername == nil && p.LinkedInUsername == nil &&
		p.PhoneNumber == nil && p.PhoneVerified == nil && p.SMSVerificationCode == nil &&
		p.AccessCode == nil && p.VoiceConversationID == nil && p.PhotoKeys == nil && p.Bio == nil
}
