package domain

import "time"

// Profile is the committed result of a completed onboarding session.
// The profile ID is the onboarding session ID.
type Profile struct {
	ProfileID           string    `json:"id" dynamodbav:"profile_id"`
	FullName            string    `json:"full_name" dynamodbav:"full_name"`
	BirthDate           string    `json:"birth_date" dynamodbav:"birth_date"`
	Gender              string    `json:"gender" dynamodbav:"gender"`
	LookingFor          string    `json:"looking_for" dynamodbav:"looking_for"`
	InstagramUsername   string    `json:"instagram_username" dynamodbav:"instagram_username"`
	TwitterUsername     string    `json:"twitter_username,omitempty" dynamodbav:"twitter_username,omitempty"`
	LinkedInUsername    string    `json:"linkedin_username,omitempty" dynamodbav:"linkedin_username,omitempty"`
	SnapchatUsername    string    `json:"snapchat_username,omitempty" dynamodbav:"snapchat_username,omitempty"`
	PhoneNumber         string    `json:"phone_number" dynamodbav:"phone_number"`
	PhoneVerified       bool      `json:"phone_verified" dynamodbav:"phone_verified"`
	AccessCodeHash      string    `json:"-" dynamodbav:"access_code_hash"`
	VoiceConversationID string    `json:"voice_conversation_id,omitempty" dynamodbav:"voice_conversation_id,omitempty"`
	PhotoKeys           []string  `json:"photo_keys" dynamodbav:"photo_keys"`
	Bio                 string    `json:"bio" dynamodbav:"bio"`
	CreatedAt           time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt           time.Time `json:"updated" dynamodbav:"updated_at"`
}

// UpdateSocialsRequest edits the social handles shown on the profile screen.
// Empty fields are left untouched.
type UpdateSocialsRequest struct {
	SnapchatUsername  *string `json:"snapchat_username" validate:"omitempty,snaphandle"`
	InstagramUsername *string `json:"instagram_username" validate:"omitempty,handle"`
	TwitterUsername   *string `json:"twitter_username" validate:"omitempty,handle"`
}
