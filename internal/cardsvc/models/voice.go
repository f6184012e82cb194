package models

import "time"

// VoiceModel records the provider-side cloned voice for a user. One model per
// user, keyed by user id.
type VoiceModel struct {
	UserID     string    `json:"user_id"`
	VoiceID    string    `json:"voice_id"`
	VoiceName  string    `json:"voice_name"`
	Provider   string    `json:"provider"`
	SamplePath string    `json:"sample_path"`
	CreatedAt  time.Time `json:"created_at"`
}
