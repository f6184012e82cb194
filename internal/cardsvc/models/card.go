package models

import "time"

// Card is a digital wedding card: a message plus optional voice artifacts.
// Paths are relative to the service data directory.
type Card struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Message         string    `json:"message"`
	VoiceSamplePath string    `json:"voice_sample_path,omitempty"`
	AIVoicePath     string    `json:"ai_voice_path,omitempty"`
	QRCodePath      string    `json:"qr_code_path,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Views           int64     `json:"views"`
}

// CardResponse is returned to the card owner (dashboard view).
type CardResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Message    string    `json:"message"`
	QRCodePath string    `json:"qr_code_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Views      int64     `json:"views"`
}

// CardPublicView is the shape served to recipients opening a card from a
// QR code. No owner data beyond the message and audio path leaks out.
type CardPublicView struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	AIVoicePath string `json:"ai_voice_path,omitempty"`
}

func (c *Card) Response() CardResponse {
	return CardResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Message:    c.Message,
		QRCodePath: c.QRCodePath,
		CreatedAt:  c.CreatedAt,
		Views:      c.Views,
	}
}

func (c *Card) PublicView() CardPublicView {
	return CardPublicView{
		ID:          c.ID,
		Message:     c.Message,
		AIVoicePath: c.AIVoicePath,
	}
}
