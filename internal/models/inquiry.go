package models

import "time"

// Inquiry is a professional voice-clone request captured from the site.
type Inquiry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	VoiceName string    `json:"voice_name,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
