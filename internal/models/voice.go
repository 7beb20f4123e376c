package models

// Voice is a synthesis voice available through the dubbing provider.
type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	PreviewURL  string            `json:"preview_url,omitempty"`
}

// VoiceGenerationOption is one selectable value for a voice design
// parameter (gender, accent, age).
type VoiceGenerationOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// VoiceGenerationParameters describes the provider's voice design space.
type VoiceGenerationParameters struct {
	Genders               []VoiceGenerationOption `json:"genders"`
	Accents               []VoiceGenerationOption `json:"accents"`
	Ages                  []VoiceGenerationOption `json:"ages"`
	MinimumCharacters     int                     `json:"minimum_characters"`
	MaximumCharacters     int                     `json:"maximum_characters"`
	MinimumAccentStrength float64                 `json:"minimum_accent_strength"`
	MaximumAccentStrength float64                 `json:"maximum_accent_strength"`
}
