package models

// EnhanceSettings is the audio processing profile sent with a Dolby
// enhance submission. Zero values mean "let the provider decide".
type EnhanceSettings struct {
	ContentType string        `json:"content_type,omitempty"` // "podcast", "voice_over", "interview", ...
	Loudness    *LoudnessSpec `json:"loudness,omitempty"`
	Noise       *AmountSpec   `json:"noise,omitempty"`
	Dynamics    *DynamicsSpec `json:"dynamics,omitempty"`
	Speech      *SpeechSpec   `json:"speech,omitempty"`
}

type LoudnessSpec struct {
	Enable             bool    `json:"enable"`
	TargetLevel        float64 `json:"target_level,omitempty"` // LKFS
	DialogIntelligence bool    `json:"dialog_intelligence,omitempty"`
}

type AmountSpec struct {
	Enable bool   `json:"enable"`
	Amount string `json:"amount,omitempty"` // "low", "medium", "high", "max", "auto"
}

type DynamicsSpec struct {
	RangeControl *AmountSpec `json:"range_control,omitempty"`
}

type SpeechSpec struct {
	Isolation *IsolationSpec `json:"isolation,omitempty"`
	Sibilance *AmountSpec    `json:"sibilance,omitempty"`
	Plosive   *AmountSpec    `json:"plosive,omitempty"`
}

type IsolationSpec struct {
	Enable bool `json:"enable"`
	Amount int  `json:"amount,omitempty"` // 0-100
}

// Diagnosis is the media quality report Dolby returns when a diagnose job
// completes. Stored inline on the DiagnoseJob record.
type Diagnosis struct {
	MediaInfo     *DiagnosisMediaInfo `json:"media_info,omitempty"`
	QualityScore  *QualityScore       `json:"quality_score,omitempty"`
	NoiseScore    *NoiseScore         `json:"noise_score,omitempty"`
	Clipping      map[string]any      `json:"clipping,omitempty"`
	Loudness      map[string]any      `json:"loudness,omitempty"`
	MusicDetected float64             `json:"music_detected,omitempty"` // percentage of content
	SilenceRatio  float64             `json:"silence_ratio,omitempty"`
}

type DiagnosisMediaInfo struct {
	ContainerKind string  `json:"container_kind,omitempty"`
	DurationSecs  float64 `json:"duration_secs,omitempty"`
	Bitrate       int     `json:"bitrate,omitempty"`
	SampleRate    int     `json:"sample_rate,omitempty"`
	Channels      int     `json:"channels,omitempty"`
	CodecKind     string  `json:"codec_kind,omitempty"`
}

type QualityScore struct {
	Average      float64 `json:"average"`
	Distribution []Band  `json:"distribution,omitempty"`
	WorstSegment *Band   `json:"worst_segment,omitempty"`
}

type NoiseScore struct {
	Average      float64 `json:"average"`
	Distribution []Band  `json:"distribution,omitempty"`
}

// Band is one bucket of a score distribution with the share of content
// falling in it.
type Band struct {
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Start      float64 `json:"start,omitempty"`
	End        float64 `json:"end,omitempty"`
}
