package interfaces

import (
	"context"
	"io"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// ProviderJobState is the normalized answer to "how is this external job
// doing". Providers map their own status vocabulary onto models.JobStatus.
type ProviderJobState struct {
	Status models.JobStatus
	Detail string // provider wording, kept for logs and failure reasons
}

// DubRequest carries the parameters for an ElevenLabs dubbing submission.
type DubRequest struct {
	SourceURL       string
	SourceReader    io.Reader // used instead of SourceURL when non-nil
	SourceName      string
	SourceLanguage  string
	TargetLanguages []string
	NumSpeakers     int
	StartTime       float64
	EndTime         float64
	Watermark       bool
}

// TTSRequest carries the parameters for a text-to-speech render.
type TTSRequest struct {
	VoiceID string
	Text    string
	Model   string
}

// VoiceSample is one reference recording for an instant voice clone.
type VoiceSample struct {
	Name   string
	Reader io.Reader
}

// VoiceCloneRequest carries the parameters for an instant voice clone.
type VoiceCloneRequest struct {
	Name        string
	Description string
	Labels      map[string]string
	Samples     []VoiceSample
}

// GenerateVoiceRequest carries the voice design parameters for a random
// voice preview.
type GenerateVoiceRequest struct {
	Gender         string
	Age            string
	Accent         string
	AccentStrength float64
	Text           string
}

// SaveGeneratedVoiceRequest promotes a previewed random voice into the
// caller's voice library.
type SaveGeneratedVoiceRequest struct {
	VoiceName        string
	VoiceDescription string
	GeneratedVoiceID string
	Labels           map[string]string
}

// DubbingClient abstracts the ElevenLabs dubbing and voice APIs.
type DubbingClient interface {
	SubmitDub(ctx context.Context, req *DubRequest) (externalJobID string, err error)
	GetDubStatus(ctx context.Context, externalJobID string) (*ProviderJobState, error)
	DownloadDub(ctx context.Context, externalJobID, languageCode string) (io.ReadCloser, error)
	RemoveDub(ctx context.Context, externalJobID string) error
	ListVoices(ctx context.Context) ([]models.Voice, error)
	TextToSpeech(ctx context.Context, req *TTSRequest) (io.ReadCloser, error)
	// CloneVoice creates an instant voice clone from reference samples.
	CloneVoice(ctx context.Context, req *VoiceCloneRequest) (voiceID string, err error)
	// VoiceGenerationParameters fetches the voice design parameter space.
	VoiceGenerationParameters(ctx context.Context) (*models.VoiceGenerationParameters, error)
	// GenerateVoice renders a random voice preview; the returned id is
	// needed to save the voice permanently.
	GenerateVoice(ctx context.Context, req *GenerateVoiceRequest) (generatedVoiceID string, audio io.ReadCloser, err error)
	// SaveGeneratedVoice persists a previously generated voice.
	SaveGeneratedVoice(ctx context.Context, req *SaveGeneratedVoiceRequest) (voiceID string, err error)
}

// EnhanceSubmission carries the parameters for a Dolby enhance job.
type EnhanceSubmission struct {
	InputURL  string // source the provider pulls from
	OutputURL string // provider-side location the result lands in
	Settings  *models.EnhanceSettings
}

// MediaProcessingClient abstracts the Dolby Media APIs (enhance and
// diagnose share auth, webhooks and output handling).
type MediaProcessingClient interface {
	SubmitEnhance(ctx context.Context, sub *EnhanceSubmission) (externalJobID string, err error)
	GetEnhanceStatus(ctx context.Context, externalJobID string) (*ProviderJobState, error)
	SubmitDiagnose(ctx context.Context, inputURL string) (externalJobID string, err error)
	// GetDiagnoseStatus returns the diagnosis payload alongside the state
	// once the job completes.
	GetDiagnoseStatus(ctx context.Context, externalJobID string) (*ProviderJobState, *models.Diagnosis, error)
	// UploadInput pushes local media to provider-side storage and returns
	// the dlb:// URL to reference it by.
	UploadInput(ctx context.Context, r io.Reader, name string) (string, error)
	// DownloadOutput streams a finished artifact from provider-side storage.
	DownloadOutput(ctx context.Context, outputURL string) (io.ReadCloser, error)
	// RegisterWebhook points the provider's job-completion callback at url.
	RegisterWebhook(ctx context.Context, url string) error
}

// VideoIndexClient abstracts the TwelveLabs video understanding API.
type VideoIndexClient interface {
	CreateIndexTask(ctx context.Context, videoURL string) (taskID string, err error)
	GetTaskStatus(ctx context.Context, taskID string) (*ProviderJobState, error)
	// GetIndexedVideoID resolves the provider's video id for a finished task.
	GetIndexedVideoID(ctx context.Context, taskID string) (string, error)
}

// SummaryClient produces plain-language summaries of structured payloads.
type SummaryClient interface {
	SummarizeDiagnosis(ctx context.Context, diagnosis *models.Diagnosis) (string, error)
}
