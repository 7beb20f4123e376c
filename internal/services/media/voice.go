package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// ListVoices returns the synthesis voices available for TTS.
func (s *Service) ListVoices(ctx context.Context) ([]models.Voice, error) {
	return s.dubbing.ListVoices(ctx)
}

// TextToSpeechRequest carries a TTS render request.
type TextToSpeechRequest struct {
	VoiceID string `json:"voice_id" validate:"required"`
	Text    string `json:"text" validate:"required,max=5000"`
	Model   string `json:"model,omitempty"`
}

// TextToSpeech renders text with the chosen voice, stores the audio and
// returns the library record.
func (s *Service) TextToSpeech(ctx context.Context, userID string, req *TextToSpeechRequest) (*models.Audio, error) {
	stream, err := s.dubbing.TextToSpeech(ctx, &interfaces.TTSRequest{
		VoiceID: req.VoiceID,
		Text:    req.Text,
		Model:   req.Model,
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	id := common.NewAudioID()
	key, err := s.objects.Put(ctx, stream, fmt.Sprintf("%s_tts.mp3", id))
	if err != nil {
		return nil, fmt.Errorf("failed to store rendered speech: %w", err)
	}

	now := time.Now().UTC()
	audio := &models.Audio{
		ID:        id,
		UserID:    userID,
		Name:      fmt.Sprintf("TTS %s", now.Format("2006-01-02 15:04")),
		ObjectKey: key,
		MimeType:  "audio/mpeg",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AudioStorage().Save(ctx, audio); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("audio_id", audio.ID).
		Str("voice_id", req.VoiceID).
		Int("text_length", len(req.Text)).
		Msg("Text-to-speech rendered")

	return audio, nil
}

// CloneVoiceRequest carries an instant voice clone request. The samples
// are audio library records owned by the caller.
type CloneVoiceRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	AudioIDs    []string          `json:"audio_ids" validate:"required,min=1"`
}

// CloneVoice streams the referenced library audio to the provider and
// creates an instant voice clone. The provider keeps the voice; it shows
// up in ListVoices with the cloned category.
func (s *Service) CloneVoice(ctx context.Context, userID string, req *CloneVoiceRequest) (*models.Voice, error) {
	samples := make([]interfaces.VoiceSample, 0, len(req.AudioIDs))
	defer func() {
		for _, sample := range samples {
			if closer, ok := sample.Reader.(io.Closer); ok {
				closer.Close()
			}
		}
	}()

	for _, audioID := range req.AudioIDs {
		audio, err := s.store.AudioStorage().Get(ctx, audioID)
		if err != nil {
			return nil, err
		}
		body, err := s.objects.Open(ctx, audio.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open voice sample %s: %w", audioID, err)
		}
		samples = append(samples, interfaces.VoiceSample{Name: audio.Name, Reader: body})
	}

	voiceID, err := s.dubbing.CloneVoice(ctx, &interfaces.VoiceCloneRequest{
		Name:        req.Name,
		Description: req.Description,
		Labels:      req.Labels,
		Samples:     samples,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("voice_id", voiceID).
		Str("user_id", userID).
		Int("samples", len(samples)).
		Msg("Instant voice clone created")

	return &models.Voice{
		VoiceID:     voiceID,
		Name:        req.Name,
		Category:    "cloned",
		Description: req.Description,
		Labels:      req.Labels,
	}, nil
}

// VoiceGenerationParams returns the provider's voice design options.
func (s *Service) VoiceGenerationParams(ctx context.Context) (*models.VoiceGenerationParameters, error) {
	return s.dubbing.VoiceGenerationParameters(ctx)
}

// GenerateRandomVoiceRequest carries voice design parameters.
type GenerateRandomVoiceRequest struct {
	Gender         string  `json:"gender" validate:"required"`
	Age            string  `json:"age" validate:"required"`
	Accent         string  `json:"accent" validate:"required"`
	AccentStrength float64 `json:"accent_strength" validate:"min=0,max=2"`
	Text           string  `json:"text" validate:"required"`
}

// GeneratedVoicePreview points at a stored random-voice preview. The
// generated id must be passed back to SaveGeneratedVoice to keep the
// voice; unsaved previews expire on the provider side.
type GeneratedVoicePreview struct {
	GeneratedVoiceID string `json:"generated_voice_id"`
	PreviewURL       string `json:"preview_url"`
}

// GenerateRandomVoice renders a voice preview from design parameters and
// stores the sample audio.
func (s *Service) GenerateRandomVoice(ctx context.Context, userID string, req *GenerateRandomVoiceRequest) (*GeneratedVoicePreview, error) {
	generatedID, stream, err := s.dubbing.GenerateVoice(ctx, &interfaces.GenerateVoiceRequest{
		Gender:         req.Gender,
		Age:            req.Age,
		Accent:         req.Accent,
		AccentStrength: req.AccentStrength,
		Text:           req.Text,
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	key, err := s.objects.Put(ctx, stream, fmt.Sprintf("%s_preview.mp3", generatedID))
	if err != nil {
		return nil, fmt.Errorf("failed to store voice preview: %w", err)
	}

	s.logger.Info().
		Str("generated_voice_id", generatedID).
		Str("user_id", userID).
		Msg("Random voice preview generated")

	return &GeneratedVoicePreview{
		GeneratedVoiceID: generatedID,
		PreviewURL:       s.objects.GetURL(key),
	}, nil
}

// SaveGeneratedVoiceRequest promotes a previewed random voice.
type SaveGeneratedVoiceRequest struct {
	VoiceName        string            `json:"voice_name" validate:"required"`
	VoiceDescription string            `json:"voice_description,omitempty"`
	GeneratedVoiceID string            `json:"generated_voice_id" validate:"required"`
	Labels           map[string]string `json:"labels,omitempty"`
}

// SaveGeneratedVoice persists a previewed random voice in the provider's
// voice library.
func (s *Service) SaveGeneratedVoice(ctx context.Context, userID string, req *SaveGeneratedVoiceRequest) (*models.Voice, error) {
	voiceID, err := s.dubbing.SaveGeneratedVoice(ctx, &interfaces.SaveGeneratedVoiceRequest{
		VoiceName:        req.VoiceName,
		VoiceDescription: req.VoiceDescription,
		GeneratedVoiceID: req.GeneratedVoiceID,
		Labels:           req.Labels,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("voice_id", voiceID).
		Str("user_id", userID).
		Msg("Generated voice saved")

	return &models.Voice{
		VoiceID:     voiceID,
		Name:        req.VoiceName,
		Category:    "generated",
		Description: req.VoiceDescription,
		Labels:      req.Labels,
	}, nil
}

// InquiryRequest carries a professional voice-clone inquiry.
type InquiryRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	VoiceName string `json:"voice_name,omitempty"`
	Message   string `json:"message,omitempty"`
}

// SubmitInquiry persists the inquiry and notifies the operators by mail.
// Mail failure does not fail the submission.
func (s *Service) SubmitInquiry(ctx context.Context, userID string, req *InquiryRequest) (*models.Inquiry, error) {
	inquiry := &models.Inquiry{
		ID:        common.NewInquiryID(),
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		VoiceName: req.VoiceName,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InquiryStorage().Save(ctx, inquiry); err != nil {
		return nil, err
	}

	if s.mailer != nil && s.mailTo != "" {
		subject := fmt.Sprintf("Voice clone inquiry from %s", req.Name)
		body := fmt.Sprintf("Name: %s\nEmail: %s\nVoice: %s\n\n%s", req.Name, req.Email, req.VoiceName, req.Message)
		if err := s.mailer.Send(ctx, s.mailTo, subject, body); err != nil {
			s.logger.Warn().Err(err).Str("inquiry_id", inquiry.ID).Msg("Inquiry notification mail failed")
		}
	}

	s.logger.Info().
		Str("inquiry_id", inquiry.ID).
		Str("user_id", userID).
		Msg("Voice clone inquiry submitted")

	return inquiry, nil
}
