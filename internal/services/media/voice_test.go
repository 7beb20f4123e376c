package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
	storagebadger "github.com/jaiswar203/CreatorEvolve-Server/internal/storage/badger"
)

type fakeObjects struct {
	mu   sync.Mutex
	puts map[string]string // key -> stored content
}

func (o *fakeObjects) Put(ctx context.Context, r io.Reader, keyHint string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.puts == nil {
		o.puts = make(map[string]string)
	}
	o.puts[keyHint] = string(data)
	return keyHint, nil
}

func (o *fakeObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.puts[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (o *fakeObjects) GetURL(key string) string { return "http://files.test/" + key }

func (o *fakeObjects) Delete(ctx context.Context, key string) error { return nil }

// fakeVoiceClient records the voice calls the service makes.
type fakeVoiceClient struct {
	voices      []models.Voice
	params      *models.VoiceGenerationParameters
	cloneReq    *interfaces.VoiceCloneRequest
	cloneBodies []string
	cloneErr    error
	generateReq *interfaces.GenerateVoiceRequest
	generateErr error
	saveReq     *interfaces.SaveGeneratedVoiceRequest
}

func (c *fakeVoiceClient) SubmitDub(ctx context.Context, req *interfaces.DubRequest) (string, error) {
	return "", nil
}

func (c *fakeVoiceClient) GetDubStatus(ctx context.Context, externalJobID string) (*interfaces.ProviderJobState, error) {
	return nil, nil
}

func (c *fakeVoiceClient) DownloadDub(ctx context.Context, externalJobID, languageCode string) (io.ReadCloser, error) {
	return nil, nil
}

func (c *fakeVoiceClient) RemoveDub(ctx context.Context, externalJobID string) error { return nil }

func (c *fakeVoiceClient) ListVoices(ctx context.Context) ([]models.Voice, error) {
	return c.voices, nil
}

func (c *fakeVoiceClient) TextToSpeech(ctx context.Context, req *interfaces.TTSRequest) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("rendered-speech")), nil
}

func (c *fakeVoiceClient) CloneVoice(ctx context.Context, req *interfaces.VoiceCloneRequest) (string, error) {
	if c.cloneErr != nil {
		return "", c.cloneErr
	}
	c.cloneReq = req
	for _, sample := range req.Samples {
		data, err := io.ReadAll(sample.Reader)
		if err != nil {
			return "", err
		}
		c.cloneBodies = append(c.cloneBodies, string(data))
	}
	return "voice_clone_1", nil
}

func (c *fakeVoiceClient) VoiceGenerationParameters(ctx context.Context) (*models.VoiceGenerationParameters, error) {
	return c.params, nil
}

func (c *fakeVoiceClient) GenerateVoice(ctx context.Context, req *interfaces.GenerateVoiceRequest) (string, io.ReadCloser, error) {
	if c.generateErr != nil {
		return "", nil, c.generateErr
	}
	c.generateReq = req
	return "gen_voice_1", io.NopCloser(strings.NewReader("preview-bytes")), nil
}

func (c *fakeVoiceClient) SaveGeneratedVoice(ctx context.Context, req *interfaces.SaveGeneratedVoiceRequest) (string, error) {
	c.saveReq = req
	return "voice_saved_1", nil
}

type mediaDeps struct {
	store   interfaces.StorageManager
	objects *fakeObjects
	dubbing *fakeVoiceClient
}

func setupMediaService(t *testing.T) (*Service, *mediaDeps) {
	t.Helper()

	logger := arbor.NewLogger()
	store, err := storagebadger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	deps := &mediaDeps{
		store:   store,
		objects: &fakeObjects{},
		dubbing: &fakeVoiceClient{},
	}
	svc := NewService(deps.store, deps.objects, deps.dubbing, nil, nil, nil, "", logger)
	return svc, deps
}

func seedSampleAudio(t *testing.T, deps *mediaDeps, id, name, content string) {
	t.Helper()
	ctx := context.Background()
	key, err := deps.objects.Put(ctx, strings.NewReader(content), "audios/"+name)
	require.NoError(t, err)
	require.NoError(t, deps.store.AudioStorage().Save(ctx, &models.Audio{
		ID:        id,
		UserID:    "user_1",
		Name:      name,
		ObjectKey: key,
		MimeType:  "audio/mpeg",
	}))
}

func TestCloneVoice(t *testing.T) {
	svc, deps := setupMediaService(t)
	ctx := context.Background()
	seedSampleAudio(t, deps, "aud_1", "take1.mp3", "sample-one")
	seedSampleAudio(t, deps, "aud_2", "take2.mp3", "sample-two")

	voice, err := svc.CloneVoice(ctx, "user_1", &CloneVoiceRequest{
		Name:        "Narrator",
		Description: "calm narration voice",
		Labels:      map[string]string{"accent": "british"},
		AudioIDs:    []string{"aud_1", "aud_2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "voice_clone_1", voice.VoiceID)
	assert.Equal(t, "Narrator", voice.Name)
	assert.Equal(t, "cloned", voice.Category)

	// Both library samples were streamed to the provider
	require.NotNil(t, deps.dubbing.cloneReq)
	require.Len(t, deps.dubbing.cloneReq.Samples, 2)
	assert.Equal(t, "take1.mp3", deps.dubbing.cloneReq.Samples[0].Name)
	assert.Equal(t, []string{"sample-one", "sample-two"}, deps.dubbing.cloneBodies)
	assert.Equal(t, map[string]string{"accent": "british"}, deps.dubbing.cloneReq.Labels)
}

func TestCloneVoice_MissingSample(t *testing.T) {
	svc, deps := setupMediaService(t)

	_, err := svc.CloneVoice(context.Background(), "user_1", &CloneVoiceRequest{
		Name:     "Narrator",
		AudioIDs: []string{"aud_missing"},
	})
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, deps.dubbing.cloneReq)
}

func TestVoiceGenerationParams(t *testing.T) {
	svc, deps := setupMediaService(t)
	deps.dubbing.params = &models.VoiceGenerationParameters{
		Genders:           []models.VoiceGenerationOption{{Name: "Female", Code: "female"}},
		MinimumCharacters: 100,
		MaximumCharacters: 1000,
	}

	params, err := svc.VoiceGenerationParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "female", params.Genders[0].Code)
	assert.Equal(t, 100, params.MinimumCharacters)
}

func TestGenerateRandomVoice(t *testing.T) {
	svc, deps := setupMediaService(t)

	preview, err := svc.GenerateRandomVoice(context.Background(), "user_1", &GenerateRandomVoiceRequest{
		Gender:         "female",
		Age:            "young",
		Accent:         "american",
		AccentStrength: 1.5,
		Text:           "The quick brown fox jumps over the lazy dog and keeps on running.",
	})
	require.NoError(t, err)
	assert.Equal(t, "gen_voice_1", preview.GeneratedVoiceID)
	assert.Equal(t, "http://files.test/gen_voice_1_preview.mp3", preview.PreviewURL)

	// The preview audio landed in object storage
	assert.Equal(t, "preview-bytes", deps.objects.puts["gen_voice_1_preview.mp3"])

	require.NotNil(t, deps.dubbing.generateReq)
	assert.Equal(t, 1.5, deps.dubbing.generateReq.AccentStrength)
}

func TestGenerateRandomVoice_ProviderError(t *testing.T) {
	svc, deps := setupMediaService(t)
	deps.dubbing.generateErr = &models.UpstreamError{Provider: "elevenlabs", Operation: "generate_voice", StatusCode: 422, Message: "text too short"}

	_, err := svc.GenerateRandomVoice(context.Background(), "user_1", &GenerateRandomVoiceRequest{
		Gender: "male", Age: "old", Accent: "british", Text: "hi",
	})
	var uErr *models.UpstreamError
	require.ErrorAs(t, err, &uErr)
	assert.False(t, uErr.Retryable())
	assert.Empty(t, deps.objects.puts)
}

func TestSaveGeneratedVoice(t *testing.T) {
	svc, deps := setupMediaService(t)

	voice, err := svc.SaveGeneratedVoice(context.Background(), "user_1", &SaveGeneratedVoiceRequest{
		VoiceName:        "Fox",
		VoiceDescription: "energetic promo voice",
		GeneratedVoiceID: "gen_voice_1",
		Labels:           map[string]string{"use": "promo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "voice_saved_1", voice.VoiceID)
	assert.Equal(t, "generated", voice.Category)

	require.NotNil(t, deps.dubbing.saveReq)
	assert.Equal(t, "gen_voice_1", deps.dubbing.saveReq.GeneratedVoiceID)
	assert.Equal(t, "Fox", deps.dubbing.saveReq.VoiceName)
}
