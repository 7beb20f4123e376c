// Package summary turns structured diagnosis payloads into plain-language
// explanations using Anthropic Claude.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const systemPrompt = `You are an audio engineer explaining a media quality report to a content creator.
Given a JSON diagnosis of an audio or video file, write a short plain-language summary:
overall quality verdict, the main problems found (noise, clipping, loudness, silence),
and one or two concrete suggestions. No markdown, no JSON, at most 150 words.`

// ClaudeService implements interfaces.SummaryClient against the Anthropic API.
type ClaudeService struct {
	config  *common.AnthropicConfig
	client  *anthropic.Client
	timeout time.Duration
	logger  arbor.ILogger
}

// NewClaudeService creates a summary service from config. The API key must
// already be resolved (config loading handles the ANTHROPIC_API_KEY fallback).
func NewClaudeService(cfg *common.AnthropicConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set CE_ANTHROPIC_API_KEY or anthropic.api_key in config)")
	}

	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration '%s': %w", cfg.Timeout, err)
		}
		timeout = parsed
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	logger.Debug().
		Str("model", cfg.Model).
		Dur("timeout", timeout).
		Int("max_tokens", cfg.MaxTokens).
		Msg("Claude summary service initialized")

	return &ClaudeService{
		config:  cfg,
		client:  &client,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// SummarizeDiagnosis renders the diagnosis payload as JSON and asks the model
// for a creator-facing explanation.
func (s *ClaudeService) SummarizeDiagnosis(ctx context.Context, diagnosis *models.Diagnosis) (string, error) {
	if diagnosis == nil {
		return "", fmt.Errorf("diagnosis payload is required")
	}

	payload, err := json.Marshal(diagnosis)
	if err != nil {
		return "", fmt.Errorf("failed to encode diagnosis: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(s.config.Temperature)
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Claude diagnosis summary failed")
		return "", &models.UpstreamError{Provider: "anthropic", Operation: "summarize_diagnosis", Message: err.Error()}
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", &models.UpstreamError{Provider: "anthropic", Operation: "summarize_diagnosis", Message: "empty completion"}
	}

	s.logger.Debug().
		Int("response_length", out.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Diagnosis summary generated")

	return strings.TrimSpace(out.String()), nil
}

var _ interfaces.SummaryClient = (*ClaudeService)(nil)
