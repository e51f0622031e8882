// Package ai generates post summaries, comment suggestions and narration with Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	MissingKeySummary = "API Key is missing. Please provide a valid Gemini API Key to generate a summary."
	EmptySummary      = "无法生成摘要。"
	FailedSummary     = "摘要暂时无法生成，请稍后再试。"
	MissingKeySuggest = "写得很棒！感谢分享。"
	EmptySuggest      = "写得不错！"
	FailedSuggest     = "Interesting perspective!"

	summaryPrompt = "请用中文（简体）为这篇文章生成一段 2-3 句话的简要摘要。提取核心观点和洞察。\n\n 文章内容:: "
	suggestPrompt = "基于以下博客文章内容，生成一条读者可能会留下的友善且有深度的评论。请用中文（简体），30字以内。\n\n 文章: "

	defaultVoice = "Kore"
	maxInput     = 30000
)

// ErrUnavailable is returned by Speech when no API key is configured.
var ErrUnavailable = errors.New("ai: generation unavailable")

// Generator is the subset of the Gemini models API the service calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config selects the models used for text and speech.
type Config struct {
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string
}

// Service wraps a Generator. A Service without a generator answers with placeholders.
type Service struct {
	gen    Generator
	cfg    Config
	logger *zap.Logger
}

// New creates a Service backed by the Gemini API. An empty API key yields a Service
// that never calls out.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Service{cfg: cfg, logger: logger}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}
	return NewWithGenerator(client.Models, cfg, logger), nil
}

// NewWithGenerator builds a Service around an existing generator.
func NewWithGenerator(gen Generator, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	return &Service{gen: gen, cfg: cfg, logger: logger}
}

// Enabled reports whether the service can reach the model.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// Summary returns a short Chinese summary of content. A failed call yields
// FailedSummary; the error itself only goes to the log.
func (s *Service) Summary(ctx context.Context, content string) string {
	if !s.Enabled() {
		return MissingKeySummary
	}
	text, err := s.generateText(ctx, summaryPrompt+clip(content))
	if err != nil {
		s.logger.Warn("ai summary failed", zap.Error(err))
		return FailedSummary
	}
	if text == "" {
		return EmptySummary
	}
	return text
}

// SuggestComment drafts a short reader comment for content.
func (s *Service) SuggestComment(ctx context.Context, content string) string {
	if !s.Enabled() {
		return MissingKeySuggest
	}
	text, err := s.generateText(ctx, suggestPrompt+clip(content))
	if err != nil {
		s.logger.Warn("ai suggestion failed", zap.Error(err))
		return FailedSuggest
	}
	if text == "" {
		return EmptySuggest
	}
	return text
}

// Speech narrates text and returns a WAV file.
func (s *Service) Speech(ctx context.Context, text string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("ai: nothing to narrate")
	}
	resp, err := s.gen.GenerateContent(ctx, s.cfg.SpeechModel, genai.Text(clip(text)), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.cfg.Voice},
			},
		},
	})
	if err != nil {
		s.logger.Warn("ai speech failed", zap.Error(err))
		return nil, fmt.Errorf("ai: speech: %w", err)
	}
	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		return nil, errors.New("ai: speech response carried no audio")
	}
	return WAV(pcm, speechSampleRate, speechChannels), nil
}

func (s *Service) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := s.gen.GenerateContent(ctx, s.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Text()), nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return nil
	}
	part := c.Content.Parts[0]
	if part == nil || part.InlineData == nil {
		return nil
	}
	return part.InlineData.Data
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxInput {
		return s
	}
	return string(r[:maxInput])
}
