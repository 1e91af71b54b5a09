package provider

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"taskvoice/internal/config"
)

// New 按 provider.backend 选择后端实现
// New picks the backend implementation named by provider.backend
func New(cfg config.ProviderConfig, log zerolog.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.BackendOpenAI, "":
		return NewOpenAIBackend(openAIConfigFrom(cfg), log), nil
	case config.BackendGemini:
		return NewGeminiBackend(GeminiConfig{
			APIKey:        cfg.Gemini.APIKey,
			Model:         cfg.Gemini.Model,
			BaseURL:       cfg.Gemini.BaseURL,
			TimeoutMS:     cfg.Gemini.TimeoutMS,
			MinAudioBytes: cfg.MinAudioBytes,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// NewSpeech returns the OpenAI-compatible speech synthesizer, or nil when no key is set.
// Speech is independent of the chat backend so a Gemini setup can still speak replies.
func NewSpeech(cfg config.ProviderConfig, log zerolog.Logger) Synthesizer {
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return nil
	}
	return NewOpenAIBackend(openAIConfigFrom(cfg), log)
}

func openAIConfigFrom(cfg config.ProviderConfig) OpenAIConfig {
	return OpenAIConfig{
		BaseURL:            cfg.OpenAI.BaseURL,
		APIKey:             cfg.OpenAI.APIKey,
		ChatModel:          cfg.OpenAI.Model,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		SpeechModel:        cfg.OpenAI.SpeechModel,
		Voice:              cfg.OpenAI.Voice,
		Language:           transcriptionLanguage(cfg.Language),
		TimeoutMS:          cfg.OpenAI.TimeoutMS,
		MinAudioBytes:      cfg.MinAudioBytes,
	}
}

// transcriptionLanguage reduces a locale like "zh-CN" or "pt_BR" to its ISO-639-1 code.
func transcriptionLanguage(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_."); i >= 0 {
		locale = locale[:i]
	}
	if len(locale) != 2 {
		return ""
	}
	return locale
}
