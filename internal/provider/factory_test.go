package provider

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskvoice/internal/config"
)

func TestNew_SelectsBackend(t *testing.T) {
	cfg := config.Default().Provider

	b, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "openai", b.Name())

	cfg.Backend = config.BackendGemini
	b, err = New(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Name())

	cfg.Backend = "llama"
	_, err = New(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_OpenAIBackendIsTranscriber(t *testing.T) {
	b, err := New(config.Default().Provider, zerolog.Nop())
	require.NoError(t, err)
	_, ok := b.(Transcriber)
	assert.True(t, ok)
}

func TestNewSpeech_RequiresKey(t *testing.T) {
	cfg := config.Default().Provider
	assert.Nil(t, NewSpeech(cfg, zerolog.Nop()))

	cfg.OpenAI.APIKey = "sk-test"
	assert.NotNil(t, NewSpeech(cfg, zerolog.Nop()))
}

func TestTranscriptionLanguage(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"en":          "en",
		"zh-CN":       "zh",
		"pt_BR.UTF-8": "pt",
		"english":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, transcriptionLanguage(in), in)
	}
}
