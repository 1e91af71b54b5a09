package provider

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Synthesize renders text to mp3 using the configured speech model and voice.
func (b *OpenAIBackend) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("synthesize: text is empty")
	}
	raw, err := b.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(b.cfg.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(b.cfg.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, transportError(b.Name(), "speech", err)
	}
	defer raw.Close()
	audio, err := io.ReadAll(raw)
	if err != nil {
		return nil, transportError(b.Name(), "speech", err)
	}
	return audio, nil
}
