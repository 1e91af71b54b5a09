package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig 兼容 OpenAI 协议的后端配置（OpenAI、Groq 等）
// OpenAIConfig configures any OpenAI-compatible endpoint (OpenAI, Groq, ...)
type OpenAIConfig struct {
	BaseURL            string
	APIKey             string
	ChatModel          string
	TranscriptionModel string
	SpeechModel        string
	Voice              string
	// Language is an ISO-639-1 hint for transcription; empty lets the model detect it.
	Language      string
	Temperature   float32
	TimeoutMS     int
	MinAudioBytes int
}

// OpenAIBackend is the two-stage variant: audio is transcribed first, then
// the transcript is sent to chat completion. No automatic retries.
type OpenAIBackend struct {
	client *openai.Client
	cfg    OpenAIConfig
	log    zerolog.Logger
}

func NewOpenAIBackend(cfg OpenAIConfig, log zerolog.Logger) *OpenAIBackend {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	if cfg.Voice == "" {
		cfg.Voice = string(openai.VoiceAlloy)
	}
	if cfg.MinAudioBytes <= 0 {
		cfg.MinAudioBytes = DefaultMinAudioBytes
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		config.BaseURL = base
	}
	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	config.HTTPClient = httpClient

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		log:    log.With().Str("component", "provider").Str("backend", "openai").Logger(),
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) configured() error {
	if strings.TrimSpace(b.cfg.APIKey) == "" {
		return fmt.Errorf("%w: openai api key is empty", ErrUnconfigured)
	}
	return nil
}

func (b *OpenAIBackend) Send(ctx context.Context, req Request) (Response, error) {
	if err := b.configured(); err != nil {
		return Response{}, err
	}

	var resp Response
	userText := strings.TrimSpace(req.Text)
	if req.HasAudio() {
		transcript, err := b.Transcribe(ctx, req.Audio, req.MIMEType)
		if err != nil {
			return Response{}, err
		}
		resp.Transcript = transcript
		userText = transcript
	}

	text, err := b.complete(ctx, req.Prompt, userText)
	if err != nil {
		return Response{}, err
	}
	resp.Text = text
	return resp, nil
}

// Transcribe 调用语音转写接口并过滤幻觉文本
// Transcribe calls the transcription endpoint and drops hallucinated output
func (b *OpenAIBackend) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := b.configured(); err != nil {
		return "", err
	}
	if err := CheckAudio(audio, b.cfg.MinAudioBytes); err != nil {
		return "", err
	}
	_, ext := AudioFormat(mimeType)

	started := time.Now()
	out, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.cfg.TranscriptionModel,
		FilePath: "speech." + ext,
		Reader:   bytes.NewReader(audio),
		Language: b.cfg.Language,
	})
	if err != nil {
		return "", transportError(b.Name(), "transcription", err)
	}
	text := strings.TrimSpace(out.Text)
	b.log.Debug().
		Dur("latency", time.Since(started)).
		Int("audio_bytes", len(audio)).
		Str("format", ext).
		Int("transcript_len", len(text)).
		Msg("transcribed audio")
	if IsHallucination(text) {
		b.log.Info().Str("transcript", text).Msg("discarded hallucinated transcript")
		return "", fmt.Errorf("%w: transcript %q discarded", ErrNoSpeech, text)
	}
	return text, nil
}

func (b *OpenAIBackend) complete(ctx context.Context, prompt, userText string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
	}
	if userText != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText})
	}

	started := time.Now()
	out, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.cfg.ChatModel,
		Messages:    messages,
		Temperature: b.cfg.Temperature,
	})
	if err != nil {
		return "", transportError(b.Name(), "chat", err)
	}
	if len(out.Choices) == 0 {
		return "", transportError(b.Name(), "chat", fmt.Errorf("response has no choices"))
	}
	b.log.Debug().
		Dur("latency", time.Since(started)).
		Str("model", b.cfg.ChatModel).
		Int("prompt_tokens", out.Usage.PromptTokens).
		Int("completion_tokens", out.Usage.CompletionTokens).
		Msg("chat completion")
	return out.Choices[0].Message.Content, nil
}
