package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint; empty uses the default.
	BaseURL       string
	Temperature   float32
	TimeoutMS     int
	MinAudioBytes int
}

// GeminiBackend 单次多模态调用：提示词与音频字节放在同一请求中
// GeminiBackend is the single-call multimodal variant: prompt text and audio bytes go in one request
type GeminiBackend struct {
	cfg GeminiConfig
	log zerolog.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiBackend(cfg GeminiConfig, log zerolog.Logger) *GeminiBackend {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MinAudioBytes <= 0 {
		cfg.MinAudioBytes = DefaultMinAudioBytes
	}
	return &GeminiBackend{
		cfg: cfg,
		log: log.With().Str("component", "provider").Str("backend", "gemini").Logger(),
	}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) clientFor(ctx context.Context) (*genai.Client, error) {
	b.once.Do(func() {
		httpClient := &http.Client{}
		if b.cfg.TimeoutMS > 0 {
			httpClient.Timeout = time.Duration(b.cfg.TimeoutMS) * time.Millisecond
		}
		b.client, b.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      b.cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(b.cfg.BaseURL)},
		})
	})
	if b.initErr != nil {
		return nil, fmt.Errorf("create gemini client: %w", b.initErr)
	}
	return b.client, nil
}

func (b *GeminiBackend) Send(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(b.cfg.APIKey) == "" {
		return Response{}, fmt.Errorf("%w: gemini api key is empty", ErrUnconfigured)
	}
	if req.HasAudio() {
		if err := CheckAudio(req.Audio, b.cfg.MinAudioBytes); err != nil {
			return Response{}, err
		}
	}
	client, err := b.clientFor(ctx)
	if err != nil {
		return Response{}, err
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.HasAudio() {
		mime, _ := AudioFormat(req.MIMEType)
		parts = append(parts, genai.NewPartFromBytes(req.Audio, mime))
	}
	temp := b.cfg.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	started := time.Now()
	res, err := client.Models.GenerateContent(ctx, b.cfg.Model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, cfg)
	if err != nil {
		return Response{}, transportError(b.Name(), "generate", err)
	}
	text := res.Text()
	b.log.Debug().
		Dur("latency", time.Since(started)).
		Str("model", b.cfg.Model).
		Bool("audio", req.HasAudio()).
		Int("reply_len", len(text)).
		Msg("generate content")
	if strings.TrimSpace(text) == "" {
		return Response{}, transportError(b.Name(), "generate", fmt.Errorf("empty response"))
	}
	return Response{Text: text}, nil
}
