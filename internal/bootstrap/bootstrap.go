package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"taskvoice/internal/approval"
	"taskvoice/internal/config"
	"taskvoice/internal/contextmgr"
	"taskvoice/internal/executor"
	"taskvoice/internal/i18n"
	"taskvoice/internal/metrics"
	"taskvoice/internal/orchestrator"
	"taskvoice/internal/provider"
	"taskvoice/internal/storage"
	"taskvoice/internal/voice"
)

// BuildResult 包含 Build 产出的所有组件
// BuildResult holds every component produced by Build
type BuildResult struct {
	Orch     *orchestrator.Orchestrator
	Store    storage.Store
	Metrics  *metrics.Metrics
	I18n     *i18n.I18n
	Recorder *voice.FileRecorder
	// Speaker is nil when no speech key is configured.
	Speaker       *voice.FileSpeaker
	BackendName   string
	Model         string
	Locale        string
	AssistantName string
}

// ErrNoBaseDir means storage.base_dir was blank, which would put the database in the working directory.
var ErrNoBaseDir = errors.New("storage base dir is empty")

// BuildOptions overrides pieces Build would otherwise construct itself.
type BuildOptions struct {
	// Backend replaces the configured model backend.
	Backend provider.Backend
	// Tokenizer replaces the model-specific tiktoken encoder.
	Tokenizer *contextmgr.Tokenizer
	Metrics   *metrics.Metrics
}

// Build 按顺序初始化存储、语言、后端、确认闸门、执行器与编排器；调用方负责 defer result.Store.Close()
// Build wires store, locale, backend, gate, executor and orchestrator; caller must defer result.Store.Close()
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, opts BuildOptions) (*BuildResult, error) {
	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		return nil, fmt.Errorf("open store: %w", ErrNoBaseDir)
	}
	store, err := storage.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	res, err := build(ctx, cfg, log, opts, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return res, nil
}

func build(ctx context.Context, cfg config.Config, log zerolog.Logger, opts BuildOptions, store storage.Store) (*BuildResult, error) {
	profile, err := store.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	locale := cfg.Locale
	if strings.TrimSpace(profile.Locale) != "" {
		locale = profile.Locale
	}
	cfg.Provider.Language = locale

	backend := opts.Backend
	if backend == nil {
		backend, err = provider.New(cfg.Provider, log)
		if err != nil {
			return nil, fmt.Errorf("create backend: %w", err)
		}
	}
	model := chatModel(cfg.Provider)

	tok := opts.Tokenizer
	if tok == nil {
		tok = contextmgr.NewTokenizerForModel(model)
	}
	window := contextmgr.NewWindow(cfg.Conversation.HistoryLimit, cfg.Conversation.TokenBudget, tok)

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	history, err := store.LoadMessages(ctx, cfg.Conversation.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("restore history: %w", err)
	}

	recorder := voice.NewFileRecorder()
	var speaker *voice.FileSpeaker
	if synth := provider.NewSpeech(cfg.Provider, log); synth != nil {
		speaker = voice.NewFileSpeaker(synth, cfg.CacheDir(), log)
	}

	tr := i18n.New(locale)
	orchOpts := orchestrator.Options{
		Sources: contextmgr.Sources{
			Tasks:    store,
			Missions: store,
			Profiles: store,
		},
		Assembler:    contextmgr.New(cfg.Conversation.AssistantName),
		Window:       window,
		Gate:         approval.NewGate(log),
		MessageLog:   store,
		Recorder:     recorder,
		SpeakReplies: cfg.Conversation.SpeakReplies,
		I18n:         tr,
		Metrics:      m,
		Logger:       log,
		Locale:       locale,
		History:      history,
	}
	// 避免把 nil 指针装进接口 / keep a nil *FileSpeaker out of the interface
	if speaker != nil {
		orchOpts.Speaker = speaker
	}
	orch := orchestrator.New(backend, executor.New(store, store, log), orchOpts)

	log.Info().
		Str("backend", backend.Name()).
		Str("model", model).
		Str("locale", locale).
		Str("db", cfg.DBPath()).
		Int("restored", len(history)).
		Bool("speech", speaker != nil).
		Str("tokenizer", tok.EncodingName()).
		Msg("session ready")

	return &BuildResult{
		Orch:          orch,
		Store:         store,
		Metrics:       m,
		I18n:          tr,
		Recorder:      recorder,
		Speaker:       speaker,
		BackendName:   backend.Name(),
		Model:         model,
		Locale:        locale,
		AssistantName: cfg.Conversation.AssistantName,
	}, nil
}

func chatModel(cfg config.ProviderConfig) string {
	if strings.EqualFold(cfg.Backend, config.BackendGemini) {
		return cfg.Gemini.Model
	}
	return cfg.OpenAI.Model
}
