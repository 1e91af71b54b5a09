package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL          = "https://api.groq.com/openai/v1"

	DefaultOpenAIModel        = "gpt-4o-mini"
	DefaultTranscriptionModel = "whisper-1"
	GroqModel                 = "llama-3.3-70b-versatile"
	GroqTranscriptionModel    = "whisper-large-v3"

	DefaultHistoryLimit  = 10
	DefaultTokenBudget   = 3000
	DefaultMinAudioBytes = 4096
	DefaultTimeoutMS     = 60000

	envPrefix = "TASKVOICE"
)

type OpenAIConfig struct {
	BaseURL            string `json:"base_url" yaml:"base_url"`
	APIKey             string `json:"api_key" yaml:"api_key"`
	Model              string `json:"model" yaml:"model"`
	TranscriptionModel string `json:"transcription_model" yaml:"transcription_model"`
	SpeechModel        string `json:"speech_model" yaml:"speech_model"`
	Voice              string `json:"voice" yaml:"voice"`
	TimeoutMS          int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type GeminiConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	Model     string `json:"model" yaml:"model"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// ProviderConfig 选择模型后端；backend 为 openai（两段式）或 gemini（单次多模态）
// ProviderConfig selects the model backend: openai (transcribe then chat) or gemini (single multimodal call)
type ProviderConfig struct {
	Backend string       `json:"backend" yaml:"backend"`
	OpenAI  OpenAIConfig `json:"openai" yaml:"openai"`
	Gemini  GeminiConfig `json:"gemini" yaml:"gemini"`

	// MinAudioBytes is copied from conversation.min_audio_bytes during normalize.
	MinAudioBytes int    `json:"-" yaml:"-"`
	Language      string `json:"-" yaml:"-"`
}

type ConversationConfig struct {
	AssistantName string `json:"assistant_name" yaml:"assistant_name"`
	HistoryLimit  int    `json:"history_limit" yaml:"history_limit"`
	TokenBudget   int    `json:"token_budget" yaml:"token_budget"`
	MinAudioBytes int    `json:"min_audio_bytes" yaml:"min_audio_bytes"`
	SpeakReplies  bool   `json:"speak_replies" yaml:"speak_replies"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type Config struct {
	Provider     ProviderConfig     `json:"provider" yaml:"provider"`
	Conversation ConversationConfig `json:"conversation" yaml:"conversation"`
	Storage      StorageConfig      `json:"storage" yaml:"storage"`
	Locale       string             `json:"locale" yaml:"locale"`
	Log          LogConfig          `json:"log" yaml:"log"`
	Metrics      MetricsConfig      `json:"metrics" yaml:"metrics"`
}

type fileConversationConfig struct {
	AssistantName *string `json:"assistant_name" yaml:"assistant_name"`
	HistoryLimit  *int    `json:"history_limit" yaml:"history_limit"`
	TokenBudget   *int    `json:"token_budget" yaml:"token_budget"`
	MinAudioBytes *int    `json:"min_audio_bytes" yaml:"min_audio_bytes"`
	SpeakReplies  *bool   `json:"speak_replies" yaml:"speak_replies"`
}

type fileConfig struct {
	Provider     *ProviderConfig         `json:"provider" yaml:"provider"`
	Conversation *fileConversationConfig `json:"conversation" yaml:"conversation"`
	Storage      *StorageConfig          `json:"storage" yaml:"storage"`
	Locale       *string                 `json:"locale" yaml:"locale"`
	Log          *LogConfig              `json:"log" yaml:"log"`
	Metrics      *MetricsConfig          `json:"metrics" yaml:"metrics"`
}

// envConfig 环境变量覆盖，统一前缀 TASKVOICE_
// envConfig holds environment overrides, all under the TASKVOICE_ prefix
type envConfig struct {
	ConfigPath         string `envconfig:"CONFIG_PATH"`
	Backend            string `envconfig:"BACKEND"`
	BaseURL            string `envconfig:"BASE_URL"`
	APIKey             string `envconfig:"API_KEY"`
	Model              string `envconfig:"MODEL"`
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL"`
	GeminiAPIKey       string `envconfig:"GEMINI_API_KEY"`
	GeminiModel        string `envconfig:"GEMINI_MODEL"`
	HistoryLimit       int    `envconfig:"HISTORY_LIMIT"`
	TokenBudget        int    `envconfig:"TOKEN_BUDGET"`
	SpeakReplies       *bool  `envconfig:"SPEAK_REPLIES"`
	DataDir            string `envconfig:"DATA_DIR"`
	Locale             string `envconfig:"LOCALE"`
	LogLevel           string `envconfig:"LOG_LEVEL"`
	LogFormat          string `envconfig:"LOG_FORMAT"`
	MetricsAddr        string `envconfig:"METRICS_ADDR"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Backend: BackendOpenAI,
			OpenAI: OpenAIConfig{
				BaseURL:            DefaultOpenAIBaseURL,
				Model:              DefaultOpenAIModel,
				TranscriptionModel: DefaultTranscriptionModel,
				SpeechModel:        "tts-1",
				Voice:              "alloy",
				TimeoutMS:          DefaultTimeoutMS,
			},
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				TimeoutMS: DefaultTimeoutMS,
			},
		},
		Conversation: ConversationConfig{
			AssistantName: "Tempo",
			HistoryLimit:  DefaultHistoryLimit,
			TokenBudget:   DefaultTokenBudget,
			MinAudioBytes: DefaultMinAudioBytes,
			SpeakReplies:  true,
		},
		Storage: StorageConfig{BaseDir: "~/.taskvoice"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Load 按 默认值 → 全局配置 → 项目配置 → 环境变量 的顺序合并
// Load merges defaults, then the global file, then the project file, then the environment
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	var env envConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(env.ConfigPath); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg, env)
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".taskvoice")
	return []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}
}

func findProjectConfigPath() string {
	candidates := []string{
		"taskvoice.config.json",
		"taskvoice.config.yaml",
		"taskvoice.config.yml",
		".taskvoice/config.json",
		".taskvoice/config.yaml",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fileCfg fileConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	default:
		if err := json.Unmarshal(stripJSONComments(data), &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Conversation != nil {
		c := fc.Conversation
		if c.AssistantName != nil {
			cfg.Conversation.AssistantName = *c.AssistantName
		}
		if c.HistoryLimit != nil {
			cfg.Conversation.HistoryLimit = *c.HistoryLimit
		}
		if c.TokenBudget != nil {
			cfg.Conversation.TokenBudget = *c.TokenBudget
		}
		if c.MinAudioBytes != nil {
			cfg.Conversation.MinAudioBytes = *c.MinAudioBytes
		}
		if c.SpeakReplies != nil {
			cfg.Conversation.SpeakReplies = *c.SpeakReplies
		}
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if fc.Locale != nil {
		cfg.Locale = *fc.Locale
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.Format) != "" {
			cfg.Log.Format = fc.Log.Format
		}
	}
	if fc.Metrics != nil {
		cfg.Metrics.Addr = fc.Metrics.Addr
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.Backend) != "" {
		base.Backend = override.Backend
	}
	base.OpenAI = mergeOpenAI(base.OpenAI, override.OpenAI)
	base.Gemini = mergeGemini(base.Gemini, override.Gemini)
	return base
}

func mergeOpenAI(base OpenAIConfig, override OpenAIConfig) OpenAIConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.TranscriptionModel) != "" {
		base.TranscriptionModel = override.TranscriptionModel
	}
	if strings.TrimSpace(override.SpeechModel) != "" {
		base.SpeechModel = override.SpeechModel
	}
	if strings.TrimSpace(override.Voice) != "" {
		base.Voice = override.Voice
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	return base
}

func mergeGemini(base GeminiConfig, override GeminiConfig) GeminiConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	return base
}

func applyEnv(cfg *Config, env envConfig) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&cfg.Provider.Backend, env.Backend)
	set(&cfg.Provider.OpenAI.BaseURL, env.BaseURL)
	set(&cfg.Provider.OpenAI.APIKey, env.APIKey)
	set(&cfg.Provider.OpenAI.Model, env.Model)
	set(&cfg.Provider.OpenAI.TranscriptionModel, env.TranscriptionModel)
	set(&cfg.Provider.Gemini.APIKey, env.GeminiAPIKey)
	set(&cfg.Provider.Gemini.Model, env.GeminiModel)
	set(&cfg.Storage.BaseDir, env.DataDir)
	set(&cfg.Locale, env.Locale)
	set(&cfg.Log.Level, env.LogLevel)
	set(&cfg.Log.Format, env.LogFormat)
	set(&cfg.Metrics.Addr, env.MetricsAddr)
	if env.HistoryLimit > 0 {
		cfg.Conversation.HistoryLimit = env.HistoryLimit
	}
	if env.TokenBudget > 0 {
		cfg.Conversation.TokenBudget = env.TokenBudget
	}
	if env.SpeakReplies != nil {
		cfg.Conversation.SpeakReplies = *env.SpeakReplies
	}

	// 服务商原生变量仅在未显式配置密钥时生效
	// Provider-native variables only apply when no key was configured
	if strings.TrimSpace(cfg.Provider.OpenAI.APIKey) == "" {
		if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
			cfg.Provider.OpenAI.APIKey = v
		} else if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
			cfg.Provider.OpenAI.APIKey = v
			// 只替换仍为默认值的字段，显式配置的模型保持不变
			// only fields still at their defaults move to Groq; explicitly configured models stay
			oa := &cfg.Provider.OpenAI
			if oa.BaseURL == DefaultOpenAIBaseURL {
				oa.BaseURL = GroqBaseURL
				if oa.Model == DefaultOpenAIModel {
					oa.Model = GroqModel
				}
				if oa.TranscriptionModel == DefaultTranscriptionModel {
					oa.TranscriptionModel = GroqTranscriptionModel
				}
			}
		}
	}
	if strings.TrimSpace(cfg.Provider.Gemini.APIKey) == "" {
		if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
			cfg.Provider.Gemini.APIKey = v
		} else if v := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); v != "" {
			cfg.Provider.Gemini.APIKey = v
		}
	}
}

func normalize(cfg *Config) error {
	def := Default()

	cfg.Provider.Backend = strings.ToLower(strings.TrimSpace(cfg.Provider.Backend))
	switch cfg.Provider.Backend {
	case "":
		cfg.Provider.Backend = def.Provider.Backend
	case BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("unknown provider.backend %q (want %s or %s)", cfg.Provider.Backend, BackendOpenAI, BackendGemini)
	}
	cfg.Provider.OpenAI = mergeOpenAI(def.Provider.OpenAI, cfg.Provider.OpenAI)
	cfg.Provider.Gemini = mergeGemini(def.Provider.Gemini, cfg.Provider.Gemini)
	cfg.Provider.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Provider.OpenAI.BaseURL), "/")

	if strings.TrimSpace(cfg.Conversation.AssistantName) == "" {
		cfg.Conversation.AssistantName = def.Conversation.AssistantName
	}
	if cfg.Conversation.HistoryLimit <= 0 {
		cfg.Conversation.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Conversation.TokenBudget <= 0 {
		cfg.Conversation.TokenBudget = DefaultTokenBudget
	}
	if cfg.Conversation.MinAudioBytes <= 0 {
		cfg.Conversation.MinAudioBytes = DefaultMinAudioBytes
	}
	cfg.Provider.MinAudioBytes = cfg.Conversation.MinAudioBytes

	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = def.Storage.BaseDir
	}
	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = storageDir

	cfg.Locale = strings.TrimSpace(cfg.Locale)
	cfg.Provider.Language = cfg.Locale

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", cfg.Log.Level, err)
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format != "console" {
		cfg.Log.Format = "json"
	}
	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	return nil
}

// DBPath returns the SQLite file inside the storage dir.
func (c Config) DBPath() string {
	return filepath.Join(c.Storage.BaseDir, "taskvoice.db")
}

// CacheDir holds synthesized speech and other scratch files.
func (c Config) CacheDir() string {
	return filepath.Join(c.Storage.BaseDir, "cache")
}

// LogPath is where JSON logs go when the console format is off.
func (c Config) LogPath() string {
	return filepath.Join(c.Storage.BaseDir, "logs", "taskvoice.log")
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
