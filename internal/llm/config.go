package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskWorksheet TaskType = "worksheet"
	TaskOCR       TaskType = "ocr"
	TaskStory     TaskType = "story"
	TaskAssistant TaskType = "assistant"
	TaskVisualAid TaskType = "visual_aid"
	TaskReading   TaskType = "reading"
)

// Provider selects the model backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider accepts a provider name case-insensitively.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOllama, ProviderGemini, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q (want ollama, gemini or openai)", s)
	}
}

var defaultModels = map[Provider]string{
	ProviderOllama: "llama3.2",
	ProviderGemini: "gemini-1.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool                    `yaml:"enabled"`
	LogCalls   bool                    `yaml:"log_calls"`
	Provider   Provider                `yaml:"provider"`
	Endpoint   string                  `yaml:"endpoint"`
	BaseURL    string                  `yaml:"base_url"`
	Model      string                  `yaml:"model"`
	APIKey     string                  `yaml:"-"`
	TimeoutMs  int                     `yaml:"timeout_ms"`
	MaxRetries int                     `yaml:"max_retries"`
	Tasks      map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns an LLMConfig pointed at a local Ollama.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		LogCalls:   false,
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		TimeoutMs:  20000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskWorksheet: {Temperature: 0.4, MaxTokens: 2048, TimeoutMs: 30000},
			TaskOCR:       {Temperature: 0, MaxTokens: 2048, TimeoutMs: 30000},
			TaskStory:     {Temperature: 0.8, MaxTokens: 1536, TimeoutMs: 30000},
			TaskAssistant: {Temperature: 0.5, MaxTokens: 1024, TimeoutMs: 20000},
			TaskVisualAid: {Temperature: 0.6, MaxTokens: 512, TimeoutMs: 15000},
			TaskReading:   {Temperature: 0.1, MaxTokens: 1024, TimeoutMs: 20000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overlays SAHAYAK_LLM_* variables onto cfg. Invalid values are
// ignored.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("SAHAYAK_LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("SAHAYAK_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SAHAYAK_LLM_PROVIDER"); v != "" {
		if p, err := ParseProvider(v); err == nil {
			cfg.Provider = p
		}
	}
	if v := os.Getenv("SAHAYAK_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("SAHAYAK_LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SAHAYAK_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SAHAYAK_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("SAHAYAK_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	if k := firstEnv("SAHAYAK_LLM_API_KEY", providerKeyEnv(cfg.Provider)); k != "" {
		cfg.APIKey = k
	}

	applyTaskTimeoutEnv(cfg, TaskWorksheet, "SAHAYAK_LLM_WORKSHEET_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskOCR, "SAHAYAK_LLM_OCR_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskStory, "SAHAYAK_LLM_STORY_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskAssistant, "SAHAYAK_LLM_ASSISTANT_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskVisualAid, "SAHAYAK_LLM_VISUAL_AID_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskReading, "SAHAYAK_LLM_READING_TIMEOUT_MS")
}

// ModelName returns the configured model or the provider's default.
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// TaskTimeout returns the effective per-attempt timeout for a given task
// type. Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func providerKeyEnv(p Provider) string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
