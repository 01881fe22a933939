// Package config loads runtime settings from defaults, an optional YAML file
// and SAHAYAK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sahayak-edu/sahayak/internal/llm"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// OCR modes.
const (
	OCRSimulated = "simulated"
	OCRVision    = "vision"
)

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LLM      llm.LLMConfig  `yaml:"llm"`
	LogLevel string         `yaml:"log_level"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Seed        bool   `yaml:"seed"`
}

type CacheConfig struct {
	Driver        string `yaml:"driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
	MaxEntries    int    `yaml:"max_entries"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
}

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	KeepRuns          int    `yaml:"keep_runs"`
}

type OCRConfig struct {
	Mode             string `yaml:"mode"`
	SimulatedDelayMs int    `yaml:"simulated_delay_ms"`
}

type PipelineConfig struct {
	Workers             int    `yaml:"workers"`
	StagePauseMs        int    `yaml:"stage_pause_ms"`
	ExtractionTimeoutMs int    `yaml:"extraction_timeout_ms"`
	GenerationTimeoutMs int    `yaml:"generation_timeout_ms"`
	DefaultSubject      string `yaml:"default_subject"`
}

// DefaultConfig stores data in ~/.sahayak/sahayak.db and talks to a local
// Ollama. SQLitePath is left empty and resolved by Load.
func DefaultConfig() Config {
	p := pipeline.DefaultConfig()
	return Config{
		Store: StoreConfig{Driver: StoreSQLite, Seed: true},
		Cache: CacheConfig{
			Driver:     CacheMemory,
			RedisAddr:  "localhost:6379",
			MaxEntries: 256,
			TTLSeconds: 24 * 60 * 60,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeoutMs:     30000,
			WriteTimeoutMs:    180000,
			ShutdownTimeoutMs: 10000,
			MaxUploadBytes:    10 << 20,
			KeepRuns:          32,
		},
		OCR: OCRConfig{Mode: OCRSimulated, SimulatedDelayMs: 1000},
		Pipeline: PipelineConfig{
			Workers:             p.Workers,
			StagePauseMs:        int(p.StagePause / time.Millisecond),
			ExtractionTimeoutMs: int(p.ExtractionTimeout / time.Millisecond),
			GenerationTimeoutMs: int(p.GenerationTimeout / time.Millisecond),
			DefaultSubject:      p.DefaultSubject,
		},
		LLM:      llm.DefaultConfig(),
		LogLevel: "info",
	}
}

// LoadDotEnv loads variables from path (default ".env") without overriding
// ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. path names a YAML file; when empty,
// SAHAYAK_CONFIG is consulted, and when that is also empty no file is read.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("SAHAYAK_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	llm.ApplyEnv(&cfg.LLM)

	if cfg.Store.Driver == StoreSQLite && cfg.Store.SQLitePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.Store.SQLitePath = filepath.Join(home, ".sahayak", "sahayak.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("postgres store requires SAHAYAK_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid store driver: %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("invalid cache driver: %q", c.Cache.Driver)
	}

	switch c.OCR.Mode {
	case OCRSimulated, OCRVision:
	default:
		return fmt.Errorf("invalid ocr mode: %q", c.OCR.Mode)
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.StagePauseMs < 0 {
		return fmt.Errorf("pipeline stage pause must not be negative")
	}
	if c.OCR.Mode == OCRVision && !c.LLM.Enabled {
		return errors.New("vision ocr requires the LLM to be enabled")
	}
	return nil
}

// PipelineSettings converts the millisecond fields into a pipeline.Config.
func (c Config) PipelineSettings() pipeline.Config {
	return pipeline.Config{
		Workers:           c.Pipeline.Workers,
		StagePause:        ms(c.Pipeline.StagePauseMs),
		ExtractionTimeout: ms(c.Pipeline.ExtractionTimeoutMs),
		GenerationTimeout: ms(c.Pipeline.GenerationTimeoutMs),
		DefaultSubject:    c.Pipeline.DefaultSubject,
	}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SAHAYAK_STORE"); v != "" {
		cfg.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SAHAYAK_DB"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("SAHAYAK_POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("SAHAYAK_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Store.Seed = b
		}
	}
	if v := os.Getenv("SAHAYAK_CACHE"); v != "" {
		cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SAHAYAK_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SAHAYAK_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	envInt("SAHAYAK_REDIS_DB", &cfg.Cache.RedisDB)
	if v := os.Getenv("SAHAYAK_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SAHAYAK_OCR"); v != "" {
		cfg.OCR.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	envInt("SAHAYAK_PIPELINE_WORKERS", &cfg.Pipeline.Workers)
	envInt("SAHAYAK_PIPELINE_PAUSE_MS", &cfg.Pipeline.StagePauseMs)
	if v := os.Getenv("SAHAYAK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// envInt overwrites *dst when the variable holds a valid integer.
func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
