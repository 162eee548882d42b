package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "~/.vtodo/config.yaml"

type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Language string         `yaml:"language"`
	Undo     UndoConfig     `yaml:"undo"`
	Status   StatusConfig   `yaml:"status"`
	Matching MatchingConfig `yaml:"matching"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Voice    VoiceConfig    `yaml:"voice"`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (cgo) or "sqlite" (pure Go).
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type UndoConfig struct {
	WindowSeconds int `yaml:"window_seconds"`
}

type StatusConfig struct {
	DismissMillis int `yaml:"dismiss_ms"`
	Buffer        int `yaml:"buffer"`
}

type MatchingConfig struct {
	// FuzzyThreshold is the minimum Jaro-Winkler score for resolving a spoken
	// name to an existing one. Zero disables fuzzy resolution.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

type LogConfig struct {
	Level LogLevel `yaml:"level"`
	File  string   `yaml:"file"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type VoiceConfig struct {
	WhisperModel string `yaml:"whisper_model"`
	ChunkBytes   int    `yaml:"chunk_bytes"`
}

func Default() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite3", Path: "~/.vtodo/todo.db"},
		Language: "zh-TW",
		Undo:     UndoConfig{WindowSeconds: 15},
		Status:   StatusConfig{DismissMillis: 2000, Buffer: 64},
		Matching: MatchingConfig{FuzzyThreshold: 0.88},
		Log:      LogConfig{Level: LogInfo},
		Voice:    VoiceConfig{ChunkBytes: 8000},
	}
}

func (c Config) UndoWindow() time.Duration {
	return time.Duration(c.Undo.WindowSeconds) * time.Second
}

func (c Config) StatusDismiss() time.Duration {
	return time.Duration(c.Status.DismissMillis) * time.Millisecond
}

// Load reads the YAML file at path over the defaults, applies VTODO_*
// environment overrides, expands "~" in paths and validates the result. A
// missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %q: %w", path, err)
	}

	f, err := os.Open(expanded)
	switch {
	case err == nil:
		defer f.Close()
		cfg, err = LoadFromReader(f, cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", expanded, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: open %q: %w", expanded, err)
	}

	cfg = FromEnv(cfg)
	if cfg, err = expandPaths(cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of base. Unknown keys are
// rejected.
func LoadFromReader(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("VTODO_DB_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := getEnvString("VTODO_DB_DRIVER"); ok {
		cfg.Database.Driver = v
	}
	if v, ok := getEnvString("VTODO_LANGUAGE"); ok {
		cfg.Language = v
	}
	if v, ok := getEnvInt("VTODO_UNDO_WINDOW_SECONDS"); ok && v > 0 {
		cfg.Undo.WindowSeconds = v
	}
	if v, ok := getEnvInt("VTODO_STATUS_DISMISS_MS"); ok && v > 0 {
		cfg.Status.DismissMillis = v
	}
	if v, ok := getEnvFloat("VTODO_FUZZY_THRESHOLD"); ok && v >= 0 {
		cfg.Matching.FuzzyThreshold = v
	}
	if v, ok := getEnvString("VTODO_LOG_LEVEL"); ok {
		cfg.Log.Level = LogLevel(strings.ToLower(v))
	}
	if v, ok := getEnvString("VTODO_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := getEnvString("VTODO_METRICS_ADDR"); ok {
		cfg.Metrics.ListenAddr = v
	}
	if v, ok := getEnvString("VTODO_WHISPER_MODEL"); ok {
		cfg.Voice.WhisperModel = v
	}
	return cfg
}

// Validate returns every problem found, joined.
func Validate(cfg Config) error {
	var errs []error
	switch cfg.Database.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is invalid; valid values: sqlite3, sqlite", cfg.Database.Driver))
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if cfg.Undo.WindowSeconds <= 0 {
		errs = append(errs, fmt.Errorf("undo.window_seconds must be positive, got %d", cfg.Undo.WindowSeconds))
	}
	if cfg.Status.DismissMillis <= 0 {
		errs = append(errs, fmt.Errorf("status.dismiss_ms must be positive, got %d", cfg.Status.DismissMillis))
	}
	if cfg.Status.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("status.buffer must be positive, got %d", cfg.Status.Buffer))
	}
	if cfg.Matching.FuzzyThreshold < 0 || cfg.Matching.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("matching.fuzzy_threshold must be within [0,1], got %v", cfg.Matching.FuzzyThreshold))
	}
	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Voice.ChunkBytes < 0 || cfg.Voice.ChunkBytes%2 != 0 {
		errs = append(errs, fmt.Errorf("voice.chunk_bytes must be a non-negative even number, got %d", cfg.Voice.ChunkBytes))
	}
	return errors.Join(errs...)
}

func expandPaths(cfg Config) (Config, error) {
	var err error
	if cfg.Database.Path, err = homedir.Expand(cfg.Database.Path); err != nil {
		return Config{}, fmt.Errorf("config: expand database.path: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return Config{}, fmt.Errorf("config: expand log.file: %w", err)
	}
	if cfg.Voice.WhisperModel, err = homedir.Expand(cfg.Voice.WhisperModel); err != nil {
		return Config{}, fmt.Errorf("config: expand voice.whisper_model: %w", err)
	}
	return cfg, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
