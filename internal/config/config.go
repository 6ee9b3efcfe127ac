package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved galeri configuration.
type Config struct {
	SiteURL           string
	RequestTimeout    time.Duration
	Debounce          time.Duration
	IndexPollInterval time.Duration
	IndexPollTimeout  time.Duration
	LogFile           string
	LogLevel          string
	Build             BuildConfig
	Serve             ServeConfig
}

// BuildConfig drives `galeri split`.
type BuildConfig struct {
	SourceDir    string
	OutDir       string
	ItemsPerPage int
}

// ServeConfig drives `galeri serve`.
type ServeConfig struct {
	Addr string
	Dir  string
}

const (
	defaultConfigPath       = "~/.config/galeri/config.toml"
	defaultSiteURL          = "http://127.0.0.1:4321"
	defaultRequestTimeoutMS = 5000
	defaultDebounceMS       = 300
	defaultPollIntervalMS   = 100
	defaultPollTimeoutMS    = 3000
	defaultLogFile          = "~/.local/state/galeri/galeri.log"
	defaultLogLevel         = "info"
	defaultSourceDir        = "kaynak-veriler"
	defaultOutDir           = "dist"
	defaultItemsPerPage     = 48
	defaultServeAddr        = "127.0.0.1:4321"
)

type rawConfig struct {
	SiteURL             string `toml:"site_url"`
	RequestTimeoutMS    int    `toml:"request_timeout_ms" validate:"gte=0"`
	DebounceMS          int    `toml:"debounce_ms" validate:"gte=0"`
	IndexPollIntervalMS int    `toml:"index_poll_interval_ms" validate:"gte=0"`
	IndexPollTimeoutMS  int    `toml:"index_poll_timeout_ms" validate:"gte=0"`
	LogFile             string `toml:"log_file"`
	LogLevel            string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Build               struct {
		SourceDir    string `toml:"source_dir"`
		OutDir       string `toml:"out_dir"`
		ItemsPerPage int    `toml:"items_per_page" validate:"gte=0"`
	} `toml:"build"`
	Serve struct {
		Addr string `toml:"addr"`
		Dir  string `toml:"dir"`
	} `toml:"serve"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SiteURL:           defaultSiteURL,
		RequestTimeout:    defaultRequestTimeoutMS * time.Millisecond,
		Debounce:          defaultDebounceMS * time.Millisecond,
		IndexPollInterval: defaultPollIntervalMS * time.Millisecond,
		IndexPollTimeout:  defaultPollTimeoutMS * time.Millisecond,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
		Build: BuildConfig{
			SourceDir:    defaultSourceDir,
			OutDir:       defaultOutDir,
			ItemsPerPage: defaultItemsPerPage,
		},
		Serve: ServeConfig{
			Addr: defaultServeAddr,
			Dir:  defaultOutDir,
		},
	}
}

// Load locates and parses the galeri config, falling back to defaults when
// the file is missing or a field is empty.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	raw.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	if err := validate.Struct(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	cfg := Default()
	cfg.SiteURL = orDefault(raw.SiteURL, defaultSiteURL)
	cfg.RequestTimeout = millis(raw.RequestTimeoutMS, defaultRequestTimeoutMS)
	cfg.Debounce = millis(raw.DebounceMS, defaultDebounceMS)
	cfg.IndexPollInterval = millis(raw.IndexPollIntervalMS, defaultPollIntervalMS)
	cfg.IndexPollTimeout = millis(raw.IndexPollTimeoutMS, defaultPollTimeoutMS)
	cfg.LogFile = mustExpand(orDefault(raw.LogFile, defaultLogFile))
	cfg.LogLevel = orDefault(raw.LogLevel, defaultLogLevel)

	cfg.Build.SourceDir = orDefault(raw.Build.SourceDir, defaultSourceDir)
	cfg.Build.OutDir = orDefault(raw.Build.OutDir, defaultOutDir)
	if raw.Build.ItemsPerPage > 0 {
		cfg.Build.ItemsPerPage = raw.Build.ItemsPerPage
	}
	cfg.Serve.Addr = orDefault(raw.Serve.Addr, defaultServeAddr)
	cfg.Serve.Dir = orDefault(raw.Serve.Dir, cfg.Build.OutDir)

	return cfg, nil
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func millis(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
