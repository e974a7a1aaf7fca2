// Package config loads settings from a YAML file, STUDYFLOW_*
// environment variables, and command-line flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "STUDYFLOW_"

// Config is the resolved application configuration.
type Config struct {
	// DBPath overrides the default database location. Empty means the
	// XDG data directory.
	DBPath string `koanf:"db_path"`

	// UserID namespaces all persisted state. Empty runs the app
	// without persistence.
	UserID string `koanf:"user"`

	// EasyThresholdMs is the answer-time cutoff below which a correct
	// answer counts as easy.
	EasyThresholdMs int `koanf:"easy_threshold_ms" validate:"gt=0"`

	// PageSize is the row count per page when loading cards.
	PageSize int `koanf:"page_size" validate:"gt=0"`

	// DailyTarget is the number of answers per day the stats view
	// measures against.
	DailyTarget int `koanf:"daily_target" validate:"gte=0"`

	// QuestionCap truncates sessions to at most this many questions.
	// Zero means no cap.
	QuestionCap int `koanf:"question_cap" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserID:          "local",
		EasyThresholdMs: 3000,
		PageSize:        1000,
		DailyTarget:     20,
	}
}

// EasyThreshold returns the easy cutoff as a duration.
func (c Config) EasyThreshold() time.Duration {
	return time.Duration(c.EasyThresholdMs) * time.Millisecond
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load merges the config file at path (skipped when absent), the
// environment, and the given flag set over the defaults. A nil flags
// is allowed.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flag config: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location under the
// XDG config directory.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "studyflow", "config.yaml"), nil
}
