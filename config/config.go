// Package config loads the settings of programs built on the dynamic supervisor.
//
// Settings are layered: built-in defaults, then an optional yaml file, then
// DYNSUP_ prefixed environment variables (DYNSUP_SUPERVISOR_MAX_RESTARTS sets
// supervisor.max_restarts).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/hedisam/goactor/internal/logging"
)

const (
	EnvPrefix = "DYNSUP_"
	// PathEnvVar overrides the config file path when none is given
	PathEnvVar = EnvPrefix + "CONFIG"
)

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Example    ExampleConfig    `koanf:"example"`

	// k holds the merged layers, SupervisorOptions cuts its subtree out of it
	k *koanf.Koanf
}

type LogConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format" validate:"oneof=json console"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// SupervisorConfig mirrors supervisor.Flags. It is handed to the supervisor as a keyed map.
type SupervisorConfig struct {
	Strategy     string        `koanf:"strategy" validate:"required"`
	MaxRestarts  int           `koanf:"max_restarts" validate:"gte=0"`
	MaxSeconds   int           `koanf:"max_seconds" validate:"gte=0"`
	Name         string        `koanf:"name"`
	MaxChildren  int           `koanf:"max_children" validate:"gte=0"`
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gte=0"`
}

// ExampleConfig drives the example program's workload.
type ExampleConfig struct {
	Workers int `koanf:"workers" validate:"gte=1"`
	// CrashRate is the chance of a worker crashing on every tick
	CrashRate float64       `koanf:"crash_rate" validate:"gte=0,lte=1"`
	Tick      time.Duration `koanf:"tick" validate:"gt=0"`
	RunFor    time.Duration `koanf:"run_for" validate:"gte=0"`
	// MetricsAddr serves /metrics when set
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,hostname_port"`
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			Timestamp: true,
		},
		Supervisor: SupervisorConfig{
			Strategy:     "one_for_one",
			MaxRestarts:  3,
			MaxSeconds:   5,
			RetryBackoff: 10 * time.Millisecond,
		},
		Example: ExampleConfig{
			Workers:   4,
			CrashRate: 0.05,
			Tick:      100 * time.Millisecond,
			RunFor:    10 * time.Second,
		},
	}
}

// Load reads the defaults, the yaml file at path if any, and the environment.
// An empty path falls back to $DYNSUP_CONFIG; a missing file is only an error when
// the path was given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		case explicit || !os.IsNotExist(err):
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.k = k

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform maps DYNSUP_SECTION_SOME_KEY to section.some_key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// SupervisorOptions returns the supervisor section as the keyed map supervisor.Spec
// accepts for its Flags.
func (c *Config) SupervisorOptions() map[string]interface{} {
	k := c.k
	if k == nil {
		k = koanf.New(".")
		// can't fail for a struct
		_ = k.Load(structs.Provider(c, "koanf"), nil)
	}
	return k.Cut("supervisor").Raw()
}

// LoggingConfig converts the log section for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:     c.Log.Level,
		Format:    c.Log.Format,
		Caller:    c.Log.Caller,
		Timestamp: c.Log.Timestamp,
		Output:    os.Stderr,
	}
}
