package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DefaultFile is looked up in the working directory when no --config flag is
// given.
const DefaultFile = "forge.yaml"

const (
	EnvLogLevel    = "FORGE_LOG_LEVEL"
	EnvAtomicWrite = "FORGE_ATOMIC_WRITE"
)

type Config struct {
	LogLevel    string `yaml:"log_level"`
	AtomicWrite bool   `yaml:"atomic_write"`
	// FailMode is one of fast, end or best and only affects directory renders.
	FailMode string `yaml:"fail_mode"`
	// Extensions maps template extensions to engine names, overriding the
	// engines' own claims.
	Extensions  map[string]string `yaml:"extensions"`
	PostProcess []string          `yaml:"postprocess"`
	// Renderers maps template extensions to an external command run as
	// <command...> <template> <output> <vars.json>. They take precedence
	// over the built-in engines for that extension.
	Renderers map[string][]string `yaml:"renderers"`
}

func Default() Config {
	return Config{
		LogLevel: "warn",
		FailMode: "fast",
	}
}

func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.FailMode) {
	case "", "fast", "end", "best":
	default:
		return fmt.Errorf("fail_mode must be fast, end or best, got %q", c.FailMode)
	}
	for ext, name := range c.Extensions {
		if strings.TrimSpace(ext) == "" || strings.TrimSpace(name) == "" {
			return errors.New("extensions entries need both an extension and an engine")
		}
	}
	for ext, argv := range c.Renderers {
		if strings.TrimSpace(ext) == "" || len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			return errors.New("renderers entries need an extension and a command")
		}
	}
	return nil
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// silently keeps the defaults when it does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}
	if err := LoadYAML(path, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// ApplyEnv overlays FORGE_* environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if level := getenv(EnvLogLevel); level != "" {
		if _, err := ParseLevel(level); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = level
	}
	if atomic := getenv(EnvAtomicWrite); atomic != "" {
		v, err := strconv.ParseBool(atomic)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAtomicWrite, err)
		}
		c.AtomicWrite = v
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means
// warn.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
