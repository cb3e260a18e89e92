// Package config loads clipnote settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/notes"
)

const (
	envPrefix         = "CLIPNOTE_"
	maxConfigFileSize = 1024 * 1024
	defaultTargetPath = "inbox.md"
)

// Config is the full clipnote configuration.
type Config struct {
	Target TargetConfig `koanf:"target" yaml:"target"`
	Filter FilterConfig `koanf:"filter" yaml:"filter"`
	Insert InsertConfig `koanf:"insert" yaml:"insert"`
	Keys   KeyConfig    `koanf:"keys" yaml:"keys"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
}

// TargetConfig names the document entries are moved into.
type TargetConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// FilterConfig holds the optional regular expression extracted text must
// match.
type FilterConfig struct {
	Pattern string `koanf:"pattern" yaml:"pattern"`
}

// InsertConfig controls where entries land in the target document.
type InsertConfig struct {
	Mode   string `koanf:"mode" yaml:"mode"`
	Marker string `koanf:"marker" yaml:"marker"`
}

// KeyConfig binds the trigger actions to key combinations, written the way
// bubbletea prints them (for example "ctrl+x").
type KeyConfig struct {
	Extract   string `koanf:"extract" yaml:"extract"`
	SelectAll string `koanf:"select_all" yaml:"select_all"`
	Palette   string `koanf:"palette" yaml:"palette"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
	File  string `koanf:"file" yaml:"file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Target: TargetConfig{Path: defaultTargetPath},
		Insert: InsertConfig{Mode: string(notes.ModeAppend)},
		Keys: KeyConfig{
			Extract:   "ctrl+x",
			SelectAll: "ctrl+a",
			Palette:   "ctrl+k",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/clipnote/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "clipnote", "config.yaml"), nil
}

// Load reads path (if it exists), applies CLIPNOTE_* environment overrides
// and fills defaults.
//
// Environment variables map on the first underscore:
//
//	CLIPNOTE_TARGET_PATH      -> target.path
//	CLIPNOTE_INSERT_MARKER    -> insert.marker
//	CLIPNOTE_KEYS_SELECT_ALL  -> keys.select_all
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	defaults := Default()
	if strings.TrimSpace(cfg.Target.Path) == "" {
		cfg.Target.Path = defaults.Target.Path
	}
	if strings.TrimSpace(cfg.Insert.Mode) == "" {
		cfg.Insert.Mode = defaults.Insert.Mode
	}
	if cfg.Keys.Extract == "" {
		cfg.Keys.Extract = defaults.Keys.Extract
	}
	if cfg.Keys.SelectAll == "" {
		cfg.Keys.SelectAll = defaults.Keys.SelectAll
	}
	if cfg.Keys.Palette == "" {
		cfg.Keys.Palette = defaults.Keys.Palette
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Target.Path) == "" {
		errs = append(errs, errors.New("target.path is required"))
	}
	if _, err := notes.ParseMode(c.Insert.Mode); err != nil {
		errs = append(errs, fmt.Errorf("insert.mode: %w", err))
	}
	keys := map[string]string{
		"keys.extract":    c.Keys.Extract,
		"keys.select_all": c.Keys.SelectAll,
		"keys.palette":    c.Keys.Palette,
	}
	seen := map[string]string{}
	for name, binding := range keys {
		binding = strings.TrimSpace(binding)
		if binding == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
			continue
		}
		if err := checkBinding(name, binding); err != nil {
			errs = append(errs, err)
			continue
		}
		if other, ok := seen[binding]; ok {
			errs = append(errs, fmt.Errorf("%s and %s share the binding %q", other, name, binding))
			continue
		}
		seen[binding] = name
	}
	return errors.Join(errs...)
}

// Policy returns the insertion policy for the target document.
func (c Config) Policy() notes.Policy {
	mode, err := notes.ParseMode(c.Insert.Mode)
	if err != nil {
		mode = notes.ModeAppend
	}
	return notes.Policy{Mode: mode, Marker: c.Insert.Marker}
}

// Capture returns the settings an extract runs with.
func (c Config) Capture() capture.Settings {
	return capture.Settings{
		TargetPath: c.Target.Path,
		Pattern:    c.Filter.Pattern,
		Policy:     c.Policy(),
	}
}

// Provider holds the live configuration; it is updated when the config file
// changes on disk.
type Provider struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewProvider wraps an already loaded config.
func NewProvider(path string, cfg Config) *Provider {
	return &Provider{path: path, cfg: cfg}
}

// Path returns the config file path the provider reloads from.
func (p *Provider) Path() string {
	return p.path
}

// Current returns the active configuration.
func (p *Provider) Current() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// ErrConfigMissing is returned by Reload when the config file is gone.
// Defaults only apply at startup; a running session keeps its settings.
var ErrConfigMissing = errors.New("config file missing")

// Reload re-reads the config file. On error the previous config stays active.
func (p *Provider) Reload() (Config, error) {
	if _, err := os.Stat(p.path); errors.Is(err, os.ErrNotExist) {
		return p.Current(), fmt.Errorf("%w: %s", ErrConfigMissing, p.path)
	}
	cfg, err := Load(p.path)
	if err != nil {
		return p.Current(), err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	return cfg, nil
}
