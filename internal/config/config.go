package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalidValue      = errors.New("config: invalid value")
)

// RuntimeConfig is the settings bag handed to activation. Nil fields are absent.
type RuntimeConfig struct {
	Server       *string `yaml:"server"`
	Enterprise   *string `yaml:"enterprise"`
	Organization *string `yaml:"organization"`
	User         *string `yaml:"user"`
	APIPort      *string `yaml:"api_port"`
	Fips         *bool   `yaml:"fips"`
	FipsGitPort  *string `yaml:"fips_git_port"`
}

// SetFipsGitPort returns a copy of c with the FIPS git port set.
func (c RuntimeConfig) SetFipsGitPort(port string) RuntimeConfig {
	c.FipsGitPort = &port
	return c
}

// FipsEnabled reports whether FIPS mode was requested.
func (c RuntimeConfig) FipsEnabled() bool {
	return c.Fips != nil && *c.Fips
}

// APIPortOr returns the configured API port or fallback when absent.
func (c RuntimeConfig) APIPortOr(fallback string) string {
	if c.APIPort == nil {
		return fallback
	}
	return *c.APIPort
}

// MergeFipsOptions folds command-line FIPS options into cfg. A FIPS flag already
// present in cfg is kept; the git port is always replaced.
func MergeFipsOptions(fips bool, fipsGitPort string, cfg RuntimeConfig) RuntimeConfig {
	if cfg.Fips == nil {
		cfg.Fips = &fips
	}
	return cfg.SetFipsGitPort(fipsGitPort)
}

type fileConfig struct {
	Server       string `toml:"server"`
	Enterprise   string `toml:"enterprise"`
	Organization string `toml:"organization"`
	User         string `toml:"user"`
	APIPort      string `toml:"api_port"`
	Fips         bool   `toml:"fips"`
	FipsGitPort  string `toml:"fips_git_port"`
}

// LoadFile reads a runtime config from a .toml, .yaml or .yml file.
func LoadFile(path string) (RuntimeConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return loadTOML(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return RuntimeConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

func loadTOML(path string) (RuntimeConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var cfg RuntimeConfig
	if meta.IsDefined("server") {
		cfg.Server = trimmed(raw.Server)
	}
	if meta.IsDefined("enterprise") {
		cfg.Enterprise = trimmed(raw.Enterprise)
	}
	if meta.IsDefined("organization") {
		cfg.Organization = trimmed(raw.Organization)
	}
	if meta.IsDefined("user") {
		cfg.User = trimmed(raw.User)
	}
	if meta.IsDefined("api_port") {
		cfg.APIPort = trimmed(raw.APIPort)
	}
	if meta.IsDefined("fips") {
		v := raw.Fips
		cfg.Fips = &v
	}
	if meta.IsDefined("fips_git_port") {
		cfg.FipsGitPort = trimmed(raw.FipsGitPort)
	}
	return cfg, nil
}

func loadYAML(path string) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	var cfg RuntimeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

type envOverrides struct {
	Server      string `env:"FIPSCTL_SERVER"`
	APIPort     string `env:"FIPSCTL_API_PORT"`
	Fips        string `env:"FIPSCTL_FIPS"`
	FipsGitPort string `env:"FIPSCTL_FIPS_GIT_PORT"`
}

// ApplyEnv overlays FIPSCTL_* environment variables onto cfg. Unset variables leave
// the corresponding field untouched.
func ApplyEnv(cfg RuntimeConfig) (RuntimeConfig, error) {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config env parse failed: %w", err)
	}

	if v := strings.TrimSpace(o.Server); v != "" {
		cfg.Server = &v
	}
	if v := strings.TrimSpace(o.APIPort); v != "" {
		cfg.APIPort = &v
	}
	if v := strings.TrimSpace(o.Fips); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return RuntimeConfig{}, fmt.Errorf("%w: FIPSCTL_FIPS=%q", ErrInvalidValue, v)
		}
		cfg.Fips = &b
	}
	if v := strings.TrimSpace(o.FipsGitPort); v != "" {
		cfg = cfg.SetFipsGitPort(v)
	}
	return cfg, nil
}

// Load reads path (when non-empty) and applies environment overrides.
func Load(path string) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if strings.TrimSpace(path) != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return RuntimeConfig{}, err
		}
		cfg = loaded
	}
	return ApplyEnv(cfg)
}

func trimmed(s string) *string {
	v := strings.TrimSpace(s)
	return &v
}
