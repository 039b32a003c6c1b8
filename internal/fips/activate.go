package fips

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/fipsctl/internal/certs"
	"github.com/danmuck/fipsctl/internal/config"
	"github.com/danmuck/fipsctl/internal/paths"
	"github.com/danmuck/fipsctl/internal/tools"
	"github.com/rs/zerolog/log"
)

// State is how far one activation got.
type State int

const (
	StateNotStarted State = iota
	StateConfigWritten
	StateCertWritten
	StateLaunched
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateConfigWritten:
		return "config_written"
	case StateCertWritten:
		return "cert_written"
	case StateLaunched:
		return "launched"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ActivatorConfig wires the activation collaborators. Zero fields get host defaults.
type ActivatorConfig struct {
	Platform paths.Platform
	Layout   *paths.Layout
	Fetcher  certs.Fetcher
	Executor tools.Executor
	Launcher Launcher
}

// Activator runs the FIPS tunnel bring-up sequence.
type Activator struct {
	platform paths.Platform
	layout   paths.Layout
	fetcher  certs.Fetcher
	launcher Launcher
	state    State
}

func NewActivator(cfg ActivatorConfig) (*Activator, error) {
	platform := cfg.Platform
	if strings.TrimSpace(string(platform)) == "" {
		platform = paths.Detect()
	}

	var layout paths.Layout
	if cfg.Layout != nil {
		layout = *cfg.Layout
	} else {
		resolved, err := paths.Resolve(platform)
		if err != nil {
			return nil, err
		}
		layout = resolved
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = certs.TLSFetcher{}
	}

	launcher := cfg.Launcher
	if launcher == nil {
		executor := cfg.Executor
		if executor == nil {
			executor = tools.ExecRunner{}
		}
		launcher = NewLauncher(platform, executor)
	}

	return &Activator{
		platform: platform,
		layout:   layout,
		fetcher:  fetcher,
		launcher: launcher,
	}, nil
}

func (a *Activator) Layout() paths.Layout {
	return a.layout
}

func (a *Activator) Platform() paths.Platform {
	return a.platform
}

// State reports the last completed step of the most recent activation.
func (a *Activator) State() State {
	return a.state
}

// Activate brings the tunnel up when cfg requests FIPS mode and is a no-op otherwise.
// Spawned processes are appended to registry.
func (a *Activator) Activate(cfg config.RuntimeConfig, registry *ProcessRegistry) error {
	a.state = StateNotStarted
	if !cfg.FipsEnabled() {
		log.Debug().Msg("fips mode not requested")
		return nil
	}
	if registry == nil {
		return fmt.Errorf("%w: nil process registry", ErrProcessLaunch)
	}

	if _, err := os.Stat(a.layout.Binary); err != nil {
		return fmt.Errorf("%w: binary=%s", ErrUnsupportedPlatform, a.layout.Binary)
	}

	server, err := required("server", cfg.Server)
	if err != nil {
		return err
	}
	fipsGitPort, err := required("fips_git_port", cfg.FipsGitPort)
	if err != nil {
		return err
	}

	if err := WriteConfig(a.platform, a.layout, server, fipsGitPort); err != nil {
		return err
	}
	a.state = StateConfigWritten

	if err := WriteCertificate(a.fetcher, server, cfg.APIPortOr(DefaultAPIPort), a.layout.CertFile); err != nil {
		return err
	}
	a.state = StateCertWritten

	if err := a.launcher.Launch(a.layout, registry); err != nil {
		return err
	}
	a.state = StateLaunched
	return nil
}

// SetupAndStart activates with host defaults. Nothing is resolved unless FIPS mode
// is requested.
func SetupAndStart(cfg config.RuntimeConfig, registry *ProcessRegistry) error {
	if !cfg.FipsEnabled() {
		return nil
	}
	activator, err := NewActivator(ActivatorConfig{})
	if err != nil {
		return err
	}
	return activator.Activate(cfg, registry)
}

func required(name string, value *string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", &MissingFieldError{Field: name}
	}
	return strings.TrimSpace(*value), nil
}
