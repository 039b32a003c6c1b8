package fips

import (
	"errors"
	"strings"

	"github.com/danmuck/fipsctl/internal/paths"
	"github.com/danmuck/fipsctl/internal/tools"
	"github.com/rs/zerolog/log"
)

// Launcher starts stunnel against the config at layout.ConfigFile.
type Launcher interface {
	Launch(layout paths.Layout, registry *ProcessRegistry) error
}

// NewLauncher selects the launch strategy for platform.
func NewLauncher(platform paths.Platform, executor tools.Executor) Launcher {
	if platform.IsWindows() {
		return ServiceLauncher{Runner: executor}
	}
	return SpawnLauncher{Spawner: executor}
}

// SpawnLauncher runs stunnel as a child process and hands it to the registry.
type SpawnLauncher struct {
	Spawner tools.Spawner
}

func (l SpawnLauncher) Launch(layout paths.Layout, registry *ProcessRegistry) error {
	command := []string{layout.Binary, layout.ConfigFile}
	if registry == nil {
		return &LaunchError{Command: command, Err: errors.New("nil process registry")}
	}
	cmd, err := l.Spawner.Start(layout.Binary, layout.ConfigFile)
	if err != nil {
		return &LaunchError{Command: command, Err: err}
	}
	registry.Register(cmd)

	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
	}
	log.Info().
		Str("step", "launch").
		Str("cmd", strings.Join(command, " ")).
		Int("pid", pid).
		Msg("fips stunnel spawned")
	return nil
}

// serviceSteps are the stunnel service-control invocations, in order.
var serviceSteps = [][]string{
	{"-install", "-quiet"},
	{"-start", "-quiet"},
	{"-reload", "-quiet"},
}

// ServiceLauncher installs and (re)starts stunnel as a service. The service manager
// owns the process afterwards, so nothing is registered.
type ServiceLauncher struct {
	Runner tools.CommandRunner
}

func (l ServiceLauncher) Launch(layout paths.Layout, _ *ProcessRegistry) error {
	for _, args := range serviceSteps {
		command := append([]string{layout.Binary}, args...)
		stdout, stderr, exitCode, err := l.Runner.Run(layout.Binary, args...)
		output := strings.TrimSpace(string(stdout) + string(stderr))
		if err != nil && !tools.IsExitError(err) {
			return &LaunchError{Command: command, Output: output, Err: err}
		}
		event := log.Info()
		if err != nil {
			event = log.Warn().Int32("exit", exitCode).Str("output", output)
		}
		event.
			Str("step", "launch").
			Str("cmd", strings.Join(command, " ")).
			Msg("fips stunnel service command finished")
	}
	return nil
}
