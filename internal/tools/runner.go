package tools

import (
	"bytes"
	"errors"
	"os/exec"
)

// CommandRunner abstracts blocking command execution for launch strategies.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// Spawner abstracts non-blocking process creation.
type Spawner interface {
	Start(name string, args ...string) (*exec.Cmd, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run blocks until the command exits and returns its captured output and exit code.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}
	return stdout.Bytes(), stderr.Bytes(), ExitCode(err), err
}

// Start returns as soon as the OS has created the process. The caller owns the handle.
func (r ExecRunner) Start(name string, args ...string) (*exec.Cmd, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ExitCode maps an os/exec error to a shell-style exit code.
func ExitCode(err error) int32 {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return 127
	}
	return 1
}

// Executor provides both execution modes.
type Executor interface {
	CommandRunner
	Spawner
}

// IsExitError reports whether err only signals a non-zero exit of a process that ran.
func IsExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
