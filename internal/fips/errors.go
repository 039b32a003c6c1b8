package fips

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedPlatform  = errors.New("fips: tunnel binary not installed on this platform")
	ErrMissingRequiredField = errors.New("fips: missing required field")
	ErrIO                   = errors.New("fips: io failure")
	ErrProcessLaunch        = errors.New("fips: process launch failed")
)

// MissingFieldError names the runtime field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingRequiredField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// IOError tags a filesystem failure with the operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%v: op=%s path=%s: %v", ErrIO, e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// LaunchError carries the command line that could not be started or invoked.
type LaunchError struct {
	Command []string
	Output  string
	Err     error
}

func (e *LaunchError) Error() string {
	msg := fmt.Sprintf("%v: cmd=%q", ErrProcessLaunch, strings.Join(e.Command, " "))
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += fmt.Sprintf(" output=%q", out)
	}
	return msg + ": " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool {
	return target == ErrProcessLaunch
}
