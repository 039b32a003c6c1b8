// Package paths resolves where the stunnel binary and its artifacts live for a platform.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrNoHomeDir = errors.New("paths: home directory unavailable")

type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
)

// Detect returns the platform of the running binary.
func Detect() Platform {
	return Platform(runtime.GOOS)
}

// ParsePlatform normalizes a GOOS-style name. Empty input selects the host platform.
func ParsePlatform(raw string) Platform {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return Detect()
	}
	return Platform(raw)
}

func (p Platform) IsWindows() bool {
	return p == PlatformWindows
}

// Newline is the line terminator stunnel expects on the platform.
func (p Platform) Newline() string {
	if p.IsWindows() {
		return "\r\n"
	}
	return "\n"
}

const (
	windowsEmbedded   = `C:\opscode\chefdk\embedded`
	posixEmbedded     = "/opt/chefdk/embedded"
	stateDir          = ".chefdk"
	configFileName    = "stunnel.conf"
	logFileName       = "stunnel.log"
	certFileName      = "automate-nginx-cert.pem"
	posixBinaryName   = "stunnel"
	windowsBinaryName = "stunnel.exe"
)

// Layout is the resolved set of stunnel locations.
type Layout struct {
	Binary     string
	ConfigFile string
	LogFile    string
	CertFile   string
}

// Resolve builds the layout for platform rooted at the current user's home directory.
func Resolve(platform Platform) (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return Layout{}, fmt.Errorf("%w: %v", ErrNoHomeDir, err)
	}
	return ResolveWithHome(platform, home), nil
}

// ResolveWithHome builds the layout for platform under an explicit home directory.
func ResolveWithHome(platform Platform, home string) Layout {
	if platform.IsWindows() {
		return Layout{
			Binary:     windowsJoin(windowsEmbedded, "bin", windowsBinaryName),
			ConfigFile: windowsJoin(windowsEmbedded, configFileName),
			LogFile:    windowsJoin(home, stateDir, "log", logFileName),
			CertFile:   windowsJoin(home, stateDir, "etc", certFileName),
		}
	}

	etc := filepath.Join(home, stateDir, "etc")
	return Layout{
		Binary:     posixEmbedded + "/bin/" + posixBinaryName,
		ConfigFile: filepath.Join(etc, configFileName),
		LogFile:    filepath.Join(home, stateDir, "log", logFileName),
		CertFile:   filepath.Join(etc, certFileName),
	}
}

// windowsJoin joins with backslashes regardless of the host, so a Windows layout
// renders the same on any build host.
func windowsJoin(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		e = strings.ReplaceAll(e, "/", `\`)
		if i > 0 {
			e = strings.TrimLeft(e, `\`)
		}
		e = strings.TrimRight(e, `\`)
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, `\`)
}
