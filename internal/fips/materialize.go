package fips

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/fipsctl/internal/paths"
	"github.com/rs/zerolog/log"
)

// GitProxyPort is the upstream git-proxy port on the remote server.
const GitProxyPort = "8989"

// RenderConfig returns the stunnel.conf content for server and fipsGitPort.
func RenderConfig(platform paths.Platform, layout paths.Layout, server string, fipsGitPort string) []byte {
	nl := platform.Newline()
	lines := []string{
		"fips = yes",
		"client = yes",
		"output = " + layout.LogFile,
	}
	if !platform.IsWindows() {
		// the windows service manager owns foreground behaviour
		lines = append(lines, "foreground = quiet")
	}
	lines = append(lines,
		"[git]",
		"accept = "+fipsGitPort,
		"connect = "+server+":"+GitProxyPort,
		"checkHost = "+server,
		"verifyChain = yes",
		"verify = 3",
		"CAfile = "+layout.CertFile,
	)

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(nl)
	}
	return []byte(b.String())
}

// WriteConfig renders the config and replaces the file at layout.ConfigFile, creating
// the config and log directories first.
func WriteConfig(platform paths.Platform, layout paths.Layout, server string, fipsGitPort string) error {
	for _, dir := range []string{filepath.Dir(layout.ConfigFile), filepath.Dir(layout.LogFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	data := RenderConfig(platform, layout, server, fipsGitPort)
	if err := os.WriteFile(layout.ConfigFile, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: layout.ConfigFile, Err: err}
	}
	log.Info().
		Str("step", "config").
		Str("path", layout.ConfigFile).
		Str("platform", string(platform)).
		Msg("fips stunnel config written")
	return nil
}
