package paths

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestResolveWithHomePosix(t *testing.T) {
	home := t.TempDir()
	layout := ResolveWithHome(PlatformLinux, home)

	if layout.Binary != "/opt/chefdk/embedded/bin/stunnel" {
		t.Fatalf("unexpected binary: %q", layout.Binary)
	}
	if layout.ConfigFile != filepath.Join(home, ".chefdk", "etc", "stunnel.conf") {
		t.Fatalf("unexpected config file: %q", layout.ConfigFile)
	}
	if layout.LogFile != filepath.Join(home, ".chefdk", "log", "stunnel.log") {
		t.Fatalf("unexpected log file: %q", layout.LogFile)
	}
	if layout.CertFile != filepath.Join(home, ".chefdk", "etc", "automate-nginx-cert.pem") {
		t.Fatalf("unexpected cert file: %q", layout.CertFile)
	}
}

func TestResolveWithHomeWindows(t *testing.T) {
	layout := ResolveWithHome(PlatformWindows, `C:\Users\u\`)

	if layout.Binary != `C:\opscode\chefdk\embedded\bin\stunnel.exe` {
		t.Fatalf("unexpected binary: %q", layout.Binary)
	}
	if layout.ConfigFile != `C:\opscode\chefdk\embedded\stunnel.conf` {
		t.Fatalf("unexpected config file: %q", layout.ConfigFile)
	}
	if layout.LogFile != `C:\Users\u\.chefdk\log\stunnel.log` {
		t.Fatalf("unexpected log file: %q", layout.LogFile)
	}
	if layout.CertFile != `C:\Users\u\.chefdk\etc\automate-nginx-cert.pem` {
		t.Fatalf("unexpected cert file: %q", layout.CertFile)
	}
}

func TestResolveWithHomeWindowsNeverUsesSlash(t *testing.T) {
	layout := ResolveWithHome(PlatformWindows, "/home/u")
	for _, p := range []string{layout.Binary, layout.ConfigFile, layout.LogFile, layout.CertFile} {
		if strings.Contains(p, "/") {
			t.Fatalf("windows path contains forward slash: %q", p)
		}
	}
	if layout.CertFile != `\home\u\.chefdk\etc\automate-nginx-cert.pem` {
		t.Fatalf("unexpected cert file: %q", layout.CertFile)
	}
}

func TestPlatformNewline(t *testing.T) {
	if PlatformWindows.Newline() != "\r\n" {
		t.Fatalf("windows newline must be CRLF")
	}
	if PlatformLinux.Newline() != "\n" || PlatformDarwin.Newline() != "\n" {
		t.Fatalf("posix newline must be LF")
	}
}

func TestParsePlatform(t *testing.T) {
	if got := ParsePlatform(" Windows "); got != PlatformWindows {
		t.Fatalf("unexpected platform: %q", got)
	}
	if got := ParsePlatform(""); got != Platform(runtime.GOOS) {
		t.Fatalf("expected host platform, got %q", got)
	}
}
