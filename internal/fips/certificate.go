package fips

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/fipsctl/internal/certs"
	"github.com/rs/zerolog/log"
)

// DefaultAPIPort is used for certificate retrieval when no API port is configured.
const DefaultAPIPort = "443"

// WriteCertificate stores the PEM served at server:port verbatim at certPath.
// Fetch errors are returned unchanged; an empty fetch result is a fetch error.
func WriteCertificate(fetcher certs.Fetcher, server string, port string, certPath string) error {
	pemText, err := fetcher.Fetch(server, port)
	if err != nil {
		return err
	}
	if strings.TrimSpace(pemText) == "" {
		return fmt.Errorf("%w: server=%s port=%s returned no certificate", certs.ErrFetch, server, port)
	}

	dir := filepath.Dir(certPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := os.WriteFile(certPath, []byte(pemText), 0o644); err != nil {
		return &IOError{Op: "write", Path: certPath, Err: err}
	}
	log.Info().
		Str("step", "certificate").
		Str("path", certPath).
		Str("server", server).
		Str("port", port).
		Msg("fips trust anchor written")
	return nil
}
