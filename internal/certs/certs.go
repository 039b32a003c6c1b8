// Package certs retrieves the certificate chain a server presents so it can be pinned
// as the stunnel trust anchor.
package certs

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrFetch = errors.New("certs: certificate fetch failed")

const DefaultTimeout = 10 * time.Second

// Fetcher returns PEM text for the certificates served at server:port.
type Fetcher interface {
	Fetch(server string, port string) (string, error)
}

// TLSFetcher dials the server and captures the presented chain without verifying it.
type TLSFetcher struct {
	Timeout time.Duration
}

func (f TLSFetcher) Fetch(server string, port string) (string, error) {
	server = strings.TrimSpace(server)
	port = strings.TrimSpace(port)
	if server == "" || port == "" {
		return "", fmt.Errorf("%w: server=%q port=%q", ErrFetch, server, port)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	addr := net.JoinHostPort(server, port)
	log.Debug().Str("addr", addr).Msg("certs.fetch dial")

	dialer := &net.Dialer{Timeout: timeout}
	// Verification is skipped on purpose: the chain captured here becomes the CAfile.
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
		ServerName:         server,
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
	})
	if err != nil {
		return "", fmt.Errorf("%w: addr=%s: %v", ErrFetch, addr, err)
	}
	defer conn.Close()

	chain := conn.ConnectionState().PeerCertificates
	if len(chain) == 0 {
		return "", fmt.Errorf("%w: addr=%s presented no certificates", ErrFetch, addr)
	}
	return EncodePEM(chain), nil
}

// EncodePEM concatenates the certificates as PEM CERTIFICATE blocks.
func EncodePEM(chain []*x509.Certificate) string {
	var buf bytes.Buffer
	for _, cert := range chain {
		_ = pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	}
	return buf.String()
}
