package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"profilelens/internal/observability"
)

// configureTLS attaches a TLS config for "server" mode and returns the URL
// scheme the server will answer on
func (s *Server) configureTLS(httpServer *http.Server, om *observability.ObservabilityManager) (string, error) {
	switch s.TLSConfig.Mode {
	case "server":
		tlsConfig, err := s.buildTLSConfig(om)
		if err != nil {
			return "", fmt.Errorf("failed to set up TLS: %w", err)
		}
		httpServer.TLSConfig = tlsConfig
		return "https", nil
	case "disabled", "":
		return "http", nil
	default:
		return "", fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// buildTLSConfig loads the certificate pair through a CertificateManager,
// watching it for changes when auto reload is enabled
func (s *Server) buildTLSConfig(om *observability.ObservabilityManager) (*tls.Config, error) {
	certManager := NewCertificateManager(s.TLSConfig, om.GetMetrics(), s.Logger)

	if s.TLSConfig.AutoReload {
		if err := certManager.Start(); err != nil {
			return nil, fmt.Errorf("failed to start certificate manager: %w", err)
		}
	} else if err := certManager.Load(); err != nil {
		return nil, err
	}
	s.CertificateManager = certManager

	s.Logger.Info("TLS enabled",
		"cert_file", s.TLSConfig.CertFile,
		"min_version", s.TLSConfig.MinVersion,
		"auto_reload", s.TLSConfig.AutoReload)

	return &tls.Config{
		MinVersion:     tlsMinVersion(s.TLSConfig.MinVersion),
		GetCertificate: certManager.GetServerCertificate,
		ClientAuth:     tls.NoClientCert,
	}, nil
}

// tlsMinVersion maps the configured version, defaulting to TLS 1.2
func tlsMinVersion(version string) uint16 {
	if version == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
