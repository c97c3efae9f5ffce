package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"
)

// certReloadRecorder counts certificate reloads. Implemented by observability.Metrics.
type certReloadRecorder interface {
	RecordCertReload(ctx context.Context, success bool)
}

// CertificateManager serves the server certificate for TLS handshakes and
// swaps it when the files on disk change
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	serverCertExpiry time.Time
	lastReloadTime   time.Time

	watcher *CertWatcher

	certFile      string
	keyFile       string
	debounceDelay time.Duration

	recorder certReloadRecorder
	logger   *errors.Logger

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadSuccess  bool
	lastReloadError    string
}

// CertificateMetrics holds metrics about certificate operations
type CertificateMetrics struct {
	ReloadCount        int64     `json:"reload_count"`
	ReloadSuccessCount int64     `json:"reload_success_count"`
	ReloadFailureCount int64     `json:"reload_failure_count"`
	LastReloadTime     time.Time `json:"last_reload_time"`
	LastReloadSuccess  bool      `json:"last_reload_success"`
	LastReloadError    string    `json:"last_reload_error,omitempty"`
}

// NewCertificateManager creates a manager for the pair named in tlsConfig
func NewCertificateManager(tlsConfig config.TLSConfig, recorder certReloadRecorder, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		certFile:      tlsConfig.CertFile,
		keyFile:       tlsConfig.KeyFile,
		debounceDelay: tlsConfig.DebounceDelay,
		recorder:      recorder,
		logger:        logger,
	}
}

// Load reads the certificate pair from disk without starting a watcher
func (cm *CertificateManager) Load() error {
	if err := cm.loadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}
	return nil
}

// Start loads the certificate pair and begins watching it for changes
func (cm *CertificateManager) Start() error {
	if err := cm.Load(); err != nil {
		return err
	}

	cm.watcher = NewCertWatcher([]string{cm.certFile, cm.keyFile}, cm.debounceDelay, cm.triggerReload, cm.logger)
	if err := cm.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	return nil
}

// Stop stops the file watcher
func (cm *CertificateManager) Stop() error {
	if cm.watcher != nil {
		if err := cm.watcher.Stop(); err != nil {
			cm.logger.LogError(err, "Failed to stop file watcher")
			return err
		}
	}
	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}

	if time.Now().After(cm.serverCertExpiry) {
		serverName := ""
		if hello != nil {
			serverName = hello.ServerName
		}
		err := fmt.Errorf("server certificate expired")
		cm.logger.LogError(err, "Server certificate expired",
			"expiry", cm.serverCertExpiry,
			"server_name", serverName)
		return nil, err
	}

	return cm.serverCert, nil
}

// ReloadCertificates re-reads the pair from disk, keeping the previous
// certificate when the new one fails to load
func (cm *CertificateManager) ReloadCertificates() error {
	if err := cm.loadCertificates(); err != nil {
		cm.handleReloadError(err)
		return err
	}
	return nil
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns certificate management metrics
func (cm *CertificateManager) GetMetrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

func (cm *CertificateManager) loadCertificates() error {
	cert, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	if len(cert.Certificate) == 0 {
		return fmt.Errorf("no certificate found in %s", cm.certFile)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse server certificate: %w", err)
	}

	cm.mu.Lock()
	cm.serverCert = &cert
	cm.serverCertExpiry = leaf.NotAfter
	cm.lastReloadTime = time.Now()
	cm.reloadCount++
	cm.reloadSuccessCount++
	cm.lastReloadSuccess = true
	cm.lastReloadError = ""
	cm.mu.Unlock()

	cm.record(true)
	cm.logger.Info("Certificates reloaded successfully",
		"server_cert_expiry", leaf.NotAfter)
	return nil
}

// triggerReload is the watcher callback
func (cm *CertificateManager) triggerReload() {
	cm.logger.Info("Certificate reload triggered by file watcher")
	_ = cm.ReloadCertificates()
}

func (cm *CertificateManager) handleReloadError(err error) {
	cm.mu.Lock()
	cm.reloadCount++
	cm.reloadFailureCount++
	cm.lastReloadSuccess = false
	cm.lastReloadError = err.Error()
	cm.mu.Unlock()

	cm.record(false)
	cm.logger.LogError(err, "Failed to reload certificates")
}

func (cm *CertificateManager) record(success bool) {
	if cm.recorder != nil {
		cm.recorder.RecordCertReload(context.Background(), success)
	}
}
