package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"
)

const (
	certCriticalWindow = 24 * time.Hour
	certWarningWindow  = 7 * 24 * time.Hour
)

type healthResponse struct {
	Status       string             `json:"status"`
	Service      string             `json:"service"`
	Version      string             `json:"version"`
	Inference    map[string]any     `json:"inference,omitempty"`
	Certificates *certificateHealth `json:"certificates,omitempty"`
}

type certificateHealth struct {
	Healthy           bool                `json:"healthy"`
	Status            string              `json:"status,omitempty"`
	Message           string              `json:"message,omitempty"`
	Error             string              `json:"error,omitempty"`
	TimeToExpiry      string              `json:"time_to_expiry,omitempty"`
	TimeToExpiryHours int                 `json:"time_to_expiry_hours,omitempty"`
	AutoReload        *autoReloadStatus   `json:"auto_reload,omitempty"`
	Metrics           *CertificateMetrics `json:"metrics,omitempty"`
}

type autoReloadStatus struct {
	Enabled            bool     `json:"enabled"`
	FileWatcherRunning bool     `json:"file_watcher_running"`
	WatchedFiles       []string `json:"watched_files,omitempty"`
}

// healthHandler reports liveness plus the state of the inference gateway and
// the served certificate. Either being unhealthy turns the answer into 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{Status: "healthy", Service: "profilelens", Version: s.Version}
	healthy := true

	if s.Inference != nil {
		resp.Inference = s.Inference.Stats()
		if ok, isBool := resp.Inference["healthy"].(bool); isBool && !ok {
			healthy = false
		}
	}

	if resp.Certificates = s.certificateHealth(); resp.Certificates != nil && !resp.Certificates.Healthy {
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, resp)
}

// certificateHealth grades the served certificate by time left before
// expiry. Nil when TLS is off.
func (s *Server) certificateHealth() *certificateHealth {
	cm := s.CertificateManager
	if cm == nil {
		return nil
	}

	left, err := cm.CheckExpiry()
	if err != nil {
		return &certificateHealth{Error: fmt.Sprintf("Failed to check certificate expiry: %v", err)}
	}

	h := &certificateHealth{
		Healthy:           left > certCriticalWindow,
		TimeToExpiry:      left.String(),
		TimeToExpiryHours: int(left.Hours()),
		AutoReload:        &autoReloadStatus{Enabled: s.TLSConfig.AutoReload},
	}
	switch {
	case left <= 0:
		h.Status, h.Message = "expired", "Certificate has expired"
	case left <= certCriticalWindow:
		h.Status, h.Message = "critical", "Certificate expires within 24 hours"
	case left <= certWarningWindow:
		h.Status, h.Message = "warning", "Certificate expires within 7 days"
	default:
		h.Status, h.Message = "ok", "Certificate is valid"
	}

	if cm.watcher != nil {
		h.AutoReload.FileWatcherRunning = cm.watcher.IsRunning()
		h.AutoReload.WatchedFiles = cm.watcher.GetWatchedFiles()
	}
	metrics := cm.GetMetrics()
	h.Metrics = &metrics

	return h
}

// statsHandler exposes request limits, rate limiter counters and gateway state
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rateLimiting := map[string]any{"enabled": false}
	if s.RateLimiter != nil {
		rateLimiting = s.RateLimiter.GetStats()
	}

	resp := map[string]any{
		"service": "profilelens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"report_formats":         s.Formatters.GetSupportedFormats(),
		},
		"rate_limiting": rateLimiting,
	}
	if s.RateLimit != nil {
		resp["rate_limit_config"] = s.RateLimit
	}
	if s.Inference != nil {
		resp["inference"] = s.Inference.Stats()
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// parseJSONRequest decodes an application/json body into v. Oversized bodies
// are reported with the configured limit.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.New("content-type must be application/json")
	}
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return fmt.Errorf("request body too large (limit is %d bytes)", tooLarge.Limit)
	case err != nil:
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeJSONResponse writes v as a JSON body with the given status
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes an ErrorResponse body
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: error, Message: message})
}
