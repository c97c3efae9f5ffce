package server

import (
	"time"

	"profilelens/internal/ai"
	"profilelens/internal/common"
	"profilelens/internal/config"
	"profilelens/internal/errors"
	"profilelens/internal/formatters"
)

// ErrorResponse is the JSON body of every non-2xx API answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server exposes the analysis pipeline and report rendering over HTTP
type Server struct {
	Host, Port, Version string
	AppConfig           *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// APIKeys is the set of accepted keys. Empty disables authentication.
	APIKeys        map[string]bool
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	RateLimiter    *RateLimiter

	ReadTimeout, WriteTimeout, IdleTimeout time.Duration

	// Analyzer is built from AppConfig on Start when nil
	Analyzer  common.ProfileAnalyzer
	Inference *ai.Service

	Formatters       *formatters.FormatterRegistry
	SupportedFormats []string
	// ReportFormat is used when /report is called without ?format=
	ReportFormat string

	now    func() time.Time
	Logger *errors.Logger
}

// ServerConfig holds the listener and protection settings for NewServer
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer builds a Server. The rate limiter is created only when cfg
// enables it; blank API keys are ignored.
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) *Server {
	keys := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key != "" {
			keys[key] = true
		}
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        keys,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		Formatters:     formatters.NewFormatterRegistry(),
		ReportFormat:   "markdown",
		now:            time.Now,
		Logger:         logger,
	}

	if rl := cfg.RateLimit; rl != nil && rl.Enabled {
		s.RateLimiter = NewRateLimiter(rl.RequestsPerMin, rl.BurstCapacity, logger)
	}
	if appCfg != nil {
		s.SupportedFormats = appCfg.App.SupportedFormats
	}
	return s
}
