package server

// endpoint describes a route for the startup summary
type endpoint struct {
	method, path, purpose string
	protected            bool
}

var endpoints = []endpoint{
	{method: "GET", path: "/health", purpose: "health check"},
	{method: "GET", path: "/stats", purpose: "server statistics"},
	{method: "POST", path: "/analyze", purpose: "analyze a profile", protected: true},
	{method: "POST", path: "/report", purpose: "render an analysis report", protected: true},
}

// logServerInfo records the effective server settings once at startup and
// warns about protections that are switched off
func (s *Server) logServerInfo(scheme, addr string) {
	for _, e := range endpoints {
		s.Logger.Info("Endpoint registered",
			"method", e.method,
			"url", scheme+"://"+addr+e.path,
			"purpose", e.purpose,
			"requires_api_key", e.protected && len(s.APIKeys) > 0)
	}

	if len(s.APIKeys) == 0 {
		s.Logger.Warn("API authentication disabled, /analyze and /report are publicly accessible")
	} else {
		s.Logger.Info("API authentication enabled", "keys", len(s.APIKeys))
	}

	if s.MaxRequestSize <= 0 {
		s.Logger.Warn("Request size limit disabled")
	} else {
		s.Logger.Info("Request size limit", "bytes", s.MaxRequestSize)
	}

	if s.RateLimiter == nil {
		s.Logger.Warn("Rate limiting disabled")
		return
	}
	s.Logger.Info("Rate limiting enabled",
		"requests_per_min", s.RateLimit.RequestsPerMin,
		"burst", s.RateLimit.BurstCapacity,
		"by_ip", s.RateLimit.ByIP,
		"by_api_key", s.RateLimit.ByAPIKey)
}
