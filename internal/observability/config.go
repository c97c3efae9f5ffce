package observability

import (
	"time"

	"profilelens/internal/config"
)

const (
	defaultServiceName        = "profilelens"
	defaultCollectionInterval = 15 * time.Second
	defaultPrometheusPath     = "/metrics"
)

// ObservabilityConfig is the resolved telemetry setup for one process
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	ConsoleOutput   bool
	PrettyPrint     bool
	SampleRate      float64

	CollectionInterval time.Duration
	CustomMetrics      config.CustomMetricsConfig
	OTLP               config.OTLPConfig
	Prometheus         PrometheusConfig
}

// PrometheusConfig controls the scrape endpoint
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// GetObservabilityConfig resolves telemetry settings from cfg, filling in
// defaults. A nil cfg yields a disabled setup with every metric group on.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:        defaultServiceName,
			ServiceVersion:     version,
			SampleRate:         1.0,
			CollectionInterval: defaultCollectionInterval,
			CustomMetrics: config.CustomMetricsConfig{
				Inference:      config.InferenceMetricsConfig{Enabled: true, TrackDuration: true},
				Pipeline:       config.PipelineMetricsConfig{Enabled: true, TrackFallbacks: true},
				Infrastructure: config.InfrastructureMetricsConfig{TrackRateLimits: true},
			},
			Prometheus: PrometheusConfig{Endpoint: defaultPrometheusPath, Port: "9090"},
		}
	}

	obs := cfg.Observability
	out := ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     obs.ServiceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		CustomMetrics:      obs.CustomMetrics,
		OTLP:               obs.OTLP,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
	}

	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.ServiceVersion == "" {
		out.ServiceVersion = version
	}
	if out.ServiceInstance == "" {
		out.ServiceInstance = out.ServiceName + "-1"
	}
	if out.CollectionInterval <= 0 {
		out.CollectionInterval = defaultCollectionInterval
	}
	if out.Prometheus.Endpoint == "" {
		out.Prometheus.Endpoint = defaultPrometheusPath
	}
	return out
}
