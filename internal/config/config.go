package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
// Inference Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Environment Variables (PROFILELENS_INFERENCE_APIKEY, then HUGGINGFACE_API_KEY)
// 3. Config File values
// 4. Default values - Lowest priority
type Config struct {
	Inference     InferenceConfig     `mapstructure:"inference"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// InferenceConfig holds settings for the external text-inference service
type InferenceConfig struct {
	Provider      string        `mapstructure:"provider" validate:"oneof=huggingface gemini claude"`
	APIKey        string        `mapstructure:"apiKey"`
	BaseURL       string        `mapstructure:"baseURL" validate:"omitempty,url"`
	Timeout       time.Duration `mapstructure:"timeout"` // 0 leaves the transport default in place
	MaxTextLength int           `mapstructure:"maxTextLength" validate:"gt=0"`

	// LLMModel is the generative model used by the gemini and claude providers
	LLMModel string `mapstructure:"llmModel"`

	Models         ModelsConfig         `mapstructure:"models"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// ModelsConfig names the hosted models used for each pipeline step
type ModelsConfig struct {
	Summary   string `mapstructure:"summary" validate:"required"`
	Sentiment string `mapstructure:"sentiment" validate:"required"`
	// Keywords is tried in order for every section; repeated entries are called again
	Keywords []string `mapstructure:"keywords" validate:"min=1,dive,required"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Open to half-open delay
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold" validate:"gte=0,lte=1"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled" or "server"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`

	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"

	// AutoReload watches CertFile and KeyFile and swaps the certificate on change
	AutoReload    bool          `mapstructure:"autoReload"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled" json:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin" json:"requests_per_min" validate:"gte=0"`
	BurstCapacity  int  `mapstructure:"burstCapacity" json:"burst_capacity" validate:"gte=0"`
	ByIP           bool `mapstructure:"byIP" json:"by_ip"`
	ByAPIKey       bool `mapstructure:"byAPIKey" json:"by_api_key"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	DefaultFormat    string   `mapstructure:"defaultFormat" validate:"required"`
	SupportedFormats []string `mapstructure:"supportedFormats" validate:"min=1"`
	MaxFileSize      int64    `mapstructure:"maxFileSize" validate:"gt=0"`
	// Concurrency bounds how many profile files the CLI analyzes at once
	Concurrency int `mapstructure:"concurrency" validate:"gte=1"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate" validate:"gte=0,lte=1"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig switches individual metric groups on and off
type CustomMetricsConfig struct {
	Inference      InferenceMetricsConfig      `mapstructure:"inference"`
	Pipeline       PipelineMetricsConfig       `mapstructure:"pipeline"`
	Infrastructure InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// InferenceMetricsConfig holds gateway call metrics configuration
type InferenceMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
}

// PipelineMetricsConfig holds analysis outcome metrics configuration
type PipelineMetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TrackFallbacks bool `mapstructure:"trackFallbacks"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Loader reads configuration through a dedicated viper instance and can
// watch the config file for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader. An empty configFile searches the default paths.
func NewLoader(configFile string) *Loader {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PROFILELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// HUGGINGFACE_API_KEY is accepted as a fallback name for the key
	_ = v.BindEnv("inference.apiKey", "PROFILELENS_INFERENCE_APIKEY", "HUGGINGFACE_API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/profilelens/")
		v.AddConfigPath("$HOME/.profilelens")
		v.AddConfigPath(".")
	}

	return &Loader{v: v}
}

// LoadConfig loads configuration from defaults, environment variables and a config file.
// PROFILELENS_CONFIG points at an explicit file.
func LoadConfig() (*Config, error) {
	return NewLoader(os.Getenv("PROFILELENS_CONFIG")).Load()
}

// Load reads the config file (if any) and returns the validated configuration
func (l *Loader) Load() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	configFileUsed := ""
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = l.v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	config, err := l.decode()
	if err != nil {
		return nil, err
	}

	config.logConfigurationSources(configFileUsed)

	log.Println("[CONFIG] Configuration loading completed successfully")
	return config, nil
}

// decode unmarshals the current viper state, applies fallbacks and validates
func (l *Loader) decode() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Watch re-decodes the configuration whenever the config file changes and
// hands the result to onChange. Invalid edits are logged and skipped.
// Does nothing when no config file was found.
func (l *Loader) Watch(onChange func(*Config, fsnotify.Event)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		config, err := l.decode()
		if err != nil {
			log.Printf("[CONFIG] Ignoring config change from %s: %v", event.Name, err)
			return
		}
		onChange(config, event)
	})
	l.v.WatchConfig()
}

var validate = validator.New()

// Validate checks if the configuration is valid. The inference key is not
// required here; its absence is reported when an analysis is attempted.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Inference.Provider == "huggingface" && c.Inference.BaseURL == "" {
		return fmt.Errorf("inference base URL is required for the huggingface provider")
	}

	if c.Inference.Timeout < 0 {
		return fmt.Errorf("inference timeout cannot be negative")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}
