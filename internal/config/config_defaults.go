package config

import (
	"time"

	"github.com/spf13/viper"
)

// Hosted model defaults
const (
	DefaultInferenceBaseURL = "https://api-inference.huggingface.co/models"
	DefaultSummaryModel     = "facebook/bart-large-cnn"
	DefaultSentimentModel   = "nlptown/bert-base-multilingual-uncased-sentiment"
)

// DefaultKeywordModels is the candidate list tried for every section. The
// first model appears twice on purpose: a second attempt often succeeds once
// the hosted model has warmed up.
var DefaultKeywordModels = []string{
	"yanekyuk/bert-uncased-keyword-extractor",
	"mrm8488/bert-tiny2-finetuned-keyword-extraction",
	"yanekyuk/bert-uncased-keyword-extractor",
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Inference Configuration
	v.SetDefault("inference.provider", "huggingface")
	v.SetDefault("inference.apiKey", "")
	v.SetDefault("inference.baseURL", DefaultInferenceBaseURL)
	v.SetDefault("inference.timeout", time.Duration(0)) // no client-side timeout
	v.SetDefault("inference.maxTextLength", 1024)
	v.SetDefault("inference.llmModel", "")
	v.SetDefault("inference.models.summary", DefaultSummaryModel)
	v.SetDefault("inference.models.sentiment", DefaultSentimentModel)
	v.SetDefault("inference.models.keywords", DefaultKeywordModels)

	// Circuit breaker is shared across requests, so it stays off unless asked for
	v.SetDefault("inference.circuitBreaker.enabled", false)
	v.SetDefault("inference.circuitBreaker.maxRequests", 3)
	v.SetDefault("inference.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("inference.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("inference.circuitBreaker.minRequests", 5)
	v.SetDefault("inference.circuitBreaker.failureThreshold", 0.8)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // analysis makes up to 17 upstream calls
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload", true)
	v.SetDefault("server.tls.debounceDelay", time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 30)
	v.SetDefault("server.rateLimit.burstCapacity", 5)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB
	v.SetDefault("app.concurrency", 4)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.mount", "secret")
	v.SetDefault("vault.secrets.inferenceKey", "")
	v.SetDefault("vault.secrets.apiKeys", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "profilelens")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.inference.enabled", true)
	v.SetDefault("observability.customMetrics.inference.trackDuration", true)
	v.SetDefault("observability.customMetrics.pipeline.enabled", true)
	v.SetDefault("observability.customMetrics.pipeline.trackFallbacks", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 5*time.Second)
}
