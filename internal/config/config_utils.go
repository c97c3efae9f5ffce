package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills values that depend on other settings or on the host
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks reads a comma-separated key list from the
// environment when none is configured, then trims every configured key and
// keyword model. Viper splits env lists on commas but keeps the spaces.
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		c.Server.APIKeys = []string{os.Getenv("PROFILELENS_SERVER_APIKEYS")}
	}
	c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))
	c.Inference.Models.Keywords = trimEntries(c.Inference.Models.Keywords)
}

// trimEntries trims each entry and drops blanks, keeping order and repeats
func trimEntries(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "disabled"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	// Debug runs print telemetry to the console when no exporter is configured
	if c.App.LogLevel == "debug" && !c.Observability.OTLP.Enabled && !c.Observability.Prometheus.Enabled {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"PROFILELENS_INFERENCE_APIKEY",
		"PROFILELENS_INFERENCE_PROVIDER",
		"PROFILELENS_INFERENCE_BASEURL",
		"PROFILELENS_SERVER_PORT",
		"PROFILELENS_SERVER_HOST",
		"PROFILELENS_SERVER_APIKEYS",
		"PROFILELENS_APP_LOGLEVEL",
		"PROFILELENS_VAULT_ENABLED",
		"HUGGINGFACE_API_KEY", // Legacy support
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(envVar), "key") {
			log.Printf("[CONFIG]   %s=***MASKED***", envVar)
		} else {
			log.Printf("[CONFIG]   %s=%s", envVar, value)
		}
		hasEnvVars = true
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Inference Provider: %s", c.Inference.Provider)
	log.Printf("[CONFIG] Inference Base URL: %s", c.Inference.BaseURL)
	if c.Inference.APIKey != "" {
		log.Println("[CONFIG] Inference API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Inference API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Summary Model: %s", c.Inference.Models.Summary)
	log.Printf("[CONFIG] Sentiment Model: %s", c.Inference.Models.Sentiment)
	log.Printf("[CONFIG] Keyword Models: %s", strings.Join(c.Inference.Models.Keywords, ", "))
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Server API Keys: %d", len(c.Server.APIKeys))
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}
