package config

// DefaultTraceEndpoint is the default OTLP HTTP collector endpoint.
const DefaultTraceEndpoint = "localhost:4318"

// TracingConfig controls optional OTLP trace export for backend calls.
// Disabled by default; enabling it requires a local collector listening
// on Endpoint.
type TracingConfig struct {
	// Enabled turns trace export on.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP collector endpoint (default: localhost:4318).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (dev, staging, prod).
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name attached to exported spans.
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
