package telemetry

// Config holds the OTLP tracing configuration.
type Config struct {
	// Enabled turns tracing on. When false, Init installs a no-op
	// tracer and every span helper becomes free.
	Enabled bool

	// ServiceName is reported to the trace backend.
	ServiceName string

	// ServiceVersion tags every span with the running build.
	ServiceVersion string

	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string

	// Insecure disables TLS towards the collector.
	Insecure bool

	// SampleRate is the head sampling ratio, 0.0 to 1.0.
	SampleRate float64
}

// DefaultConfig returns the disabled-by-default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "gatewatch",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
