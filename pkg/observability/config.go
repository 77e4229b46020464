// Package observability provides structured logging, OpenTelemetry tracing
// and metrics, and the health and metrics endpoints for every varnorm mode
// (CLI, HTTP server, MCP server, language server).
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command.
	ModeCLI AppMode = "cli"
	// ModeServe is the HTTP service.
	ModeServe AppMode = "serve"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
	// ModeLSP is the language server on stdio.
	ModeLSP AppMode = "lsp"
)

const (
	defaultServiceName        = "varnorm"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// LogWriter receives log output. Nil means os.Stderr.
	LogWriter io.Writer

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporters.
	OTLPHeaders map[string]string

	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	OTLPEndpoint string

	// SampleRatio is the trace sampling ratio (0.0 to 1.0). Zero samples
	// every root span.
	SampleRatio float64

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int

	// LogLevel is the minimum slog severity.
	LogLevel slog.Level

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// LogJSON selects JSON log output instead of text.
	LogJSON bool

	// Prometheus attaches a Prometheus reader so metrics can be scraped
	// from Providers.MetricsHandler.
	Prometheus bool
}

// DefaultConfig returns a Config suitable for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
