// Package mcp implements a Model Context Protocol server exposing the local
// variable normalization pass as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
	"github.com/Sumatoshi-tech/varnorm/pkg/version"
)

const (
	serverName = "varnorm"
	toolCount  = 2

	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Converter runs the pass. Nil creates one.
	Converter *localnames.Converter

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// MaxInputBytes bounds base plus source. Zero means MaxInputBytes.
	MaxInputBytes int
}

// Server wraps the MCP SDK server with the varnorm tools.
type Server struct {
	inner   *mcpsdk.Server
	tools   *toolset
	mu      sync.RWMutex
	names   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// NewServer creates an MCP server with all tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	conv := deps.Converter
	if conv == nil {
		var err error

		conv, err = localnames.NewConverter(localnames.Options{Logger: deps.Logger, Tracer: deps.Tracer})
		if err != nil {
			return nil, err
		}
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version.Version}, opts)

	limit := deps.MaxInputBytes
	if limit <= 0 {
		limit = MaxInputBytes
	}

	srv := &Server{
		inner:   inner,
		tools:   &toolset{converter: conv, maxInputBytes: limit},
		names:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	srv.registerTools()

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(slices.Values(s.names))
}

// Run serves on stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is cancelled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameConvert,
		Description: convertToolDescription,
	}, withMetrics(s.metrics, ToolNameConvert, withTracing(s.tracer, ToolNameConvert, s.tools.handleConvert)))
	s.trackTool(ToolNameConvert)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNamePlan,
		Description: planToolDescription,
	}, withMetrics(s.metrics, ToolNamePlan, withTracing(s.tracer, ToolNamePlan, s.tools.handlePlan)))
	s.trackTool(ToolNamePlan)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.names = append(s.names, name)
}

// withTracing opens a span per tool call and appends the trace ID to the
// result when the span is sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil && result.IsError {
			span.SetStatus(codes.Error, "tool returned error result")
		}

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per tool call.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		op := mcpSpanPrefix + toolName
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, op)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}

const (
	convertToolDescription = "Normalize local variable names in the first C function of source: " +
		"unused locals are removed, the rest are renamed after their type (s32_0, u8_p_1) " +
		"and each run of declarations is sorted. base holds typedefs and globals the function uses."

	planToolDescription = "Report what the normalization would do to each local declaration " +
		"of the first C function in source, as JSON, together with the converted text."
)
