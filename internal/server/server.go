// Package server exposes the local-variable normalization pass over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/varnorm/pkg/config"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

const (
	defaultMaxInputBytes = 1 << 20
	shutdownGrace        = 10 * time.Second

	// bodyOverhead leaves room for JSON framing and escapes around the
	// base and source strings.
	bodyOverhead = 4096
)

// readyProbeSource is converted by the readiness check.
const readyProbeSource = "void probe(void) { int x = 0; (void)x; }"

// Options configures a Server.
type Options struct {
	Converter      *localnames.Converter
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Metrics        *observability.REDMetrics
	MetricsHandler http.Handler
	StaticDir      string
	MaxInputBytes  int64
}

// Server is the varnorm HTTP service.
type Server struct {
	converter      *localnames.Converter
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *observability.REDMetrics
	metricsHandler http.Handler
	validator      *requestValidator
	staticDir      string
	maxInputBytes  int64
}

// New creates a Server. A nil Converter gets a default one.
func New(opts Options) (*Server, error) {
	conv := opts.Converter
	if conv == nil {
		var err error

		conv, err = localnames.NewConverter(localnames.Options{Logger: opts.Logger, Tracer: opts.Tracer})
		if err != nil {
			return nil, err
		}
	}

	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		converter:      conv,
		logger:         opts.Logger,
		tracer:         opts.Tracer,
		metrics:        opts.Metrics,
		metricsHandler: opts.MetricsHandler,
		validator:      validator,
		staticDir:      opts.StaticDir,
		maxInputBytes:  opts.MaxInputBytes,
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	if srv.tracer == nil {
		srv.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if srv.maxInputBytes <= 0 {
		srv.maxInputBytes = defaultMaxInputBytes
	}

	return srv, nil
}

// Handler returns the routed handler. API routes are traced and measured;
// probes and the scrape endpoint are not.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/convert", s.handleConvert)
	api.HandleFunc("POST /convert", s.handleConvert)
	api.HandleFunc("POST /api/plan", s.handlePlan)

	traced := observability.HTTPMiddleware(s.tracer, s.metrics, api)

	mux := http.NewServeMux()
	mux.Handle("/api/", traced)
	mux.Handle("/convert", traced)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(observability.ReadyCheck{
		Name:  "converter",
		Check: s.checkConverter,
	}))

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	return mux
}

func (s *Server) checkConverter(ctx context.Context) error {
	_, err := s.converter.Convert(ctx, "", readyProbeSource)

	return err
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	httpSrv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.InfoContext(ctx, "varnorm server starting", "addr", httpSrv.Addr, "static_dir", s.staticDir)

		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()

		s.logger.InfoContext(shutdownCtx, "varnorm server stopping")

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
