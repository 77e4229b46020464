// Package commands implements the varnorm subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/varnorm/pkg/config"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
	"github.com/Sumatoshi-tech/varnorm/pkg/version"
)

// GlobalOptions are the persistent flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand assembles the varnorm command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "varnorm",
		Short: "Normalize local variable names in C functions",
		Long: `varnorm rewrites the first function of a C translation unit:
unused locals are removed, the remaining ones are renamed after their type
(s32_0, u8_p_1, ...) and each run of declarations is sorted by name.

Commands:
  convert   Convert files or stdin
  plan      Show what would happen to each local declaration
  serve     Run the HTTP service
  mcp       Run the MCP server on stdio
  lsp       Run the language server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: varnorm.yaml in ., ./config, /etc/varnorm)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		NewConvertCommand(opts),
		NewPlanCommand(opts),
		NewServeCommand(opts),
		NewMCPCommand(opts),
		NewLSPCommand(opts),
		NewVersionCommand(),
	)

	return rootCmd
}

// NewVersionCommand prints build metadata.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}

// session is the configuration and telemetry shared by one command run.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// start loads configuration and initializes telemetry for mode. Logs go to
// the command's stderr.
func (g *GlobalOptions) start(cmd *cobra.Command, mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogWriter = cmd.ErrOrStderr()
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.FormatJSON
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = mode == observability.ModeServe && cfg.Telemetry.Prometheus

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	if obsCfg.OTLPHeaders == nil {
		obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, providers: providers}, nil
}
