package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/varnorm/internal/mcp"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - varnorm_convert: normalize local variables of the first C function
  - varnorm_plan: report per-declaration outcomes as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := global.start(cmd, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer sess.close()

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			limit, err := sess.cfg.Limits.MaxInputBytes()
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Logger:        sess.providers.Logger,
				Metrics:       red,
				Tracer:        sess.providers.Tracer,
				MaxInputBytes: int(limit),
			})
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context())
		},
	}
}
