package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/varnorm/internal/server"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

// NewServeCommand creates the serve command.
func NewServeCommand(global *GlobalOptions) *cobra.Command {
	var (
		port      int
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long: `Serve POST /api/convert (alias /convert) and POST /api/plan, plus
/healthz, /readyz and /metrics. Settings come from the config file; flags
override the port and static directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := global.start(cmd, observability.ModeServe)
			if err != nil {
				return err
			}
			defer sess.close()

			if cmd.Flags().Changed("port") {
				sess.cfg.Server.Port = port
			}

			if cmd.Flags().Changed("static") {
				sess.cfg.Server.StaticDir = staticDir
			}

			limit, err := sess.cfg.Limits.MaxInputBytes()
			if err != nil {
				return err
			}

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			conv, err := localnames.NewConverter(localnames.Options{
				Logger: sess.providers.Logger,
				Tracer: sess.providers.Tracer,
			})
			if err != nil {
				return err
			}

			srv, err := server.New(server.Options{
				Converter:      conv,
				Logger:         sess.providers.Logger,
				Tracer:         sess.providers.Tracer,
				Metrics:        red,
				MetricsHandler: sess.providers.MetricsHandler,
				StaticDir:      sess.cfg.Server.StaticDir,
				MaxInputBytes:  limit,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, sess.cfg.Server)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on")
	cmd.Flags().StringVarP(&staticDir, "static", "s", "", "directory of static files served at /")

	return cmd
}
