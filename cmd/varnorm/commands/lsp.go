package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/varnorm/internal/lsp"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

// NewLSPCommand creates the language server command.
func NewLSPCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long: `Start a Language Server Protocol server on stdio. Open C documents get a
warning per unused local of their first function, and the "Normalize local
variables" code action rewrites that function.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := global.start(cmd, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer sess.close()

			conv, err := localnames.NewConverter(localnames.Options{
				Logger: sess.providers.Logger,
				Tracer: sess.providers.Tracer,
			})
			if err != nil {
				return err
			}

			srv, err := lsp.NewServer(conv, sess.providers.Logger)
			if err != nil {
				return err
			}

			return srv.Run()
		},
	}
}
