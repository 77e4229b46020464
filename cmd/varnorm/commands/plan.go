package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

// Plan output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

// NewPlanCommand creates the plan command.
func NewPlanCommand(global *GlobalOptions) *cobra.Command {
	var (
		basePath string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "plan [file]",
		Short: "Show what convert would do to each local declaration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("%w: %q", errUnknownFormat, format)
			}

			sess, err := global.start(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			name := stdinName
			if len(args) == 1 {
				name = args[0]
			}

			in, err := readInput(name, cmd.InOrStdin())
			if err != nil {
				return err
			}

			base, err := readBase(basePath)
			if err != nil {
				return err
			}

			warnIfNotC(sess.providers.Logger, in)

			conv, err := localnames.NewConverter(localnames.Options{
				Logger: sess.providers.Logger,
				Tracer: sess.providers.Tracer,
			})
			if err != nil {
				return err
			}

			result, err := conv.Analyze(cmd.Context(), base, in.text)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			return writePlan(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&basePath, "base", "b", "", "file of declarations the input depends on")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")

	return cmd
}

func writePlan(w io.Writer, format string, result *localnames.Result) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(result.Report); err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(w)

		if err := enc.Encode(result.Report); err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
	default:
		return writePlanTable(w, &result.Report)
	}

	return nil
}

func writePlanTable(w io.Writer, report *localnames.Report) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("function " + report.Function)
	tbl.AppendHeader(table.Row{"Line", "Name", "Type", "Base", "Uses", "Action", "New name"})

	for _, e := range report.Declarations {
		tbl.AppendRow(table.Row{e.Line, e.OriginalName, e.Type, e.BaseToken, e.Uses, string(e.Action), e.NewName})
	}

	tbl.AppendFooter(table.Row{
		"", "", "", "", "",
		strconv.Itoa(report.Count(localnames.ActionRenamed)) + " renamed",
		strconv.Itoa(report.Count(localnames.ActionDeleted)) + " deleted",
	})
	tbl.Render()

	if len(report.Ambiguous) > 0 {
		if _, err := fmt.Fprintf(w, "left unrenamed (declared more than once): %v\n", report.Ambiguous); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}

	return nil
}
