package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

var (
	errWriteStdin = errors.New("--write cannot be used with stdin")
	errSplice     = errors.New("converted function does not map back onto the input")
)

type convertOptions struct {
	basePath string
	diff     bool
	write    bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(global *GlobalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Normalize local variables of the first function in each file",
		Long: `Convert each file (or stdin when no file or "-" is given) and print the
converted function. Files are converted concurrently; output keeps argument
order. --base names a file of typedefs and globals prepended to every input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.start(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			return runConvert(cmd, sess, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.basePath, "base", "b", "", "file of declarations the inputs depend on")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "print a diff instead of the converted function")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite the converted function in place in each file")

	return cmd
}

func runConvert(cmd *cobra.Command, sess *session, opts *convertOptions, args []string) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	if opts.write && slices.Contains(args, stdinName) {
		return errWriteStdin
	}

	logger := sess.providers.Logger

	conv, err := localnames.NewConverter(localnames.Options{Logger: logger, Tracer: sess.providers.Tracer})
	if err != nil {
		return err
	}

	base, err := readBase(opts.basePath)
	if err != nil {
		return err
	}

	limit, err := sess.cfg.Limits.MaxInputBytes()
	if err != nil {
		return err
	}

	results := make([]*localnames.Result, len(args))
	inputs := make([]input, len(args))

	group, ctx := errgroup.WithContext(cmd.Context())
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range args {
		group.Go(func() error {
			in, readErr := readInput(name, cmd.InOrStdin())
			if readErr != nil {
				return readErr
			}

			if int64(len(base)+len(in.text)) > limit {
				return fmt.Errorf("%s: input exceeds %d bytes", name, limit)
			}

			warnIfNotC(logger, in)

			result, convErr := conv.Analyze(ctx, base, in.text)
			if convErr != nil {
				return fmt.Errorf("%s: %w", name, convErr)
			}

			inputs[i], results[i] = in, result

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	return emitResults(cmd.Context(), cmd.OutOrStdout(), sess, opts, inputs, results)
}

func emitResults(
	ctx context.Context, w io.Writer, sess *session, opts *convertOptions, inputs []input, results []*localnames.Result,
) error {
	for i, in := range inputs {
		result := results[i]
		out := result.Output

		switch {
		case opts.write:
			spliced, ok := result.Splice(in.text)
			if !ok {
				return fmt.Errorf("%s: %w", in.name, errSplice)
			}

			if err := os.WriteFile(in.name, []byte(spliced), 0o644); err != nil { //nolint:gosec // source files are world-readable
				return fmt.Errorf("write %s: %w", in.name, err)
			}

			sess.providers.Logger.InfoContext(ctx, "file converted", "file", in.name, "function", result.Report.Function)
		case opts.diff:
			spliced, ok := result.Splice(in.text)
			if !ok {
				return fmt.Errorf("%s: %w", in.name, errSplice)
			}

			if err := writeLineDiff(w, in.name, in.text, spliced); err != nil {
				return err
			}
		default:
			if len(inputs) > 1 {
				if _, err := fmt.Fprintf(w, "==> %s <==\n", in.name); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			if _, err := fmt.Fprintln(w, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}

	return nil
}
