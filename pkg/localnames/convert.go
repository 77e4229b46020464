// Package localnames renames the local variables of a C function after
// their types, drops the unused ones and sorts each run of declarations by
// the new names.
package localnames

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
)

// Sentinel errors returned by Convert and Analyze.
var (
	// ErrParseFailure wraps the parser diagnostic for malformed input.
	ErrParseFailure = errors.New("parse failure")
	// ErrNoFunctionFound means the input parsed but holds no function definition.
	ErrNoFunctionFound = errors.New("no function definition found")
)

// Input region names used in parse diagnostics.
const (
	inputBase   = "base"
	inputSource = "source"
)

// Options configures a Converter.
type Options struct {
	// Logger receives debug records for every declaration. Nil means slog.Default().
	Logger *slog.Logger
	// Tracer opens a span per conversion. Nil disables tracing.
	Tracer trace.Tracer
}

// Converter runs the pass. It is safe for concurrent use: every call parses
// into its own tree and shares nothing but the parser pool.
type Converter struct {
	parser *csyntax.Parser
	logger *slog.Logger
	tracer trace.Tracer
}

// NewConverter creates a Converter.
func NewConverter(opts Options) (*Converter, error) {
	parser, err := csyntax.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create C parser: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return &Converter{parser: parser, logger: logger, tracer: tracer}, nil
}

var (
	defaultOnce      sync.Once
	defaultConverter *Converter
	errDefault       error
)

// Convert runs the pass with a shared default Converter.
func Convert(ctx context.Context, base, source string) (string, error) {
	defaultOnce.Do(func() {
		defaultConverter, errDefault = NewConverter(Options{})
	})

	if errDefault != nil {
		return "", errDefault
	}

	return defaultConverter.Convert(ctx, base, source)
}

// Convert parses base and source as one translation unit, transforms the
// first function definition and returns its text. On error no output is
// returned.
func (c *Converter) Convert(ctx context.Context, base, source string) (string, error) {
	result, err := c.Analyze(ctx, base, source)
	if err != nil {
		return "", err
	}

	return result.Output, nil
}

// Analyze is Convert that also reports what happened to each declaration.
func (c *Converter) Analyze(ctx context.Context, base, source string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "localnames.Convert",
		trace.WithAttributes(
			attribute.Int("varnorm.base.bytes", len(base)),
			attribute.Int("varnorm.source.bytes", len(source)),
		))
	defer span.End()

	result, err := c.analyze(ctx, base, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		attribute.String("varnorm.function", result.Report.Function),
		attribute.Int("varnorm.renamed", result.Report.Count(ActionRenamed)),
		attribute.Int("varnorm.deleted", result.Report.Count(ActionDeleted)),
	)

	return result, nil
}

func (c *Converter) analyze(ctx context.Context, base, source string) (*Result, error) {
	baseLines := strings.Count(base, "\n") + 1

	tree, err := c.parser.Parse(ctx, []byte(base+"\n"+source))
	if err != nil {
		return nil, parseFailure(err, baseLines)
	}

	fn := tree.FirstFunction()
	if fn == nil || fn.Body() == nil {
		return nil, ErrNoFunctionFound
	}

	body := fn.Body()
	decls := CollectDeclarations(tree, body)
	uses := IndexUses(tree, fn, decls)

	deleted, entries := NewRewriter(tree, c.logger).Rewrite(ctx, decls, uses)
	removed := Restructure(tree, body, deleted)

	for i, decl := range decls {
		entries[i].Line -= baseLines

		if entries[i].Action == ActionDeleted && !removed.Has(decl) {
			entries[i].Action = ActionKept
		}
	}

	startLine, startCol, endLine, endCol := fn.Range()

	report := Report{
		Function:     fn.Name(),
		Declarations: entries,
		Ambiguous:    redeclaredNames(decls, uses),
		Range: Range{
			StartLine:   startLine - baseLines,
			StartColumn: startCol,
			EndLine:     endLine - baseLines,
			EndColumn:   endCol,
		},
	}

	c.logger.DebugContext(ctx, "function converted",
		"function", report.Function,
		"declarations", len(entries),
		"renamed", report.Count(ActionRenamed),
		"deleted", report.Count(ActionDeleted))

	return &Result{Output: tree.Emit(fn.Node()), Report: report}, nil
}

// parseFailure wraps a parser error, pointing its position at the base or
// source text instead of the combined unit.
func parseFailure(err error, baseLines int) error {
	var synErr *csyntax.SyntaxError
	if errors.As(err, &synErr) {
		if synErr.Line > baseLines {
			synErr.Input = inputSource
			synErr.Line -= baseLines
		} else {
			synErr.Input = inputBase
		}
	}

	return fmt.Errorf("%w: %w", ErrParseFailure, err)
}

// redeclaredNames returns the sorted names of locals declared twice in one
// scope.
func redeclaredNames(decls []*csyntax.Declaration, uses *UseIndex) []string {
	var names []string

	for _, decl := range decls {
		if uses.Redeclared(decl) {
			names = append(names, decl.Name())
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}
