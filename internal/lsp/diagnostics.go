package lsp

import (
	"context"
	"errors"
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/safeconv"
	"github.com/Sumatoshi-tech/varnorm/pkg/textutil"
)

const (
	diagnosticSource = "varnorm"
	normalizeTitle   = "Normalize local variables"
	codeUnusedLocal  = "unused-local"
	codeSyntaxError  = "syntax-error"
)

// diagnose returns one warning per unused local of the first function, or a
// single error when text does not parse. Text without a function yields no
// diagnostics.
func diagnose(ctx context.Context, conv *localnames.Converter, text string) []protocol.Diagnostic {
	result, err := conv.Analyze(ctx, "", text)
	if err != nil {
		return failureDiagnostics(text, err)
	}

	diags := make([]protocol.Diagnostic, 0, len(result.Report.Declarations))

	for _, entry := range result.Report.Unused() {
		diags = append(diags, newDiagnostic(
			lineRange(text, entry.Line),
			protocol.DiagnosticSeverityWarning,
			codeUnusedLocal,
			fmt.Sprintf("local variable %q (%s) is never used", entry.OriginalName, entry.Type),
		))
	}

	return diags
}

func failureDiagnostics(text string, err error) []protocol.Diagnostic {
	var synErr *csyntax.SyntaxError
	if !errors.As(err, &synErr) {
		return []protocol.Diagnostic{}
	}

	pos := position(text, synErr.Line, synErr.Column)

	return []protocol.Diagnostic{newDiagnostic(
		protocol.Range{Start: pos, End: pos},
		protocol.DiagnosticSeverityError,
		codeSyntaxError,
		synErr.Error(),
	)}
}

func newDiagnostic(rng protocol.Range, severity protocol.DiagnosticSeverity, code, msg string) protocol.Diagnostic {
	source := diagnosticSource

	return protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  msg,
	}
}

// lineRange spans the text of a 1-based line without its indentation.
func lineRange(text string, line int) protocol.Range {
	start, end, ok := textutil.LineBounds(text, line-1)
	if !ok {
		return protocol.Range{}
	}

	return protocol.Range{
		Start: position(text, line, start+1),
		End:   position(text, line, end+1),
	}
}

// position converts a 1-based line and byte column into an LSP position,
// whose character counts UTF-16 code units.
func position(text string, line, column int) protocol.Position {
	content, _ := textutil.Line(text, line-1)

	return protocol.Position{
		Line:      safeconv.ZeroBased(line),
		Character: safeconv.ClampToUint32(textutil.UTF16Column(content, column-1)),
	}
}

// offset converts an LSP position back into a byte offset of text.
func offset(text string, pos protocol.Position) (int, bool) {
	line := safeconv.Uint32ToInt(pos.Line)

	content, ok := textutil.Line(text, line)
	if !ok {
		return 0, false
	}

	return textutil.Offset(text, line, textutil.ByteColumn(content, safeconv.Uint32ToInt(pos.Character)))
}

// normalizeAction builds the code action replacing the first function with
// its converted text. It reports false when the document cannot be
// converted or is already normalized.
func normalizeAction(ctx context.Context, conv *localnames.Converter, uri, text string) (protocol.CodeAction, bool) {
	result, err := conv.Analyze(ctx, "", text)
	if err != nil {
		return protocol.CodeAction{}, false
	}

	rng := reportRange(text, result.Report.Range)
	if sliceRange(text, rng) == result.Output {
		return protocol.CodeAction{}, false
	}

	kind := protocol.CodeActionKindRefactorRewrite

	return protocol.CodeAction{
		Title: normalizeTitle,
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				uri: {{Range: rng, NewText: result.Output}},
			},
		},
	}, true
}

// reportRange converts the 1-based, end-exclusive report span into an LSP range.
func reportRange(text string, r localnames.Range) protocol.Range {
	return protocol.Range{
		Start: position(text, r.StartLine, r.StartColumn),
		End:   position(text, r.EndLine, r.EndColumn),
	}
}

// sliceRange returns the text covered by rng.
func sliceRange(text string, rng protocol.Range) string {
	start, okStart := offset(text, rng.Start)
	end, okEnd := offset(text, rng.End)

	if !okStart || !okEnd || start > end {
		return ""
	}

	return text[start:end]
}
