// Package lsp serves unused-local diagnostics and a local variable
// normalization code action for C documents over the Language Server
// Protocol.
package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
	"github.com/Sumatoshi-tech/varnorm/pkg/version"
)

const serverName = "varnorm"

const methodPublishDiagnostics = "textDocument/publishDiagnostics"

// Server is the varnorm language server.
type Server struct {
	store     *DocumentStore
	converter *localnames.Converter
	logger    *slog.Logger
	handler   protocol.Handler
}

// NewServer creates a language server. A nil converter gets a default one.
func NewServer(converter *localnames.Converter, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if converter == nil {
		var err error

		converter, err = localnames.NewConverter(localnames.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
	}

	srv := &Server{store: NewDocumentStore(), converter: converter, logger: logger}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCodeAction: srv.codeAction,
	}

	return srv, nil
}

// Run serves on stdio until the client exits.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	if err := lspServer.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	ver := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &ver,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.store.Set(params.TextDocument.URI, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, params.TextDocument.URI)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	text, ok := latestText(params.ContentChanges)
	if !ok {
		return nil
	}

	srv.store.Set(params.TextDocument.URI, text)
	srv.publishDiagnostics(ctx, params.TextDocument.URI)

	return nil
}

// latestText returns the last whole-document change. Full sync is
// advertised, so ranged changes are not expected.
func latestText(changes []any) (string, bool) {
	for i := len(changes) - 1; i >= 0; i-- {
		switch change := changes[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case map[string]any:
			if text, ok := change["text"].(string); ok {
				return text, true
			}
		}
	}

	return "", false
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		srv.store.Set(params.TextDocument.URI, *params.Text)
	}

	if _, ok := srv.store.Get(params.TextDocument.URI); ok {
		srv.publishDiagnostics(ctx, params.TextDocument.URI)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	text, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // no document means no actions.
	}

	action, ok := normalizeAction(context.Background(), srv.converter, params.TextDocument.URI, text)
	if !ok {
		return []protocol.CodeAction{}, nil
	}

	return []protocol.CodeAction{action}, nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	diags := diagnose(context.Background(), srv.converter, text)

	srv.logger.Debug("publishing diagnostics", "uri", uri, "count", len(diags))

	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}
