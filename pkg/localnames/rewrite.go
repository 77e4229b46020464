package localnames

import (
	"context"
	"log/slog"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
)

// DeletionSet holds the declarations to drop, by identity.
type DeletionSet map[*csyntax.Declaration]struct{}

// Has reports whether decl is marked for deletion.
func (s DeletionSet) Has(decl *csyntax.Declaration) bool {
	_, ok := s[decl]

	return ok
}

// Rewriter renames used declarations together with all of their references
// and marks unused ones for deletion.
type Rewriter struct {
	tree   *csyntax.Tree
	names  *NameSynthesizer
	logger *slog.Logger
}

// NewRewriter creates a rewriter for tree.
func NewRewriter(tree *csyntax.Tree, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Rewriter{
		tree:   tree,
		names:  NewNameSynthesizer(),
		logger: logger,
	}
}

// Rewrite processes decls in declaration order. It returns the deletion set
// and one report entry per declaration. Redeclared names are never renamed
// because their references cannot be told apart.
func (r *Rewriter) Rewrite(ctx context.Context, decls []*csyntax.Declaration, uses *UseIndex) (DeletionSet, []Entry) {
	deleted := make(DeletionSet)
	entries := make([]Entry, 0, len(decls))

	for _, decl := range decls {
		original := decl.Name()
		rendered := r.tree.RenderType(decl.Type())
		refs := uses.Uses(decl)

		entry := Entry{
			OriginalName: original,
			Type:         rendered,
			BaseToken:    BaseToken(rendered),
			Uses:         len(refs),
			Line:         decl.Line(),
		}

		switch {
		case len(refs) == 0:
			deleted[decl] = struct{}{}
			entry.Action = ActionDeleted

			r.logger.DebugContext(ctx, "local declaration unused", "name", original, "line", entry.Line)
		case uses.Redeclared(decl):
			entry.Action = ActionKept

			r.logger.DebugContext(ctx, "redeclared local left unrenamed", "name", original, "uses", len(refs))
		default:
			entry.NewName = r.names.Next(entry.BaseToken)
			entry.Action = ActionRenamed

			decl.Rename(entry.NewName)

			for _, ref := range refs {
				r.tree.SetText(ref, entry.NewName)
			}

			r.logger.DebugContext(ctx, "local renamed",
				"name", original, "new_name", entry.NewName, "uses", len(refs))
		}

		entries = append(entries, entry)
	}

	return deleted, entries
}
