package localnames_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
)

func itemNames(items []csyntax.BlockItem) []string {
	names := make([]string, 0, len(items))

	for _, item := range items {
		if d, ok := item.(*csyntax.Declaration); ok {
			names = append(names, d.Name())
		} else {
			names = append(names, "<stmt>")
		}
	}

	return names
}

func TestSortDeclarationRuns(t *testing.T) {
	t.Parallel()

	_, fn := parseFunction(t, "void f(void) { int c; int a; a = c; int b; int aa; }")

	sorted := localnames.SortDeclarationRuns(fn.Body().Items())
	assert.Equal(t, []string{"a", "c", "<stmt>", "aa", "b"}, itemNames(sorted))

	// The input slice is left alone.
	assert.Equal(t, []string{"c", "a", "<stmt>", "b", "aa"}, itemNames(fn.Body().Items()))
}

func TestRestructure_DropsDeletedEverywhere(t *testing.T) {
	t.Parallel()

	src := "void f(void) { int z; int dead; z = 1; { int inner; z++; } }"
	tree, fn := parseFunction(t, src)
	body := fn.Body()

	decls := localnames.CollectDeclarations(tree, body)
	require.Equal(t, []string{"z", "dead", "inner"}, declNames(decls))

	deleted := localnames.DeletionSet{decls[1]: {}, decls[2]: {}}
	removed := localnames.Restructure(tree, body, deleted)

	assert.Len(t, removed, 2)
	assert.Equal(t, "void f(void) { int z; z = 1; { z++; } }", tree.Emit(fn.Node()))
}

func TestRestructure_ForInitializerStays(t *testing.T) {
	t.Parallel()

	src := "void f(void) { for (int i = 0;;) { break; } }"
	tree, fn := parseFunction(t, src)

	decls := localnames.CollectDeclarations(tree, fn.Body())
	require.Len(t, decls, 1)

	removed := localnames.Restructure(tree, fn.Body(), localnames.DeletionSet{decls[0]: {}})

	assert.Empty(t, removed)
	assert.Equal(t, src, tree.Emit(fn.Node()))
}

func TestRewriter_RenamesDeclarationAndUses(t *testing.T) {
	t.Parallel()

	tree, fn := parseFunction(t, "void f(void) { unsigned int n; char *s; n = 0; s = 0; n++; }")

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	rewriter := localnames.NewRewriter(tree, nil)
	deleted, entries := rewriter.Rewrite(context.Background(), decls, uses)

	assert.Empty(t, deleted)
	require.Len(t, entries, 2)
	assert.Equal(t, "u32_0", entries[0].NewName)
	assert.Equal(t, "s8_p_0", entries[1].NewName)
	assert.Equal(t, 2, entries[0].Uses)
	assert.Equal(t, "u32_0", decls[0].Name())
	assert.Equal(t,
		"void f(void) { unsigned int u32_0; char *s8_p_0; u32_0 = 0; s8_p_0 = 0; u32_0++; }",
		tree.Emit(fn.Node()))
}

func TestRewriter_RedeclaredNamesKeepTheirNames(t *testing.T) {
	t.Parallel()

	tree, fn := parseFunction(t, "void f(void) { int i; int i; i = 0; }")

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	rewriter := localnames.NewRewriter(tree, nil)
	deleted, entries := rewriter.Rewrite(context.Background(), decls, uses)

	require.Len(t, entries, 2)
	assert.Equal(t, localnames.ActionDeleted, entries[0].Action)
	assert.Equal(t, localnames.ActionKept, entries[1].Action)
	assert.True(t, deleted.Has(decls[0]))
	assert.Equal(t, "i", decls[1].Name())
}
