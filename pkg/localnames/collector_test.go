package localnames_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
)

func parseFunction(t *testing.T, src string) (*csyntax.Tree, *csyntax.Function) {
	t.Helper()

	parser, err := csyntax.NewParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	fn := tree.FirstFunction()
	require.NotNil(t, fn)

	return tree, fn
}

func declNames(decls []*csyntax.Declaration) []string {
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name())
	}

	return names
}

func TestCollectDeclarations(t *testing.T) {
	t.Parallel()

	src := `void f(int p) {
    int a, *b;
    int (*fp)(void);
    int proto(int);
    extern int e;
    char s[2];
    {
        int nested;
    }
    for (int i = 0; i < 1; i++) {
    }
    static int st;
}`
	tree, fn := parseFunction(t, src)

	decls := localnames.CollectDeclarations(tree, fn.Body())
	assert.Equal(t, []string{"a", "b", "s", "nested", "i", "st"}, declNames(decls))
}

func TestCollectDeclarations_EmptyBody(t *testing.T) {
	t.Parallel()

	tree, fn := parseFunction(t, "void f(void) { }")

	assert.Empty(t, localnames.CollectDeclarations(tree, fn.Body()))
}

// declNamed returns the declarations named name in collection order.
func declNamed(decls []*csyntax.Declaration, name string) []*csyntax.Declaration {
	var out []*csyntax.Declaration

	for _, d := range decls {
		if d.Name() == name {
			out = append(out, d)
		}
	}

	return out
}

func TestIndexUses(t *testing.T) {
	t.Parallel()

	src := `void f(void) {
    int a;
    int b = a;
    int unused;
    struct s *p;
    p->a = b;
    if (a > b) { a = b + 1; }
    while (p) p = 0;
}`
	tree, fn := parseFunction(t, src)

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	a := declNamed(decls, "a")[0]

	assert.Equal(t, 3, uses.Count(a))
	assert.Equal(t, 3, uses.Count(declNamed(decls, "b")[0]))
	assert.Equal(t, 3, uses.Count(declNamed(decls, "p")[0]))
	assert.Zero(t, uses.Count(declNamed(decls, "unused")[0]))

	for _, id := range uses.Uses(a) {
		assert.Equal(t, "a", tree.Text(id))
	}
}

func TestIndexUses_IgnoresLabelsAndMembers(t *testing.T) {
	t.Parallel()

	src := "void f(void) { struct s v; int x; x = 0; x: v.x = 1; goto x; }"
	tree, fn := parseFunction(t, src)

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	assert.Equal(t, 1, uses.Count(declNamed(decls, "x")[0]))
	assert.Equal(t, 1, uses.Count(declNamed(decls, "v")[0]))
}

func TestIndexUses_BlockScoping(t *testing.T) {
	t.Parallel()

	src := `void f(int n) {
    int x;
    x = g + n;
    {
        x = 1;
        int x;
        x = 2;
        int g;
        g = x;
    }
    {
        extern int x;
        x = 3;
    }
    for (int x = 0; x < n; x++) { }
    x = 4;
}`
	tree, fn := parseFunction(t, src)

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	xs := declNamed(decls, "x")
	require.Len(t, xs, 3)

	// The outer x: its own block, and the inner block before the shadowing declarator.
	assert.Equal(t, 3, uses.Count(xs[0]))
	// The block-local x: its assignment and the read into g.
	assert.Equal(t, 2, uses.Count(xs[1]))
	// The loop variable: condition and increment.
	assert.Equal(t, 2, uses.Count(xs[2]))

	// The global g before the block, then the local g.
	assert.Equal(t, 1, uses.Count(declNamed(decls, "g")[0]))

	for _, d := range decls {
		assert.False(t, uses.Redeclared(d), d.Name())
	}
}

func TestIndexUses_RedeclaredInOneScope(t *testing.T) {
	t.Parallel()

	tree, fn := parseFunction(t, "void f(int a) { int i; int i; i = 0; int a; a = 1; }")

	decls := localnames.CollectDeclarations(tree, fn.Body())
	uses := localnames.IndexUses(tree, fn, decls)

	is := declNamed(decls, "i")
	require.Len(t, is, 2)
	assert.True(t, uses.Redeclared(is[0]))
	assert.True(t, uses.Redeclared(is[1]))
	assert.Zero(t, uses.Count(is[0]))
	assert.Equal(t, 1, uses.Count(is[1]))

	// Parameters share the outermost block.
	assert.True(t, uses.Redeclared(declNamed(decls, "a")[0]))
}
