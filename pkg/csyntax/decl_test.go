package csyntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
)

// bodyDeclarations parses a function whose body holds decl and returns the
// declarations found at the top of its body.
func bodyDeclarations(t *testing.T, decl string) (*csyntax.Tree, []*csyntax.Declaration) {
	t.Helper()

	tree := mustParse(t, "void f(void) { "+decl+" }")
	fn := tree.FirstFunction()
	require.NotNil(t, fn)

	var decls []*csyntax.Declaration

	for _, item := range fn.Body().Items() {
		if d, ok := item.(*csyntax.Declaration); ok {
			decls = append(decls, d)
		}
	}

	return tree, decls
}

func TestRenderType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decl string
		want string
	}{
		{"int x;", "int"},
		{"int x = 1;", "int"},
		{"int *p;", "int *"},
		{"int **pp;", "int **"},
		{"const char *s;", "const char *"},
		{"unsigned int u;", "unsigned int"},
		{"unsigned long n;", "unsigned long"},
		{"volatile unsigned char v;", "volatile unsigned char"},
		{"static int s;", "int"},
		{"char buf[16];", "char [16]"},
		{"char grid[2][3];", "char [2][3]"},
		{"int *a[3];", "int *[3]"},
		{"int (*a)[3];", "int (*)[3]"},
		{"int * const cp;", "int * const"},
		{"struct point pt;", "struct point"},
		{"size_t n;", "size_t"},
		{"int a[N+1];", "int [N + 1]"},
		{"int b[ N +  1 ];", "int [N + 1]"},
		{"char c[sizeof(int)*2];", "char [sizeof(int) * 2]"},
		{"int d[N?2:3];", "int [N ? 2 : 3]"},
		{"int (*f)(int,char*);", "int (*)(int, char *)"},
		{"int (*g)( int a , char * b );", "int (*)(int a, char *b)"},
	}

	for _, tc := range tests {
		tree, decls := bodyDeclarations(t, tc.decl)
		require.Len(t, decls, 1, tc.decl)
		assert.Equal(t, tc.want, tree.RenderType(decls[0].Type()), tc.decl)
	}
}

func TestInnermost(t *testing.T) {
	t.Parallel()

	_, decls := bodyDeclarations(t, "int *p; int (*fp)(int); char buf[4];")
	require.Len(t, decls, 3)

	named, ok := csyntax.Innermost(decls[0].Type())
	require.True(t, ok)
	assert.Equal(t, "int", named.Specifier)

	_, ok = csyntax.Innermost(decls[1].Type())
	assert.False(t, ok)

	named, ok = csyntax.Innermost(decls[2].Type())
	require.True(t, ok)
	assert.Equal(t, "char", named.Specifier)
}

func TestDeclarations_SplitsDeclarators(t *testing.T) {
	t.Parallel()

	tree, decls := bodyDeclarations(t, "int a, *b, c[4];")
	require.Len(t, decls, 3)

	assert.Equal(t, "a", decls[0].Name())
	assert.Equal(t, "b", decls[1].Name())
	assert.Equal(t, "c", decls[2].Name())
	assert.Equal(t, decls[0].Node(), decls[2].Node())

	assert.Equal(t, "int", tree.RenderType(decls[0].Type()))
	assert.Equal(t, "int *", tree.RenderType(decls[1].Type()))
	assert.Equal(t, "int [4]", tree.RenderType(decls[2].Type()))

	assert.Same(t, decls[1], tree.Declarations(decls[1].Node())[1])
}

func TestDeclaration_StorageAndExtern(t *testing.T) {
	t.Parallel()

	_, decls := bodyDeclarations(t, "extern int e; static int s;")
	require.Len(t, decls, 2)

	assert.True(t, decls[0].IsExtern())
	assert.Equal(t, []string{"extern"}, decls[0].Storage())
	assert.False(t, decls[1].IsExtern())
}

func TestDeclaration_RenameUpdatesName(t *testing.T) {
	t.Parallel()

	tree, decls := bodyDeclarations(t, "int *p = 0;")
	require.Len(t, decls, 1)

	decls[0].Rename("s32_p_0")

	assert.Equal(t, "s32_p_0", decls[0].Name())
	assert.Equal(t, "void f(void) { int *s32_p_0 = 0; }", tree.String())
}
