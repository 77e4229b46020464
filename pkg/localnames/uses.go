package localnames

import "github.com/Sumatoshi-tech/varnorm/pkg/csyntax"

// UseIndex maps each local declaration to the identifier nodes that refer
// to it, in source order.
type UseIndex struct {
	refs       map[*csyntax.Declaration][]csyntax.NodeID
	redeclared map[*csyntax.Declaration]bool
}

// Uses returns the references resolved to decl.
func (u *UseIndex) Uses(decl *csyntax.Declaration) []csyntax.NodeID {
	return u.refs[decl]
}

// Count returns the number of references resolved to decl.
func (u *UseIndex) Count(decl *csyntax.Declaration) int {
	return len(u.refs[decl])
}

// Redeclared reports whether decl shares its scope with another declaration
// of the same name. Such names are left as written.
func (u *UseIndex) Redeclared(decl *csyntax.Declaration) bool {
	return u.redeclared[decl]
}

// IndexUses resolves every identifier reference in the body of fn against
// C block scoping: a name is visible from its declarator to the end of the
// enclosing block, and inner declarations hide outer ones. Parameters share
// the outermost block. References that resolve to a parameter, or to nothing
// declared in the function, belong to no local and are not recorded.
func IndexUses(tree *csyntax.Tree, fn *csyntax.Function, decls []*csyntax.Declaration) *UseIndex {
	r := &resolver{
		tree:   tree,
		locals: make(map[csyntax.NodeID]*csyntax.Declaration, len(decls)),
		index: &UseIndex{
			refs:       make(map[*csyntax.Declaration][]csyntax.NodeID, len(decls)),
			redeclared: make(map[*csyntax.Declaration]bool),
		},
	}

	for _, decl := range decls {
		if id := decl.NameNode(); id != csyntax.NoNode {
			r.locals[id] = decl
		}
	}

	outer := make(scope)
	for _, p := range fn.Parameters() {
		outer[p] = nil
	}

	r.scopes = []scope{outer}

	if body := fn.Body(); body != nil {
		for _, child := range tree.Node(body.Node()).Children {
			r.visit(child)
		}
	}

	return r.index
}

// scope binds names to local declarations. A nil binding is a name that is
// not a local: a parameter, an extern, a prototype or an enumerator.
type scope map[string]*csyntax.Declaration

type resolver struct {
	tree   *csyntax.Tree
	locals map[csyntax.NodeID]*csyntax.Declaration
	index  *UseIndex
	scopes []scope
}

func (r *resolver) visit(id csyntax.NodeID) {
	n := r.tree.Node(id)

	switch {
	case n.IsParameterList():
		return
	case n.DeclaresName():
		r.bind(n.Text, r.locals[id])

		return
	case n.IsReference():
		if decl := r.lookup(n.Text); decl != nil {
			r.index.refs[decl] = append(r.index.refs[decl], id)
		}

		return
	}

	if n.OpensScope() {
		r.scopes = append(r.scopes, make(scope))
		defer func() { r.scopes = r.scopes[:len(r.scopes)-1] }()
	}

	for _, child := range n.Children {
		r.visit(child)
	}
}

func (r *resolver) bind(name string, decl *csyntax.Declaration) {
	current := r.scopes[len(r.scopes)-1]

	if prev, ok := current[name]; ok {
		if prev != nil {
			r.index.redeclared[prev] = true
		}

		if decl != nil {
			r.index.redeclared[decl] = true
		}
	}

	current[name] = decl
}

func (r *resolver) lookup(name string) *csyntax.Declaration {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if decl, ok := r.scopes[i][name]; ok {
			return decl
		}
	}

	return nil
}
