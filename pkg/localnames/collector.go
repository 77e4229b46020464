package localnames

import "github.com/Sumatoshi-tech/varnorm/pkg/csyntax"

// CollectDeclarations returns the local variable declarations of body in the
// order their statements appear, nested blocks and for-loop initializers
// included. A declaration qualifies when its type, stripped of pointer and
// array layers, is a named type. Function declarators and extern
// declarations do not qualify.
func CollectDeclarations(tree *csyntax.Tree, body *csyntax.Block) []*csyntax.Declaration {
	var decls []*csyntax.Declaration

	collectBlock(tree, body, &decls)

	return decls
}

func collectBlock(tree *csyntax.Tree, block *csyntax.Block, out *[]*csyntax.Declaration) {
	for _, item := range block.Items() {
		switch it := item.(type) {
		case *csyntax.Declaration:
			collectDeclaration(tree, it, out)
		case *csyntax.Statement:
			collectNode(tree, it.Node(), out)
		}
	}
}

func collectDeclaration(tree *csyntax.Tree, decl *csyntax.Declaration, out *[]*csyntax.Declaration) {
	if isLocal(decl) {
		*out = append(*out, decl)
	}

	// Initializers can hold statement expressions with their own blocks.
	if decl.Declarator() != csyntax.NoNode {
		collectNode(tree, decl.Declarator(), out)
	}
}

func collectNode(tree *csyntax.Tree, id csyntax.NodeID, out *[]*csyntax.Declaration) {
	if block := tree.Block(id); block != nil {
		collectBlock(tree, block, out)

		return
	}

	if decls := tree.Declarations(id); decls != nil {
		for _, decl := range decls {
			collectDeclaration(tree, decl, out)
		}

		return
	}

	for _, child := range tree.Node(id).Children {
		collectNode(tree, child, out)
	}
}

func isLocal(decl *csyntax.Declaration) bool {
	if decl.Name() == "" || decl.IsExtern() {
		return false
	}

	_, ok := csyntax.Innermost(decl.Type())

	return ok
}
