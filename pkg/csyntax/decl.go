package csyntax

import "slices"

// TypeExpr is the type of a declared entity: a chain of pointer, array and
// function modifiers ending in a NamedType. It is one of *NamedType,
// *PointerTo, *ArrayOf or *FunctionOf.
type TypeExpr interface {
	typeExpr()
}

// NamedType is the innermost element of a type chain. DeclName addresses the
// identifier leaf that carries the declared name, or NoNode for abstract types.
type NamedType struct {
	Qualifiers []string
	Specifier  string
	DeclName   NodeID
}

// PointerTo is a pointer to Elem.
type PointerTo struct {
	Elem       TypeExpr
	Qualifiers []string
}

// ArrayOf is an array of Elem. Size addresses the dimension expression, or
// NoNode when the dimension is omitted.
type ArrayOf struct {
	Elem TypeExpr
	Size NodeID
}

// FunctionOf is a function returning Elem. Params addresses the parameter list.
type FunctionOf struct {
	Elem   TypeExpr
	Params NodeID
}

func (*NamedType) typeExpr()  {}
func (*PointerTo) typeExpr()  {}
func (*ArrayOf) typeExpr()    {}
func (*FunctionOf) typeExpr() {}

// Innermost strips pointer and array layers and returns the named type they
// wrap. It returns false when a function layer is reached first.
func Innermost(t TypeExpr) (*NamedType, bool) {
	for {
		switch v := t.(type) {
		case *NamedType:
			return v, true
		case *PointerTo:
			t = v.Elem
		case *ArrayOf:
			t = v.Elem
		default:
			return nil, false
		}
	}
}

// Declaration is one declared name. A declaration statement with several
// declarators yields one Declaration per declarator, all sharing Node().
type Declaration struct {
	tree       *Tree
	typ        TypeExpr
	storage    []string
	stmt       NodeID
	declarator NodeID
	name       NodeID
	split      bool
}

func (*Declaration) blockItem() {}

// Node returns the declaration statement node.
func (d *Declaration) Node() NodeID {
	return d.stmt
}

// Declarator returns the top-level declarator node of this declaration.
func (d *Declaration) Declarator() NodeID {
	return d.declarator
}

// Name returns the declared name as it currently reads in the tree.
// Declarations without a declarator have an empty name.
func (d *Declaration) Name() string {
	if d.name == NoNode {
		return ""
	}

	return d.tree.nodes[d.name].Text
}

// NameNode returns the identifier leaf carrying the declared name, or NoNode.
func (d *Declaration) NameNode() NodeID {
	return d.name
}

// Rename changes the declared name in place.
func (d *Declaration) Rename(name string) {
	if d.name == NoNode {
		return
	}

	d.tree.SetText(d.name, name)
}

// Type returns the declared type.
func (d *Declaration) Type() TypeExpr {
	return d.typ
}

// Storage returns the storage-class specifiers of the declaration.
func (d *Declaration) Storage() []string {
	return d.storage
}

// IsExtern reports whether the declaration refers to an object defined elsewhere.
func (d *Declaration) IsExtern() bool {
	return slices.Contains(d.storage, storageExtern)
}

// Line returns the 1-based line of the declared name, falling back to the
// statement line for declarator-less declarations.
func (d *Declaration) Line() int {
	if d.name != NoNode {
		return d.tree.nodes[d.name].Line
	}

	return d.tree.nodes[d.stmt].Line
}

// Statement is any block item that is not a declaration.
type Statement struct {
	tree *Tree
	id   NodeID
}

func (*Statement) blockItem() {}

// Node returns the statement node.
func (s *Statement) Node() NodeID {
	return s.id
}

// Line returns the 1-based line the statement starts on.
func (s *Statement) Line() int {
	return s.tree.nodes[s.id].Line
}

// Declarations returns the declarations introduced by a declaration statement,
// one per declarator. Results are cached so repeated calls return the same
// values. Any other node yields nil.
func (t *Tree) Declarations(stmt NodeID) []*Declaration {
	if decls, ok := t.decls[stmt]; ok {
		return decls
	}

	if t.nodes[stmt].Type != typeDeclaration {
		return nil
	}

	decls := t.buildDeclarations(stmt)
	t.decls[stmt] = decls

	return decls
}

func (t *Tree) buildDeclarations(stmt NodeID) []*Declaration {
	base := &NamedType{DeclName: NoNode}

	var (
		storage     []string
		declarators []NodeID
	)

	for _, child := range t.nodes[stmt].Children {
		n := t.nodes[child]

		switch {
		case n.Role == RoleDeclarator:
			declarators = append(declarators, child)
		case len(declarators) > 0:
			continue
		case n.Type == typeTypeQualifier:
			base.Qualifiers = append(base.Qualifiers, t.normalizedText(child))
		case n.Type == typeStorageClass:
			storage = append(storage, t.normalizedText(child))
		case specifierTypes[n.Type] && base.Specifier == "":
			base.Specifier = t.specifierText(child)
		}
	}

	if len(declarators) == 0 {
		return []*Declaration{{
			tree:       t,
			typ:        base,
			storage:    storage,
			stmt:       stmt,
			declarator: NoNode,
			name:       NoNode,
		}}
	}

	decls := make([]*Declaration, 0, len(declarators))

	for _, declarator := range declarators {
		named := &NamedType{
			Qualifiers: base.Qualifiers,
			Specifier:  base.Specifier,
			DeclName:   t.declName(declarator),
		}

		decls = append(decls, &Declaration{
			tree:       t,
			typ:        t.wrapDeclarator(named, declarator),
			storage:    storage,
			stmt:       stmt,
			declarator: declarator,
			name:       named.DeclName,
			split:      len(declarators) > 1,
		})
	}

	return decls
}

// specifierText renders a type specifier. Aggregate specifiers render as their
// keyword and tag, without the member list.
func (t *Tree) specifierText(id NodeID) string {
	n := t.nodes[id]

	switch n.Type {
	case typeStructSpecifier, typeUnionSpecifier, typeEnumSpecifier:
		keyword := t.nodes[n.Children[0]].Text

		tag := t.childOfType(id, typeTypeIdentifier)
		if tag == NoNode {
			return keyword
		}

		return keyword + " " + t.nodes[tag].Text
	default:
		return t.normalizedText(id)
	}
}

// wrapDeclarator builds the type chain for a declarator. Walking the
// declarator from the outside in visits the modifiers innermost type first,
// so each layer wraps what has been built so far.
func (t *Tree) wrapDeclarator(named *NamedType, declarator NodeID) TypeExpr {
	var typ TypeExpr = named

	for id := declarator; id != NoNode; id = t.childWithRole(id, RoleDeclarator) {
		n := t.nodes[id]

		switch n.Type {
		case typePointerDecl:
			ptr := &PointerTo{Elem: typ}

			for _, child := range n.Children {
				if t.nodes[child].Type == typeTypeQualifier {
					ptr.Qualifiers = append(ptr.Qualifiers, t.normalizedText(child))
				}
			}

			typ = ptr
		case typeArrayDecl:
			arr := &ArrayOf{Elem: typ, Size: NoNode}

			for _, child := range n.Children {
				c := t.nodes[child]
				if c.Named && c.Role == RoleNone && c.Type != typeTypeQualifier {
					arr.Size = child
				}
			}

			typ = arr
		case typeFunctionDecl:
			typ = &FunctionOf{Elem: typ, Params: t.childOfType(id, typeParameterList)}
		case typeIdentifier:
			return typ
		}
	}

	return typ
}
