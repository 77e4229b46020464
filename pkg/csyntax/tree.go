// Package csyntax parses C translation units with the tree-sitter C grammar
// into an index-addressed syntax tree that can be edited in place and emitted
// back to C source text.
package csyntax

import "strings"

// NodeID addresses a node inside a Tree. IDs are stable for the lifetime of the tree.
type NodeID int32

// NoNode is the zero handle returned when a lookup finds nothing.
const NoNode NodeID = -1

// Role marks what an identifier-like node stands for at its position in the tree.
type Role uint8

const (
	// RoleNone is an ordinary node. Identifiers with this role are references.
	RoleNone Role = iota
	// RoleDeclarator marks nodes in declarator position. An identifier leaf with
	// this role is the name being declared.
	RoleDeclarator
	// RoleName marks identifiers that name something without referring to a
	// variable (enumerators, macro names).
	RoleName
)

// Tree-sitter node types the package inspects.
const (
	typeIdentifier      = "identifier"
	typeComment         = "comment"
	typeDeclaration     = "declaration"
	typeCompound        = "compound_statement"
	typeForStatement    = "for_statement"
	typeFunctionDef     = "function_definition"
	typeInitDeclarator  = "init_declarator"
	typePointerDecl     = "pointer_declarator"
	typeArrayDecl       = "array_declarator"
	typeFunctionDecl    = "function_declarator"
	typeParenDecl       = "parenthesized_declarator"
	typeAttributedDecl  = "attributed_declarator"
	typeTypeQualifier   = "type_qualifier"
	typeStorageClass    = "storage_class_specifier"
	typeParameterList   = "parameter_list"
	typePreprocParams   = "preproc_params"
	typeTypeIdentifier  = "type_identifier"
	typeStructSpecifier = "struct_specifier"
	typeUnionSpecifier  = "union_specifier"
	typeEnumSpecifier   = "enum_specifier"
	typePrimitive       = "primitive_type"
	typeSizedSpecifier  = "sized_type_specifier"
	typeMacroTypeSpec   = "macro_type_specifier"
	typeErrorNode       = "ERROR"
	typeEnumerator      = "enumerator"
	typePreprocDef      = "preproc_def"
	typePreprocFuncDef  = "preproc_function_def"
	typeParameterDecl   = "parameter_declaration"
	typeOpenBrace       = "{"
	typeCloseBrace      = "}"
	storageExtern       = "extern"
	fieldDeclarator     = "declarator"
	fieldType           = "type"
	fieldName           = "name"
)

var declaratorTypes = map[string]bool{
	typeIdentifier:     true,
	typeInitDeclarator: true,
	typePointerDecl:    true,
	typeArrayDecl:      true,
	typeFunctionDecl:   true,
	typeParenDecl:      true,
	typeAttributedDecl: true,
}

var specifierTypes = map[string]bool{
	typePrimitive:       true,
	typeSizedSpecifier:  true,
	typeTypeIdentifier:  true,
	typeStructSpecifier: true,
	typeUnionSpecifier:  true,
	typeEnumSpecifier:   true,
	typeMacroTypeSpec:   true,
}

// Node is one syntax node in the arena. Leaves carry their current text;
// inner nodes are emitted from their children and the source between them.
type Node struct {
	Type      string
	Text      string
	Children  []NodeID
	Start     int
	End       int
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Role      Role
	Named     bool
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsReference reports whether the node is an identifier used as an expression.
func (n Node) IsReference() bool {
	return n.Type == typeIdentifier && n.Role == RoleNone
}

// DeclaresName reports whether the node is an identifier that introduces a
// name in its scope: a declarator name, an enumerator or a macro name.
func (n Node) DeclaresName() bool {
	return n.Type == typeIdentifier && n.Role != RoleNone
}

// OpensScope reports whether the node starts a block scope. A for statement
// scopes the declaration in its initializer.
func (n Node) OpensScope() bool {
	return n.Type == typeCompound || n.Type == typeForStatement
}

// IsParameterList reports whether the node is a prototype or macro
// parameter list. Names in it do not belong to the enclosing block.
func (n Node) IsParameterList() bool {
	return n.Type == typeParameterList || n.Type == typePreprocParams
}

// Tree is a parsed translation unit held as an arena of nodes.
// A Tree is not safe for concurrent use; each conversion owns its own tree.
type Tree struct {
	src    []byte
	nodes  []Node
	root   NodeID
	decls  map[NodeID][]*Declaration
	blocks map[NodeID]*Block
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.src
}

// Root returns the translation unit node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node addressed by id.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Text returns the current text of a leaf node.
func (t *Tree) Text(id NodeID) string {
	return t.nodes[id].Text
}

// SetText replaces the text of a leaf node. Inner nodes are left untouched.
func (t *Tree) SetText(id NodeID, text string) {
	if !t.nodes[id].IsLeaf() {
		return
	}

	t.nodes[id].Text = text
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}

	for _, child := range t.nodes[id].Children {
		t.Walk(child, fn)
	}
}

// TopLevel returns the definitions of the translation unit in source order,
// comments excluded.
func (t *Tree) TopLevel() []NodeID {
	var defs []NodeID

	for _, child := range t.nodes[t.root].Children {
		if t.nodes[child].Type == typeComment {
			continue
		}

		defs = append(defs, child)
	}

	return defs
}

// FirstFunction returns the first function definition among the top-level
// definitions, or nil when there is none.
func (t *Tree) FirstFunction() *Function {
	for _, def := range t.TopLevel() {
		if t.nodes[def].Type == typeFunctionDef {
			return &Function{tree: t, id: def}
		}
	}

	return nil
}

// Functions returns every top-level function definition in source order.
func (t *Tree) Functions() []*Function {
	var fns []*Function

	for _, def := range t.TopLevel() {
		if t.nodes[def].Type == typeFunctionDef {
			fns = append(fns, &Function{tree: t, id: def})
		}
	}

	return fns
}

// childWithRole returns the first child of id carrying role.
func (t *Tree) childWithRole(id NodeID, role Role) NodeID {
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Role == role {
			return child
		}
	}

	return NoNode
}

// childOfType returns the first child of id with the given tree-sitter type.
func (t *Tree) childOfType(id NodeID, typ string) NodeID {
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Type == typ {
			return child
		}
	}

	return NoNode
}

// declName follows a declarator chain down to the declared identifier.
func (t *Tree) declName(id NodeID) NodeID {
	for id != NoNode {
		if t.nodes[id].Type == typeIdentifier {
			return id
		}

		id = t.childWithRole(id, RoleDeclarator)
	}

	return NoNode
}

// normalizedText returns the emitted text of id with runs of whitespace
// collapsed to single spaces.
func (t *Tree) normalizedText(id NodeID) string {
	return strings.Join(strings.Fields(t.Emit(id)), " ")
}

// Function is a function definition in the tree.
type Function struct {
	tree *Tree
	id   NodeID
}

// Node returns the function_definition node.
func (f *Function) Node() NodeID {
	return f.id
}

// Name returns the declared function name.
func (f *Function) Name() string {
	declarator := f.tree.childWithRole(f.id, RoleDeclarator)

	name := f.tree.declName(declarator)
	if name == NoNode {
		return ""
	}

	return f.tree.nodes[name].Text
}

// Line returns the 1-based line the definition starts on.
func (f *Function) Line() int {
	return f.tree.nodes[f.id].Line
}

// Parameters returns the names of the function's named parameters in order.
func (f *Function) Parameters() []string {
	t := f.tree

	var names []string

	for id := t.childWithRole(f.id, RoleDeclarator); id != NoNode; id = t.childWithRole(id, RoleDeclarator) {
		if t.nodes[id].Type != typeFunctionDecl {
			continue
		}

		params := t.childOfType(id, typeParameterList)
		if params == NoNode {
			break
		}

		for _, p := range t.nodes[params].Children {
			if t.nodes[p].Type != typeParameterDecl {
				continue
			}

			if name := t.declName(t.childWithRole(p, RoleDeclarator)); name != NoNode {
				names = append(names, t.nodes[name].Text)
			}
		}

		break
	}

	return names
}

// Range returns the 1-based start and end positions of the definition.
func (f *Function) Range() (startLine, startCol, endLine, endCol int) {
	n := f.tree.nodes[f.id]

	return n.Line, n.Column, n.EndLine, n.EndColumn
}

// Body returns the function's compound statement.
func (f *Function) Body() *Block {
	body := f.tree.childOfType(f.id, typeCompound)
	if body == NoNode {
		return nil
	}

	return f.tree.Block(body)
}
