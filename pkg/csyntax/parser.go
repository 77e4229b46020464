package csyntax

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/c"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for the parser.
var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax    = errors.New("syntax error")
	errNoRoot    = errors.New("csyntax: no root node")
	errPoolType  = errors.New("csyntax: pool returned unexpected type")
	errNoGrammar = errors.New("csyntax: C grammar not available")
)

// nearLimit caps the length of the offending text quoted in a SyntaxError.
const nearLimit = 24

// SyntaxError describes the first malformed region found in a translation unit.
type SyntaxError struct {
	// Input names the region of the text the position refers to. Empty means
	// the whole parsed text.
	Input  string
	Near   string
	Line   int
	Column int
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("syntax error in %s at line %d, column %d near %q", e.Input, e.Line, e.Column, e.Near)
	}

	return fmt.Sprintf("syntax error at line %d, column %d near %q", e.Line, e.Column, e.Near)
}

// Is makes errors.Is(err, ErrSyntax) hold for every SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Parser turns C source text into Trees. A Parser is safe for concurrent use;
// tree-sitter parsers are pooled and each Parse call gets its own.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a parser for the C grammar.
func NewParser() (*Parser, error) {
	lang := sitter.NewLanguage(c.GetLanguage())
	if lang == nil {
		return nil, errNoGrammar
	}

	parser := &Parser{}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// Parse parses src into a Tree. Input containing any syntax error or missing
// token is rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("csyntax: failed to parse: %w", err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, errNoRoot
	}

	b := &builder{src: src}
	rootID := b.build(root, RoleNone, true)

	if b.syntaxErr != nil {
		return nil, b.syntaxErr
	}

	return &Tree{
		src:    src,
		nodes:  b.nodes,
		root:   rootID,
		decls:  make(map[NodeID][]*Declaration),
		blocks: make(map[NodeID]*Block),
	}, nil
}

// builder copies a tree-sitter tree into the arena, tagging declarator
// positions on the way down.
type builder struct {
	syntaxErr *SyntaxError
	src       []byte
	nodes     []Node
}

func (b *builder) build(ts sitter.Node, role Role, isRoot bool) NodeID {
	id := NodeID(len(b.nodes))
	start := int(ts.StartByte()) //nolint:gosec // byte offsets fit in int
	end := int(ts.EndByte())     //nolint:gosec // byte offsets fit in int
	startPt := ts.StartPoint()
	endPt := ts.EndPoint()

	b.nodes = append(b.nodes, Node{
		Type:      ts.Type(),
		Start:     start,
		End:       end,
		Line:      int(startPt.Row) + 1,    //nolint:gosec // row fits in int
		Column:    int(startPt.Column) + 1, //nolint:gosec // column fits in int
		EndLine:   int(endPt.Row) + 1,      //nolint:gosec // row fits in int
		EndColumn: int(endPt.Column) + 1,   //nolint:gosec // column fits in int
		Role:      role,
		Named:     ts.IsNamed(),
	})

	count := ts.ChildCount()
	if count == 0 {
		b.nodes[id].Text = string(b.src[start:end])
		b.checkLeaf(id, isRoot)

		return id
	}

	if ts.Type() == typeErrorNode {
		b.record(id)
	}

	slots := childSlots(ts)
	children := make([]NodeID, 0, count)

	for i := range count {
		child := ts.Child(i)
		children = append(children, b.build(child, slots.roleOf(child), false))
	}

	b.nodes[id].Children = children

	return id
}

// checkLeaf flags ERROR leaves and zero-width tokens, which tree-sitter
// inserts for missing punctuation.
func (b *builder) checkLeaf(id NodeID, isRoot bool) {
	n := b.nodes[id]
	if n.Type == typeErrorNode || (!isRoot && n.Start == n.End) {
		b.record(id)
	}
}

func (b *builder) record(id NodeID) {
	if b.syntaxErr != nil {
		return
	}

	n := b.nodes[id]

	near := string(b.src[n.Start:n.End])
	if near == "" {
		near = n.Type
	}

	if len(near) > nearLimit {
		near = near[:nearLimit]
	}

	b.syntaxErr = &SyntaxError{Line: n.Line, Column: n.Column, Near: near}
}

type slot struct {
	typ   string
	start int
	end   int
	role  Role
}

type slotList []slot

func (s slotList) roleOf(child sitter.Node) Role {
	for _, sl := range s {
		if sl.start == int(child.StartByte()) && sl.end == int(child.EndByte()) && sl.typ == child.Type() {
			return sl.role
		}
	}

	return RoleNone
}

func slotFor(n sitter.Node, role Role) slot {
	return slot{typ: n.Type(), start: int(n.StartByte()), end: int(n.EndByte()), role: role}
}

// childSlots finds the children of ts that sit in declarator or name position.
func childSlots(ts sitter.Node) slotList {
	var slots slotList

	switch ts.Type() {
	case typeDeclaration, typeParameterDecl:
		typeNode := ts.ChildByFieldName(fieldType)
		if typeNode.IsNull() {
			return nil
		}

		afterType := false

		for i := range ts.NamedChildCount() {
			child := ts.NamedChild(i)

			if !afterType {
				afterType = child.StartByte() == typeNode.StartByte() && child.Type() == typeNode.Type()

				continue
			}

			if declaratorTypes[child.Type()] {
				slots = append(slots, slotFor(child, RoleDeclarator))
			}
		}
	case typeFunctionDef, typeInitDeclarator, typePointerDecl, typeArrayDecl, typeFunctionDecl, typeAttributedDecl:
		if d := ts.ChildByFieldName(fieldDeclarator); !d.IsNull() {
			slots = append(slots, slotFor(d, RoleDeclarator))
		}
	case typeParenDecl:
		for i := range ts.NamedChildCount() {
			child := ts.NamedChild(i)
			if declaratorTypes[child.Type()] {
				slots = append(slots, slotFor(child, RoleDeclarator))

				break
			}
		}
	case typeEnumerator, typePreprocDef, typePreprocFuncDef:
		if n := ts.ChildByFieldName(fieldName); !n.IsNull() {
			slots = append(slots, slotFor(n, RoleName))
		}
	}

	return slots
}
