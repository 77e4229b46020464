package csyntax

import "strings"

// Emit renders the subtree at id as C source. Text between children is copied
// from the original source, leaves contribute their current text, and blocks
// whose items were replaced are rebuilt from their units.
func (t *Tree) Emit(id NodeID) string {
	var sb strings.Builder

	t.emit(&sb, id)

	return sb.String()
}

// String renders the whole translation unit, including any text outside the
// root node's span.
func (t *Tree) String() string {
	root := t.nodes[t.root]
	if root.IsLeaf() {
		return string(t.src)
	}

	var sb strings.Builder

	sb.Write(t.src[:t.nodes[root.Children[0]].Start])
	t.emitSeq(&sb, root.Children)
	sb.Write(t.src[t.nodes[root.Children[len(root.Children)-1]].End:])

	return sb.String()
}

func (t *Tree) emit(sb *strings.Builder, id NodeID) {
	if b, ok := t.blocks[id]; ok && b.modified {
		t.emitBlock(sb, b)

		return
	}

	n := t.nodes[id]
	if n.IsLeaf() {
		sb.WriteString(n.Text)

		return
	}

	t.emitSeq(sb, n.Children)
}

// emitSeq renders sibling nodes with the original source between them.
func (t *Tree) emitSeq(sb *strings.Builder, ids []NodeID) {
	for i, id := range ids {
		if i > 0 {
			sb.Write(t.src[t.nodes[ids[i-1]].End:t.nodes[id].Start])
		}

		t.emit(sb, id)
	}
}

func (t *Tree) emitBlock(sb *strings.Builder, b *Block) {
	t.emit(sb, b.open)

	for k, u := range b.units {
		sb.WriteString(b.gaps[min(k, len(b.gaps)-1)])
		t.emitUnit(sb, u)
	}

	sb.WriteString(b.tail)
	t.emit(sb, b.close)
}

func (t *Tree) emitUnit(sb *strings.Builder, u *unit) {
	stmt := t.nodes[u.item.Node()]
	pos := -1

	between := func(start int) {
		if pos >= 0 && start >= pos {
			sb.Write(t.src[pos:start])
		}
	}

	for _, c := range u.leading {
		between(t.nodes[c].Start)
		t.emit(sb, c)
		pos = t.nodes[c].End
	}

	between(stmt.Start)
	t.emitItem(sb, u.item)
	pos = stmt.End

	for _, c := range u.trailing {
		between(t.nodes[c].Start)
		t.emit(sb, c)
		pos = t.nodes[c].End
	}
}

// emitItem renders one block item. A declarator split out of a multi-declarator
// statement is emitted as a statement of its own.
func (t *Tree) emitItem(sb *strings.Builder, item BlockItem) {
	d, ok := item.(*Declaration)
	if !ok || !d.split {
		t.emit(sb, item.Node())

		return
	}

	sb.WriteString(t.declarationPrefix(d.stmt))
	sb.WriteByte(' ')
	t.emit(sb, d.declarator)
	sb.WriteByte(';')
}

// declarationPrefix renders the specifiers of a declaration statement, that is
// everything before its first declarator.
func (t *Tree) declarationPrefix(stmt NodeID) string {
	children := t.nodes[stmt].Children
	end := len(children)

	for i, child := range children {
		if t.nodes[child].Role == RoleDeclarator {
			end = i

			break
		}
	}

	var sb strings.Builder

	t.emitSeq(&sb, children[:end])

	return strings.TrimSpace(sb.String())
}
