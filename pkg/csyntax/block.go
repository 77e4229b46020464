package csyntax

// BlockItem is one entry of a compound statement: a *Declaration or a *Statement.
type BlockItem interface {
	Node() NodeID
	Line() int
	blockItem()
}

// unit is a block item together with the comments that travel with it.
type unit struct {
	item     BlockItem
	leading  []NodeID
	trailing []NodeID
}

// Block is a compound statement whose item list can be replaced. Comments on
// their own lines attach to the item that follows them; a comment on the
// same line as the end of an item attaches to that item.
type Block struct {
	tree     *Tree
	byItem   map[BlockItem]*unit
	tail     string
	units    []*unit
	gaps     []string
	id       NodeID
	open     NodeID
	close    NodeID
	modified bool
}

// Block returns the block for a compound_statement node, or nil for any
// other node. Blocks are cached per node.
func (t *Tree) Block(id NodeID) *Block {
	if b, ok := t.blocks[id]; ok {
		return b
	}

	n := t.nodes[id]
	if n.Type != typeCompound || len(n.Children) < 2 {
		return nil
	}

	b := t.newBlock(id)
	t.blocks[id] = b

	return b
}

func (t *Tree) newBlock(id NodeID) *Block {
	children := t.nodes[id].Children
	b := &Block{
		tree:   t,
		id:     id,
		open:   children[0],
		close:  children[len(children)-1],
		byItem: make(map[BlockItem]*unit),
	}

	var (
		pending []NodeID
		last    *unit
	)

	for _, child := range children[1 : len(children)-1] {
		if t.nodes[child].Type == typeComment {
			if last != nil && len(pending) == 0 && t.nodes[child].Line == t.nodes[last.item.Node()].EndLine {
				last.trailing = append(last.trailing, child)

				continue
			}

			pending = append(pending, child)

			continue
		}

		for i, item := range t.itemsOf(child) {
			u := &unit{item: item}
			if i == 0 {
				u.leading = pending
				pending = nil
			}

			b.units = append(b.units, u)
			b.byItem[item] = u
			last = u
		}
	}

	prevEnd := t.nodes[b.open].End
	prevNode := NoNode

	for _, u := range b.units {
		start, end := t.unitSpan(u)

		// Declarators split out of one statement share its separator.
		node := u.item.Node()
		if node == prevNode {
			b.gaps = append(b.gaps, b.gaps[len(b.gaps)-1])
		} else {
			b.gaps = append(b.gaps, string(t.src[prevEnd:start]))
		}

		prevEnd = max(prevEnd, end)
		prevNode = node
	}

	b.tail = string(t.src[prevEnd:t.nodes[b.close].Start])

	return b
}

// itemsOf turns one child of a compound statement into block items.
func (t *Tree) itemsOf(id NodeID) []BlockItem {
	if t.nodes[id].Type != typeDeclaration {
		return []BlockItem{&Statement{tree: t, id: id}}
	}

	decls := t.Declarations(id)
	items := make([]BlockItem, 0, len(decls))

	for _, d := range decls {
		items = append(items, d)
	}

	return items
}

// unitSpan returns the source range covered by a unit and its comments.
func (t *Tree) unitSpan(u *unit) (int, int) {
	node := t.nodes[u.item.Node()]
	start, end := node.Start, node.End

	if len(u.leading) > 0 {
		start = t.nodes[u.leading[0]].Start
	}

	if len(u.trailing) > 0 {
		end = t.nodes[u.trailing[len(u.trailing)-1]].End
	}

	return start, end
}

// Node returns the compound_statement node.
func (b *Block) Node() NodeID {
	return b.id
}

// Items returns the current items of the block in order.
func (b *Block) Items() []BlockItem {
	items := make([]BlockItem, 0, len(b.units))
	for _, u := range b.units {
		items = append(items, u.item)
	}

	return items
}

// SetItems replaces the item list. Every item must come from this block;
// unknown items are ignored. Items left out are dropped together with their
// comments. Separators keep their original positions: the text before the
// k-th original item now precedes the k-th new item.
func (b *Block) SetItems(items []BlockItem) {
	units := make([]*unit, 0, len(items))

	for _, item := range items {
		if u, ok := b.byItem[item]; ok {
			units = append(units, u)
		}
	}

	b.units = units
	b.modified = true
}

// Contains reports whether item currently belongs to the block.
func (b *Block) Contains(item BlockItem) bool {
	for _, u := range b.units {
		if u.item == item {
			return true
		}
	}

	return false
}

// Blocks returns every compound statement nested under id in pre-order,
// id itself included when it is one.
func (t *Tree) Blocks(id NodeID) []*Block {
	var blocks []*Block

	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].Type == typeCompound {
			if b := t.Block(n); b != nil {
				blocks = append(blocks, b)
			}
		}

		return true
	})

	return blocks
}
