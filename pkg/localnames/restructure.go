package localnames

import (
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/varnorm/pkg/csyntax"
)

// Restructure drops deleted declarations from body and from every block
// nested in it, then sorts each run of consecutive declarations in body by
// name. Nested blocks keep their order. It returns the declarations that were
// actually removed; a declaration that is not a block item (a for-loop
// initializer) stays in place.
func Restructure(tree *csyntax.Tree, body *csyntax.Block, deleted DeletionSet) DeletionSet {
	removed := make(DeletionSet)

	for _, block := range tree.Blocks(body.Node()) {
		items, dropped := filterItems(block.Items(), deleted)
		for _, decl := range dropped {
			removed[decl] = struct{}{}
		}

		if block == body {
			body.SetItems(SortDeclarationRuns(items))

			continue
		}

		if len(dropped) > 0 {
			block.SetItems(items)
		}
	}

	return removed
}

// filterItems returns items without the deleted declarations, preserving order.
func filterItems(items []csyntax.BlockItem, deleted DeletionSet) ([]csyntax.BlockItem, []*csyntax.Declaration) {
	kept := make([]csyntax.BlockItem, 0, len(items))

	var dropped []*csyntax.Declaration

	for _, item := range items {
		if decl, ok := item.(*csyntax.Declaration); ok && deleted.Has(decl) {
			dropped = append(dropped, decl)

			continue
		}

		kept = append(kept, item)
	}

	return kept, dropped
}

// SortDeclarationRuns returns items with every maximal run of declarations
// stably sorted by current name. Statements keep their positions and bound
// the runs.
func SortDeclarationRuns(items []csyntax.BlockItem) []csyntax.BlockItem {
	out := slices.Clone(items)

	for start := 0; start < len(out); {
		if _, ok := out[start].(*csyntax.Declaration); !ok {
			start++

			continue
		}

		end := start
		for end < len(out) {
			if _, ok := out[end].(*csyntax.Declaration); !ok {
				break
			}

			end++
		}

		slices.SortStableFunc(out[start:end], func(a, b csyntax.BlockItem) int {
			return strings.Compare(declName(a), declName(b))
		})

		start = end
	}

	return out
}

func declName(item csyntax.BlockItem) string {
	if decl, ok := item.(*csyntax.Declaration); ok {
		return decl.Name()
	}

	return ""
}
