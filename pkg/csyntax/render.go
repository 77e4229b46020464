package csyntax

import "strings"

// RenderType renders a type the way a C pretty-printer prints a declaration
// with its name removed: qualifiers, then the specifier, then the modifiers,
// e.g. "const char *", "int *[3]", "int (*)[3]". Array sizes and parameter
// lists are laid out canonically, so "[N+1]" and "[N + 1]" render alike.
// Storage classes are not part of the type and are never rendered.
func (t *Tree) RenderType(typ TypeExpr) string {
	var mods []TypeExpr

	cur := typ
	for elem := modifierElem(cur); elem != nil; elem = modifierElem(cur) {
		mods = append(mods, cur)
		cur = elem
	}

	named, _ := cur.(*NamedType)

	var sb strings.Builder

	if named != nil {
		for _, q := range named.Qualifiers {
			sb.WriteString(q)
			sb.WriteByte(' ')
		}

		sb.WriteString(named.Specifier)
	}

	nstr := t.renderModifiers(mods)
	if nstr != "" {
		sb.WriteByte(' ')
		sb.WriteString(nstr)
	}

	return sb.String()
}

// modifierElem returns the type a modifier wraps, or nil for a named type.
func modifierElem(typ TypeExpr) TypeExpr {
	switch v := typ.(type) {
	case *PointerTo:
		return v.Elem
	case *ArrayOf:
		return v.Elem
	case *FunctionOf:
		return v.Elem
	default:
		return nil
	}
}

// renderModifiers applies modifiers outermost first. Arrays and functions
// under a pointer get parenthesized so "pointer to array" reads "(*)[N]".
func (t *Tree) renderModifiers(mods []TypeExpr) string {
	nstr := ""

	for i, mod := range mods {
		underPointer := false
		if i > 0 {
			_, underPointer = mods[i-1].(*PointerTo)
		}

		switch v := mod.(type) {
		case *ArrayOf:
			if underPointer {
				nstr = "(" + nstr + ")"
			}

			size := ""
			if v.Size != NoNode {
				size = t.canonicalText(v.Size)
			}

			nstr += "[" + size + "]"
		case *FunctionOf:
			if underPointer {
				nstr = "(" + nstr + ")"
			}

			nstr += "(" + t.paramsText(v.Params) + ")"
		case *PointerTo:
			if len(v.Qualifiers) == 0 {
				nstr = "*" + nstr

				continue
			}

			quals := strings.Join(v.Qualifiers, " ")
			if nstr != "" {
				nstr = "* " + quals + " " + nstr
			} else {
				nstr = "* " + quals
			}
		}
	}

	return nstr
}

// paramsText renders a parameter list without its parentheses.
func (t *Tree) paramsText(id NodeID) string {
	if id == NoNode {
		return ""
	}

	text := t.canonicalText(id)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")

	return strings.TrimSpace(text)
}
