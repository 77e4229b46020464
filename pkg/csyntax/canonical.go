package csyntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parents whose anonymous children are infix operators.
var infixParents = map[string]bool{
	"binary_expression":      true,
	"conditional_expression": true,
	"assignment_expression":  true,
}

// Declarator nodes whose leading token is spaced off a preceding word, as in
// "char *" and "int (*)[3]".
var declaratorMarks = map[string]string{
	"pointer_declarator":                "*",
	"abstract_pointer_declarator":       "*",
	"parenthesized_declarator":          "(",
	"abstract_parenthesized_declarator": "(",
}

type canonToken struct {
	text string
	// infix tokens get one space on each side.
	infix bool
	// spaced tokens get a space when they follow a word.
	spaced bool
}

// canonicalText renders the subtree at id independently of the source
// layout, the way a C pretty-printer spaces it: one space around infix
// operators, after commas and between adjacent words. Comments are dropped.
func (t *Tree) canonicalText(id NodeID) string {
	var toks []canonToken

	t.collectTokens(id, &toks)

	var sb strings.Builder

	for i, tok := range toks {
		if i > 0 && needSpace(toks[i-1], tok) {
			sb.WriteByte(' ')
		}

		sb.WriteString(tok.text)
	}

	return sb.String()
}

func (t *Tree) collectTokens(id NodeID, out *[]canonToken) {
	n := t.nodes[id]

	if n.IsLeaf() {
		if n.Type != typeComment && n.Text != "" {
			*out = append(*out, canonToken{text: n.Text})
		}

		return
	}

	infix := infixParents[n.Type]
	mark := declaratorMarks[n.Type]

	for i, child := range n.Children {
		c := t.nodes[child]

		if c.IsLeaf() && !c.Named && c.Type != typeComment {
			*out = append(*out, canonToken{
				text:   c.Text,
				infix:  infix,
				spaced: i == 0 && c.Text == mark,
			})

			continue
		}

		t.collectTokens(child, out)
	}
}

func needSpace(prev, cur canonToken) bool {
	if prev.infix || cur.infix || prev.text == "," {
		return true
	}

	if !endsWithWord(prev.text) {
		return false
	}

	return cur.spaced || startsWithWord(cur.text)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func startsWithWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)

	return isWordRune(r)
}

func endsWithWord(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)

	return isWordRune(r)
}
