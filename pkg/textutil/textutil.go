// Package textutil provides text helpers shared by the CLI and the language
// server: binary sniffing, line/column addressing and UTF-16 columns.
package textutil

import (
	"strings"
	"unicode/utf16"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary reports whether text has a null byte within its first
// BinarySniffLength bytes. Empty text is not binary.
func IsBinary(text string) bool {
	sniff := text
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return strings.IndexByte(sniff, 0) >= 0
}

// Offset returns the byte offset of the 0-based line and byte column in
// text. It reports false when the position lies beyond the text.
func Offset(text string, line, column int) (int, bool) {
	if line < 0 || column < 0 {
		return 0, false
	}

	offset := 0

	for range line {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return 0, false
		}

		offset += nl + 1
	}

	offset += column
	if offset > len(text) {
		return 0, false
	}

	return offset, true
}

// LineBounds returns the columns where the 0-based line's content starts
// (after indentation) and ends. It reports false for a missing line.
func LineBounds(text string, line int) (start, end int, ok bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return 0, 0, false
	}

	content := strings.TrimSuffix(lines[line], "\r")

	return len(content) - len(strings.TrimLeft(content, " \t")), len(content), true
}

// Line returns the 0-based line of text without its line terminator. It
// reports false for a missing line.
func Line(text string, line int) (string, bool) {
	if line < 0 {
		return "", false
	}

	rest := text

	for range line {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return "", false
		}

		rest = rest[nl+1:]
	}

	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	return strings.TrimSuffix(rest, "\r"), true
}

// UTF16Column converts a byte column of line into UTF-16 code units, the
// unit LSP positions count in. Columns past the line clamp to its end.
func UTF16Column(line string, byteCol int) int {
	byteCol = min(max(byteCol, 0), len(line))
	units := 0

	for _, r := range line[:byteCol] {
		units += utf16Len(r)
	}

	return units
}

// ByteColumn converts a UTF-16 column of line back into a byte column.
// A column inside a surrogate pair maps to the start of its rune.
func ByteColumn(line string, utf16Col int) int {
	units := 0

	for i, r := range line {
		units += utf16Len(r)
		if units > utf16Col {
			return i
		}
	}

	return len(line)
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}

	return 1
}
