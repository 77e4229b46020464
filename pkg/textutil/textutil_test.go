package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(""))
	assert.False(t, IsBinary("int main(void) { return 0; }"))
	assert.True(t, IsBinary("ELF\x00\x01"))
	assert.False(t, IsBinary(strings.Repeat("a", BinarySniffLength)+"\x00"))
}

func TestOffset(t *testing.T) {
	t.Parallel()

	text := "ab\ncde\nf"

	tests := []struct {
		name   string
		line   int
		column int
		want   int
		ok     bool
	}{
		{name: "start", line: 0, column: 0, want: 0, ok: true},
		{name: "second line", line: 1, column: 2, want: 5, ok: true},
		{name: "end", line: 2, column: 1, want: 8, ok: true},
		{name: "past end", line: 2, column: 2},
		{name: "missing line", line: 3},
		{name: "negative", line: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Offset(text, tt.line, tt.column)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineBounds(t *testing.T) {
	t.Parallel()

	start, end, ok := LineBounds("x\n    int y;\r\n", 1)
	assert.True(t, ok)
	assert.Equal(t, 4, start)
	assert.Equal(t, 10, end)

	_, _, ok = LineBounds("x", 4)
	assert.False(t, ok)
}

func TestLine(t *testing.T) {
	t.Parallel()

	text := "first\r\nsecond\nthird"

	line, ok := Line(text, 0)
	assert.True(t, ok)
	assert.Equal(t, "first", line)

	line, ok = Line(text, 2)
	assert.True(t, ok)
	assert.Equal(t, "third", line)

	_, ok = Line(text, 3)
	assert.False(t, ok)

	_, ok = Line(text, -1)
	assert.False(t, ok)
}

func TestUTF16Columns(t *testing.T) {
	t.Parallel()

	// "é" is two bytes and one unit; the emoji is four bytes and two units.
	line := "/* é 😀 */ int x;"
	byteCol := strings.Index(line, "int")

	assert.Equal(t, 14, byteCol)
	assert.Equal(t, 11, UTF16Column(line, byteCol))
	assert.Equal(t, byteCol, ByteColumn(line, 11))

	assert.Equal(t, 0, UTF16Column(line, 0))
	assert.Equal(t, 0, ByteColumn(line, 0))
	assert.Equal(t, UTF16Column(line, len(line)), UTF16Column(line, len(line)+5))
	assert.Equal(t, len(line), ByteColumn(line, 100))

	emoji := strings.Index(line, "😀")
	assert.Equal(t, emoji, ByteColumn(line, UTF16Column(line, emoji)+1))
}
