package commands

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLineDiff(t *testing.T) {
	color.NoColor = true //nolint:reassign // plain output for comparison

	var buf bytes.Buffer

	require.NoError(t, writeLineDiff(&buf, "f.c", "a\nb\nc\n", "a\nB\nc\n"))

	assert.Equal(t, "--- a/f.c\n+++ b/f.c\n a\n-b\n+B\n c\n", buf.String())
}

func TestSplitDiffLines(t *testing.T) {
	assert.Nil(t, splitDiffLines(""))
	assert.Equal(t, []string{"x", "y"}, splitDiffLines("x\ny\n"))
}
