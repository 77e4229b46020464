package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// writeLineDiff prints a line-level diff of before and after with ---/+++
// headers. Removed lines are red, added lines green.
func writeLineDiff(w io.Writer, name, before, after string) error {
	dmp := diffmatchpatch.New()

	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	if _, err := fmt.Fprintf(w, "--- a/%s\n+++ b/%s\n", name, name); err != nil {
		return fmt.Errorf("write diff header: %w", err)
	}

	for _, d := range diffs {
		for _, line := range splitDiffLines(d.Text) {
			var err error

			switch d.Type {
			case diffmatchpatch.DiffDelete:
				_, err = removed.Fprintln(w, "-"+line)
			case diffmatchpatch.DiffInsert:
				_, err = added.Fprintln(w, "+"+line)
			case diffmatchpatch.DiffEqual:
				_, err = fmt.Fprintln(w, " "+line)
			}

			if err != nil {
				return fmt.Errorf("write diff: %w", err)
			}
		}
	}

	return nil
}

func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
