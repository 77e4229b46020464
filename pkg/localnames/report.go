package localnames

import "github.com/Sumatoshi-tech/varnorm/pkg/textutil"

// Action is what the pass did with one local declaration.
type Action string

// Declaration outcomes.
const (
	// ActionRenamed means the declaration and all of its uses got a new name.
	ActionRenamed Action = "renamed"
	// ActionDeleted means the declaration had no uses and was removed.
	ActionDeleted Action = "deleted"
	// ActionKept means the declaration was left as written: its name is
	// declared more than once, or it is unused but not a block item.
	ActionKept Action = "kept"
)

// Entry records the outcome for one local declaration.
type Entry struct {
	OriginalName string `json:"original_name" yaml:"original_name"`
	NewName      string `json:"new_name,omitempty" yaml:"new_name,omitempty"`
	Type         string `json:"type" yaml:"type"`
	BaseToken    string `json:"base_token" yaml:"base_token"`
	Action       Action `json:"action" yaml:"action"`
	Uses         int    `json:"uses" yaml:"uses"`
	Line         int    `json:"line" yaml:"line"`
}

// Range is a 1-based span of the converted source.
type Range struct {
	StartLine   int `json:"start_line" yaml:"start_line"`
	StartColumn int `json:"start_column" yaml:"start_column"`
	EndLine     int `json:"end_line" yaml:"end_line"`
	EndColumn   int `json:"end_column" yaml:"end_column"`
}

// Report describes one conversion. Lines are relative to the source text,
// not to the base declarations.
type Report struct {
	Function     string   `json:"function" yaml:"function"`
	Declarations []Entry  `json:"declarations" yaml:"declarations"`
	Ambiguous    []string `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`
	Range        Range    `json:"range" yaml:"range"`
}

// Unused returns the entries of declarations that had no uses.
func (r *Report) Unused() []Entry {
	var unused []Entry

	for _, e := range r.Declarations {
		if e.Uses == 0 {
			unused = append(unused, e)
		}
	}

	return unused
}

// Count returns how many entries have the given action.
func (r *Report) Count(action Action) int {
	n := 0

	for _, e := range r.Declarations {
		if e.Action == action {
			n++
		}
	}

	return n
}

// Result is the converted function text together with its report.
type Result struct {
	Output string `json:"output" yaml:"output"`
	Report Report `json:"report" yaml:"report"`
}

// Splice writes Output over the span of source the function was parsed from
// and returns the whole text. It reports false when the span does not lie
// within source, as for a function taken from the base declarations.
func (r *Result) Splice(source string) (string, bool) {
	rng := r.Report.Range

	start, okStart := textutil.Offset(source, rng.StartLine-1, rng.StartColumn-1)
	end, okEnd := textutil.Offset(source, rng.EndLine-1, rng.EndColumn-1)

	if !okStart || !okEnd || start > end {
		return "", false
	}

	return source[:start] + r.Output + source[end:], true
}
