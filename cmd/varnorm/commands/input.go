package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/varnorm/pkg/textutil"
)

const stdinName = "-"

var errBinaryInput = errors.New("input looks binary")

// cLanguages are the enry language names accepted without a warning.
var cLanguages = []string{"C", "C++"}

// input is one file (or stdin) to convert.
type input struct {
	name string
	text string
}

func readInput(name string, stdin io.Reader) (input, error) {
	var (
		data []byte
		err  error
	)

	if name == stdinName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}

	if err != nil {
		return input{}, fmt.Errorf("read %s: %w", name, err)
	}

	if textutil.IsBinary(string(data)) {
		return input{}, fmt.Errorf("%s: %w", name, errBinaryInput)
	}

	return input{name: name, text: string(data)}, nil
}

// readBase returns the base declarations, or "" when path is empty.
func readBase(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read base %s: %w", path, err)
	}

	return string(data), nil
}

// warnIfNotC logs when enry classifies in as something other than C.
func warnIfNotC(logger *slog.Logger, in input) {
	if in.name == stdinName {
		return
	}

	lang := enry.GetLanguage(filepath.Base(in.name), []byte(in.text))
	if lang != "" && !slices.Contains(cLanguages, lang) {
		logger.Warn("input does not look like C", "file", in.name, "language", lang)
	}
}
