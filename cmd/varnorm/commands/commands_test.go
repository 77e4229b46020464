package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/varnorm/cmd/varnorm/commands"
	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
)

const sampleSource = "void f(void)\n{\n    int y;\n    int x;\n    x = 1;\n}\n"

const sampleOutput = "void f(void)\n{\n    int s32_0;\n    s32_0 = 1;\n}"

// run executes the root command with an empty config file and returns
// stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "varnorm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))

	var stdout, stderr bytes.Buffer

	root := commands.NewRootCommand()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestConvert_Stdin(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, sampleSource, "convert")
	require.NoError(t, err)
	assert.Equal(t, sampleOutput+"\n", stdout)
}

func TestConvert_FilesInOrderWithBase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, dir, "base.h", "typedef unsigned char u8;\n")
	a := writeFile(t, dir, "a.c", "void a(void) { u8 p; p = 1; }\n")
	b := writeFile(t, dir, "b.c", "void b(void) { int q; int r; q = 2; }\n")

	stdout, _, err := run(t, "", "convert", "--base", base, a, b)
	require.NoError(t, err)

	want := "==> " + a + " <==\nvoid a(void) { u8 u8_0; u8_0 = 1; }\n" +
		"==> " + b + " <==\nvoid b(void) { int s32_0; s32_0 = 2; }\n"
	assert.Equal(t, want, stdout)
}

func TestConvert_Write(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f.c", sampleSource)

	stdout, _, err := run(t, "", "convert", "--write", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleOutput+"\n", string(data))
}

func TestConvert_WriteKeepsRestOfFile(t *testing.T) {
	t.Parallel()

	const (
		header  = "#include <stdio.h>\n\nstatic int g;\n\n"
		trailer = "\n\nint main(void)\n{\n    int unused;\n    return g;\n}\n"
	)

	path := writeFile(t, t.TempDir(), "f.c", header+"void f(void) { int x; x = 1; }"+trailer)

	_, _, err := run(t, "", "convert", "--write", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header+"void f(void) { int s32_0; s32_0 = 1; }"+trailer, string(data))
}

func TestConvert_WriteRejectsStdin(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, sampleSource, "convert", "--write", "-")
	require.Error(t, err)
}

func TestConvert_Diff(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f.c", sampleSource)

	stdout, _, err := run(t, "", "convert", "--diff", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "--- a/"+path)
	assert.Contains(t, stdout, "-    int y;")
	assert.Contains(t, stdout, "+    int s32_0;")
	assert.Contains(t, stdout, "+    s32_0 = 1;")
	assert.Contains(t, stdout, " void f(void)")
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.c", "int f( {")
	empty := writeFile(t, dir, "g.c", "int g;")

	_, _, err := run(t, "", "convert", bad)
	require.ErrorIs(t, err, localnames.ErrParseFailure)
	assert.Contains(t, err.Error(), bad)

	_, _, err = run(t, "", "convert", empty)
	require.ErrorIs(t, err, localnames.ErrNoFunctionFound)

	_, _, err = run(t, "", "convert", filepath.Join(dir, "missing.c"))
	require.Error(t, err)
}

func TestConvert_WarnsOnNonC(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f.py", "void f(void) { int x; x = 1; }\n")

	_, stderr, err := run(t, "", "convert", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "input does not look like C")
}

func TestPlan_Formats(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f.c", sampleSource)

	stdout, _, err := run(t, "", "plan", "--format", "json", path)
	require.NoError(t, err)

	var report localnames.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "f", report.Function)
	require.Len(t, report.Declarations, 2)

	stdout, _, err = run(t, "", "plan", "--format", "yaml", path)
	require.NoError(t, err)

	var yamlReport localnames.Report
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &yamlReport))
	assert.Equal(t, report, yamlReport)

	stdout, _, err = run(t, "", "plan", path)
	require.NoError(t, err)

	lower := strings.ToLower(stdout)
	assert.Contains(t, lower, "function f")
	assert.Contains(t, lower, "s32_0")
	assert.Contains(t, lower, "1 renamed")
	assert.Contains(t, lower, "1 deleted")
}

func TestPlan_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, sampleSource, "plan", "--format", "xml")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "varnorm "))
}

func TestConvert_RejectsBinary(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "blob.c", "void f(void) {}\x00\x01")

	_, _, err := run(t, "", "convert", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary")
}
