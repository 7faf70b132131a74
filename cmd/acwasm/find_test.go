package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(in string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(in))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func resetFind() {
	findSet = setFlags{}
	findOverlapping = false
	findLimit = -1
	findFormat = "json"
	findColor = "never"
}

func runFindJSON(t *testing.T, args ...string) []findResult {
	t.Helper()
	cmd, out := newTestCmd("")
	require.NoError(t, runFind(cmd, args))

	var results []findResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	return results
}

func TestRunFind(t *testing.T) {
	resetFind()
	findSet.patterns = []string{"he", "she", "his", "hers"}
	findSet.kind = "leftmost-longest"

	results := runFindJSON(t, "ushers")
	assert.Equal(t, []findResult{{Pattern: 1, PatternText: "she", Start: 1, End: 4}}, results)
}

func TestRunFind_Overlapping(t *testing.T) {
	resetFind()
	findSet.patterns = []string{"he", "she", "his", "hers"}
	findOverlapping = true

	results := runFindJSON(t, "ushers")
	assert.Len(t, results, 3)

	findLimit = 1
	results = runFindJSON(t, "ushers")
	assert.Len(t, results, 1)
}

func TestRunFind_Stdin(t *testing.T) {
	resetFind()
	findSet.patterns = []string{"todo"}
	findSet.ignoreCase = true
	findSet.wholeWords = true

	cmd, out := newTestCmd("TODO: fix todos\n")
	require.NoError(t, runFind(cmd, nil))

	var results []findResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Equal(t, []findResult{{Pattern: 0, PatternText: "todo", Start: 0, End: 4}}, results)
}

func TestRunFind_Human(t *testing.T) {
	resetFind()
	findFormat = "human"
	findSet.patterns = []string{"needle"}

	cmd, out := newTestCmd("")
	require.NoError(t, runFind(cmd, []string{"hay needle hay"}))
	assert.Contains(t, out.String(), "Pattern 0 [4, 10) needle")
	assert.Contains(t, out.String(), `1 matches for 1 patterns in "cli"`)

	cmd, out = newTestCmd("")
	require.NoError(t, runFind(cmd, []string{"hay"}))
	assert.Equal(t, "No matches.\n", out.String())
}

func TestRunFind_ConfigAndBuiltin(t *testing.T) {
	resetFind()
	dir := t.TempDir()
	path := filepath.Join(dir, "words.yml")
	require.NoError(t, os.WriteFile(path, []byte("patterns: [alpha]\n"), 0644))

	findSet.configPath = path
	findSet.patterns = []string{"beta"}
	results := runFindJSON(t, "beta alpha")
	require.Len(t, results, 2)
	assert.Equal(t, "beta", results[0].PatternText)
	assert.Equal(t, "alpha", results[1].PatternText)

	resetFind()
	findSet.builtin = "markers"
	results = runFindJSON(t, "// FIXME later")
	require.Len(t, results, 1)
	assert.Equal(t, "FIXME", results[0].PatternText)
}

func TestRunFind_Errors(t *testing.T) {
	resetFind()
	cmd, _ := newTestCmd("")
	assert.ErrorContains(t, runFind(cmd, []string{"x"}), "no patterns")

	findSet.patterns = []string{"x"}
	findSet.kind = "sideways"
	assert.ErrorContains(t, runFind(cmd, []string{"x"}), "unknown match kind")

	resetFind()
	findSet.patterns = []string{"x"}
	findSet.kind = "leftmost-first"
	findOverlapping = true
	assert.ErrorContains(t, runFind(cmd, []string{"x"}), "unsupported configuration")

	resetFind()
	findSet.patterns = []string{"x"}
	findSet.wasmPath = filepath.Join(t.TempDir(), "absent.wasm")
	assert.ErrorContains(t, runFind(cmd, []string{"x"}), "reading wasm module")

	resetFind()
	findSet.patterns = []string{"x"}
	findFormat = "xml"
	assert.ErrorContains(t, runFind(cmd, []string{"x"}), "unknown output format")
}
