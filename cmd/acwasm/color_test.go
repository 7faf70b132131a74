package main

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSnippetWithParts(t *testing.T) {
	parts := formatSnippetWithParts([]byte("key="), []byte("AKIA"), []byte(" end"), 100)
	assert.Equal(t, snippetParts{before: "key=", matching: "AKIA", after: " end"}, parts)

	long := []byte(strings.Repeat("b", 50))
	parts = formatSnippetWithParts(long, []byte("MATCH"), long, 25)
	assert.Equal(t, "...", parts.prefix)
	assert.Equal(t, "...", parts.suffix)
	assert.Equal(t, "MATCH", parts.matching)
	assert.Len(t, parts.before, 7)
	assert.Len(t, parts.after, 7)

	parts = formatSnippetWithParts([]byte("ab"), []byte("MATCH"), long, 25)
	assert.Empty(t, parts.prefix, "short left side is kept whole")
	assert.Equal(t, "ab", parts.before)
	assert.Len(t, parts.after, 12)
	assert.Equal(t, "...", parts.suffix)

	parts = formatSnippetWithParts(nil, []byte(strings.Repeat("m", 40)), nil, 20)
	assert.Equal(t, snippetParts{prefix: "...", matching: strings.Repeat("m", 14), suffix: "..."}, parts)
}

func TestResolveStyles(t *testing.T) {
	defer func(orig bool) { color.NoColor = orig }(color.NoColor)

	_, err := resolveStyles("always")
	require.NoError(t, err)
	assert.False(t, color.NoColor)

	_, err = resolveStyles("never")
	require.NoError(t, err)
	assert.True(t, color.NoColor)

	isStdoutTerminal = func() bool { return false }
	_, err = resolveStyles("auto")
	require.NoError(t, err)
	assert.True(t, color.NoColor)

	_, err = resolveStyles("rainbow")
	assert.ErrorContains(t, err, "unknown color mode")
}
