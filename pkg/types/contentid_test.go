package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeContentID(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"hello world", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeContentID([]byte(tt.content)).Hex())
		})
	}
}

func TestParseContentID(t *testing.T) {
	id := ComputeContentID([]byte("abc"))

	parsed, err := ParseContentID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseContentID("abc")
	assert.Error(t, err)

	_, err = ParseContentID(strings.Repeat("zz", 32))
	assert.Error(t, err)
}

func TestContentID_JSONAndSQL(t *testing.T) {
	id := ComputeContentID([]byte("abc"))

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.Hex()+`"`, string(data))

	var back ContentID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)

	v, err := id.Value()
	require.NoError(t, err)
	var scanned ContentID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, id, scanned)
	require.NoError(t, scanned.Scan([]byte(id.Hex())))
	assert.Error(t, scanned.Scan(42))
}
