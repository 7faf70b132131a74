package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	m := Match{Pattern: 1, Start: 2, End: 5}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "(1, 2, 5)", m.String())

	assert.True(t, m.Overlaps(Match{Start: 4, End: 6}))
	assert.False(t, m.Overlaps(Match{Start: 5, End: 6}))
	assert.False(t, m.Overlaps(Match{Start: 0, End: 2}))
}
