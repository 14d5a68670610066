package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gliderPlaintext = `!Name: Glider
!
.O.
..O
OOO
`

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern(gliderPlaintext)
	require.NoError(t, err)
	assert.Equal(t, "Glider", p.Name)
	assert.Equal(t, 3, p.Width())
	assert.Equal(t, 3, p.Height())
}

func TestParsePatternPadsShortRows(t *testing.T) {
	p, err := ParsePattern("O\nOOO\n")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Width())
	assert.Equal(t, 2, p.Height())
}

func TestParsePatternRejectsGarbage(t *testing.T) {
	_, err := ParsePattern(".O.\n.X.\n")
	assert.Error(t, err)

	_, err = ParsePattern("! only comments\n")
	assert.Error(t, err)
}

func TestStamp(t *testing.T) {
	p, err := ParsePattern(gliderPlaintext)
	require.NoError(t, err)

	g, err := NewWithOptions(10, 10, &Options{Blank: true})
	require.NoError(t, err)
	p.Stamp(g, 1, 1)

	assert.Equal(t, 5, g.Population())
	assert.True(t, g.Alive(1, 2))
	assert.True(t, g.Alive(2, 3))
	assert.True(t, g.Alive(3, 1))
	assert.True(t, g.Alive(3, 2))
	assert.True(t, g.Alive(3, 3))
}

func TestStampWraps(t *testing.T) {
	p, err := ParsePattern("OO\nOO\n")
	require.NoError(t, err)

	g, err := NewWithOptions(4, 4, &Options{Blank: true})
	require.NoError(t, err)
	p.Stamp(g, 3, 3)

	assert.Equal(t, 4, g.Population())
	assert.True(t, g.Alive(3, 3))
	assert.True(t, g.Alive(3, 0))
	assert.True(t, g.Alive(0, 3))
	assert.True(t, g.Alive(0, 0))
}

func TestStampCentered(t *testing.T) {
	p, err := ParsePattern("OOO\n")
	require.NoError(t, err)

	g, err := NewWithOptions(9, 9, &Options{Blank: true})
	require.NoError(t, err)
	p.StampCentered(g)

	assert.True(t, g.Alive(4, 3))
	assert.True(t, g.Alive(4, 4))
	assert.True(t, g.Alive(4, 5))
}
