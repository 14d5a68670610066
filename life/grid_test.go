package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDimensions(t *testing.T) {
	g, err := New(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, g.Width())
	assert.Equal(t, 5, g.Height())
	assert.Equal(t, 50, g.Area())
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(0, 5)
	assert.Error(t, err)
	_, err = New(5, -1)
	assert.Error(t, err)
}

func TestNeighbourCoords(t *testing.T) {
	/*
	 * [ (0,0) (0,1) (0,2) ]
	 * [ (1,0) (1,1) (1,2) ]
	 * [ (2,0) (2,1) (2,2) ]
	 */
	n0 := neighbourCoords(2, 2, Coord{I: 0, J: 0})
	assert.Equal(t, Coord{I: 2, J: 0}, n0[0]) // N
	assert.Equal(t, Coord{I: 2, J: 1}, n0[1]) // NE
	assert.Equal(t, Coord{I: 0, J: 1}, n0[2]) // E
	assert.Equal(t, Coord{I: 1, J: 1}, n0[3]) // SE
	assert.Equal(t, Coord{I: 1, J: 0}, n0[4]) // S
	assert.Equal(t, Coord{I: 1, J: 2}, n0[5]) // SW
	assert.Equal(t, Coord{I: 0, J: 2}, n0[6]) // W
	assert.Equal(t, Coord{I: 2, J: 2}, n0[7]) // NW

	n1 := neighbourCoords(2, 2, Coord{I: 1, J: 1})
	assert.Equal(t, Coord{I: 0, J: 1}, n1[0]) // N
	assert.Equal(t, Coord{I: 0, J: 2}, n1[1]) // NE
	assert.Equal(t, Coord{I: 1, J: 2}, n1[2]) // E
	assert.Equal(t, Coord{I: 2, J: 2}, n1[3]) // SE
	assert.Equal(t, Coord{I: 2, J: 1}, n1[4]) // S
	assert.Equal(t, Coord{I: 2, J: 0}, n1[5]) // SW
	assert.Equal(t, Coord{I: 1, J: 0}, n1[6]) // W
	assert.Equal(t, Coord{I: 0, J: 0}, n1[7]) // NW

	n2 := neighbourCoords(2, 2, Coord{I: 2, J: 2})
	assert.Equal(t, Coord{I: 1, J: 2}, n2[0]) // N
	assert.Equal(t, Coord{I: 1, J: 0}, n2[1]) // NE
	assert.Equal(t, Coord{I: 2, J: 0}, n2[2]) // E
	assert.Equal(t, Coord{I: 0, J: 0}, n2[3]) // SE
	assert.Equal(t, Coord{I: 0, J: 2}, n2[4]) // S
	assert.Equal(t, Coord{I: 0, J: 1}, n2[5]) // SW
	assert.Equal(t, Coord{I: 2, J: 1}, n2[6]) // W
	assert.Equal(t, Coord{I: 1, J: 1}, n2[7]) // NW
}

func TestPopulation(t *testing.T) {
	g, err := NewWithOptions(3, 3, &Options{Blank: true})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Population())

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			g.Set(i, j, Alive)
		}
	}
	g.Set(1, 1, Dead)
	assert.Equal(t, 8, g.Population())
}

func TestToggle(t *testing.T) {
	g, err := NewWithOptions(2, 2, &Options{Blank: true})
	require.NoError(t, err)
	assert.Equal(t, Alive, g.Toggle(0, 1))
	assert.True(t, g.Alive(0, 1))
	assert.Equal(t, Dead, g.Toggle(0, 1))
	assert.False(t, g.Alive(0, 1))
}

// A horizontal blinker in the middle of a 5x5 board oscillates with period 2.
func TestAdvanceBlinker(t *testing.T) {
	g, err := NewWithOptions(5, 5, &Options{Blank: true})
	require.NoError(t, err)
	g.Set(2, 1, Alive)
	g.Set(2, 2, Alive)
	g.Set(2, 3, Alive)

	g.Advance()
	assert.Equal(t, 3, g.Population())
	assert.True(t, g.Alive(1, 2))
	assert.True(t, g.Alive(2, 2))
	assert.True(t, g.Alive(3, 2))
	assert.False(t, g.Alive(2, 1))
	assert.False(t, g.Alive(2, 3))

	g.Advance()
	assert.True(t, g.Alive(2, 1))
	assert.True(t, g.Alive(2, 2))
	assert.True(t, g.Alive(2, 3))
	assert.Equal(t, uint64(2), g.Generation())
}

// A 2x2 block is a still life, including when it straddles the wrapped edge.
func TestAdvanceBlockWraps(t *testing.T) {
	g, err := NewWithOptions(4, 4, &Options{Blank: true})
	require.NoError(t, err)
	g.Set(3, 3, Alive)
	g.Set(3, 0, Alive)
	g.Set(0, 3, Alive)
	g.Set(0, 0, Alive)

	for n := 0; n < 5; n++ {
		g.Advance()
	}
	assert.Equal(t, 4, g.Population())
	assert.True(t, g.Alive(3, 3))
	assert.True(t, g.Alive(3, 0))
	assert.True(t, g.Alive(0, 3))
	assert.True(t, g.Alive(0, 0))
}

func TestSeedDeterminism(t *testing.T) {
	a, err := NewWithOptions(20, 20, &Options{Seed: 42})
	require.NoError(t, err)
	b, err := NewWithOptions(20, 20, &Options{Seed: 42})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		for j := 0; j < 20; j++ {
			assert.Equal(t, a.Alive(i, j), b.Alive(i, j))
		}
	}
}

func TestReseedResetsGeneration(t *testing.T) {
	g, err := NewWithOptions(10, 10, &Options{Seed: 7})
	require.NoError(t, err)
	g.Advance()
	g.Advance()
	require.Equal(t, uint64(2), g.Generation())
	g.Reseed(9, 0.3)
	assert.Equal(t, uint64(0), g.Generation())
}

// Advance should be able to run for a large number of iterations.
func TestAdvanceMany(t *testing.T) {
	g, err := New(50, 150)
	require.NoError(t, err)
	for n := 0; n < 100; n++ {
		g.Advance()
	}
}

func BenchmarkGridAdvance50x50(b *testing.B) {
	g, err := NewWithOptions(50, 50, &Options{Seed: 1})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		g.Advance()
	}
}

func BenchmarkGridAdvance500x500(b *testing.B) {
	g, err := NewWithOptions(500, 500, &Options{Seed: 1})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		g.Advance()
	}
}
