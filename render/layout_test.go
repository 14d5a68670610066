package render

import (
	"fmt"
	"testing"

	"github.com/lloydmeta/gol/life"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lin "github.com/xlab/linmath"
)

func blankGrid(t testing.TB, width, height int) *life.Grid {
	g, err := life.NewWithOptions(width, height, &life.Options{Blank: true})
	require.NoError(t, err)
	return g
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(3, 2)

	assert.InDelta(t, 0.6, float64(l.sizeX), 1e-6)
	assert.InDelta(t, 0.9, float64(l.sizeY), 1e-6)
	// 0.2 of slack split into width+1 / height+1 gaps.
	assert.InDelta(t, 0.05, float64(l.gapX), 1e-6)
	assert.InDelta(t, 0.2/3, float64(l.gapY), 1e-6)
	// First cell centre: edge + gap + half a cell.
	assert.InDelta(t, -0.65, float64(l.beginX), 1e-6)
	assert.InDelta(t, -1+0.2/3+0.45, float64(l.beginY), 1e-6)
}

func TestFillInstances(t *testing.T) {
	g := blankGrid(t, 3, 2)
	g.Set(0, 0, life.Alive)
	g.Set(1, 2, life.Alive)

	l := NewLayout(3, 2)
	instances := make(InstanceData, g.Area())
	l.FillInstances(instances, g)

	// Row-major from the origin corner, stride size+gap.
	assert.Equal(t, lin.Vec2{l.beginX, l.beginY}, instances[0].Translate)
	assert.InDelta(t, float64(l.beginX+(l.sizeX+l.gapX)), float64(instances[1].Translate[0]), 1e-6)
	assert.Equal(t, instances[0].Translate[1], instances[1].Translate[1])

	// Second row resets x and advances y.
	assert.Equal(t, instances[0].Translate[0], instances[3].Translate[0])
	assert.InDelta(t, float64(l.beginY+(l.sizeY+l.gapY)), float64(instances[3].Translate[1]), 1e-6)

	assert.Equal(t, AliveColour, instances[0].Colour)
	assert.Equal(t, DeadColour, instances[1].Colour)
	assert.Equal(t, AliveColour, instances[1*3+2].Colour)
}

func TestUpdateColoursLeavesTranslates(t *testing.T) {
	g := blankGrid(t, 4, 4)

	l := NewLayout(4, 4)
	instances := make(InstanceData, g.Area())
	l.FillInstances(instances, g)

	before := make(InstanceData, len(instances))
	copy(before, instances)

	g.Set(2, 1, life.Alive)
	l.UpdateColours(instances, g)

	for idx := range instances {
		assert.Equal(t, before[idx].Translate, instances[idx].Translate)
	}
	assert.Equal(t, AliveColour, instances[2*4+1].Colour)
	assert.Equal(t, DeadColour, instances[0].Colour)
}

func TestCellAt(t *testing.T) {
	l := NewLayout(100, 80)

	// The centre of every cell maps back to itself.
	for _, c := range []life.Coord{{I: 0, J: 0}, {I: 79, J: 99}, {I: 40, J: 3}} {
		tr := l.CellTransform(c.I, c.J)
		got, ok := l.CellAt(tr.Translate)
		require.True(t, ok, "centre of %v", c)
		assert.Equal(t, c, got)
	}

	// The margin before the first cell misses.
	_, ok := l.CellAt(lin.Vec2{-1 + l.gapX/2, l.beginY})
	assert.False(t, ok)

	// The gap between two cells misses.
	gapX := l.beginX + l.sizeX/2 + l.gapX/2
	_, ok = l.CellAt(lin.Vec2{gapX, l.beginY})
	assert.False(t, ok)

	// Outside NDC entirely.
	_, ok = l.CellAt(lin.Vec2{1.5, 0})
	assert.False(t, ok)
	_, ok = l.CellAt(lin.Vec2{0, -2})
	assert.False(t, ok)
}

func TestCellAtRoundTripsEveryCell(t *testing.T) {
	l := NewLayout(10, 7)
	for i := 0; i < 7; i++ {
		for j := 0; j < 10; j++ {
			got, ok := l.CellAt(l.CellTransform(i, j).Translate)
			require.True(t, ok)
			require.Equal(t, life.Coord{I: i, J: j}, got)
		}
	}
}

func BenchmarkFillInstances(b *testing.B) {
	for _, size := range []int{50, 500, 1000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			g, err := life.New(size, size)
			if err != nil {
				b.Fatal(err)
			}
			l := NewLayout(size, size)
			instances := make(InstanceData, g.Area())

			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				l.FillInstances(instances, g)
			}
		})
	}
}

func BenchmarkUpdateColours(b *testing.B) {
	for _, size := range []int{50, 500, 1000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			g, err := life.New(size, size)
			if err != nil {
				b.Fatal(err)
			}
			l := NewLayout(size, size)
			instances := make(InstanceData, g.Area())
			l.FillInstances(instances, g)

			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				l.UpdateColours(instances, g)
			}
		})
	}
}
