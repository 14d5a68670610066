package render

import (
	"github.com/lloydmeta/gol/life"
	lin "github.com/xlab/linmath"
)

// The grid occupies instancePortion of the scaleTotal-wide NDC range on each
// axis; the remainder is split into uniform gaps around and between cells.
const (
	scaleTotal      = 2.0
	instancePortion = 1.8
)

var (
	// AliveColour is the fill colour of live cells.
	AliveColour = lin.Vec4{0.2, 0.4, 0.5, 1}
	// DeadColour is the fill colour of dead cells.
	DeadColour = lin.Vec4{1, 1, 1, 1}
	// ClearColour is the background behind the board.
	ClearColour = lin.Vec4{0.1, 0.2, 0.3, 1}
)

// Layout positions one quad instance per cell. Cells are laid out from the
// NDC origin corner, row by row, with width+1 gaps across and height+1 gaps
// down so the board sits centered with an even margin.
type Layout struct {
	width  int
	height int

	sizeX, sizeY   float32
	gapX, gapY     float32
	beginX, beginY float32
}

// NewLayout computes the instance layout for a width x height board.
func NewLayout(width, height int) Layout {
	l := Layout{
		width:  width,
		height: height,
		sizeX:  instancePortion / float32(width),
		sizeY:  instancePortion / float32(height),
	}

	remaining := float32(scaleTotal - instancePortion)
	l.gapX = remaining / float32(width+1)
	l.gapY = remaining / float32(height+1)
	l.beginX = -1 + l.gapX + l.sizeX/2
	l.beginY = -1 + l.gapY + l.sizeY/2

	return l
}

// ScaleMatrix is the uniform scale applied to the unit quad, shrinking it to
// one cell's size.
func (l Layout) ScaleMatrix() Mat2 {
	return Mat2{{l.sizeX, 0}, {0, l.sizeY}}
}

// CellTransform returns the full vertex transform of the cell at (i, j).
func (l Layout) CellTransform(i, j int) Transform {
	return Transform{
		Scale: l.ScaleMatrix(),
		Translate: lin.Vec2{
			l.beginX + float32(j)*(l.sizeX+l.gapX),
			l.beginY + float32(i)*(l.sizeY+l.gapY),
		},
	}
}

// FillInstances writes one instance per cell into dst, translate and colour
// both. dst must hold width*height instances. The caller holds the grid
// lock.
func (l Layout) FillInstances(dst []CellInstance, g *life.Grid) {
	cells := g.Cells()

	translate := lin.Vec2{l.beginX, l.beginY}
	idx := 0
	for i := 0; i < l.height; i++ {
		for j := 0; j < l.width; j++ {
			dst[idx].Translate = translate
			dst[idx].Colour = cellColour(&cells[i][j])
			translate[0] += l.sizeX + l.gapX
			idx++
		}
		translate[1] += l.sizeY + l.gapY
		translate[0] = l.beginX
	}
}

// UpdateColours rewrites only the instance colours. Translates never change
// between relayouts, so this is the per-frame path.
func (l Layout) UpdateColours(dst []CellInstance, g *life.Grid) {
	cells := g.Cells()

	idx := 0
	for i := 0; i < l.height; i++ {
		for j := 0; j < l.width; j++ {
			dst[idx].Colour = cellColour(&cells[i][j])
			idx++
		}
	}
}

// CellAt maps an NDC point back to the cell it falls on. Points landing in
// the gaps or outside the board return false.
func (l Layout) CellAt(ndc lin.Vec2) (life.Coord, bool) {
	j, ok := cellIndex(ndc[0], l.gapX, l.sizeX, l.width)
	if !ok {
		return life.Coord{}, false
	}
	i, ok := cellIndex(ndc[1], l.gapY, l.sizeY, l.height)
	if !ok {
		return life.Coord{}, false
	}
	return life.Coord{I: i, J: j}, true
}

// cellIndex resolves one axis: cell n spans [gap*(n+1) + size*n - 1) to the
// same plus size, with stride size+gap.
func cellIndex(coord, gap, size float32, count int) (int, bool) {
	t := coord + 1 - gap
	if t < 0 {
		return 0, false
	}
	stride := size + gap
	n := int(t / stride)
	if n >= count {
		return 0, false
	}
	if t-float32(n)*stride > size {
		return 0, false
	}
	return n, true
}

func cellColour(c *life.Cell) lin.Vec4 {
	if c.Alive() {
		return AliveColour
	}
	return DeadColour
}
