package life

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultDensity is the fraction of cells seeded alive when no density is
// specified.
const DefaultDensity = 0.5

// Coord addresses a cell by from-zero (i, j) notation, where i is the row
// and j is the column:
//
//	[ (0,0) (0,1) (0,2) ]
//	[ (1,0) (1,1) (1,2) ]
//	[ (2,0) (2,1) (2,2) ]
type Coord struct {
	I int
	J int
}

type coordNeighbours struct {
	coord      Coord
	neighbours [8]Coord
}

// Grid is a toroidal Game of Life board. Neighbour coordinates wrap at the
// edges and are precomputed once at construction, so Advance only has to
// count and update. A Grid is not safe for concurrent use; callers that share
// one between goroutines must serialize access themselves.
type Grid struct {
	cells      [][]Cell
	maxI       int
	maxJ       int
	neighbours []coordNeighbours
	counts     []int
	generation uint64
}

// Options control how a new grid is seeded.
type Options struct {
	// Seed for the random seeding. Zero means seed from the clock.
	Seed int64
	// Density is the fraction of cells seeded alive, in (0,1]. Zero means
	// DefaultDensity.
	Density float64
	// Blank skips random seeding entirely, leaving every cell dead.
	Blank bool
}

// New creates a width x height grid with roughly half the cells alive.
func New(width, height int) (*Grid, error) {
	return NewWithOptions(width, height, nil)
}

// NewWithOptions creates a width x height grid seeded per the given options.
func NewWithOptions(width, height int, options *Options) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}

	g := &Grid{
		cells: make([][]Cell, height),
		maxI:  height - 1,
		maxJ:  width - 1,
	}
	for i := range g.cells {
		g.cells[i] = make([]Cell, width)
	}

	area := width * height
	g.neighbours = make([]coordNeighbours, 0, area)
	g.counts = make([]int, area)
	for i := 0; i <= g.maxI; i++ {
		for j := 0; j <= g.maxJ; j++ {
			coord := Coord{I: i, J: j}
			g.neighbours = append(g.neighbours, coordNeighbours{
				coord:      coord,
				neighbours: neighbourCoords(g.maxI, g.maxJ, coord),
			})
		}
	}

	if options == nil || !options.Blank {
		var seed int64
		var density float64
		if options != nil {
			seed = options.Seed
			density = options.Density
		}
		g.seed(seed, density)
	}

	return g, nil
}

func (g *Grid) seed(seed int64, density float64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if density <= 0 || density > 1 {
		density = DefaultDensity
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range g.cells {
		for j := range g.cells[i] {
			status := Dead
			if rng.Float64() < density {
				status = Alive
			}
			g.cells[i][j].Status = status
		}
	}
}

// Reseed re-randomizes the board and resets the generation counter.
func (g *Grid) Reseed(seed int64, density float64) {
	g.seed(seed, density)
	g.generation = 0
}

// Clear kills every cell and resets the generation counter.
func (g *Grid) Clear() {
	for i := range g.cells {
		for j := range g.cells[i] {
			g.cells[i][j].Status = Dead
		}
	}
	g.generation = 0
}

func (g *Grid) Height() int {
	return g.maxI + 1
}

func (g *Grid) Width() int {
	return g.maxJ + 1
}

func (g *Grid) Area() int {
	return g.Height() * g.Width()
}

// Generation is the number of times Advance has run since the last seeding.
func (g *Grid) Generation() uint64 {
	return g.generation
}

// Cells exposes the board row-major for iteration. The returned slices are
// the grid's own storage; treat them as read-only and hold the caller's lock
// while iterating.
func (g *Grid) Cells() [][]Cell {
	return g.cells
}

// Alive reports whether the cell at (i, j) is alive.
func (g *Grid) Alive(i, j int) bool {
	return g.cells[i][j].Alive()
}

// Set forces the cell at (i, j) to the given status.
func (g *Grid) Set(i, j int, status Status) {
	g.cells[i][j].Status = status
}

// Toggle flips the cell at (i, j) and returns its new status.
func (g *Grid) Toggle(i, j int) Status {
	if g.cells[i][j].Alive() {
		g.cells[i][j].Status = Dead
	} else {
		g.cells[i][j].Status = Alive
	}
	return g.cells[i][j].Status
}

// Population counts the live cells.
func (g *Grid) Population() int {
	n := 0
	for i := range g.cells {
		for j := range g.cells[i] {
			if g.cells[i][j].Alive() {
				n++
			}
		}
	}
	return n
}

// Advance moves the grid to its next generation. All neighbour counts are
// taken against the current state before any cell is updated.
func (g *Grid) Advance() {
	for idx := range g.neighbours {
		alive := 0
		for _, c := range g.neighbours[idx].neighbours {
			if g.cells[c.I][c.J].Status == Alive {
				alive++
			}
		}
		g.counts[idx] = alive
	}
	for idx := range g.neighbours {
		c := g.neighbours[idx].coord
		g.cells[c.I][c.J].update(g.counts[idx])
	}
	g.generation++
}

// neighbourCoords returns the (maybe wrapped) coordinates of the eight
// neighbours of coord, clockwise from north.
func neighbourCoords(maxI, maxJ int, coord Coord) [8]Coord {
	i, j := coord.I, coord.J

	up := i - 1
	if i == 0 {
		up = maxI
	}
	down := i + 1
	if i == maxI {
		down = 0
	}
	left := j - 1
	if j == 0 {
		left = maxJ
	}
	right := j + 1
	if j == maxJ {
		right = 0
	}

	return [8]Coord{
		{I: up, J: j},       // N
		{I: up, J: right},   // NE
		{I: i, J: right},    // E
		{I: down, J: right}, // SE
		{I: down, J: j},     // S
		{I: down, J: left},  // SW
		{I: i, J: left},     // W
		{I: up, J: left},    // NW
	}
}
