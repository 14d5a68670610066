package life

// Status is the liveness of a single cell.
type Status uint8

const (
	Dead Status = iota
	Alive
)

func (s Status) String() string {
	if s == Alive {
		return "alive"
	}
	return "dead"
}

// Cell is one position on the board.
type Cell struct {
	Status Status
}

func (c *Cell) Alive() bool {
	return c.Status == Alive
}

// update applies the standard rules given the number of live neighbours.
// https://en.wikipedia.org/wiki/Conway%27s_Game_of_Life#Rules
func (c *Cell) update(neighbours int) {
	c.Status = c.next(neighbours)
}

func (c *Cell) next(neighbours int) Status {
	switch {
	case neighbours == 3:
		return Alive
	case c.Status == Alive && neighbours == 2:
		return Alive
	default:
		return Dead
	}
}
