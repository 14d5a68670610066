package life

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Pattern is a rectangular stamp of cells parsed from a plaintext pattern
// file. In the plaintext format lines starting with '!' are comments, '.'
// is a dead cell and 'O' is a live cell; short rows are padded with dead
// cells to the width of the longest row.
type Pattern struct {
	Name string
	rows [][]bool
}

func (p *Pattern) Height() int {
	return len(p.rows)
}

func (p *Pattern) Width() int {
	if len(p.rows) == 0 {
		return 0
	}
	return len(p.rows[0])
}

// ParsePattern parses plaintext pattern data.
func ParsePattern(data string) (*Pattern, error) {
	p := &Pattern{}
	width := 0

	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, "!") {
			if p.Name == "" && strings.HasPrefix(line, "!Name:") {
				p.Name = strings.TrimSpace(strings.TrimPrefix(line, "!Name:"))
			}
			continue
		}
		if strings.TrimSpace(line) == "" && len(p.rows) == 0 {
			continue
		}
		row := make([]bool, 0, len(line))
		for _, r := range line {
			switch r {
			case '.':
				row = append(row, false)
			case 'O', 'o', '*':
				row = append(row, true)
			case ' ', '\t':
				row = append(row, false)
			default:
				return nil, fmt.Errorf("unexpected character %q in pattern", r)
			}
		}
		if len(row) > width {
			width = len(row)
		}
		p.rows = append(p.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.rows) == 0 {
		return nil, fmt.Errorf("pattern contains no cells")
	}

	for i, row := range p.rows {
		for len(row) < width {
			row = append(row, false)
		}
		p.rows[i] = row
	}

	return p, nil
}

// LoadPattern reads and parses a plaintext pattern file.
func LoadPattern(file string) (*Pattern, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	p, err := ParsePattern(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if p.Name == "" {
		p.Name = file
	}
	return p, nil
}

// Stamp writes the pattern onto the grid with its top-left corner at
// (i, j), wrapping toroidally. Cells outside the pattern are untouched.
func (p *Pattern) Stamp(g *Grid, i, j int) {
	for pi, row := range p.rows {
		for pj, alive := range row {
			if alive {
				ti := (i + pi) % g.Height()
				tj := (j + pj) % g.Width()
				g.Set(ti, tj, Alive)
			}
		}
	}
}

// StampCentered writes the pattern onto the middle of the grid.
func (p *Pattern) StampCentered(g *Grid) {
	i := (g.Height() - p.Height()) / 2
	if i < 0 {
		i = 0
	}
	j := (g.Width() - p.Width()) / 2
	if j < 0 {
		j = 0
	}
	p.Stamp(g, i, j)
}
