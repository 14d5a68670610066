package app

import (
	"context"
	"sync"
	"time"

	"github.com/lloydmeta/gol/life"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

// Game owns the board and its clock. The grid itself is not thread safe, so
// every access from the simulation goroutine, the render loop and the input
// handlers goes through the Game's mutex.
type Game struct {
	mu   sync.Mutex
	grid *life.Grid

	updateRate int
	density    float64

	paused bool

	window *glfw.Window
	done   chan struct{}
}

// NewGame wraps a seeded grid with a clock ticking updateRate generations
// per second.
func NewGame(grid *life.Grid, updateRate int, density float64) *Game {
	return &Game{
		grid:       grid,
		updateRate: updateRate,
		density:    density,
	}
}

// SetWindow gives the game a window to close when Escape is pressed.
func (g *Game) SetWindow(window *glfw.Window) {
	g.window = window
}

// UpdateRate is the configured generations per second.
func (g *Game) UpdateRate() int {
	return g.updateRate
}

// Start launches the simulation goroutine. It runs until ctx is cancelled;
// Wait blocks until it has exited.
func (g *Game) Start(ctx context.Context) {
	g.done = make(chan struct{})

	go func() {
		defer close(g.done)

		ticker := time.NewTicker(time.Second / time.Duration(g.updateRate))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.mu.Lock()
				if !g.paused {
					g.grid.Advance()
				}
				g.mu.Unlock()
			}
		}
	}()
}

// Wait blocks until the simulation goroutine has stopped.
func (g *Game) Wait() {
	if g.done != nil {
		<-g.done
	}
}

// With runs f with the grid lock held.
func (g *Game) With(f func(grid *life.Grid)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(g.grid)
}

// TogglePause flips the paused state and returns the new value.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = !g.paused
	return g.paused
}

// Paused reports whether the clock is paused.
func (g *Game) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Step advances one generation. It only applies while paused; when running
// the clock already owns the cadence.
func (g *Game) Step() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.grid.Advance()
	}
}

// Reseed re-randomizes the board from the clock at the configured density.
func (g *Game) Reseed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grid.Reseed(0, g.density)
}

// Stats snapshots the generation and population counters.
func (g *Game) Stats() (generation uint64, population int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grid.Generation(), g.grid.Population()
}

// KeyChange handles the game's keyboard controls: Escape quits, Space
// pauses, S steps while paused, R reseeds.
func (g *Game) KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool {
	if action != glfw.Press {
		return false
	}

	switch key {
	case glfw.KeyEscape:
		if g.window != nil {
			g.window.SetShouldClose(true)
		}
	case glfw.KeySpace:
		g.TogglePause()
	case glfw.KeyS:
		g.Step()
	case glfw.KeyR:
		g.Reseed()
	default:
		return false
	}
	return true
}

func (g *Game) MouseScrollChange(x, y float64) bool {
	return false
}

func (g *Game) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool {
	return false
}

func (g *Game) CharChange(char rune) bool {
	return false
}
