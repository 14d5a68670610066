package app

import (
	"context"
	"testing"
	"time"

	"github.com/lloydmeta/gol/life"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) *Game {
	grid, err := life.NewWithOptions(8, 8, &life.Options{Blank: true})
	require.NoError(t, err)
	return NewGame(grid, 100, 0.5)
}

func TestGameStepOnlyWhilePaused(t *testing.T) {
	g := newTestGame(t)

	g.Step()
	gen, _ := g.Stats()
	assert.Equal(t, uint64(0), gen, "step should be a no-op while running")

	assert.True(t, g.TogglePause())
	g.Step()
	g.Step()
	gen, _ = g.Stats()
	assert.Equal(t, uint64(2), gen)

	assert.False(t, g.TogglePause())
}

func TestGameReseed(t *testing.T) {
	g := newTestGame(t)

	g.TogglePause()
	g.Step()

	g.Reseed()
	gen, pop := g.Stats()
	assert.Equal(t, uint64(0), gen)
	assert.Greater(t, pop, 0, "reseeding should bring cells back to life")
}

func TestGameClockAdvances(t *testing.T) {
	g := newTestGame(t)

	// A blinker oscillates, so the board keeps changing as the clock runs.
	g.With(func(grid *life.Grid) {
		grid.Set(3, 2, life.Alive)
		grid.Set(3, 3, life.Alive)
		grid.Set(3, 4, life.Alive)
	})

	ctx, cancel := context.WithCancel(context.Background())
	g.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		gen, _ := g.Stats()
		if gen >= 3 {
			break
		}
		select {
		case <-deadline:
			cancel()
			g.Wait()
			t.Fatalf("clock did not advance, at generation %d", gen)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	g.Wait()

	_, pop := g.Stats()
	assert.Equal(t, 3, pop, "blinker population is stable")
}

func TestGamePauseStopsClock(t *testing.T) {
	g := newTestGame(t)
	g.TogglePause()

	ctx, cancel := context.WithCancel(context.Background())
	g.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	gen, _ := g.Stats()
	assert.Equal(t, uint64(0), gen)

	cancel()
	g.Wait()
}
