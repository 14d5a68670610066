// Command gol runs Conway's Game of Life in a Vulkan window, or headless
// for timing runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lloydmeta/gol/app"
	"github.com/lloydmeta/gol/config"
	"github.com/lloydmeta/gol/hud"
	"github.com/lloydmeta/gol/life"
	"github.com/lloydmeta/gol/render"
	"github.com/schollz/progressbar/v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	defaults := config.Default()

	var (
		configFile = flag.String("config", "", "YAML config file; flags take precedence")
		headless   = flag.Int("headless", 0, "advance N generations without a window and report timing")

		gridWidth    = flag.Int("grid-width", defaults.GridWidth, "width of the grid")
		gridHeight   = flag.Int("grid-height", defaults.GridHeight, "height of the grid")
		windowWidth  = flag.Int("window-width", defaults.WindowWidth, "width of the window")
		windowHeight = flag.Int("window-height", defaults.WindowHeight, "height of the window")
		updateRate   = flag.Int("update-rate", defaults.UpdateRate, "number of updates to the game board per second")
		seed         = flag.Int64("seed", defaults.Seed, "random seed; 0 seeds from the clock")
		density      = flag.Float64("density", defaults.Density, "fraction of cells seeded alive, in (0,1]; 0 uses the default")
		pattern      = flag.String("pattern", defaults.Pattern, "plaintext .cells pattern file stamped onto a blank board")
		hudEnabled   = flag.Bool("hud", defaults.HUD, "show the stats overlay")
		debug        = flag.Bool("debug", defaults.Debug, "enable the Vulkan validation layers")
	)
	flag.Parse()

	cfg := defaults
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return fmt.Errorf("unable to load config: %w", err)
		}
	}

	// Explicitly set flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grid-width":
			cfg.GridWidth = *gridWidth
		case "grid-height":
			cfg.GridHeight = *gridHeight
		case "window-width":
			cfg.WindowWidth = *windowWidth
		case "window-height":
			cfg.WindowHeight = *windowHeight
		case "update-rate":
			cfg.UpdateRate = *updateRate
		case "seed":
			cfg.Seed = *seed
		case "density":
			cfg.Density = *density
		case "pattern":
			cfg.Pattern = *pattern
		case "hud":
			cfg.HUD = *hudEnabled
		case "debug":
			cfg.Debug = *debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	grid, err := buildGrid(cfg)
	if err != nil {
		return err
	}

	if *headless > 0 {
		return runHeadless(grid, *headless)
	}

	return runWindowed(grid, cfg)
}

// buildGrid seeds the board: a centered pattern stamp when one is given,
// otherwise random seeding.
func buildGrid(cfg config.Config) (*life.Grid, error) {
	if cfg.Pattern != "" {
		grid, err := life.NewWithOptions(cfg.GridWidth, cfg.GridHeight, &life.Options{Blank: true})
		if err != nil {
			return nil, err
		}
		p, err := life.LoadPattern(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		p.StampCentered(grid)
		return grid, nil
	}

	return life.NewWithOptions(cfg.GridWidth, cfg.GridHeight, &life.Options{
		Seed:    cfg.Seed,
		Density: cfg.Density,
	})
}

func runHeadless(grid *life.Grid, generations int) error {
	bar := progressbar.Default(int64(generations), "generations")

	start := time.Now()
	for n := 0; n < generations; n++ {
		grid.Advance()
		bar.Add(1)
	}
	elapsed := time.Since(start)

	log.Printf("advanced %dx%d grid %d generations in %v (%.1f gen/s), final population %d",
		grid.Width(), grid.Height(), generations, elapsed,
		float64(generations)/elapsed.Seconds(), grid.Population())

	return nil
}

func runWindowed(grid *life.Grid, cfg config.Config) error {
	base, err := app.NewAppBase("Game of Life", cfg.WindowWidth, cfg.WindowHeight, cfg.Debug)
	if err != nil {
		return err
	}
	base.ClearColour = [4]float32(render.ClearColour)

	game := app.NewGame(grid, cfg.UpdateRate, cfg.Density)
	game.SetWindow(base.Window)

	if err := base.Init(); err != nil {
		return err
	}

	board, err := render.NewModule(base, game)
	if err != nil {
		return fmt.Errorf("unable to create board renderer: %w", err)
	}
	base.AddGraphicsModule(board)
	base.OnPrepare = board.Relayout

	if cfg.HUD {
		overlay, err := hud.NewOverlay(base, game)
		if err != nil {
			return fmt.Errorf("unable to create overlay: %w", err)
		}
		base.AddGraphicsModule(overlay)
		base.AddInputModule(overlay)
	}

	// The overlay sees input first so clicks over the panel do not toggle
	// cells underneath it.
	base.AddInputModule(board)
	base.AddInputModule(game)

	if err := base.PrepareToDraw(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	game.Start(ctx)

	for !base.ShouldClose() {
		base.NewFrame()
		if err := base.DrawFrameSync(); err != nil {
			cancel()
			game.Wait()
			return err
		}
		base.PostFrame()
	}

	cancel()
	game.Wait()

	base.Destroy()

	return nil
}
