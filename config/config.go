// Package config holds the application options shared by the CLI and the
// windowed app.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of application options. The zero value is not
// usable; start from Default.
type Config struct {
	// GridWidth and GridHeight are the board dimensions in cells.
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`

	// WindowWidth and WindowHeight are the initial window dimensions in
	// pixels.
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// UpdateRate is the number of generations advanced per second.
	UpdateRate int `yaml:"update_rate"`

	// Seed for random board seeding. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`

	// Density is the fraction of cells seeded alive, in (0,1]. Zero uses
	// the default.
	Density float64 `yaml:"density"`

	// Pattern is an optional plaintext pattern file stamped onto the middle
	// of an otherwise blank board.
	Pattern string `yaml:"pattern"`

	// HUD enables the stats overlay.
	HUD bool `yaml:"hud"`

	// Debug enables the Vulkan validation layers.
	Debug bool `yaml:"debug"`
}

// Default returns the standard options: a 100x80 board in a 1024x768 window
// at 30 updates per second, with the stats overlay on.
func Default() Config {
	return Config{
		GridWidth:    100,
		GridHeight:   80,
		WindowWidth:  1024,
		WindowHeight: 768,
		UpdateRate:   30,
		HUD:          true,
	}
}

// Load reads a YAML config file over the defaults.
func Load(file string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(file)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%s: %w", file, err)
	}
	return c, nil
}

// Validate rejects option combinations the app cannot run with.
func (c *Config) Validate() error {
	if c.GridWidth <= 0 {
		return fmt.Errorf("grid-width should be a positive number greater than 0, got %d", c.GridWidth)
	}
	if c.GridHeight <= 0 {
		return fmt.Errorf("grid-height should be a positive number greater than 0, got %d", c.GridHeight)
	}
	if c.WindowWidth <= 0 {
		return fmt.Errorf("window-width should be a positive number greater than 0, got %d", c.WindowWidth)
	}
	if c.WindowHeight <= 0 {
		return fmt.Errorf("window-height should be a positive number greater than 0, got %d", c.WindowHeight)
	}
	if c.UpdateRate <= 0 {
		return fmt.Errorf("update-rate should be a positive number, got %d", c.UpdateRate)
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("density should be between 0 and 1, got %g", c.Density)
	}
	return nil
}
