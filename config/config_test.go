package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, 100, c.GridWidth)
	assert.Equal(t, 80, c.GridHeight)
	assert.Equal(t, 30, c.UpdateRate)
	assert.True(t, c.HUD)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero grid width", func(c *Config) { c.GridWidth = 0 }},
		{"negative grid height", func(c *Config) { c.GridHeight = -3 }},
		{"zero window width", func(c *Config) { c.WindowWidth = 0 }},
		{"zero window height", func(c *Config) { c.WindowHeight = 0 }},
		{"zero update rate", func(c *Config) { c.UpdateRate = 0 }},
		{"density above one", func(c *Config) { c.Density = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gol.yaml")
	data := "grid_width: 32\ngrid_height: 24\nupdate_rate: 10\nhud: false\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 32, c.GridWidth)
	assert.Equal(t, 24, c.GridHeight)
	assert.Equal(t, 10, c.UpdateRate)
	assert.False(t, c.HUD)
	// untouched keys keep their defaults
	assert.Equal(t, 1024, c.WindowWidth)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("grid_width: [oops\n"), 0o644))
	_, err := Load(file)
	assert.Error(t, err)
}
