// Package config loads editor settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreJSON   = "json"
	StoreBadger = "badger"
)

const (
	defaultStorePath = "levels.json"
	defaultMapFile   = "level.map"
	defaultTileWidth = 2
	// Tile width bounds in terminal cells
	MinTileWidth = 1
	MaxTileWidth = 4
)

// Config holds editor configuration.
type Config struct {
	// Cols and Rows fix the grid size. Zero means fit the terminal.
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`

	// TileWidth is the number of terminal cells drawn per tile horizontally.
	TileWidth int `yaml:"tile_width"`

	// MapFile is where X exports and M imports map strings.
	MapFile string `yaml:"map_file"`

	Store StoreConfig `yaml:"store"`

	// Telemetry enables the OTLP trace exporter.
	Telemetry bool `yaml:"telemetry"`
}

// StoreConfig selects where saved levels live.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "json" or "badger"
	Path    string `yaml:"path"`
}

// Load reads the YAML file at path, then applies environment overrides and defaults.
// If path is empty TOWERFIELD_CONFIG is used; if that is empty too, only the
// environment and defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TOWERFIELD_CONFIG")
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with TOWERFIELD_* variables when they are set.
func (c *Config) applyEnv() error {
	ints := []struct {
		env string
		dst *int
	}{
		{"TOWERFIELD_COLS", &c.Cols},
		{"TOWERFIELD_ROWS", &c.Rows},
		{"TOWERFIELD_TILE_WIDTH", &c.TileWidth},
	}
	for _, v := range ints {
		s := os.Getenv(v.env)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", v.env, s, err)
		}
		*v.dst = n
	}

	if s := os.Getenv("TOWERFIELD_MAP_FILE"); s != "" {
		c.MapFile = s
	}
	if s := os.Getenv("TOWERFIELD_STORE"); s != "" {
		c.Store.Backend = s
	}
	if s := os.Getenv("TOWERFIELD_STORE_PATH"); s != "" {
		c.Store.Path = s
	}
	if s := os.Getenv("TOWERFIELD_TELEMETRY"); s != "" {
		on, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid TOWERFIELD_TELEMETRY=%q: %w", s, err)
		}
		c.Telemetry = on
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.TileWidth == 0 {
		c.TileWidth = defaultTileWidth
	}
	if c.MapFile == "" {
		c.MapFile = defaultMapFile
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreJSON
	}
	if c.Store.Path == "" {
		if c.Store.Backend == StoreBadger {
			c.Store.Path = "levels.db"
		} else {
			c.Store.Path = defaultStorePath
		}
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Cols < 0 || c.Rows < 0 {
		return fmt.Errorf("grid size %dx%d must not be negative", c.Cols, c.Rows)
	}
	if (c.Cols == 0) != (c.Rows == 0) {
		return fmt.Errorf("cols and rows must both be set or both be zero")
	}
	if c.TileWidth < MinTileWidth || c.TileWidth > MaxTileWidth {
		return fmt.Errorf("tile width %d out of range [%d, %d]", c.TileWidth, MinTileWidth, MaxTileWidth)
	}
	if c.Store.Backend != StoreJSON && c.Store.Backend != StoreBadger {
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// FixedSize reports whether the grid size is pinned rather than fit to the terminal.
func (c *Config) FixedSize() bool {
	return c.Cols > 0 && c.Rows > 0
}
