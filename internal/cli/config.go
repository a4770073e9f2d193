package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user preferences loaded from floorplan.toml.
//
// Files are read in order, later values overriding earlier ones:
//
//  1. ~/.config/floorplan/config.toml
//  2. ./floorplan.toml
//
// Command-line flags override both.
type Config struct {
	// SystemUnit is the fallback unit symbol for documents that don't
	// configure one (e.g. "m" or "ft").
	SystemUnit string `toml:"system_unit"`

	// Scale is the default pixels-per-meter for SVG output.
	Scale float64 `toml:"scale"`

	// Grid draws 1-meter grid lines in SVG output by default.
	Grid bool `toml:"grid"`

	// Addr is the default listen address for the serve command.
	Addr string `toml:"addr"`

	// Redis is the Redis address used as cache backend by serve.
	Redis string `toml:"redis"`

	// Mongo is the MongoDB URI used as snapshot backend by serve.
	Mongo string `toml:"mongo"`
}

// LoadConfig reads the config files. Missing files are skipped silently;
// a malformed file is also skipped so a broken config never blocks the CLI.
func LoadConfig() Config {
	var cfg Config
	for _, path := range configPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// Ignore decode errors: partial values before the error still apply.
		_, _ = toml.Decode(string(data), &cfg)
	}
	return cfg
}

func configPaths() []string {
	var paths []string
	if dir, err := configDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}
	paths = append(paths, "floorplan.toml")
	return paths
}
