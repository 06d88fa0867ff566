package grid

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// ConfigLayer is one routing layer entry in a grid configuration file.
// MaxNumTracks falls back to the file-level default when zero.
type ConfigLayer struct {
	ID           int `toml:"id"`
	Space        int `toml:"space"`
	Width        int `toml:"width"`
	MaxNumTracks int `toml:"max-num-tracks"`
}

// Config is the decoded form of a TOML grid configuration file. Track
// directions alternate upward from BottomDirection.
type Config struct {
	BottomDirection string        `toml:"bottom-direction"`
	MaxNumTracks    int           `toml:"max-num-tracks"`
	Layers          []ConfigLayer `toml:"layer"`
}

// LoadConfig reads a TOML grid configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read grid config %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode grid config %s", path)
	}
	return &cfg, nil
}

// FromConfig builds a routing grid from a decoded configuration.
func FromConfig(t tech.Tech, cfg *Config) (*Grid, error) {
	var botDir Direction
	switch cfg.BottomDirection {
	case "x", "":
		botDir = DirX
	case "y":
		botDir = DirY
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"bottom-direction must be \"x\" or \"y\", got %q", cfg.BottomDirection)
	}
	maxDefault := cfg.MaxNumTracks
	if maxDefault == 0 {
		maxDefault = 100
	}
	if len(cfg.Layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "grid config has no layers")
	}

	g := &Grid{tech: t, layers: map[int]*Layer{}}
	dir := botDir
	prev := cfg.Layers[0].ID - 1
	for _, cl := range cfg.Layers {
		if cl.ID <= prev {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"grid config layers must have strictly increasing IDs, got %d after %d", cl.ID, prev)
		}
		prev = cl.ID
		maxNtr := cl.MaxNumTracks
		if maxNtr == 0 {
			maxNtr = maxDefault
		}
		if err := g.AddLayer(cl.ID, cl.Space, cl.Width, dir, maxNtr, false, false); err != nil {
			return nil, err
		}
		dir = dir.Perp()
	}
	g.updateBlockPitch()
	return g, nil
}
