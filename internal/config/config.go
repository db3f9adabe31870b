// Package config holds the layout generator's recognized options, their
// defaults and validation.
package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/samdwyer/dungeonlayout/internal/errors"
)

// Environment variables that override file values.
const (
	EnvSeed  = "DUNGEONLAYOUT_SEED"
	EnvRooms = "DUNGEONLAYOUT_ROOMS"
)

// MaxRooms bounds the room count. Separation is quadratic per pass, so
// anything larger is a typo rather than a layout.
const MaxRooms = 100_000

// Merge strategies for overlapping scattered rooms.
const (
	MergeOrdered = "ordered" // every intersecting ordered pair copies the second color onto the first
	MergeCluster = "cluster" // one canonical color per connected overlap cluster
)

// Room sets fed into the connectivity triangulation.
const (
	ConnectMajor = "major"
	ConnectAll   = "all"
	ConnectNone  = "none"
)

// Config holds every option the generator recognizes.
type Config struct {
	// Seed for the pseudorandom generator. 0 seeds from the clock.
	Seed int64 `toml:"seed"`
	// Rooms is the target room count N.
	Rooms int `toml:"rooms"`

	Viewport Viewport `toml:"viewport"`
	Scatter  Scatter  `toml:"scatter"`
	Size     Size     `toml:"size"`
	Grid     Grid     `toml:"grid"`
	Merge    Merge    `toml:"merge"`
	Separate Separate `toml:"separate"`
	Classify Classify `toml:"classify"`
	Connect  Connect  `toml:"connect"`
	Colors   Colors   `toml:"colors"`
	Frame    Frame    `toml:"frame"`
}

// Viewport is the host's drawing area. Its aspect ratio scales room heights.
type Viewport struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Scatter sets the radii of the ellipse rooms are scattered in.
type Scatter struct {
	SpreadX float64 `toml:"spread_x"`
	SpreadY float64 `toml:"spread_y"`
}

// Size is the room size distribution. A zero MeanH or StdDevH is derived
// from the width value times the viewport aspect ratio.
type Size struct {
	MeanW   float64 `toml:"mean_w"`
	StdDevW float64 `toml:"stddev_w"`
	MeanH   float64 `toml:"mean_h"`
	StdDevH float64 `toml:"stddev_h"`
	Min     float64 `toml:"min"`
}

// Grid is the alignment grid.
type Grid struct {
	Step float64 `toml:"step"`
}

// Merge selects how overlapping scattered rooms share colors.
type Merge struct {
	Strategy string `toml:"strategy"`
}

// Separate tunes the relaxation phase.
type Separate struct {
	Speed     float64 `toml:"speed"`
	MaxPasses int     `toml:"max_passes"`
}

// Classify tunes the major/minor split.
type Classify struct {
	Inflation float64 `toml:"inflation"`
}

// Connect selects which room centers are triangulated.
type Connect struct {
	Rooms string `toml:"rooms"`
}

// Colors are hex strings such as "#c0392b".
type Colors struct {
	Major   string `toml:"major"`
	Minor   string `toml:"minor"`
	Outline string `toml:"outline"`
}

// Frame sets host pacing.
type Frame struct {
	Rate int `toml:"rate"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(defaultTOML)).Decode(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the defaults, overlays the TOML file at path when path is not
// empty, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides the seed and room count from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvSeed)
		}
		c.Seed = seed
	}
	if v, ok := lookup(EnvRooms); ok && v != "" {
		rooms, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvRooms)
		}
		c.Rooms = rooms
	}
	return nil
}

// AspectRatio returns viewport height over width.
func (c Config) AspectRatio() float64 {
	return c.Viewport.Height / c.Viewport.Width
}

// HeightDistribution returns the mean and standard deviation of room heights,
// deriving zero values from the width distribution.
func (c Config) HeightDistribution() (mean, stdDev float64) {
	mean, stdDev = c.Size.MeanH, c.Size.StdDevH
	if mean == 0 {
		mean = c.Size.MeanW * c.AspectRatio()
	}
	if stdDev == 0 {
		stdDev = c.Size.StdDevW * c.AspectRatio()
	}
	return mean, stdDev
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"rooms", float64(c.Rooms)},
		{"viewport.width", c.Viewport.Width},
		{"viewport.height", c.Viewport.Height},
		{"size.mean_w", c.Size.MeanW},
		{"size.min", c.Size.Min},
		{"grid.step", c.Grid.Step},
		{"separate.speed", c.Separate.Speed},
		{"separate.max_passes", float64(c.Separate.MaxPasses)},
		{"classify.inflation", c.Classify.Inflation},
		{"frame.rate", float64(c.Frame.Rate)},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %v", p.name, p.value)
		}
	}

	if c.Rooms > MaxRooms {
		return errors.New(errors.ErrCodeInvalidConfig, "rooms must be at most %d, got %d", MaxRooms, c.Rooms)
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"scatter.spread_x", c.Scatter.SpreadX},
		{"scatter.spread_y", c.Scatter.SpreadY},
		{"size.stddev_w", c.Size.StdDevW},
		{"size.mean_h", c.Size.MeanH},
		{"size.stddev_h", c.Size.StdDevH},
	}
	for _, p := range nonNegative {
		if !(p.value >= 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %v", p.name, p.value)
		}
	}

	switch c.Merge.Strategy {
	case MergeOrdered, MergeCluster:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "merge.strategy must be %q or %q, got %q",
			MergeOrdered, MergeCluster, c.Merge.Strategy)
	}

	switch c.Connect.Rooms {
	case ConnectMajor, ConnectAll, ConnectNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "connect.rooms must be %q, %q or %q, got %q",
			ConnectMajor, ConnectAll, ConnectNone, c.Connect.Rooms)
	}

	for name, hex := range map[string]string{
		"colors.major":   c.Colors.Major,
		"colors.minor":   c.Colors.Minor,
		"colors.outline": c.Colors.Outline,
	} {
		if _, err := ParseHexColor(hex); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
		}
	}
	return nil
}

// Palette returns the packed major, minor and outline colors.
func (c Config) Palette() (major, minor, outline uint32, err error) {
	if major, err = ParseHexColor(c.Colors.Major); err != nil {
		return 0, 0, 0, err
	}
	if minor, err = ParseHexColor(c.Colors.Minor); err != nil {
		return 0, 0, 0, err
	}
	if outline, err = ParseHexColor(c.Colors.Outline); err != nil {
		return 0, 0, 0, err
	}
	return major, minor, outline, nil
}

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to a packed 0xRRGGBB value.
func ParseHexColor(hex string) (uint32, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid hex color length: %q", hex)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid hex color %q", hex)
	}
	r, g, b := c.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}
