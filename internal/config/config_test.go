package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samdwyer/dungeonlayout/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Rooms != 100 {
		t.Errorf("Rooms = %d, want 100", cfg.Rooms)
	}
	if cfg.Grid.Step != 8 || cfg.Size.Min != 8 {
		t.Errorf("Grid.Step = %v, Size.Min = %v, want 8 and 8", cfg.Grid.Step, cfg.Size.Min)
	}
	if cfg.Separate.Speed != 1.0 {
		t.Errorf("Separate.Speed = %v, want 1.0", cfg.Separate.Speed)
	}
	if cfg.Classify.Inflation != 1.1 {
		t.Errorf("Classify.Inflation = %v, want 1.1", cfg.Classify.Inflation)
	}
	if cfg.Merge.Strategy != MergeOrdered || cfg.Connect.Rooms != ConnectMajor {
		t.Errorf("Merge.Strategy = %q, Connect.Rooms = %q", cfg.Merge.Strategy, cfg.Connect.Rooms)
	}
}

func TestHeightDistributionDerived(t *testing.T) {
	cfg := Default()
	mean, sd := cfg.HeightDistribution()
	ratio := 1080.0 / 1920.0
	if mean != 60*ratio || sd != 20*ratio {
		t.Errorf("HeightDistribution() = (%v, %v), want (%v, %v)", mean, sd, 60*ratio, 20*ratio)
	}

	cfg.Size.MeanH = 40
	cfg.Size.StdDevH = 5
	if mean, sd := cfg.HeightDistribution(); mean != 40 || sd != 5 {
		t.Errorf("explicit HeightDistribution() = (%v, %v), want (40, 5)", mean, sd)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rooms", func(c *Config) { c.Rooms = 0 }},
		{"negative rooms", func(c *Config) { c.Rooms = -3 }},
		{"too many rooms", func(c *Config) { c.Rooms = MaxRooms + 1 }},
		{"zero step", func(c *Config) { c.Grid.Step = 0 }},
		{"negative step", func(c *Config) { c.Grid.Step = -8 }},
		{"zero speed", func(c *Config) { c.Separate.Speed = 0 }},
		{"zero max passes", func(c *Config) { c.Separate.MaxPasses = 0 }},
		{"zero min size", func(c *Config) { c.Size.Min = 0 }},
		{"zero inflation", func(c *Config) { c.Classify.Inflation = 0 }},
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }},
		{"negative spread", func(c *Config) { c.Scatter.SpreadX = -1 }},
		{"negative deviation", func(c *Config) { c.Size.StdDevW = -1 }},
		{"unknown merge", func(c *Config) { c.Merge.Strategy = "random" }},
		{"unknown connect", func(c *Config) { c.Connect.Rooms = "some" }},
		{"bad color", func(c *Config) { c.Colors.Major = "#12" }},
		{"zero frame rate", func(c *Config) { c.Frame.Rate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	content := "rooms = 12\n\n[grid]\nstep = 4\n\n[merge]\nstrategy = \"cluster\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvSeed, "")
	t.Setenv(EnvRooms, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Rooms != 12 || cfg.Grid.Step != 4 || cfg.Merge.Strategy != MergeCluster {
		t.Errorf("Load() = rooms %d step %v merge %q", cfg.Rooms, cfg.Grid.Step, cfg.Merge.Strategy)
	}
	if cfg.Separate.Speed != 1.0 {
		t.Errorf("unset keys should keep defaults, speed = %v", cfg.Separate.Speed)
	}
}

func TestValidateRoomBound(t *testing.T) {
	cfg := Default()
	cfg.Rooms = MaxRooms
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(rooms = MaxRooms) error = %v", err)
	}

	t.Setenv(EnvSeed, "")
	t.Setenv(EnvRooms, "1000000000")
	if _, err := Load(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() with %s=1000000000 error = %v, want INVALID_CONFIG", EnvRooms, err)
	}
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("roms = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(unknown); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(unknown key) error = %v, want INVALID_CONFIG", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("rooms = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(rooms = 0) error = %v, want INVALID_CONFIG", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) error = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvSeed: "12345", EnvRooms: "7"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 12345 || cfg.Rooms != 7 {
		t.Errorf("ApplyEnv() seed %d rooms %d, want 12345 and 7", cfg.Seed, cfg.Rooms)
	}

	env[EnvRooms] = "many"
	if err := cfg.ApplyEnv(lookup); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ApplyEnv(bad rooms) error = %v, want INVALID_CONFIG", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"#FF0000", 0xFF0000, false},
		{"00ff7f", 0x00FF7F, false},
		{"#c0392b", 0xC0392B, false},
		{"#FFF", 0, true},
		{"", 0, true},
		{"#GGGGGG", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHexColor(%q) = %#06x, want %#06x", tt.input, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	major, minor, outline, err := Default().Palette()
	if err != nil {
		t.Fatal(err)
	}
	if major != 0xC0392B || minor != 0x2C3E50 || outline != 0xECF0F1 {
		t.Errorf("Palette() = %#06x %#06x %#06x", major, minor, outline)
	}
}
