// Package config assembles folio's settings from built-in defaults, an
// optional TOML or YAML file, FOLIO_* environment variables and
// command-line flags, later sources overriding earlier ones.
package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"

	"github.com/taigrr/folio/pkg/math3d"
	"github.com/taigrr/folio/pkg/scene"
	"github.com/taigrr/folio/pkg/view"
)

// EnvPrefix prefixes every environment variable folio reads.
const EnvPrefix = "FOLIO_"

// Config is the complete viewer configuration.
type Config struct {
	FPS        int    `toml:"fps" yaml:"fps" env:"FPS"`
	Background string `toml:"background" yaml:"background" env:"BACKGROUND"`
	HUD        bool   `toml:"hud" yaml:"hud" env:"HUD"`
	Smooth     bool   `toml:"smooth" yaml:"smooth" env:"SMOOTH"`
	Watch      bool   `toml:"watch" yaml:"watch" env:"WATCH"`

	LogFile  string `toml:"log_file" yaml:"log_file" env:"LOG_FILE"`
	LogLevel string `toml:"log_level" yaml:"log_level" env:"LOG_LEVEL"`

	View   View              `toml:"view" yaml:"view" envPrefix:"VIEW_"`
	Label  Label             `toml:"label" yaml:"label" envPrefix:"LABEL_"`
	Models []scene.Placement `toml:"models" yaml:"models" envPrefix:"MODELS_"`

	// Command-line only
	ConfigPath string `toml:"-" yaml:"-"`
	Snapshot   string `toml:"-" yaml:"-"`
}

// View is the initial camera framing and key step sizes.
type View struct {
	OffsetX     float64 `toml:"offset_x" yaml:"offset_x" env:"OFFSET_X"`
	OffsetY     float64 `toml:"offset_y" yaml:"offset_y" env:"OFFSET_Y"`
	FixedZ      float64 `toml:"fixed_z" yaml:"fixed_z" env:"FIXED_Z"`
	FrustumSize float64 `toml:"frustum_size" yaml:"frustum_size" env:"FRUSTUM_SIZE"`
	ZoomStep    float64 `toml:"zoom_step" yaml:"zoom_step" env:"ZOOM_STEP"`
	MoveStep    float64 `toml:"move_step" yaml:"move_step" env:"MOVE_STEP"`
	Near        float64 `toml:"near" yaml:"near" env:"NEAR"`
	Far         float64 `toml:"far" yaml:"far" env:"FAR"`
}

// Label configures the text label.
type Label struct {
	Font       string      `toml:"font" yaml:"font" env:"FONT"`
	Color      string      `toml:"color" yaml:"color" env:"COLOR"`
	Size       float64     `toml:"size" yaml:"size" env:"SIZE"`
	Depth      float64     `toml:"depth" yaml:"depth" env:"DEPTH"`
	Resolution int         `toml:"resolution" yaml:"resolution" env:"RESOLUTION"`
	Position   math3d.Vec3 `toml:"position" yaml:"position"`
}

// Default returns the built-in configuration: both portfolio models, the
// default framing and the embedded font.
func Default() *Config {
	s, steps := view.DefaultState(), view.DefaultSteps()
	return &Config{
		FPS:        30,
		Background: "#20232a",
		LogFile:    filepath.Join(os.TempDir(), "folio.log"),
		LogLevel:   "info",
		View: View{
			OffsetX:     s.OffsetX,
			OffsetY:     s.OffsetY,
			FixedZ:      s.FixedZ,
			FrustumSize: s.FrustumSize,
			ZoomStep:    steps.Zoom,
			MoveStep:    steps.Move,
			Near:        0.1,
			Far:         1000,
		},
		Label: Label{
			Font:       "builtin",
			Color:      "#ffffff",
			Size:       0.5,
			Depth:      0.2,
			Resolution: 48,
			Position:   scene.DefaultLabelPosition,
		},
		Models: scene.DefaultPlacements(),
	}
}

// Load builds the configuration for args (without the program name).
func Load(name string, args []string) (*Config, error) {
	return load(name, args, nil)
}

// load reads the environment from environ, or from the process when nil.
func load(name string, args []string, environ map[string]string) (*Config, error) {
	// First pass only finds -config.
	first := Default()
	fs := newFlagSet(name, first)
	fs.SetOutput(io.Discard)
	_ = fs.Parse(args) // errors are reported by the second pass

	cfg := Default()
	if first.ConfigPath != "" {
		if err := cfg.LoadFile(first.ConfigPath); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	// Second pass: flags default to the layered values, so only flags
	// given explicitly change anything.
	if err := newFlagSet(name, cfg).Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func newFlagSet(name string, cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to a TOML or YAML config file")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "Target frames per second")
	fs.StringVar(&cfg.Background, "bg", cfg.Background, "Background color (#rrggbb)")
	fs.BoolVar(&cfg.HUD, "hud", cfg.HUD, "Show the status overlay")
	fs.BoolVar(&cfg.Smooth, "smooth", cfg.Smooth, "Ease camera moves instead of jumping")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Reload models when their files change")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Log file path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Label.Font, "font", cfg.Label.Font, "Label font: builtin, a file path or an http(s) URL")
	fs.StringVar(&cfg.Snapshot, "snapshot", cfg.Snapshot, "Render one frame to this PNG file and exit")
	fs.Float64Var(&cfg.View.FrustumSize, "zoom", cfg.View.FrustumSize, "Initial frustum size")
	return fs
}

// expandPaths resolves ~ in every path setting.
func (c *Config) expandPaths() error {
	paths := []*string{&c.LogFile, &c.Snapshot}
	if c.Label.Font != "builtin" && !strings.Contains(c.Label.Font, "://") {
		paths = append(paths, &c.Label.Font)
	}
	for i := range c.Models {
		paths = append(paths, &c.Models[i].Path)
	}
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for values the viewer cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be between 1 and 240, got %d", c.FPS))
	}
	if _, err := ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := ParseColor(c.Label.Color); err != nil {
		errs = append(errs, fmt.Errorf("label color: %w", err))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	v := c.View
	if v.FrustumSize < view.MinFrustumSize {
		errs = append(errs, fmt.Errorf("frustum size must be at least %v, got %v", view.MinFrustumSize, v.FrustumSize))
	}
	if v.ZoomStep <= 0 || v.MoveStep <= 0 {
		errs = append(errs, errors.New("zoom and move steps must be positive"))
	}
	if v.Near <= 0 || v.Far <= v.Near {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < near < far, got %v, %v", v.Near, v.Far))
	}

	if c.Label.Size <= 0 || c.Label.Depth <= 0 {
		errs = append(errs, errors.New("label size and depth must be positive"))
	}
	if c.Label.Resolution < 4 {
		errs = append(errs, fmt.Errorf("label resolution must be at least 4, got %d", c.Label.Resolution))
	}

	seen := make(map[string]bool)
	for i, m := range c.Models {
		switch {
		case m.Name == "" || m.Path == "":
			errs = append(errs, fmt.Errorf("model %d: name and path are required", i))
		case seen[m.Name]:
			errs = append(errs, fmt.Errorf("model %q listed twice", m.Name))
		case m.Scale <= 0:
			errs = append(errs, fmt.Errorf("model %q: scale must be positive", m.Name))
		}
		seen[m.Name] = true
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// ViewState returns the initial view state.
func (c *Config) ViewState() view.State {
	return view.State{
		OffsetX:     c.View.OffsetX,
		OffsetY:     c.View.OffsetY,
		FixedZ:      c.View.FixedZ,
		FrustumSize: c.View.FrustumSize,
	}
}

// Steps returns the key step sizes.
func (c *Config) Steps() view.Steps {
	return view.Steps{Zoom: c.View.ZoomStep, Move: c.View.MoveStep}
}

// ParseColor parses "#rrggbb", "0xrrggbb" or "rrggbb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
