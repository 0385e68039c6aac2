// Package config loads and saves editor settings as YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/hittest"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/selection"
	"github.com/sqlongithub/voxelbench/pkg/viewport"
	"gopkg.in/yaml.v3"
)

// Color is a 24-bit RGB colour written as "#rrggbb".
type Color uint32

func (c Color) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%06x", uint32(c)&0xffffff)), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return fmt.Errorf("invalid colour %q", string(b))
	}
	*c = Color(v)
	return nil
}

// Colors holds the selection palette.
type Colors struct {
	Forward    Color `yaml:"forward"`
	Up         Color `yaml:"up"`
	Right      Color `yaml:"right"`
	Outline    Color `yaml:"outline"`
	Node       Color `yaml:"node"`
	Background Color `yaml:"background"`
}

// Outline controls the selection outline and vertex markers.
type Outline struct {
	EdgeThreshold float64 `yaml:"edge_threshold"` // degrees
	PointSize     float64 `yaml:"point_size"`
}

// Picking bounds the collision ray march.
type Picking struct {
	MaxDistance float64 `yaml:"max_distance"`
	MaxSteps    int     `yaml:"max_steps"`
	Epsilon     float64 `yaml:"epsilon"`
}

// Camera is the startup view.
type Camera struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// Config is the full settings file.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Models   string       `yaml:"models,omitempty"` // directory of block model JSON files
	Gizmo    gizmo.Ratios `yaml:"gizmo"`
	Colors   Colors       `yaml:"colors"`
	Outline  Outline      `yaml:"outline"`
	Picking  Picking      `yaml:"picking"`
	Camera   Camera       `yaml:"camera"`
}

// Default returns the stock settings.
func Default() Config {
	sel := selection.DefaultOptions()
	cam := hittest.DefaultCamera()
	mp := kernel.DefaultMarchParams
	return Config{
		LogLevel: "info",
		Gizmo:    gizmo.DefaultRatios(),
		Colors: Colors{
			Forward:    Color(gizmo.DefaultColors[gizmo.Forward]),
			Up:         Color(gizmo.DefaultColors[gizmo.Up]),
			Right:      Color(gizmo.DefaultColors[gizmo.Right]),
			Outline:    Color(sel.OutlineColor),
			Node:       0x00ccff,
			Background: 0x111111,
		},
		Outline: Outline{EdgeThreshold: sel.EdgeThreshold, PointSize: sel.PointSize},
		Picking: Picking{MaxDistance: mp.MaxDistance, MaxSteps: mp.MaxSteps, Epsilon: mp.Epsilon},
		Camera: Camera{
			Position: [3]float64{cam.Position.X, cam.Position.Y, cam.Position.Z},
			FOV:      cam.FOV,
			Near:     cam.Near,
			Far:      cam.Far,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No config file, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings that cannot produce handles or picks.
func (c Config) Validate() error {
	var errs []error
	positive := map[string]float64{
		"gizmo.length_ratio":          c.Gizmo.LengthRatio,
		"gizmo.length_scale":          c.Gizmo.LengthScale,
		"gizmo.radius_ratio":          c.Gizmo.RadiusRatio,
		"gizmo.offset_ratio":          c.Gizmo.OffsetRatio,
		"gizmo.head_radius_ratio":     c.Gizmo.HeadRadiusRatio,
		"gizmo.collision_shaft_ratio": c.Gizmo.CollisionShaftRatio,
		"gizmo.collision_head_ratio":  c.Gizmo.CollisionHeadRatio,
		"outline.point_size":          c.Outline.PointSize,
		"picking.max_distance":        c.Picking.MaxDistance,
		"picking.epsilon":             c.Picking.Epsilon,
		"camera.fov":                  c.Camera.FOV,
	}
	for _, k := range sortedKeys(positive) {
		if !(positive[k] > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", k, positive[k]))
		}
	}
	if !(c.Gizmo.HeadFraction > 0 && c.Gizmo.HeadFraction < 1) {
		errs = append(errs, fmt.Errorf("gizmo.head_fraction must be in (0, 1), got %g", c.Gizmo.HeadFraction))
	}
	if c.Gizmo.Segments < 3 {
		errs = append(errs, fmt.Errorf("gizmo.segments must be at least 3, got %d", c.Gizmo.Segments))
	}
	if c.Picking.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("picking.max_steps must be positive, got %d", c.Picking.MaxSteps))
	}
	if c.Outline.EdgeThreshold < 0 || c.Outline.EdgeThreshold > 180 {
		errs = append(errs, fmt.Errorf("outline.edge_threshold must be in [0, 180], got %g", c.Outline.EdgeThreshold))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SelectionOptions converts the settings for the selection controller.
func (c Config) SelectionOptions() selection.Options {
	return selection.Options{
		Ratios: c.Gizmo,
		AxisColors: map[gizmo.Axis]uint32{
			gizmo.Forward: uint32(c.Colors.Forward),
			gizmo.Up:      uint32(c.Colors.Up),
			gizmo.Right:   uint32(c.Colors.Right),
		},
		OutlineColor:  uint32(c.Colors.Outline),
		EdgeThreshold: c.Outline.EdgeThreshold,
		PointSize:     c.Outline.PointSize,
	}
}

// ViewportOptions converts the settings for a viewport.
func (c Config) ViewportOptions() viewport.Options {
	cam := hittest.DefaultCamera()
	cam.Position = v3.Vec{X: c.Camera.Position[0], Y: c.Camera.Position[1], Z: c.Camera.Position[2]}
	cam.Target = v3.Vec{X: c.Camera.Target[0], Y: c.Camera.Target[1], Z: c.Camera.Target[2]}
	cam.FOV, cam.Near, cam.Far = c.Camera.FOV, c.Camera.Near, c.Camera.Far
	return viewport.Options{
		Selection:  c.SelectionOptions(),
		March:      kernel.MarchParams{MaxDistance: c.Picking.MaxDistance, MaxSteps: c.Picking.MaxSteps, Epsilon: c.Picking.Epsilon},
		Camera:     cam,
		Background: uint32(c.Colors.Background),
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
