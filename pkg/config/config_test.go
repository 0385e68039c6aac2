package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPackageDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, selection.DefaultOptions(), cfg.SelectionOptions())

	vo := cfg.ViewportOptions()
	assert.Equal(t, uint32(0x111111), vo.Background)
	assert.Equal(t, 75.0, vo.Camera.FOV)
	assert.Equal(t, 2.0, vo.Camera.Position.X)
	assert.Equal(t, 128, vo.March.MaxSteps)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	doc := `
log_level: debug
gizmo:
  collision_shaft_ratio: 6
colors:
  outline: "#ffffff"
outline:
  edge_threshold: 30
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 6.0, cfg.Gizmo.CollisionShaftRatio)
	assert.Equal(t, gizmo.DefaultRatios().LengthRatio, cfg.Gizmo.LengthRatio)
	assert.Equal(t, Color(0xffffff), cfg.Colors.Outline)
	assert.Equal(t, Color(0xff0000), cfg.Colors.Forward)
	assert.Equal(t, 30.0, cfg.SelectionOptions().EdgeThreshold)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "gizmo: [1, 2"},
		{"bad colour", "colors:\n  up: \"#12\"\n"},
		{"negative ratio", "gizmo:\n  radius_ratio: -1\n"},
		{"head fraction", "gizmo:\n  head_fraction: 1\n"},
		{"few segments", "gizmo:\n  segments: 2\n"},
		{"log level", "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "editor.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "editor.yaml")
	cfg := Default()
	cfg.Colors.Up = 0xabcdef
	cfg.Models = "models"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#abcdef")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestColorText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("0x00ccff")))
	assert.Equal(t, Color(0x00ccff), c)
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#00ccff", string(b))
	assert.Error(t, c.UnmarshalText([]byte("blue")))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
	_, err = ParseLevel("")
	assert.Error(t, err)
}
