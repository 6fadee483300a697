package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, []int{64, 64, 64}, cfg.Geometry.VolumeShape)
	require.Equal(t, []int{96, 64}, cfg.Geometry.DetectorShape)
	require.Equal(t, 180, cfg.Geometry.NumAngles)
	require.Equal(t, "gpu", cfg.Backend)
	require.Equal(t, "none", cfg.Filter)
	require.False(t, cfg.Output.Verbose)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "partomo.yaml")

	cfg := DefaultConfig()
	cfg.Geometry.VolumeSpacing = []float64{2, 1, 0.5}
	cfg.Geometry.NumAngles = 12
	cfg.Backend = "cpu"
	cfg.Filter = "ramlak"
	cfg.Output.Verbose = true

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("geometry: [not: a map"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestBuildGeometry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.VolumeSpacing = []float64{2, 1, 1}
	cfg.Geometry.NumAngles = 4

	geom, err := cfg.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, []int{64, 64, 64}, geom.Volume.Shape)
	require.Equal(t, []float64{2, 1, 1}, geom.Volume.Spacing)
	require.Len(t, geom.Angles, 4)

	cfg.Geometry.DetectorShape = []int{96}
	_, err = cfg.BuildGeometry()
	require.Error(t, err)
}
