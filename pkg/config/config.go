// Package config provides configuration loading and management for partomo.
// It handles loading run configuration from YAML files and provides default
// values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"partomo/pkg/geometry"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Geometry describes the acquisition.
	Geometry struct {
		// VolumeShape is the sample grid extent (x, y, z) in voxels.
		VolumeShape []int `yaml:"volumeShape"`

		// VolumeSpacing is the physical voxel size (x, y, z).
		VolumeSpacing []float64 `yaml:"volumeSpacing"`

		// DetectorShape is the detector extent (u, v) in pixels.
		DetectorShape []int `yaml:"detectorShape"`

		// DetectorSpacing is the physical pixel size (u, v).
		DetectorSpacing []float64 `yaml:"detectorSpacing"`

		// NumAngles is the number of projection angles.
		NumAngles int `yaml:"numAngles"`

		// AngleStart and AngleEnd bound the half-open angular range in
		// radians.
		AngleStart float64 `yaml:"angleStart"`
		AngleEnd   float64 `yaml:"angleEnd"`
	} `yaml:"geometry"`

	// Backend selects the projector engine, "cpu" or "gpu".
	Backend string `yaml:"backend"`

	// Filter names the sinogram filter applied before backprojection:
	// "none", "ramlak", "shepplogan" or "cosine".
	Filter string `yaml:"filter"`

	// Output parameters.
	Output struct {
		// SinogramDir is the directory for exported sinogram slices.
		SinogramDir string `yaml:"sinogramDir"`

		// VolumeDir is the directory for exported volume slices.
		VolumeDir string `yaml:"volumeDir"`

		// Verbose enables the per-angle correction trace.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Geometry.VolumeShape = []int{64, 64, 64}
	cfg.Geometry.VolumeSpacing = []float64{1.0, 1.0, 1.0}
	cfg.Geometry.DetectorShape = []int{96, 64}
	cfg.Geometry.DetectorSpacing = []float64{1.0, 1.0}
	cfg.Geometry.NumAngles = 180
	cfg.Geometry.AngleStart = 0.0
	cfg.Geometry.AngleEnd = 3.141592653589793

	cfg.Backend = "gpu"
	cfg.Filter = "none"

	cfg.Output.SinogramDir = "sinogram_slices"
	cfg.Output.VolumeDir = "volume_slices"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// BuildGeometry validates the geometry section and assembles the
// acquisition description it encodes.
func (c *Config) BuildGeometry() (geometry.Parallel3D, error) {
	volume, err := geometry.NewGrid(c.Geometry.VolumeShape, c.Geometry.VolumeSpacing)
	if err != nil {
		return geometry.Parallel3D{}, err
	}
	detector, err := geometry.NewGrid(c.Geometry.DetectorShape, c.Geometry.DetectorSpacing)
	if err != nil {
		return geometry.Parallel3D{}, err
	}
	angles, err := geometry.UniformAngles(c.Geometry.NumAngles, c.Geometry.AngleStart, c.Geometry.AngleEnd)
	if err != nil {
		return geometry.Parallel3D{}, err
	}
	return geometry.NewParallel3D(volume, detector, angles)
}
