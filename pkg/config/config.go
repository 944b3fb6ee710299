// Package config provides configuration loading and management for graymorph.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"graymorph/pkg/morphology"
	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Operation names the morphological operator: erode, dilate, open,
	// close, tophat or blacktophat
	Operation string `yaml:"operation"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many goroutines each stage is split across
		NumCores int `yaml:"numCores"`

		// Boundary is the out-of-range policy: sentinel, nearest or mirror
		Boundary string `yaml:"boundary"`

		// Full keeps the padded output instead of cropping to the input size
		Full bool `yaml:"full"`

		// Binary thresholds the input into a mask before processing
		Binary bool `yaml:"binary"`

		// Threshold is the 8-bit level above which a sample is "on"
		Threshold int `yaml:"threshold"`
	} `yaml:"processing"`

	// Structuring element parameters
	Element struct {
		// Shape is square, disk, rectangle, diamond or periodicline
		Shape string `yaml:"shape"`

		// Radius of square, disk and diamond shapes
		Radius int `yaml:"radius"`

		// Dims is the dimensionality; 0 means that of the input raster
		Dims int `yaml:"dims,omitempty"`

		// HalfSpans are the per-axis half extents of a rectangle
		HalfSpans []int `yaml:"halfSpans,omitempty"`

		// Step is the direction vector of a periodic line
		Step []int `yaml:"step,omitempty"`

		// Count is the number of steps on each side of a periodic line
		Count int `yaml:"count,omitempty"`

		// Optimize allows decomposition into cheaper elements
		Optimize bool `yaml:"optimize"`
	} `yaml:"element"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// Report is the path of a YAML run report; empty disables it
		Report string `yaml:"report,omitempty"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Operation = morphology.OpErode.String()

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.Boundary = raster.Sentinel.String()
	cfg.Processing.Full = false
	cfg.Processing.Binary = false
	cfg.Processing.Threshold = 127

	cfg.Element.Shape = strel.KindSquare.String()
	cfg.Element.Radius = 3
	cfg.Element.Optimize = true

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// OperatorValue parses the configured operation.
func (c *Config) OperatorValue() (morphology.Operator, error) {
	return morphology.ParseOperator(c.Operation)
}

// BoundaryPolicy parses the configured boundary policy.
func (c *Config) BoundaryPolicy() (raster.Policy, error) {
	return raster.ParsePolicy(c.Processing.Boundary)
}

// Shape builds the configured structuring element for rasters of dims
// dimensions. An explicit Element.Dims overrides dims.
func (c *Config) Shape(dims int) (strel.Shape, error) {
	kind, err := strel.ParseKind(c.Element.Shape)
	if err != nil {
		return strel.Shape{}, err
	}
	if c.Element.Dims > 0 {
		dims = c.Element.Dims
	}

	var s strel.Shape
	switch kind {
	case strel.KindSquare:
		s = strel.Square(c.Element.Radius, dims)
	case strel.KindDisk:
		s = strel.Disk(c.Element.Radius, dims)
	case strel.KindDiamond:
		s = strel.Diamond(c.Element.Radius, dims)
	case strel.KindRectangle:
		s = strel.Rectangle(c.Element.HalfSpans...)
	case strel.KindPeriodicLine:
		s = strel.PeriodicLine(c.Element.Count, c.Element.Step...)
	default:
		return strel.Shape{}, fmt.Errorf("shape %s cannot be configured from a file", kind)
	}
	return s, s.Validate()
}

// Validate checks every field that has a fixed set of accepted values.
func (c *Config) Validate() error {
	if _, err := c.OperatorValue(); err != nil {
		return err
	}
	if _, err := c.BoundaryPolicy(); err != nil {
		return err
	}
	if _, err := strel.ParseKind(c.Element.Shape); err != nil {
		return err
	}
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	if c.Processing.Threshold < 0 || c.Processing.Threshold > 255 {
		return fmt.Errorf("threshold must be between 0 and 255, got %d", c.Processing.Threshold)
	}
	return nil
}
