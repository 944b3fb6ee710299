package models

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"graymorph/pkg/metrics"
)

// Report records one command-line run so it can be reproduced and compared
// with later runs.
type Report struct {
	// Input and Output are the source and destination paths
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Operation is the operator name, Full whether the padded variant ran
	Operation string `yaml:"operation"`
	Full      bool   `yaml:"full"`

	// SampleType is the element type the engine ran with (uint8, uint16, bool)
	SampleType string `yaml:"sampleType"`

	// Boundary is the out-of-range policy
	Boundary string `yaml:"boundary"`

	// Workers is the number of goroutines per stage
	Workers int `yaml:"workers"`

	// InputExtents and OutputExtents are the raster sizes per axis
	InputExtents  []int `yaml:"inputExtents"`
	OutputExtents []int `yaml:"outputExtents"`

	// Element describes the structuring element and how it was decomposed
	Element ElementReport `yaml:"element"`

	// Duration is the wall time of the morphological operation alone
	Duration time.Duration `yaml:"duration"`

	// Metrics compares input and output; absent for full runs, whose
	// output is larger than the input
	Metrics *metrics.Comparison `yaml:"metrics,omitempty"`
}

// ElementReport describes a structuring element and its decomposition.
type ElementReport struct {
	Shape     string   `yaml:"shape"`
	Optimized bool     `yaml:"optimized"`
	Stages    []string `yaml:"stages"`

	// Cost is the number of probes per sample of the applied sequence,
	// DirectCost that of the undecomposed element
	Cost       int `yaml:"cost"`
	DirectCost int `yaml:"directCost"`
}

// Speedup is the ratio of direct to decomposed probe cost.
func (e ElementReport) Speedup() float64 {
	if e.Cost == 0 {
		return 0
	}
	return float64(e.DirectCost) / float64(e.Cost)
}

// Save writes the report as YAML, creating parent directories.
func (r *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("error parsing report: %w", err)
	}
	return &r, nil
}
