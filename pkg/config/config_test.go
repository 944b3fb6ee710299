package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graymorph/pkg/morphology"
	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "erode", cfg.Operation)
	assert.Equal(t, runtime.NumCPU(), cfg.Processing.NumCores)
	assert.Equal(t, "sentinel", cfg.Processing.Boundary)
	assert.Equal(t, 127, cfg.Processing.Threshold)
	assert.Equal(t, "square", cfg.Element.Shape)
	assert.Equal(t, 3, cfg.Element.Radius)
	assert.True(t, cfg.Element.Optimize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "graymorph.yaml")
	cfg := DefaultConfig()
	cfg.Operation = "tophat"
	cfg.Processing.Boundary = "mirror"
	cfg.Processing.Full = true
	cfg.Element.Shape = "rectangle"
	cfg.Element.HalfSpans = []int{4, 1}
	cfg.Output.Report = "report.yaml"

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	require.NoError(t, CreateDefaultConfigFile(path))
	loaded, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("operation: dilate\nelement:\n  shape: disk\n  radius: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dilate", cfg.Operation)
	assert.Equal(t, "disk", cfg.Element.Shape)
	assert.Equal(t, 5, cfg.Element.Radius)
	// untouched sections keep their defaults
	assert.True(t, cfg.Element.Optimize)
	assert.Equal(t, "sentinel", cfg.Processing.Boundary)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operation: [erode\n"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"operation": func(c *Config) { c.Operation = "skeletonize" },
		"boundary":  func(c *Config) { c.Processing.Boundary = "wrap" },
		"shape":     func(c *Config) { c.Element.Shape = "hexagon" },
		"cores":     func(c *Config) { c.Processing.NumCores = 0 },
		"threshold": func(c *Config) { c.Processing.Threshold = 300 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestParsedValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Operation = "black-tophat"
	cfg.Processing.Boundary = "clamp"

	op, err := cfg.OperatorValue()
	require.NoError(t, err)
	assert.Equal(t, morphology.OpBlackTopHat, op)

	policy, err := cfg.BoundaryPolicy()
	require.NoError(t, err)
	assert.Equal(t, raster.Nearest, policy)
}

func TestShape(t *testing.T) {
	cfg := DefaultConfig()
	s, err := cfg.Shape(2)
	require.NoError(t, err)
	assert.Equal(t, strel.Square(3, 2), s)

	cfg.Element.Dims = 3
	cfg.Element.Shape = "diamond"
	s, err = cfg.Shape(2)
	require.NoError(t, err)
	assert.Equal(t, strel.Diamond(3, 3), s)

	cfg.Element.Shape = "periodicline"
	cfg.Element.Step = []int{1, 1}
	cfg.Element.Count = 2
	s, err = cfg.Shape(2)
	require.NoError(t, err)
	assert.Equal(t, strel.PeriodicLine(2, 1, 1), s)

	cfg.Element.Shape = "rectangle"
	_, err = cfg.Shape(2)
	var invalid *strel.InvalidShapeError
	assert.ErrorAs(t, err, &invalid)

	cfg.Element.Shape = "custom"
	_, err = cfg.Shape(2)
	assert.Error(t, err)
}
