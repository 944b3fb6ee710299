package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareIdentical(t *testing.T) {
	data := []float64{0.1, 0.5, 0.9, 0.3, 0.7}
	c, err := Compare(data, data)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, c.MeanBefore, 1e-12)
	assert.Equal(t, c.MeanBefore, c.MeanAfter)
	assert.Equal(t, c.StdDevBefore, c.StdDevAfter)
	assert.Zero(t, c.RMSE)
	assert.InDelta(t, 1.0, c.SSIM, 1e-12)
	assert.InDelta(t, 1.0, c.Correlation, 1e-12)
	assert.Zero(t, c.EntropyDiff)
	assert.Zero(t, c.Changed)
}

func TestCompareInverted(t *testing.T) {
	c, err := Compare([]float64{0, 1, 0, 1}, []float64{1, 0, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, c.RMSE, 1e-12)
	assert.InDelta(t, -1.0, c.Correlation, 1e-12)
	assert.Less(t, c.SSIM, 0.0)
	assert.Equal(t, 1.0, c.Changed)
	assert.Zero(t, c.EntropyDiff)
}

func TestCompareFlat(t *testing.T) {
	c, err := Compare([]float64{0.5, 0.5, 0.5}, []float64{0.5, 0.75, 0.5})
	require.NoError(t, err)
	assert.Zero(t, c.StdDevBefore)
	assert.True(t, math.IsNaN(c.Correlation))
	assert.InDelta(t, 1.0/3.0, c.Changed, 1e-12)

	c, err = Compare([]float64{0.5}, []float64{0.25})
	require.NoError(t, err)
	assert.Zero(t, c.StdDevBefore)
	assert.InDelta(t, 0.25, c.RMSE, 1e-12)
}

func TestCompareErrors(t *testing.T) {
	_, err := Compare([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = Compare(nil, nil)
	assert.Error(t, err)
}

func TestEntropy(t *testing.T) {
	assert.Zero(t, Entropy(nil))
	assert.Zero(t, Entropy([]float64{0.3, 0.3, 0.3}))
	assert.InDelta(t, 1.0, Entropy([]float64{0, 1, 0, 1}), 1e-12)
	assert.InDelta(t, 2.0, Entropy([]float64{0, 1.0 / 3, 2.0 / 3, 1}), 1e-12)
}
