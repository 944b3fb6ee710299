// Package metrics summarises how a morphological operation changed a
// raster: intensity statistics before and after, and similarity measures
// between the two.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Comparison holds before/after statistics of one run. Sample values are
// expected normalised to [0, 1], the range SSIM constants assume.
type Comparison struct {
	// MeanBefore and MeanAfter are the average intensities.
	MeanBefore float64 `yaml:"meanBefore"`
	MeanAfter  float64 `yaml:"meanAfter"`

	// StdDevBefore and StdDevAfter are the sample standard deviations.
	StdDevBefore float64 `yaml:"stdDevBefore"`
	StdDevAfter  float64 `yaml:"stdDevAfter"`

	// RMSE is the root mean square difference between the two rasters.
	RMSE float64 `yaml:"rmse"`

	// SSIM is the global structural similarity index, in [-1, 1].
	SSIM float64 `yaml:"ssim"`

	// Correlation is the Pearson correlation; NaN when either side is flat.
	Correlation float64 `yaml:"correlation"`

	// EntropyDiff is the absolute difference of the 256-bin Shannon
	// entropies, in bits.
	EntropyDiff float64 `yaml:"entropyDiff"`

	// Changed is the fraction of samples whose value differs.
	Changed float64 `yaml:"changed"`
}

// Compare computes the statistics of before and after, which must have the
// same length.
func Compare(before, after []float64) (Comparison, error) {
	n := len(before)
	if n != len(after) {
		return Comparison{}, fmt.Errorf("cannot compare %d samples with %d", n, len(after))
	}
	if n == 0 {
		return Comparison{}, fmt.Errorf("no samples to compare")
	}

	var c Comparison
	c.MeanBefore, c.StdDevBefore = stat.MeanStdDev(before, nil)
	c.MeanAfter, c.StdDevAfter = stat.MeanStdDev(after, nil)
	if n == 1 {
		c.StdDevBefore, c.StdDevAfter = 0, 0
	}
	c.RMSE = floats.Distance(before, after, 2) / math.Sqrt(float64(n))
	c.SSIM = ssim(before, after)
	c.Correlation = math.NaN()
	if c.StdDevBefore > 0 && c.StdDevAfter > 0 {
		c.Correlation = stat.Correlation(before, after, nil)
	}
	c.EntropyDiff = math.Abs(Entropy(before) - Entropy(after))

	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
		}
	}
	c.Changed = float64(changed) / float64(n)
	return c, nil
}

// ssim is the single-window structural similarity over the whole raster.
func ssim(x, y []float64) float64 {
	const (
		dynamicRange = 1.0
		k1           = 0.01
		k2           = 0.03
	)
	c1 := (k1 * dynamicRange) * (k1 * dynamicRange)
	c2 := (k2 * dynamicRange) * (k2 * dynamicRange)

	muX := stat.Mean(x, nil)
	muY := stat.Mean(y, nil)
	var sigmaX, sigmaY, sigmaXY float64
	if len(x) > 1 {
		sigmaX = stat.Variance(x, nil)
		sigmaY = stat.Variance(y, nil)
		sigmaXY = stat.Covariance(x, y, nil)
	}

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	if den > 0 {
		return num / den
	}
	return 0
}

// Entropy returns the Shannon entropy, in bits, of a 256-bin histogram of
// data spanning its own value range. Constant data has zero entropy.
func Entropy(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	lo, hi := floats.Min(data), floats.Max(data)
	if hi <= lo {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	width := (hi - lo) / numBins
	for _, v := range data {
		bin := int((v - lo) / width)
		bin = min(max(bin, 0), numBins-1)
		hist[bin]++
	}
	floats.Scale(1/float64(len(data)), hist)
	return stat.Entropy(hist) / math.Ln2
}
