package morphology

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

// Padding returns the margins the full variant of op adds before and after
// every axis: the positions outside the input whose neighbourhood still
// reaches into it.
func Padding(op Operator, d strel.Decomposition) (before, after []int) {
	lo, hi := d.Bounds()
	before, after = make([]int, len(lo)), make([]int, len(lo))
	for k := range lo {
		// erosion reads p+s, dilation reads p-s
		erodeBefore, erodeAfter := max(0, hi[k]), max(0, -lo[k])
		dilateBefore, dilateAfter := max(0, -lo[k]), max(0, hi[k])
		switch op {
		case OpErode:
			before[k], after[k] = erodeBefore, erodeAfter
		case OpDilate:
			before[k], after[k] = dilateBefore, dilateAfter
		default:
			before[k], after[k] = erodeBefore+dilateBefore, erodeAfter+dilateAfter
		}
	}
	return before, after
}

// ErodeFull erodes src extended by the element's reach.
func (e *Engine[T]) ErodeFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpErode, src, d)
}

// DilateFull dilates src extended by the element's reach.
func (e *Engine[T]) DilateFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpDilate, src, d)
}

// OpenFull opens src extended by twice the element's reach.
func (e *Engine[T]) OpenFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpOpen, src, d)
}

// CloseFull closes src extended by twice the element's reach.
func (e *Engine[T]) CloseFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpClose, src, d)
}

// TopHatFull is the top-hat of src extended by twice the element's reach.
func (e *Engine[T]) TopHatFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpTopHat, src, d)
}

// BlackTopHatFull is the black top-hat of src extended by twice the
// element's reach.
func (e *Engine[T]) BlackTopHatFull(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.ApplyFull(OpBlackTopHat, src, d)
}

// ApplyFull pads src by Padding(op, d) through the boundary policy, using
// the sentinel of op's first stage, runs op on the padded raster and
// returns the whole padded result. Cropping it at the before margin with
// the extents of src gives Apply(op, src, d) for the sentinel policy.
func (e *Engine[T]) ApplyFull(op Operator, src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	if err := e.check(src, d); err != nil {
		return nil, fmt.Errorf("%s full: %w", op, err)
	}
	before, after := Padding(op, d)
	sentinel := e.elem.Min()
	if op.erodesFirst() {
		sentinel = e.elem.Max()
	}
	padded, err := raster.Pad(src, before, after, e.policy, sentinel)
	if err != nil {
		return nil, fmt.Errorf("%s full: %w", op, err)
	}

	e.log.WithFields(logrus.Fields{
		"operation": op.String(),
		"raster":    src.String(),
		"padded":    padded.String(),
		"stages":    d.Descriptors(),
	}).Debug("Applying full morphological operator")

	return e.apply(op, padded, d)
}
