// Package morphology applies grayscale and binary morphological operators
// to rasters, one structuring-element stage at a time.
package morphology

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

// DimensionMismatchError reports a decomposition whose dimensionality
// differs from the raster's.
type DimensionMismatchError = strel.DimensionMismatchError

// Engine runs morphological operators over rasters of one element type.
// It holds no mutable state and may be shared between goroutines.
type Engine[T any] struct {
	elem    raster.ElementType[T]
	policy  raster.Policy
	workers int
	log     logrus.FieldLogger
}

type options struct {
	policy  raster.Policy
	workers int
	log     logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*options)

// WithBoundary sets the policy for out-of-range neighbours. The default is
// raster.Sentinel.
func WithBoundary(p raster.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithWorkers splits every stage across n goroutines. Values below 1 run
// on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger routes stage diagnostics to l at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New creates an engine for samples ordered by elem.
func New[T any](elem raster.ElementType[T], opts ...Option) (*Engine[T], error) {
	if err := raster.ValidateElementType(elem); err != nil {
		return nil, err
	}
	o := options{policy: raster.Sentinel, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.policy {
	case raster.Sentinel, raster.Nearest, raster.Mirror:
	default:
		return nil, fmt.Errorf("unknown boundary policy %v", o.policy)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	return &Engine[T]{elem: elem, policy: o.policy, workers: o.workers, log: o.log}, nil
}

// ElementType returns the ordering the engine uses.
func (e *Engine[T]) ElementType() raster.ElementType[T] { return e.elem }

// Boundary returns the out-of-range policy.
func (e *Engine[T]) Boundary() raster.Policy { return e.policy }

// Workers returns the number of goroutines a stage is split across.
func (e *Engine[T]) Workers() int { return e.workers }

func (e *Engine[T]) check(src *raster.Raster[T], d strel.Decomposition) error {
	if src == nil {
		return fmt.Errorf("nil raster")
	}
	if d.Len() == 0 {
		return fmt.Errorf("empty decomposition")
	}
	if src.Dims() != d.Dims() {
		return &DimensionMismatchError{Raster: src.Dims(), Element: d.Dims()}
	}
	return nil
}

// Erode replaces every sample by the minimum over its neighbourhood.
func (e *Engine[T]) Erode(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpErode, src, d)
}

// Dilate replaces every sample by the maximum over its reflected
// neighbourhood.
func (e *Engine[T]) Dilate(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpDilate, src, d)
}

// Open erodes then dilates, removing bright details smaller than the
// element.
func (e *Engine[T]) Open(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpOpen, src, d)
}

// Close dilates then erodes, filling dark details smaller than the element.
func (e *Engine[T]) Close(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpClose, src, d)
}

// TopHat returns src minus its opening.
func (e *Engine[T]) TopHat(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpTopHat, src, d)
}

// BlackTopHat returns the closing of src minus src.
func (e *Engine[T]) BlackTopHat(src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	return e.Apply(OpBlackTopHat, src, d)
}

// Apply runs op over src. The result has the extents of src.
func (e *Engine[T]) Apply(op Operator, src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	if err := e.check(src, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.log.WithFields(logrus.Fields{
		"operation": op.String(),
		"raster":    src.String(),
		"stages":    d.Descriptors(),
		"cost":      d.Cost(),
		"boundary":  e.policy.String(),
		"workers":   e.workers,
	}).Debug("Applying morphological operator")

	return e.apply(op, src, d)
}

// ApplyShape decomposes shape, optimizing when asked, and applies op.
func (e *Engine[T]) ApplyShape(op Operator, src *raster.Raster[T], shape strel.Shape, optimize bool) (*raster.Raster[T], error) {
	if src == nil {
		return nil, fmt.Errorf("%s: nil raster", op)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := shape.CheckDims(src.Dims()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d, err := strel.Decompose(shape, optimize)
	if err != nil {
		return nil, err
	}
	return e.Apply(op, src, d)
}

func (e *Engine[T]) apply(op Operator, src *raster.Raster[T], d strel.Decomposition) (*raster.Raster[T], error) {
	switch op {
	case OpErode:
		return e.sequence(src, d, true), nil
	case OpDilate:
		return e.sequence(src, d, false), nil
	case OpOpen:
		return e.sequence(e.sequence(src, d, true), d, false), nil
	case OpClose:
		return e.sequence(e.sequence(src, d, false), d, true), nil
	case OpTopHat:
		opened := e.sequence(e.sequence(src, d, true), d, false)
		return raster.Difference(e.elem, src, opened)
	case OpBlackTopHat:
		closed := e.sequence(e.sequence(src, d, false), d, true)
		return raster.Difference(e.elem, closed, src)
	default:
		return nil, fmt.Errorf("unknown operator %v", op)
	}
}

// sequence runs every stage of d, each stage reading the previous output.
func (e *Engine[T]) sequence(src *raster.Raster[T], d strel.Decomposition, erode bool) *raster.Raster[T] {
	out := src
	for i, el := range d.Elements() {
		if !erode {
			el = el.Reflect()
		}
		e.log.WithFields(logrus.Fields{
			"stage":   i,
			"element": el.String(),
			"erode":   erode,
		}).Debug("Running stage")
		out = e.stage(out, el, erode)
	}
	return out
}
