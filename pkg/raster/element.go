package raster

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// ElementType is the trait a sample type must satisfy to take part in
// morphology: a strict total order and a minimum and maximum sentinel.
// Min is the value out-of-range samples take under dilation, Max the value
// they take under erosion.
type ElementType[T any] interface {
	// Name identifies the type in logs and errors.
	Name() string

	// Less reports whether a orders strictly before b.
	Less(a, b T) bool

	// Min returns the bottom of the order.
	Min() T

	// Max returns the top of the order.
	Max() T

	// Sub returns a - b clamped to [Min, Max].
	Sub(a, b T) T
}

// UnsupportedElementTypeError reports a sample type that lacks a usable
// total order or bounds.
type UnsupportedElementTypeError struct {
	Name   string
	Reason string
}

func (e *UnsupportedElementTypeError) Error() string {
	return fmt.Sprintf("unsupported element type %q: %s", e.Name, e.Reason)
}

// ValidateElementType checks that et is usable: it must exist and its
// sentinels must be ordered with Min strictly before Max.
func ValidateElementType[T any](et ElementType[T]) error {
	if et == nil {
		return &UnsupportedElementTypeError{Name: "<nil>", Reason: "no ordering supplied"}
	}
	if !et.Less(et.Min(), et.Max()) {
		return &UnsupportedElementTypeError{Name: et.Name(), Reason: "minimum sentinel does not order before maximum"}
	}
	return nil
}

// MinOf returns the smaller of a and b under et.
func MinOf[T any](et ElementType[T], a, b T) T {
	if et.Less(b, a) {
		return b
	}
	return a
}

// MaxOf returns the larger of a and b under et.
func MaxOf[T any](et ElementType[T], a, b T) T {
	if et.Less(a, b) {
		return b
	}
	return a
}

// Number is the set of built-in numeric sample types.
type Number interface {
	constraints.Integer | constraints.Float
}

type ordered[T Number] struct {
	name   string
	lo, hi T
}

// Ordered builds the trait of a numeric type whose valid range is [lo, hi].
func Ordered[T Number](name string, lo, hi T) ElementType[T] {
	return ordered[T]{name: name, lo: lo, hi: hi}
}

func (o ordered[T]) Name() string { return o.name }
func (o ordered[T]) Less(a, b T) bool { return a < b }
func (o ordered[T]) Min() T { return o.lo }
func (o ordered[T]) Max() T { return o.hi }

// Sub computes a - b without leaving [lo, hi], so unsigned types saturate
// at zero instead of wrapping.
func (o ordered[T]) Sub(a, b T) T {
	if b > 0 && a < o.lo+b {
		return o.lo
	}
	if b <= 0 && a > o.hi+b {
		return o.hi
	}
	return a - b
}

type binary struct{}

func (binary) Name() string { return "bool" }
func (binary) Less(a, b bool) bool { return !a && b }
func (binary) Min() bool { return false }
func (binary) Max() bool { return true }
func (binary) Sub(a, b bool) bool { return a && !b }

// Predefined traits.
var (
	Uint8   = Ordered[uint8]("uint8", 0, math.MaxUint8)
	Uint16  = Ordered[uint16]("uint16", 0, math.MaxUint16)
	Int16   = Ordered[int16]("int16", math.MinInt16, math.MaxInt16)
	Int32   = Ordered[int32]("int32", math.MinInt32, math.MaxInt32)
	Float32 = Ordered[float32]("float32", float32(math.Inf(-1)), float32(math.Inf(1)))
	Float64 = Ordered[float64]("float64", math.Inf(-1), math.Inf(1))

	// Bool orders false before true; min and max become AND and OR.
	Bool ElementType[bool] = binary{}
)
