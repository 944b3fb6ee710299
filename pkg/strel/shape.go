// Package strel builds structuring elements, the finite offset sets that
// probe a raster neighbourhood, and decomposes large elements into
// sequences of cheaper ones.
package strel

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of shapes.
type Kind int

const (
	KindSquare Kind = iota
	KindDisk
	KindRectangle
	KindDiamond
	KindPeriodicLine
	KindCustom
)

var kindNames = map[Kind]string{
	KindSquare:       "square",
	KindDisk:         "disk",
	KindRectangle:    "rectangle",
	KindDiamond:      "diamond",
	KindPeriodicLine: "periodicline",
	KindCustom:       "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration name onto a Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	if n == "line" {
		return KindPeriodicLine, nil
	}
	for k, v := range kindNames {
		if v == n {
			return k, nil
		}
	}
	return KindSquare, fmt.Errorf("unknown shape %q", name)
}

// Neighborhood is implemented by user-supplied shapes. Offsets returns the
// "on" positions relative to the probed sample.
type Neighborhood interface {
	Dimensions() int
	Offsets() [][]int
}

// Shape describes a structuring element by kind and parameters. Only the
// fields relevant to Kind are read.
type Shape struct {
	Kind Kind

	// Radius of square, disk and diamond shapes.
	Radius int

	// Dims is the dimensionality of square, disk and diamond shapes.
	Dims int

	// HalfSpans holds the per-axis half extents of a rectangle; the
	// rectangle spans 2*HalfSpans[k]+1 samples along axis k.
	HalfSpans []int

	// Step is the direction vector of a periodic line.
	Step []int

	// Count is the number of steps a periodic line takes on each side of
	// the origin, giving 2*Count+1 offsets.
	Count int

	// Custom supplies the offsets of a KindCustom shape.
	Custom Neighborhood
}

// Square is the (2r+1)^dims hypercube.
func Square(radius, dims int) Shape {
	return Shape{Kind: KindSquare, Radius: radius, Dims: dims}
}

// Disk holds the offsets within Euclidean distance radius of the origin.
func Disk(radius, dims int) Shape {
	return Shape{Kind: KindDisk, Radius: radius, Dims: dims}
}

// Diamond holds the offsets within Manhattan distance radius of the origin.
func Diamond(radius, dims int) Shape {
	return Shape{Kind: KindDiamond, Radius: radius, Dims: dims}
}

// Rectangle spans 2*halfSpans[k]+1 samples along each axis k.
func Rectangle(halfSpans ...int) Shape {
	return Shape{Kind: KindRectangle, HalfSpans: append([]int(nil), halfSpans...), Dims: len(halfSpans)}
}

// PeriodicLine holds the 2n+1 offsets i*step for i in [-n, n].
func PeriodicLine(n int, step ...int) Shape {
	return Shape{Kind: KindPeriodicLine, Count: n, Step: append([]int(nil), step...), Dims: len(step)}
}

// Custom wraps a user-supplied neighbourhood.
func Custom(nb Neighborhood) Shape {
	s := Shape{Kind: KindCustom, Custom: nb}
	if nb != nil {
		s.Dims = nb.Dimensions()
	}
	return s
}

// InvalidShapeError reports shape parameters that define no element.
type InvalidShapeError struct {
	Kind   Kind
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("invalid %s structuring element: %s", e.Kind, e.Reason)
}

// DimensionMismatchError reports an element whose dimensionality differs
// from the raster it is applied to.
type DimensionMismatchError struct {
	Raster  int
	Element int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("structuring element has %d dimensions, raster has %d", e.Element, e.Raster)
}

func (s Shape) invalid(format string, args ...any) error {
	return &InvalidShapeError{Kind: s.Kind, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the parameters relevant to s.Kind.
func (s Shape) Validate() error {
	switch s.Kind {
	case KindSquare, KindDisk, KindDiamond:
		if s.Radius < 0 {
			return s.invalid("radius %d is negative", s.Radius)
		}
		if s.Dims < 1 {
			return s.invalid("dimensionality %d must be at least 1", s.Dims)
		}
	case KindRectangle:
		if len(s.HalfSpans) == 0 {
			return s.invalid("no half spans given")
		}
		for k, h := range s.HalfSpans {
			if h < 0 {
				return s.invalid("half span %d of axis %d is negative", h, k)
			}
		}
	case KindPeriodicLine:
		if len(s.Step) == 0 {
			return s.invalid("no step vector given")
		}
		if s.Count < 0 {
			return s.invalid("count %d is negative", s.Count)
		}
		zero := true
		for _, v := range s.Step {
			if v != 0 {
				zero = false
			}
		}
		if zero {
			return s.invalid("step vector %v is zero", s.Step)
		}
	case KindCustom:
		if s.Custom == nil {
			return s.invalid("no neighborhood supplied")
		}
		d := s.Custom.Dimensions()
		if d < 1 {
			return s.invalid("dimensionality %d must be at least 1", d)
		}
		offsets := s.Custom.Offsets()
		if len(offsets) == 0 {
			return s.invalid("neighborhood is empty")
		}
		for i, o := range offsets {
			if len(o) != d {
				return s.invalid("offset %d has %d components, want %d", i, len(o), d)
			}
		}
	default:
		return s.invalid("unknown kind")
	}
	return nil
}

// Dimensions returns the dimensionality the shape probes.
func (s Shape) Dimensions() int {
	switch s.Kind {
	case KindRectangle:
		return len(s.HalfSpans)
	case KindPeriodicLine:
		return len(s.Step)
	case KindCustom:
		if s.Custom == nil {
			return 0
		}
		return s.Custom.Dimensions()
	default:
		return s.Dims
	}
}

// CheckDims fails with a DimensionMismatchError unless the shape probes
// rasters of dims dimensions.
func (s Shape) CheckDims(dims int) error {
	if d := s.Dimensions(); d != dims {
		return &DimensionMismatchError{Raster: dims, Element: d}
	}
	return nil
}

// Element generates the offset set of the shape.
func (s Shape) Element() (*Element, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var offsets [][]int
	switch s.Kind {
	case KindSquare:
		offsets = box(uniform(s.Radius, s.Dims), nil)
	case KindRectangle:
		offsets = box(s.HalfSpans, nil)
	case KindDisk:
		r2 := s.Radius * s.Radius
		offsets = box(uniform(s.Radius, s.Dims), func(o []int) bool {
			sum := 0
			for _, v := range o {
				sum += v * v
			}
			return sum <= r2
		})
	case KindDiamond:
		offsets = box(uniform(s.Radius, s.Dims), func(o []int) bool {
			sum := 0
			for _, v := range o {
				sum += abs(v)
			}
			return sum <= s.Radius
		})
	case KindPeriodicLine:
		for i := -s.Count; i <= s.Count; i++ {
			o := make([]int, len(s.Step))
			for k, v := range s.Step {
				o[k] = i * v
			}
			offsets = append(offsets, o)
		}
	case KindCustom:
		offsets = s.Custom.Offsets()
	}

	e := newElement(s.Dimensions(), offsets)
	e.label = s.label()
	return e, nil
}

func (s Shape) label() string {
	switch s.Kind {
	case KindSquare, KindDisk, KindDiamond:
		return fmt.Sprintf("%s(radius=%d, %dD)", s.Kind, s.Radius, s.Dims)
	case KindRectangle:
		return fmt.Sprintf("rectangle(halfSpans=%v)", s.HalfSpans)
	case KindPeriodicLine:
		return fmt.Sprintf("periodicline(n=%d, step=%v)", s.Count, s.Step)
	default:
		return ""
	}
}

// String describes the shape parameters.
func (s Shape) String() string {
	if l := s.label(); l != "" {
		return l
	}
	return s.Kind.String()
}

func uniform(r, dims int) []int {
	spans := make([]int, dims)
	for k := range spans {
		spans[k] = r
	}
	return spans
}

// box enumerates every offset with |o_k| <= halfSpans[k], keeping those
// accepted by keep (all of them when keep is nil).
func box(halfSpans []int, keep func([]int) bool) [][]int {
	dims := len(halfSpans)
	cur := make([]int, dims)
	for k, h := range halfSpans {
		cur[k] = -h
	}

	var out [][]int
	for {
		if keep == nil || keep(cur) {
			out = append(out, append([]int(nil), cur...))
		}
		k := 0
		for ; k < dims; k++ {
			cur[k]++
			if cur[k] <= halfSpans[k] {
				break
			}
			cur[k] = -halfSpans[k]
		}
		if k == dims {
			return out
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
