package strel

import (
	"fmt"
)

// Decomposition is an ordered sequence of elements. Eroding (or dilating)
// with each element in turn, every stage reading the previous stage's
// output, equals one erosion (dilation) with the Minkowski sum of the
// sequence.
type Decomposition struct {
	elements []*Element
}

// Sequence wraps elements as a decomposition. All elements must share one
// dimensionality.
func Sequence(elements ...*Element) (Decomposition, error) {
	if len(elements) == 0 {
		return Decomposition{}, fmt.Errorf("decomposition needs at least one element")
	}
	for i, e := range elements {
		if e == nil {
			return Decomposition{}, fmt.Errorf("element %d is nil", i)
		}
		if e.Dims() != elements[0].Dims() {
			return Decomposition{}, &DimensionMismatchError{Raster: elements[0].Dims(), Element: e.Dims()}
		}
	}
	return Decomposition{elements: append([]*Element(nil), elements...)}, nil
}

// Single wraps one element.
func Single(e *Element) Decomposition {
	return Decomposition{elements: []*Element{e}}
}

// Len returns the number of stages.
func (d Decomposition) Len() int { return len(d.elements) }

// Elements returns the stages in application order.
func (d Decomposition) Elements() []*Element { return append([]*Element(nil), d.elements...) }

// Dims returns the dimensionality of the stages, 0 for an empty sequence.
func (d Decomposition) Dims() int {
	if len(d.elements) == 0 {
		return 0
	}
	return d.elements[0].Dims()
}

// Cost is the number of probes per sample needed to apply the sequence.
func (d Decomposition) Cost() int {
	c := 0
	for _, e := range d.elements {
		c += e.Len()
	}
	return c
}

// Bounds returns the per-axis reach of the whole sequence: the sum of the
// stages' minimum and maximum offsets.
func (d Decomposition) Bounds() (lo, hi []int) {
	lo, hi = make([]int, d.Dims()), make([]int, d.Dims())
	for _, e := range d.elements {
		for k := range lo {
			lo[k] += e.lo[k]
			hi[k] += e.hi[k]
		}
	}
	return lo, hi
}

// Flatten computes the Minkowski sum of the stages, the single element the
// sequence is equivalent to.
func (d Decomposition) Flatten() *Element {
	if len(d.elements) == 1 {
		return d.elements[0]
	}
	acc := [][]int{make([]int, d.Dims())}
	for _, e := range d.elements {
		next := make([][]int, 0, len(acc)*e.Len())
		for _, a := range acc {
			for _, o := range e.offsets {
				s := make([]int, len(a))
				for k := range a {
					s[k] = a[k] + o[k]
				}
				next = append(next, s)
			}
		}
		acc = newElement(d.Dims(), next).offsets
	}
	return newElement(d.Dims(), acc)
}

// Descriptors lists a human-readable description of every stage.
func (d Decomposition) Descriptors() []string {
	out := make([]string, len(d.elements))
	for i, e := range d.elements {
		out[i] = e.String()
	}
	return out
}

// Decompose turns a shape into a sequence of elements. With optimize unset,
// or when no cheaper exact factorisation is known, the sequence holds the
// shape's own element only.
//
// Known factorisations:
//   - square and rectangle: one line per axis with a non-zero half span
//   - diamond: radius successive unit diamonds
//   - disk: a square followed by unit diamonds, when that octagon equals
//     the digital disk exactly
func Decompose(s Shape, optimize bool) (Decomposition, error) {
	whole, err := s.Element()
	if err != nil {
		return Decomposition{}, err
	}
	if !optimize {
		return Single(whole), nil
	}

	var parts []*Element
	switch s.Kind {
	case KindSquare:
		parts = axisLines(uniform(s.Radius, s.Dims))
	case KindRectangle:
		parts = axisLines(s.HalfSpans)
	case KindDiamond:
		parts = repeat(cross(s.Dims), s.Radius)
	case KindDisk:
		parts = octagonFor(whole, s.Radius, s.Dims)
	}

	if len(parts) < 2 {
		return Single(whole), nil
	}
	d := Decomposition{elements: parts}
	if d.Cost() >= whole.Len() {
		return Single(whole), nil
	}
	return d, nil
}

// line returns the contiguous line of 2h+1 offsets along axis.
func line(dims, axis, h int) *Element {
	spans := make([]int, dims)
	spans[axis] = h
	return newElement(dims, box(spans, nil))
}

func axisLines(halfSpans []int) []*Element {
	var out []*Element
	for k, h := range halfSpans {
		if h > 0 {
			out = append(out, line(len(halfSpans), k, h))
		}
	}
	return out
}

// cross is the unit diamond: the origin and its 2*dims face neighbours.
func cross(dims int) *Element {
	e, _ := Diamond(1, dims).Element()
	return e
}

func repeat(e *Element, n int) []*Element {
	out := make([]*Element, n)
	for i := range out {
		out[i] = e
	}
	return out
}

// octagonFor searches the family square(a) + b*cross with a+b = radius for
// the cheapest member equal to disk. The octagon of a square of radius a
// dilated b times by the unit diamond is the set of offsets o with
// sum_k max(0, |o_k| - a) <= b.
func octagonFor(disk *Element, radius, dims int) []*Element {
	var best []*Element
	bestCost := disk.Len()
	for a := 0; a <= radius; a++ {
		b := radius - a
		cost := b * (2*dims + 1)
		if a > 0 {
			cost += dims * (2*a + 1)
		}
		if cost >= bestCost || !octagonMatches(disk, radius, a, b) {
			continue
		}
		var parts []*Element
		if a > 0 {
			parts = axisLines(uniform(a, dims))
		}
		parts = append(parts, repeat(cross(dims), b)...)
		best, bestCost = parts, cost
	}
	return best
}

func octagonMatches(disk *Element, radius, a, b int) bool {
	inOctagon := 0
	for _, o := range box(uniform(radius, disk.Dims()), nil) {
		excess := 0
		for _, v := range o {
			excess += max(0, abs(v)-a)
		}
		in := excess <= b
		if in != disk.Contains(o) {
			return false
		}
		if in {
			inOctagon++
		}
	}
	return inOctagon == disk.Len()
}
