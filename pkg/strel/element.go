package strel

import (
	"fmt"
	"sort"
	"strings"
)

// Element is an immutable structuring element: a sorted, duplicate-free set
// of integer offset vectors of one dimensionality.
type Element struct {
	dims    int
	offsets [][]int
	lo, hi  []int
	label   string
}

// NewElement builds an element from raw offsets. Duplicates are dropped.
func NewElement(dims int, offsets [][]int) (*Element, error) {
	return Custom(offsetList{dims: dims, offsets: offsets}).Element()
}

// offsetList is the Neighborhood behind NewElement.
type offsetList struct {
	dims    int
	offsets [][]int
}

func (l offsetList) Dimensions() int { return l.dims }
func (l offsetList) Offsets() [][]int { return l.offsets }

func newElement(dims int, offsets [][]int) *Element {
	set := make([][]int, 0, len(offsets))
	for _, o := range offsets {
		set = append(set, append([]int(nil), o...))
	}
	sort.Slice(set, func(i, j int) bool { return lessOffset(set[i], set[j]) })

	// drop duplicates in place
	n := 0
	for i, o := range set {
		if i > 0 && equalOffset(o, set[n-1]) {
			continue
		}
		set[n] = o
		n++
	}
	set = set[:n]

	e := &Element{dims: dims, offsets: set, lo: make([]int, dims), hi: make([]int, dims)}
	for k := 0; k < dims; k++ {
		e.lo[k], e.hi[k] = set[0][k], set[0][k]
		for _, o := range set[1:] {
			e.lo[k] = min(e.lo[k], o[k])
			e.hi[k] = max(e.hi[k], o[k])
		}
	}
	return e
}

// lessOffset orders offsets by their last axis first, so the sequence walks
// memory in increasing order for an axis-0-fastest raster.
func lessOffset(a, b []int) bool {
	for k := len(a) - 1; k >= 0; k-- {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

func equalOffset(a, b []int) bool {
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// Dims returns the dimensionality of the element.
func (e *Element) Dims() int { return e.dims }

// Len returns the number of offsets, the per-sample probe cost.
func (e *Element) Len() int { return len(e.offsets) }

// Offsets returns a copy of the offset vectors.
func (e *Element) Offsets() [][]int {
	out := make([][]int, len(e.offsets))
	for i, o := range e.offsets {
		out[i] = append([]int(nil), o...)
	}
	return out
}

// Offset returns offset i without copying. Callers must not modify it.
func (e *Element) Offset(i int) []int { return e.offsets[i] }

// Bounds returns the per-axis minimum and maximum offsets.
func (e *Element) Bounds() (lo, hi []int) {
	return append([]int(nil), e.lo...), append([]int(nil), e.hi...)
}

// Contains reports whether o is one of the offsets.
func (e *Element) Contains(o []int) bool {
	if len(o) != e.dims {
		return false
	}
	i := sort.Search(len(e.offsets), func(i int) bool { return !lessOffset(e.offsets[i], o) })
	return i < len(e.offsets) && equalOffset(e.offsets[i], o)
}

// Equal reports whether e and o hold the same offset set.
func (e *Element) Equal(o *Element) bool {
	if e.dims != o.dims || len(e.offsets) != len(o.offsets) {
		return false
	}
	for i := range e.offsets {
		if !equalOffset(e.offsets[i], o.offsets[i]) {
			return false
		}
	}
	return true
}

// Axis returns the single axis an element lies along, or -1 when it spans
// more than one axis or is a lone point.
func (e *Element) Axis() int {
	axis := -1
	for k := 0; k < e.dims; k++ {
		if e.lo[k] != 0 || e.hi[k] != 0 {
			if axis >= 0 {
				return -1
			}
			axis = k
		}
	}
	return axis
}

// Reflect returns the element mirrored through the origin.
func (e *Element) Reflect() *Element {
	neg := make([][]int, len(e.offsets))
	for i, o := range e.offsets {
		n := make([]int, len(o))
		for k, v := range o {
			n[k] = -v
		}
		neg[i] = n
	}
	r := newElement(e.dims, neg)
	if e.label != "" {
		r.label = "reflected " + e.label
	}
	return r
}

// String returns a diagnostic descriptor such as "line(axis=0, len=7)".
func (e *Element) String() string {
	if axis := e.Axis(); axis >= 0 && e.isContiguousLine(axis) {
		return fmt.Sprintf("line(axis=%d, len=%d)", axis, e.Len())
	}
	if e.label != "" {
		return fmt.Sprintf("%s: %d offsets", e.label, e.Len())
	}
	spans := make([]string, e.dims)
	for k := range spans {
		spans[k] = fmt.Sprintf("[%d..%d]", e.lo[k], e.hi[k])
	}
	return fmt.Sprintf("element(%dD, %d offsets, %s)", e.dims, e.Len(), strings.Join(spans, "x"))
}

func (e *Element) isContiguousLine(axis int) bool {
	return e.hi[axis]-e.lo[axis]+1 == e.Len()
}
