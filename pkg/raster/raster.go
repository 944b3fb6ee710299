// Package raster provides the N-dimensional sample buffer used by the
// morphology engine, the element-type traits that order its samples and
// the boundary policies that decide what lies outside of it.
package raster

import (
	"fmt"
)

// Raster is an N-dimensional array of samples stored in a single flat slice.
// Axis 0 varies fastest, so a 2D raster is laid out row by row (x, then y)
// and a 3D raster slice by slice, the same order the volume data of an MRI
// stack uses.
type Raster[T any] struct {
	// data holds the samples in axis-0-fastest order
	data []T

	// extents is the size of each dimension
	extents []int

	// strides[k] is the distance in data between neighbours along axis k
	strides []int
}

// New allocates a zero-filled raster with the given extents.
// Every extent must be positive.
func New[T any](extents ...int) (*Raster[T], error) {
	n, err := checkExtents(extents)
	if err != nil {
		return nil, err
	}
	r := &Raster[T]{
		data:    make([]T, n),
		extents: append([]int(nil), extents...),
	}
	r.strides = computeStrides(r.extents)
	return r, nil
}

// FromSlice wraps data as a raster. The raster takes ownership of data;
// len(data) must equal the product of extents.
func FromSlice[T any](data []T, extents ...int) (*Raster[T], error) {
	n, err := checkExtents(extents)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("data length %d does not match extents %v (%d samples)", len(data), extents, n)
	}
	r := &Raster[T]{
		data:    data,
		extents: append([]int(nil), extents...),
	}
	r.strides = computeStrides(r.extents)
	return r, nil
}

// NewLike allocates a zero-filled raster with the same extents as r.
func NewLike[T, U any](r *Raster[U]) *Raster[T] {
	return &Raster[T]{
		data:    make([]T, len(r.data)),
		extents: append([]int(nil), r.extents...),
		strides: append([]int(nil), r.strides...),
	}
}

func checkExtents(extents []int) (int, error) {
	if len(extents) == 0 {
		return 0, fmt.Errorf("raster needs at least one dimension")
	}
	n := 1
	for k, e := range extents {
		if e <= 0 {
			return 0, fmt.Errorf("extent %d of axis %d must be positive", e, k)
		}
		n *= e
	}
	return n, nil
}

func computeStrides(extents []int) []int {
	strides := make([]int, len(extents))
	s := 1
	for k, e := range extents {
		strides[k] = s
		s *= e
	}
	return strides
}

// Dims returns the number of dimensions.
func (r *Raster[T]) Dims() int { return len(r.extents) }

// Len returns the total number of samples.
func (r *Raster[T]) Len() int { return len(r.data) }

// Extents returns a copy of the per-dimension sizes.
func (r *Raster[T]) Extents() []int { return append([]int(nil), r.extents...) }

// Extent returns the size of axis k.
func (r *Raster[T]) Extent(k int) int { return r.extents[k] }

// Strides returns a copy of the per-axis strides into Data.
func (r *Raster[T]) Strides() []int { return append([]int(nil), r.strides...) }

// Data exposes the backing slice in axis-0-fastest order.
func (r *Raster[T]) Data() []T { return r.data }

// Index converts a position to its offset in Data. It does not check bounds.
func (r *Raster[T]) Index(pos ...int) int {
	idx := 0
	for k, p := range pos {
		idx += p * r.strides[k]
	}
	return idx
}

// Position converts an offset in Data back to a position, writing into pos.
func (r *Raster[T]) Position(idx int, pos []int) {
	for k, e := range r.extents {
		pos[k] = idx % e
		idx /= e
	}
}

// Contains reports whether pos lies inside the raster.
func (r *Raster[T]) Contains(pos ...int) bool {
	if len(pos) != len(r.extents) {
		return false
	}
	for k, p := range pos {
		if p < 0 || p >= r.extents[k] {
			return false
		}
	}
	return true
}

// At returns the sample at pos. Out-of-range positions panic like a slice
// access; use an Accessor for policy-governed reads.
func (r *Raster[T]) At(pos ...int) T { return r.data[r.Index(pos...)] }

// Set stores v at pos.
func (r *Raster[T]) Set(v T, pos ...int) { r.data[r.Index(pos...)] = v }

// Fill sets every sample to v.
func (r *Raster[T]) Fill(v T) {
	for i := range r.data {
		r.data[i] = v
	}
}

// Clone returns a deep copy.
func (r *Raster[T]) Clone() *Raster[T] {
	c := NewLike[T](r)
	copy(c.data, r.data)
	return c
}

// SameShape reports whether r and o have identical extents.
func SameShape[T, U any](r *Raster[T], o *Raster[U]) bool {
	if len(r.extents) != len(o.extents) {
		return false
	}
	for k := range r.extents {
		if r.extents[k] != o.extents[k] {
			return false
		}
	}
	return true
}

// Crop copies the region starting at origin with the given extents into a
// new raster. The region must lie fully inside src.
func Crop[T any](src *Raster[T], origin, extents []int) (*Raster[T], error) {
	if len(origin) != src.Dims() || len(extents) != src.Dims() {
		return nil, fmt.Errorf("crop region has %d/%d axes, raster has %d", len(origin), len(extents), src.Dims())
	}
	for k := range origin {
		if origin[k] < 0 || extents[k] <= 0 || origin[k]+extents[k] > src.extents[k] {
			return nil, fmt.Errorf("crop region [%d, %d) exceeds axis %d of size %d",
				origin[k], origin[k]+extents[k], k, src.extents[k])
		}
	}
	dst, err := New[T](extents...)
	if err != nil {
		return nil, err
	}

	pos := make([]int, src.Dims())
	for i := range dst.data {
		dst.Position(i, pos)
		srcIdx := 0
		for k := range pos {
			srcIdx += (pos[k] + origin[k]) * src.strides[k]
		}
		dst.data[i] = src.data[srcIdx]
	}
	return dst, nil
}

// String describes the raster shape, e.g. "raster[10x10]".
func (r *Raster[T]) String() string {
	s := "raster["
	for k, e := range r.extents {
		if k > 0 {
			s += "x"
		}
		s += fmt.Sprint(e)
	}
	return s + "]"
}
