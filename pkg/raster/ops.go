package raster

import "fmt"

// Difference returns a - b sample by sample using the clamped subtraction
// of et.
func Difference[T any](et ElementType[T], a, b *Raster[T]) (*Raster[T], error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("cannot subtract %s from %s", b, a)
	}
	out := NewLike[T](a)
	for i := range a.data {
		out.data[i] = et.Sub(a.data[i], b.data[i])
	}
	return out, nil
}

// Threshold builds a binary mask of src. With above set, samples strictly
// greater than level are on; otherwise samples strictly less than level.
func Threshold[T any](et ElementType[T], src *Raster[T], level T, above bool) *Raster[bool] {
	mask := NewLike[bool](src)
	for i, v := range src.data {
		if above {
			mask.data[i] = et.Less(level, v)
		} else {
			mask.data[i] = et.Less(v, level)
		}
	}
	return mask
}

// Not returns the complement of a binary raster.
func Not(mask *Raster[bool]) *Raster[bool] {
	out := NewLike[bool](mask)
	for i, v := range mask.data {
		out.data[i] = !v
	}
	return out
}

// Equal reports whether a and b have the same shape and samples.
func Equal[T comparable](a, b *Raster[T]) bool {
	if !SameShape(a, b) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// Convert maps every sample of src through fn into a new raster.
func Convert[T, U any](src *Raster[T], fn func(T) U) *Raster[U] {
	out := NewLike[U](src)
	for i, v := range src.data {
		out.data[i] = fn(v)
	}
	return out
}
