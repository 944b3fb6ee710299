package raster

import (
	"fmt"
	"strings"
)

// Policy decides what an out-of-range neighbour reads as. It changes the
// value of every output sample within the element's reach of an edge, so
// the engine takes it explicitly.
type Policy int

const (
	// Sentinel substitutes the operation's neutral value: the type maximum
	// while eroding, the type minimum while dilating.
	Sentinel Policy = iota

	// Nearest clamps the coordinate to the closest edge sample.
	Nearest

	// Mirror reflects the coordinate about the edge sample without
	// repeating it: -1 reads 1 and n reads n-2.
	Mirror
)

func (p Policy) String() string {
	switch p {
	case Sentinel:
		return "sentinel"
	case Nearest:
		return "nearest"
	case Mirror:
		return "mirror"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration name onto a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sentinel", "constant":
		return Sentinel, nil
	case "nearest", "extend", "clamp":
		return Nearest, nil
	case "mirror", "reflect":
		return Mirror, nil
	default:
		return Sentinel, fmt.Errorf("unknown boundary policy %q (must be sentinel, nearest or mirror)", name)
	}
}

// MapCoord resolves coordinate c on an axis of size n. It returns false
// when the policy substitutes the sentinel instead of reading a sample.
func (p Policy) MapCoord(c, n int) (int, bool) {
	if c >= 0 && c < n {
		return c, true
	}
	switch p {
	case Nearest:
		if c < 0 {
			return 0, true
		}
		return n - 1, true
	case Mirror:
		if n == 1 {
			return 0, true
		}
		period := 2 * (n - 1)
		c %= period
		if c < 0 {
			c += period
		}
		if c >= n {
			c = period - c
		}
		return c, true
	default:
		return 0, false
	}
}

// Accessor reads a raster through a boundary policy.
type Accessor[T any] struct {
	src      *Raster[T]
	policy   Policy
	sentinel T
}

// NewAccessor binds src to a policy and the sentinel used by Sentinel.
func NewAccessor[T any](src *Raster[T], policy Policy, sentinel T) *Accessor[T] {
	return &Accessor[T]{src: src, policy: policy, sentinel: sentinel}
}

// At returns the sample at pos, or its substitute when pos is outside.
func (a *Accessor[T]) At(pos []int) T {
	idx := 0
	for k, c := range pos {
		m, ok := a.policy.MapCoord(c, a.src.extents[k])
		if !ok {
			return a.sentinel
		}
		idx += m * a.src.strides[k]
	}
	return a.src.data[idx]
}

// Pad returns a copy of src grown by before[k] samples at the start and
// after[k] samples at the end of every axis k, the new margin filled
// according to policy.
func Pad[T any](src *Raster[T], before, after []int, policy Policy, sentinel T) (*Raster[T], error) {
	if len(before) != src.Dims() || len(after) != src.Dims() {
		return nil, fmt.Errorf("padding has %d/%d axes, raster has %d", len(before), len(after), src.Dims())
	}
	extents := make([]int, src.Dims())
	for k := range extents {
		if before[k] < 0 || after[k] < 0 {
			return nil, fmt.Errorf("negative padding on axis %d", k)
		}
		extents[k] = src.extents[k] + before[k] + after[k]
	}
	dst, err := New[T](extents...)
	if err != nil {
		return nil, err
	}

	acc := NewAccessor(src, policy, sentinel)
	pos := make([]int, src.Dims())
	for i := range dst.data {
		dst.Position(i, pos)
		for k := range pos {
			pos[k] -= before[k]
		}
		dst.data[i] = acc.At(pos)
	}
	return dst, nil
}
