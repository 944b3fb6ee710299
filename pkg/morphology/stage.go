package morphology

import (
	"sync"

	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

// kernel holds everything one stage needs per sample, precomputed once.
type kernel[T any] struct {
	src      *raster.Raster[T]
	acc      *raster.Accessor[T]
	offsets  [][]int
	deltas   []int
	lo, hi   []int
	extents  []int
	identity T
	reduce   func(a, b T) T
}

// stage applies a single element. Out-of-range reads go through the
// boundary policy with the identity of the reduction as sentinel, so under
// raster.Sentinel they leave the result untouched.
func (e *Engine[T]) stage(src *raster.Raster[T], el *strel.Element, erode bool) *raster.Raster[T] {
	k := kernel[T]{
		src:     src,
		offsets: el.Offsets(),
		extents: src.Extents(),
	}
	k.lo, k.hi = el.Bounds()
	if erode {
		k.identity = e.elem.Max()
		k.reduce = func(a, b T) T { return raster.MinOf(e.elem, a, b) }
	} else {
		k.identity = e.elem.Min()
		k.reduce = func(a, b T) T { return raster.MaxOf(e.elem, a, b) }
	}
	k.acc = raster.NewAccessor(src, e.policy, k.identity)

	strides := src.Strides()
	k.deltas = make([]int, len(k.offsets))
	for i, o := range k.offsets {
		for a, v := range o {
			k.deltas[i] += v * strides[a]
		}
	}

	dst := raster.NewLike[T](src)
	n := src.Len()
	workers := min(e.workers, n)
	if workers <= 1 {
		k.run(dst.Data(), 0, n)
		return dst
	}

	// Each worker owns a contiguous range of output samples; the stage is
	// complete only when all of them have returned.
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			k.run(dst.Data(), start, end)
		}(start, end)
	}
	wg.Wait()
	return dst
}

// run computes output samples [start, end).
func (k *kernel[T]) run(out []T, start, end int) {
	data := k.src.Data()
	dims := len(k.extents)
	pos := make([]int, dims)
	probe := make([]int, dims)
	k.src.Position(start, pos)

	for i := start; i < end; i++ {
		v := k.identity
		if k.interior(pos) {
			for _, d := range k.deltas {
				v = k.reduce(v, data[i+d])
			}
		} else {
			for _, o := range k.offsets {
				for a := range pos {
					probe[a] = pos[a] + o[a]
				}
				v = k.reduce(v, k.acc.At(probe))
			}
		}
		out[i] = v

		// advance the position counter, axis 0 fastest
		for a := 0; a < dims; a++ {
			pos[a]++
			if pos[a] < k.extents[a] {
				break
			}
			pos[a] = 0
		}
	}
}

// interior reports whether every neighbour of pos lies inside the raster.
func (k *kernel[T]) interior(pos []int) bool {
	for a, p := range pos {
		if p+k.lo[a] < 0 || p+k.hi[a] >= k.extents[a] {
			return false
		}
	}
	return true
}
