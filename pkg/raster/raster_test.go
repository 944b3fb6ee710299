package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadExtents(t *testing.T) {
	_, err := New[uint8]()
	assert.Error(t, err)

	_, err = New[uint8](3, 0)
	assert.Error(t, err)

	_, err = FromSlice([]uint8{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestIndexPositionRoundTrip(t *testing.T) {
	r, err := New[int32](4, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Dims())
	assert.Equal(t, 24, r.Len())
	assert.Equal(t, []int{1, 4, 12}, r.Strides())

	pos := make([]int, 3)
	for i := 0; i < r.Len(); i++ {
		r.Position(i, pos)
		assert.Equal(t, i, r.Index(pos...))
		assert.True(t, r.Contains(pos...))
	}
	assert.False(t, r.Contains(4, 0, 0))
	assert.False(t, r.Contains(0, -1, 0))
	assert.False(t, r.Contains(0, 0))
}

func TestSetAtClone(t *testing.T) {
	r, err := New[uint8](3, 3)
	require.NoError(t, err)
	r.Set(7, 2, 1)
	assert.Equal(t, uint8(7), r.At(2, 1))
	assert.Equal(t, uint8(7), r.Data()[5])

	c := r.Clone()
	c.Set(9, 2, 1)
	assert.Equal(t, uint8(7), r.At(2, 1), "clone must not share storage")
	assert.False(t, Equal(r, c))

	c.Fill(1)
	for _, v := range c.Data() {
		assert.Equal(t, uint8(1), v)
	}
	assert.Equal(t, "raster[3x3]", r.String())
}

func TestCrop(t *testing.T) {
	data := make([]int16, 20)
	for i := range data {
		data[i] = int16(i)
	}
	r, err := FromSlice(data, 5, 4)
	require.NoError(t, err)

	c, err := Crop(r, []int{1, 2}, []int{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, c.Extents())
	assert.Equal(t, []int16{11, 12, 13, 16, 17, 18}, c.Data())

	_, err = Crop(r, []int{3, 0}, []int{3, 1})
	assert.Error(t, err)
}

func TestMapCoord(t *testing.T) {
	tests := []struct {
		policy Policy
		c, n   int
		want   int
		ok     bool
	}{
		{Sentinel, 2, 5, 2, true},
		{Sentinel, -1, 5, 0, false},
		{Sentinel, 5, 5, 0, false},
		{Nearest, -3, 5, 0, true},
		{Nearest, 7, 5, 4, true},
		{Mirror, -1, 5, 1, true},
		{Mirror, -4, 5, 4, true},
		{Mirror, -5, 5, 3, true},
		{Mirror, 5, 5, 3, true},
		{Mirror, 6, 5, 2, true},
		{Mirror, 13, 5, 3, true},
		{Mirror, -2, 1, 0, true},
	}
	for _, tt := range tests {
		got, ok := tt.policy.MapCoord(tt.c, tt.n)
		assert.Equal(t, tt.ok, ok, "%s(%d, %d)", tt.policy, tt.c, tt.n)
		if ok {
			assert.Equal(t, tt.want, got, "%s(%d, %d)", tt.policy, tt.c, tt.n)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]Policy{
		"sentinel": Sentinel,
		"":         Sentinel,
		"Nearest":  Nearest,
		"extend":   Nearest,
		" mirror ": Mirror,
	} {
		got, err := ParsePolicy(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParsePolicy("wrap")
	assert.Error(t, err)
}

func TestPad(t *testing.T) {
	r, err := FromSlice([]uint8{1, 2, 3}, 3)
	require.NoError(t, err)

	p, err := Pad(r, []int{2}, []int{1}, Sentinel, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 1, 2, 3, 0}, p.Data())

	p, err = Pad(r, []int{2}, []int{1}, Nearest, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 1, 2, 3, 3}, p.Data())

	p, err = Pad(r, []int{2}, []int{2}, Mirror, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 2, 1, 2, 3, 2, 1}, p.Data())

	_, err = Pad(r, []int{-1}, []int{0}, Sentinel, 0)
	assert.Error(t, err)
}

func TestPad2D(t *testing.T) {
	r, err := FromSlice([]uint8{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)

	p, err := Pad(r, []int{1, 0}, []int{0, 1}, Sentinel, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, p.Extents())
	assert.Equal(t, []uint8{
		9, 1, 2,
		9, 3, 4,
		9, 9, 9,
	}, p.Data())
}

func TestOrderedSubClamps(t *testing.T) {
	assert.Equal(t, uint8(0), Uint8.Sub(3, 10))
	assert.Equal(t, uint8(7), Uint8.Sub(10, 3))
	assert.Equal(t, uint16(0), Uint16.Sub(0, math.MaxUint16))
	assert.Equal(t, int16(math.MaxInt16), Int16.Sub(30000, -30000))
	assert.Equal(t, int16(math.MinInt16), Int16.Sub(-30000, 30000))
	assert.Equal(t, int16(-5), Int16.Sub(-2, 3))
	assert.Equal(t, 1.5, Float64.Sub(2, 0.5))
}

func TestElementTraits(t *testing.T) {
	assert.True(t, Uint8.Less(Uint8.Min(), Uint8.Max()))
	assert.True(t, math.IsInf(Float64.Min(), -1))
	assert.True(t, math.IsInf(float64(Float32.Max()), 1))

	assert.False(t, Bool.Min())
	assert.True(t, Bool.Max())
	assert.True(t, Bool.Less(false, true))
	assert.False(t, Bool.Less(true, true))
	assert.True(t, Bool.Sub(true, false))
	assert.False(t, Bool.Sub(true, true))

	assert.Equal(t, uint8(3), MinOf(Uint8, 3, 8))
	assert.Equal(t, uint8(8), MaxOf(Uint8, 3, 8))
	assert.False(t, MinOf(Bool, true, false))
	assert.True(t, MaxOf(Bool, true, false))
}

func TestValidateElementType(t *testing.T) {
	require.NoError(t, ValidateElementType(Uint8))
	require.NoError(t, ValidateElementType(Bool))

	var unsupported *UnsupportedElementTypeError
	err := ValidateElementType[uint8](nil)
	require.True(t, errors.As(err, &unsupported))

	err = ValidateElementType(Ordered[uint8]("flat", 5, 5))
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "flat", unsupported.Name)
}

func TestThresholdNotDifference(t *testing.T) {
	r, err := FromSlice([]uint8{10, 200, 127, 128}, 4)
	require.NoError(t, err)

	mask := Threshold(Uint8, r, 127, true)
	assert.Equal(t, []bool{false, true, false, true}, mask.Data())

	below := Threshold(Uint8, r, 127, false)
	assert.Equal(t, []bool{true, false, false, false}, below.Data())

	assert.Equal(t, []bool{true, false, true, false}, Not(mask).Data())

	o, err := FromSlice([]uint8{20, 100, 127, 0}, 4)
	require.NoError(t, err)
	d, err := Difference(Uint8, r, o)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 100, 0, 128}, d.Data())

	short, err := New[uint8](3)
	require.NoError(t, err)
	_, err = Difference(Uint8, r, short)
	assert.Error(t, err)
}
