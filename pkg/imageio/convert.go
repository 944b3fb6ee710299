package imageio

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"graymorph/pkg/raster"
)

// GrayRaster8 converts img to an 8-bit luminance raster with extents
// (width, height).
func GrayRaster8(img image.Image) *raster.Raster[uint8] {
	b := img.Bounds()
	r, _ := raster.New[uint8](b.Dx(), b.Dy())
	data := r.Data()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			data[y*b.Dx()+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return r
}

// GrayRaster16 converts img to a 16-bit luminance raster with extents
// (width, height).
func GrayRaster16(img image.Image) *raster.Raster[uint16] {
	b := img.Bounds()
	r, _ := raster.New[uint16](b.Dx(), b.Dy())
	data := r.Data()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			data[y*b.Dx()+x] = color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16).Y
		}
	}
	return r
}

func check2D[T any](r *raster.Raster[T]) error {
	if r.Dims() != 2 {
		return fmt.Errorf("image needs a 2D raster, got %d dimensions", r.Dims())
	}
	return nil
}

// ToImage8 converts a 2D 8-bit raster to an image.
func ToImage8(r *raster.Raster[uint8]) (*image.Gray, error) {
	if err := check2D(r); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, r.Extent(0), r.Extent(1)))
	copy(img.Pix, r.Data())
	return img, nil
}

// ToImage16 converts a 2D 16-bit raster to an image.
func ToImage16(r *raster.Raster[uint16]) (*image.Gray16, error) {
	if err := check2D(r); err != nil {
		return nil, err
	}
	w, h := r.Extent(0), r.Extent(1)
	img := image.NewGray16(image.Rect(0, 0, w, h))
	data := r.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: data[y*w+x]})
		}
	}
	return img, nil
}

// BinaryToImage renders a 2D mask as black (off) and white (on).
func BinaryToImage(mask *raster.Raster[bool]) (*image.Gray, error) {
	if err := check2D(mask); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, mask.Extent(0), mask.Extent(1)))
	for i, on := range mask.Data() {
		if on {
			img.Pix[i] = 255
		}
	}
	return img, nil
}

// ExtractSlice cuts the plane at position along axis ("x", "y" or "z") out
// of a 3D raster. The plane keeps the remaining axes in order: x slices
// are (y, z), y slices (x, z) and z slices (x, y).
func ExtractSlice[T any](vol *raster.Raster[T], axis string, position int) (*raster.Raster[T], error) {
	if vol.Dims() != 3 {
		return nil, fmt.Errorf("slicing needs a 3D raster, got %d dimensions", vol.Dims())
	}
	a, err := axisIndex(axis)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= vol.Extent(a) {
		return nil, fmt.Errorf("position %d outside axis %s of size %d", position, axis, vol.Extent(a))
	}

	origin := []int{0, 0, 0}
	extents := vol.Extents()
	origin[a], extents[a] = position, 1
	plane, err := raster.Crop(vol, origin, extents)
	if err != nil {
		return nil, err
	}

	var keep []int
	for k, e := range extents {
		if k != a {
			keep = append(keep, e)
		}
	}
	return raster.FromSlice(plane.Data(), keep...)
}

func axisIndex(axis string) (int, error) {
	switch strings.ToLower(axis) {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
}

// Normalized maps an unsigned raster to [0, 1] floats, the range the
// metrics package expects.
func Normalized[T uint8 | uint16](r *raster.Raster[T], maxValue T) []float64 {
	out := make([]float64, r.Len())
	for i, v := range r.Data() {
		out[i] = float64(v) / float64(maxValue)
	}
	return out
}

// NormalizedBinary maps a mask to 0 and 1.
func NormalizedBinary(mask *raster.Raster[bool]) []float64 {
	out := make([]float64, mask.Len())
	for i, on := range mask.Data() {
		if on {
			out[i] = 1
		}
	}
	return out
}
