package imageio

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graymorph/pkg/raster"
)

// createTestImage creates a 16-bit grayscale image with the given pattern
func createTestImage(width, height int, pattern func(x, y int) uint16) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: pattern(x, y)})
		}
	}
	return img
}

func TestGrayRasterLayout(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(2, 1, color.Gray{Y: 200})

	r := GrayRaster8(img)
	assert.Equal(t, []int{3, 2}, r.Extents())
	assert.Equal(t, uint8(200), r.At(2, 1))
	assert.Equal(t, uint8(0), r.At(1, 1))

	r16 := GrayRaster16(img)
	assert.Equal(t, uint16(200*257), r16.At(2, 1))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := createTestImage(5, 4, func(x, y int) uint16 { return uint16(x*1000 + y*10000) })

	for _, name := range []string{"out.png", "out.tif"} {
		path := filepath.Join(dir, "nested", name)
		require.NoError(t, Save(path, src))

		img, err := Load(path)
		require.NoError(t, err, name)
		r := GrayRaster16(img)
		assert.Equal(t, []int{5, 4}, r.Extents(), name)
		assert.Equal(t, uint16(3*1000+2*10000), r.At(3, 2), name)
	}

	r8, err := raster.FromSlice([]uint8{0, 64, 128, 255}, 2, 2)
	require.NoError(t, err)
	img8, err := ToImage8(r8)
	require.NoError(t, err)
	path := filepath.Join(dir, "gray8.png")
	require.NoError(t, Save(path, img8))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r8.Data(), GrayRaster8(loaded).Data())
}

func TestLoadSaveErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "volume.raw"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	assert.Error(t, Save(filepath.Join(dir, "out.bmp"), image.NewGray(image.Rect(0, 0, 1, 1))))
}

func TestBinaryToImage(t *testing.T) {
	mask, err := raster.FromSlice([]bool{true, false, false, true}, 2, 2)
	require.NoError(t, err)
	img, err := BinaryToImage(mask)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 0, 255}, img.Pix)

	vol, err := raster.New[bool](2, 2, 2)
	require.NoError(t, err)
	_, err = BinaryToImage(vol)
	assert.Error(t, err)
}

func TestLoadStackOrdersSlicesNumerically(t *testing.T) {
	dir := t.TempDir()
	// written out of order; slice_10 must come after slice_2
	for _, z := range []int{10, 1, 2} {
		img := createTestImage(4, 3, func(x, y int) uint16 { return uint16(z) })
		require.NoError(t, Save(filepath.Join(dir, fmt.Sprintf("slice_%d.png", z)), img))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	files, err := ListStack(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "slice_1.png", filepath.Base(files[0]))
	assert.Equal(t, "slice_10.png", filepath.Base(files[2]))

	vol, err := LoadStack(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 3}, vol.Extents())
	assert.Equal(t, uint16(1), vol.At(0, 0, 0))
	assert.Equal(t, uint16(2), vol.At(3, 2, 1))
	assert.Equal(t, uint16(10), vol.At(1, 1, 2))
}

func TestLoadStackRejectsMixedSizes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "a1.png"), createTestImage(4, 3, func(x, y int) uint16 { return 0 })))
	require.NoError(t, Save(filepath.Join(dir, "a2.png"), createTestImage(3, 3, func(x, y int) uint16 { return 0 })))
	_, err := LoadStack(dir)
	assert.Error(t, err)

	_, err = LoadStack(t.TempDir())
	assert.Error(t, err)
}

func TestExtractSlice(t *testing.T) {
	data := make([]int, 24)
	for i := range data {
		data[i] = i
	}
	vol, err := raster.FromSlice(data, 2, 3, 4)
	require.NoError(t, err)

	z, err := ExtractSlice(vol, "z", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, z.Extents())
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, z.Data())

	x, err := ExtractSlice(vol, "X", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, x.Extents())
	assert.Equal(t, 1+2*2+6*3, x.At(2, 3))

	y, err := ExtractSlice(vol, "y", 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, y.Extents())
	assert.Equal(t, 1+2*2+6*1, y.At(1, 1))

	_, err = ExtractSlice(vol, "w", 0)
	assert.Error(t, err)
	_, err = ExtractSlice(vol, "z", 4)
	assert.Error(t, err)
}

func TestSaveSliceSequence(t *testing.T) {
	vol, err := raster.New[uint16](3, 2, 4)
	require.NoError(t, err)
	vol.Set(5000, 2, 1, 3)

	dir := t.TempDir()
	require.NoError(t, SaveSliceSequence(vol, "z", dir))

	files, err := ListStack(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "slice_z_003.png", filepath.Base(files[3]))

	img, err := Load(files[3])
	require.NoError(t, err)
	assert.Equal(t, uint16(5000), GrayRaster16(img).At(2, 1))
}

func TestNormalized(t *testing.T) {
	r, err := raster.FromSlice([]uint8{0, 51, 255}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.2, 1}, Normalized(r, 255))

	mask, err := raster.FromSlice([]bool{true, false}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, NormalizedBinary(mask))
}
