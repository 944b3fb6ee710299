// Package imageio moves rasters in and out of image files. It is the
// command-line tool's image collaborator; the morphology packages never
// touch files.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"

	"graymorph/pkg/raster"
)

var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// IsSupported reports whether path has an extension Load understands.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load decodes a PNG, JPEG, GIF or TIFF file.
func Load(path string) (image.Image, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(file)
	default:
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img by the extension of path: PNG, JPEG (quality 90) or
// TIFF. Missing parent directories are created.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("unsupported image format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// ListStack returns the supported image files of dir ordered by the number
// embedded in their names, so slice_2 sorts before slice_10.
func ListStack(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && IsSupported(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return extractNumber(files[i]) < extractNumber(files[j])
	})
	return files, nil
}

// extractNumber joins the digits of a file's base name; names without
// digits sort first.
func extractNumber(path string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(path) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// LoadStack reads every slice of dir into a 3D 16-bit raster with extents
// (width, height, slices). All slices must share the first one's size.
func LoadStack(dir string) (*raster.Raster[uint16], error) {
	files, err := ListStack(dir)
	if err != nil {
		return nil, err
	}

	var vol *raster.Raster[uint16]
	var plane int
	for z, path := range files {
		img, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load slice %s: %w", path, err)
		}
		slice := GrayRaster16(img)
		if vol == nil {
			vol, err = raster.New[uint16](slice.Extent(0), slice.Extent(1), len(files))
			if err != nil {
				return nil, err
			}
			plane = slice.Len()
		}
		if slice.Extent(0) != vol.Extent(0) || slice.Extent(1) != vol.Extent(1) {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				path, slice.Extent(0), slice.Extent(1), vol.Extent(0), vol.Extent(1))
		}
		copy(vol.Data()[z*plane:(z+1)*plane], slice.Data())
	}
	return vol, nil
}

// SaveSliceSequence writes every plane of vol along axis into dir as
// 16-bit PNG files named slice_<axis>_<index>.png.
func SaveSliceSequence(vol *raster.Raster[uint16], axis string, dir string) error {
	a, err := axisIndex(axis)
	if err != nil {
		return err
	}
	if vol.Dims() != 3 {
		return fmt.Errorf("slicing needs a 3D raster, got %d dimensions", vol.Dims())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < vol.Extent(a); pos++ {
		plane, err := ExtractSlice(vol, axis, pos)
		if err != nil {
			return err
		}
		img, err := ToImage16(plane)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("slice_%s_%03d.png", strings.ToLower(axis), pos))
		if err := Save(name, img); err != nil {
			return err
		}
	}
	return nil
}
