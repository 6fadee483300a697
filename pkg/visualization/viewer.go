// Package visualization exports 2D slices of dense 3D fields, sinograms and
// reconstructed volumes alike, as 16-bit grayscale images for inspection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

// Field is any dense 3D scalar field. Both tomo.Sinogram and
// tomo.VolumeField satisfy it.
type Field interface {
	// Dims returns the extent along the three axes.
	Dims() (int, int, int)

	// At returns the sample at the given indices.
	At(i, j, k int) float64
}

// Viewer extracts axis-aligned slices of a field and saves them as images.
type Viewer struct {
	field Field
}

// NewViewer creates a viewer over the given field.
func NewViewer(field Field) *Viewer {
	return &Viewer{field: field}
}

// ExtractSlice extracts the 2D slice at the given position along the named
// axis ("x", "y" or "z", addressing the first, second and third index) and
// renders it as a 16-bit grayscale image. Sample values are normalized so
// the slice minimum maps to black and the maximum to white; a constant
// slice renders black.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	ni, nj, nk := v.field.Dims()

	var w, h int
	var sample func(a, b int) float64

	switch axis {
	case "x", "X":
		if position < 0 || position >= ni {
			return nil, fmt.Errorf("position %d out of range [0, %d)", position, ni)
		}
		w, h = nj, nk
		sample = func(a, b int) float64 { return v.field.At(position, a, b) }
	case "y", "Y":
		if position < 0 || position >= nj {
			return nil, fmt.Errorf("position %d out of range [0, %d)", position, nj)
		}
		w, h = ni, nk
		sample = func(a, b int) float64 { return v.field.At(a, position, b) }
	case "z", "Z":
		if position < 0 || position >= nk {
			return nil, fmt.Errorf("position %d out of range [0, %d)", position, nk)
		}
		w, h = ni, nj
		sample = func(a, b int) float64 { return v.field.At(a, b, position) }
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for b := 0; b < h; b++ {
		for a := 0; a < w; a++ {
			val := sample(a, b)
			lo = math.Min(lo, val)
			hi = math.Max(hi, val)
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewGray16(image.Rect(0, 0, w, h))
	for b := 0; b < h; b++ {
		for a := 0; a < w; a++ {
			val := (sample(a, b) - lo) / span
			img.SetGray16(a, b, color.Gray16{Y: uint16(val * 65535)})
		}
	}
	return img, nil
}

// SaveSliceSequence extracts every slice along the named axis and saves the
// sequence as numbered PNG files in dir, creating it if needed.
func (v *Viewer) SaveSliceSequence(axis string, dir string) error {
	ni, nj, nk := v.field.Dims()
	var count int
	switch axis {
	case "x", "X":
		count = ni
	case "y", "Y":
		count = nj
	case "z", "Z":
		count = nk
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create slice directory: %w", err)
	}

	for pos := 0; pos < count; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, fmt.Sprintf("%03d.png", pos))
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create image file: %w", err)
		}
		if err := png.Encode(file, img); err != nil {
			file.Close()
			return fmt.Errorf("failed to encode image: %w", err)
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}
