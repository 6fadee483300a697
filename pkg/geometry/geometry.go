// Package geometry provides the grid and acquisition descriptors for
// parallel-beam X-ray tomography. A Grid pairs a lattice shape with the
// physical size of one cell along each axis; a Parallel3D ties a 3D sample
// grid, a 2D flat detector grid and a sequence of rotation angles about the
// z axis into one acquisition description.
package geometry

import (
	"fmt"
	"math"
)

// ValidationError reports a malformed grid or angle input, such as a grid
// with the wrong dimensionality or a non-positive spacing entry.
type ValidationError struct {
	// Name identifies the offending parameter.
	Name string

	// Got is the rejected value.
	Got interface{}

	// Want describes the accepted values.
	Want string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("geometry: %s = %v, want %s", e.Name, e.Got, e.Want)
}

// Grid describes a regular lattice: the number of cells along each axis and
// the physical size of one cell along that axis. Grids are 2- or
// 3-dimensional.
type Grid struct {
	// Shape is the number of cells along each axis.
	Shape []int

	// Spacing is the physical cell size along each axis, in the same order
	// as Shape.
	Spacing []float64
}

// NewGrid validates shape and spacing and returns the grid. The dimension
// must be 2 or 3, every shape entry must be positive and every spacing entry
// must be a positive finite number.
func NewGrid(shape []int, spacing []float64) (Grid, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return Grid{}, &ValidationError{Name: "grid dimension", Got: len(shape), Want: "2 or 3"}
	}
	if len(spacing) != len(shape) {
		return Grid{}, &ValidationError{Name: "len(spacing)", Got: len(spacing), Want: fmt.Sprintf("%d", len(shape))}
	}
	for i, n := range shape {
		if n <= 0 {
			return Grid{}, &ValidationError{Name: fmt.Sprintf("shape[%d]", i), Got: n, Want: "> 0"}
		}
	}
	for i, s := range spacing {
		if !(s > 0) || math.IsInf(s, 1) {
			return Grid{}, &ValidationError{Name: fmt.Sprintf("spacing[%d]", i), Got: s, Want: "positive and finite"}
		}
	}
	g := Grid{
		Shape:   append([]int(nil), shape...),
		Spacing: append([]float64(nil), spacing...),
	}
	return g, nil
}

// Dim returns the number of axes of the grid.
func (g Grid) Dim() int { return len(g.Shape) }

// NumElements returns the total number of lattice cells.
func (g Grid) NumElements() int {
	n := 1
	for _, s := range g.Shape {
		n *= s
	}
	return n
}

// AngleSequence is an ordered sequence of rotation angles in radians about
// the z axis of the sample grid.
type AngleSequence []float64

// UniformAngles returns n angles evenly spaced over the half-open interval
// [start, end). n may be zero, which yields an empty sequence.
func UniformAngles(n int, start, end float64) (AngleSequence, error) {
	if n < 0 {
		return nil, &ValidationError{Name: "numAngles", Got: n, Want: ">= 0"}
	}
	angles := make(AngleSequence, n)
	if n == 0 {
		return angles, nil
	}
	step := (end - start) / float64(n)
	for i := range angles {
		angles[i] = start + float64(i)*step
	}
	return angles, nil
}

// Parallel3D describes a parallel-beam acquisition: a 3D sample volume
// rotating about its z axis in front of a fixed 2D flat detector.
type Parallel3D struct {
	// Volume is the 3D sample grid. Spacing order is (x, y, z); the
	// rotation axis is z.
	Volume Grid

	// Detector is the 2D detector grid. Spacing order is (u, v) where u is
	// the in-plane detector axis and v is parallel to the rotation axis.
	Detector Grid

	// Angles holds the rotation angles of the acquisition.
	Angles AngleSequence
}

// NewParallel3D validates the grid dimensions and returns the geometry.
// The sample grid must be 3D and the detector grid 2D.
func NewParallel3D(volume, detector Grid, angles AngleSequence) (Parallel3D, error) {
	if volume.Dim() != 3 {
		return Parallel3D{}, &ValidationError{Name: "volume.Dim", Got: volume.Dim(), Want: "3"}
	}
	if detector.Dim() != 2 {
		return Parallel3D{}, &ValidationError{Name: "detector.Dim", Got: detector.Dim(), Want: "2"}
	}
	return Parallel3D{Volume: volume, Detector: detector, Angles: angles}, nil
}
