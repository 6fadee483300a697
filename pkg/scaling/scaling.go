// Package scaling computes the per-angle geometry correction that makes an
// anisotropically sampled volume usable with a projector that assumes unit
// voxel size on every axis.
//
// Scaling the rotation plane by diag(a, b) maps the projection direction
// (cos t, sin t) to (a cos t, b sin t)/norm, so each tilt angle must be
// replaced by the angle of the scaled direction, the projected values must
// be reweighted by 1/norm, and the detector pixel size along the in-plane
// axis must be rescaled by the length of the scaled perpendicular.
//
// For forward projection a and b are the reciprocal in-plane voxel sizes;
// for backprojection they are the raw voxel sizes, which undoes the forward
// weighting.
package scaling

import (
	"fmt"
	"math"
)

// Result holds the corrected parameters for a single projection angle.
// Results are computed fresh on every call and consumed immediately by the
// invoking pipeline; they are never persisted.
type Result struct {
	// Angle is the corrected tilt angle in radians.
	Angle float64

	// ScaleFactor is the amplitude correction applied to the projector
	// output for this angle. Always positive.
	ScaleFactor float64

	// PixelScale is the factor applied to the in-plane detector pixel size
	// for this angle. Always positive.
	PixelScale float64
}

// DomainError reports a non-positive or non-finite scale factor.
type DomainError struct {
	Name  string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("scaling: scale factor %s = %g, want positive and finite", e.Name, e.Value)
}

// Trace, when non-nil, receives every correction as it is computed. It is
// an opt-in diagnostic hook and must not block; the default nil costs a
// single comparison per angle.
var Trace func(index int, theta float64, res Result)

// Correct computes the corrected angle and scale factors for one tilt angle
// theta under the plane scaling diag(a, b). Both a and b must be positive;
// Factors validates them once per sequence.
func Correct(a, b, theta float64) Result {
	sin, cos := math.Sincos(theta)

	// Quadrant of the unscaled direction. Zero components count as
	// nonnegative, so the classification is exhaustive.
	var quadrant int
	if cos >= 0 {
		if sin >= 0 {
			quadrant = 1
		} else {
			quadrant = 4
		}
	} else {
		if sin >= 0 {
			quadrant = 2
		} else {
			quadrant = 3
		}
	}

	sx := a * cos
	sy := b * sin
	norm := math.Hypot(sx, sy)
	ux := sx / norm
	uy := sy / norm

	// Recover the angle of the scaled direction from whichever component is
	// smaller in magnitude, keeping the inverse trig function away from its
	// derivative singularity. asin maps to [-pi/2,pi/2]: subtract from
	// +-pi in quadrants 2 and 3. acos maps to [0,pi], the upper half
	// plane: negate in quadrants 3 and 4 to mirror into the lower half.
	var angle float64
	if math.Abs(ux) > math.Abs(uy) {
		angle = math.Asin(uy)
		switch quadrant {
		case 2:
			angle = math.Pi - angle
		case 3:
			angle = -math.Pi - angle
		}
	} else {
		angle = math.Acos(ux)
		if quadrant == 3 || quadrant == 4 {
			angle = -angle
		}
	}

	return Result{
		Angle:       angle,
		ScaleFactor: 1 / norm,
		PixelScale:  math.Hypot(a*sin, b*cos),
	}
}

// Factors applies Correct to every angle of the sequence and returns one
// Result per input angle, in input order. An empty sequence yields an empty
// result and no error.
//
// Callers should special-case a == b: the transform is then the identity on
// angles with constant scale factors, and no per-angle dispatch is needed.
func Factors(a, b float64, angles []float64) ([]Result, error) {
	if !(a > 0) || math.IsInf(a, 1) {
		return nil, &DomainError{Name: "a", Value: a}
	}
	if !(b > 0) || math.IsInf(b, 1) {
		return nil, &DomainError{Name: "b", Value: b}
	}

	results := make([]Result, len(angles))
	for i, theta := range angles {
		results[i] = Correct(a, b, theta)
		if Trace != nil {
			Trace(i, theta, results[i])
		}
	}
	return results, nil
}
