// Package filter applies frequency-domain ramp filters to sinograms, the
// preprocessing step that turns plain backprojection into filtered
// backprojection. Each detector row is filtered along the in-plane axis u;
// the v and angle axes are untouched.
package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"partomo/pkg/tomo"
)

// Kind selects the apodization window applied on top of the ramp.
type Kind string

const (
	// RamLak is the plain band-limited ramp |f|.
	RamLak Kind = "ramlak"

	// SheppLogan apodizes the ramp with a sinc window, trading resolution
	// for noise suppression.
	SheppLogan Kind = "shepplogan"

	// Cosine apodizes the ramp with a cosine window.
	Cosine Kind = "cosine"
)

// ParseKind maps a configuration string onto a filter kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case RamLak, SheppLogan, Cosine:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("filter: unknown kind %q", s)
	}
}

// Apply filters every u-line of the sinogram with the selected ramp and
// returns a new sinogram with identical dimensions and spacing. The input
// is not modified.
func Apply(kind Kind, s *tomo.Sinogram) (*tomo.Sinogram, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if s.NU == 0 || s.NV == 0 || s.NAngles == 0 {
		out := tomo.NewSinogram(s.NU, s.NV, s.NAngles, s.Spacing)
		return out, nil
	}

	// Zero-pad to the next power of two with at least 2x headroom to keep
	// the circular convolution from wrapping across the detector edge.
	pad := 1
	for pad < 2*s.NU {
		pad <<= 1
	}
	window := rampWindow(kind, pad, s.Spacing[0])

	fft := fourier.NewFFT(pad)
	line := make([]float64, pad)
	coeff := make([]complex128, pad/2+1)

	out := tomo.NewSinogram(s.NU, s.NV, s.NAngles, s.Spacing)
	stride := s.NV * s.NAngles
	for v := 0; v < s.NV; v++ {
		for k := 0; k < s.NAngles; k++ {
			off := v*s.NAngles + k
			for u := 0; u < s.NU; u++ {
				line[u] = s.Data[u*stride+off]
			}
			for u := s.NU; u < pad; u++ {
				line[u] = 0
			}
			fft.Coefficients(coeff, line)
			for i := range coeff {
				coeff[i] *= complex(window[i], 0)
			}
			fft.Sequence(line, coeff)
			// The gonum transform pair is unnormalized.
			for u := 0; u < s.NU; u++ {
				out.Data[u*stride+off] = line[u] / float64(pad)
			}
		}
	}
	return out, nil
}

// rampWindow returns the real filter response over the pad/2+1 nonnegative
// frequency bins for a detector pixel size du.
func rampWindow(kind Kind, pad int, du float64) []float64 {
	nyquist := 1 / (2 * du)
	window := make([]float64, pad/2+1)
	for i := range window {
		f := float64(i) / (float64(pad) * du)
		h := 2 * f
		r := f / nyquist
		switch kind {
		case SheppLogan:
			h *= sinc(r / 2)
		case Cosine:
			h *= math.Cos(math.Pi * r / 2)
		}
		window[i] = h
	}
	return window
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}
