package filter

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"partomo/pkg/tomo"
)

func impulseSinogram(nu int) *tomo.Sinogram {
	s := tomo.NewSinogram(nu, 1, 1, [3]float64{1, 1, 1})
	s.Data[nu/2] = 1
	return s
}

// line extracts the single u-line of a (nu, 1, 1) sinogram.
func line(s *tomo.Sinogram) []float64 {
	out := make([]float64, s.NU)
	for u := range out {
		out[u] = s.At(u, 0, 0)
	}
	return out
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"ramlak", "shepplogan", "cosine"} {
		kind, err := ParseKind(name)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", name, err)
		}
		if string(kind) != name {
			t.Errorf("ParseKind(%q) = %q", name, kind)
		}
	}
	for _, name := range []string{"", "none", "hamming"} {
		if _, err := ParseKind(name); err == nil {
			t.Errorf("ParseKind(%q) succeeded, expected error", name)
		}
	}
}

func TestApplyPreservesShape(t *testing.T) {
	s := tomo.NewSinogram(16, 3, 4, [3]float64{0.5, 2, 1})
	for i := range s.Data {
		s.Data[i] = float64(i % 7)
	}
	before := append([]float64(nil), s.Data...)

	out, err := Apply(RamLak, s)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.NU != s.NU || out.NV != s.NV || out.NAngles != s.NAngles {
		t.Errorf("dims changed: (%d, %d, %d)", out.NU, out.NV, out.NAngles)
	}
	if out.Spacing != s.Spacing {
		t.Errorf("spacing changed: %v", out.Spacing)
	}
	for i := range before {
		if s.Data[i] != before[i] {
			t.Fatal("input sinogram modified")
		}
	}
}

func TestApplyZeroInput(t *testing.T) {
	s := tomo.NewSinogram(8, 2, 2, [3]float64{1, 1, 1})
	out, err := Apply(SheppLogan, s)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i, v := range out.Data {
		if v != 0 {
			t.Fatalf("out.Data[%d] = %g, want 0", i, v)
		}
	}
}

// TestImpulseResponse checks the defining shape of the ramp response: a
// positive peak at the impulse, negative immediate neighbors, and even
// symmetry about the peak.
func TestImpulseResponse(t *testing.T) {
	s := impulseSinogram(16)
	out, err := Apply(RamLak, s)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	resp := line(out)
	c := 8

	if resp[c] <= 0 {
		t.Errorf("peak response %g, want > 0", resp[c])
	}
	if resp[c-1] >= 0 || resp[c+1] >= 0 {
		t.Errorf("neighbor responses %g, %g, want < 0", resp[c-1], resp[c+1])
	}
	for d := 1; d <= 7; d++ {
		if math.Abs(resp[c-d]-resp[c+d]) > 1e-9 {
			t.Errorf("response asymmetric at distance %d: %g vs %g", d, resp[c-d], resp[c+d])
		}
	}
}

// TestApodizationReducesVariance verifies that the Shepp-Logan and cosine
// windows damp the response relative to the plain ramp.
func TestApodizationReducesVariance(t *testing.T) {
	ram, err := Apply(RamLak, impulseSinogram(32))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	shepp, err := Apply(SheppLogan, impulseSinogram(32))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	cos, err := Apply(Cosine, impulseSinogram(32))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	ramVar := stat.Variance(line(ram), nil)
	if v := stat.Variance(line(shepp), nil); v >= ramVar {
		t.Errorf("shepp-logan variance %g not below ramp variance %g", v, ramVar)
	}
	if v := stat.Variance(line(cos), nil); v >= ramVar {
		t.Errorf("cosine variance %g not below ramp variance %g", v, ramVar)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	s := tomo.NewSinogram(8, 1, 1, [3]float64{1, 1, 1})
	if _, err := Apply(Kind("hamming"), s); err == nil {
		t.Error("Apply with unknown kind succeeded, expected error")
	}
}
