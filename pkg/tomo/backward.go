package tomo

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"partomo/pkg/geometry"
	"partomo/pkg/projector"
	"partomo/pkg/scaling"
)

// Backward smears a sinogram back into the sample volume and returns the
// reconstructed field. Its spacing equals the sample grid spacing.
//
// The correction mirrors Forward with un-inverted factors: the raw in-plane
// voxel sizes feed the angle/scale transform, so the per-angle amplitude
// weights undo the forward ones. The whole batch aborts on the first
// failing angle; no partial volume is ever returned.
func Backward(ctx context.Context, geom geometry.Parallel3D, sino *Sinogram, backend projector.Backend) (*VolumeField, error) {
	if err := validateGeometry(geom); err != nil {
		return nil, err
	}
	if sino.NU != geom.Detector.Shape[0] || sino.NV != geom.Detector.Shape[1] {
		return nil, &geometry.ValidationError{
			Name: "sinogram detector shape",
			Got:  fmt.Sprintf("(%d, %d)", sino.NU, sino.NV),
			Want: fmt.Sprintf("(%d, %d)", geom.Detector.Shape[0], geom.Detector.Shape[1]),
		}
	}
	if sino.NAngles != len(geom.Angles) {
		return nil, &geometry.ValidationError{
			Name: "sinogram angle count",
			Got:  sino.NAngles,
			Want: fmt.Sprintf("%d", len(geom.Angles)),
		}
	}
	if backend == projector.CPU {
		return nil, &projector.NotImplementedError{Op: "cpu 3d backprojection"}
	}
	eng, err := projector.Lookup(backend)
	if err != nil {
		return nil, err
	}

	sx, sy, sz := geom.Volume.Spacing[0], geom.Volume.Spacing[1], geom.Volume.Spacing[2]
	nx, ny, nz := geom.Volume.Shape[0], geom.Volume.Shape[1], geom.Volume.Shape[2]
	pu, pv := sino.Spacing[0], sino.Spacing[1]
	n := len(geom.Angles)

	out := NewVolumeField(nx, ny, nz, [3]float64{sx, sy, sz})
	if n == 0 {
		return out, nil
	}

	volSpec := projector.VolumeSpec{NX: nx, NY: ny, NZ: nz}

	if sx == sy {
		proj := projector.ProjectionSpec{
			Data:     sino.Data,
			NU:       sino.NU,
			NV:       sino.NV,
			SpacingU: pu * sx,
			SpacingV: pv * sz,
		}
		data, err := eng.BackprojectBatch(ctx, geom.Angles, proj, volSpec)
		if err != nil {
			return nil, fmt.Errorf("backprojection: %w", err)
		}
		if len(data) != len(out.Data) {
			return nil, fmt.Errorf("backprojection: engine returned %d samples, want %d", len(data), len(out.Data))
		}
		floats.Scale(1/sx, data)
		out.Data = data
		return out, nil
	}

	results, err := scaling.Factors(sx, sy, geom.Angles)
	if err != nil {
		return nil, err
	}

	// Each angle backprojects into its own buffer; the weighted sum is
	// assembled after all angles completed so no partial accumulation can
	// leak out on failure.
	parts := make([][]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, res := range results {
		k, res := k, res
		g.Go(func() error {
			proj := projector.ProjectionSpec{
				Data:     sino.AngleBlock(k),
				NU:       sino.NU,
				NV:       sino.NV,
				SpacingU: pu * res.PixelScale,
				SpacingV: pv * sz,
			}
			part, err := eng.BackprojectSingle(gctx, res.Angle, proj, volSpec)
			if err != nil {
				return fmt.Errorf("angle %d: %w", k, err)
			}
			if len(part) != len(out.Data) {
				return fmt.Errorf("angle %d: engine returned %d samples, want %d", k, len(part), len(out.Data))
			}
			parts[k] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backprojection aborted: %w", err)
	}
	for k, part := range parts {
		floats.AddScaled(out.Data, results[k].ScaleFactor, part)
	}
	return out, nil
}
