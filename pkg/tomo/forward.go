// Package tomo orchestrates forward projection and backprojection of
// parallel-beam acquisitions through an external projector engine.
//
// The engine assumes unit voxel size on every axis. For isotropic in-plane
// spacing the whole batch is dispatched in a single call; anisotropic
// spacing breaks rotational invariance, so each angle is dispatched
// separately with corrected angle, detector spacing and amplitude weight
// from the scaling package.
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

// Forward projects a sample volume onto the detector for every angle of the
// acquisition and returns the assembled sinogram.
//
// vol holds the volume samples in VolumeSpec layout and must match the
// sample grid of geom. The whole batch aborts on the first failing angle;
// no partial sinogram is ever returned.
func Forward(ctx context.Context, geom geometry.Parallel3D, vol []float64, backend projector.Backend) (*Sinogram, error) {
	if err := validateGeometry(geom); err != nil {
		return nil, err
	}
	if len(vol) != geom.Volume.NumElements() {
		return nil, &geometry.ValidationError{
			Name: "len(vol)",
			Got:  len(vol),
			Want: fmt.Sprintf("%d", geom.Volume.NumElements()),
		}
	}
	if backend == projector.CPU {
		// Slicing the volume into 2D projections is not available; reject
		// the combination at the boundary instead of failing mid-dispatch.
		return nil, &projector.NotImplementedError{Op: "cpu 3d forward projection"}
	}
	eng, err := projector.Lookup(backend)
	if err != nil {
		return nil, err
	}

	sx, sy, sz := geom.Volume.Spacing[0], geom.Volume.Spacing[1], geom.Volume.Spacing[2]
	nu, nv := geom.Detector.Shape[0], geom.Detector.Shape[1]
	pu, pv := geom.Detector.Spacing[0], geom.Detector.Spacing[1]
	n := len(geom.Angles)

	sino := NewSinogram(nu, nv, n, [3]float64{pu, pv, 1})
	if n == 0 {
		return sino, nil
	}

	volSpec := projector.VolumeSpec{
		Data: vol,
		NX:   geom.Volume.Shape[0],
		NY:   geom.Volume.Shape[1],
		NZ:   geom.Volume.Shape[2],
	}

	if sx == sy {
		// Isotropic in-plane spacing: rotation leaves the voxel lattice
		// invariant, so one batch call with a global rescale suffices.
		det := projector.DetectorSpec{NU: nu, NV: nv, SpacingU: pu / sx, SpacingV: pv / sz}
		data, err := eng.ProjectBatch(ctx, geom.Angles, volSpec, det)
		if err != nil {
			return nil, fmt.Errorf("forward projection: %w", err)
		}
		if len(data) != len(sino.Data) {
			return nil, fmt.Errorf("forward projection: engine returned %d samples, want %d", len(data), len(sino.Data))
		}
		floats.Scale(sx, data)
		sino.Data = data
		return sino, nil
	}

	results, err := scaling.Factors(1/sx, 1/sy, geom.Angles)
	if err != nil {
		return nil, err
	}

	// Pixel sizes vary per angle, so each projection runs as its own engine
	// call. Every angle writes a disjoint slot of the output, so the buffer
	// needs no lock; any failure cancels the remaining angles.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, res := range results {
		k, res := k, res
		g.Go(func() error {
			det := projector.DetectorSpec{
				NU:       nu,
				NV:       nv,
				SpacingU: pu * res.PixelScale,
				SpacingV: pv / sz,
			}
			block, err := eng.ProjectSingle(gctx, res.Angle, volSpec, det)
			if err != nil {
				return fmt.Errorf("angle %d: %w", k, err)
			}
			if len(block) != nu*nv {
				return fmt.Errorf("angle %d: engine returned %d samples, want %d", k, len(block), nu*nv)
			}
			floats.Scale(res.ScaleFactor, block)
			for i, v := range block {
				sino.Data[i*n+k] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forward projection aborted: %w", err)
	}
	return sino, nil
}

func validateGeometry(geom geometry.Parallel3D) error {
	if geom.Volume.Dim() != 3 {
		return &geometry.ValidationError{Name: "volume.Dim", Got: geom.Volume.Dim(), Want: "3"}
	}
	if geom.Detector.Dim() != 2 {
		return &geometry.ValidationError{Name: "detector.Dim", Got: geom.Detector.Dim(), Want: "2"}
	}
	return nil
}
