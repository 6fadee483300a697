// Package projector defines the boundary to the external projection engine.
//
// The engine owns ray computation and any native or device resources it
// needs per call; the rest of the module only prepares corrected geometry
// parameters for it and rescales its output. Engines register themselves for
// a backend, typically from an init function in a driver package, so the
// pipelines can be exercised against a fake with no accelerator hardware.
package projector

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Backend selects the compute device of a registered engine.
type Backend string

const (
	// CPU selects a host-side engine. 3D projection is not available on
	// this backend; pipelines reject the combination up front.
	CPU Backend = "cpu"

	// GPU selects a device-accelerated engine.
	GPU Backend = "gpu"
)

// UnsupportedBackendError reports a backend name outside the supported set.
type UnsupportedBackendError struct {
	Name string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("projector: unsupported backend %q, want %q or %q", e.Name, CPU, GPU)
}

// NotImplementedError reports a backend/operation combination that is
// recognized but not available.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("projector: %s is not implemented", e.Op)
}

// ParseBackend maps a configuration string onto a Backend. Anything other
// than "cpu" or "gpu" fails with an UnsupportedBackendError.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case CPU:
		return CPU, nil
	case GPU:
		return GPU, nil
	default:
		return "", &UnsupportedBackendError{Name: s}
	}
}

// VolumeSpec describes a dense sample volume in unit-voxel coordinates.
// Data is laid out with x fastest: Data[(z*NY+y)*NX+x].
type VolumeSpec struct {
	Data       []float64
	NX, NY, NZ int
}

// NumElements returns the expected length of Data.
func (v VolumeSpec) NumElements() int { return v.NX * v.NY * v.NZ }

// DetectorSpec describes a flat 2D detector. The pixel spacing is expressed
// in unit-voxel coordinates, already corrected for the tilt angle by the
// caller; u is the in-plane axis, v is parallel to the rotation axis.
type DetectorSpec struct {
	NU, NV             int
	SpacingU, SpacingV float64
}

// NumPixels returns the number of detector pixels.
func (d DetectorSpec) NumPixels() int { return d.NU * d.NV }

// ProjectionSpec describes projection data handed to backprojection. For a
// single-angle call Data holds one (u, v) block with v fastest; for a batch
// call it holds the full (u, v, angle) stack with the angle index fastest.
type ProjectionSpec struct {
	Data               []float64
	NU, NV             int
	SpacingU, SpacingV float64
}

// Engine is the capability interface of the external projection engine.
//
// Every call owns allocation, execution and release of its native resources;
// release must happen on every exit path, including failure. All calls are
// synchronous and honor ctx cancellation between kernel launches where the
// implementation permits it.
//
// Single-angle results are (u, v) blocks with v fastest. Batch projection
// results are (u, v, angle) stacks with the angle index fastest, matching
// the Sinogram layout. Backprojection results are volumes laid out as in
// VolumeSpec.
type Engine interface {
	// ProjectSingle computes the projection of vol onto det at one tilt
	// angle.
	ProjectSingle(ctx context.Context, angle float64, vol VolumeSpec, det DetectorSpec) ([]float64, error)

	// ProjectBatch computes projections for all angles in one call. All
	// angles share the same detector spacing.
	ProjectBatch(ctx context.Context, angles []float64, vol VolumeSpec, det DetectorSpec) ([]float64, error)

	// BackprojectSingle smears one projection back into a volume of the
	// given dimensions. vol.Data is ignored; only the shape is used.
	BackprojectSingle(ctx context.Context, angle float64, proj ProjectionSpec, vol VolumeSpec) ([]float64, error)

	// BackprojectBatch backprojects a whole stack in one call.
	BackprojectBatch(ctx context.Context, angles []float64, proj ProjectionSpec, vol VolumeSpec) ([]float64, error)
}

var (
	mu      sync.RWMutex
	engines = make(map[Backend]Engine)
)

// Register installs an engine for a backend, replacing any previous one.
// Driver packages call this from init:
//
//	func init() {
//	    projector.Register(projector.GPU, newCUDAEngine())
//	}
func Register(b Backend, e Engine) error {
	if b != CPU && b != GPU {
		return &UnsupportedBackendError{Name: string(b)}
	}
	if e == nil {
		return errors.New("projector: engine must not be nil")
	}
	mu.Lock()
	engines[b] = e
	mu.Unlock()
	return nil
}

// Lookup returns the engine registered for a backend. An unknown backend
// fails with UnsupportedBackendError; a known backend with no registered
// engine fails with NotImplementedError.
func Lookup(b Backend) (Engine, error) {
	if b != CPU && b != GPU {
		return nil, &UnsupportedBackendError{Name: string(b)}
	}
	mu.RLock()
	e := engines[b]
	mu.RUnlock()
	if e == nil {
		return nil, &NotImplementedError{Op: fmt.Sprintf("backend %q (no engine registered)", b)}
	}
	return e, nil
}
