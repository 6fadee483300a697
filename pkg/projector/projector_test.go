package projector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopEngine struct{}

func (nopEngine) ProjectSingle(ctx context.Context, angle float64, vol VolumeSpec, det DetectorSpec) ([]float64, error) {
	return make([]float64, det.NumPixels()), nil
}

func (nopEngine) ProjectBatch(ctx context.Context, angles []float64, vol VolumeSpec, det DetectorSpec) ([]float64, error) {
	return make([]float64, det.NumPixels()*len(angles)), nil
}

func (nopEngine) BackprojectSingle(ctx context.Context, angle float64, proj ProjectionSpec, vol VolumeSpec) ([]float64, error) {
	return make([]float64, vol.NumElements()), nil
}

func (nopEngine) BackprojectBatch(ctx context.Context, angles []float64, proj ProjectionSpec, vol VolumeSpec) ([]float64, error) {
	return make([]float64, vol.NumElements()), nil
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("cpu")
	require.NoError(t, err)
	require.Equal(t, CPU, b)

	b, err = ParseBackend("gpu")
	require.NoError(t, err)
	require.Equal(t, GPU, b)

	for _, name := range []string{"", "astra", "astra_cuda", "CUDA", "Gpu"} {
		_, err := ParseBackend(name)
		require.Error(t, err, "backend %q", name)
		var unsupported *UnsupportedBackendError
		require.ErrorAs(t, err, &unsupported)
		require.Equal(t, name, unsupported.Name)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	require.Error(t, Register(CPU, nil))
	require.Error(t, Register(Backend("tpu"), nopEngine{}))
}

func TestLookup(t *testing.T) {
	_, err := Lookup(Backend("tpu"))
	var unsupported *UnsupportedBackendError
	require.ErrorAs(t, err, &unsupported)

	_, err = Lookup(CPU)
	var notImpl *NotImplementedError
	require.ErrorAs(t, err, &notImpl)

	require.NoError(t, Register(CPU, nopEngine{}))
	eng, err := Lookup(CPU)
	require.NoError(t, err)
	require.NotNil(t, eng)
}

func TestErrorMessages(t *testing.T) {
	err := error(&UnsupportedBackendError{Name: "astra"})
	require.Contains(t, err.Error(), "astra")
	require.Contains(t, err.Error(), "cpu")

	err = &NotImplementedError{Op: "cpu 3d forward projection"}
	require.Contains(t, err.Error(), "cpu 3d forward projection")
	require.True(t, errors.As(err, new(*NotImplementedError)))
}
