package tomo

// Sinogram is an angle-indexed stack of 2D projections. Data is indexed
// (u, v, angle) with the angle index fastest: Data[(u*NV+v)*NAngles+k].
// Spacing holds the physical detector pixel sizes along u and v and a unit
// step along the angle axis.
type Sinogram struct {
	Data            []float64
	NU, NV, NAngles int
	Spacing         [3]float64
}

// NewSinogram allocates a zero-filled sinogram.
func NewSinogram(nu, nv, nAngles int, spacing [3]float64) *Sinogram {
	return &Sinogram{
		Data:    make([]float64, nu*nv*nAngles),
		NU:      nu,
		NV:      nv,
		NAngles: nAngles,
		Spacing: spacing,
	}
}

// Dims returns the extent along (u, v, angle).
func (s *Sinogram) Dims() (int, int, int) { return s.NU, s.NV, s.NAngles }

// At returns the sample at detector pixel (u, v) and angle index k.
func (s *Sinogram) At(u, v, k int) float64 {
	return s.Data[(u*s.NV+v)*s.NAngles+k]
}

// AngleBlock copies the projection at angle index k into a fresh (u, v)
// block with v fastest, the layout single-angle engine calls use.
func (s *Sinogram) AngleBlock(k int) []float64 {
	block := make([]float64, s.NU*s.NV)
	for i := range block {
		block[i] = s.Data[i*s.NAngles+k]
	}
	return block
}

// VolumeField is a dense scalar field over a 3D grid. Data is indexed
// (x, y, z) with x fastest: Data[(z*NY+y)*NX+x]. Spacing holds the physical
// voxel size along each axis.
type VolumeField struct {
	Data       []float64
	NX, NY, NZ int
	Spacing    [3]float64
}

// NewVolumeField allocates a zero-filled volume field.
func NewVolumeField(nx, ny, nz int, spacing [3]float64) *VolumeField {
	return &VolumeField{
		Data:    make([]float64, nx*ny*nz),
		NX:      nx,
		NY:      ny,
		NZ:      nz,
		Spacing: spacing,
	}
}

// Dims returns the extent along (x, y, z).
func (f *VolumeField) Dims() (int, int, int) { return f.NX, f.NY, f.NZ }

// At returns the voxel value at (x, y, z).
func (f *VolumeField) At(x, y, z int) float64 {
	return f.Data[(z*f.NY+y)*f.NX+x]
}
