package field

import (
	"sort"

	"github.com/plasmakit/torfield/internal/mesh"
)

// evalMesh2D interpolates the descriptor's axisymmetric sampled mesh
// bilinearly at each particle's (R, Z). Particles outside the grid, or
// touching a node the loader marked invalid, are flagged unconfined and
// their slots left untouched. The batch Hint slot caches the flattened
// cell index between calls.
func evalMesh2D(d *Descriptor, b *Batch, lo, hi int) {
	f := d.Mesh2D
	nz := len(f.Z)

	for p := lo; p < hi; p++ {
		if !b.Confined[p] {
			continue
		}
		r, z := b.P1[p], b.P3[p]

		i, j, ok := locateCell(f, r, z, &b.Hint[p])
		if !ok || !cellValid(f, i, j) {
			b.Confined[p] = false
			continue
		}

		// bilinear weights within cell (i,j)
		tr := (r - f.R[i]) / (f.R[i+1] - f.R[i])
		tz := (z - f.Z[j]) / (f.Z[j+1] - f.Z[j])
		k00 := i*nz + j
		k10 := (i+1)*nz + j
		k01 := i*nz + j + 1
		k11 := (i+1)*nz + j + 1
		lerp := func(c []float64) float64 {
			return (1-tr)*((1-tz)*c[k00]+tz*c[k01]) + tr*((1-tz)*c[k10]+tz*c[k11])
		}

		b.B1[p] = lerp(f.BR)
		b.B2[p] = lerp(f.BPhi)
		b.B3[p] = lerp(f.BZ)
		b.E1[p] = lerp(f.ER)
		b.E2[p] = lerp(f.EPhi)
		b.E3[p] = lerp(f.EZ)

		if b.GC() {
			b.Psi[p] = lerp(f.Psi)
			if a := d.Aux2D; a != nil {
				b.GradB1[p] = lerp(a.GradBR)
				b.GradB2[p] = lerp(a.GradBPhi)
				b.GradB3[p] = lerp(a.GradBZ)
				b.Curl1[p] = lerp(a.CurlR)
				b.Curl2[p] = lerp(a.CurlPhi)
				b.Curl3[p] = lerp(a.CurlZ)
			}
		}
	}
}

// locateCell finds the grid cell containing (r, z), reusing the hinted
// cell when it still brackets the point.
func locateCell(f *mesh.Field2D, r, z float64, hint *int) (int, int, bool) {
	nr, nz := len(f.R), len(f.Z)
	if r < f.R[0] || r > f.R[nr-1] || z < f.Z[0] || z > f.Z[nz-1] {
		return 0, 0, false
	}

	if h := *hint; h >= 0 && h < (nr-1)*(nz-1) {
		i, j := h/(nz-1), h%(nz-1)
		if f.R[i] <= r && r <= f.R[i+1] && f.Z[j] <= z && z <= f.Z[j+1] {
			return i, j, true
		}
	}

	i := sort.SearchFloat64s(f.R, r) - 1
	if i < 0 {
		i = 0
	}
	if i > nr-2 {
		i = nr - 2
	}
	j := sort.SearchFloat64s(f.Z, z) - 1
	if j < 0 {
		j = 0
	}
	if j > nz-2 {
		j = nz - 2
	}
	*hint = i*(nz-1) + j
	return i, j, true
}

// cellValid reports whether all four corner nodes of cell (i,j) passed
// the loader's validity mask.
func cellValid(f *mesh.Field2D, i, j int) bool {
	if f.Valid == nil {
		return true
	}
	nz := len(f.Z)
	return f.Valid[i*nz+j] && f.Valid[(i+1)*nz+j] &&
		f.Valid[i*nz+j+1] && f.Valid[(i+1)*nz+j+1]
}
