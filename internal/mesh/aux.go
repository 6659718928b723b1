package mesh

import "math"

// Finite-difference stencils: centered differences at interior nodes,
// one-sided at the two domain boundaries of each non-periodic direction,
// periodic wraparound in phi. The input sample must have been validated
// upstream (no NaNs, |B| > 0 everywhere the mesh is valid); no clamping
// or validation happens here and NaNs propagate deliberately.

func (f *Field2D) dR(src []float64, i, j int) float64 {
	nr := len(f.R)
	switch {
	case i == 0:
		return (src[f.idx(1, j)] - src[f.idx(0, j)]) / (f.R[1] - f.R[0])
	case i == nr-1:
		return (src[f.idx(nr-1, j)] - src[f.idx(nr-2, j)]) / (f.R[nr-1] - f.R[nr-2])
	default:
		return (src[f.idx(i+1, j)] - src[f.idx(i-1, j)]) / (f.R[i+1] - f.R[i-1])
	}
}

func (f *Field2D) dZ(src []float64, i, j int) float64 {
	nz := len(f.Z)
	switch {
	case j == 0:
		return (src[f.idx(i, 1)] - src[f.idx(i, 0)]) / (f.Z[1] - f.Z[0])
	case j == nz-1:
		return (src[f.idx(i, nz-1)] - src[f.idx(i, nz-2)]) / (f.Z[nz-1] - f.Z[nz-2])
	default:
		return (src[f.idx(i, j+1)] - src[f.idx(i, j-1)]) / (f.Z[j+1] - f.Z[j-1])
	}
}

// dRMetric computes (1/R) d(R f)/dR with the discrete form
// ((R+ f+ - R- f-)/(R+ - R-))/R(i), keeping the metric consistent with the
// grid rather than expanding the product rule.
func (f *Field2D) dRMetric(src []float64, i, j int) float64 {
	nr := len(f.R)
	var num, den float64
	switch {
	case i == 0:
		num = f.R[1]*src[f.idx(1, j)] - f.R[0]*src[f.idx(0, j)]
		den = f.R[1] - f.R[0]
	case i == nr-1:
		num = f.R[nr-1]*src[f.idx(nr-1, j)] - f.R[nr-2]*src[f.idx(nr-2, j)]
		den = f.R[nr-1] - f.R[nr-2]
	default:
		num = f.R[i+1]*src[f.idx(i+1, j)] - f.R[i-1]*src[f.idx(i-1, j)]
		den = f.R[i+1] - f.R[i-1]
	}
	return num / den / f.R[i]
}

// AuxFields computes grad|B| and curl of the field unit vector at every
// node of the axisymmetric sample. The phi component of the gradient
// vanishes by axisymmetry.
func (f *Field2D) AuxFields() (*Aux2D, error) {
	if err := f.checkShape(); err != nil {
		return nil, err
	}
	n := f.Nodes()

	bmag := make([]float64, n)
	ur := make([]float64, n)
	uphi := make([]float64, n)
	uz := make([]float64, n)
	for k := 0; k < n; k++ {
		bmag[k] = math.Sqrt(f.BR[k]*f.BR[k] + f.BPhi[k]*f.BPhi[k] + f.BZ[k]*f.BZ[k])
		ur[k] = f.BR[k] / bmag[k]
		uphi[k] = f.BPhi[k] / bmag[k]
		uz[k] = f.BZ[k] / bmag[k]
	}

	aux := &Aux2D{
		GradBR: make([]float64, n), GradBPhi: make([]float64, n), GradBZ: make([]float64, n),
		CurlR: make([]float64, n), CurlPhi: make([]float64, n), CurlZ: make([]float64, n),
	}

	forEachNode(len(f.R), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := range f.Z {
				k := f.idx(i, j)
				aux.GradBR[k] = f.dR(bmag, i, j)
				aux.GradBZ[k] = f.dZ(bmag, i, j)

				aux.CurlR[k] = -f.dZ(uphi, i, j)
				aux.CurlPhi[k] = f.dZ(ur, i, j) - f.dR(uz, i, j)
				aux.CurlZ[k] = f.dRMetric(uphi, i, j)
			}
		}
	})

	return aux, nil
}
