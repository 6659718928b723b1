package mesh

import (
	"math"
	"runtime"
	"sync"
)

// forEachNode maps fn over disjoint slabs of the leading grid dimension.
func forEachNode(n int, fn func(lo, hi int)) {
	workers := runtime.NumCPU()
	if n < 4*workers {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func (f *Field3D) idx(i, j, k int) int {
	return (i*len(f.Phi)+j)*len(f.Z) + k
}

// Nodes returns the node count.
func (f *Field3D) Nodes() int { return len(f.R) * len(f.Phi) * len(f.Z) }

func (f *Field3D) dR(src []float64, i, j, k int) float64 {
	nr := len(f.R)
	switch {
	case i == 0:
		return (src[f.idx(1, j, k)] - src[f.idx(0, j, k)]) / (f.R[1] - f.R[0])
	case i == nr-1:
		return (src[f.idx(nr-1, j, k)] - src[f.idx(nr-2, j, k)]) / (f.R[nr-1] - f.R[nr-2])
	default:
		return (src[f.idx(i+1, j, k)] - src[f.idx(i-1, j, k)]) / (f.R[i+1] - f.R[i-1])
	}
}

func (f *Field3D) dZ(src []float64, i, j, k int) float64 {
	nz := len(f.Z)
	switch {
	case k == 0:
		return (src[f.idx(i, j, 1)] - src[f.idx(i, j, 0)]) / (f.Z[1] - f.Z[0])
	case k == nz-1:
		return (src[f.idx(i, j, nz-1)] - src[f.idx(i, j, nz-2)]) / (f.Z[nz-1] - f.Z[nz-2])
	default:
		return (src[f.idx(i, j, k+1)] - src[f.idx(i, j, k-1)]) / (f.Z[k+1] - f.Z[k-1])
	}
}

// dPhi wraps around in the periodic toroidal direction: the first plane
// differences against the last and vice versa. The phi grid is uniform.
func (f *Field3D) dPhi(src []float64, i, j, k int) float64 {
	np := len(f.Phi)
	dphi := f.Phi[1] - f.Phi[0]
	jp, jm := j+1, j-1
	if jp == np {
		jp = 0
	}
	if jm < 0 {
		jm = np - 1
	}
	return (src[f.idx(i, jp, k)] - src[f.idx(i, jm, k)]) / (2 * dphi)
}

func (f *Field3D) dRMetric(src []float64, i, j, k int) float64 {
	nr := len(f.R)
	var num, den float64
	switch {
	case i == 0:
		num = f.R[1]*src[f.idx(1, j, k)] - f.R[0]*src[f.idx(0, j, k)]
		den = f.R[1] - f.R[0]
	case i == nr-1:
		num = f.R[nr-1]*src[f.idx(nr-1, j, k)] - f.R[nr-2]*src[f.idx(nr-2, j, k)]
		den = f.R[nr-1] - f.R[nr-2]
	default:
		num = f.R[i+1]*src[f.idx(i+1, j, k)] - f.R[i-1]*src[f.idx(i-1, j, k)]
		den = f.R[i+1] - f.R[i-1]
	}
	return num / den / f.R[i]
}

// AuxFields computes grad|B| and curl of the field unit vector at every
// node of the 3-D sample, with periodic wraparound in phi. The gradient's
// phi component carries the cylindrical 1/R factor.
func (f *Field3D) AuxFields() (*Aux3D, error) {
	n := f.Nodes()
	if len(f.BR) != n || len(f.BPhi) != n || len(f.BZ) != n {
		return nil, ErrBadShape
	}

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

	aux := &Aux3D{
		GradBR: make([]float64, n), GradBPhi: make([]float64, n), GradBZ: make([]float64, n),
		CurlR: make([]float64, n), CurlPhi: make([]float64, n), CurlZ: make([]float64, n),
	}

	forEachNode(len(f.R), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := range f.Phi {
				for k := range f.Z {
					m := f.idx(i, j, k)
					aux.GradBR[m] = f.dR(bmag, i, j, k)
					aux.GradBPhi[m] = f.dPhi(bmag, i, j, k) / f.R[i]
					aux.GradBZ[m] = f.dZ(bmag, i, j, k)

					aux.CurlR[m] = f.dPhi(uz, i, j, k)/f.R[i] - f.dZ(uphi, i, j, k)
					aux.CurlPhi[m] = f.dZ(ur, i, j, k) - f.dR(uz, i, j, k)
					aux.CurlZ[m] = f.dRMetric(uphi, i, j, k) - f.dPhi(ur, i, j, k)/f.R[i]
				}
			}
		}
	})

	return aux, nil
}
