// Package mesh implements structured (R,Z) and (R,phi,Z) field samples
// and the finite-difference generation of the guiding-center auxiliary
// fields (gradient of |B|, curl of the field unit vector) from them.
package mesh

import (
	"errors"
	"math"

	"github.com/plasmakit/torfield/internal/analytic"
)

// Domain errors for mesh operations.
var (
	// ErrMissingData indicates a required mesh quantity is absent from the
	// loaded sample. Callers treat this as fatal for required quantities.
	ErrMissingData = errors.New("mesh: required mesh data missing")

	// ErrBadShape indicates component arrays inconsistent with the grid.
	ErrBadShape = errors.New("mesh: component shape does not match grid")
)

// Field2D is an axisymmetric field sample on a rectangular (R,Z) grid.
// Components are stored row-major with index i*len(Z)+j for grid lines
// (R[i], Z[j]).
type Field2D struct {
	R, Z         []float64
	BR, BPhi, BZ []float64
	ER, EPhi, EZ []float64
	Psi          []float64
	Valid        []bool // per-node validity from the external loader; nil means all valid
}

// Field3D is a field sample on a rectangular (R,phi,Z) grid with periodic
// phi. Index is (i*len(Phi)+j)*len(Z)+k.
type Field3D struct {
	R, Phi, Z    []float64
	BR, BPhi, BZ []float64
}

// Aux2D holds the derived auxiliary fields on the same (R,Z) grid.
type Aux2D struct {
	GradBR, GradBPhi, GradBZ []float64
	CurlR, CurlPhi, CurlZ    []float64
}

// Aux3D holds the derived auxiliary fields on the same (R,phi,Z) grid.
type Aux3D struct {
	GradBR, GradBPhi, GradBZ []float64
	CurlR, CurlPhi, CurlZ    []float64
}

func (f *Field2D) idx(i, j int) int { return i*len(f.Z) + j }

// Nodes returns the node count.
func (f *Field2D) Nodes() int { return len(f.R) * len(f.Z) }

func (f *Field2D) checkShape() error {
	n := f.Nodes()
	if len(f.BR) != n || len(f.BPhi) != n || len(f.BZ) != n {
		return ErrBadShape
	}
	return nil
}

// NewField2D allocates a zero-filled sample over the given grid lines.
func NewField2D(r, z []float64) *Field2D {
	n := len(r) * len(z)
	return &Field2D{
		R: r, Z: z,
		BR: make([]float64, n), BPhi: make([]float64, n), BZ: make([]float64, n),
		ER: make([]float64, n), EPhi: make([]float64, n), EZ: make([]float64, n),
		Psi: make([]float64, n),
	}
}

// UniformGrid returns n evenly spaced grid lines spanning [lo, hi].
func UniformGrid(lo, hi float64, n int) []float64 {
	g := make([]float64, n)
	d := (hi - lo) / float64(n-1)
	for i := range g {
		g[i] = lo + float64(i)*d
	}
	g[n-1] = hi
	return g
}

// SampleGC fills the sample from the analytical guiding-center model.
func (f *Field2D) SampleGC(eq analytic.Equilibrium) {
	for i, r := range f.R {
		for j, z := range f.Z {
			k := f.idx(i, j)
			f.BR[k], f.BPhi[k], f.BZ[k] = eq.GCField(r, z)
			f.Psi[k] = eq.PsiP(r, z)
			f.EPhi[k] = eq.GCElectric(r)
		}
	}
}

// MeanMagnitude returns the node-averaged magnitude of the named vector
// quantity over valid nodes, the diagnostic mean-field contract. Supported
// quantities are "B" and "E".
func (f *Field2D) MeanMagnitude(quantity string) (float64, error) {
	var c1, c2, c3 []float64
	switch quantity {
	case "B":
		c1, c2, c3 = f.BR, f.BPhi, f.BZ
	case "E":
		c1, c2, c3 = f.ER, f.EPhi, f.EZ
	default:
		return 0, errors.New("mesh: unrecognized field type " + quantity)
	}
	if len(c1) == 0 {
		return 0, ErrMissingData
	}

	sum, count := 0.0, 0
	for k := range c1 {
		if f.Valid != nil && !f.Valid[k] {
			continue
		}
		sum += math.Sqrt(c1[k]*c1[k] + c2[k]*c2[k] + c3[k]*c3[k])
		count++
	}
	if count == 0 {
		return 0, ErrMissingData
	}
	return sum / float64(count), nil
}
