// Package basis constructs orthonormal field-aligned bases for
// coordinate-system initialization.
package basis

import (
	"github.com/plasmakit/torfield/internal/field"
	"github.com/plasmakit/torfield/internal/vec"
)

// Triad is the orthonormal basis at one position: B1 parallel to the
// local field unit vector, B2 = B1 x z normalized, B3 = B1 x B2
// normalized.
type Triad struct {
	B1, B2, B3 vec.V3
}

// Build evaluates the field dispatch on a synthetic batch at the given
// positions and assembles a triad per position. The triad is guaranteed
// orthonormal only where Confined came back true; unconfined entries are
// undefined and must be gated on the returned flags.
func Build(d *field.Descriptor, p1, p2, p3 []float64) ([]Triad, []bool, error) {
	n := len(p1)
	b := field.NewBatch(n, d.Model.GuidingCenter())
	copy(b.P1, p1)
	copy(b.P2, p2)
	copy(b.P3, p3)

	if err := field.Evaluate(d, b); err != nil {
		return nil, nil, err
	}

	zhat := vec.V3{0, 0, 1}
	triads := make([]Triad, n)
	confined := make([]bool, n)
	copy(confined, b.Confined)

	for i := 0; i < n; i++ {
		if !confined[i] {
			continue
		}
		b1 := vec.V3{b.B1[i], b.B2[i], b.B3[i]}.Unit()
		b2 := b1.Cross(zhat).Unit()
		b3 := b1.Cross(b2).Unit()
		triads[i] = Triad{B1: b1, B2: b2, B3: b3}
	}
	return triads, confined, nil
}
