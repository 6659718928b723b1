package basis

import (
	"math"
	"testing"

	"github.com/plasmakit/torfield/internal/analytic"
	"github.com/plasmakit/torfield/internal/field"
	"github.com/plasmakit/torfield/internal/vec"
)

func TestTriadOrthonormal(t *testing.T) {
	d := &field.Descriptor{
		Model: field.ModelFullOrbit,
		Eq:    analytic.Equilibrium{B0: 2.0, R0: 1.7, A: 0.5, Q0: 1.0, Lambda: 1.0, Sign: 1},
	}

	p1 := []float64{0.1, 0.3, 0.45}
	p2 := []float64{0, 1.2, 2.8}
	p3 := []float64{0, 0.7, 5.1}

	triads, confined, err := Build(d, p1, p2, p3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i, tr := range triads {
		if !confined[i] {
			continue
		}
		vecs := []vec.V3{tr.B1, tr.B2, tr.B3}
		for a := 0; a < 3; a++ {
			if n := vecs[a].Norm(); math.Abs(n-1) > 1e-12 {
				t.Errorf("triad %d basis %d: norm %v", i, a, n)
			}
			for b := a + 1; b < 3; b++ {
				if dot := vecs[a].Dot(vecs[b]); math.Abs(dot) > 1e-12 {
					t.Errorf("triad %d: basis %d.%d = %v, expected 0", i, a, b, dot)
				}
			}
		}
	}
}

func TestTriadAlignedWithField(t *testing.T) {
	d := &field.Descriptor{
		Model: field.ModelUniform,
		Eq:    analytic.Equilibrium{B0: 3.0},
	}

	triads, _, err := Build(d, []float64{0}, []float64{0}, []float64{0})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := vec.V3{1, 0, 0}
	if triads[0].B1 != want {
		t.Errorf("B1 = %v, expected %v for a uniform x field", triads[0].B1, want)
	}
}
