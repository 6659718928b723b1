package coords

import (
	"math"
	"testing"
)

func TestCylCartRoundTrip(t *testing.T) {
	tests := []struct {
		r, phi, z float64
	}{
		{1.7, 0, 0},
		{2.1, 1.3, 0.4},
		{1.2, -2.8, -0.3},
	}
	for _, tt := range tests {
		x, y, z := CylToCart(tt.r, tt.phi, tt.z)
		r, phi, zc := CartToCyl(x, y, z)
		if math.Abs(r-tt.r) > 1e-13 || math.Abs(phi-tt.phi) > 1e-13 || math.Abs(zc-tt.z) > 1e-13 {
			t.Errorf("round trip (%v,%v,%v) -> (%v,%v,%v)", tt.r, tt.phi, tt.z, r, phi, zc)
		}
	}
}

func TestTorCylRoundTrip(t *testing.T) {
	const r0 = 1.7
	rm, theta, zeta := 0.35, 0.9, 2.2

	r, phi, z := TorToCyl(rm, theta, zeta, r0)
	rm2, theta2, zeta2 := CylToTor(r, phi, z, r0)
	if math.Abs(rm2-rm) > 1e-13 || math.Abs(theta2-theta) > 1e-13 || zeta2 != zeta {
		t.Errorf("round trip (%v,%v,%v) -> (%v,%v,%v)", rm, theta, zeta, rm2, theta2, zeta2)
	}
}

func TestConfined(t *testing.T) {
	if !Confined(0.49, 0.5) || Confined(0.51, 0.5) {
		t.Errorf("confinement boundary check wrong")
	}

	r := []float64{1.7, 2.3}
	z := []float64{0.1, 0}
	flags := make([]bool, 2)
	FlagBatch(r, z, 1.7, 0.5, flags)
	if !flags[0] || flags[1] {
		t.Errorf("flag batch: got %v", flags)
	}
}
