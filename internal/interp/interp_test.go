package interp

import (
	"math"
	"testing"
)

func TestLinear1D(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 10, 20, 10}
	l := NewLinear1D(x, y)

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2.5, 15},
		{-1, 0}, // clamp below
		{4, 10}, // clamp above
	}
	for _, tt := range tests {
		got, err := l.At(tt.in, nil)
		if err != nil {
			t.Fatalf("At(%v): %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-14 {
			t.Errorf("At(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestHintReuse(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 4, 9, 16}
	l := NewLinear1D(x, y)

	hint := 0
	for _, q := range []float64{1.1, 1.2, 1.9, 2.1, 2.2} {
		noHint, _ := l.At(q, nil)
		withHint, err := l.At(q, &hint)
		if err != nil {
			t.Fatalf("At(%v): %v", q, err)
		}
		if noHint != withHint {
			t.Errorf("hint changed result at %v: %v vs %v", q, withHint, noHint)
		}
	}
}

func TestReinitReplacesTable(t *testing.T) {
	l := NewLinear1D([]float64{0, 1}, []float64{0, 1})
	if err := l.Reinit([]float64{0, 1, 2}, []float64{5, 5, 5}); err != nil {
		t.Fatal(err)
	}
	got, _ := l.At(1.5, nil)
	if got != 5 {
		t.Errorf("after reinit At(1.5) = %v, expected 5", got)
	}

	if err := l.Reinit([]float64{0}, []float64{0}); err == nil {
		t.Errorf("reinit with a single point must fail")
	}
}
