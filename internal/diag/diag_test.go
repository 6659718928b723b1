package diag

import (
	"math"
	"testing"

	"github.com/plasmakit/torfield/internal/scefield"
)

func snap(e, j []float64) scefield.Snapshot {
	return scefield.Snapshot{E: e, J: j}
}

func TestMeanE(t *testing.T) {
	m := &MeanE{}
	m.Observe(snap([]float64{1, -1, 2}, nil))
	m.Observe(snap([]float64{0, 0, 0}, nil))

	want := (4.0 / 3.0) / 2
	if math.Abs(m.Value()-want) > 1e-14 {
		t.Errorf("mean E = %v, expected %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset did not clear value")
	}
}

func TestPeakE(t *testing.T) {
	p := &PeakE{}
	p.Observe(snap([]float64{0.5, -3, 1}, nil))
	p.Observe(snap([]float64{2, 0, 0}, nil))
	if p.Value() != 3 {
		t.Errorf("peak = %v, expected 3", p.Value())
	}
}

func TestCurrentDrift(t *testing.T) {
	c := NewCurrentDrift([]float64{1, 1})
	c.Observe(snap(nil, []float64{2, 2})) // baseline total 4
	c.Observe(snap(nil, []float64{2, 3})) // total 5, drift 0.25
	c.Observe(snap(nil, []float64{2, 2})) // back to baseline, max kept

	if math.Abs(c.Value()-0.25) > 1e-14 {
		t.Errorf("drift = %v, expected 0.25", c.Value())
	}
}
