// Package diag provides observers over SC-E solver snapshots, the
// diagnostics surfaced by the CLI after a run.
package diag

import (
	"math"

	"github.com/plasmakit/torfield/internal/scefield"
)

// Diagnostic accumulates a scalar over a sequence of solver snapshots.
type Diagnostic interface {
	Name() string
	Observe(s scefield.Snapshot)
	Value() float64
	Reset()
}

// MeanE tracks the run-averaged mean |E| over the grid.
type MeanE struct {
	sum     float64
	samples int
}

func (m *MeanE) Name() string { return "mean_E" }

func (m *MeanE) Observe(s scefield.Snapshot) {
	total := 0.0
	for _, e := range s.E {
		total += math.Abs(e)
	}
	m.sum += total / float64(len(s.E))
	m.samples++
}

func (m *MeanE) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanE) Reset() { m.sum, m.samples = 0, 0 }

// PeakE tracks the largest |E| seen on any cell.
type PeakE struct {
	peak float64
}

func (p *PeakE) Name() string { return "peak_E" }

func (p *PeakE) Observe(s scefield.Snapshot) {
	for _, e := range s.E {
		if a := math.Abs(e); a > p.peak {
			p.peak = a
		}
	}
}

func (p *PeakE) Value() float64 { return p.peak }
func (p *PeakE) Reset()         { p.peak = 0 }

// CurrentDrift tracks the relative deviation of the integrated current
// from its first observed value, a conservation check on the deposition
// and normalization chain.
type CurrentDrift struct {
	measure []float64
	first   float64
	drift   float64
	seen    bool
}

// NewCurrentDrift builds the drift diagnostic over the given cell
// measures (geometry of the solver grid).
func NewCurrentDrift(measure []float64) *CurrentDrift {
	return &CurrentDrift{measure: append([]float64(nil), measure...)}
}

func (c *CurrentDrift) Name() string { return "current_drift" }

func (c *CurrentDrift) Observe(s scefield.Snapshot) {
	total := 0.0
	for i, j := range s.J {
		if i < len(c.measure) {
			total += j * c.measure[i]
		}
	}
	if !c.seen {
		c.first = total
		c.seen = true
		return
	}
	if c.first != 0 {
		if d := math.Abs(total-c.first) / math.Abs(c.first); d > c.drift {
			c.drift = d
		}
	}
}

func (c *CurrentDrift) Value() float64 { return c.drift }
func (c *CurrentDrift) Reset()         { c.first, c.drift, c.seen = 0, 0, false }
