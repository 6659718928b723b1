// Package orbit is a minimal full-orbit Lorentz pusher used by the demo
// commands to evolve synthetic ensembles against the field dispatch. It
// is a stand-in for the external orbit integrator, not part of the core
// field contract.
package orbit

import (
	"github.com/plasmakit/torfield/internal/coords"
	"github.com/plasmakit/torfield/internal/field"
	"github.com/plasmakit/torfield/internal/vec"
)

// Pusher advances Cartesian particle states with an RK4 step of the
// Lorentz force. Scratch buffers are reused across steps.
type Pusher struct {
	QOverM float64

	k1, k2, k3, k4 []vec.V3
	scratch        []vec.V3
	probe          *field.Batch
}

// State is one particle's Cartesian position and velocity.
type State struct {
	Pos, Vel vec.V3
}

// NewPusher builds a pusher with the given charge-to-mass ratio.
func NewPusher(qOverM float64) *Pusher {
	return &Pusher{QOverM: qOverM}
}

func (p *Pusher) ensureScratch(n int) {
	if len(p.k1) != 2*n {
		p.k1 = make([]vec.V3, 2*n)
		p.k2 = make([]vec.V3, 2*n)
		p.k3 = make([]vec.V3, 2*n)
		p.k4 = make([]vec.V3, 2*n)
		p.scratch = make([]vec.V3, 2*n)
		p.probe = field.NewBatch(n, false)
	}
}

// derive evaluates d(pos)/dt = vel and d(vel)/dt = q/m (E + v x B) at the
// provided states, writing into out (positions first, then velocities).
func (p *Pusher) derive(d *field.Descriptor, states []vec.V3, out []vec.V3) error {
	n := len(states) / 2
	for i := 0; i < n; i++ {
		x, y, z := states[i][0], states[i][1], states[i][2]
		if d.Model == field.ModelFullOrbit {
			// The analytical toroidal model expects (r, theta, zeta).
			r, phi, zc := coords.CartToCyl(x, y, z)
			p.probe.P1[i], p.probe.P2[i], p.probe.P3[i] = coords.CylToTor(r, phi, zc, d.Eq.R0)
		} else {
			p.probe.P1[i], p.probe.P2[i], p.probe.P3[i] = x, y, z
		}
		p.probe.E1[i], p.probe.E2[i], p.probe.E3[i] = 0, 0, 0
	}
	if err := field.Evaluate(d, p.probe); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v := states[n+i]
		b := vec.V3{p.probe.B1[i], p.probe.B2[i], p.probe.B3[i]}
		e := vec.V3{p.probe.E1[i], p.probe.E2[i], p.probe.E3[i]}
		out[i] = v
		out[n+i] = e.Add(v.Cross(b)).Scale(p.QOverM)
	}
	return nil
}

// Step advances all states by dt. The descriptor's model determines the
// coordinate convention of the probe positions; the pusher assumes a
// Cartesian-compatible model (full-orbit analytical or uniform).
func (p *Pusher) Step(d *field.Descriptor, states []State, dt float64) error {
	n := len(states)
	p.ensureScratch(n)

	cur := p.scratch
	for i, s := range states {
		cur[i] = s.Pos
		cur[n+i] = s.Vel
	}
	base := append([]vec.V3(nil), cur...)

	if err := p.derive(d, cur, p.k1); err != nil {
		return err
	}
	for i := range cur {
		cur[i] = base[i].Add(p.k1[i].Scale(dt / 2))
	}
	if err := p.derive(d, cur, p.k2); err != nil {
		return err
	}
	for i := range cur {
		cur[i] = base[i].Add(p.k2[i].Scale(dt / 2))
	}
	if err := p.derive(d, cur, p.k3); err != nil {
		return err
	}
	for i := range cur {
		cur[i] = base[i].Add(p.k3[i].Scale(dt))
	}
	if err := p.derive(d, cur, p.k4); err != nil {
		return err
	}

	for i := range states {
		pos := base[i].Add(p.k1[i].Add(p.k2[i].Scale(2)).Add(p.k3[i].Scale(2)).Add(p.k4[i]).Scale(dt / 6))
		vel := base[n+i].Add(p.k1[n+i].Add(p.k2[n+i].Scale(2)).Add(p.k3[n+i].Scale(2)).Add(p.k4[n+i]).Scale(dt / 6))
		states[i] = State{Pos: pos, Vel: vel}
	}
	return nil
}
