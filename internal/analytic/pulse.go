package analytic

import "math"

// Pulse is the optional Gaussian-in-time toroidal electric-field pulse
// with an error-function rise. Its contribution is additive to the
// equilibrium E_phi, never a replacement.
type Pulse struct {
	Amplitude float64 // peak field E_dyn [V/m]
	Center    float64 // pulse center time t_pulse [s]
	Width     float64 // Gaussian width w [s]
	TStart    float64 // simulation start time [s]
	Dt        float64 // orbit timestep used to advance the pulse clock [s]
	Enabled   bool
}

// At returns the additive E_phi contribution at major radius r after the
// given number of elapsed orbit steps. Disabled pulses contribute nothing.
func (p Pulse) At(r, r0 float64, step int) float64 {
	if !p.Enabled || p.Amplitude == 0 {
		return 0
	}
	t := p.TStart + float64(step)*p.Dt
	dt := t - p.Center
	gauss := math.Exp(-dt * dt / (2 * p.Width * p.Width))
	rise := (1 + math.Erf(-10*dt/(math.Sqrt2*p.Width))) / 2
	return r0 * p.Amplitude / r * gauss * rise
}
