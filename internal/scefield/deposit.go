package scefield

import "math"

// Policy selects how particle current is deposited onto the grid. It is a
// configuration choice fixed for the run, not a per-call parameter.
type Policy int

const (
	// DepositNGP assigns each particle's full contribution to the nearest
	// grid cell.
	DepositNGP Policy = iota
	// DepositGaussian spreads every particle over all cells with Gaussian
	// weight in distance, normalized by the analytically integrated bin
	// weight.
	DepositGaussian
)

// Largest argument fed to exp(-x); beyond this the contribution
// underflows to zero anyway and the call is skipped.
const expCap = 708.0

// Particles is the deposition view of a particle ensemble: index-aligned
// coordinate, momentum, moment, local field magnitude, and the two gate
// flags. Confined and Valid act as a multiplicative mask: a particle
// failing either contributes exactly zero.
type Particles struct {
	X        []float64 // minor radius, or poloidal flux for flux grids
	PPar     []float64
	Mu       []float64
	Bmag     []float64
	Confined []bool
	Valid    []bool // collisional-validity flag
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.X) }

// slice returns the [lo,hi) sub-view used for per-worker chunking.
func (p *Particles) slice(lo, hi int) *Particles {
	return &Particles{
		X:        p.X[lo:hi],
		PPar:     p.PPar[lo:hi],
		Mu:       p.Mu[lo:hi],
		Bmag:     p.Bmag[lo:hi],
		Confined: p.Confined[lo:hi],
		Valid:    p.Valid[lo:hi],
	}
}

// vpll is the relativistically corrected parallel velocity weight
// p_par / gamma with gamma = sqrt(1 + p_par^2 + 2 mu |B| m).
func vpll(ppar, mu, bmag, mass float64) float64 {
	gamma := math.Sqrt(1 + ppar*ppar + 2*mu*bmag*mass)
	return ppar / gamma
}

// deposit accumulates the ensemble's weighted parallel velocity into buf,
// one value per grid cell, following the configured policy.
func (s *Solver) deposit(buf []float64, p *Particles) {
	switch s.cfg.Policy {
	case DepositGaussian:
		s.depositGaussian(buf, p)
	default:
		s.depositNGP(buf, p)
	}
}

func (s *Solver) depositNGP(buf []float64, p *Particles) {
	n := s.cfg.Cells
	dx := s.cfg.Dx

	for i := range p.X {
		w := 1.0
		if !p.Confined[i] || !p.Valid[i] {
			w = 0
		}

		x := p.X[i]
		var c int
		if s.cfg.Flux {
			if x < 0 {
				x = 0
			}
			c = int(math.Floor(x / dx))
		} else {
			c = int(math.Floor((x-0.5*dx)/dx)) + 1
		}
		if c < 0 || c >= n {
			continue
		}
		buf[c] += w * vpll(p.PPar[i], p.Mu[i], p.Bmag[i], s.cfg.Mass)
	}
}

func (s *Solver) depositGaussian(buf []float64, p *Particles) {
	sigma := s.cfg.GaussianWidth
	norm := s.cfg.Dx / (sigma * math.Sqrt(2*math.Pi))

	for i := range p.X {
		w := 1.0
		if !p.Confined[i] || !p.Valid[i] {
			w = 0
		}
		v := w * vpll(p.PPar[i], p.Mu[i], p.Bmag[i], s.cfg.Mass)

		for c := 0; c < s.cfg.Cells; c++ {
			d := p.X[i] - s.grid[c]
			arg := d * d / (2 * sigma * sigma)
			if arg > expCap {
				continue
			}
			buf[c] += v * math.Exp(-arg) * norm
		}
	}
}

// toDensity converts raw weighted-velocity sums to a density by dividing
// by each cell's geometric measure.
func (s *Solver) toDensity(j []float64) {
	for c := range j {
		j[c] /= s.measure[c]
	}
}

// buildGeometry fills the cell-center coordinates and geometric measures.
// Radial cells are annuli of area 2 pi dx^2 c centred at r = c dx, except
// the innermost cell which is a disk and carries the quarter-area
// correction. Flux cells use the cell width as their measure.
func (s *Solver) buildGeometry() {
	dx := s.cfg.Dx
	for c := 0; c < s.cfg.Cells; c++ {
		if s.cfg.Flux {
			s.grid[c] = (float64(c) + 0.5) * dx
			s.measure[c] = dx
		} else {
			s.grid[c] = float64(c) * dx
			if c == 0 {
				s.measure[c] = 0.25 * math.Pi * dx * dx
			} else {
				s.measure[c] = 2 * math.Pi * dx * dx * float64(c)
			}
		}
	}
}
