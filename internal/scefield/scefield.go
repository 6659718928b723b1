// Package scefield implements the self-consistent toroidal electric-field
// solver: particle current is deposited onto a 1-D radial or poloidal-flux
// grid, reduced across cooperating workers, differentiated in time with a
// second-order backward stencil, and fed through a tridiagonal solve for
// the inductive electric field, which is then republished to the field
// interpolation collaborator.
package scefield

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/plasmakit/torfield/internal/collective"
)

const mu0 = 4 * math.Pi * 1e-7

var (
	// ErrNoCurrent indicates an ensemble that deposited no current, which
	// makes the normalization constant undefined.
	ErrNoCurrent = errors.New("scefield: deposited current integrates to zero")

	// ErrNotInitialized indicates Step or Snapshot before Init/Reinit.
	ErrNotInitialized = errors.New("scefield: solver not initialized")

	// ErrNoFluxMetrics indicates a flux-surface solve without the
	// precomputed metric coefficients.
	ErrNoFluxMetrics = errors.New("scefield: flux metrics not set")
)

// Interpolator is the external field-interpolation collaborator. The
// solver calls Reinit with the grid and refreshed E profile after every
// solve; the internals are opaque to the core.
type Interpolator interface {
	Reinit(x, e []float64) error
}

// Config fixes the solver's grid, deposition policy, and cadence for the
// whole run.
type Config struct {
	Cells int
	Dx    float64 // radial spacing, or delta-psi for flux grids
	Flux  bool    // poloidal-flux grid instead of minor radius

	// TotalCurrent is the experimentally prescribed plasma current used
	// for normalization [A].
	TotalCurrent float64

	Policy        Policy
	GaussianWidth float64

	// EScale rescales the solved field to the solver's dimensionless
	// internal representation.
	EScale float64

	// Mass is the particle rest mass in the normalization of vpll.
	Mass float64

	// Subcycling: the SC-E update runs every Subcycle()*OutputSkip orbit
	// steps of length DtOrbit.
	DtTarget   float64
	DtOrbit    float64
	OutputSkip int

	// Workers is the deposition worker count; zero means NumCPU.
	Workers int
}

func (c *Config) validate() error {
	if c.Cells < 3 {
		return fmt.Errorf("scefield: need at least 3 cells, got %d", c.Cells)
	}
	if c.Dx <= 0 {
		return fmt.Errorf("scefield: grid spacing must be positive, got %g", c.Dx)
	}
	if c.DtOrbit <= 0 {
		return fmt.Errorf("scefield: orbit timestep must be positive, got %g", c.DtOrbit)
	}
	if c.DtTarget < c.DtOrbit {
		return fmt.Errorf("scefield: target timestep %g below orbit timestep %g", c.DtTarget, c.DtOrbit)
	}
	if c.Policy == DepositGaussian && c.GaussianWidth <= 0 {
		return fmt.Errorf("scefield: gaussian deposition needs a positive width")
	}
	return nil
}

// Subcycle derives the integer update period from the desired physical
// timestep, fixed for the remainder of the run.
func Subcycle(dtTarget, dtOrbit float64) int {
	return int(math.Floor(dtTarget / dtOrbit))
}

// Solver owns the SC-E radial/flux state. It is mutated once per update
// call and never concurrently: deposition runs on private per-worker
// buffers reduced before any solve.
type Solver struct {
	cfg      Config
	grid     []float64
	measure  []float64
	hist     historyRing
	e        []float64
	djdt     []float64
	ip0      float64
	subcycle int
	dtEff    float64

	// flux-surface metric coefficients
	alpha, beta []float64

	// tridiagonal scratch
	a, b, c, r, u, gam []float64

	group  *collective.Group
	interp Interpolator

	initialized bool
}

// New creates a solver over the configured grid. interp may be nil when no
// interpolation collaborator is wired (the profile is still available via
// E and Snapshot).
func New(cfg Config, interp Interpolator) (*Solver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.OutputSkip <= 0 {
		cfg.OutputSkip = 1
	}
	if cfg.EScale == 0 {
		cfg.EScale = 1
	}

	n := cfg.Cells
	s := &Solver{
		cfg:      cfg,
		grid:     make([]float64, n),
		measure:  make([]float64, n),
		hist:     newHistoryRing(n),
		e:        make([]float64, n),
		djdt:     make([]float64, n),
		subcycle: Subcycle(cfg.DtTarget, cfg.DtOrbit),
		a:        make([]float64, n),
		b:        make([]float64, n),
		c:        make([]float64, n),
		r:        make([]float64, n),
		u:        make([]float64, n),
		gam:      make([]float64, n),
		group:    collective.NewGroup(cfg.Workers, n),
		interp:   interp,
	}
	s.dtEff = float64(s.subcycle*cfg.OutputSkip) * cfg.DtOrbit
	s.buildGeometry()
	return s, nil
}

// SetFluxMetrics installs the precomputed metric coefficients for the
// flux-surface solve: beta = dA/dpsi and alpha = d2A/dpsi2 on the grid.
func (s *Solver) SetFluxMetrics(alpha, beta []float64) error {
	if len(alpha) != s.cfg.Cells || len(beta) != s.cfg.Cells {
		return fmt.Errorf("scefield: metric length %d/%d, expected %d", len(alpha), len(beta), s.cfg.Cells)
	}
	s.alpha = append([]float64(nil), alpha...)
	s.beta = append([]float64(nil), beta...)
	return nil
}

// FluxMetricsFromArea derives alpha and beta by finite differences from a
// sampled flux-surface area profile A(psi) on the solver grid.
func (s *Solver) FluxMetricsFromArea(area []float64) error {
	n := s.cfg.Cells
	if len(area) != n {
		return fmt.Errorf("scefield: area profile length %d, expected %d", len(area), n)
	}
	dx := s.cfg.Dx
	alpha := make([]float64, n)
	beta := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			beta[i] = (area[1] - area[0]) / dx
			alpha[i] = (area[2] - 2*area[1] + area[0]) / (dx * dx)
		case i == n-1:
			beta[i] = (area[n-1] - area[n-2]) / dx
			alpha[i] = (area[n-1] - 2*area[n-2] + area[n-3]) / (dx * dx)
		default:
			beta[i] = (area[i+1] - area[i-1]) / (2 * dx)
			alpha[i] = (area[i+1] - 2*area[i] + area[i-1]) / (dx * dx)
		}
	}
	s.alpha, s.beta = alpha, beta
	return nil
}

// SubcycleCount returns the fixed integer update period.
func (s *Solver) SubcycleCount() int { return s.subcycle }

// EffectiveDt returns the stored SC-E timestep,
// subcycle * output-skip * orbit dt, exactly.
func (s *Solver) EffectiveDt() float64 { return s.dtEff }

// Due reports whether the SC-E update should run at the given orbit step.
func (s *Solver) Due(step int) bool {
	period := s.subcycle * s.cfg.OutputSkip
	return step > 0 && step%period == 0
}

// Grid returns the cell-center coordinates.
func (s *Solver) Grid() []float64 { return s.grid }

// Measure returns the per-cell geometric measures (annulus areas or flux
// bin widths) used to convert deposits to densities.
func (s *Solver) Measure() []float64 { return s.measure }

// E returns the current inductive electric-field profile.
func (s *Solver) E() []float64 { return s.e }

// Ip0 returns the current-normalization constant fixed at initialization.
func (s *Solver) Ip0() float64 { return s.ip0 }

// depositReduce runs the three-phase protocol's first two phases: chunked
// parallel deposition into per-worker private buffers, then the blocking
// sum reduction. The returned profile is the globally consistent raw
// weighted-velocity sum.
func (s *Solver) depositReduce(p *Particles) ([]float64, error) {
	workers := s.cfg.Workers
	n := p.Len()
	chunk := (n + workers - 1) / workers

	reduced := make([][]float64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			lo := w * chunk
			hi := lo + chunk
			if lo > n {
				lo = n
			}
			if hi > n {
				hi = n
			}
			buf := make([]float64, s.cfg.Cells)
			s.deposit(buf, p.slice(lo, hi))
			reduced[w], errs[w] = s.group.SumReduce(w, buf)
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	// Every worker holds an identical copy; keep the first.
	return reduced[0], nil
}

func (s *Solver) solve() error {
	s.hist.Derivative(s.dtEff, s.djdt)

	var err error
	if s.cfg.Flux {
		if s.alpha == nil || s.beta == nil {
			return ErrNoFluxMetrics
		}
		err = s.solveFlux(s.djdt)
	} else {
		err = s.solveRadial(s.djdt)
	}
	if err != nil {
		return err
	}

	for i := range s.e {
		s.e[i] = s.u[i] / s.cfg.EScale
	}
	if s.interp != nil {
		return s.interp.Reinit(s.grid, s.e)
	}
	return nil
}

// Init runs the solver's initialization state: deposit and reduce the
// initial ensemble, fix the current normalization against the prescribed
// total current, seed all three history slots so the initial time
// derivative vanishes, then solve and republish.
func (s *Solver) Init(p *Particles) error {
	raw, err := s.depositReduce(p)
	if err != nil {
		return err
	}

	// The flux/area integral of the density is the plain sum of the raw
	// per-cell deposits: density times measure restores the raw value.
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total == 0 {
		return ErrNoCurrent
	}
	s.ip0 = s.cfg.TotalCurrent / total

	s.toDensity(raw)
	for i := range raw {
		raw[i] *= s.ip0
	}
	s.hist.Seed(raw)
	s.initialized = true
	return s.solve()
}

// Step runs one periodic SC-E update: deposit, reduce, shift the history
// ring, and solve with the second-order backward time derivative.
func (s *Solver) Step(p *Particles) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	raw, err := s.depositReduce(p)
	if err != nil {
		return err
	}
	s.toDensity(raw)
	for i := range raw {
		raw[i] *= s.ip0
	}
	s.hist.Push(raw)
	return s.solve()
}

// Reinit re-derives the field from a previously stored, unnormalized
// current profile without consuming a live ensemble, for restarts.
func (s *Solver) Reinit(raw []float64) error {
	if len(raw) != s.cfg.Cells {
		return fmt.Errorf("scefield: stored profile length %d, expected %d", len(raw), s.cfg.Cells)
	}

	total := 0.0
	for c, v := range raw {
		total += v * s.measure[c]
	}
	if total == 0 {
		return ErrNoCurrent
	}
	s.ip0 = s.cfg.TotalCurrent / total

	j := make([]float64, s.cfg.Cells)
	for c := range raw {
		j[c] = raw[c] * s.ip0
	}
	s.hist.Seed(j)
	s.initialized = true
	return s.solve()
}

// Snapshot is a read-only view of the solver state for diagnostics.
type Snapshot struct {
	Grid []float64
	J    []float64
	E    []float64
	Ip0  float64
}

// Snapshot copies the current state for diagnostic observers.
func (s *Solver) Snapshot() Snapshot {
	return Snapshot{
		Grid: append([]float64(nil), s.grid...),
		J:    append([]float64(nil), s.hist.Newest()...),
		E:    append([]float64(nil), s.e...),
		Ip0:  s.ip0,
	}
}
