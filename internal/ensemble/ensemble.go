// Package ensemble generates seeded synthetic particle ensembles for the
// demo commands and tests.
package ensemble

import (
	"math"
	"math/rand"

	"github.com/plasmakit/torfield/internal/coords"
	"github.com/plasmakit/torfield/internal/field"
	"github.com/plasmakit/torfield/internal/scefield"
)

// Params controls the synthetic distribution.
type Params struct {
	N     int
	Seed  int64
	RMax  float64 // particles drawn uniformly in minor radius [0, RMax]
	VPar  float64 // parallel momentum scale
	MuMax float64 // magnetic moment scale
}

// Toroidal draws an ensemble in toroidal coordinates (r, theta, zeta) as a
// full-orbit batch. All particles start confined.
func Toroidal(p Params) *field.Batch {
	rng := rand.New(rand.NewSource(p.Seed))
	b := field.NewBatch(p.N, false)
	for i := 0; i < p.N; i++ {
		b.P1[i] = p.RMax * math.Sqrt(rng.Float64()) // uniform in area
		b.P2[i] = 2 * math.Pi * rng.Float64()
		b.P3[i] = 2 * math.Pi * rng.Float64()
	}
	return b
}

// GuidingCenter draws an ensemble in cylindrical coordinates about the
// axis (r0, 0) with Maxwellian-like parallel momenta, flagging confinement
// against the boundary minor radius.
func GuidingCenter(p Params, r0, a float64) *field.Batch {
	rng := rand.New(rand.NewSource(p.Seed))
	b := field.NewBatch(p.N, true)
	for i := 0; i < p.N; i++ {
		rm := p.RMax * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		r, phi, z := coords.TorToCyl(rm, theta, 2*math.Pi*rng.Float64(), r0)
		b.P1[i], b.P2[i], b.P3[i] = r, phi, z
		b.PPar[i] = p.VPar * (1 + 0.3*rng.NormFloat64())
		b.Mu[i] = p.MuMax * rng.Float64()
	}
	coords.FlagBatch(b.P1, b.P3, r0, a, b.Confined)
	return b
}

// DepositionView adapts an evaluated guiding-center batch to the SC-E
// deposition contract: minor-radius coordinate, momenta, local |B|, and
// the two gate flags. The collisional-validity flag is true for every
// synthetic particle.
func DepositionView(b *field.Batch, r0 float64) *scefield.Particles {
	n := b.Len()
	p := &scefield.Particles{
		X:        make([]float64, n),
		PPar:     b.PPar,
		Mu:       b.Mu,
		Bmag:     make([]float64, n),
		Confined: b.Confined,
		Valid:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		p.X[i] = math.Hypot(b.P1[i]-r0, b.P3[i])
		p.Bmag[i] = math.Sqrt(b.B1[i]*b.B1[i] + b.B2[i]*b.B2[i] + b.B3[i]*b.B3[i])
		p.Valid[i] = true
	}
	return p
}
