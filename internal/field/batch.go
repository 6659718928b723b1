package field

// Batch is a chunk of particles evaluated together. All slices are
// index-aligned and of equal length; the coordinate meaning of P1..P3
// depends on the model (Cartesian-adjacent toroidal coordinates for the
// full-orbit model, cylindrical (R,phi,Z) for guiding-center models).
//
// A particle's Confined flag must be checked before its outputs are
// trusted: unconfined particles are skipped and their slots keep whatever
// value they held before the call.
type Batch struct {
	P1, P2, P3 []float64

	// Guiding-center momenta, used by deposition rather than evaluation;
	// nil for full-orbit batches.
	PPar, Mu []float64

	Confined []bool

	// Hint is an opaque per-particle cache slot for the mesh interpolation
	// collaborator to accelerate repeated lookups.
	Hint []int

	B1, B2, B3 []float64
	E1, E2, E3 []float64

	// Guiding-center outputs; nil unless allocated by NewBatch(n, true).
	Psi                    []float64
	GradB1, GradB2, GradB3 []float64
	Curl1, Curl2, Curl3    []float64
}

// NewBatch allocates an index-aligned batch of n particles, with the
// guiding-center auxiliary outputs when gc is set. All particles start
// confined.
func NewBatch(n int, gc bool) *Batch {
	b := &Batch{
		P1:       make([]float64, n),
		P2:       make([]float64, n),
		P3:       make([]float64, n),
		Confined: make([]bool, n),
		Hint:     make([]int, n),
		B1:       make([]float64, n),
		B2:       make([]float64, n),
		B3:       make([]float64, n),
		E1:       make([]float64, n),
		E2:       make([]float64, n),
		E3:       make([]float64, n),
	}
	for i := range b.Confined {
		b.Confined[i] = true
	}
	if gc {
		b.PPar = make([]float64, n)
		b.Mu = make([]float64, n)
		b.Psi = make([]float64, n)
		b.GradB1 = make([]float64, n)
		b.GradB2 = make([]float64, n)
		b.GradB3 = make([]float64, n)
		b.Curl1 = make([]float64, n)
		b.Curl2 = make([]float64, n)
		b.Curl3 = make([]float64, n)
	}
	return b
}

// Len returns the particle count.
func (b *Batch) Len() int { return len(b.P1) }

// GC reports whether the guiding-center output slices are allocated.
func (b *Batch) GC() bool { return b.Psi != nil }

// Validate checks the index-alignment invariant.
func (b *Batch) Validate() error {
	n := len(b.P1)
	aligned := len(b.P2) == n && len(b.P3) == n &&
		len(b.Confined) == n && len(b.Hint) == n &&
		len(b.B1) == n && len(b.B2) == n && len(b.B3) == n &&
		len(b.E1) == n && len(b.E2) == n && len(b.E3) == n
	if b.Psi != nil {
		aligned = aligned && len(b.Psi) == n &&
			len(b.GradB1) == n && len(b.GradB2) == n && len(b.GradB3) == n &&
			len(b.Curl1) == n && len(b.Curl2) == n && len(b.Curl3) == n
	}
	if !aligned {
		return ErrBatchMismatch
	}
	return nil
}
