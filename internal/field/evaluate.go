package field

import (
	"fmt"
	"runtime"
	"sync"
)

// Evaluation is embarrassingly parallel across particles; batches below
// this size are not worth the goroutine overhead.
const parallelThreshold = 2048

// Evaluate fills the batch's field outputs according to the descriptor's
// model. Writes are per-particle and disjoint, gated by the confinement
// flag. Electric-field outputs are deliberately left untouched when the
// configured amplitude is exactly zero.
func Evaluate(d *Descriptor, b *Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}

	switch d.Model {
	case ModelFullOrbit:
		forEachParticle(b.Len(), func(lo, hi int) { evalFullOrbit(d, b, lo, hi) })
	case ModelGCInit, ModelGC:
		if !b.GC() {
			return fmt.Errorf("%w: %s model needs a guiding-center batch", ErrBatchMismatch, d.Model)
		}
		rotated := d.Model == ModelGC
		forEachParticle(b.Len(), func(lo, hi int) { evalGC(d, b, lo, hi, rotated) })
	case ModelUniform:
		forEachParticle(b.Len(), func(lo, hi int) { evalUniform(d, b, lo, hi) })
	case ModelMesh:
		if d.MeshEval != nil {
			return d.MeshEval.EvaluateBatch(b)
		}
		if d.Mesh2D == nil {
			return ErrNoMeshEvaluator
		}
		forEachParticle(b.Len(), func(lo, hi int) { evalMesh2D(d, b, lo, hi) })
	default:
		return fmt.Errorf("%w: %d", ErrUnknownModel, int(d.Model))
	}
	return nil
}

// forEachParticle maps fn over [0,n) in disjoint chunks, one goroutine per
// chunk for large batches.
func forEachParticle(n int, fn func(lo, hi int)) {
	if n < parallelThreshold {
		fn(0, n)
		return
	}

	workers := runtime.NumCPU()
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func evalFullOrbit(d *Descriptor, b *Batch, lo, hi int) {
	writeE := d.Eq.E0 != 0
	for i := lo; i < hi; i++ {
		if !b.Confined[i] {
			continue
		}
		r, theta, zeta := b.P1[i], b.P2[i], b.P3[i]
		b.B1[i], b.B2[i], b.B3[i] = d.Eq.FullOrbitB(r, theta, zeta)
		if writeE {
			b.E1[i], b.E2[i], b.E3[i] = d.Eq.FullOrbitE(r, theta, zeta)
		}
	}
}

func evalGC(d *Descriptor, b *Batch, lo, hi int, rotated bool) {
	writeE := d.Eq.E0 != 0 || d.Pulse.Enabled
	for i := lo; i < hi; i++ {
		if !b.Confined[i] {
			continue
		}
		r, z := b.P1[i], b.P3[i]
		b.Psi[i] = d.Eq.PsiP(r, z)

		if rotated {
			bb, grad, curl := d.Eq.GCRotated(r, z)
			b.B1[i], b.B2[i], b.B3[i] = bb[0], bb[1], bb[2]
			b.GradB1[i], b.GradB2[i], b.GradB3[i] = grad[0], grad[1], grad[2]
			b.Curl1[i], b.Curl2[i], b.Curl3[i] = curl[0], curl[1], curl[2]
		} else {
			b.B1[i], b.B2[i], b.B3[i] = d.Eq.GCField(r, z)
			grad, curl := d.Eq.GCAux(r, z)
			b.GradB1[i], b.GradB2[i], b.GradB3[i] = grad[0], grad[1], grad[2]
			b.Curl1[i], b.Curl2[i], b.Curl3[i] = curl[0], curl[1], curl[2]
		}

		if writeE {
			b.E1[i], b.E3[i] = 0, 0
			b.E2[i] = d.Eq.GCElectric(r) + d.Pulse.At(r, d.Eq.R0, d.Step)
		}
	}
}

func evalUniform(d *Descriptor, b *Batch, lo, hi int) {
	writeE := d.Eq.E0 != 0
	for i := lo; i < hi; i++ {
		if !b.Confined[i] {
			continue
		}
		b.B1[i], b.B2[i], b.B3[i] = d.Eq.B0, 0, 0
		if writeE {
			b.E1[i], b.E2[i], b.E3[i] = d.Eq.E0, 0, 0
		}
	}
}
