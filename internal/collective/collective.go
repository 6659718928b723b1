// Package collective provides the blocking sum-reduction used by the
// self-consistent field solver: every cooperating worker deposits into a
// private buffer, then all workers meet at a single synchronization point
// where the buffers are summed element-wise and the identical result is
// handed back to each of them.
package collective

import (
	"errors"
	"sync"
)

var (
	// ErrBadWorker indicates a worker id outside the group.
	ErrBadWorker = errors.New("collective: worker id out of range")

	// ErrLengthMismatch indicates a contribution of the wrong length.
	ErrLengthMismatch = errors.New("collective: contribution length mismatch")
)

// Group coordinates a fixed set of workers reducing fixed-length arrays.
// The sum is accumulated in worker-id order once all contributions have
// arrived, so the result is reproducible for identical inputs regardless
// of arrival order.
type Group struct {
	workers int
	length  int

	mu      sync.Mutex
	cond    *sync.Cond
	pending [][]float64
	arrived int
	result  []float64
	gen     int
}

// NewGroup creates a reduction group for the given worker count and array
// length.
func NewGroup(workers, length int) *Group {
	g := &Group{
		workers: workers,
		length:  length,
		pending: make([][]float64, workers),
	}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Workers returns the group size.
func (g *Group) Workers() int { return g.workers }

// SumReduce blocks until every worker in the group has contributed, then
// returns the element-wise sum to each caller. Each worker receives its
// own copy, safe to reuse as a deposit buffer afterwards. The call is a
// barrier: no worker proceeds until the reduction is complete.
func (g *Group) SumReduce(worker int, local []float64) ([]float64, error) {
	if worker < 0 || worker >= g.workers {
		return nil, ErrBadWorker
	}
	if len(local) != g.length {
		return nil, ErrLengthMismatch
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	gen := g.gen
	g.pending[worker] = local
	g.arrived++

	if g.arrived == g.workers {
		sum := make([]float64, g.length)
		for w := 0; w < g.workers; w++ {
			buf := g.pending[w]
			for i, v := range buf {
				sum[i] += v
			}
			g.pending[w] = nil
		}
		g.result = sum
		g.arrived = 0
		g.gen++
		g.cond.Broadcast()
	} else {
		for gen == g.gen {
			g.cond.Wait()
		}
	}

	out := make([]float64, g.length)
	copy(out, g.result)
	return out, nil
}
