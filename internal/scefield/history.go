package scefield

// historyRing keeps the three most recent current-density profiles as the
// fixed-order stencil for the second-order backward time difference. The
// slots shift in lock-step: a push evicts the oldest profile and reuses
// its storage for the newcomer.
type historyRing struct {
	slots [3][]float64 // slots[0] newest, slots[2] oldest
}

func newHistoryRing(n int) historyRing {
	var h historyRing
	for i := range h.slots {
		h.slots[i] = make([]float64, n)
	}
	return h
}

// Seed copies j into all three slots so the initial time derivative is
// exactly zero.
func (h *historyRing) Seed(j []float64) {
	for i := range h.slots {
		copy(h.slots[i], j)
	}
}

// Push inserts j as the newest profile, evicting the oldest.
func (h *historyRing) Push(j []float64) {
	evicted := h.slots[2]
	h.slots[2] = h.slots[1]
	h.slots[1] = h.slots[0]
	copy(evicted, j)
	h.slots[0] = evicted
}

func (h *historyRing) Newest() []float64 { return h.slots[0] }
func (h *historyRing) Prev() []float64   { return h.slots[1] }
func (h *historyRing) Oldest() []float64 { return h.slots[2] }

// Derivative writes the second-order backward difference
// (3 j_n - 4 j_{n-1} + j_{n-2}) / (2 dt) into out. The difference-of-
// differences form keeps the result exactly zero when all three slots
// hold the same profile, as they do right after Seed.
func (h *historyRing) Derivative(dt float64, out []float64) {
	jn, jm1, jm2 := h.slots[0], h.slots[1], h.slots[2]
	for i := range out {
		out[i] = (3*(jn[i]-jm1[i]) + (jm2[i] - jm1[i])) / (2 * dt)
	}
}
