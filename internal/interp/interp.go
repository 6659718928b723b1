// Package interp supplies the 1-D linear interpolant the SC-E solver
// republishes its field through. It implements scefield.Interpolator.
package interp

import (
	"errors"
	"sort"
)

var ErrEmpty = errors.New("interp: interpolant not initialized")

// Linear1D interpolates piecewise-linearly over a monotonically increasing
// grid, clamping outside the domain. At accepts an optional hint index to
// accelerate repeated nearby lookups.
type Linear1D struct {
	x, y []float64
}

// NewLinear1D builds an interpolant over (x, y).
func NewLinear1D(x, y []float64) *Linear1D {
	l := &Linear1D{}
	_ = l.Reinit(x, y)
	return l
}

// Reinit replaces the interpolant's table, the call-out the SC-E solver
// makes after each solve.
func (l *Linear1D) Reinit(x, y []float64) error {
	if len(x) != len(y) || len(x) < 2 {
		return errors.New("interp: need at least two aligned points")
	}
	l.x = append(l.x[:0], x...)
	l.y = append(l.y[:0], y...)
	return nil
}

// At evaluates the interpolant. hint, when non-nil, caches the last
// bracketing interval per caller slot.
func (l *Linear1D) At(x float64, hint *int) (float64, error) {
	n := len(l.x)
	if n == 0 {
		return 0, ErrEmpty
	}
	if x <= l.x[0] {
		return l.y[0], nil
	}
	if x >= l.x[n-1] {
		return l.y[n-1], nil
	}

	i := -1
	if hint != nil && *hint >= 0 && *hint < n-1 && l.x[*hint] <= x && x < l.x[*hint+1] {
		i = *hint
	}
	if i < 0 {
		i = sort.SearchFloat64s(l.x, x) - 1
		if i < 0 {
			i = 0
		}
	}
	if hint != nil {
		*hint = i
	}

	t := (x - l.x[i]) / (l.x[i+1] - l.x[i])
	return l.y[i] + t*(l.y[i+1]-l.y[i]), nil
}
