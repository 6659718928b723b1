package scefield

import "errors"

// ErrSingularPivot indicates a zero pivot in the tridiagonal elimination.
// The solve cannot proceed and is not regularized: it signals a
// pathological grid or profile and aborts the run.
var ErrSingularPivot = errors.New("scefield: singular pivot in tridiagonal solve")

// thomas solves the tridiagonal system a(i) u(i-1) + b(i) u(i) + c(i)
// u(i+1) = r(i) over rows [lo, n) by forward elimination and back
// substitution. Rows below lo are not part of the system; the callers
// overwrite row lo or row 0 afterwards with their axis extrapolation.
func thomas(a, b, c, r, u, gam []float64, lo int) error {
	n := len(b)

	bet := b[lo]
	if bet == 0 {
		return ErrSingularPivot
	}
	u[lo] = r[lo] / bet

	for i := lo + 1; i < n; i++ {
		gam[i] = c[i-1] / bet
		bet = b[i] - a[i]*gam[i]
		if bet == 0 {
			return ErrSingularPivot
		}
		u[i] = (r[i] - a[i]*u[i-1]) / bet
	}

	for i := n - 2; i >= lo; i-- {
		u[i] -= gam[i+1] * u[i+1]
	}
	return nil
}

// solveRadial advances the cylindrical-average form: a constant-coefficient
// second-derivative operator with variable off-diagonals reflecting the
// radial Laplacian. The innermost point is not solved but extrapolated from
// regularity at the axis.
func (s *Solver) solveRadial(djdt []float64) error {
	n := s.cfg.Cells
	dx2 := s.cfg.Dx * s.cfg.Dx

	for i := 0; i < n; i++ {
		s.b[i] = -2
		if i == 0 {
			s.a[i], s.c[i] = 0, 0
		} else {
			s.a[i] = float64(i-1) / float64(i)
			s.c[i] = float64(i+1) / float64(i)
		}
		s.r[i] = 2 * dx2 * mu0 * djdt[i]
	}

	if err := thomas(s.a, s.b, s.c, s.r, s.u, s.gam, 0); err != nil {
		return err
	}
	s.u[0] = (4*s.u[1] - s.u[2]) / 3
	return nil
}

// solveFlux advances the flux-surface form with coefficients built from
// the precomputed metric quantities alpha = d2A/dpsi2 and beta = dA/dpsi.
// Row 0 is folded into row 1 before the sweep to enforce the flux-axis
// boundary condition implicitly; the axis value is then a first-order
// extrapolation, the flux coordinate being singular there.
func (s *Solver) solveFlux(djdt []float64) error {
	n := s.cfg.Cells
	dx := s.cfg.Dx
	dx2 := dx * dx

	for i := 0; i < n; i++ {
		s.a[i] = -s.alpha[i]*dx/2 + s.beta[i]
		s.b[i] = -2 * s.beta[i]
		s.c[i] = s.alpha[i]*dx/2 + s.beta[i]
		s.r[i] = dx2 * mu0 * djdt[i]
	}

	if s.c[0] == 0 {
		return ErrSingularPivot
	}
	s.c[1] -= s.a[1] * s.a[0] / s.c[0]
	s.b[1] -= s.a[1] * s.b[0] / s.c[0]
	s.r[1] -= s.a[1] * s.r[0] / s.c[0]

	if err := thomas(s.a, s.b, s.c, s.r, s.u, s.gam, 1); err != nil {
		return err
	}
	s.u[0] = 2*s.u[1] - s.u[2]
	return nil
}
