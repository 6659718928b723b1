// Package analytic implements the closed-form large-aspect-ratio tokamak
// equilibrium models: a full-orbit toroidal field, a guiding-center field
// with poloidal flux and analytically differentiated auxiliary quantities,
// and an optional time-dependent toroidal electric-field pulse.
package analytic

import "math"

// Equilibrium holds the scalar parameters of the analytical field models.
type Equilibrium struct {
	B0     float64 // on-axis field strength [T]
	E0     float64 // toroidal electric-field amplitude [V/m]
	R0     float64 // major radius [m]
	A      float64 // minor radius of the confinement boundary [m]
	Q0     float64 // on-axis safety factor
	Lambda float64 // q-profile broadening length [m]
	Sign   float64 // poloidal field sign convention, +1 or -1
}

// Q is the full-orbit safety-factor profile q(r) = q0(1 + r^2/lambda^2).
func (eq Equilibrium) Q(r float64) float64 {
	return eq.Q0 * (1 + r*r/(eq.Lambda*eq.Lambda))
}

// QHat is the guiding-center profile factor 1 + (rm/lambda)^2.
func (eq Equilibrium) QHat(rm float64) float64 {
	return 1 + rm*rm/(eq.Lambda*eq.Lambda)
}

// FullOrbitB evaluates the toroidal-model magnetic field at toroidal
// coordinates (r, theta, zeta) and rotates it to Cartesian components.
func (eq Equilibrium) FullOrbitB(r, theta, zeta float64) (bx, by, bz float64) {
	eta := r / eq.R0
	den := 1 + eta*math.Cos(theta)
	bp := eq.Sign * eta * eq.B0 / (eq.Q(r) * den)
	bt := eq.B0 / den

	st, ct := math.Sincos(theta)
	sz, cz := math.Sincos(zeta)

	bx = bt*cz - bp*st*sz
	by = -bt*sz - bp*st*cz
	bz = bp * ct
	return bx, by, bz
}

// FullOrbitE evaluates the toroidal electric field E_zeta = -E0/(1+eta cos
// theta) rotated to Cartesian components. Callers gate on E0 != 0: a zero
// amplitude means the output arrays are deliberately left untouched.
func (eq Equilibrium) FullOrbitE(r, theta, zeta float64) (ex, ey, ez float64) {
	eta := r / eq.R0
	et := -eq.E0 / (1 + eta*math.Cos(theta))
	sz, cz := math.Sincos(zeta)
	return et * cz, -et * sz, 0
}

// PsiP is the poloidal flux of the guiding-center model at cylindrical
// position (R, Z), with the magnetic axis at (R0, 0).
func (eq Equilibrium) PsiP(r, z float64) float64 {
	dr := r - eq.R0
	rm := math.Hypot(dr, z)
	ct := 1.0
	if rm > 0 {
		ct = dr / rm
	}
	l2 := eq.Lambda * eq.Lambda
	return r * l2 * eq.B0 / (2 * eq.Q0 * (eq.R0 + rm*ct)) * math.Log(1+rm*rm/l2)
}

// GCField evaluates the guiding-center magnetic field in the cylindrical
// (R, phi, Z) frame.
func (eq Equilibrium) GCField(r, z float64) (br, bphi, bz float64) {
	dr := r - eq.R0
	rm := math.Hypot(dr, z)
	qh := eq.QHat(rm)
	a := eq.B0 / eq.Q0

	br = -a * z / (r * qh)
	bz = a * dr / (r * qh)
	bphi = eq.B0 * eq.R0 / r
	return br, bphi, bz
}

// gcDerivs holds the nonzero partial derivatives of the guiding-center
// field components with respect to R and Z. dBphi/dZ vanishes by
// construction and is not stored.
type gcDerivs struct {
	dBRdR, dBRdZ float64
	dBPhidR      float64
	dBZdR, dBZdZ float64
}

func (eq Equilibrium) gcPartials(r, z float64) gcDerivs {
	dr := r - eq.R0
	rm := math.Hypot(dr, z)
	l2 := eq.Lambda * eq.Lambda
	qh := eq.QHat(rm)
	qhR := 2 * dr / l2
	qhZ := 2 * z / l2
	a := eq.B0 / eq.Q0
	rq2 := r * r * qh * qh

	return gcDerivs{
		dBRdR:   a * z * (qh + r*qhR) / rq2,
		dBRdZ:   -a * (qh - z*qhZ) / (r * qh * qh),
		dBPhidR: -eq.B0 * eq.R0 / (r * r),
		dBZdR:   a * (r*qh - dr*(qh+r*qhR)) / rq2,
		dBZdZ:   -a * dr * qhZ / (r * qh * qh),
	}
}

// GCAux evaluates the guiding-center auxiliary fields at (R, Z): the
// gradient of |B| and the curl of the field unit vector, both in
// cylindrical components, obtained by differentiating the closed-form
// field. The phi-component of the gradient vanishes by axisymmetry.
func (eq Equilibrium) GCAux(r, z float64) (grad, curl [3]float64) {
	br, bphi, bz := eq.GCField(r, z)
	d := eq.gcPartials(r, z)
	bmag := math.Sqrt(br*br + bphi*bphi + bz*bz)

	grad[0] = (br*d.dBRdR + bphi*d.dBPhidR + bz*d.dBZdR) / bmag
	grad[1] = 0
	grad[2] = (br*d.dBRdZ + bz*d.dBZdZ) / bmag

	// Quotient-rule derivatives of the unit vector b = B/|B|.
	b2 := bmag * bmag
	dbPhidZ := (0*bmag - bphi*grad[2]) / b2
	dbPhidR := (d.dBPhidR*bmag - bphi*grad[0]) / b2
	dbRdZ := (d.dBRdZ*bmag - br*grad[2]) / b2
	dbZdR := (d.dBZdR*bmag - bz*grad[0]) / b2

	curl[0] = -dbPhidZ
	curl[1] = dbRdZ - dbZdR
	curl[2] = bphi/(r*bmag) + dbPhidR
	return grad, curl
}

// GCRotated evaluates the guiding-center field and auxiliary quantities
// rotated through the local poloidal angle, for particle frames offset
// from the cylindrical one. Component order is (radial, phi, poloidal).
func (eq Equilibrium) GCRotated(r, z float64) (b, grad, curl [3]float64) {
	dr := r - eq.R0
	rm := math.Hypot(dr, z)
	st, ct := 0.0, 1.0
	if rm > 0 {
		st, ct = z/rm, dr/rm
	}

	br, bphi, bz := eq.GCField(r, z)
	g, c := eq.GCAux(r, z)

	b = [3]float64{br*ct + bz*st, bphi, -br*st + bz*ct}
	grad = [3]float64{g[0]*ct + g[2]*st, g[1], -g[0]*st + g[2]*ct}
	curl = [3]float64{c[0]*ct + c[2]*st, c[1], -c[0]*st + c[2]*ct}
	return b, grad, curl
}

// GCElectric is the toroidal electric field E_phi = E0 R0/R of the
// guiding-center model. R and Z components are zero.
func (eq Equilibrium) GCElectric(r float64) float64 {
	return eq.E0 * eq.R0 / r
}
