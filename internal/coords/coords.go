// Package coords provides the coordinate transforms and the
// confinement-boundary check consumed by field evaluation and the SC-E
// deposition.
package coords

import "math"

// CartToCyl converts Cartesian (x,y,z) to cylindrical (R,phi,Z).
func CartToCyl(x, y, z float64) (r, phi, zc float64) {
	return math.Hypot(x, y), math.Atan2(y, x), z
}

// CylToCart converts cylindrical (R,phi,Z) to Cartesian (x,y,z).
func CylToCart(r, phi, z float64) (x, y, zc float64) {
	s, c := math.Sincos(phi)
	return r * c, r * s, z
}

// CylToTor converts cylindrical coordinates to toroidal (minor radius,
// poloidal angle, toroidal angle) about the magnetic axis at (r0, 0).
func CylToTor(r, phi, z, r0 float64) (rm, theta, zeta float64) {
	dr := r - r0
	return math.Hypot(dr, z), math.Atan2(z, dr), phi
}

// TorToCyl converts toroidal coordinates back to cylindrical.
func TorToCyl(rm, theta, zeta, r0 float64) (r, phi, z float64) {
	s, c := math.Sincos(theta)
	return r0 + rm*c, zeta, rm * s
}

// Confined reports whether a position at minor radius rm lies inside the
// evaluation domain of minor radius a. It produces the per-particle
// confinement flag checked by every downstream consumer.
func Confined(rm, a float64) bool {
	return rm <= a
}

// FlagBatch fills confinement flags for cylindrical positions against the
// axis (r0,0) and boundary minor radius a.
func FlagBatch(r, z []float64, r0, a float64, confined []bool) {
	for i := range r {
		rm := math.Hypot(r[i]-r0, z[i])
		confined[i] = Confined(rm, a)
	}
}
