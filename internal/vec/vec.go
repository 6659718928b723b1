// Package vec provides the small fixed-size vector operations used by
// basis construction and the demo pusher.
package vec

import "math"

type V3 [3]float64

func (a V3) Add(b V3) V3 { return V3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a V3) Sub(b V3) V3 { return V3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a V3) Scale(s float64) V3 { return V3{s * a[0], s * a[1], s * a[2]} }

func (a V3) Dot(b V3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a V3) Cross(b V3) V3 {
	return V3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a V3) Norm() float64 { return math.Sqrt(a.Dot(a)) }

// Unit returns a/|a|. The zero vector is returned unchanged.
func (a V3) Unit() V3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return a.Scale(1 / n)
}
