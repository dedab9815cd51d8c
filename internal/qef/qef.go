// Package qef implements the Quadratic Error Function accumulator and
// minimizer used to place one dual vertex per manifold-dual-contouring
// component. Accumulation sums outer products of plane normals (AtA/Atb)
// with Tikhonov regularization toward the mass point; minimization solves
// via symmetric eigendecomposition with small-eigenvalue truncation, using
// gonum.org/v1/gonum/mat.
package qef

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is a hyperplane defined by a point and a unit outward normal.
type Plane struct {
	Point  r3.Vec
	Normal r3.Vec
}

// QEF accumulates the quadratic form A = sum(n n^T), b = sum(n (n.p)),
// c = sum((n.p)^2), plus the running mass point (centroid of contributing
// plane points). All fields are additive so QEFs can be merged for octree
// collapse (Merge) with no loss beyond floating point round-off.
type QEF struct {
	// a stores the symmetric 3x3 matrix A in upper-triangular order:
	// Axx, Axy, Axz, Ayy, Ayz, Azz.
	a         [6]float64
	b         r3.Vec
	c         float64
	massSum   r3.Vec
	massCount int
}

// AddPlane folds one tangent plane into the accumulator.
func (q *QEF) AddPlane(p Plane) {
	n := p.Normal
	q.a[0] += n.X * n.X
	q.a[1] += n.X * n.Y
	q.a[2] += n.X * n.Z
	q.a[3] += n.Y * n.Y
	q.a[4] += n.Y * n.Z
	q.a[5] += n.Z * n.Z

	d := r3.Dot(n, p.Point)
	q.b = r3.Add(q.b, r3.Scale(d, n))
	q.c += d * d

	q.massSum = r3.Add(q.massSum, p.Point)
	q.massCount++
}

// AddMassPoint folds in a position that should influence the mass point
// (centroid) but contributes no plane constraint, used for crossings whose
// normal could not be estimated.
func (q *QEF) AddMassPoint(p r3.Vec) {
	q.massSum = r3.Add(q.massSum, p)
	q.massCount++
}

// Merge folds other's accumulated state into q. Used when building octree
// node QEFs from their eight children.
func (q *QEF) Merge(other QEF) {
	for i := range q.a {
		q.a[i] += other.a[i]
	}
	q.b = r3.Add(q.b, other.b)
	q.c += other.c
	q.massSum = r3.Add(q.massSum, other.massSum)
	q.massCount += other.massCount
}

// Empty reports whether no plane or mass-point contribution was ever added.
func (q *QEF) Empty() bool { return q.massCount == 0 }

// MassPoint returns the centroid of every contributing crossing position.
// Returns the zero vector if nothing was ever added.
func (q *QEF) MassPoint() r3.Vec {
	if q.massCount == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(q.massCount), q.massSum)
}

// Minimize solves argmin_x ||A x - b||^2 via symmetric eigendecomposition,
// regularizing towards the mass point along near-null directions of A,
// then clamps the result to clampBox. It returns the placed position and
// the QEF residual at that position.
//
// tau is the relative eigenvalue truncation threshold (1e-10 is typical).
func (q *QEF) Minimize(clampBox Box, tau float64) (pos r3.Vec, residual float64, ok bool) {
	mp := q.MassPoint()
	if q.massCount == 0 {
		return mp, 0, true
	}

	sym := mat.NewSymDense(3, []float64{
		q.a[0], q.a[1], q.a[2],
		q.a[1], q.a[3], q.a[4],
		q.a[2], q.a[4], q.a[5],
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return mp, 0, false
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lambdaMax := 0.0
	for _, v := range values {
		if av := absf(v); av > lambdaMax {
			lambdaMax = av
		}
	}
	if isNaN(lambdaMax) || isInf(lambdaMax) {
		return clampBox.Clamp(mp), 0, false
	}
	if lambdaMax == 0 {
		// No plane ever contributed (mass points only): the mass point
		// itself is the correct, unconstrained answer.
		return clampBox.Clamp(mp), 0, true
	}
	thresh := tau * lambdaMax

	// bMinusAmp = b - A*massPoint
	amp := q.applyA(mp)
	bMinusAmp := r3.Sub(q.b, amp)

	x := mp
	for i, lambda := range values {
		if absf(lambda) < thresh {
			continue
		}
		u := r3.Vec{X: vecs.At(0, i), Y: vecs.At(1, i), Z: vecs.At(2, i)}
		coeff := r3.Dot(u, bMinusAmp) / lambda
		x = r3.Add(x, r3.Scale(coeff, u))
	}
	if hasNaNOrInf(x) {
		return clampBox.Clamp(mp), 0, false
	}

	x = clampBox.Clamp(x)
	residual = q.residualAt(x)
	return x, residual, true
}

// applyA computes A*v for the accumulated symmetric matrix.
func (q *QEF) applyA(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: q.a[0]*v.X + q.a[1]*v.Y + q.a[2]*v.Z,
		Y: q.a[1]*v.X + q.a[3]*v.Y + q.a[4]*v.Z,
		Z: q.a[2]*v.X + q.a[4]*v.Y + q.a[5]*v.Z,
	}
}

// residualAt returns x^T A x - 2 b.x + c, the standard QEF residual.
func (q *QEF) residualAt(x r3.Vec) float64 {
	ax := q.applyA(x)
	return r3.Dot(x, ax) - 2*r3.Dot(q.b, x) + q.c
}

// Box is the minimal axis-aligned box contract QEF needs for clamping,
// kept local so that this package does not depend on internal/geom.
type Box struct {
	Min, Max r3.Vec
}

// Clamp restricts p componentwise to the box.
func (b Box) Clamp(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: clampf(p.X, b.Min.X, b.Max.X),
		Y: clampf(p.Y, b.Min.Y, b.Max.Y),
		Z: clampf(p.Z, b.Min.Z, b.Max.Z),
	}
}

func clampf(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func isNaN(x float64) bool { return x != x }
func isInf(x float64) bool { return x > 1e300 || x < -1e300 }

func hasNaNOrInf(v r3.Vec) bool {
	return isNaN(v.X) || isNaN(v.Y) || isNaN(v.Z) ||
		isInf(v.X) || isInf(v.Y) || isInf(v.Z)
}
