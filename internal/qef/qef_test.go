package qef

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var bigBox = Box{Min: r3.Vec{X: -100, Y: -100, Z: -100}, Max: r3.Vec{X: 100, Y: 100, Z: 100}}

func TestMinimizeThreeOrthogonalPlanes(t *testing.T) {
	var q QEF
	q.AddPlane(Plane{Point: r3.Vec{X: 1, Y: 0.3, Z: 0.7}, Normal: r3.Vec{X: 1}})
	q.AddPlane(Plane{Point: r3.Vec{X: 0.2, Y: 2, Z: 0.4}, Normal: r3.Vec{Y: 1}})
	q.AddPlane(Plane{Point: r3.Vec{X: 0.1, Y: 0.2, Z: 3}, Normal: r3.Vec{Z: 1}})

	pos, residual, ok := q.Minimize(bigBox, 1e-10)
	if !ok {
		t.Fatal("Minimize reported failure")
	}
	want := r3.Vec{X: 1, Y: 2, Z: 3}
	if r3.Norm(r3.Sub(pos, want)) > 1e-6 {
		t.Errorf("pos = %v, want %v", pos, want)
	}
	if residual > 1e-9 {
		t.Errorf("residual = %g, want ~0", residual)
	}
}

func TestMinimizeSinglePlaneRegularizesTowardMassPoint(t *testing.T) {
	var q QEF
	p := r3.Vec{X: 5, Y: 5, Z: 5}
	q.AddPlane(Plane{Point: p, Normal: r3.Vec{X: 1}})

	pos, _, ok := q.Minimize(bigBox, 1e-10)
	if !ok {
		t.Fatal("Minimize reported failure")
	}
	// With only one plane constraint, the solution is underdetermined in Y
	// and Z; regularization should pin those to the mass point (== p here).
	if math.Abs(pos.X-5) > 1e-6 {
		t.Errorf("pos.X = %g, want 5", pos.X)
	}
	if math.Abs(pos.Y-p.Y) > 1e-6 || math.Abs(pos.Z-p.Z) > 1e-6 {
		t.Errorf("pos = %v, want Y,Z pinned to mass point %v", pos, p)
	}
}

func TestMinimizeEmptyIsMassPoint(t *testing.T) {
	var q QEF
	q.AddMassPoint(r3.Vec{X: 1, Y: 2, Z: 3})
	q.AddMassPoint(r3.Vec{X: 3, Y: 2, Z: 1})

	pos, residual, ok := q.Minimize(bigBox, 1e-10)
	if !ok {
		t.Fatal("Minimize reported failure")
	}
	want := r3.Vec{X: 2, Y: 2, Z: 2}
	if r3.Norm(r3.Sub(pos, want)) > 1e-9 {
		t.Errorf("pos = %v, want %v", pos, want)
	}
	if residual != 0 {
		t.Errorf("residual = %g, want 0", residual)
	}
}

func TestMinimizeClampsToBox(t *testing.T) {
	var q QEF
	q.AddPlane(Plane{Point: r3.Vec{X: 50, Y: 0, Z: 0}, Normal: r3.Vec{X: 1}})
	q.AddPlane(Plane{Point: r3.Vec{X: 0, Y: 50, Z: 0}, Normal: r3.Vec{Y: 1}})
	q.AddPlane(Plane{Point: r3.Vec{X: 0, Y: 0, Z: 50}, Normal: r3.Vec{Z: 1}})

	box := Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	pos, _, ok := q.Minimize(box, 1e-10)
	if !ok {
		t.Fatal("Minimize reported failure")
	}
	if pos.X > 1 || pos.Y > 1 || pos.Z > 1 {
		t.Errorf("pos = %v not clamped to %v", pos, box)
	}
}

func TestMergePreservesSum(t *testing.T) {
	var a, b, combined QEF
	pa := Plane{Point: r3.Vec{X: 1}, Normal: r3.Vec{X: 1}}
	pb := Plane{Point: r3.Vec{Y: 1}, Normal: r3.Vec{Y: 1}}
	a.AddPlane(pa)
	b.AddPlane(pb)
	combined.AddPlane(pa)
	combined.AddPlane(pb)

	a.Merge(b)
	posA, resA, okA := a.Minimize(bigBox, 1e-10)
	posC, resC, okC := combined.Minimize(bigBox, 1e-10)
	if !okA || !okC {
		t.Fatal("Minimize reported failure")
	}
	if r3.Norm(r3.Sub(posA, posC)) > 1e-9 || math.Abs(resA-resC) > 1e-9 {
		t.Errorf("merged QEF diverged from directly-accumulated QEF: %v/%g vs %v/%g", posA, resA, posC, resC)
	}
}
