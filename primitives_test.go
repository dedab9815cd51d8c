package mdc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphereValue(t *testing.T) {
	s := Sphere(2.0)
	cases := []struct {
		p    r3.Vec
		want float64
	}{
		{r3.Vec{}, -2},
		{r3.Vec{X: 2}, 0},
		{r3.Vec{X: 4}, 2},
	}
	for _, c := range cases {
		if got := s.Value(c.p); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Value(%v) = %g, want %g", c.p, got, c.want)
		}
	}
}

func TestSphereNormalPointsOutward(t *testing.T) {
	s := Sphere(1.0)
	p := r3.Vec{X: 0.6, Y: 0.8}
	n := s.Normal(p)
	if math.Abs(r3.Norm(n)-1) > 1e-9 {
		t.Fatalf("Normal(%v) is not unit length: %v", p, n)
	}
	if r3.Dot(n, p) < 0 {
		t.Errorf("Normal(%v) = %v points inward", p, n)
	}
}

func TestSphereBoundsContainsSurface(t *testing.T) {
	s := Sphere(3.0)
	b := s.Bounds()
	pts := []r3.Vec{{X: 3}, {X: -3}, {Y: 3}, {Y: -3}, {Z: 3}, {Z: -3}}
	for _, p := range pts {
		if !b.Contains(p) {
			t.Errorf("Bounds() = %+v does not contain surface point %v", b, p)
		}
	}
}

func TestRoundedBoxSharpCorner(t *testing.T) {
	half := r3.Vec{X: 1, Y: 1, Z: 1}
	b := RoundedBox(half, 0)
	corner := r3.Vec{X: 1, Y: 1, Z: 1}
	if v := b.Value(corner); math.Abs(v) > 1e-9 {
		t.Errorf("Value(corner) = %g, want 0", v)
	}
	if v := b.Value(r3.Vec{}); v >= 0 {
		t.Errorf("Value(origin) = %g, want negative (inside)", v)
	}
}

func TestTorusValue(t *testing.T) {
	tr := Torus(2, 0.5)
	// The tube center circle: distance from major radius is 0, so the
	// surface sits exactly minorR away.
	onAxis := r3.Vec{X: 2.5}
	if v := tr.Value(onAxis); math.Abs(v) > 1e-9 {
		t.Errorf("Value(%v) = %g, want 0 (on tube surface)", onAxis, v)
	}
}
