package mdc

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnionIsMinimum(t *testing.T) {
	a := Sphere(1)
	b := Translate(Sphere(1), r3.Vec{X: 3})
	u := Union(a, b)

	p := r3.Vec{}
	if got, want := u.Value(p), a.Value(p); got != want {
		t.Errorf("Union.Value(%v) = %g, want %g (a's value)", p, got, want)
	}
	q := r3.Vec{X: 3}
	if got, want := u.Value(q), b.Value(q); got != want {
		t.Errorf("Union.Value(%v) = %g, want %g (b's value)", q, got, want)
	}
}

func TestUnionPanicsOnTooFewArgs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic with < 2 arguments")
		}
	}()
	Union(Sphere(1))
}

func TestIntersectIsMaximum(t *testing.T) {
	a := Sphere(2)
	b := Sphere(1)
	s := Intersect(a, b)
	p := r3.Vec{X: 1.5}
	if got, want := s.Value(p), b.Value(p); got != want {
		t.Errorf("Intersect.Value(%v) = %g, want b's value %g", p, got, want)
	}
}

func TestDifferenceRemovesInterior(t *testing.T) {
	a := Sphere(2)
	b := Sphere(1)
	d := Difference(a, b)
	if v := d.Value(r3.Vec{}); v < 0 {
		t.Errorf("Difference.Value(origin) = %g, want >= 0 (carved out)", v)
	}
	if v := d.Value(r3.Vec{X: 1.5}); v >= 0 {
		t.Errorf("Difference.Value(1.5,0,0) = %g, want < 0 (still inside shell)", v)
	}
}

func TestTranslateShiftsBoundsAndValue(t *testing.T) {
	s := Sphere(1)
	off := r3.Vec{X: 5, Y: -2, Z: 1}
	tr := Translate(s, off)

	if got, want := tr.Value(off), s.Value(r3.Vec{}); got != want {
		t.Errorf("Translate.Value(offset) = %g, want %g", got, want)
	}
	b := tr.Bounds()
	if b.Min.X != -1+off.X || b.Max.X != 1+off.X {
		t.Errorf("Translate.Bounds() = %+v, not shifted by %v", b, off)
	}
}
