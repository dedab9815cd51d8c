package mdc

import (
	"math"

	"github.com/tessera3d/mdc/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Combinators: union3, diff3, intersection3 and translate3. Each keeps
// bounding-box composition cheap (min/max of the operand boxes) rather
// than recomputing a tight box from the composed value function.

// union3 is the union of two or more ImplicitFunctions: min(a, b, ...).
type union3 struct {
	fns []ImplicitFunction
	bb  geom.Box
}

// Union returns the union of two or more ImplicitFunctions. Panics if
// fewer than two are given or if any is nil.
func Union(fns ...ImplicitFunction) ImplicitFunction {
	if len(fns) < 2 {
		panic("mdc: Union requires at least 2 functions")
	}
	bb := fns[0].Bounds()
	for _, f := range fns {
		if f == nil {
			panic("mdc: nil argument to Union")
		}
		bb = bb.Union(f.Bounds())
	}
	return &union3{fns: fns, bb: bb}
}

func (u *union3) Value(p r3.Vec) float64 {
	d := u.fns[0].Value(p)
	for _, f := range u.fns[1:] {
		d = math.Min(d, f.Value(p))
	}
	return d
}

func (u *union3) Bounds() geom.Box { return u.bb }

func (u *union3) Normal(p r3.Vec) r3.Vec {
	// The active branch at p owns the normal; composed shapes only
	// guarantee a best-effort direction.
	best, bestVal := u.fns[0], u.fns[0].Value(p)
	for _, f := range u.fns[1:] {
		if v := f.Value(p); v < bestVal {
			best, bestVal = f, v
		}
	}
	return best.Normal(p)
}

// intersection3 is the intersection of two ImplicitFunctions: max(a, b).
type intersection3 struct {
	a, b ImplicitFunction
	bb   geom.Box
}

// Intersect returns the intersection of two ImplicitFunctions.
func Intersect(a, b ImplicitFunction) ImplicitFunction {
	if a == nil || b == nil {
		panic("mdc: nil argument to Intersect")
	}
	return &intersection3{a: a, b: b, bb: a.Bounds().Union(b.Bounds())}
}

func (s *intersection3) Value(p r3.Vec) float64 { return math.Max(s.a.Value(p), s.b.Value(p)) }

func (s *intersection3) Bounds() geom.Box { return s.bb }

func (s *intersection3) Normal(p r3.Vec) r3.Vec {
	if s.a.Value(p) > s.b.Value(p) {
		return s.a.Normal(p)
	}
	return s.b.Normal(p)
}

// diff3 is the difference a - b: max(a, -b).
type diff3 struct {
	a, b ImplicitFunction
	bb   geom.Box
}

// Difference returns the ImplicitFunction for a minus b. The bounding
// box is a's: a-b is a subset of a, so a's box already conservatively
// contains it.
func Difference(a, b ImplicitFunction) ImplicitFunction {
	if a == nil || b == nil {
		panic("mdc: nil argument to Difference")
	}
	return &diff3{a: a, b: b, bb: a.Bounds()}
}

func (s *diff3) Value(p r3.Vec) float64 { return math.Max(s.a.Value(p), -s.b.Value(p)) }

func (s *diff3) Bounds() geom.Box { return s.bb }

func (s *diff3) Normal(p r3.Vec) r3.Vec {
	if s.a.Value(p) > -s.b.Value(p) {
		return s.a.Normal(p)
	}
	return r3.Scale(-1, s.b.Normal(p))
}

// translate3 offsets an ImplicitFunction by a translation vector.
type translate3 struct {
	fn     ImplicitFunction
	offset r3.Vec
	bb     geom.Box
}

// Translate returns fn translated by offset, mirroring sdf3.go's
// transform3/Transform3D pattern specialized to pure translation (the
// inverse transform for a translation is just subtraction, so no matrix
// inverse is needed).
func Translate(fn ImplicitFunction, offset r3.Vec) ImplicitFunction {
	if fn == nil {
		panic("mdc: nil argument to Translate")
	}
	bb := fn.Bounds()
	return &translate3{
		fn:     fn,
		offset: offset,
		bb:     geom.Box{Min: r3.Add(bb.Min, offset), Max: r3.Add(bb.Max, offset)},
	}
}

func (t *translate3) Value(p r3.Vec) float64 { return t.fn.Value(r3.Sub(p, t.offset)) }

func (t *translate3) Bounds() geom.Box { return t.bb }

func (t *translate3) Normal(p r3.Vec) r3.Vec { return t.fn.Normal(r3.Sub(p, t.offset)) }
