package mdc

import (
	"math"

	"github.com/tessera3d/mdc/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Primitives implementing ImplicitFunction: a small unexported struct plus
// an exported constructor returning the interface type, following the
// well-known closed-form signed distance formulas for each shape.

// sphere3 is a sphere of a given radius centered at the origin.
type sphere3 struct {
	radius float64
}

// Sphere returns an ImplicitFunction for a sphere of the given radius
// centered at the origin.
func Sphere(radius float64) ImplicitFunction {
	return &sphere3{radius: radius}
}

func (s *sphere3) Bounds() geom.Box {
	r := r3.Vec{X: s.radius, Y: s.radius, Z: s.radius}
	return geom.Box{Min: r3.Scale(-1, r), Max: r}
}

func (s *sphere3) Value(p r3.Vec) float64 { return r3.Norm(p) - s.radius }

func (s *sphere3) Normal(p r3.Vec) r3.Vec {
	if r3.Norm(p) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(p)
}

// roundedBox3 is a box with half-extents Half and rounded corners of
// radius Round (Round == 0 gives an axis-aligned box with sharp corners).
type roundedBox3 struct {
	half  r3.Vec
	round float64
}

// RoundedBox returns an ImplicitFunction for a box of the given
// half-extents with corners rounded by round (0 for sharp corners).
func RoundedBox(half r3.Vec, round float64) ImplicitFunction {
	return &roundedBox3{half: half, round: round}
}

func (b *roundedBox3) Bounds() geom.Box {
	r := r3.Vec{X: b.round, Y: b.round, Z: b.round}
	return geom.Box{Min: r3.Sub(r3.Scale(-1, b.half), r), Max: r3.Add(b.half, r)}
}

func (b *roundedBox3) Value(p r3.Vec) float64 {
	q := r3.Sub(absElem(p), b.half)
	outside := r3.Vec{X: math.Max(q.X, 0), Y: math.Max(q.Y, 0), Z: math.Max(q.Z, 0)}
	inside := math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
	return r3.Norm(outside) + inside - b.round
}

func (b *roundedBox3) Normal(p r3.Vec) r3.Vec {
	return centralDiffNormal(b.Value, p, 1e-6)
}

// torus3 is a torus lying in the XY plane: majorR is the distance from the
// center of the tube to the center of the torus, minorR is the tube radius.
type torus3 struct {
	majorR, minorR float64
}

// Torus returns an ImplicitFunction for a torus centered at the origin,
// its axis of revolution along Z.
func Torus(majorR, minorR float64) ImplicitFunction {
	return &torus3{majorR: majorR, minorR: minorR}
}

func (t *torus3) Bounds() geom.Box {
	r := t.majorR + t.minorR
	return geom.Box{
		Min: r3.Vec{X: -r, Y: -r, Z: -t.minorR},
		Max: r3.Vec{X: r, Y: r, Z: t.minorR},
	}
}

func (t *torus3) Value(p r3.Vec) float64 {
	qx := math.Hypot(p.X, p.Y) - t.majorR
	return math.Hypot(qx, p.Z) - t.minorR
}

func (t *torus3) Normal(p r3.Vec) r3.Vec {
	return centralDiffNormal(t.Value, p, 1e-6)
}

// cylinder3 is a capped cylinder with its axis along Z, centered at the origin.
type cylinder3 struct {
	radius, halfHeight float64
}

// Cylinder returns an ImplicitFunction for a capped cylinder of the given
// radius and height, axis along Z, centered at the origin.
func Cylinder(radius, height float64) ImplicitFunction {
	return &cylinder3{radius: radius, halfHeight: height / 2}
}

func (c *cylinder3) Bounds() geom.Box {
	return geom.Box{
		Min: r3.Vec{X: -c.radius, Y: -c.radius, Z: -c.halfHeight},
		Max: r3.Vec{X: c.radius, Y: c.radius, Z: c.halfHeight},
	}
}

func (c *cylinder3) Value(p r3.Vec) float64 {
	dr := math.Hypot(p.X, p.Y) - c.radius
	dz := math.Abs(p.Z) - c.halfHeight
	outside := math.Hypot(math.Max(dr, 0), math.Max(dz, 0))
	inside := math.Min(math.Max(dr, dz), 0)
	return outside + inside
}

func (c *cylinder3) Normal(p r3.Vec) r3.Vec {
	return centralDiffNormal(c.Value, p, 1e-6)
}

// gyroid3 is a triply-periodic gyroid minimal surface: the level set
// F(p) = threshold, where F = sin(x)cos(y)+sin(y)cos(z)+sin(z)cos(x),
// intersected with bbox so that the box faces close it.
// threshold == 0 gives the classic single-sheet gyroid.
type gyroid3 struct {
	bbox      geom.Box
	threshold float64
}

// Gyroid returns an ImplicitFunction for a gyroid surface restricted to
// bbox (its zero set is unbounded, so a bbox is mandatory to close it).
func Gyroid(bbox geom.Box, threshold float64) ImplicitFunction {
	return &gyroid3{bbox: geom.NewBox(bbox.Min, bbox.Max), threshold: threshold}
}

func (g *gyroid3) Bounds() geom.Box { return g.bbox }

func (g *gyroid3) Value(p r3.Vec) float64 {
	v := math.Sin(p.X)*math.Cos(p.Y) + math.Sin(p.Y)*math.Cos(p.Z) + math.Sin(p.Z)*math.Cos(p.X)
	clip := (&roundedBox3{half: r3.Scale(0.5, g.bbox.Size())}).Value(r3.Sub(p, g.bbox.Center()))
	return math.Max(v-g.threshold, clip)
}

func (g *gyroid3) Normal(p r3.Vec) r3.Vec {
	return centralDiffNormal(g.Value, p, 1e-4)
}

// schwarzP3 is a triply-periodic Schwarz P minimal surface: the level set
// F(p) = threshold, where F = cos(x)+cos(y)+cos(z), intersected with bbox.
type schwarzP3 struct {
	bbox      geom.Box
	threshold float64
}

// SchwarzP returns an ImplicitFunction for a Schwarz P surface restricted
// to bbox.
func SchwarzP(bbox geom.Box, threshold float64) ImplicitFunction {
	return &schwarzP3{bbox: geom.NewBox(bbox.Min, bbox.Max), threshold: threshold}
}

func (s *schwarzP3) Bounds() geom.Box { return s.bbox }

func (s *schwarzP3) Value(p r3.Vec) float64 {
	v := math.Cos(p.X) + math.Cos(p.Y) + math.Cos(p.Z)
	clip := (&roundedBox3{half: r3.Scale(0.5, s.bbox.Size())}).Value(r3.Sub(p, s.bbox.Center()))
	return math.Max(v-s.threshold, clip)
}

func (s *schwarzP3) Normal(p r3.Vec) r3.Vec {
	return centralDiffNormal(s.Value, p, 1e-4)
}

func absElem(v r3.Vec) r3.Vec {
	return r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}
}
