package mdc

import (
	"github.com/tessera3d/mdc/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImplicitFunction is the collaborator contract the tessellator consumes:
// any scalar field whose zero level set is the surface of interest,
// negative inside, extended with a Normal method since manifold dual
// contouring needs gradient information to build QEF planes.
type ImplicitFunction interface {
	// Bounds returns a bounding box that conservatively contains the zero
	// set. The tessellator dilates this box internally, but a bbox that
	// does not conservatively contain the surface produces
	// BoundingBoxTooSmall.
	Bounds() geom.Box
	// Value returns the signed distance (or any function sharing the same
	// zero set) at p. Negative means inside.
	Value(p r3.Vec) float64
	// Normal returns an outward-pointing, best-effort unit gradient
	// estimate at p. May return the zero vector if no good estimate is
	// available; the tessellator then falls back to central differences at
	// edge crossings and to the summed crossing normals at placed vertices.
	Normal(p r3.Vec) r3.Vec
}

// GenericFunc adapts a plain value function (plus an optional analytic
// normal function) to the ImplicitFunction contract via a small wrapper
// struct, for callers that only have a closure.
type GenericFunc struct {
	Box       geom.Box
	ValueFn   func(p r3.Vec) float64
	NormalFn  func(p r3.Vec) r3.Vec // optional; nil falls back to central differences
	finiteEps float64
}

// NewGenericFunc wraps an arbitrary scalar field as an ImplicitFunction.
// If normalFn is nil, Normal falls back to a central-difference estimate
// of valueFn's gradient.
func NewGenericFunc(bbox geom.Box, valueFn func(p r3.Vec) float64, normalFn func(p r3.Vec) r3.Vec) *GenericFunc {
	return &GenericFunc{Box: bbox, ValueFn: valueFn, NormalFn: normalFn, finiteEps: 1e-6}
}

func (g *GenericFunc) Bounds() geom.Box { return g.Box }

func (g *GenericFunc) Value(p r3.Vec) float64 { return g.ValueFn(p) }

func (g *GenericFunc) Normal(p r3.Vec) r3.Vec {
	if g.NormalFn != nil {
		return g.NormalFn(p)
	}
	return centralDiffNormal(g.ValueFn, p, g.finiteEps)
}

// centralDiffNormal estimates the gradient of f at p via central
// differences.
func centralDiffNormal(f func(p r3.Vec) float64, p r3.Vec, eps float64) r3.Vec {
	n := r3.Vec{
		X: f(r3.Add(p, r3.Vec{X: eps})) - f(r3.Add(p, r3.Vec{X: -eps})),
		Y: f(r3.Add(p, r3.Vec{Y: eps})) - f(r3.Add(p, r3.Vec{Y: -eps})),
		Z: f(r3.Add(p, r3.Vec{Z: eps})) - f(r3.Add(p, r3.Vec{Z: -eps})),
	}
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}
