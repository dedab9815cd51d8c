// Package geom holds the small numeric and bounding-box helpers shared by
// the sampler, the QEF assembler and the octree collapse: a thin wrapper
// over gonum's r3 types rather than a full-blown vector-math library.
package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned bounding box with Min <= Max componentwise.
type Box struct {
	Min, Max r3.Vec
}

// NewBox returns the box spanning min and max, reordering components so
// that the invariant Min <= Max holds even if the arguments don't.
func NewBox(min, max r3.Vec) Box {
	return Box{
		Min: r3.Vec{X: minf(min.X, max.X), Y: minf(min.Y, max.Y), Z: minf(min.Z, max.Z)},
		Max: r3.Vec{X: maxf(min.X, max.X), Y: maxf(min.Y, max.Y), Z: maxf(min.Z, max.Z)},
	}
}

// Size returns the extent of the box on each axis.
func (b Box) Size() r3.Vec { return r3.Sub(b.Max, b.Min) }

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec { return r3.Scale(0.5, r3.Add(b.Min, b.Max)) }

// Empty reports whether the box has non-positive extent on any axis.
func (b Box) Empty() bool {
	sz := b.Size()
	return sz.X <= 0 || sz.Y <= 0 || sz.Z <= 0
}

// Dilate expands the box outward by d on every axis (2d added to each side length).
func (b Box) Dilate(d float64) Box {
	v := r3.Vec{X: d, Y: d, Z: d}
	return Box{Min: r3.Sub(b.Min, v), Max: r3.Add(b.Max, v)}
}

// ScaleAboutCenter scales the box by k about its own center.
func (b Box) ScaleAboutCenter(k float64) Box {
	c := b.Center()
	half := r3.Scale(0.5*k, b.Size())
	return Box{Min: r3.Sub(c, half), Max: r3.Add(c, half)}
}

// Contains reports whether p lies within the box, bounds inclusive.
func (b Box) Contains(p r3.Vec) bool {
	return b.Min.X <= p.X && b.Min.Y <= p.Y && b.Min.Z <= p.Z &&
		p.X <= b.Max.X && p.Y <= b.Max.Y && p.Z <= b.Max.Z
}

// Union returns the smallest box containing both a and b.
func (a Box) Union(b Box) Box {
	return Box{
		Min: r3.Vec{X: minf(a.Min.X, b.Min.X), Y: minf(a.Min.Y, b.Min.Y), Z: minf(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: maxf(a.Max.X, b.Max.X), Y: maxf(a.Max.Y, b.Max.Y), Z: maxf(a.Max.Z, b.Max.Z)},
	}
}

// Clamp returns p moved onto the closest point within the box.
func (b Box) Clamp(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: Clamp(p.X, b.Min.X, b.Max.X),
		Y: Clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: Clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
