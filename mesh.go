package mdc

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is the tessellator's output: a deduplicated vertex array, a
// parallel normal array, and a triangle index array.
type Mesh struct {
	Vertices []r3.Vec
	Normals  []r3.Vec
	Faces    [][3]int
}

// dualVertex is one placed MDC vertex: its final (clamped) position and
// the outward normal sampled there. meshBuilder assigns it a stable
// Mesh.Vertices index only once it is actually emitted.
type dualVertex struct {
	pos    r3.Vec
	normal r3.Vec
}
