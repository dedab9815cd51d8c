// Package mdc converts a signed distance function into a triangle mesh
// approximating its zero level set using Manifold Dual Contouring
// (Schaefer, Ju & Warren, 2007), extended with adaptive octree
// simplification controlled by a relative error threshold.
//
// The public entry point is Tessellate. Everything else -- grid sampling,
// edge-crossing detection, QEF assembly and minimization, the manifold
// disk criterion, and adaptive octree collapse -- is an internal stage of
// that one call.
package mdc
