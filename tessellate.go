package mdc

import "context"

// Tessellate converts fn into a triangle Mesh using manifold dual
// contouring: fn is sampled on a grid of the given cellSize, active edges
// are found and turned into per-cell QEFs, dual vertices are placed and
// (when relativeError > 0) merged upward through an adaptive octree
// collapse bounded by relativeError, and the surviving vertices are
// stitched into triangles.
//
// cellSize must be positive and relativeError must be non-negative;
// relativeError == 0 disables collapse entirely, producing one dual vertex
// per active leaf-cell component. ctx may be used to cancel a long-running
// tessellation; on cancellation Tessellate returns a *TessellationError
// with Kind == Cancelled and no partial mesh.
func Tessellate(ctx context.Context, fn ImplicitFunction, cellSize, relativeError float64) (Mesh, error) {
	if fn == nil {
		return Mesh{}, newErr(InvalidParameter, "nil ImplicitFunction")
	}
	if cellSize <= 0 {
		return Mesh{}, newErr(InvalidParameter, "cellSize must be positive")
	}
	if relativeError < 0 {
		return Mesh{}, newErr(InvalidParameter, "relativeError must be non-negative")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	g, err := sampleGrid(ctx, fn, cellSize)
	if err != nil {
		return Mesh{}, err
	}

	field, err := detectCrossings(ctx, fn, g)
	if err != nil {
		return Mesh{}, err
	}

	leaves, nodes, err := buildDualVertices(ctx, fn, g, field, relativeError)
	if err != nil {
		return Mesh{}, err
	}

	maxLevel := 0
	for (1 << uint(maxLevel+1)) <= minInt(g.nx, minInt(g.ny, g.nz)) {
		maxLevel++
	}

	return emitMesh(field, leaves, nodes, maxLevel), nil
}
