package mdc

import (
	"github.com/tessera3d/mdc/internal/cellconfig"
	"github.com/tessera3d/mdc/internal/octreeid"
	"gonum.org/v1/gonum/spatial/r3"
)

// vertexKey identifies a placed dual vertex stably across every leaf edge
// that references it, so collapsed nodes and shared leaf vertices get
// exactly one entry in the output mesh.
type vertexKey struct {
	level   int
	x, y, z int32
	comp    int // only meaningful when level == 0
}

// meshBuilder accumulates deduplicated vertices/normals and emitted faces.
type meshBuilder struct {
	index map[vertexKey]int
	verts []r3.Vec
	norms []r3.Vec
	faces [][3]int
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{index: make(map[vertexKey]int)}
}

func (mb *meshBuilder) add(key vertexKey, v dualVertex) int {
	if idx, ok := mb.index[key]; ok {
		return idx
	}
	idx := len(mb.verts)
	mb.verts = append(mb.verts, v.pos)
	mb.norms = append(mb.norms, v.normal)
	mb.index[key] = idx
	return idx
}

func (mb *meshBuilder) triangle(a, b, c int) {
	if a == b || b == c || a == c {
		return
	}
	mb.faces = append(mb.faces, [3]int{a, b, c})
}

func (mb *meshBuilder) mesh() Mesh {
	return Mesh{Vertices: mb.verts, Normals: mb.norms, Faces: mb.faces}
}

// resolveVertex finds the vertex that currently represents leaf cell
// (cx,cy,cz)'s component comp: either the leaf's own vertex, or, if the
// leaf is a single-component cell that was swallowed by an octree collapse,
// the highest collapsed ancestor's vertex.
func resolveVertex(leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], maxLevel, cx, cy, cz, comp int) (vertexKey, dualVertex, bool) {
	lc, found := leaves[[3]int{cx, cy, cz}]
	if !found || comp < 0 || comp >= len(lc.vertices) {
		return vertexKey{}, dualVertex{}, false
	}
	if len(lc.vertices) != 1 {
		return vertexKey{level: 0, x: int32(cx), y: int32(cy), z: int32(cz), comp: comp}, lc.vertices[comp], true
	}

	best := lc.vertices[0]
	bestKey := vertexKey{level: 0, x: int32(cx), y: int32(cy), z: int32(cz)}
	id := octreeid.CellID{X: int32(cx), Y: int32(cy), Z: int32(cz), Level: 0}
	for level := 1; level <= maxLevel; level++ {
		id = id.Parent()
		node, ok := nodes.Get(id)
		if !ok || !node.collapsed {
			break
		}
		best = node.vertex
		bestKey = vertexKey{level: level, x: id.X, y: id.Y, z: id.Z}
	}
	return bestKey, best, true
}

// localEdgeIndex finds which of a cube's 12 local edges corresponds to the
// global grid edge running along ax from corner (i,j,k), given the cell's
// own min corner (cx,cy,cz).
func localEdgeIndex(cx, cy, cz, i, j, k int, ax axis) int {
	for e := 0; e < 12; e++ {
		c0, _, eax := cellconfig.EdgeInfo(e)
		if axis(eax) != ax {
			continue
		}
		dx, dy, dz := cellconfig.Corner(c0)
		if cx+dx == i && cy+dy == j && cz+dz == k {
			return e
		}
	}
	return -1
}

// emitMesh walks every active leaf edge and emits the quad (or triangle,
// once collapse has merged some of the surrounding vertices) formed by the
// up to four cells touching it.
func emitMesh(field *crossingField, leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], maxLevel int) Mesh {
	mb := newMeshBuilder()
	g := field.g

	for i := 0; i < g.nx; i++ {
		for j := 1; j < g.ny; j++ {
			for k := 1; k < g.nz; k++ {
				if c := field.xAt(i, j, k); c.valid {
					emitEdgeQuad(mb, leaves, nodes, maxLevel, axisX, i, j, k,
						[4][3]int{{i, j - 1, k - 1}, {i, j, k - 1}, {i, j, k}, {i, j - 1, k}},
						g.at(i, j, k) < g.at(i+1, j, k))
				}
			}
		}
	}
	for j := 0; j < g.ny; j++ {
		for i := 1; i < g.nx; i++ {
			for k := 1; k < g.nz; k++ {
				if c := field.yAt(i, j, k); c.valid {
					emitEdgeQuad(mb, leaves, nodes, maxLevel, axisY, i, j, k,
						[4][3]int{{i - 1, j, k}, {i, j, k}, {i, j, k - 1}, {i - 1, j, k - 1}},
						g.at(i, j, k) < g.at(i, j+1, k))
				}
			}
		}
	}
	for k := 0; k < g.nz; k++ {
		for i := 1; i < g.nx; i++ {
			for j := 1; j < g.ny; j++ {
				if c := field.zAt(i, j, k); c.valid {
					emitEdgeQuad(mb, leaves, nodes, maxLevel, axisZ, i, j, k,
						[4][3]int{{i - 1, j - 1, k}, {i, j - 1, k}, {i, j, k}, {i - 1, j, k}},
						g.at(i, j, k) < g.at(i, j, k+1))
				}
			}
		}
	}

	return mb.mesh()
}

// emitEdgeQuad resolves the (up to) four cells around one active edge to
// their current dual vertices, dedupes, and triangulates.
func emitEdgeQuad(mb *meshBuilder, leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], maxLevel int, ax axis, i, j, k int, cells [4][3]int, insideToOutside bool) {
	var keys [4]vertexKey
	var verts [4]dualVertex
	n := 0
	for _, cc := range cells {
		cx, cy, cz := cc[0], cc[1], cc[2]
		lc, found := leaves[[3]int{cx, cy, cz}]
		if !found {
			return
		}
		localE := localEdgeIndex(cx, cy, cz, i, j, k, ax)
		if localE < 0 {
			return
		}
		comp := lc.cfg.ComponentOf(localE)
		if comp < 0 {
			return
		}
		key, v, ok := resolveVertex(leaves, nodes, maxLevel, cx, cy, cz, comp)
		if !ok {
			return
		}
		keys[n] = key
		verts[n] = v
		n++
	}

	if !insideToOutside {
		keys[0], keys[1], keys[2], keys[3] = keys[3], keys[2], keys[1], keys[0]
		verts[0], verts[1], verts[2], verts[3] = verts[3], verts[2], verts[1], verts[0]
	}

	// Dedupe adjacent vertices merged by octree collapse into a shorter
	// polygon before triangulating.
	var polyKeys []vertexKey
	var polyVerts []dualVertex
	for idx := 0; idx < n; idx++ {
		if len(polyKeys) > 0 && polyKeys[len(polyKeys)-1] == keys[idx] {
			continue
		}
		polyKeys = append(polyKeys, keys[idx])
		polyVerts = append(polyVerts, verts[idx])
	}
	if len(polyKeys) > 1 && polyKeys[0] == polyKeys[len(polyKeys)-1] {
		polyKeys = polyKeys[:len(polyKeys)-1]
		polyVerts = polyVerts[:len(polyVerts)-1]
	}
	if len(polyKeys) < 3 {
		return
	}

	idxOf := make([]int, len(polyKeys))
	for m, key := range polyKeys {
		idxOf[m] = mb.add(key, polyVerts[m])
	}

	if len(idxOf) == 3 {
		mb.triangle(idxOf[0], idxOf[1], idxOf[2])
		return
	}
	if len(idxOf) == 4 {
		// Split along the shorter diagonal; ties break on the lower pair of
		// mesh vertex indices for a deterministic result when both
		// diagonals are equally valid.
		d02 := r3.Norm(r3.Sub(polyVerts[0].pos, polyVerts[2].pos))
		d13 := r3.Norm(r3.Sub(polyVerts[1].pos, polyVerts[3].pos))
		splitOn02 := d02 < d13
		if d02 == d13 {
			splitOn02 = minPair(idxOf[0], idxOf[2]) <= minPair(idxOf[1], idxOf[3])
		}
		if splitOn02 {
			mb.triangle(idxOf[0], idxOf[1], idxOf[2])
			mb.triangle(idxOf[0], idxOf[2], idxOf[3])
		} else {
			mb.triangle(idxOf[0], idxOf[1], idxOf[3])
			mb.triangle(idxOf[1], idxOf[2], idxOf[3])
		}
		return
	}
	// n-gon fallback (only reachable if more than 4 distinct vertices ever
	// surround one edge, which the cube topology does not produce): fan
	// from the first vertex.
	for m := 1; m+1 < len(idxOf); m++ {
		mb.triangle(idxOf[0], idxOf[m], idxOf[m+1])
	}
}

func minPair(a, b int) int {
	if a < b {
		return a
	}
	return b
}
