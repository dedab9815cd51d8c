package mdc

import (
	"context"

	"github.com/tessera3d/mdc/internal/cellconfig"
	"github.com/tessera3d/mdc/internal/geom"
	"github.com/tessera3d/mdc/internal/octreeid"
	"github.com/tessera3d/mdc/internal/qef"
	"gonum.org/v1/gonum/spatial/r3"
)

// collapseOctree performs the bottom-up adaptive simplification pass:
// level by level, group each 2x2x2 block of already-resolved children into
// a candidate parent, and collapse it to a single dual vertex when both
// the manifold test (the block's own disk criterion, evaluated at the
// coarser resolution) and the error test (merged QEF residual against
// (relativeError * edgeLength)^2) pass.
func collapseOctree(ctx context.Context, fn ImplicitFunction, g *cornerGrid, leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], relativeError float64) error {
	maxLevel := 0
	for (1 << uint(maxLevel+1)) <= minInt(g.nx, minInt(g.ny, g.nz)) {
		maxLevel++
	}

	for level := 1; level <= maxLevel; level++ {
		if ctx.Err() != nil {
			return newErr(Cancelled, "cancelled during octree collapse")
		}
		span := 1 << uint(level)
		for ox := 0; ox+span <= g.nx; ox += span {
			for oy := 0; oy+span <= g.ny; oy += span {
				for oz := 0; oz+span <= g.nz; oz += span {
					id := octreeid.CellID{X: int32(ox), Y: int32(oy), Z: int32(oz), Level: uint8(level)}
					tryCollapseNode(fn, g, leaves, nodes, id, span, relativeError)
				}
			}
		}
	}
	return nil
}

// tryCollapseNode attempts to collapse the node id (spanning span leaf
// cells per axis, whose 8 children are id.Child(0..7)). It always records
// its outcome in nodes when the region contains any surface, so ancestors
// can tell "no surface here" (nothing recorded) apart from "surface exists
// but did not simplify" (recorded, collapsed == false) -- the latter must
// block any further collapse above it.
func tryCollapseNode(fn ImplicitFunction, g *cornerGrid, leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], id octreeid.CellID, span int, relativeError float64) {
	var merged qef.QEF
	var normalSum r3.Vec
	count := 0
	blocked := false

	for oct := 0; oct < 8; oct++ {
		child := id.Child(oct)
		n, q, v, ok := childState(leaves, nodes, int(child.X), int(child.Y), int(child.Z), child.Level)
		if !ok {
			blocked = true
			continue
		}
		if n == 1 {
			merged.Merge(q)
			normalSum = r3.Add(normalSum, v.normal)
			count++
		}
	}

	if count == 0 && !blocked {
		return // empty region: nothing to record, parent treats it as blank too
	}
	if blocked {
		nodes.Set(id, &octreeNode{collapsed: false})
		return
	}

	cfg := nodeConfig(g, int(id.X), int(id.Y), int(id.Z), span)
	entry := cellconfig.Lookup(cfg)
	if entry.NumComponents() != 1 {
		nodes.Set(id, &octreeNode{collapsed: false})
		return
	}

	box := clampBoxForNode(g, int(id.X), int(id.Y), int(id.Z), span)
	pos, residual, ok := merged.Minimize(box, 1e-10)
	if !ok {
		nodes.Set(id, &octreeNode{collapsed: false})
		return
	}
	edgeLength := float64(span) * g.h
	limit := relativeError * edgeLength
	if residual > limit*limit {
		nodes.Set(id, &octreeNode{collapsed: false})
		return
	}

	n := fn.Normal(pos)
	if r3.Norm(n) == 0 {
		if r3.Norm(normalSum) != 0 {
			n = r3.Unit(normalSum)
		}
	}
	nodes.Set(id, &octreeNode{collapsed: true, vertex: dualVertex{pos: pos, normal: n}, q: merged})
}

// childState reports how many dual vertices the child block at (x,y,z,level)
// currently resolves to. n==1 means it is either a single-component leaf or
// a previously collapsed node, in which case q and v are its contribution.
// ok is false when the child's multiplicity is unresolved (a multi-component
// leaf, or a node whose own collapse attempt failed) and must therefore
// block any ancestor from collapsing over it.
func childState(leaves map[[3]int]*leafCell, nodes *octreeid.Store[*octreeNode], x, y, z int, level uint8) (n int, q qef.QEF, v dualVertex, ok bool) {
	if level == 0 {
		lc, found := leaves[[3]int{x, y, z}]
		if !found || len(lc.vertices) == 0 {
			return 0, qef.QEF{}, dualVertex{}, true
		}
		if len(lc.vertices) == 1 {
			return 1, lc.qefs[0], lc.vertices[0], true
		}
		return len(lc.vertices), qef.QEF{}, dualVertex{}, false
	}
	node, found := nodes.Get(octreeid.CellID{X: int32(x), Y: int32(y), Z: int32(z), Level: level})
	if !found {
		return 0, qef.QEF{}, dualVertex{}, true
	}
	if node.collapsed {
		return 1, node.q, node.vertex, true
	}
	return 2, qef.QEF{}, dualVertex{}, false
}

// nodeConfig reads the 8 grid corners bounding a span-sized node, reusing
// the same 256-entry table leaf cells use -- a node's boundary configuration
// is exactly the corner-sign pattern of its own 8 corners, regardless of
// how many leaf cells lie inside it.
func nodeConfig(g *cornerGrid, x, y, z, span int) cellconfig.Config {
	var cfg cellconfig.Config
	for c := 0; c < 8; c++ {
		dx, dy, dz := cellconfig.Corner(c)
		v := g.at(x+dx*span, y+dy*span, z+dz*span)
		if !isOutside(v) {
			cfg |= 1 << uint(c)
		}
	}
	return cfg
}

// clampBoxForNode mirrors clampBoxFor at an arbitrary node span.
func clampBoxForNode(g *cornerGrid, x, y, z, span int) qef.Box {
	min := g.pos(x, y, z)
	max := g.pos(x+span, y+span, z+span)
	b := geom.Box{Min: min, Max: max}.ScaleAboutCenter(1.5)
	return qef.Box{Min: b.Min, Max: b.Max}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
