package mdc

import (
	"context"

	"github.com/tessera3d/mdc/internal/cellconfig"
	"github.com/tessera3d/mdc/internal/geom"
	"github.com/tessera3d/mdc/internal/octreeid"
	"github.com/tessera3d/mdc/internal/qef"
	"gonum.org/v1/gonum/spatial/r3"
)

// leafCell is the per-leaf-cell state built directly from the corner grid
// and edge crossings: its configuration and one dualVertex candidate per
// manifold dual contouring component.
type leafCell struct {
	cfg      cellconfig.Entry
	vertices []dualVertex // one per component, len == cfg.NumComponents()
	qefs     []qef.QEF    // parallel to vertices, kept for octree aggregation
}

// octreeNode is an internal (level >= 1) node of the implicit octree built
// bottom-up over the leaf grid.
type octreeNode struct {
	collapsed bool // true once this node has replaced its subtree with one vertex
	vertex    dualVertex
	q         qef.QEF
}

// buildDualVertices runs the MDC core: per-cell vertex-count determination
// via the disk criterion, QEF minimization per dual vertex, and -- when
// relativeError > 0 -- adaptive bottom-up octree collapse.
//
// It returns the sparse leaf table (always populated) and the sparse
// octree-node table (empty when relativeError == 0; otherwise it holds every
// node whose region contains surface, with collapsed == false for nodes
// whose collapse was refused).
func buildDualVertices(ctx context.Context, fn ImplicitFunction, g *cornerGrid, field *crossingField, relativeError float64) (map[[3]int]*leafCell, *octreeid.Store[*octreeNode], error) {
	leaves := make(map[[3]int]*leafCell, g.nx*g.ny*g.nz)

	for i := 0; i < g.nx; i++ {
		if i%8 == 0 && ctx.Err() != nil {
			return nil, nil, newErr(Cancelled, "cancelled during QEF assembly")
		}
		for j := 0; j < g.ny; j++ {
			for k := 0; k < g.nz; k++ {
				cfg := cellConfig(g, i, j, k)
				entry := cellconfig.Lookup(cfg)
				if entry.NumComponents() == 0 {
					continue
				}
				lc := &leafCell{cfg: entry}
				for _, comp := range entry.Components {
					q := assembleComponentQEF(field, i, j, k, comp)
					pos, _, ok := q.Minimize(clampBoxFor(g, i, j, k), 1e-10)
					if !ok {
						return nil, nil, newErr(NumericalFailure, "QEF minimization failed to converge")
					}
					n := fn.Normal(pos)
					if r3.Norm(n) == 0 {
						n = massPointNormal(field, i, j, k, comp, q)
					}
					lc.vertices = append(lc.vertices, dualVertex{pos: pos, normal: n})
					lc.qefs = append(lc.qefs, q)
				}
				leaves[[3]int{i, j, k}] = lc
			}
		}
	}

	nodes := octreeid.NewStore[*octreeNode]()
	if relativeError > 0 {
		if err := collapseOctree(ctx, fn, g, leaves, nodes, relativeError); err != nil {
			return nil, nil, err
		}
	}
	return leaves, nodes, nil
}

// cellConfig reads the 8 corner signs of leaf cell (i,j,k) into a
// cellconfig.Config, per the fixed corner bit layout (bit0=X,bit1=Y,bit2=Z).
func cellConfig(g *cornerGrid, i, j, k int) cellconfig.Config {
	var cfg cellconfig.Config
	for c := 0; c < 8; c++ {
		dx, dy, dz := cellconfig.Corner(c)
		v := g.at(i+dx, j+dy, k+dz)
		if !isOutside(v) {
			cfg |= 1 << uint(c)
		}
	}
	return cfg
}

// assembleComponentQEF sums the plane (or mass-point-only) contribution of
// every active edge in comp's bitmask, at leaf cell (i,j,k).
func assembleComponentQEF(field *crossingField, i, j, k int, comp uint16) qef.QEF {
	var q qef.QEF
	for e := 0; e < 12; e++ {
		if comp&(1<<uint(e)) == 0 {
			continue
		}
		c0, _, ax := cellconfig.EdgeInfo(e)
		dx, dy, dz := cellconfig.Corner(c0)
		gi, gj, gk := i+dx, j+dy, k+dz
		crossing := field.at(gi, gj, gk, axis(ax))
		if !crossing.valid {
			continue
		}
		if r3.Norm(crossing.normal) == 0 {
			q.AddMassPoint(crossing.pos)
			continue
		}
		q.AddPlane(qef.Plane{Point: crossing.pos, Normal: crossing.normal})
	}
	return q
}

// massPointNormal falls back to the (unit) sum of contributing crossing
// normals when the SDF's own normal at the placed vertex vanishes.
func massPointNormal(field *crossingField, i, j, k int, comp uint16, q qef.QEF) r3.Vec {
	var sum r3.Vec
	for e := 0; e < 12; e++ {
		if comp&(1<<uint(e)) == 0 {
			continue
		}
		c0, _, ax := cellconfig.EdgeInfo(e)
		dx, dy, dz := cellconfig.Corner(c0)
		crossing := field.at(i+dx, j+dy, k+dz, axis(ax))
		if crossing.valid {
			sum = r3.Add(sum, crossing.normal)
		}
	}
	if r3.Norm(sum) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(sum)
}

// clampBoxFor returns leaf cell (i,j,k)'s axis-aligned box expanded by 1.5x
// about its center, bounding how far QEF minimization may extrapolate a
// vertex away from the cell it belongs to.
func clampBoxFor(g *cornerGrid, i, j, k int) qef.Box {
	min := g.pos(i, j, k)
	max := g.pos(i+1, j+1, k+1)
	b := geom.Box{Min: min, Max: max}.ScaleAboutCenter(1.5)
	return qef.Box{Min: b.Min, Max: b.Max}
}
