package mdc

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/tessera3d/mdc/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// axis identifies which grid axis a cube edge runs along.
type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

// edgeCrossing is one active-edge zero crossing.
type edgeCrossing struct {
	valid  bool
	t      float64 // position along the edge, in [0,1]
	pos    r3.Vec
	normal r3.Vec // zero vector if no usable normal could be estimated
}

// crossingField holds every active-edge crossing on the grid, addressed by
// the (i,j,k) index of the edge's lesser corner and its axis.
type crossingField struct {
	g      *cornerGrid
	xEdges []edgeCrossing // (nx)   x (ny+1) x (nz+1)
	yEdges []edgeCrossing // (nx+1) x (ny)   x (nz+1)
	zEdges []edgeCrossing // (nx+1) x (ny+1) x (nz)
}

func (c *crossingField) xAt(i, j, k int) *edgeCrossing {
	return &c.xEdges[(i*(c.g.ny+1)+j)*(c.g.nz+1)+k]
}
func (c *crossingField) yAt(i, j, k int) *edgeCrossing {
	return &c.yEdges[(i*c.g.ny+j)*(c.g.nz+1)+k]
}
func (c *crossingField) zAt(i, j, k int) *edgeCrossing {
	return &c.zEdges[(i*(c.g.ny+1)+j)*c.g.nz+k]
}

// at returns the crossing for the edge starting at corner (i,j,k) running
// along ax.
func (c *crossingField) at(i, j, k int, ax axis) *edgeCrossing {
	switch ax {
	case axisX:
		return c.xAt(i, j, k)
	case axisY:
		return c.yAt(i, j, k)
	default:
		return c.zAt(i, j, k)
	}
}

// detectCrossings walks every leaf edge of the corner grid, recording
// an EdgeCrossing wherever the endpoint samples strictly disagree in sign.
// Work is split into disjoint X-slabs across a worker pool, mirroring
// sampleGrid's chunking.
func detectCrossings(ctx context.Context, fn ImplicitFunction, g *cornerGrid) (*crossingField, error) {
	c := &crossingField{
		g:      g,
		xEdges: make([]edgeCrossing, g.nx*(g.ny+1)*(g.nz+1)),
		yEdges: make([]edgeCrossing, (g.nx+1)*g.ny*(g.nz+1)),
		zEdges: make([]edgeCrossing, (g.nx+1)*(g.ny+1)*g.nz),
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > g.nx+1 {
		workers = g.nx + 1
	}
	if workers < 1 {
		workers = 1
	}
	planesPerWorker := (g.nx + 1 + workers - 1) / workers

	var wg sync.WaitGroup
	var cancelled boolFlag
	var onBoundary boolFlag

	for w := 0; w < workers; w++ {
		iStart := w * planesPerWorker
		iEnd := iStart + planesPerWorker
		if iEnd > g.nx+1 {
			iEnd = g.nx + 1
		}
		if iStart >= iEnd {
			continue
		}
		wg.Add(1)
		go func(iStart, iEnd int) {
			defer wg.Done()
			for i := iStart; i < iEnd; i++ {
				if i%4 == 0 && ctx.Err() != nil {
					cancelled.set()
					return
				}
				for j := 0; j <= g.ny; j++ {
					for k := 0; k <= g.nz; k++ {
						if i < g.nx {
							if fillCrossing(fn, g, c.xAt(i, j, k), i, j, k, i+1, j, k) {
								if onGridBoundary(g, i, j, k) || onGridBoundary(g, i+1, j, k) {
									onBoundary.set()
								}
							}
						}
						if j < g.ny {
							if fillCrossing(fn, g, c.yAt(i, j, k), i, j, k, i, j+1, k) {
								if onGridBoundary(g, i, j, k) || onGridBoundary(g, i, j+1, k) {
									onBoundary.set()
								}
							}
						}
						if k < g.nz {
							if fillCrossing(fn, g, c.zAt(i, j, k), i, j, k, i, j, k+1) {
								if onGridBoundary(g, i, j, k) || onGridBoundary(g, i, j, k+1) {
									onBoundary.set()
								}
							}
						}
					}
				}
			}
		}(iStart, iEnd)
	}
	wg.Wait()

	if cancelled.get() || ctx.Err() != nil {
		return nil, newErr(Cancelled, "cancelled during edge crossing detection")
	}
	if onBoundary.get() {
		return nil, newErr(BoundingBoxTooSmall, "sign change detected on outer grid layer; function bounds are not conservative")
	}
	return c, nil
}

// onGridBoundary reports whether corner (i,j,k) lies on the outer shell of
// the sampled grid.
func onGridBoundary(g *cornerGrid, i, j, k int) bool {
	return i == 0 || i == g.nx || j == 0 || j == g.ny || k == 0 || k == g.nz
}

// isOutside applies the tie-break rule: a sample of exactly zero counts as
// positive (outside).
func isOutside(v float64) bool { return v >= 0 }

// fillCrossing computes the crossing for the edge between corners
// (i0,j0,k0) and (i1,j1,k1), if any, and reports whether it found one.
func fillCrossing(fn ImplicitFunction, g *cornerGrid, dst *edgeCrossing, i0, j0, k0, i1, j1, k1 int) bool {
	v0 := g.at(i0, j0, k0)
	v1 := g.at(i1, j1, k1)
	if isOutside(v0) == isOutside(v1) {
		return false
	}
	t := geom.Clamp(v0/(v0-v1), 0, 1)
	p0 := g.pos(i0, j0, k0)
	p1 := g.pos(i1, j1, k1)
	pos := r3.Vec{X: geom.Mix(p0.X, p1.X, t), Y: geom.Mix(p0.Y, p1.Y, t), Z: geom.Mix(p0.Z, p1.Z, t)}

	n := fn.Normal(pos)
	if r3.Norm(n) == 0 {
		step := math.Max(g.h*1e-3, 1e-9)
		n = centralDiffNormal(fn.Value, pos, step)
	}

	dst.valid = true
	dst.t = t
	dst.pos = pos
	dst.normal = n // may still be zero; qef.AddMassPoint is used for those
	return true
}
