package mdc

import (
	"context"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// cornerGrid holds every leaf-corner sample of the SDF over the dilated
// bounding box: (Nx+1)x(Ny+1)x(Nz+1) values for Nx*Ny*Nz leaf cells.
type cornerGrid struct {
	nx, ny, nz int
	origin     r3.Vec
	h          float64
	values     []float64
}

func (g *cornerGrid) idx(i, j, k int) int {
	return (i*(g.ny+1)+j)*(g.nz+1) + k
}

func (g *cornerGrid) at(i, j, k int) float64 {
	return g.values[g.idx(i, j, k)]
}

func (g *cornerGrid) pos(i, j, k int) r3.Vec {
	return r3.Add(g.origin, r3.Vec{
		X: float64(i) * g.h,
		Y: float64(j) * g.h,
		Z: float64(k) * g.h,
	})
}

// sampleGrid computes bbox' = fn.Bounds() dilated by at least one leaf
// cell, derives integer cell counts, and fills the corner grid in
// parallel: corner indices are split into contiguous, disjoint chunks
// (one per worker), so no synchronization is needed while sampling.
func sampleGrid(ctx context.Context, fn ImplicitFunction, h float64) (*cornerGrid, error) {
	bbox := fn.Bounds()
	if bbox.Empty() {
		return nil, newErr(InvalidParameter, "function bounding box has non-positive extent")
	}

	dilated := bbox.Dilate(h)
	size := dilated.Size()
	nx := int(size.X/h) + 1
	ny := int(size.Y/h) + 1
	nz := int(size.Z/h) + 1
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	if nz < 1 {
		nz = 1
	}

	g := &cornerGrid{
		nx:     nx,
		ny:     ny,
		nz:     nz,
		origin: dilated.Min,
		h:      h,
		values: make([]float64, (nx+1)*(ny+1)*(nz+1)),
	}

	if err := fillGridParallel(ctx, g, fn); err != nil {
		return nil, err
	}
	return g, nil
}

// fillGridParallel writes every corner value using a fixed pool of
// goroutines, each owning a contiguous, disjoint slab of X planes.
func fillGridParallel(ctx context.Context, g *cornerGrid, fn ImplicitFunction) error {
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
						p := g.pos(i, j, k)
						g.values[g.idx(i, j, k)] = fn.Value(p)
					}
				}
			}
		}(iStart, iEnd)
	}
	wg.Wait()

	if cancelled.get() || ctx.Err() != nil {
		return newErr(Cancelled, "cancelled during grid sampling")
	}
	return nil
}

// boolFlag is a tiny concurrency-safe flag for signaling cancellation
// across worker goroutines.
type boolFlag struct {
	mu  sync.Mutex
	val bool
}

func (f *boolFlag) set() {
	f.mu.Lock()
	f.val = true
	f.mu.Unlock()
}

func (f *boolFlag) get() bool {
	f.mu.Lock()
	v := f.val
	f.mu.Unlock()
	return v
}
