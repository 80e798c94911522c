package pipeline

import (
	"context"

	"github.com/gogpu/vectortile/canvas"
	"github.com/gogpu/vectortile/internal/parallel"
	"github.com/gogpu/vectortile/style"
)

// Pool dispatches independent FillTile calls across a fixed worker count,
// adapting the teacher's internal/parallel.WorkerPool (originally built for
// dispatching tile-raster work across a scene) to dispatch whole FillTile
// calls instead of sub-tile raster spans.
type Pool struct {
	workers *parallel.WorkerPool
	p       *Pipeline
}

// NewPool starts a pool of n workers rendering tiles via p.
func NewPool(p *Pipeline, n int) *Pool {
	return &Pool{workers: parallel.NewWorkerPool(n), p: p}
}

// Result is one tile's fill outcome, matched back to its request by index.
type Result struct {
	Raster     *canvas.Raster
	Placements []style.SymbolPlacement
	Err        error
}

// FillAll renders every descriptor/tileData pair concurrently across the
// pool and returns results in the same order as the input, blocking until
// all complete.
func (p *Pool) FillAll(ctx context.Context, descs []Descriptor, tiles [][]byte) []Result {
	results := make([]Result, len(descs))
	work := make([]func(), len(descs))
	for i := range descs {
		i := i
		work[i] = func() {
			r, placements, err := p.p.FillTile(ctx, descs[i], tiles[i])
			results[i] = Result{Raster: r, Placements: placements, Err: err}
		}
	}
	p.workers.ExecuteAll(work)
	return results
}

// Close shuts down the pool's workers. No further FillAll calls may be made.
func (p *Pool) Close() { p.workers.Close() }
