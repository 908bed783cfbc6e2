// Package solver computes steady-state temperature fields for the 2D heat
// equation with Jacobi iteration, producing grids for the visualisers.
package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/timeutil"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

// progressEvery is the iteration interval for trace progress lines.
const progressEvery = 100

// Params configures a solve. Boundary cells are held at BoundaryTemp and
// the interior starts at zero.
type Params struct {
	NX, NY       int
	MaxIter      int
	Tolerance    float64
	BoundaryTemp float64
	Workers      int

	// Clock times the solve; nil uses the wall clock.
	Clock timeutil.Clock
}

// ParamsFromConfig resolves a SolverConfig, applying its defaults.
func ParamsFromConfig(cfg *config.SolverConfig) Params {
	return Params{
		NX:           cfg.GetNX(),
		NY:           cfg.GetNY(),
		MaxIter:      cfg.GetMaxIter(),
		Tolerance:    cfg.GetTolerance(),
		BoundaryTemp: cfg.GetBoundaryTemp(),
		Workers:      cfg.GetWorkers(),
	}
}

func (p Params) validate() error {
	if p.NX < 3 || p.NY < 3 {
		return fmt.Errorf("grid must be at least 3x3, got %dx%d", p.NX, p.NY)
	}
	if p.MaxIter < 1 {
		return fmt.Errorf("max iterations must be positive, got %d", p.MaxIter)
	}
	if p.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", p.Tolerance)
	}
	return nil
}

// Result is the outcome of a solve.
type Result struct {
	Grid       *vtkgrid.ScalarGrid
	Iterations int
	Converged  bool
	MaxDiff    float64 // largest update in the final iteration
	Elapsed    time.Duration
	Workers    int
}

// band is a contiguous range of interior rows [y0, y1).
type band struct{ y0, y1 int }

// splitRows divides the interior rows among at most workers bands. The
// last band absorbs the remainder.
func splitRows(ny, workers int) []band {
	interior := ny - 2
	if workers < 1 {
		workers = 1
	}
	if workers > interior {
		workers = interior
	}
	per := interior / workers
	bands := make([]band, workers)
	for i := range bands {
		y0 := 1 + i*per
		y1 := y0 + per
		if i == workers-1 {
			y1 = ny - 1
		}
		bands[i] = band{y0, y1}
	}
	return bands
}

// Solve runs Jacobi iterations until the largest per-cell update drops
// below the tolerance or MaxIter is reached. With Workers > 1 the interior
// rows are split into bands computed concurrently; the result does not
// depend on the worker count. ctx is checked between iterations.
func Solve(ctx context.Context, p Params) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	clock := timeutil.Or(p.Clock)
	start := clock.Now()
	nx, ny := p.NX, p.NY
	u := make([]float64, nx*ny)
	next := make([]float64, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if x == 0 || x == nx-1 || y == 0 || y == ny-1 {
				u[y*nx+x] = p.BoundaryTemp
				next[y*nx+x] = p.BoundaryTemp
			}
		}
	}

	bands := splitRows(ny, p.Workers)
	bandMax := make([]float64, len(bands))
	res := &Result{Workers: len(bands)}

	diag.Diagf("solving %dx%d grid with %d band(s), max_iter=%d tol=%g", nx, ny, len(bands), p.MaxIter, p.Tolerance)

	for iter := 0; iter < p.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solve cancelled after %d iterations: %w", iter, err)
		}

		if len(bands) == 1 {
			bandMax[0] = relaxBand(u, next, nx, bands[0])
		} else {
			var g errgroup.Group
			g.SetLimit(len(bands))
			for i, b := range bands {
				g.Go(func() error {
					bandMax[i] = relaxBand(u, next, nx, b)
					return nil
				})
			}
			_ = g.Wait()
		}

		maxDiff := 0.0
		for _, m := range bandMax {
			maxDiff = math.Max(maxDiff, m)
		}
		u, next = next, u
		res.Iterations = iter + 1
		res.MaxDiff = maxDiff

		if iter%progressEvery == 0 {
			diag.Tracef("iteration %d, max_diff = %e", iter, maxDiff)
		}
		if maxDiff < p.Tolerance {
			res.Converged = true
			diag.Diagf("converged after %d iterations", res.Iterations)
			break
		}
	}
	if !res.Converged {
		diag.Diagf("reached maximum iterations (%d) without convergence, max_diff = %e", p.MaxIter, res.MaxDiff)
	}

	grid, err := vtkgrid.New(nx, ny, u)
	if err != nil {
		return nil, err
	}
	res.Grid = grid
	res.Elapsed = clock.Since(start)
	return res, nil
}

// relaxBand writes the four-neighbour average of u into next for the rows
// of b and returns the largest absolute change.
func relaxBand(u, next []float64, nx int, b band) float64 {
	maxDiff := 0.0
	for y := b.y0; y < b.y1; y++ {
		row := y * nx
		for x := 1; x < nx-1; x++ {
			i := row + x
			v := 0.25 * (u[i+1] + u[i-1] + u[i+nx] + u[i-nx])
			next[i] = v
			if d := math.Abs(v - u[i]); d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff
}
