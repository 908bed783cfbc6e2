package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/timeutil"
)

func smallParams(workers int) Params {
	return Params{NX: 24, NY: 18, MaxIter: 400, Tolerance: 1e-6, BoundaryTemp: 100, Workers: workers}
}

func TestSplitRows(t *testing.T) {
	tests := []struct {
		ny, workers int
		want        []band
	}{
		{ny: 10, workers: 1, want: []band{{1, 9}}},
		{ny: 10, workers: 3, want: []band{{1, 3}, {3, 5}, {5, 9}}},
		{ny: 5, workers: 8, want: []band{{1, 2}, {2, 3}, {3, 4}}},
		{ny: 6, workers: 0, want: []band{{1, 5}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitRows(tt.ny, tt.workers), "ny=%d workers=%d", tt.ny, tt.workers)
	}
}

func TestSolve_BoundaryAndRange(t *testing.T) {
	res, err := Solve(context.Background(), smallParams(1))
	require.NoError(t, err)

	g := res.Grid
	require.Equal(t, 24, g.Width())
	require.Equal(t, 18, g.Height())

	for x := 0; x < g.Width(); x++ {
		assert.Equal(t, 100.0, g.At(x, 0))
		assert.Equal(t, 100.0, g.At(x, g.Height()-1))
	}
	for y := 0; y < g.Height(); y++ {
		assert.Equal(t, 100.0, g.At(0, y))
		assert.Equal(t, 100.0, g.At(g.Width()-1, y))
	}
	for _, v := range g.Values() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	// Heat flows inward, so the centre is the coolest region.
	assert.Less(t, g.At(12, 9), g.At(1, 9))
}

func TestSolve_WorkerCountDoesNotChangeResult(t *testing.T) {
	serial, err := Solve(context.Background(), smallParams(1))
	require.NoError(t, err)

	for _, w := range []int{2, 3, 7, 64} {
		par, err := Solve(context.Background(), smallParams(w))
		require.NoError(t, err)
		assert.Equal(t, serial.Iterations, par.Iterations, "workers=%d", w)
		assert.Equal(t, serial.Converged, par.Converged, "workers=%d", w)
		assert.Equal(t, serial.Grid.Values(), par.Grid.Values(), "workers=%d", w)
	}
}

func TestSolve_Converges(t *testing.T) {
	p := Params{NX: 8, NY: 8, MaxIter: 10000, Tolerance: 1e-6, BoundaryTemp: 100, Workers: 2}
	res, err := Solve(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Less(t, res.MaxDiff, 1e-6)
	assert.Less(t, res.Iterations, 10000)
	// The steady state of a uniformly heated boundary is uniform.
	assert.InDelta(t, 100.0, res.Grid.At(4, 4), 1e-3)
}

func TestSolve_StopsAtMaxIter(t *testing.T) {
	p := smallParams(2)
	p.MaxIter = 5
	res, err := Solve(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.Iterations)
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, smallParams(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolve_InvalidParams(t *testing.T) {
	_, err := Solve(context.Background(), Params{NX: 2, NY: 10, MaxIter: 1, Tolerance: 1})
	assert.Error(t, err)
	_, err = Solve(context.Background(), Params{NX: 10, NY: 10, MaxIter: 0, Tolerance: 1})
	assert.Error(t, err)
	_, err = Solve(context.Background(), Params{NX: 10, NY: 10, MaxIter: 1, Tolerance: 0})
	assert.Error(t, err)
}

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(config.EmptySolverConfig())
	assert.Equal(t, 500, p.NX)
	assert.Equal(t, 500, p.NY)
	assert.Equal(t, 1000, p.MaxIter)
	assert.Equal(t, 1e-6, p.Tolerance)
	assert.Equal(t, 100.0, p.BoundaryTemp)
	assert.GreaterOrEqual(t, p.Workers, 1)
}

func TestSolve_ElapsedFromClock(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.SetStep(1500 * time.Millisecond)

	p := smallParams(2)
	p.Clock = clock
	res, err := Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, res.Elapsed)
}
