package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heat.report/internal/benchdb"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

func TestParseFlags_OverridesOnlySetFlags(t *testing.T) {
	o, err := parseFlags([]string{"-nx", "20", "-tolerance", "1e-3"})
	require.NoError(t, err)
	require.NotNil(t, o.nx)
	assert.Equal(t, 20, *o.nx)
	assert.Nil(t, o.ny)
	assert.Nil(t, o.workers)

	cfg, err := o.solverConfig()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.GetNX())
	assert.Equal(t, 500, cfg.GetNY())
	assert.Equal(t, 1e-3, cfg.GetTolerance())
}

func TestParseFlags_ConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.json")
	require.NoError(t, writeFile(path, `{"nx": 30, "ny": 40, "max_iter": 5}`))

	o, err := parseFlags([]string{"-config", path, "-ny", "12"})
	require.NoError(t, err)
	cfg, err := o.solverConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.GetNX())
	assert.Equal(t, 12, cfg.GetNY())
	assert.Equal(t, 5, cfg.GetMaxIter())
}

func TestParseFlags_InvalidValue(t *testing.T) {
	o, err := parseFlags([]string{"-nx", "2"})
	require.NoError(t, err)
	_, err = o.solverConfig()
	assert.Error(t, err)

	_, err = parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}

func TestRun_WritesGridAndRecordsRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sub", "heat.vtk")
	dbPath := filepath.Join(dir, "bench.db")

	o, err := parseFlags([]string{"-nx", "12", "-ny", "10", "-max-iter", "50", "-workers", "2", "-out", out, "-db", dbPath})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), o, &stdout))
	assert.Contains(t, stdout.String(), "Solved 12x10 in 50 iterations")
	assert.Contains(t, stdout.String(), "Recorded run ")

	g, err := vtkgrid.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Width())
	assert.Equal(t, 10, g.Height())
	assert.Equal(t, 100.0, g.At(0, 0))

	db, err := benchdb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	sweep, err := db.LatestSweep()
	require.NoError(t, err)
	runs, err := db.RunsForSweep(sweep)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "parallel-2", runs[0].Implementation)
	assert.Equal(t, 50, runs[0].Iterations)
}

func TestRun_Cancelled(t *testing.T) {
	o, err := parseFlags([]string{"-nx", "10", "-ny", "10", "-out", filepath.Join(t.TempDir(), "x.vtk")})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, run(ctx, o, &bytes.Buffer{}), context.Canceled)
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0644)
}
