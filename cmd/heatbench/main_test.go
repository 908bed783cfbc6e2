package main

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heat.report/internal/benchdb"
	"github.com/banshee-data/heat.report/internal/render"
	"github.com/banshee-data/heat.report/internal/solver"
)

func TestParseWorkers(t *testing.T) {
	got, err := parseWorkers("4, 2,4,8")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 2, 8}, got)

	got, err = parseWorkers("")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)

	_, err = parseWorkers("1,x")
	assert.Error(t, err)
	_, err = parseWorkers("0")
	assert.Error(t, err)
}

func openDB(t *testing.T) *benchdb.DB {
	t.Helper()
	db, err := benchdb.Open(filepath.Join(t.TempDir(), "bench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSweepAndCharts(t *testing.T) {
	db := openDB(t)
	base := solver.Params{NX: 16, NY: 16, MaxIter: 20, Tolerance: 1e-6, BoundaryTemp: 100}

	var stdout bytes.Buffer
	id, err := sweep(context.Background(), db, base, []int{1, 2, 4}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "serial")
	assert.Contains(t, stdout.String(), "parallel-4")

	runs, err := db.RunsForSweep(id)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, 20, r.Iterations)
		assert.Equal(t, id, r.SweepID)
	}

	dir := t.TempDir()
	require.NoError(t, renderCharts(runs, dir, 10, &stdout))
	for _, name := range []string{render.ComparisonFile, render.ScalingFile} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err, name)
		_, err = png.Decode(f)
		f.Close()
		assert.NoError(t, err, name)
	}
}

func TestChartData_NeedsBaseline(t *testing.T) {
	_, _, err := chartData([]benchdb.Run{{Workers: 2, ElapsedSeconds: 1}})
	assert.ErrorIs(t, err, benchdb.ErrNoBaseline)
}

func TestDashboardHandler(t *testing.T) {
	db := openDB(t)
	h := dashboardHandler(db)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, get("/").Code)

	for _, r := range []benchdb.Run{
		{SweepID: "s1", Implementation: "serial", Workers: 1, ElapsedSeconds: 2},
		{SweepID: "s1", Implementation: "parallel-2", Workers: 2, ElapsedSeconds: 1.1},
	} {
		_, err := db.RecordRun(r)
		require.NoError(t, err)
	}

	rec := get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "sweep s1")
	assert.Contains(t, rec.Body.String(), "parallel-2")

	assert.Equal(t, http.StatusNotFound, get("/?sweep=nope").Code)
	assert.Equal(t, http.StatusNotFound, get("/favicon.ico").Code)
}
