// Command heatbench times the Jacobi heat solver across worker counts,
// stores each sweep in a SQLite database and renders performance and
// strong-scaling charts. With -serve it also exposes an HTML dashboard of
// the latest sweep and a SQL console under /debug/.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/heat.report/internal/benchdb"
	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/render"
	"github.com/banshee-data/heat.report/internal/solver"
	"github.com/banshee-data/heat.report/internal/version"
)

var (
	nx      = flag.Int("nx", 500, "grid width")
	ny      = flag.Int("ny", 500, "grid height")
	maxIter = flag.Int("max-iter", 1000, "maximum Jacobi iterations per run")
	tol     = flag.Float64("tolerance", 1e-6, "convergence tolerance")
	workers = flag.String("workers", "1,2,4,8", "comma-separated worker counts; 1 is always included as the baseline")
	dbPath  = flag.String("db", "heat_bench.db", "path to the benchmark database")
	outDir  = flag.String("out", ".", "directory for the chart PNGs")
	dpi     = flag.Int("dpi", 150, "chart resolution")
	serve   = flag.Bool("serve", false, "serve the dashboard after the sweep")
	listen  = flag.String("listen", ":8080", "dashboard listen address")
	verbose = flag.Bool("v", false, "verbose diagnostics on stderr")
	showVer = flag.Bool("version", false, "print version and exit")
)

// parseWorkers parses a comma-separated list of positive worker counts,
// dropping duplicates and putting 1 first.
func parseWorkers(s string) ([]int, error) {
	seen := map[int]bool{1: true}
	out := []int{1}
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid worker count %q: %w", f, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("worker count must be positive, got %d", n)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

// sweep runs the solver once per worker count and records every run under
// a fresh sweep id.
func sweep(ctx context.Context, db *benchdb.DB, base solver.Params, counts []int, stdout io.Writer) (string, error) {
	id := benchdb.NewSweepID()
	fmt.Fprintf(stdout, "Sweep %s: %dx%d grid, max_iter=%d\n", id, base.NX, base.NY, base.MaxIter)
	for _, n := range counts {
		p := base
		p.Workers = n
		res, err := solver.Solve(ctx, p)
		if err != nil {
			return "", fmt.Errorf("solve with %d workers: %w", n, err)
		}
		r, err := db.RecordRun(benchdb.Run{
			SweepID:        id,
			Implementation: implementationName(n),
			Workers:        n,
			NX:             p.NX,
			NY:             p.NY,
			Iterations:     res.Iterations,
			Converged:      res.Converged,
			ElapsedSeconds: res.Elapsed.Seconds(),
		})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(stdout, "  %-12s %4d iterations  %.3fs\n", r.Implementation, r.Iterations, r.ElapsedSeconds)
	}
	return id, nil
}

func implementationName(workers int) string {
	if workers == 1 {
		return "serial"
	}
	return fmt.Sprintf("parallel-%d", workers)
}

// chartData converts the runs of a sweep into chart inputs.
func chartData(runs []benchdb.Run) ([]render.ImplementationTiming, []render.ScalingPoint, error) {
	scaling, err := benchdb.ScalingOf(runs)
	if err != nil {
		return nil, nil, err
	}
	timings := make([]render.ImplementationTiming, len(scaling))
	points := make([]render.ScalingPoint, len(scaling))
	for i, s := range scaling {
		timings[i] = render.ImplementationTiming{Name: s.Implementation, Seconds: s.ElapsedSeconds}
		points[i] = render.ScalingPoint{Workers: s.Workers, Speedup: s.Speedup, Efficiency: s.Efficiency}
	}
	return timings, points, nil
}

func renderCharts(runs []benchdb.Run, dir string, dpi int, stdout io.Writer) error {
	timings, points, err := chartData(runs)
	if err != nil {
		return err
	}
	for _, s := range points {
		fmt.Fprintf(stdout, "  %2d workers: speedup %.2fx, efficiency %.1f%%\n", s.Workers, s.Speedup, s.Efficiency*100)
	}

	perf, err := render.PerformanceComparison(timings, dpi)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, render.ComparisonFile)
	if err := perf.Save(nil, out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %s\n", out)

	sc, err := render.ScalingAnalysis(points, dpi)
	if err != nil {
		return err
	}
	out = filepath.Join(dir, render.ScalingFile)
	if err := sc.Save(nil, out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %s\n", out)
	return nil
}

// dashboardHandler renders the latest sweep, or the one named by ?sweep=.
func dashboardHandler(db *benchdb.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		id := r.URL.Query().Get("sweep")
		if id == "" {
			var err error
			if id, err = db.LatestSweep(); err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, benchdb.ErrNoRuns) {
					status = http.StatusNotFound
				}
				http.Error(w, err.Error(), status)
				return
			}
		}
		runs, err := db.RunsForSweep(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		timings, points, err := chartData(runs)
		if err != nil {
			http.Error(w, fmt.Sprintf("sweep %s: %v", id, err), http.StatusNotFound)
			return
		}
		var buf bytes.Buffer
		if err := render.BenchDashboardHTML(&buf, "sweep "+id, timings, points); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}

func serveDashboard(ctx context.Context, db *benchdb.DB, addr string) error {
	mux := http.NewServeMux()
	if err := db.AttachAdminRoutes(mux); err != nil {
		return err
	}
	mux.Handle("/", dashboardHandler(db))

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	diag.Opsf("dashboard listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	diag.Opsf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version.String("heatbench"))
		return
	}

	w := diag.LogWriters{Ops: os.Stderr}
	if *verbose {
		w.Diag = os.Stderr
	}
	diag.SetPrefix("[heatbench] ")
	diag.SetLogWriters(w)

	counts, err := parseWorkers(*workers)
	if err != nil {
		log.Fatalf("heatbench: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := benchdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("heatbench: open db: %v", err)
	}
	defer db.Close()

	cfg := config.EmptySolverConfig()
	cfg.NX, cfg.NY, cfg.MaxIter, cfg.Tolerance = nx, ny, maxIter, tol
	if err := cfg.Validate(); err != nil {
		log.Fatalf("heatbench: %v", err)
	}
	base := solver.ParamsFromConfig(cfg)
	id, err := sweep(ctx, db, base, counts, os.Stdout)
	if err != nil {
		log.Fatalf("heatbench: %v", err)
	}
	runs, err := db.RunsForSweep(id)
	if err != nil {
		log.Fatalf("heatbench: %v", err)
	}
	if err := renderCharts(runs, *outDir, *dpi, os.Stdout); err != nil {
		log.Fatalf("heatbench: %v", err)
	}

	if *serve {
		if err := serveDashboard(ctx, db, *listen); err != nil {
			log.Fatalf("heatbench: %v", err)
		}
	}
}
