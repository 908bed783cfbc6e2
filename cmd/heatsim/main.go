// Command heatsim solves the steady-state 2D heat equation with Jacobi
// iteration and writes the temperature field as a legacy VTK file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/banshee-data/heat.report/internal/benchdb"
	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/solver"
	"github.com/banshee-data/heat.report/internal/version"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

type options struct {
	configPath string
	out        string
	dbPath     string
	verbose    bool
	trace      bool
	version    bool

	// Explicitly set flags; they override the config file.
	nx, ny, maxIter, workers *int
	tolerance               *float64
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("heatsim", flag.ContinueOnError)
	o := &options{}
	nx := fs.Int("nx", 0, "grid width (default from config, 500)")
	ny := fs.Int("ny", 0, "grid height (default from config, 500)")
	maxIter := fs.Int("max-iter", 0, "maximum Jacobi iterations (default from config, 1000)")
	tol := fs.Float64("tolerance", 0, "convergence tolerance on the largest update (default from config, 1e-6)")
	workers := fs.Int("workers", 0, "parallel row bands (default from config, GOMAXPROCS)")
	fs.StringVar(&o.configPath, "config", "", "path to a solver JSON config")
	fs.StringVar(&o.out, "out", "heat_output.vtk", "output VTK file")
	fs.StringVar(&o.dbPath, "db", "", "record the run in this benchmark database")
	fs.BoolVar(&o.verbose, "v", false, "verbose diagnostics on stderr")
	fs.BoolVar(&o.trace, "trace", false, "per-iteration trace on stderr")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nx":
			o.nx = nx
		case "ny":
			o.ny = ny
		case "max-iter":
			o.maxIter = maxIter
		case "tolerance":
			o.tolerance = tol
		case "workers":
			o.workers = workers
		}
	})
	return o, nil
}

// solverConfig loads the config file, if any, and applies flag overrides.
func (o *options) solverConfig() (*config.SolverConfig, error) {
	cfg := config.EmptySolverConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadSolverConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.nx != nil {
		cfg.NX = o.nx
	}
	if o.ny != nil {
		cfg.NY = o.ny
	}
	if o.maxIter != nil {
		cfg.MaxIter = o.maxIter
	}
	if o.tolerance != nil {
		cfg.Tolerance = o.tolerance
	}
	if o.workers != nil {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(o *options, stderr io.Writer) {
	w := diag.LogWriters{Ops: stderr}
	if o.verbose {
		w.Diag = stderr
	}
	if o.trace {
		w.Trace = stderr
	}
	diag.SetPrefix("[heatsim] ")
	diag.SetLogWriters(w)
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	cfg, err := o.solverConfig()
	if err != nil {
		return err
	}
	p := solver.ParamsFromConfig(cfg)

	res, err := solver.Solve(ctx, p)
	if err != nil {
		return err
	}
	status := "converged"
	if !res.Converged {
		status = "not converged"
	}
	fmt.Fprintf(stdout, "Solved %dx%d in %d iterations (%s, max_diff=%.3e) with %d worker(s) in %.3fs\n",
		p.NX, p.NY, res.Iterations, status, res.MaxDiff, res.Workers, res.Elapsed.Seconds())

	if err := vtkgrid.WriteFile(nil, o.out, res.Grid, vtkgrid.DefaultTitle); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", o.out)

	if o.dbPath == "" {
		return nil
	}
	db, err := benchdb.Open(o.dbPath)
	if err != nil {
		return fmt.Errorf("open bench db: %w", err)
	}
	defer db.Close()
	r, err := db.RecordRun(benchdb.Run{
		SweepID:        benchdb.NewSweepID(),
		Implementation: implementationName(res.Workers),
		Workers:        res.Workers,
		NX:             p.NX,
		NY:             p.NY,
		Iterations:     res.Iterations,
		Converged:      res.Converged,
		ElapsedSeconds: res.Elapsed.Seconds(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Recorded run %s\n", r.ID)
	return nil
}

func implementationName(workers int) string {
	if workers == 1 {
		return "serial"
	}
	return fmt.Sprintf("parallel-%d", workers)
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if o.version {
		fmt.Println(version.String("heatsim"))
		return
	}
	setupLogging(o, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		log.Fatalf("heatsim: %v", err)
	}
}
