// Package benchdb stores solver benchmark runs in SQLite.
package benchdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/timeutil"
)

// ErrNoRuns is returned when the store holds no runs.
var ErrNoRuns = errors.New("no benchmark runs recorded")

type DB struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

// Run is one timed solver execution.
type Run struct {
	ID             string
	SweepID        string
	Implementation string
	Workers        int
	NX, NY         int
	Iterations     int
	Converged      bool
	ElapsedSeconds float64
	CreatedAt      time.Time
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	db := &DB{DB: sqlDB, path: path, clock: timeutil.RealClock{}}
	if err := db.MigrateUp(Migrations()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	diag.Diagf("opened bench db %s", path)
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// SetClock replaces the clock used to stamp runs.
func (db *DB) SetClock(c timeutil.Clock) { db.clock = c }

// NewSweepID returns a fresh identifier for a group of runs.
func NewSweepID() string { return uuid.New().String() }

// RecordRun stores r, assigning an ID and creation time when unset, and
// returns the stored run.
func (db *DB) RecordRun(r Run) (Run, error) {
	if r.SweepID == "" {
		return Run{}, errors.New("run has no sweep id")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = timeutil.Or(db.clock).Now()
	}
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, sweep_id, implementation, workers, nx, ny,
			iterations, converged, elapsed_seconds, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SweepID, r.Implementation, r.Workers, r.NX, r.NY,
		r.Iterations, r.Converged, r.ElapsedSeconds, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	diag.Tracef("recorded run %s sweep=%s workers=%d %.3fs", r.ID, r.SweepID, r.Workers, r.ElapsedSeconds)
	return r, nil
}

// RunsForSweep returns the runs of one sweep ordered by worker count.
func (db *DB) RunsForSweep(sweepID string) ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, sweep_id, implementation, workers, nx, ny,
			iterations, converged, elapsed_seconds, created_at
		FROM runs
		WHERE sweep_id = ?
		ORDER BY workers, created_at`, sweepID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.SweepID, &r.Implementation, &r.Workers, &r.NX, &r.NY,
			&r.Iterations, &r.Converged, &r.ElapsedSeconds, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestSweep returns the id of the sweep holding the most recent run.
func (db *DB) LatestSweep() (string, error) {
	var id string
	err := db.QueryRow(`SELECT sweep_id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	return id, err
}

// Scaling is a run with its speedup and efficiency relative to the
// single-worker run of the same sweep.
type Scaling struct {
	Run
	Speedup    float64
	Efficiency float64
}

// ErrNoBaseline is returned when a sweep lacks a single-worker run.
var ErrNoBaseline = errors.New("sweep has no single-worker run")

// ScalingOf derives speedup and efficiency for runs, sorted by worker
// count. Speedup is baseline time over run time; efficiency is speedup
// over workers.
func ScalingOf(runs []Run) ([]Scaling, error) {
	var base *Run
	for i := range runs {
		if runs[i].Workers == 1 {
			base = &runs[i]
			break
		}
	}
	if base == nil {
		return nil, ErrNoBaseline
	}
	out := make([]Scaling, 0, len(runs))
	for _, r := range runs {
		s := Scaling{Run: r}
		if r.ElapsedSeconds > 0 {
			s.Speedup = base.ElapsedSeconds / r.ElapsedSeconds
		}
		if r.Workers > 0 {
			s.Efficiency = s.Speedup / float64(r.Workers)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Workers < out[j].Workers })
	return out, nil
}

// AttachAdminRoutes mounts the debug index on mux with a tailsql console
// over the database and a JSON dump of the latest sweep.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Benchmark DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("runs", "Runs of the latest sweep as JSON", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sweep := r.URL.Query().Get("sweep")
		if sweep == "" {
			var err error
			sweep, err = db.LatestSweep()
			if errors.Is(err, ErrNoRuns) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		runs, err := db.RunsForSweep(sweep)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			diag.Opsf("encode runs: %v", err)
		}
	}))
	return nil
}
