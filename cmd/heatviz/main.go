// Command heatviz renders a 2D temperature grid stored as a legacy VTK
// STRUCTURED_POINTS file: a three-panel PNG, centre cross-sections, an
// interactive HTML page and, on a terminal, a live colour view.
//
// Usage:
//
//	heatviz [path]
//
// path defaults to heat_output.vtk. Rendering options are read from
// heatviz.json in the working directory when present.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/fsutil"
	"github.com/banshee-data/heat.report/internal/render"
	"github.com/banshee-data/heat.report/internal/viewer"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

const defaultInput = "heat_output.vtk"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, isTerminal(os.Stdout)))
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

type app struct {
	fs      fsutil.FileSystem
	cfg     *config.RenderConfig
	stdout  io.Writer
	stderr  io.Writer
	canView bool

	// view shows the grid interactively; replaced in tests.
	view func(g *vtkgrid.ScalarGrid, o render.Options) error
}

func run(args []string, stdout, stderr io.Writer, tty bool) int {
	diag.SetPrefix("[heatviz] ")
	diag.SetLogWriters(diag.LogWriters{Ops: stderr})

	if len(args) > 1 {
		fmt.Fprintln(stderr, "usage: heatviz [path]")
		return 2
	}
	path := defaultInput
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := config.LoadRenderConfigIfPresent(config.DefaultRenderConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "heatviz: config: %v\n", err)
		return 1
	}
	a := &app{
		fs:      fsutil.OSFileSystem{},
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		canView: tty,
		view:    viewTerminal,
	}
	return a.visualize(path)
}

func viewTerminal(g *vtkgrid.ScalarGrid, o render.Options) error {
	return viewer.Run(g, o.Colormap, o.Min, o.Max)
}

func (a *app) visualize(path string) int {
	g, err := vtkgrid.Reader{FS: a.fs}.Read(path)
	if err != nil {
		fmt.Fprintln(a.stderr, describe(err))
		return 1
	}

	st := vtkgrid.Stats(g)
	fmt.Fprintf(a.stdout, "Grid: %d x %d (%d samples)\n", g.Width(), g.Height(), g.Len())
	fmt.Fprintf(a.stdout, "Temperature range: %.4f to %.4f\n", st.Min, st.Max)
	fmt.Fprintf(a.stdout, "Mean temperature: %.4f\n", st.Mean)
	fmt.Fprintf(a.stdout, "Std deviation: %.4f\n", st.StdDev)

	opts, err := render.OptionsFromConfig(a.cfg, g)
	if err != nil {
		fmt.Fprintf(a.stderr, "heatviz: config: %v\n", err)
		return 1
	}
	if err := a.writeOutputs(g, opts); err != nil {
		fmt.Fprintf(a.stderr, "heatviz: render: %v\n", err)
		return 1
	}

	if a.cfg.GetInteractive() && a.canView {
		// The terminal view uses a fixed 0..100 scale unless one is configured.
		vo := opts
		vo.Min, vo.Max = a.cfg.GetScalarRange(0, 100)
		if err := a.view(g, vo); err != nil {
			fmt.Fprintf(a.stderr, "heatviz: viewer: %v\n", err)
			return 1
		}
	}
	return 0
}

func (a *app) writeOutputs(g *vtkgrid.ScalarGrid, opts render.Options) error {
	dir := a.cfg.GetOutputDir()

	fig, err := render.Overview(g, opts)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, render.FigureFile)
	if err := fig.Save(a.fs, out); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Saved %s\n", out)

	cross, err := render.CrossSectionFigure(g, opts)
	if err != nil {
		return err
	}
	out = filepath.Join(dir, render.CrossSectionFile)
	if err := cross.Save(a.fs, out); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Saved %s\n", out)

	if a.cfg.GetHTMLReport() {
		out = filepath.Join(dir, render.ReportFile)
		err := render.SaveHTML(a.fs, out, func(w io.Writer) error {
			return render.HeatmapHTML(w, g, opts)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Saved %s\n", out)
	}
	return nil
}

// describe formats a read failure as a single line:
//
//	heatviz: <kind>: <path>[:<line>]: <detail>
func describe(err error) string {
	var pe *vtkgrid.ParseError
	if !errors.As(err, &pe) {
		return "heatviz: " + err.Error()
	}
	loc := pe.Path
	if pe.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, pe.Line)
	}
	detail := pe.Detail
	if detail == "" && pe.Err != nil {
		detail = pe.Err.Error()
	}
	if detail == "" {
		detail = pe.Kind.Error()
	}
	return fmt.Sprintf("heatviz: %s: %s: %s", vtkgrid.KindName(err), loc, detail)
}
