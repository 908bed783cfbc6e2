package render

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/fsutil"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

// Output file names, relative to the output directory.
const (
	FigureFile       = "heat_visualization.png"
	CrossSectionFile = "heat_cross_sections.png"
	ComparisonFile   = "performance_comparison.png"
	ScalingFile      = "scaling_analysis.png"
	ReportFile       = "heat_visualization.html"
)

// Figure is a drawing that can be encoded as a PNG.
type Figure struct {
	Width, Height vg.Length
	DPI           int
	paint         func(dc draw.Canvas)
}

// WritePNG renders the figure and encodes it as PNG to w.
func (f *Figure) WritePNG(w io.Writer) error {
	img := vgimg.NewWith(vgimg.UseWH(f.Width, f.Height), vgimg.UseDPI(f.DPI))
	f.paint(draw.New(img))
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Save writes the figure as a PNG file through fsys.
func (f *Figure) Save(fsys fsutil.FileSystem, path string) error {
	return writeFile(fsys, path, f.WritePNG)
}

// writeFile creates path through fsys, creating the parent directory if
// needed, and fills it with emit.
func writeFile(fsys fsutil.FileSystem, path string, emit func(io.Writer) error) (err error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	out, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := emit(out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	diag.Diagf("wrote %s", path)
	return nil
}

// Row lays plots out side by side with equal widths.
func Row(w, h vg.Length, dpi int, plots ...*plot.Plot) *Figure {
	return &Figure{Width: w, Height: h, DPI: dpi, paint: func(dc draw.Canvas) {
		tiles := draw.Tiles{Rows: 1, Cols: len(plots), PadX: vg.Millimeter * 4, PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2}
		canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
		for i, p := range plots {
			p.Draw(canvases[0][i])
		}
	}}
}

// columns splits c horizontally in proportion to weights.
func columns(c draw.Canvas, weights ...float64) []draw.Canvas {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	width := c.Max.X - c.Min.X
	out := make([]draw.Canvas, 0, len(weights))
	x := vg.Length(0)
	for _, w := range weights {
		cw := width * vg.Length(w/total)
		out = append(out, draw.Crop(c, x, x+cw-width, 0, 0))
		x += cw
	}
	return out
}

// Overview returns the three-panel figure: heatmap with colour bar,
// contours with colour bar, and the centre cross-sections.
func Overview(g *vtkgrid.ScalarGrid, o Options) (*Figure, error) {
	o.normalize()
	cross, err := CrossSections(g)
	if err != nil {
		return nil, err
	}
	heat := Heatmap(g, o)
	contours := Contours(g, o)

	return &Figure{Width: o.Width, Height: o.Height, DPI: o.DPI, paint: func(dc draw.Canvas) {
		cols := columns(dc, 0.28, 0.05, 0.28, 0.05, 0.34)
		heat.Draw(cols[0])
		ColorBar(o).Draw(cols[1])
		contours.Draw(cols[2])
		ColorBar(o).Draw(cols[3])
		cross.Draw(cols[4])
	}}, nil
}

// CrossSectionFigure returns the horizontal and vertical centre profiles as
// two side-by-side panels.
func CrossSectionFigure(g *vtkgrid.ScalarGrid, o Options) (*Figure, error) {
	o.normalize()
	midY, midX := g.Height()/2, g.Width()/2

	h, err := SingleProfile(fmt.Sprintf("Horizontal Cross-Section (y = %d)", midY), "X coordinate", g.Row(midY))
	if err != nil {
		return nil, fmt.Errorf("horizontal profile: %w", err)
	}
	v, err := SingleProfile(fmt.Sprintf("Vertical Cross-Section (x = %d)", midX), "Y coordinate", g.Column(midX))
	if err != nil {
		return nil, fmt.Errorf("vertical profile: %w", err)
	}
	return Row(o.Width*15/16, o.Height*5/6, o.DPI, h, v), nil
}
