// Package render draws scalar grids and benchmark results as PNG figures
// with gonum/plot, and as interactive HTML pages with go-echarts.
package render

import (
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/heat.report/internal/colormap"
	"github.com/banshee-data/heat.report/internal/config"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

// Options controls how a grid is drawn.
type Options struct {
	Colormap *colormap.Map

	// Min and Max fix the colour scale.
	Min, Max float64

	// Levels is the number of contour iso-levels.
	Levels int

	Width, Height vg.Length
	DPI           int
}

// DefaultOptions returns options for g with the colour scale spanning the
// data.
func DefaultOptions(g *vtkgrid.ScalarGrid) Options {
	opts, _ := OptionsFromConfig(config.EmptyRenderConfig(), g)
	return opts
}

// OptionsFromConfig resolves cfg against the data range of g.
func OptionsFromConfig(cfg *config.RenderConfig, g *vtkgrid.ScalarGrid) (Options, error) {
	cm, err := colormap.ByName(cfg.GetColormap())
	if err != nil {
		return Options{}, err
	}
	st := vtkgrid.Stats(g)
	lo, hi := cfg.GetScalarRange(st.Min, st.Max)
	o := Options{
		Colormap: cm,
		Min:      lo,
		Max:      hi,
		Levels:   cfg.GetContourLevels(),
		Width:    vg.Length(cfg.GetFigureWidthIn()) * vg.Inch,
		Height:   vg.Length(cfg.GetFigureHeightIn()) * vg.Inch,
		DPI:      cfg.GetDPI(),
	}
	o.normalize()
	return o, nil
}

// normalize widens a degenerate colour range so constant fields can still
// be mapped, and fills unset fields.
func (o *Options) normalize() {
	if o.Colormap == nil {
		o.Colormap = colormap.Hot(colormap.DefaultSize)
	}
	if o.Max <= o.Min {
		mid := o.Min
		o.Min, o.Max = mid-0.5, mid+0.5
	}
	if o.Levels < 2 {
		o.Levels = 2
	}
	if o.Width <= 0 {
		o.Width = 16 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 6 * vg.Inch
	}
	if o.DPI <= 0 {
		o.DPI = 150
	}
}

// gridXYZ adapts a ScalarGrid to plotter.GridXYZ with unit spacing. Row 0
// is drawn at the bottom.
type gridXYZ struct{ g *vtkgrid.ScalarGrid }

func (a gridXYZ) Dims() (c, r int)   { return a.g.Width(), a.g.Height() }
func (a gridXYZ) Z(c, r int) float64 { return a.g.At(c, r) }
func (a gridXYZ) X(c int) float64    { return float64(c) }
func (a gridXYZ) Y(r int) float64    { return float64(r) }
