package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/heat.report/internal/colormap"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

const temperatureLabel = "Temperature (°C)"

// Heatmap returns a colour-mapped raster of g.
func Heatmap(g *vtkgrid.ScalarGrid, o Options) *plot.Plot {
	o.normalize()

	hm := plotter.NewHeatMap(gridXYZ{g}, o.Colormap)
	hm.Min, hm.Max = o.Min, o.Max
	hm.Underflow = o.Colormap.At(0)
	hm.Overflow = o.Colormap.At(1)
	hm.Rasterized = true

	p := plot.New()
	p.Title.Text = "2D Heat Distribution"
	p.X.Label.Text = "X coordinate"
	p.Y.Label.Text = "Y coordinate"
	p.Add(hm)
	return p
}

// Contours returns a filled contour plot of g: the field quantised into
// o.Levels-1 bands with iso-lines drawn at each level. A constant field
// has no iso-lines and is drawn as a single band.
func Contours(g *vtkgrid.ScalarGrid, o Options) *plot.Plot {
	o.normalize()
	st := vtkgrid.Stats(g)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Temperature Contours (%d levels)", o.Levels)
	p.X.Label.Text = "X coordinate"
	p.Y.Label.Text = "Y coordinate"

	bands := colormap.NewScale(o.Colormap, o.Min, o.Max).Palette(o.Levels - 1)
	fill := plotter.NewHeatMap(gridXYZ{g}, bands)
	fill.Min, fill.Max = o.Min, o.Max
	fill.Underflow = o.Colormap.At(0)
	fill.Overflow = o.Colormap.At(1)
	fill.Rasterized = true
	p.Add(fill)

	if st.Max > st.Min {
		levels := vtkgrid.Levels(st.Min, st.Max, o.Levels)
		c := plotter.NewContour(gridXYZ{g}, levels, isoLinePalette{})
		c.LineStyles = []draw.LineStyle{{
			Color: isoLineColor,
			Width: vg.Points(0.3),
		}}
		p.Add(c)
	}
	return p
}

var isoLineColor = color.NRGBA{A: 77}

// isoLinePalette draws every iso-line in the same translucent black.
type isoLinePalette struct{}

func (isoLinePalette) Colors() []color.Color { return []color.Color{isoLineColor} }

// CrossSections returns the temperature profiles through the centre of g:
// row height/2 and column width/2.
func CrossSections(g *vtkgrid.ScalarGrid) (*plot.Plot, error) {
	midY := g.Height() / 2
	midX := g.Width() / 2

	p := plot.New()
	p.Title.Text = "Temperature Cross-Sections"
	p.X.Label.Text = "Position"
	p.Y.Label.Text = temperatureLabel
	p.Add(plotter.NewGrid())

	h, err := plotter.NewLine(profile(g.Row(midY)))
	if err != nil {
		return nil, fmt.Errorf("horizontal profile: %w", err)
	}
	h.Width = vg.Points(2)
	h.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}

	v, err := plotter.NewLine(profile(g.Column(midX)))
	if err != nil {
		return nil, fmt.Errorf("vertical profile: %w", err)
	}
	v.Width = vg.Points(2)
	v.Color = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}
	v.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(h, v)
	p.Legend.Add(fmt.Sprintf("Horizontal (y=%d)", midY), h)
	p.Legend.Add(fmt.Sprintf("Vertical (x=%d)", midX), v)
	p.Legend.Top = true
	return p, nil
}

// SingleProfile plots one cross-section, used for the per-axis figure.
func SingleProfile(title, xLabel string, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = temperatureLabel
	p.Add(plotter.NewGrid())

	l, err := plotter.NewLine(profile(values))
	if err != nil {
		return nil, err
	}
	l.Width = vg.Points(2)
	p.Add(l)
	return p, nil
}

func profile(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	return pts
}

// ColorBar returns a vertical colour bar for the scale [o.Min, o.Max].
func ColorBar(o Options) *plot.Plot {
	o.normalize()
	var cm palette.ColorMap = colormap.NewScale(o.Colormap, o.Min, o.Max)

	p := plot.New()
	p.Title.Text = "°C"
	p.HideX()
	p.Y.Padding = 0
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: o.Colormap.Len()})
	return p
}
