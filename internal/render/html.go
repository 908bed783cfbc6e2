package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/heat.report/internal/fsutil"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

// maxHTMLCells caps the heatmap payload; larger grids are strided.
const maxHTMLCells = 40000

// htmlStride returns the sampling step that keeps a w×h grid under
// maxHTMLCells.
func htmlStride(w, h int) int {
	n := w * h
	if n <= maxHTMLCells {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n) / float64(maxHTMLCells))))
}

func axisLabels(n, stride int) []string {
	out := make([]string, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// HeatmapHTML writes an interactive page with the heatmap of g and its
// centre cross-sections.
func HeatmapHTML(w io.Writer, g *vtkgrid.ScalarGrid, o Options) error {
	o.normalize()
	stride := htmlStride(g.Width(), g.Height())

	data := make([]opts.HeatMapData, 0, (g.Width()/stride+1)*(g.Height()/stride+1))
	for y, yi := 0, 0; y < g.Height(); y, yi = y+stride, yi+1 {
		for x, xi := 0, 0; x < g.Width(); x, xi = x+stride, xi+1 {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, g.At(x, y)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "2D Heat Distribution", Width: "900px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "2D Heat Distribution",
			Subtitle: fmt.Sprintf("%dx%d grid, stride=%d", g.Width(), g.Height(), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "X", Data: axisLabels(g.Width(), stride)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "Y", Data: axisLabels(g.Height(), stride)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(o.Min),
			Max:        float32(o.Max),
			InRange:    &opts.VisualMapInRange{Color: o.Colormap.Hex(10)},
		}),
	)
	hm.AddSeries("temperature", data)

	midY, midX := g.Height()/2, g.Width()/2
	cross := charts.NewLine()
	cross.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Temperature Cross-Sections"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: temperatureLabel}),
	)
	n := g.Width()
	if g.Height() > n {
		n = g.Height()
	}
	cross.SetXAxis(axisLabels(n, 1)).
		AddSeries(fmt.Sprintf("Horizontal (y=%d)", midY), lineData(g.Row(midY))).
		AddSeries(fmt.Sprintf("Vertical (x=%d)", midX), lineData(g.Column(midX)))

	page := components.NewPage()
	page.PageTitle = "Heat Visualization"
	page.AddCharts(hm, cross)
	return page.Render(w)
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// BenchDashboardHTML writes the benchmark sweep page: execution time and
// speedup per implementation plus parallel efficiency.
func BenchDashboardHTML(w io.Writer, title string, timings []ImplementationTiming, points []ScalingPoint) error {
	if len(timings) == 0 {
		return ErrNoTimings
	}
	names := make([]string, len(timings))
	secs := make([]opts.BarData, len(timings))
	speed := make([]opts.BarData, len(timings))
	base := timings[0].Seconds
	for i, t := range timings {
		names[i] = t.Name
		secs[i] = opts.BarData{Value: round(t.Seconds, 4)}
		s := 0.0
		if t.Seconds > 0 && base > 0 {
			s = base / t.Seconds
		}
		speed[i] = opts.BarData{Value: round(s, 3)}
	}

	timeBar := charts.NewBar()
	timeBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Execution Time Comparison", Subtitle: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time (seconds)"}),
	)
	timeBar.SetXAxis(names).
		AddSeries("time", secs, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	speedBar := charts.NewBar()
	speedBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Speedup Comparison"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speedup"}),
	)
	speedBar.SetXAxis(names).
		AddSeries("speedup", speed, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	page := components.NewPage()
	page.PageTitle = "Heat Solver Benchmarks"
	page.AddCharts(timeBar, speedBar)

	if len(points) > 0 {
		workers := make([]string, len(points))
		eff := make([]opts.LineData, len(points))
		for i, pt := range points {
			workers[i] = strconv.Itoa(pt.Workers)
			eff[i] = opts.LineData{Value: round(pt.Efficiency*100, 1)}
		}
		effLine := charts.NewLine()
		effLine.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
			charts.WithTitleOpts(opts.Title{Title: "Parallel Efficiency"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Workers"}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Efficiency (%)"}),
		)
		effLine.SetXAxis(workers).AddSeries("efficiency", eff)
		page.AddCharts(effLine)
	}
	return page.Render(w)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SaveHTML writes the output of render to path through fsys.
func SaveHTML(fsys fsutil.FileSystem, path string, render func(io.Writer) error) error {
	return writeFile(fsys, path, render)
}
