package render

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ImplementationTiming is the wall-clock time of one solver configuration.
type ImplementationTiming struct {
	Name    string
	Seconds float64
}

// ScalingPoint is one worker count of a strong-scaling sweep.
type ScalingPoint struct {
	Workers    int
	Speedup    float64
	Efficiency float64
}

var (
	barColors = []color.Color{
		color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255},
		color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255},
		color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
		color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255},
		color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255},
	}
	refRed   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}
	refGreen = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}
	dashed   = []vg.Length{vg.Points(6), vg.Points(4)}
)

// ErrNoTimings is returned when there is nothing to chart.
var ErrNoTimings = errors.New("no timings")

// PerformanceComparison charts execution time and speedup per
// implementation. Speedup is relative to the first timing.
func PerformanceComparison(timings []ImplementationTiming, dpi int) (*Figure, error) {
	if len(timings) == 0 {
		return nil, ErrNoTimings
	}
	base := timings[0].Seconds
	if base <= 0 {
		return nil, fmt.Errorf("baseline %q has non-positive time %g", timings[0].Name, base)
	}

	names := make([]string, len(timings))
	secs := make(plotter.Values, len(timings))
	speedup := make(plotter.Values, len(timings))
	for i, t := range timings {
		names[i] = t.Name
		secs[i] = t.Seconds
		if t.Seconds > 0 {
			speedup[i] = base / t.Seconds
		}
	}

	timePlot, err := barPlot("Execution Time Comparison", "Time (seconds)", names, secs, "%.3fs")
	if err != nil {
		return nil, err
	}
	speedPlot, err := barPlot("Speedup Comparison", "Speedup (relative to baseline)", names, speedup, "%.2fx")
	if err != nil {
		return nil, err
	}
	baseline := plotter.NewFunction(func(float64) float64 { return 1 })
	baseline.Color = refRed
	baseline.Dashes = dashed
	speedPlot.Add(baseline)
	speedPlot.Legend.Add("Baseline", baseline)
	speedPlot.Legend.Top = true

	return Row(15*vg.Inch, 6*vg.Inch, dpi, timePlot, speedPlot), nil
}

func barPlot(title, yLabel string, names []string, vals plotter.Values, format string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Y.Min = 0

	w := vg.Points(40)
	labels := plotter.XYLabels{}
	for i, v := range vals {
		bar, err := plotter.NewBarChart(plotter.Values{v}, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		bar.XMin = float64(i)
		bar.Color = barColors[i%len(barColors)]
		bar.LineStyle.Width = 0
		p.Add(bar)
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: v})
		labels.Labels = append(labels.Labels, fmt.Sprintf(format, v))
	}
	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("%s labels: %w", title, err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = -0.5
		lbl.TextStyle[i].YAlign = 0.25
	}
	p.Add(lbl)
	p.NominalX(names...)
	p.Add(plotter.NewGrid())
	return p, nil
}

// ScalingAnalysis charts strong-scaling speedup against the ideal line
// and parallel efficiency with 80% and 90% reference lines.
func ScalingAnalysis(points []ScalingPoint, dpi int) (*Figure, error) {
	if len(points) == 0 {
		return nil, ErrNoTimings
	}
	speed := make(plotter.XYs, len(points))
	ideal := make(plotter.XYs, len(points))
	eff := make(plotter.XYs, len(points))
	for i, pt := range points {
		x := float64(pt.Workers)
		speed[i] = plotter.XY{X: x, Y: pt.Speedup}
		ideal[i] = plotter.XY{X: x, Y: x}
		eff[i] = plotter.XY{X: x, Y: pt.Efficiency * 100}
	}

	sp := plot.New()
	sp.Title.Text = "Strong Scaling: Speedup"
	sp.X.Label.Text = "Number of Workers"
	sp.Y.Label.Text = "Speedup"
	sp.Add(plotter.NewGrid())
	actual, marks, err := plotter.NewLinePoints(speed)
	if err != nil {
		return nil, fmt.Errorf("speedup line: %w", err)
	}
	actual.Width = vg.Points(2)
	actual.Color = barColors[0]
	marks.Color = barColors[0]
	idealLine, err := plotter.NewLine(ideal)
	if err != nil {
		return nil, fmt.Errorf("ideal line: %w", err)
	}
	idealLine.Color = refRed
	idealLine.Dashes = dashed
	sp.Add(actual, marks, idealLine)
	sp.Legend.Add("Actual Speedup", actual, marks)
	sp.Legend.Add("Ideal Speedup", idealLine)
	sp.Legend.Top = true
	sp.Legend.Left = true

	ep := plot.New()
	ep.Title.Text = "Parallel Efficiency"
	ep.X.Label.Text = "Number of Workers"
	ep.Y.Label.Text = "Efficiency (%)"
	ep.Y.Min, ep.Y.Max = 0, 110
	ep.Add(plotter.NewGrid())
	effLine, effMarks, err := plotter.NewLinePoints(eff)
	if err != nil {
		return nil, fmt.Errorf("efficiency line: %w", err)
	}
	effLine.Width = vg.Points(2)
	effLine.Color = refGreen
	effMarks.Color = refGreen
	ep.Add(effLine, effMarks)
	ep.Legend.Add("Efficiency", effLine, effMarks)
	for _, ref := range []struct {
		level float64
		c     color.Color
	}{{90, refGreen}, {80, barColors[1]}} {
		level := ref.level
		f := plotter.NewFunction(func(float64) float64 { return level })
		f.Color = ref.c
		f.Dashes = dashed
		ep.Add(f)
		ep.Legend.Add(fmt.Sprintf("%.0f%% Efficiency", level), f)
	}
	ep.Legend.Top = false

	return Row(15*vg.Inch, 6*vg.Inch, dpi, sp, ep), nil
}
