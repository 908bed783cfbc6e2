package vtkgrid

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarises the samples of a grid.
type Statistics struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // population standard deviation
}

// Stats computes the summary statistics of g.
func Stats(g *ScalarGrid) Statistics {
	mean, std := stat.PopMeanStdDev(g.values, nil)
	return Statistics{
		Min:    floats.Min(g.values),
		Max:    floats.Max(g.values),
		Mean:   mean,
		StdDev: std,
	}
}

// Levels returns n values evenly spaced from lo to hi inclusive, the
// iso-levels used for contour plots. n < 2 yields just lo.
func Levels(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
