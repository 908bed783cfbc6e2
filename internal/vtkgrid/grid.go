// Package vtkgrid reads and writes 2D scalar fields stored in the legacy
// VTK STRUCTURED_POINTS ASCII layout.
//
// A file declares its size on a DIMENSIONS line and lists one sample per
// line after a LOOKUP_TABLE marker, in row-major order with x varying
// fastest. The reader reports malformed input with one of five sentinel
// errors (see errors.go) instead of returning a misshapen grid.
package vtkgrid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ScalarGrid is an immutable width × height field of samples stored
// row-major: the sample at (x, y) lives at index y*width + x.
type ScalarGrid struct {
	width  int
	height int
	values []float64
}

// New builds a grid from a copy of values. It fails unless both dimensions
// are positive and len(values) == width*height.
func New(width, height int, values []float64) (*ScalarGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if width > math.MaxInt/height {
		return nil, fmt.Errorf("grid dimensions %dx%d overflow", width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("grid %dx%d needs %d values, got %d", width, height, width*height, len(values))
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &ScalarGrid{width: width, height: height, values: v}, nil
}

// newOwned wraps values without copying; callers hand over ownership.
func newOwned(width, height int, values []float64) *ScalarGrid {
	return &ScalarGrid{width: width, height: height, values: values}
}

// Width returns the number of columns (samples along x).
func (g *ScalarGrid) Width() int { return g.width }

// Height returns the number of rows (samples along y).
func (g *ScalarGrid) Height() int { return g.height }

// Len returns the number of samples, always Width()*Height().
func (g *ScalarGrid) Len() int { return len(g.values) }

// At returns the sample at column x, row y. It panics if either index is
// out of range, like slice indexing.
func (g *ScalarGrid) At(x, y int) float64 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("vtkgrid: index (%d, %d) out of range for %dx%d grid", x, y, g.width, g.height))
	}
	return g.values[y*g.width+x]
}

// Values returns a copy of the samples in row-major order.
func (g *ScalarGrid) Values() []float64 {
	out := make([]float64, len(g.values))
	copy(out, g.values)
	return out
}

// Row returns a copy of row y (the horizontal profile at that height).
func (g *ScalarGrid) Row(y int) []float64 {
	if y < 0 || y >= g.height {
		panic(fmt.Sprintf("vtkgrid: row %d out of range for height %d", y, g.height))
	}
	out := make([]float64, g.width)
	copy(out, g.values[y*g.width:(y+1)*g.width])
	return out
}

// Column returns a copy of column x (the vertical profile at that offset).
func (g *ScalarGrid) Column(x int) []float64 {
	if x < 0 || x >= g.width {
		panic(fmt.Sprintf("vtkgrid: column %d out of range for width %d", x, g.width))
	}
	out := make([]float64, g.height)
	for y := range out {
		out[y] = g.values[y*g.width+x]
	}
	return out
}

// Dense returns the grid as a height × width matrix (row y, column x).
// The matrix owns a copy of the samples.
func (g *ScalarGrid) Dense() *mat.Dense {
	return mat.NewDense(g.height, g.width, g.Values())
}

// FromDense builds a grid from a matrix whose rows are grid rows.
func FromDense(m mat.Matrix) (*ScalarGrid, error) {
	rows, cols := m.Dims()
	values := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			values = append(values, m.At(y, x))
		}
	}
	return New(cols, rows, values)
}
