package vtkgrid

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/heat.report/internal/fsutil"
)

// DefaultTitle is the dataset title written on the second header line.
const DefaultTitle = "2D Heat Equation Data"

// Write encodes g in the legacy STRUCTURED_POINTS ASCII layout. Samples are
// written with the shortest representation that parses back to the same
// float64, so Read(Write(g)) reproduces g exactly.
func Write(w io.Writer, g *ScalarGrid, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 2.0\n")
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "ASCII\n")
	fmt.Fprintf(bw, "DATASET STRUCTURED_POINTS\n")
	fmt.Fprintf(bw, "%s %d %d 1\n", dimensionsToken, g.width, g.height)
	fmt.Fprintf(bw, "ORIGIN 0 0 0\n")
	fmt.Fprintf(bw, "SPACING 1 1 1\n")
	fmt.Fprintf(bw, "POINT_DATA %d\n", len(g.values))
	fmt.Fprintf(bw, "SCALARS temperature double 1\n")
	fmt.Fprintf(bw, "%s default\n", dataMarkerToken)

	buf := make([]byte, 0, 32)
	for _, v := range g.values {
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush grid: %w", err)
	}
	return nil
}

// WriteFile writes g to path through fsys, creating the parent directory.
func WriteFile(fsys fsutil.FileSystem, path string, g *ScalarGrid, title string) (err error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(f, g, title)
}
