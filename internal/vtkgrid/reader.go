package vtkgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/fsutil"
)

const (
	dimensionsToken = "DIMENSIONS"
	dataMarkerToken = "LOOKUP_TABLE"

	// maxPrealloc bounds the sample buffer reserved from the header so a
	// bogus DIMENSIONS line cannot force a huge allocation.
	maxPrealloc = 1 << 22
)

// Reader loads grid files through a FileSystem. The zero value reads from
// the host filesystem.
type Reader struct {
	FS fsutil.FileSystem
}

// Read parses the grid file at path from the host filesystem.
func Read(path string) (*ScalarGrid, error) {
	return Reader{}.Read(path)
}

// Read parses the grid file at path. The file is closed before Read
// returns, on success and on every error.
func (r Reader) Read(path string) (*ScalarGrid, error) {
	fsys := r.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Kind: ErrFileNotFound, Path: path, Err: err}
	}
	defer f.Close()

	g, err := parse(f, path)
	if err != nil {
		return nil, err
	}
	diag.Diagf("read %s: %dx%d grid", path, g.width, g.height)
	return g, nil
}

// Parse reads a grid from an arbitrary reader. Errors carry no path.
func Parse(r io.Reader) (*ScalarGrid, error) {
	return parse(r, "")
}

// scanState accumulates what a single pass over the file has seen.
type scanState struct {
	path string

	dimsLine      int // line of the first DIMENSIONS token, 0 if none
	width, height int
	headerErr     *ParseError

	markerLine int // line of the first LOOKUP_TABLE token, 0 if none
	values     []float64
	samples    int
	sampleErr  *ParseError
}

// parse makes one pass over the input. The first DIMENSIONS line supplies
// the size; every non-blank line after the first LOOKUP_TABLE line is a
// sample. Problems are reported in the order header, data marker, sample
// syntax, sample count.
func parse(r io.Reader, path string) (*ScalarGrid, error) {
	st := &scanState{path: path}
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, &ParseError{Kind: ErrFileNotFound, Path: path, Line: lineNo, Err: readErr}
		}
		if line != "" || readErr == nil {
			st.consume(lineNo, line)
		}
		if readErr == io.EOF {
			break
		}
	}

	return st.finish()
}

func (st *scanState) consume(lineNo int, line string) {
	if st.markerLine > 0 {
		st.consumeSample(lineNo, line)
	} else if strings.Contains(line, dataMarkerToken) {
		st.markerLine = lineNo
		if st.headerErr == nil && st.width > 0 {
			st.values = make([]float64, 0, min(st.width*st.height, maxPrealloc))
		}
	}

	if st.dimsLine == 0 && strings.Contains(line, dimensionsToken) {
		st.dimsLine = lineNo
		st.parseDimensions(lineNo, line)
	}
}

func (st *scanState) parseDimensions(lineNo int, line string) {
	fields := strings.Fields(line)
	idx := -1
	for i, f := range fields {
		if strings.Contains(f, dimensionsToken) {
			idx = i
			break
		}
	}
	if idx < 0 || len(fields) < idx+3 {
		st.headerErr = &ParseError{Kind: ErrMalformedHeader, Path: st.path, Line: lineNo,
			Detail: fmt.Sprintf("%s needs width and height, got %q", dimensionsToken, strings.TrimSpace(line))}
		return
	}

	width, errW := strconv.Atoi(fields[idx+1])
	height, errH := strconv.Atoi(fields[idx+2])
	if err := errors.Join(errW, errH); err != nil {
		st.headerErr = &ParseError{Kind: ErrMalformedHeader, Path: st.path, Line: lineNo, Err: err}
		return
	}
	if width <= 0 || height <= 0 {
		st.headerErr = &ParseError{Kind: ErrMalformedHeader, Path: st.path, Line: lineNo,
			Detail: fmt.Sprintf("dimensions must be positive, got %d %d", width, height)}
		return
	}
	if width > math.MaxInt/height {
		st.headerErr = &ParseError{Kind: ErrMalformedHeader, Path: st.path, Line: lineNo,
			Detail: fmt.Sprintf("dimensions %d %d overflow", width, height)}
		return
	}
	st.width, st.height = width, height
}

func (st *scanState) consumeSample(lineNo int, line string) {
	s := strings.TrimSpace(line)
	if s == "" {
		return
	}
	st.samples++
	if st.sampleErr != nil {
		return
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		st.sampleErr = &ParseError{Kind: ErrSampleParse, Path: st.path, Line: lineNo,
			Detail: fmt.Sprintf("%q is not a number", s)}
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		st.sampleErr = &ParseError{Kind: ErrSampleParse, Path: st.path, Line: lineNo,
			Detail: fmt.Sprintf("%q is not a finite number", s)}
		return
	}
	st.values = append(st.values, v)
}

func (st *scanState) finish() (*ScalarGrid, error) {
	if st.dimsLine == 0 {
		return nil, &ParseError{Kind: ErrMalformedHeader, Path: st.path,
			Detail: "no " + dimensionsToken + " line"}
	}
	if st.headerErr != nil {
		return nil, st.headerErr
	}
	if st.markerLine == 0 {
		return nil, &ParseError{Kind: ErrMissingDataSection, Path: st.path,
			Detail: "no " + dataMarkerToken + " line"}
	}
	if st.sampleErr != nil {
		return nil, st.sampleErr
	}
	expected := st.width * st.height
	if st.samples != expected {
		return nil, &ParseError{Kind: ErrSampleCountMismatch, Path: st.path,
			Expected: expected, Actual: st.samples,
			Detail: fmt.Sprintf("header declares %dx%d = %d samples, found %d", st.width, st.height, expected, st.samples)}
	}
	return newOwned(st.width, st.height, st.values), nil
}
