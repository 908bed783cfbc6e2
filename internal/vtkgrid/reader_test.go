package vtkgrid

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heat.report/internal/fsutil"
)

const header2x2 = `# vtk DataFile Version 2.0
2D Heat Equation Data
ASCII
DATASET STRUCTURED_POINTS
DIMENSIONS 2 2 1
ORIGIN 0 0 0
SPACING 1 1 1
POINT_DATA 4
SCALARS temperature float 1
LOOKUP_TABLE default
`

func readString(t *testing.T, content string) (*ScalarGrid, error) {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("heat_output.vtk", []byte(content))
	g, err := Reader{FS: mfs}.Read("heat_output.vtk")
	assert.Equal(t, 0, mfs.OpenHandles(), "file handle must be released")
	return g, err
}

func TestRead_TwoByTwo(t *testing.T) {
	g, err := readString(t, header2x2+"1.0\n2.0\n3.0\n4.0\n")
	require.NoError(t, err)

	assert.Equal(t, 2, g.Width())
	assert.Equal(t, 2, g.Height())
	if diff := cmp.Diff([]float64{1, 2, 3, 4}, g.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3.0, g.Values()[1*2+0])
	assert.Equal(t, 3.0, g.At(0, 1))
	assert.Equal(t, 2.0, g.At(1, 0))
}

func TestRead_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKind error
		wantLine int
	}{
		{
			name:     "empty file",
			content:  "",
			wantKind: ErrMalformedHeader,
		},
		{
			name:     "no dimensions line",
			content:  "# vtk DataFile Version 2.0\nASCII\nLOOKUP_TABLE default\n1.0\n",
			wantKind: ErrMalformedHeader,
		},
		{
			name:     "dimensions not integers",
			content:  "DIMENSIONS two 2 1\nLOOKUP_TABLE default\n1\n2\n3\n4\n",
			wantKind: ErrMalformedHeader,
			wantLine: 1,
		},
		{
			name:     "dimensions missing height",
			content:  "ASCII\nDIMENSIONS 2\nLOOKUP_TABLE default\n1\n2\n",
			wantKind: ErrMalformedHeader,
			wantLine: 2,
		},
		{
			name:     "zero width",
			content:  "DIMENSIONS 0 2 1\nLOOKUP_TABLE default\n",
			wantKind: ErrMalformedHeader,
			wantLine: 1,
		},
		{
			name:     "negative height",
			content:  "DIMENSIONS 2 -2 1\nLOOKUP_TABLE default\n",
			wantKind: ErrMalformedHeader,
			wantLine: 1,
		},
		{
			name:     "no data marker",
			content:  "DIMENSIONS 2 2 1\nPOINT_DATA 4\n1\n2\n3\n4\n",
			wantKind: ErrMissingDataSection,
		},
		{
			name:     "non numeric sample",
			content:  header2x2 + "1.0\nabc\n3.0\n4.0\n",
			wantKind: ErrSampleParse,
			wantLine: 12,
		},
		{
			name:     "nan sample",
			content:  header2x2 + "1.0\nNaN\n3.0\n4.0\n",
			wantKind: ErrSampleParse,
			wantLine: 12,
		},
		{
			name:     "infinite sample",
			content:  header2x2 + "1.0\n2.0\n+Inf\n4.0\n",
			wantKind: ErrSampleParse,
			wantLine: 13,
		},
		{
			name:     "two samples on one line",
			content:  header2x2 + "1.0 2.0\n3.0\n4.0\n",
			wantKind: ErrSampleParse,
			wantLine: 11,
		},
		{
			name:     "too few samples",
			content:  header2x2 + "1.0\n2.0\n3.0\n",
			wantKind: ErrSampleCountMismatch,
		},
		{
			name:     "too many samples",
			content:  header2x2 + "1.0\n2.0\n3.0\n4.0\n5.0\n",
			wantKind: ErrSampleCountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := readString(t, tt.content)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, tt.wantKind)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, "heat_output.vtk", pe.Path)
			assert.Equal(t, tt.wantLine, pe.Line)
		})
	}
}

func TestRead_SampleCountMismatchCounts(t *testing.T) {
	var b strings.Builder
	b.WriteString("DIMENSIONS 4 4 1\nLOOKUP_TABLE default\n")
	for i := 0; i < 15; i++ {
		b.WriteString("0.5\n")
	}

	_, err := readString(t, b.String())
	require.ErrorIs(t, err, ErrSampleCountMismatch)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 16, pe.Expected)
	assert.Equal(t, 15, pe.Actual)
	assert.Contains(t, err.Error(), "4x4 = 16")
}

func TestRead_FileNotFound(t *testing.T) {
	_, err := Reader{FS: fsutil.NewMemoryFileSystem()}.Read("missing.vtk")
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "FileNotFound", KindName(err))

	_, err = Read(filepath.Join(t.TempDir(), "missing.vtk"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRead_DirectoryIsNotReadable(t *testing.T) {
	_, err := Read(t.TempDir())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRead_HeaderSearchIgnoresSurroundingContent(t *testing.T) {
	body := "DIMENSIONS 3 2 1\nLOOKUP_TABLE default\n1\n2\n3\n4\n5\n6\n"
	base, err := readString(t, body)
	require.NoError(t, err)

	padded, err := readString(t, "\n\n# generated by heatsim\n\n# grid follows\n"+body)
	require.NoError(t, err)

	assert.Equal(t, base.Width(), padded.Width())
	assert.Equal(t, base.Height(), padded.Height())
	assert.Equal(t, base.Values(), padded.Values())
}

func TestRead_BlankDataLinesSkipped(t *testing.T) {
	g, err := readString(t, header2x2+"\n1.0\n\n  2.0  \n3.0\r\n\n4.0")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, g.Values())
}

func TestRead_FirstDimensionsLineWins(t *testing.T) {
	g, err := readString(t, "DIMENSIONS 1 2 1\nDIMENSIONS 2 1 1\nLOOKUP_TABLE default\n7\n8\n")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Width())
	assert.Equal(t, 2, g.Height())
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := [][2]int{{1, 1}, {2, 3}, {7, 5}, {32, 17}}

	for _, sz := range sizes {
		w, h := sz[0], sz[1]
		values := make([]float64, w*h)
		for i := range values {
			values[i] = (rng.Float64() - 0.5) * math.Pow(10, float64(rng.IntN(12)-6))
		}
		g, err := New(w, h, values)
		require.NoError(t, err)

		mfs := fsutil.NewMemoryFileSystem()
		require.NoError(t, WriteFile(mfs, "out/grid.vtk", g, ""))

		got, err := Reader{FS: mfs}.Read("out/grid.vtk")
		require.NoError(t, err)
		assert.Equal(t, w, got.Width())
		assert.Equal(t, h, got.Height())
		assert.Equal(t, got.Width()*got.Height(), got.Len())
		for i, v := range got.Values() {
			if math.Float64bits(v) != math.Float64bits(values[i]) {
				t.Fatalf("%dx%d: value %d = %v, want %v", w, h, i, v, values[i])
			}
		}
	}
}

func TestRoundTrip_HostFilesystem(t *testing.T) {
	g, err := New(3, 2, []float64{100, 100, 100, 100, 25.125, 100})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "heat_output.vtk")
	require.NoError(t, WriteFile(nil, path, g, "test grid"))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, g.Values(), got.Values())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# vtk DataFile Version 2.0\ntest grid\n"))
	assert.Contains(t, string(data), "DIMENSIONS 3 2 1\n")
}

func TestParse_NoPathInError(t *testing.T) {
	_, err := Parse(strings.NewReader("LOOKUP_TABLE default\n"))
	require.ErrorIs(t, err, ErrMalformedHeader)
	assert.Equal(t, "malformed header: no DIMENSIONS line", err.Error())
}

func TestParseError_Message(t *testing.T) {
	_, err := readString(t, header2x2+"1.0\nabc\n3.0\n4.0\n")
	require.Error(t, err)
	assert.Equal(t, `sample parse error: heat_output.vtk:12: "abc" is not a number`, err.Error())
	assert.Equal(t, "SampleParseError", KindName(err))
}
