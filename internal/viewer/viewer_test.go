package viewer

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heat.report/internal/colormap"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func runUntilDone(t *testing.T, v *Viewer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		v.Loop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("viewer did not exit")
	}
}

func bgAt(t *testing.T, s tcell.SimulationScreen, x, y int) tcell.Color {
	t.Helper()
	cells, w, _ := s.GetContents()
	_, bg, _ := cells[y*w+x].Style.Decompose()
	return bg
}

func rgb(c *colormap.Map, t float64) tcell.Color {
	v := c.At(t)
	return tcell.NewRGBColor(int32(v.R), int32(v.G), int32(v.B))
}

func TestViewer_DrawsGridBottomUp(t *testing.T) {
	s := simScreen(t, 8, 5)
	g, err := vtkgrid.New(2, 2, []float64{0, 1, 2, 3})
	require.NoError(t, err)
	cm := colormap.Hot(colormap.DefaultSize)

	v := New(s, g, cm, 0, 3)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	runUntilDone(t, v)

	// Row 0 of the screen is the title; the bottom-left cell is (0, 0).
	assert.Equal(t, rgb(cm, 0), bgAt(t, s, 0, 4))
	assert.Equal(t, rgb(cm, 1), bgAt(t, s, 7, 1))

	cells, _, _ := s.GetContents()
	title := make([]rune, 0, 8)
	for x := 0; x < 8; x++ {
		title = append(title, cells[x].Runes...)
	}
	assert.Equal(t, "2D Heat ", string(title))
}

func TestViewer_QuitKeys(t *testing.T) {
	g, err := vtkgrid.New(1, 1, []float64{5})
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"Q", tcell.KeyRune, 'Q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := simScreen(t, 4, 3)
			v := New(s, g, colormap.Hot(16), 0, 10)
			s.InjectKey(tc.key, tc.r, tcell.ModNone)
			runUntilDone(t, v)
		})
	}
}

func TestViewer_CyclesColormap(t *testing.T) {
	s := simScreen(t, 4, 3)
	g, err := vtkgrid.New(1, 1, []float64{5})
	require.NoError(t, err)

	v := New(s, g, colormap.Viridis(16), 0, 10)
	require.Len(t, v.maps, len(colormap.Names()))
	assert.Equal(t, "viridis", v.Colormap().Name())

	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'c', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	runUntilDone(t, v)
	assert.NotEqual(t, "viridis", v.Colormap().Name())
}

func TestViewer_ExitsWhenScreenClosed(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	g, err := vtkgrid.New(1, 1, []float64{5})
	require.NoError(t, err)

	v := New(s, g, colormap.Hot(16), 0, 10)
	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Fini()
	}()
	runUntilDone(t, v)
}

func TestCellIndex(t *testing.T) {
	assert.Equal(t, 0, cellIndex(0, 10, 3))
	assert.Equal(t, 2, cellIndex(9, 10, 3))
	assert.Equal(t, 4, cellIndex(2, 4, 8))
	assert.Equal(t, 0, cellIndex(3, 4, 1))
}
