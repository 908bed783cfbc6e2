// Package viewer shows a scalar grid as coloured cells in a terminal.
package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/heat.report/internal/colormap"
	"github.com/banshee-data/heat.report/internal/diag"
	"github.com/banshee-data/heat.report/internal/vtkgrid"
)

// Viewer draws one grid onto a screen until dismissed.
type Viewer struct {
	screen tcell.Screen
	grid   *vtkgrid.ScalarGrid
	maps   []*colormap.Map
	cur    int
	lo, hi float64
	title  string
}

// New returns a viewer for g on an initialised screen s, starting with
// colour map cm and scaled to [lo, hi].
func New(s tcell.Screen, g *vtkgrid.ScalarGrid, cm *colormap.Map, lo, hi float64) *Viewer {
	v := &Viewer{screen: s, grid: g, lo: lo, hi: hi, title: "2D Heat Distribution"}
	v.maps = append(v.maps, cm)
	for _, name := range colormap.Names() {
		if name == cm.Name() {
			continue
		}
		m, err := colormap.ByName(name)
		if err != nil {
			continue
		}
		v.maps = append(v.maps, m)
	}
	return v
}

// Run opens the terminal, shows g and blocks until the user quits with q,
// Esc or Ctrl-C.
func Run(g *vtkgrid.ScalarGrid, cm *colormap.Map, lo, hi float64) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer s.Fini()
	New(s, g, cm, lo, hi).Loop()
	return nil
}

// Colormap returns the map currently in use.
func (v *Viewer) Colormap() *colormap.Map { return v.maps[v.cur] }

// Loop draws and handles events until a quit key arrives or the screen
// is finalised.
func (v *Viewer) Loop() {
	v.Draw()
	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			v.screen.Sync()
			v.Draw()
		case *tcell.EventKey:
			if quitKey(ev) {
				diag.Diagf("viewer: quit")
				return
			}
			if ev.Key() == tcell.KeyRune && (ev.Rune() == 'c' || ev.Rune() == 'C') {
				v.cur = (v.cur + 1) % len(v.maps)
				diag.Tracef("viewer: colormap %s", v.Colormap().Name())
				v.Draw()
			}
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Draw renders the title line and the grid. The grid is resampled by
// nearest neighbour to fill the rest of the screen, with row 0 at the
// bottom.
func (v *Viewer) Draw() {
	s := v.screen
	s.Clear()
	sw, sh := s.Size()
	if sw <= 0 || sh <= 0 {
		return
	}
	cm := v.Colormap()

	header := fmt.Sprintf("%s %dx%d [%.4g, %.4g] %s  c: colormap  q: quit",
		v.title, v.grid.Width(), v.grid.Height(), v.lo, v.hi, cm.Name())
	drawText(s, 0, 0, sw, tcell.StyleDefault.Bold(true), header)

	rows := sh - 1
	for cy := 0; cy < rows; cy++ {
		gy := cellIndex(rows-1-cy, rows, v.grid.Height())
		for cx := 0; cx < sw; cx++ {
			gx := cellIndex(cx, sw, v.grid.Width())
			c := cm.Scaled(v.grid.At(gx, gy), v.lo, v.hi)
			st := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			s.SetContent(cx, cy+1, ' ', nil, st)
		}
	}
	s.Show()
}

// cellIndex maps screen position i of n onto a grid axis of length size.
func cellIndex(i, n, size int) int {
	j := i * size / n
	if j >= size {
		j = size - 1
	}
	return j
}

func drawText(s tcell.Screen, x, y, maxX int, st tcell.Style, text string) {
	for _, r := range text {
		if x >= maxX {
			return
		}
		s.SetContent(x, y, r, nil, st)
		x++
	}
}
