// Package colormap provides the lookup tables used to colour temperature
// fields. A Map satisfies gonum's palette.Palette so it can be handed to
// heatmap and contour plotters directly.
package colormap

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultSize is the number of entries in a lookup table.
const DefaultSize = 256

// Map is an ordered lookup table from low to high values.
type Map struct {
	name   string
	colors []color.RGBA
}

type keypoint struct {
	c   colorful.Color
	pos float64
}

// gradient interpolates between keypoints. blend selects the colour space.
type gradient struct {
	keys  []keypoint
	blend func(a, b colorful.Color, t float64) colorful.Color
}

func (g gradient) at(t float64) colorful.Color {
	if first := g.keys[0]; t <= first.pos {
		return first.c
	}
	for i := 0; i < len(g.keys)-1; i++ {
		a, b := g.keys[i], g.keys[i+1]
		if t < b.pos {
			return g.blend(a.c, b.c, (t-a.pos)/(b.pos-a.pos))
		}
	}
	return g.keys[len(g.keys)-1].c
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func sample(name string, n int, f func(t float64) colorful.Color) *Map {
	if n < 2 {
		n = 2
	}
	m := &Map{name: name, colors: make([]color.RGBA, n)}
	for i := range m.colors {
		r, g, b := f(float64(i) / float64(n-1)).Clamped().RGB255()
		m.colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return m
}

// Hot runs black → red → yellow → white with each channel ramping in turn.
func Hot(n int) *Map {
	g := gradient{
		keys: []keypoint{
			{colorful.Color{R: 0.0416, G: 0, B: 0}, 0},
			{colorful.Color{R: 1, G: 0, B: 0}, 0.365},
			{colorful.Color{R: 1, G: 1, B: 0}, 0.746},
			{colorful.Color{R: 1, G: 1, B: 1}, 1},
		},
		blend: colorful.Color.BlendRgb,
	}
	return sample("hot", n, g.at)
}

// BlueRed sweeps the HSV hue from 0.667 (blue) down to 0 (red) at full
// saturation and value.
func BlueRed(n int) *Map {
	return sample("bluered", n, func(t float64) colorful.Color {
		h := (0.667 - 0.667*t) * 360
		return colorful.Hsv(h, 1, 1)
	})
}

// Viridis is the perceptually uniform purple → green → yellow map.
func Viridis(n int) *Map {
	stops := []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}
	g := gradient{blend: colorful.Color.BlendLab}
	for i, s := range stops {
		g.keys = append(g.keys, keypoint{mustHex(s), float64(i) / float64(len(stops)-1)})
	}
	return sample("viridis", n, g.at)
}

var registry = map[string]func(int) *Map{
	"hot":     Hot,
	"bluered": BlueRed,
	"viridis": Viridis,
}

// Names lists the registered map names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName returns the named map with DefaultSize entries.
func ByName(name string) (*Map, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (want one of %v)", name, Names())
	}
	return f(DefaultSize), nil
}

func (m *Map) Name() string { return m.name }
func (m *Map) Len() int     { return len(m.colors) }

// Colors implements palette.Palette.
func (m *Map) Colors() []color.Color {
	out := make([]color.Color, len(m.colors))
	for i, c := range m.colors {
		out[i] = c
	}
	return out
}

// At returns the entry for t in [0, 1]; t is clamped and NaN maps to the
// lowest entry.
func (m *Map) At(t float64) color.RGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return m.colors[int(math.Round(t*float64(len(m.colors)-1)))]
}

// Scaled maps v from the range [lo, hi] onto the table. A degenerate range
// maps everything to the middle entry.
func (m *Map) Scaled(v, lo, hi float64) color.RGBA {
	if hi <= lo {
		return m.At(0.5)
	}
	return m.At((v - lo) / (hi - lo))
}

// Hex returns n evenly spaced entries as "#rrggbb" strings, the form
// expected by chart visual maps.
func (m *Map) Hex(n int) []string {
	if n < 2 {
		n = 2
	}
	out := make([]string, n)
	for i := range out {
		c := m.At(float64(i) / float64(n-1))
		out[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return out
}
