package colormap

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// Scale binds a Map to a value range and satisfies palette.ColorMap, which
// gonum's colour bars and heatmaps use to turn values into colours.
type Scale struct {
	m        *Map
	min, max float64
	alpha    float64
}

// NewScale returns a Scale over [lo, hi] with full opacity.
func NewScale(m *Map, lo, hi float64) *Scale {
	return &Scale{m: m, min: lo, max: hi, alpha: 1}
}

// At implements palette.ColorMap.
func (s *Scale) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < s.min:
		return nil, palette.ErrUnderflow
	case v > s.max:
		return nil, palette.ErrOverflow
	}
	return s.withAlpha(s.m.Scaled(v, s.min, s.max)), nil
}

func (s *Scale) withAlpha(c color.RGBA) color.Color {
	if s.alpha >= 1 {
		return c
	}
	a := s.alpha
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func (s *Scale) Max() float64       { return s.max }
func (s *Scale) SetMax(v float64)   { s.max = v }
func (s *Scale) Min() float64       { return s.min }
func (s *Scale) SetMin(v float64)   { s.min = v }
func (s *Scale) Alpha() float64     { return s.alpha }
func (s *Scale) SetAlpha(a float64) { s.alpha = math.Max(0, math.Min(1, a)) }

// Palette implements palette.ColorMap by resampling the map to n entries.
func (s *Scale) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	m := &Map{name: s.m.name, colors: make([]color.RGBA, n)}
	for i := range m.colors {
		m.colors[i] = s.m.At(float64(i) / float64(n-1))
	}
	return m
}
