package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/banshee-data/heat.report/internal/colormap"
)

// DefaultRenderConfigPath is where heatviz looks for its configuration,
// relative to the working directory.
const DefaultRenderConfigPath = "heatviz.json"

// RenderConfig controls how a grid is drawn.
type RenderConfig struct {
	ContourLevels *int    `json:"contour_levels,omitempty"`
	Colormap      *string `json:"colormap,omitempty"`

	// Fixed colour scale; nil means derive from the data.
	ScalarMin *float64 `json:"scalar_min,omitempty"`
	ScalarMax *float64 `json:"scalar_max,omitempty"`

	FigureWidthIn  *float64 `json:"figure_width_in,omitempty"`
	FigureHeightIn *float64 `json:"figure_height_in,omitempty"`
	DPI            *int     `json:"dpi,omitempty"`

	OutputDir   *string `json:"output_dir,omitempty"`
	Interactive *bool   `json:"interactive,omitempty"`
	HTMLReport  *bool   `json:"html_report,omitempty"`
}

// EmptyRenderConfig returns a RenderConfig with all fields unset.
func EmptyRenderConfig() *RenderConfig {
	return &RenderConfig{}
}

// DefaultRenderConfig returns a RenderConfig with every default filled in.
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		ContourLevels:  ptrInt(20),
		Colormap:       ptrString("hot"),
		FigureWidthIn:  ptrFloat64(16),
		FigureHeightIn: ptrFloat64(6),
		DPI:            ptrInt(150),
		OutputDir:      ptrString("."),
		Interactive:    ptrBool(true),
		HTMLReport:     ptrBool(true),
	}
}

// LoadRenderConfig loads and validates a RenderConfig from a JSON file.
func LoadRenderConfig(path string) (*RenderConfig, error) {
	cfg := EmptyRenderConfig()
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadRenderConfigIfPresent loads path when it exists and returns an empty
// config (all defaults) when it does not.
func LoadRenderConfigIfPresent(path string) (*RenderConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return EmptyRenderConfig(), nil
	}
	return LoadRenderConfig(path)
}

// Validate checks that the configured values are usable.
func (c *RenderConfig) Validate() error {
	if c.ContourLevels != nil && *c.ContourLevels < 2 {
		return fmt.Errorf("contour_levels must be at least 2, got %d", *c.ContourLevels)
	}
	if c.Colormap != nil {
		if _, err := colormap.ByName(*c.Colormap); err != nil {
			return err
		}
	}
	if c.ScalarMin != nil && c.ScalarMax != nil && *c.ScalarMin >= *c.ScalarMax {
		return fmt.Errorf("scalar_min (%g) must be less than scalar_max (%g)", *c.ScalarMin, *c.ScalarMax)
	}
	if c.FigureWidthIn != nil && *c.FigureWidthIn <= 0 {
		return fmt.Errorf("figure_width_in must be positive, got %g", *c.FigureWidthIn)
	}
	if c.FigureHeightIn != nil && *c.FigureHeightIn <= 0 {
		return fmt.Errorf("figure_height_in must be positive, got %g", *c.FigureHeightIn)
	}
	if c.DPI != nil && (*c.DPI < 10 || *c.DPI > 1200) {
		return fmt.Errorf("dpi must be between 10 and 1200, got %d", *c.DPI)
	}
	return nil
}

// GetContourLevels returns the contour_levels value or the default.
func (c *RenderConfig) GetContourLevels() int {
	if c.ContourLevels == nil {
		return 20
	}
	return *c.ContourLevels
}

// GetColormap returns the colormap value or the default.
func (c *RenderConfig) GetColormap() string {
	if c.Colormap == nil {
		return "hot"
	}
	return *c.Colormap
}

// GetScalarRange returns the fixed colour scale, falling back to lo and hi
// for whichever bound is unset.
func (c *RenderConfig) GetScalarRange(lo, hi float64) (float64, float64) {
	if c.ScalarMin != nil {
		lo = *c.ScalarMin
	}
	if c.ScalarMax != nil {
		hi = *c.ScalarMax
	}
	return lo, hi
}

// GetFigureWidthIn returns the figure_width_in value or the default.
func (c *RenderConfig) GetFigureWidthIn() float64 {
	if c.FigureWidthIn == nil {
		return 16
	}
	return *c.FigureWidthIn
}

// GetFigureHeightIn returns the figure_height_in value or the default.
func (c *RenderConfig) GetFigureHeightIn() float64 {
	if c.FigureHeightIn == nil {
		return 6
	}
	return *c.FigureHeightIn
}

// GetDPI returns the dpi value or the default.
func (c *RenderConfig) GetDPI() int {
	if c.DPI == nil {
		return 150
	}
	return *c.DPI
}

// GetOutputDir returns the output_dir value or the default.
func (c *RenderConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "."
	}
	return *c.OutputDir
}

// GetInteractive returns the interactive value or the default.
func (c *RenderConfig) GetInteractive() bool {
	if c.Interactive == nil {
		return true
	}
	return *c.Interactive
}

// GetHTMLReport returns the html_report value or the default.
func (c *RenderConfig) GetHTMLReport() bool {
	if c.HTMLReport == nil {
		return true
	}
	return *c.HTMLReport
}
