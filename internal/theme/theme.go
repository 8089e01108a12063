// Package theme holds the page and chart styling that is passed explicitly to
// the report builder and the renderers.
package theme

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Theme describes page metadata and colors for the dashboard.
type Theme struct {
	PageTitle  string `yaml:"page_title"`
	PageIcon   string `yaml:"page_icon"`
	Name       string `yaml:"name"`
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	GridColor  string `yaml:"grid_color"`
	LegendBG   string `yaml:"legend_background"`

	FontSize      int `yaml:"font_size"`
	TitleFontSize int `yaml:"title_font_size"`
	ChartHeight   int `yaml:"chart_height"`
	ChartWidth    int `yaml:"chart_width"` // only used for SVG export
	TickAngle     int `yaml:"tick_angle"`

	Palette []string `yaml:"palette"`
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

// Dark returns the default black-background theme.
func Dark() Theme {
	return Theme{
		PageTitle:     "User Daily Amount Visualization",
		PageIcon:      "📊",
		Name:          "dark",
		Background:    "#000000",
		Foreground:    "#ffffff",
		GridColor:     "#333333",
		LegendBG:      "#000000",
		FontSize:      14,
		TitleFontSize: 24,
		ChartHeight:   700,
		ChartWidth:    1200,
		TickAngle:     45,
		Palette: []string{
			"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
			"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
		},
	}
}

// Load reads a YAML theme file. Keys absent from the file keep their Dark() value.
// An empty path returns Dark().
func Load(path string) (Theme, error) {
	t := Dark()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("reading theme file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parsing theme file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

// Validate checks colors and sizes.
func (t Theme) Validate() error {
	var errs []error
	for name, c := range map[string]string{
		"background":        t.Background,
		"foreground":        t.Foreground,
		"grid_color":        t.GridColor,
		"legend_background": t.LegendBG,
	} {
		if !hexColor.MatchString(c) {
			errs = append(errs, fmt.Errorf("%s %q is not a hex color", name, c))
		}
	}
	if len(t.Palette) == 0 {
		errs = append(errs, errors.New("palette must not be empty"))
	}
	for i, c := range t.Palette {
		if !hexColor.MatchString(c) {
			errs = append(errs, fmt.Errorf("palette[%d] %q is not a hex color", i, c))
		}
	}
	if t.ChartHeight < 100 {
		errs = append(errs, fmt.Errorf("chart_height %d must be at least 100", t.ChartHeight))
	}
	if t.ChartWidth < 100 {
		errs = append(errs, fmt.Errorf("chart_width %d must be at least 100", t.ChartWidth))
	}
	if t.FontSize <= 0 || t.TitleFontSize <= 0 {
		errs = append(errs, errors.New("font sizes must be positive"))
	}
	return errors.Join(errs...)
}

// SeriesColor returns the palette color for the i-th series, cycling when needed.
func (t Theme) SeriesColor(i int) string {
	if len(t.Palette) == 0 {
		return t.Foreground
	}
	return t.Palette[i%len(t.Palette)]
}
