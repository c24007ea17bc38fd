package cellgrid

import (
	"fmt"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/describe"
	"github.com/gogpu/cellgrid/execute"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/linecache"
)

// DefaultMaxPasses bounds the describe and execute retries of one frame.
const DefaultMaxPasses = 16

// Config is the renderer configuration. The zero value of any field
// selects its default.
type Config struct {
	Cache        CacheConfig          `mapstructure:"cache" yaml:"cache"`
	Atlas        AtlasConfig          `mapstructure:"atlas" yaml:"atlas"`
	Buffers      execute.Config       `mapstructure:"buffers" yaml:"buffers"`
	Cursor       CursorConfig         `mapstructure:"cursor" yaml:"cursor"`
	Colors       ColorsConfig         `mapstructure:"colors" yaml:"colors"`
	InactivePane command.HSBTransform `mapstructure:"inactive_pane" yaml:"inactive_pane"`
	TabBar       TabBarConfig         `mapstructure:"tab_bar" yaml:"tab_bar"`
	Font         FontConfig           `mapstructure:"font" yaml:"font"`
	Scrollbar    bool                 `mapstructure:"scrollbar" yaml:"scrollbar"`
	PostProcess  bool                 `mapstructure:"post_process" yaml:"post_process"`

	MaxPasses     int           `mapstructure:"max_passes" yaml:"max_passes"`
	TextBlinkRate time.Duration `mapstructure:"text_blink_rate" yaml:"text_blink_rate"`
}

// CacheConfig sizes the row and sprite caches.
type CacheConfig struct {
	LineCommandCacheSize int `mapstructure:"line_command_cache_size" yaml:"line_command_cache_size"`
	ShapeCacheSize       int `mapstructure:"shape_cache_size" yaml:"shape_cache_size"`
	GlyphCacheSize       int `mapstructure:"glyph_cache_size" yaml:"glyph_cache_size"`
	ImageCacheSize       int `mapstructure:"image_cache_size" yaml:"image_cache_size"`
}

// AtlasConfig sizes the glyph atlas.
type AtlasConfig struct {
	InitialSize int `mapstructure:"initial_size" yaml:"initial_size"`
	MaxSize     int `mapstructure:"max_size" yaml:"max_size"`
	Padding     int `mapstructure:"padding" yaml:"padding"`
}

// CursorConfig controls the cursor.
type CursorConfig struct {
	// Shape is one of "block", "underline", "bar" or "hollow".
	Shape     string        `mapstructure:"shape" yaml:"shape"`
	BlinkRate time.Duration `mapstructure:"blink_rate" yaml:"blink_rate"`
	// ThicknessPx is the bar and underline thickness; 0 derives it from
	// the font.
	ThicknessPx float32 `mapstructure:"thickness_px" yaml:"thickness_px"`
}

// ColorsConfig holds "#rrggbb" colors.
type ColorsConfig struct {
	Foreground     string `mapstructure:"foreground" yaml:"foreground"`
	Background     string `mapstructure:"background" yaml:"background"`
	SelectionFg    string `mapstructure:"selection_fg" yaml:"selection_fg"`
	SelectionBg    string `mapstructure:"selection_bg" yaml:"selection_bg"`
	CursorFg       string `mapstructure:"cursor_fg" yaml:"cursor_fg"`
	CursorBg       string `mapstructure:"cursor_bg" yaml:"cursor_bg"`
	CursorBorder   string `mapstructure:"cursor_border" yaml:"cursor_border"`
	Split          string `mapstructure:"split" yaml:"split"`
	ScrollbarThumb string `mapstructure:"scrollbar_thumb" yaml:"scrollbar_thumb"`
	VisualBell     string `mapstructure:"visual_bell" yaml:"visual_bell"`
	LinkHover      string `mapstructure:"link_hover" yaml:"link_hover"`

	TabBarBg           string `mapstructure:"tab_bar_bg" yaml:"tab_bar_bg"`
	ActiveTabBg        string `mapstructure:"active_tab_bg" yaml:"active_tab_bg"`
	ActiveTabFg        string `mapstructure:"active_tab_fg" yaml:"active_tab_fg"`
	InactiveTabBg      string `mapstructure:"inactive_tab_bg" yaml:"inactive_tab_bg"`
	InactiveTabFg      string `mapstructure:"inactive_tab_fg" yaml:"inactive_tab_fg"`
	InactiveTabHoverBg string `mapstructure:"inactive_tab_hover_bg" yaml:"inactive_tab_hover_bg"`
}

// TabBarConfig controls the tab bar.
type TabBarConfig struct {
	Enabled  bool `mapstructure:"enabled" yaml:"enabled"`
	Fancy    bool `mapstructure:"fancy" yaml:"fancy"`
	AtBottom bool `mapstructure:"at_bottom" yaml:"at_bottom"`
}

// FontConfig selects the font rasterization.
type FontConfig struct {
	Size      float64 `mapstructure:"size" yaml:"size"`
	DPI       float64 `mapstructure:"dpi" yaml:"dpi"`
	Ligatures bool    `mapstructure:"ligatures" yaml:"ligatures"`
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			LineCommandCacheSize: linecache.DefaultLineCapacity,
			ShapeCacheSize:       linecache.DefaultShapeCapacity,
			GlyphCacheSize:       1024,
			ImageCacheSize:       256,
		},
		Atlas: AtlasConfig{
			InitialSize: atlas.DefaultSize,
			MaxSize:     atlas.MaxSize,
			Padding:     1,
		},
		Buffers: execute.DefaultConfig(),
		Cursor: CursorConfig{
			Shape:     "block",
			BlinkRate: 800 * time.Millisecond,
		},
		Colors: ColorsConfig{
			Foreground:         "#d0d0d0",
			Background:         "#000000",
			SelectionFg:        "",
			SelectionBg:        "#404060",
			CursorFg:           "#000000",
			CursorBg:           "#52ad70",
			CursorBorder:       "#52ad70",
			Split:              "#444444",
			ScrollbarThumb:     "#222222",
			VisualBell:         "",
			LinkHover:          "",
			TabBarBg:           "#0b0022",
			ActiveTabBg:        "#2b2042",
			ActiveTabFg:        "#c0c0c0",
			InactiveTabBg:      "#1b1032",
			InactiveTabFg:      "#808080",
			InactiveTabHoverBg: "#3b3052",
		},
		InactivePane: describe.DefaultConfig().InactivePaneHSB,
		Font: FontConfig{
			Size: 12,
			DPI:  96,
		},
		Scrollbar:     true,
		MaxPasses:     DefaultMaxPasses,
		TextBlinkRate: 500 * time.Millisecond,
	}
}

// withDefaults fills zero sizes and counts from DefaultConfig. Colors,
// flags and rates are taken as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cache.LineCommandCacheSize <= 0 {
		c.Cache.LineCommandCacheSize = d.Cache.LineCommandCacheSize
	}
	if c.Cache.ShapeCacheSize <= 0 {
		c.Cache.ShapeCacheSize = d.Cache.ShapeCacheSize
	}
	if c.Cache.GlyphCacheSize <= 0 {
		c.Cache.GlyphCacheSize = d.Cache.GlyphCacheSize
	}
	if c.Cache.ImageCacheSize <= 0 {
		c.Cache.ImageCacheSize = d.Cache.ImageCacheSize
	}
	if c.Atlas.InitialSize <= 0 {
		c.Atlas.InitialSize = d.Atlas.InitialSize
	}
	if c.Atlas.MaxSize <= 0 {
		c.Atlas.MaxSize = d.Atlas.MaxSize
	}
	if c.InactivePane == (command.HSBTransform{}) {
		c.InactivePane = d.InactivePane
	}
	if c.Font.Size <= 0 {
		c.Font.Size = d.Font.Size
	}
	if c.Font.DPI <= 0 {
		c.Font.DPI = d.Font.DPI
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = d.MaxPasses
	}
	return c
}

// GlyphCacheConfig returns the glyph cache settings.
func (c Config) GlyphCacheConfig() atlas.Config {
	c = c.withDefaults()
	return atlas.Config{
		InitialSize:    c.Atlas.InitialSize,
		MaxSize:        c.Atlas.MaxSize,
		Padding:        c.Atlas.Padding,
		FontSize:       c.Font.Size,
		DPI:            c.Font.DPI,
		GlyphCacheSize: c.Cache.GlyphCacheSize,
		ImageCacheSize: c.Cache.ImageCacheSize,
	}
}

// NewGlyphCache creates the glyph cache described by c.
func (c Config) NewGlyphCache() (*atlas.GlyphCache, error) {
	return atlas.NewGlyphCache(c.GlyphCacheConfig())
}

// DescribeConfig returns the describer settings.
func (c Config) DescribeConfig() describe.Config {
	c = c.withDefaults()
	d := describe.DefaultConfig()
	d.InactivePaneHSB = c.InactivePane
	d.ShowScrollbar = c.Scrollbar
	d.CursorBlinkInterval = c.Cursor.BlinkRate
	d.CursorThickness = c.Cursor.ThicknessPx
	d.TextBlinkInterval = c.TextBlinkRate
	d.PostProcess = c.PostProcess
	return d
}

// CursorShape parses Cursor.Shape. Empty and unknown shapes are blocks.
func (c Config) CursorShape() line.CursorShape {
	return line.ParseCursorShape(c.Cursor.Shape)
}

// Palette parses the configured colors. Empty colors stay transparent,
// which selects the describer's fallback for that role.
func (c Config) Palette() (describe.Palette, error) {
	var p describe.Palette
	fields := []struct {
		name string
		hex  string
		dst  *command.Color
	}{
		{"foreground", c.Colors.Foreground, &p.Fg},
		{"background", c.Colors.Background, &p.Bg},
		{"selection_fg", c.Colors.SelectionFg, &p.SelectionFg},
		{"selection_bg", c.Colors.SelectionBg, &p.SelectionBg},
		{"cursor_fg", c.Colors.CursorFg, &p.CursorFg},
		{"cursor_bg", c.Colors.CursorBg, &p.CursorBg},
		{"cursor_border", c.Colors.CursorBorder, &p.CursorBorder},
		{"split", c.Colors.Split, &p.Split},
		{"scrollbar_thumb", c.Colors.ScrollbarThumb, &p.ScrollbarThumb},
		{"visual_bell", c.Colors.VisualBell, &p.VisualBell},
		{"link_hover", c.Colors.LinkHover, &p.LinkHover},
		{"tab_bar_bg", c.Colors.TabBarBg, &p.TabBarBg},
		{"active_tab_bg", c.Colors.ActiveTabBg, &p.ActiveTabBg},
		{"active_tab_fg", c.Colors.ActiveTabFg, &p.ActiveTabFg},
		{"inactive_tab_bg", c.Colors.InactiveTabBg, &p.InactiveTabBg},
		{"inactive_tab_fg", c.Colors.InactiveTabFg, &p.InactiveTabFg},
		{"inactive_tab_hover_bg", c.Colors.InactiveTabHoverBg, &p.InactiveTabHoverBg},
	}
	for _, f := range fields {
		if f.hex == "" {
			continue
		}
		col, err := command.ParseHex(f.hex)
		if err != nil {
			return describe.Palette{}, fmt.Errorf("cellgrid: color %s: %w", f.name, err)
		}
		*f.dst = col
	}
	return p, nil
}
