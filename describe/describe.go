// Package describe turns window state into a frame.Frame.
//
// A Describer keeps the row caches and generation counters between
// frames. Prepare runs the per-frame maintenance and must be called once
// per frame before Describe; Describe itself may run several times per
// frame when the renderer retries.
package describe

import (
	"math"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/element"
	"github.com/gogpu/cellgrid/frame"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/linecache"
	"github.com/gogpu/cellgrid/shape"
)

// Depths used by the describer.
const (
	DepthContent int8 = 0
	DepthBorder  int8 = 1
	DepthChrome  int8 = 2
	DepthModal   int8 = 3
)

// FancyTabBarScale is the height of the element tab bar in cells.
const FancyTabBarScale = 1.75

// maskedGlyph replaces the cursor cell while a password is typed.
const maskedGlyph = "*"

// Resolver is the glyph cache capability used by the describer.
type Resolver interface {
	shape.Resolver
	element.PolygonResolver
	Metrics() atlas.Metrics
	// Generation changes whenever the atlas is recreated.
	Generation() uint64
}

// Config holds the describer settings.
type Config struct {
	InactivePaneHSB     command.HSBTransform `mapstructure:"inactive_pane_hsb" yaml:"inactive_pane_hsb"`
	ShowScrollbar       bool                 `mapstructure:"show_scrollbar" yaml:"show_scrollbar"`
	ScrollbarMinHeight  float32              `mapstructure:"scrollbar_min_height" yaml:"scrollbar_min_height"`
	CursorBlinkInterval time.Duration        `mapstructure:"cursor_blink_interval" yaml:"cursor_blink_interval"`
	CursorThickness     float32              `mapstructure:"cursor_thickness" yaml:"cursor_thickness"`
	TextBlinkInterval   time.Duration        `mapstructure:"text_blink_interval" yaml:"text_blink_interval"`
	DetectPasswordInput bool                 `mapstructure:"detect_password_input" yaml:"detect_password_input"`
	PostProcess         bool                 `mapstructure:"post_process" yaml:"post_process"`
}

// DefaultConfig returns the default describer settings.
func DefaultConfig() Config {
	return Config{
		InactivePaneHSB:     command.HSBTransform{Hue: 1, Saturation: 0.9, Brightness: 0.8},
		ShowScrollbar:       true,
		ScrollbarMinHeight:  8,
		TextBlinkInterval:   500 * time.Millisecond,
		DetectPasswordInput: true,
	}
}

// Generations are the counters that make cached rows unreachable.
type Generations struct {
	Config uint64
	Shape  uint64
	Quad   uint64
}

// PrepareResult reports the maintenance done by Prepare.
type PrepareResult struct {
	// DirtyRows is the number of visible rows that changed.
	DirtyRows int
	// FocusChanged is set when the active pane changed.
	FocusChanged bool
	// IMECursor is the pixel rectangle of the active cursor, for placing
	// the input-method window.
	IMECursor *command.Rect
	// Pruned is the number of expired cache entries dropped.
	Pruned int
}

// Describer builds frames.
type Describer struct {
	cfg    Config
	res    Resolver
	shaper *shape.Shaper
	cache  *linecache.Cache

	gens      Generations
	allowance atlas.Allowance

	focused    uint64
	hasFocused bool
	start      time.Time

	// fontEpoch is the resolver epoch the shape generation was taken at.
	fontEpoch uint64
}

// New creates a Describer.
func New(cfg Config, res Resolver, shaper *shape.Shaper, cache *linecache.Cache) *Describer {
	d := &Describer{
		cfg:    cfg,
		res:    res,
		shaper: shaper,
		cache:  cache,
	}
	if res != nil {
		d.fontEpoch = res.FontEpoch()
	}
	return d
}

// Cache returns the row cache.
func (d *Describer) Cache() *linecache.Cache { return d.cache }

// Generations returns the current counters.
func (d *Describer) Generations() Generations { return d.gens }

// SetConfig replaces the settings and advances the config generation.
func (d *Describer) SetConfig(cfg Config) {
	d.cfg = cfg
	d.gens.Config++
}

// BumpShapeGeneration makes every cached row and shaped line unreachable.
func (d *Describer) BumpShapeGeneration() { d.gens.Shape++ }

// BumpQuadGeneration makes every cached row unreachable.
func (d *Describer) BumpQuadGeneration() { d.gens.Quad++ }

// Allowance returns how images may be placed in the atlas.
func (d *Describer) Allowance() atlas.Allowance { return d.allowance }

// SetAllowance changes how images are placed in the atlas.
func (d *Describer) SetAllowance(a atlas.Allowance) { d.allowance = a }

// metrics are the cell metrics in pixels.
type metrics struct {
	cw, ch    float32
	thickness float32
}

func (d *Describer) metrics() metrics {
	m := d.res.Metrics()
	return metrics{
		cw:        float32(m.CellWidth),
		ch:        float32(m.CellHeight),
		thickness: float32(max(m.UnderlineThickness, 1)),
	}
}

// tabBarHeight returns the pixel height of the tab bar, or 0 without one.
func (d *Describer) tabBarHeight(win *Window, m metrics) float32 {
	switch {
	case win.TabBar == nil:
		return 0
	case win.TabBar.Fancy:
		return float32(math.Ceil(float64(m.ch) * FancyTabBarScale))
	}
	return m.ch
}

// bars returns the heights of the bars above and below the panes.
func (d *Describer) bars(win *Window, m metrics) (top, bottom float32) {
	h := d.tabBarHeight(win, m)
	if win.TabBar != nil && win.TabBar.AtBottom {
		return 0, h
	}
	return h, 0
}

// Prepare performs the per-frame maintenance: it advises panes of focus
// changes, accounts for dirty rows, locates the cursor for the input
// method and prunes expired cache entries.
func (d *Describer) Prepare(win *Window, now time.Time) PrepareResult {
	var out PrepareResult

	if active, ok := win.ActivePane(); ok {
		id := active.Pane.ID()
		if !d.hasFocused || d.focused != id {
			for i := range win.Panes {
				if p := win.Panes[i].Pane; d.hasFocused && p.ID() == d.focused {
					p.Focus(false)
				}
			}
			active.Pane.Focus(true)
			d.focused, d.hasFocused = id, true
			out.FocusChanged = true
		}

		m := d.metrics()
		top, _ := d.bars(win, m)
		cur := active.Pane.Cursor()
		dims := active.Pane.Dimensions()
		vt := active.viewTop(dims)
		if cur.Visible && cur.Row >= vt && cur.Row < vt+dims.ViewportRows {
			r := command.R(
				win.Padding.Left+win.Border.Left+float32(active.Left+cur.Column)*m.cw,
				top+win.Padding.Top+win.Border.Top+float32(active.Top+cur.Row-vt)*m.ch,
				m.cw, m.ch,
			)
			out.IMECursor = &r
		}
	}

	for i := range win.Panes {
		p := &win.Panes[i]
		dims := p.Pane.Dimensions()
		out.DirtyRows += len(p.Pane.DirtyRows(p.viewTop(dims), dims.ViewportRows))
	}

	if d.cache != nil {
		out.Pruned = d.cache.PruneExpired(now)
	}
	return out
}

// Describe builds the frame for win. It fails with an atlas exhaustion or
// shape staleness error that the caller recovers from by retrying.
func (d *Describer) Describe(win *Window, now time.Time) (*frame.Frame, error) {
	if d.start.IsZero() {
		d.start = now
	}
	if e := d.res.FontEpoch(); e != d.fontEpoch {
		// Shaped rows hold sprites and advances of the previous font.
		d.fontEpoch = e
		d.gens.Shape++
	}
	m := d.metrics()
	sprites, err := d.sprites()
	if err != nil {
		return nil, err
	}

	f := &frame.Frame{Background: d.windowBackground(win)}

	for i := range win.Panes {
		pf, hits, err := d.pane(win, &win.Panes[i], m, sprites, now)
		if err != nil {
			return nil, err
		}
		f.Panes = append(f.Panes, pf)
		f.HitRegions = append(f.HitRegions, hits...)
	}

	splits, hits := d.splits(win, m)
	f.Chrome.Splits = splits
	f.HitRegions = append(f.HitRegions, hits...)

	if win.TabBar != nil {
		cmds, hits, err := d.tabBar(win, m, now)
		if err != nil {
			return nil, err
		}
		f.Chrome.TabBar = cmds
		f.HitRegions = append(f.HitRegions, hits...)
	}

	f.Chrome.Borders = d.borders(win)

	if win.Modal != nil {
		cmds, hits, err := element.Describe(win.Modal, element.Params{
			Resolver: d.res,
			Depth:    DepthModal,
			Pointer:  win.Pointer,
			Style:    line.Style{CellWidth: m.cw, CellHeight: m.ch},
			Now:      now,
		})
		if err != nil {
			return nil, err
		}
		f.Chrome.Modal = cmds
		for _, h := range hits {
			if h.Kind == frame.HitNone {
				h.Kind = frame.HitModal
			}
			f.HitRegions = append(f.HitRegions, h)
		}
	}

	if d.cfg.PostProcess {
		f.PostProcess = &frame.PostProcess{Width: win.Width, Height: win.Height, Time: now.Sub(d.start)}
	}
	return f, nil
}

// sprites resolves the utility sprites shared by every row.
func (d *Describer) sprites() (line.Sprites, error) {
	var s line.Sprites
	var err error
	if s.Underline, err = d.res.ResolveSprite(atlas.SpriteKey{Kind: atlas.SpriteUnderline, Cells: 1}); err != nil {
		return s, err
	}
	if s.HollowCursor, err = d.res.ResolveSprite(atlas.SpriteKey{Kind: atlas.SpriteCursorHollow, Cells: 1}); err != nil {
		return s, err
	}
	if s.Masked, err = d.res.ResolveGlyph(atlas.GlyphKey{Text: maskedGlyph, Cells: 1}); err != nil {
		return s, err
	}
	return s, nil
}

func (d *Describer) windowBackground(win *Window) []command.Command {
	bg := win.Palette.Bg
	if len(win.Panes) == 1 {
		bg = win.Panes[0].Pane.Palette().Bg
	}
	return []command.Command{command.FillRect{
		Depth: DepthContent,
		Rect:  command.R(0, 0, win.Width, win.Height),
		Color: bg.WithAlpha(1),
	}}
}
