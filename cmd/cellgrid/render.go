package main

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/describe"
	"github.com/gogpu/cellgrid/grid"
)

// renderFlags are the layout flags of the render command.
type renderFlags struct {
	cols, rows int
	split      bool
	tabs       int
	padding    float32
	border     float32
	atlasPath  string
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a text file (or stdin) and print frame statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			text, err := readLines(in)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), cfg, rf, text)
		},
	}
	cmd.Flags().IntVar(&rf.cols, "cols", 0, "columns per pane (default: widest line)")
	cmd.Flags().IntVar(&rf.rows, "rows", 0, "rows per pane (default: number of lines)")
	cmd.Flags().BoolVar(&rf.split, "split", false, "show the text in two side-by-side panes")
	cmd.Flags().IntVar(&rf.tabs, "tabs", 0, "number of tabs in the tab bar (requires tab_bar.enabled)")
	cmd.Flags().Float32Var(&rf.padding, "padding", 0, "window padding in pixels")
	cmd.Flags().Float32Var(&rf.border, "border", 0, "window border in pixels")
	cmd.Flags().StringVar(&rf.atlasPath, "atlas", "", "write the glyph atlas to this PNG file")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, strings.ReplaceAll(sc.Text(), "\t", "    "))
	}
	return out, sc.Err()
}

// buildWindow lays out one or two panes showing text.
func buildWindow(cfg cellgrid.Config, rf *renderFlags, m atlas.Metrics, text []string) (*describe.Window, error) {
	pal, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	cols := rf.cols
	if cols <= 0 {
		for _, s := range text {
			cols = max(cols, grid.ParseLine(s, grid.Style{}).Columns())
		}
		cols = max(cols, 1)
	}
	rows := rf.rows
	if rows <= 0 {
		rows = max(len(text), 1)
	}

	lines := func() []grid.Line {
		out := make([]grid.Line, rows)
		for i := range out {
			s := ""
			if i < len(text) {
				s = text[i]
			}
			out[i] = grid.ParseLine(s, grid.Style{}).Pad(cols, grid.Style{})
		}
		return out
	}

	win := &describe.Window{
		Cols:    cols,
		Rows:    rows,
		Palette: pal,
		Padding: describe.Edges{Left: rf.padding, Top: rf.padding, Right: rf.padding, Bottom: rf.padding},
		Border:  describe.Border{Edges: describe.Edges{Left: rf.border, Top: rf.border, Right: rf.border, Bottom: rf.border}, Color: pal.Split},
	}

	cursor := describe.CursorPos{Visible: true, Shape: cfg.CursorShape()}
	first := describe.NewStaticPane(1, cols, lines(), pal)
	first.CursorAt = cursor
	win.Panes = []describe.PositionedPane{{Pane: first, Width: cols, Height: rows, Active: true}}

	if rf.split {
		second := describe.NewStaticPane(2, cols, lines(), pal)
		second.CursorAt = cursor
		win.Panes = append(win.Panes, describe.PositionedPane{Pane: second, Left: cols + 1, Width: cols, Height: rows})
		win.Splits = []describe.Split{{Direction: describe.SplitHorizontal, Left: cols, Size: rows}}
		win.Cols = 2*cols + 1
	}

	var barHeight float32
	if cfg.TabBar.Enabled {
		bar := &describe.TabBar{Fancy: cfg.TabBar.Fancy, AtBottom: cfg.TabBar.AtBottom}
		for i := range max(rf.tabs, 1) {
			bar.Tabs = append(bar.Tabs, describe.Tab{Title: fmt.Sprintf("tab %d", i+1), Active: i == 0})
		}
		win.TabBar = bar
		barHeight = float32(m.CellHeight)
		if bar.Fancy {
			barHeight = float32(math.Ceil(float64(m.CellHeight) * describe.FancyTabBarScale))
		}
	}

	win.Width = float32(win.Cols*m.CellWidth) + 2*(rf.padding+rf.border)
	win.Height = float32(win.Rows*m.CellHeight) + 2*(rf.padding+rf.border) + barHeight
	return win, nil
}

func render(w io.Writer, cfg cellgrid.Config, rf *renderFlags, text []string) error {
	glyphs, err := cfg.NewGlyphCache()
	if err != nil {
		return err
	}
	r, err := cellgrid.New(glyphs, cellgrid.WithConfig(cfg))
	if err != nil {
		return err
	}
	win, err := buildWindow(cfg, rf, glyphs.Metrics(), text)
	if err != nil {
		return err
	}

	res, err := r.Paint(win, time.Now())
	if err != nil {
		return err
	}
	if err := printResult(w, win, res); err != nil {
		return err
	}

	if rf.atlasPath != "" {
		f, err := os.Create(rf.atlasPath)
		if err != nil {
			return err
		}
		if err := png.Encode(f, glyphs.Atlas().Image()); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}

func printResult(w io.Writer, win *describe.Window, res *cellgrid.Result) error {
	st := res.Stats
	_, err := fmt.Fprintf(w, `window      %.0fx%.0f px, %d panes
passes      %d (atlas %d, buffers %d, shapes %d)
commands    %d drawable
quads       %d (fills %d, draws %d), overdraw %.2f
draw calls  %d
hit regions %d
line cache  %d/%d, hit rate %.2f
shape cache %d/%d, hit rate %.2f
atlas       %d px, %.1f%% used, images %s
`,
		win.Width, win.Height, len(win.Panes),
		res.Passes, st.AtlasRecreations, st.BufferGrowths, st.ShapeBumps,
		res.Frame.Count(),
		st.Frame.Quads, st.Frame.Fills, st.Frame.Draws, st.Frame.Overdraw,
		len(res.Plan.Draws()),
		len(res.Frame.HitRegions),
		st.Cache.Lines.Len, st.Cache.Lines.Capacity, st.Cache.Lines.HitRate,
		st.Cache.Shapes.Len, st.Cache.Shapes.Capacity, st.Cache.Shapes.HitRate,
		st.Atlas.AtlasSize, st.Atlas.Utilization*100, st.Allowance,
	)
	return err
}
