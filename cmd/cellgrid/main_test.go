package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/atlas"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.Execute(); err != nil {
		t.Fatalf("cellgrid %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestRenderStdin(t *testing.T) {
	out := run(t, "hello\nworld\n", "render", "--cols", "10")
	for _, want := range []string{"1 panes", "passes      1", "hit regions"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSplitWithAtlas(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(input, []byte("ls -la\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	png := filepath.Join(dir, "atlas.png")
	out := run(t, "", "render", "--split", "--atlas", png, input)
	if !strings.Contains(out, "2 panes") {
		t.Errorf("output missing pane count:\n%s", out)
	}
	if fi, err := os.Stat(png); err != nil || fi.Size() == 0 {
		t.Errorf("atlas PNG not written: %v", err)
	}
}

func TestConfigPrintsYAML(t *testing.T) {
	out := run(t, "", "config")
	if !strings.Contains(out, "max_passes: 16") {
		t.Errorf("config output missing max_passes:\n%s", out)
	}
}

func TestConfigWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellgrid.yaml")
	out := run(t, "", "config", "--write", path)
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tab_bar:") {
		t.Errorf("written config missing tab_bar:\n%s", data)
	}
}

func TestBuildWindowTabBar(t *testing.T) {
	cfg := cellgrid.DefaultConfig()
	cfg.TabBar = cellgrid.TabBarConfig{Enabled: true, Fancy: true}
	m := atlas.Metrics{CellWidth: 8, CellHeight: 16}
	win, err := buildWindow(cfg, &renderFlags{tabs: 3, padding: 2}, m, []string{"abc", "de"})
	if err != nil {
		t.Fatal(err)
	}
	if win.Cols != 3 || win.Rows != 2 {
		t.Errorf("grid = %dx%d, want 3x2", win.Cols, win.Rows)
	}
	if win.TabBar == nil || len(win.TabBar.Tabs) != 3 || !win.TabBar.Tabs[0].Active {
		t.Fatalf("TabBar = %+v", win.TabBar)
	}
	// 2 rows of 16px, 2px padding on both sides and a 28px fancy bar.
	if win.Height != 32+4+28 {
		t.Errorf("Height = %v, want 64", win.Height)
	}
	if win.Width != 24+4 {
		t.Errorf("Width = %v, want 28", win.Width)
	}
}
