package cellgrid

import (
	"testing"

	"github.com/gogpu/cellgrid/linecache"
	"github.com/gogpu/cellgrid/shape"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.shaper != nil || o.cache != nil {
		t.Error("default options should leave shaper and cache unset")
	}
	if o.cfg.MaxPasses != DefaultMaxPasses {
		t.Errorf("MaxPasses = %d, want %d", o.cfg.MaxPasses, DefaultMaxPasses)
	}
}

func TestWithLineCache(t *testing.T) {
	g := newGlyphs(t, DefaultConfig())
	c := linecache.New(linecache.Config{LineCapacity: 8})
	r, err := New(g, WithLineCache(c))
	if err != nil {
		t.Fatal(err)
	}
	if r.cache != c {
		t.Error("WithLineCache was not used")
	}
	if _, err := r.Paint(testWindow(t, g), now); err != nil {
		t.Fatal(err)
	}
	if s := c.Stats(); s.Lines.Len == 0 || s.Lines.Capacity != 8 {
		t.Errorf("shared cache stats = %+v", s.Lines)
	}
}

func TestWithShaper(t *testing.T) {
	s, err := shape.NewShaper()
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(newGlyphs(t, DefaultConfig()), WithShaper(s))
	if err != nil {
		t.Fatal(err)
	}
	if r.describer == nil {
		t.Fatal("describer not created")
	}
}

func TestWithConfigDefaultsZeroFields(t *testing.T) {
	r, err := New(newGlyphs(t, DefaultConfig()), WithConfig(Config{Scrollbar: true}))
	if err != nil {
		t.Fatal(err)
	}
	cfg := r.Config()
	if cfg.MaxPasses != DefaultMaxPasses {
		t.Errorf("MaxPasses = %d, want %d", cfg.MaxPasses, DefaultMaxPasses)
	}
	if cfg.Cache.LineCommandCacheSize != linecache.DefaultLineCapacity {
		t.Errorf("LineCommandCacheSize = %d", cfg.Cache.LineCommandCacheSize)
	}
	if !cfg.Scrollbar {
		t.Error("explicit flags must be kept")
	}
}
