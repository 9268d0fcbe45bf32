package ttf

import (
	"testing"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf/ttftest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/sfnt"
)

// monospaced has a third glyph beyond numberOfHMetrics.
func monospaced() *ttftest.Builder {
	b := ttftest.Triangle()
	b.AddGlyph('B', ttftest.Glyph{
		Contours: [][]ttftest.Point{{ttftest.On(30, 0), ttftest.On(30, 80), ttftest.On(70, 0)}},
		Advance:  140, // not written
	})
	b.NumberOfHMetrics = 2
	return b
}

func TestAdvance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	otf, err := Parse(ttftest.Triangle().Build())
	require.NoError(t, err)
	a, err := otf.Advance(0)
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(100), a)
	a, err = otf.GlyphAdvance('A')
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(120), a)
	_, err = otf.Advance(2)
	assert.Equal(t, core.EBOUNDS, core.Code(err))
	_, err = otf.GlyphAdvance('Z')
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestAdvanceBeyondHMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	otf, err := Parse(monospaced().Build())
	require.NoError(t, err)
	assert.Equal(t, 3, otf.NumGlyphs())
	assert.Equal(t, 2, otf.HHea.NumberOfHMetrics)
	m, err := otf.Metrics(2)
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(120), m.Advance, "advance of last hmtx entry")
	assert.Equal(t, sfnt.Units(30), m.LSB, "lsb from left side bearing array")
	assert.Equal(t, BoundingBox{MinX: 30, MinY: 0, MaxX: 70, MaxY: 80}, m.BBox)
}

func TestMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	b := ttftest.Triangle()
	space := b.AddGlyph(' ', ttftest.Glyph{Advance: 50})
	otf, err := Parse(b.Build())
	require.NoError(t, err)
	m, err := otf.Metrics(1)
	require.NoError(t, err)
	assert.Equal(t, GlyphMetrics{
		Advance: 120,
		BBox:    BoundingBox{MaxX: 100, MaxY: 100},
	}, m)
	m, err = otf.Metrics(GlyphIndex(space))
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(50), m.Advance)
	assert.True(t, m.BBox.Empty())
	assert.Equal(t, sfnt.Units(100), otf.HHea.Ascent)
}

func TestMetricsMissingTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	for _, omit := range [][]string{{"hhea", "hmtx"}, {"hmtx"}} {
		b := ttftest.Triangle()
		b.Omit = omit
		font := b.Build()
		otf, err := Parse(font)
		require.NoError(t, err)
		_, err = otf.Advance(1)
		assert.Equal(t, core.EMALFORMED, core.Code(err), "omitted %v", omit)
		_, err = GlyphAdvance(font, 'A')
		assert.Equal(t, core.EMALFORMED, core.Code(err), "omitted %v", omit)
	}
}

func TestGlyphAdvanceRaw(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	font := monospaced().Build()
	a, err := GlyphAdvance(font, 'A')
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(120), a)
	a, err = GlyphAdvance(font, 'B')
	require.NoError(t, err)
	assert.Equal(t, sfnt.Units(120), a)
	_, err = GlyphAdvance(font, 'Z')
	assert.Equal(t, core.EMISSING, core.Code(err))
}
