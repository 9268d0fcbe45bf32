package raster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf"
	"github.com/npillmayer/glyphatlas/core/font/ttf/ttftest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/sfnt"
)

func on(x, y int16) ttf.GlyphPoint  { return ttf.GlyphPoint{X: x, Y: y, OnCurve: true} }
func off(x, y int16) ttf.GlyphPoint { return ttf.GlyphPoint{X: x, Y: y} }

// shapeOf assembles a glyph shape from contours, computing its bounding box.
func shapeOf(contours ...[]ttf.GlyphPoint) *ttf.GlyphShape {
	shape := &ttf.GlyphShape{NumContours: len(contours)}
	first := true
	for _, c := range contours {
		for _, p := range c {
			x, y := sfnt.Units(p.X), sfnt.Units(p.Y)
			if first {
				shape.BBox = ttf.BoundingBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
				first = false
			}
			shape.BBox.MinX, shape.BBox.MaxX = min(shape.BBox.MinX, x), max(shape.BBox.MaxX, x)
			shape.BBox.MinY, shape.BBox.MaxY = min(shape.BBox.MinY, y), max(shape.BBox.MaxY, y)
		}
		shape.Points = append(shape.Points, c...)
		shape.EndPoints = append(shape.EndPoints, uint16(len(shape.Points)-1))
	}
	shape.TotalPoints = len(shape.Points)
	return shape
}

func triangle(t *testing.T) *ttf.GlyphShape {
	shape, err := ttf.DecodeGlyph(ttftest.Triangle().Build(), 'A')
	require.NoError(t, err)
	return shape
}

func TestFlattenDegenerateCurve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	p0, p1 := Point{0, 0}, Point{100, 100}
	lines := Flatten(p0, midpoint(p0, p1), p1, nil)
	require.Len(t, lines, 8)
	assert.Equal(t, p0, lines[0].P1)
	assert.Equal(t, p1, lines[7].P2)
	for i, l := range lines {
		assert.InDelta(t, l.P1.X, l.P1.Y, 1e-4, "segment %d not on straight line: %v", i, l)
		assert.InDelta(t, l.P2.X, l.P2.Y, 1e-4, "segment %d not on straight line: %v", i, l)
		assert.Greater(t, l.P2.X, l.P1.X)
		if i > 0 {
			assert.Equal(t, lines[i-1].P2, l.P1, "segments %d and %d not connected", i-1, i)
		}
	}
	assert.InDelta(t, 12.5, lines[0].P2.X, 1e-4, "parameter step is 1/8")
}

func TestLinesStraight(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	expected := []Line{
		{Point{0, 50}, Point{100, 0}},
		{Point{100, 0}, Point{60, 100}},
		{Point{60, 100}, Point{0, 50}},
	}
	if diff := cmp.Diff(expected, Lines(triangle(t))); diff != "" {
		t.Errorf("lines of triangle mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Lines(shapeOf()))
	assert.Empty(t, Lines(nil))
}

func TestLinesCurves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	arc := Lines(shapeOf([]ttf.GlyphPoint{on(0, 0), off(50, 100), on(100, 0)}))
	assert.Len(t, arc, 8+1)
	assert.Equal(t, Line{Point{100, 0}, Point{0, 0}}, arc[8], "closing line")
	//
	implied := Lines(shapeOf([]ttf.GlyphPoint{on(0, 0), off(0, 100), off(100, 100), on(100, 0)}))
	require.Len(t, implied, 8+8+1)
	assert.Equal(t, Point{50, 100}, implied[7].P2, "implied on-curve point")
	assert.Equal(t, Point{50, 100}, implied[8].P1)
	//
	lastOn := Lines(shapeOf([]ttf.GlyphPoint{off(50, 100), on(100, 0), on(0, 0)}))
	require.Len(t, lastOn, 8+1)
	assert.Equal(t, Point{0, 0}, lastOn[0].P1, "contour starts at last on-curve point")
	assert.Equal(t, Point{100, 0}, lastOn[7].P2)
	//
	allOff := Lines(shapeOf([]ttf.GlyphPoint{off(0, 0), off(0, 100), off(100, 100), off(100, 0)}))
	require.Len(t, allOff, 4*8)
	assert.Equal(t, Point{50, 0}, allOff[0].P1)
	assert.Equal(t, allOff[0].P1, allOff[len(allOff)-1].P2, "contour is closed")
}

func TestWindingSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	clockwise := Lines(shapeOf([]ttf.GlyphPoint{on(0, 0), on(0, 10), on(10, 10), on(10, 0)}))
	counter := Lines(shapeOf([]ttf.GlyphPoint{on(0, 0), on(10, 0), on(10, 10), on(0, 10)}))
	for _, lines := range [][]Line{clockwise, counter} {
		for _, p := range []Point{{5, 5}, {0.5, 0.5}, {9.5, 9.5}, {1, 9}} {
			assert.True(t, Inside(p.X, p.Y, lines), "%v expected to be inside", p)
		}
		for _, p := range []Point{{-1, 5}, {11, 5}, {5, -1}, {5, 11}, {-5, -5}, {20, 20}} {
			assert.False(t, Inside(p.X, p.Y, lines), "%v expected to be outside", p)
		}
		// half-open: left and bottom edges are inside, right and top edges are not
		assert.True(t, Inside(0, 5, lines))
		assert.True(t, Inside(5, 0, lines))
		assert.True(t, Inside(0, 0, lines))
		assert.False(t, Inside(10, 5, lines))
		assert.False(t, Inside(5, 10, lines))
		assert.False(t, Inside(10, 10, lines))
	}
}

func TestWindingNested(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	outer := []ttf.GlyphPoint{on(0, 0), on(0, 30), on(30, 30), on(30, 0)}
	hole := []ttf.GlyphPoint{on(10, 10), on(20, 10), on(20, 20), on(10, 20)} // reverse direction
	lines := Lines(shapeOf(outer, hole))
	assert.True(t, Inside(5, 5, lines))
	assert.False(t, Inside(15, 15, lines), "hole")
	same := []ttf.GlyphPoint{on(10, 10), on(10, 20), on(20, 20), on(20, 10)} // same direction
	lines = Lines(shapeOf(outer, same))
	assert.True(t, Inside(15, 15, lines), "winding number 2 is nonzero")
}

func TestRasterizeTriangle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	bmp, err := Rasterize(triangle(t))
	require.NoError(t, err)
	assert.Equal(t, 100, bmp.Width)
	assert.Equal(t, 100, bmp.Height)
	require.Len(t, bmp.Pix, 100*100)
	assert.Equal(t, Ink, bmp.At(53, 50), "centroid")
	assert.Equal(t, Ink, bmp.Pix[50*100+53])
	for _, c := range [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		assert.Equal(t, Background, bmp.At(c[0], c[1]), "corner %v", c)
	}
	for _, v := range bmp.Pix {
		require.True(t, v == Ink || v == Background)
	}
}

func TestRasterizeEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	bmp, err := Rasterize(shapeOf())
	require.NoError(t, err)
	assert.Equal(t, 0, bmp.Area())
	bmp, err = RasterizeReduced(shapeOf(), 16)
	require.NoError(t, err)
	assert.Equal(t, 1, bmp.Width)
	assert.Equal(t, 1, bmp.Height)
	assert.Equal(t, Background, bmp.At(0, 0))
	_, err = Rasterize(nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestRasterizeReducedPartialBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	bmp, err := RasterizeReduced(triangle(t), 32)
	require.NoError(t, err)
	assert.Equal(t, 100/32+1, bmp.Width)
	assert.Equal(t, 100/32+1, bmp.Height)
	t.Logf("reduced triangle:\n%s", bmp)
	assert.Equal(t, Background, bmp.At(0, 0), "block entirely outside")
	assert.Equal(t, Background, bmp.At(3, 3), "block entirely outside")
	assert.Equal(t, Ink, bmp.At(1, 1))
	// a block is ink as soon as a single sample is inside: the lower right
	// block holds just a sliver of the triangle
	assert.Equal(t, Ink, bmp.At(3, 0))
}

func TestRasterizeReducedDivisions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	_, err := RasterizeReduced(triangle(t), 0)
	assert.Equal(t, core.EINVALID, core.Code(err))
	full, err := Rasterize(triangle(t))
	require.NoError(t, err)
	one, err := RasterizeReduced(triangle(t), 1)
	require.NoError(t, err)
	assert.Equal(t, 101, one.Width)
	assert.Equal(t, 101, one.Height)
	// pixel (54, 51) samples design unit (int(54·0.9999), int(51·0.9999))
	assert.Equal(t, full.At(53, 50), one.At(54, 51))
	assert.Equal(t, full.At(0, 0), one.At(0, 0))
}

func TestGlyphShifts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	bmp, err := Glyph(triangle(t), 120, 32)
	require.NoError(t, err)
	assert.Equal(t, float32(3.75), bmp.XShift)
	assert.Equal(t, float32(0), bmp.YShift)
	descender := shapeOf([]ttf.GlyphPoint{on(0, -64), on(0, 64), on(64, 64), on(64, -64)})
	bmp, err = Glyph(descender, 80, 32)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), bmp.XShift)
	assert.Equal(t, float32(-2), bmp.YShift)
	assert.Equal(t, 3, bmp.Width)
	assert.Equal(t, 5, bmp.Height)
	bmp, err = Glyph(shapeOf(), 50, 10)
	require.NoError(t, err)
	assert.Equal(t, float32(5), bmp.XShift, "empty glyphs still advance the pen")
	assert.Equal(t, 1, bmp.Area())
}

func TestRasterizeInvertedBBox(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.atlas")
	defer teardown()
	//
	shape := triangle(t)
	shape.BBox.MinX = 300
	_, err := Rasterize(shape)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
	_, err = RasterizeReduced(shape, 32)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
	_, err = Glyph(shape, 120, 32)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
}
