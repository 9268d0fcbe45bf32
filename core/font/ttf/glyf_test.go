package ttf

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf/ttftest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trianglePoints = []GlyphPoint{
	{X: 0, Y: 50, OnCurve: true},
	{X: 100, Y: 0, OnCurve: true},
	{X: 60, Y: 100, OnCurve: true},
}

func TestDecodeFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	c := newCursor(binarySegm{0x01, 0x09, 0x03, 0x00}, 0)
	flags, err := decodeFlags(c, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 9, 9, 9, 9, 0}, flags)
	assert.Equal(t, 4, c.pos)
}

func TestDecodeFlagsRepeatOvershoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	_, err := decodeFlags(newCursor(binarySegm{0x09, 0x05}, 0), 2)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
	_, err = decodeFlags(newCursor(binarySegm{0x01}, 0), 3)
	assert.Equal(t, core.EBOUNDS, core.Code(err), "flags end early")
}

func TestDecodeCoordinates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	data := binarySegm{10, 3, 0xfe, 0xd4, 0x01, 0xf4} // +10, -3, -300, +500
	xflags := []uint8{flagXShort | flagXSame, flagXShort, flagXSame, 0, 0}
	c := newCursor(data, 0)
	assert.Equal(t, []int16{10, 7, 7, -293, 207}, decodeCoordinates(c, xflags, flagXShort, flagXSame))
	require.NoError(t, c.err)
	yflags := []uint8{flagYShort | flagYSame, flagYShort, flagYSame, 0, 0}
	c = newCursor(data, 0)
	assert.Equal(t, []int16{10, 7, 7, -293, 207}, decodeCoordinates(c, yflags, flagYShort, flagYSame))
	require.NoError(t, c.err)
	c = newCursor(data[:3], 0)
	decodeCoordinates(c, xflags, flagXShort, flagXSame)
	assert.Error(t, c.err)
}

func TestDecodeTriangle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	for _, long := range []bool{false, true} {
		b := ttftest.Triangle()
		b.LongLoca = long
		otf, err := Parse(b.Build())
		require.NoError(t, err)
		shape, err := otf.GlyphShape('A')
		require.NoError(t, err, "long loca = %v", long)
		assert.Equal(t, GlyphIndex(1), shape.Glyph)
		assert.Equal(t, 1, shape.NumContours)
		assert.Equal(t, 3, shape.TotalPoints)
		assert.Equal(t, []uint16{2}, shape.EndPoints)
		assert.Equal(t, BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, shape.BBox)
		if diff := cmp.Diff(trianglePoints, shape.Points); diff != "" {
			t.Errorf("triangle points mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeGlyphRaw(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	font := ttftest.Triangle().Build()
	shape, err := DecodeGlyph(font, 'A')
	require.NoError(t, err)
	assert.Equal(t, trianglePoints, shape.Points)
	_, err = DecodeGlyph(font, 'Z')
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestDecodeContours(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	b := ttftest.NewBuilder()
	outer := []ttftest.Point{ttftest.On(0, 0), ttftest.On(0, 400), ttftest.On(400, 400), ttftest.On(400, 0)}
	inner := []ttftest.Point{ttftest.On(100, 100), ttftest.Off(300, 100), ttftest.On(300, 300)}
	b.AddGlyph('O', ttftest.Glyph{
		Contours:     [][]ttftest.Point{outer, inner},
		Advance:      500,
		Instructions: []byte{0xb0, 0x01, 0x2c}, // skipped
	})
	otf, err := Parse(b.Build())
	require.NoError(t, err)
	shape, err := otf.GlyphShape('O')
	require.NoError(t, err)
	assert.Equal(t, 2, shape.NumContours)
	assert.Equal(t, []uint16{3, 6}, shape.EndPoints)
	assert.Len(t, shape.Contour(0), 4)
	in := shape.Contour(1)
	require.Len(t, in, 3)
	assert.Equal(t, GlyphPoint{X: 300, Y: 100}, in[1])
	assert.True(t, in[2].OnCurve)
	assert.Nil(t, shape.Contour(2))
}

func TestDecodeEmptyGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	b := ttftest.Triangle()
	b.AddGlyph(' ', ttftest.Glyph{Advance: 50})
	otf, err := Parse(b.Build())
	require.NoError(t, err)
	shape, err := otf.GlyphShape(' ')
	require.NoError(t, err)
	assert.True(t, shape.Empty())
	assert.Empty(t, shape.Points)
	assert.True(t, shape.BBox.Empty())
}

func TestDecodeCompositeGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	b := ttftest.Triangle()
	gid := b.AddGlyph('C', ttftest.Glyph{Composite: true, Advance: 100})
	otf, err := Parse(b.Build())
	require.NoError(t, err)
	_, err = otf.GlyphShape('C')
	assert.Equal(t, core.EUNSUPPORTED, core.Code(err))
	m, err := otf.Metrics(GlyphIndex(gid))
	require.NoError(t, err, "metrics of composite glyphs come from the header")
	assert.Equal(t, 100, int(m.Advance))
}

func TestDecodeGlyphOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	otf, err := Parse(ttftest.Triangle().Build())
	require.NoError(t, err)
	_, err = otf.Glyph(99)
	assert.Equal(t, core.EBOUNDS, core.Code(err))
	_, err = otf.GlyphShape('Z')
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestDecodeDamagedGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	tri := ttftest.EncodeGlyph(ttftest.Triangle().Glyphs[1])
	_, err := decodeGlyph(1, binarySegm(tri))
	require.NoError(t, err)
	//
	_, err = decodeGlyph(1, binarySegm(tri[:len(tri)-1]))
	assert.Equal(t, core.EBOUNDS, core.Code(err), "truncated y coordinates")
	_, err = decodeGlyph(1, binarySegm(tri[:6]))
	assert.Equal(t, core.EBOUNDS, core.Code(err), "truncated header")
	//
	long := append([]byte(nil), tri...)
	binary.BigEndian.PutUint16(long[12:], 0xffff) // instruction length
	_, err = decodeGlyph(1, binarySegm(long))
	assert.Equal(t, core.EBOUNDS, core.Code(err), "instructions exceed glyph data")
	//
	two := ttftest.EncodeGlyph(ttftest.Glyph{Contours: [][]ttftest.Point{
		{ttftest.On(0, 0), ttftest.On(10, 0), ttftest.On(10, 10)},
		{ttftest.On(20, 0), ttftest.On(30, 0), ttftest.On(30, 10)},
	}})
	binary.BigEndian.PutUint16(two[12:], 1) // second contour ends before the first one
	_, err = decodeGlyph(1, binarySegm(two))
	assert.Equal(t, core.EMALFORMED, core.Code(err), "decreasing end points")
}

func TestDecodeInvertedBBox(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphatlas.fonts")
	defer teardown()
	//
	tri := ttftest.EncodeGlyph(ttftest.Triangle().Glyphs[1])
	binary.BigEndian.PutUint16(tri[2:], 300) // xMin > xMax = 100
	_, err := decodeGlyph(1, binarySegm(tri))
	assert.Equal(t, core.EMALFORMED, core.Code(err), "xMin > xMax")
	//
	tri = ttftest.EncodeGlyph(ttftest.Triangle().Glyphs[1])
	binary.BigEndian.PutUint16(tri[8:], 0xfff6) // yMax = -10 < yMin = 0
	_, err = decodeGlyph(1, binarySegm(tri))
	assert.Equal(t, core.EMALFORMED, core.Code(err), "yMin > yMax")
}
