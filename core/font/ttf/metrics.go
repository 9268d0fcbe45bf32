package ttf

import "golang.org/x/image/font/sfnt"

// advance returns the advance width of glyph gid.
//
// Table 'hmtx' holds numberOfHMetrics pairs (advanceWidth, lsb). Glyphs
// beyond that share the advance width of the last entry, which is typical
// for monospaced fonts.
func (t *HMtxTable) advance(gid GlyphIndex) (sfnt.Units, error) {
	i := int(gid)
	if i >= t.NumberOfHMetrics {
		i = t.NumberOfHMetrics - 1
	}
	a, err := t.data.u16(4 * i)
	if err != nil {
		return 0, errBounds(t.name, "advance of glyph %d", gid)
	}
	return sfnt.Units(a), nil
}

// lsb returns the left side bearing of glyph gid. For glyphs beyond
// numberOfHMetrics the bearings are stored in a separate array following the
// metrics pairs.
func (t *HMtxTable) lsb(gid GlyphIndex) (sfnt.Units, error) {
	pos := 4*int(gid) + 2
	if int(gid) >= t.NumberOfHMetrics {
		pos = 4*t.NumberOfHMetrics + 2*(int(gid)-t.NumberOfHMetrics)
	}
	l, err := t.data.i16(pos)
	if err != nil {
		return 0, errBounds(t.name, "left side bearing of glyph %d", gid)
	}
	return sfnt.Units(l), nil
}

func (otf *Font) checkMetrics(gid GlyphIndex) error {
	if otf.HHea == nil {
		return errMalformed(TagHHea, "missing table")
	}
	if otf.HMtx == nil {
		return errMalformed(TagHMtx, "missing table")
	}
	if int(gid) >= otf.MaxP.NumGlyphs {
		return errBounds(TagMaxP, "glyph index %d, font has %d glyphs", gid, otf.MaxP.NumGlyphs)
	}
	return nil
}

// Advance returns the horizontal advance of glyph gid in design units.
func (otf *Font) Advance(gid GlyphIndex) (sfnt.Units, error) {
	if err := otf.checkMetrics(gid); err != nil {
		return 0, err
	}
	return otf.HMtx.advance(gid)
}

// GlyphAdvance returns the horizontal advance of the glyph for character code c.
func (otf *Font) GlyphAdvance(c uint16) (sfnt.Units, error) {
	gid, err := otf.CMap.GlyphIndex(c)
	if err != nil {
		return 0, err
	}
	return otf.Advance(gid)
}

// Metrics returns advance, left side bearing and bounding box of glyph gid.
// It reads the glyph's header only, so it works for composite glyphs as well.
func (otf *Font) Metrics(gid GlyphIndex) (GlyphMetrics, error) {
	m := GlyphMetrics{}
	if err := otf.checkMetrics(gid); err != nil {
		return m, err
	}
	var err error
	if m.Advance, err = otf.HMtx.advance(gid); err != nil {
		return m, err
	}
	if m.LSB, err = otf.HMtx.lsb(gid); err != nil {
		return m, err
	}
	b, err := otf.glyphData(gid)
	if err != nil || len(b) == 0 {
		return m, err
	}
	_, m.BBox, err = glyphHeader(gid, b)
	return m, err
}
