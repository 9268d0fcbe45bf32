package ttf

// CMapTable represents a TrueType cmap table, i.e. the table to receive glyphs
// from character codes.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// A cmap table may contain more than one subtable, but we will only
// instantiate the most appropriate one, which has to be of format 4.
type CMapTable struct {
	tableBase
	PlatformID    uint16
	EncodingID    uint16
	GlyphIndexMap *Format4
}

// GlyphIndex returns the glyph index for character code c.
// Unmapped codes result in an error with code core.EMISSING.
func (t *CMapTable) GlyphIndex(c uint16) (GlyphIndex, error) {
	return t.GlyphIndexMap.GlyphIndex(c)
}

// platformEncodingRank orders encoding records of format 4 subtables by
// preference. Higher is better; ties go to the record found first.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient, which is what format 4
// is about. Windows Unicode BMP is by far the most common encoding, followed
// by the Unicode platform. Symbol fonts (3, 0) map their glyphs into the
// private use area starting at U+F000.
func platformEncodingRank(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		if psid == 3 { // Unicode BMP
			return 3
		}
		return 2
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 4
		case 0: // Symbol
			return 1
		}
	}
	return 0
}

// Header:  uint16 version, uint16 numTables
// Records: uint16 platformID, uint16 encodingID, Offset32 subtableOffset
func parseCMap(rec TableRecord, b binarySegm) (*CMapTable, error) {
	c := newCursor(b, 2)
	n := int(c.u16())
	if c.err != nil {
		return nil, errBounds(rec.Tag, "header")
	}
	best, bestRank := -1, -1
	var bestPID, bestPSID uint16
	var formats []uint16
	for i := 0; i < n; i++ {
		pid, psid, off := c.u16(), c.u16(), c.u32()
		if c.err != nil {
			return nil, errBounds(rec.Tag, "encoding record #%d", i)
		}
		format, err := b.u16(int(off))
		if err != nil {
			return nil, errBounds(rec.Tag, "subtable #%d at offset %d", i, off)
		}
		tracer().Debugf("cmap subtable (%d | %d) has format %d", pid, psid, format)
		if format != 4 {
			formats = append(formats, format)
			continue
		}
		if r := platformEncodingRank(pid, psid); r > bestRank {
			best, bestRank = int(off), r
			bestPID, bestPSID = pid, psid
		}
	}
	if best < 0 {
		return nil, errUnsupported(rec.Tag, "no format 4 subtable, found formats %v", formats)
	}
	f4, err := makeFormat4(rec.Tag, b[best:])
	if err != nil {
		return nil, err
	}
	return &CMapTable{
		tableBase:     newTableBase(rec, b),
		PlatformID:    bestPID,
		EncodingID:    bestPSID,
		GlyphIndexMap: f4,
	}, nil
}

// --- Format 4 --------------------------------------------------------------

// Format4 implements cmap format 4: segment mapping to delta values.
// This is the standard character-to-glyph-index mapping subtable for fonts that
// support only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// The format's data is divided into three parts, which must occur in the
// following order:
//
//   - A seven-word header including segCountX2 at byte 6
//   - Four parallel arrays describing the segments: endCode, (a reserved pad
//     word), startCode, idDelta and idRangeOffset
//   - A variable-length array of glyph IDs (unsigned words)
//
// Format4 keeps the subtable's bytes, as idRangeOffset values are relative to
// their own position within the subtable.
type Format4 struct {
	data    binarySegm
	entries []cmapEntry16
}

type cmapEntry16 struct {
	end, start, delta, offset uint16
}

const format4HeaderSize = 14

func makeFormat4(tag Tag, b binarySegm) (*Format4, error) {
	length, err := b.u16(2)
	if err != nil {
		return nil, errBounds(tag, "format 4 header")
	}
	if int(length) < format4HeaderSize {
		return nil, errMalformed(tag, "format 4 subtable length %d", length)
	}
	if b, err = b.view(0, int(length)); err != nil {
		return nil, errBounds(tag, "format 4 subtable length %d exceeds table", length)
	}
	segCountX2 := u16(b[6:])
	if segCountX2&1 != 0 || segCountX2 == 0 {
		return nil, errMalformed(tag, "format 4 segCountX2 = %d", segCountX2)
	}
	segCnt := int(segCountX2 / 2)
	if _, err := b.view(format4HeaderSize, 8*segCnt+2); err != nil {
		return nil, errBounds(tag, "format 4 segment arrays for %d segments", segCnt)
	}
	f4 := &Format4{data: b, entries: make([]cmapEntry16, segCnt)}
	endCodes := format4HeaderSize
	startCodes := endCodes + 2*segCnt + 2 // 2 is a padding entry in the cmap table
	deltas := startCodes + 2*segCnt
	offsets := deltas + 2*segCnt
	for i := range f4.entries {
		f4.entries[i] = cmapEntry16{
			end:    u16(b[endCodes+2*i:]),
			start:  u16(b[startCodes+2*i:]),
			delta:  u16(b[deltas+2*i:]),
			offset: u16(b[offsets+2*i:]),
		}
	}
	tracer().Debugf("cmap format 4 with %d segments", segCnt)
	return f4, nil
}

// Segments returns the number of segments of the subtable.
func (f4 *Format4) Segments() int {
	return len(f4.entries)
}

// rangeOffsetPos is the position of idRangeOffset[i] within the subtable.
func (f4 *Format4) rangeOffsetPos(i int) int {
	return format4HeaderSize + 6*len(f4.entries) + 2 + 2*i
}

// GlyphIndex maps character code c to a glyph index.
//
// Segments are scanned in order; the first segment with endCode ≥ c decides.
// If c is below that segment's startCode, c is unmapped. An idRangeOffset of 0
// means the glyph index is c + idDelta (modulo 65536). Otherwise the glyph
// index is read from the glyph ID array, at the position of idRangeOffset[i]
// plus idRangeOffset[i] plus 2·(c − startCode[i]). A value of 0 read there is
// the 'missing character' glyph; every other value gets idDelta added.
//
// Unmapped codes result in an error with code core.EMISSING, glyph ID array
// positions outside the subtable in an error with code core.EBOUNDS.
func (f4 *Format4) GlyphIndex(c uint16) (GlyphIndex, error) {
	for i, e := range f4.entries {
		if e.end < c {
			continue
		}
		if c < e.start {
			return 0, errUnmapped(c)
		}
		if e.offset == 0 {
			return GlyphIndex(c + e.delta), nil // uint16 arithmetic wraps mod 65536
		}
		pos := f4.rangeOffsetPos(i) + int(e.offset) + 2*int(c-e.start)
		gid, err := f4.data.u16(pos)
		if err != nil {
			return 0, errBounds(TagCMap, "glyph ID array position %d for code 0x%04x", pos, c)
		}
		if gid == 0 {
			return 0, nil
		}
		return GlyphIndex(gid + e.delta), nil
	}
	return 0, errUnmapped(c)
}

// Lookup is a convenience variant of GlyphIndex, flagging any failure with
// false.
func (f4 *Format4) Lookup(c uint16) (GlyphIndex, bool) {
	gid, err := f4.GlyphIndex(c)
	return gid, err == nil
}

// ReverseLookup retrieves a character code for a given glyph. The cmap tables
// do not support this operation, thus this operation is inefficient.
// However, for testing and debugging purposes it is often useful.
func (f4 *Format4) ReverseLookup(gid GlyphIndex) (uint16, bool) {
	if gid == 0 {
		return 0, false
	}
	for _, e := range f4.entries {
		if e.end < e.start {
			continue
		}
		for c := uint32(e.start); c <= uint32(e.end); c++ {
			if g, ok := f4.Lookup(uint16(c)); ok && g == gid {
				return uint16(c), true
			}
		}
	}
	return 0, false
}
