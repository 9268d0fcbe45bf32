package ttf

import (
	"golang.org/x/image/font/sfnt"
)

// Code comments often cite passages from the TrueType reference manual;
// see https://developer.apple.com/fonts/TrueType-Reference-Manual/
// and https://docs.microsoft.com/en-us/typography/opentype/spec/.

var tagDirectory = T("dir ")

// ReadDirectory reads the offset subtable and all table records of a font.
// Records are returned in the order they appear in the font.
func ReadDirectory(font []byte) (OffsetSubtable, []TableRecord, error) {
	src := binarySegm(font)
	c := newCursor(src, 0)
	h := OffsetSubtable{
		ScalerType:    c.u32(),
		NumTables:     c.u16(),
		SearchRange:   c.u16(),
		EntrySelector: c.u16(),
		RangeShift:    c.u16(),
	}
	if c.err != nil {
		return h, nil, errBounds(tagDirectory, "font data too short for offset subtable (%d bytes)", len(font))
	}
	buf, err := src.view(offsetSubtableSize, tableRecordSize*int(h.NumTables))
	if err != nil {
		return h, nil, errBounds(tagDirectory, "%d table records exceed font size %d", h.NumTables, len(font))
	}
	records := make([]TableRecord, h.NumTables)
	for i := range records {
		records[i] = makeTableRecord(buf[i*tableRecordSize:])
	}
	tracer().Debugf("font directory has %d tables", h.NumTables)
	return h, records, nil
}

// LocateTable scans the table directory of a font for a table with tag tag.
// It returns the table's record together with the table's bytes, which are a
// sub-slice of font.
//
// If the font does not contain the table, an error with code core.EMALFORMED
// is returned. If the directory or the table's data reach beyond the end of
// font, the error has code core.EBOUNDS.
func LocateTable(font []byte, tag Tag) (TableRecord, []byte, error) {
	src := binarySegm(font)
	n, err := src.u16(4)
	if err != nil {
		return TableRecord{}, nil, errBounds(tagDirectory, "font data too short for offset subtable")
	}
	for i := 0; i < int(n); i++ {
		b, err := src.view(offsetSubtableSize+i*tableRecordSize, tableRecordSize)
		if err != nil {
			return TableRecord{}, nil, errBounds(tagDirectory, "table record #%d beyond end of font", i)
		}
		if MakeTag(b) != tag {
			continue
		}
		rec := makeTableRecord(b)
		data, err := tableData(src, rec)
		return rec, data, err
	}
	return TableRecord{}, nil, errMalformed(tag, "table not present in font")
}

func tableData(src binarySegm, rec TableRecord) (binarySegm, error) {
	data, err := src.view(int(rec.Offset), int(rec.Length))
	if err != nil {
		return nil, errBounds(rec.Tag, "table at %d with length %d exceeds font size %d",
			rec.Offset, rec.Length, len(src))
	}
	return data, nil
}

// --- Font ------------------------------------------------------------------

// Font is a parsed TrueType font. It keeps references into the font's bytes,
// which therefore must not be modified while the Font is in use.
//
// A Font is immutable after Parse returns and may be used concurrently.
type Font struct {
	Binary  []byte
	Header  OffsetSubtable
	Records []TableRecord
	Head    *HeadTable
	MaxP    *MaxPTable
	Loca    *LocaTable
	CMap    *CMapTable
	HHea    *HHeaTable // may be nil; checked when metrics are requested
	HMtx    *HMtxTable // may be nil; checked when metrics are requested
	glyf    binarySegm
}

// RequiredTables lists the tables a font must contain to be parsed.
var RequiredTables = []Tag{TagCMap, TagHead, TagMaxP, TagLoca, TagGlyf}

// Parse parses a TrueType font from a byte slice.
// A ttf.Font needs ongoing access to the font's byte-data after Parse returns.
func Parse(font []byte) (*Font, error) {
	h, records, err := ReadDirectory(font)
	if err != nil {
		return nil, err
	}
	switch h.ScalerType {
	case 0x00010000, 0x74727565: // TrueType, 'true'
	case 0x4f54544f: // 'OTTO'
		return nil, errUnsupported(tagDirectory, "CFF outlines are not supported")
	default:
		return nil, errUnsupported(tagDirectory, "font type not supported: %x", h.ScalerType)
	}
	src := binarySegm(font)
	tables := make(map[Tag]binarySegm, len(records))
	recs := make(map[Tag]TableRecord, len(records))
	for _, rec := range records {
		data, err := tableData(src, rec)
		if err != nil {
			return nil, err
		}
		tables[rec.Tag], recs[rec.Tag] = data, rec
	}
	for _, tag := range RequiredTables {
		if _, ok := tables[tag]; !ok {
			return nil, errMalformed(tag, "missing required table")
		}
	}
	otf := &Font{Binary: font, Header: h, Records: records, glyf: tables[TagGlyf]}
	if otf.Head, err = parseHead(recs[TagHead], tables[TagHead]); err != nil {
		return nil, err
	}
	if otf.MaxP, err = parseMaxP(recs[TagMaxP], tables[TagMaxP]); err != nil {
		return nil, err
	}
	if otf.Loca, err = parseLoca(recs[TagLoca], tables[TagLoca], otf.Head.IndexToLocFormat, otf.MaxP.NumGlyphs); err != nil {
		return nil, err
	}
	if otf.CMap, err = parseCMap(recs[TagCMap], tables[TagCMap]); err != nil {
		return nil, err
	}
	if b, ok := tables[TagHHea]; ok {
		if otf.HHea, err = parseHHea(recs[TagHHea], b); err != nil {
			return nil, err
		}
		if m, ok := tables[TagHMtx]; ok {
			otf.HMtx, err = parseHMtx(recs[TagHMtx], m, otf.HHea.NumberOfHMetrics)
			if err != nil {
				return nil, err
			}
		}
	}
	tracer().Debugf("parsed TrueType font with %d tables and %d glyphs", len(records), otf.MaxP.NumGlyphs)
	return otf, nil
}

// Table returns the directory record for a table, if present.
func (otf *Font) Table(tag Tag) (TableRecord, bool) {
	for _, rec := range otf.Records {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return TableRecord{}, false
}

// TableTags returns the tags of all tables of the font in directory order.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, len(otf.Records))
	for i, rec := range otf.Records {
		tags[i] = rec.Tag
	}
	return tags
}

// NumGlyphs returns the number of glyphs as stated by table 'maxp'.
func (otf *Font) NumGlyphs() int {
	return otf.MaxP.NumGlyphs
}

// UnitsPerEm returns the number of design units per em.
func (otf *Font) UnitsPerEm() sfnt.Units {
	return sfnt.Units(otf.Head.UnitsPerEm)
}

// --- Head table ------------------------------------------------------------

const headSize = 54

func parseHead(rec TableRecord, b binarySegm) (*HeadTable, error) {
	if len(b) < headSize {
		return nil, errMalformed(rec.Tag, "size %d, expected %d", len(b), headSize)
	}
	c := newCursor(b, 16)
	t := &HeadTable{tableBase: newTableBase(rec, b)}
	t.Flags = c.u16()
	t.UnitsPerEm = c.u16()
	c.skip(16) // created, modified
	t.BBox = BoundingBox{
		MinX: sfnt.Units(c.i16()),
		MinY: sfnt.Units(c.i16()),
		MaxX: sfnt.Units(c.i16()),
		MaxY: sfnt.Units(c.i16()),
	}
	c.skip(6) // macStyle, lowestRecPPEM, fontDirectionHint
	t.IndexToLocFormat = c.i16()
	if c.err != nil {
		return nil, errBounds(rec.Tag, "reading fields")
	}
	if t.IndexToLocFormat != 0 && t.IndexToLocFormat != 1 {
		return nil, errMalformed(rec.Tag, "indexToLocFormat %d", t.IndexToLocFormat)
	}
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

func parseMaxP(rec TableRecord, b binarySegm) (*MaxPTable, error) {
	n, err := b.u16(4)
	if err != nil {
		return nil, errMalformed(rec.Tag, "table too short")
	}
	return &MaxPTable{tableBase: newTableBase(rec, b), NumGlyphs: int(n)}, nil
}

// --- HHea table ------------------------------------------------------------

func parseHHea(rec TableRecord, b binarySegm) (*HHeaTable, error) {
	n, err := b.u16(34)
	if err != nil {
		return nil, errMalformed(rec.Tag, "table too short")
	}
	c := newCursor(b, 4)
	t := &HHeaTable{tableBase: newTableBase(rec, b), NumberOfHMetrics: int(n)}
	t.Ascent = sfnt.Units(c.i16())
	t.Descent = sfnt.Units(c.i16())
	t.LineGap = sfnt.Units(c.i16())
	if n == 0 {
		return nil, errMalformed(rec.Tag, "numberOfHMetrics is 0")
	}
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

func parseHMtx(rec TableRecord, b binarySegm, numberOfHMetrics int) (*HMtxTable, error) {
	if len(b) < 4*numberOfHMetrics {
		return nil, errMalformed(rec.Tag, "%d bytes cannot hold %d metrics", len(b), numberOfHMetrics)
	}
	return &HMtxTable{tableBase: newTableBase(rec, b), NumberOfHMetrics: numberOfHMetrics}, nil
}

// --- Loca table ------------------------------------------------------------

func parseLoca(rec TableRecord, b binarySegm, format int16, numGlyphs int) (*LocaTable, error) {
	t := &LocaTable{tableBase: newTableBase(rec, b), locCnt: numGlyphs + 1}
	t.inx2loc = shortLocaVersion
	if format == 1 {
		t.inx2loc = longLocaVersion
	}
	return t, nil
}

// IndexToLocation returns the offset of glyph gid's data within table 'glyf'.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) (uint32, error) {
	return t.inx2loc(t, gid)
}

// GlyphRange returns the start and end offset of glyph gid's data within
// table 'glyf'. The glyph's data is empty if start equals end.
func (t *LocaTable) GlyphRange(gid GlyphIndex) (uint32, uint32, error) {
	if int(gid)+1 >= t.locCnt {
		return 0, 0, errBounds(t.name, "glyph index %d, font has %d glyphs", gid, t.locCnt-1)
	}
	start, err := t.inx2loc(t, gid)
	if err != nil {
		return 0, 0, err
	}
	end, err := t.inx2loc(t, gid+1)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errMalformed(t.name, "glyph %d has negative length", gid)
	}
	return start, end, nil
}

// Short version: the actual local offset divided by 2 is stored.
func shortLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, error) {
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0, errBounds(t.name, "short entry for glyph %d", gid)
	}
	return uint32(loc) * 2, nil
}

// Long version: the actual local offset is stored.
func longLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, error) {
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0, errBounds(t.name, "long entry for glyph %d", gid)
	}
	return loc, nil
}

// --- Raw-bytes API ---------------------------------------------------------

// ResolveGlyphIndex maps a character code to a glyph index, using the first
// suitable format 4 subtable of the font's cmap.
//
// The table directory and the cmap are scanned on every call.
func ResolveGlyphIndex(font []byte, c uint16) (GlyphIndex, error) {
	rec, b, err := LocateTable(font, TagCMap)
	if err != nil {
		return 0, err
	}
	cmap, err := parseCMap(rec, b)
	if err != nil {
		return 0, err
	}
	return cmap.GlyphIndex(c)
}

// DecodeGlyph decodes the outline of the glyph for character code c.
func DecodeGlyph(font []byte, c uint16) (*GlyphShape, error) {
	otf, err := Parse(font)
	if err != nil {
		return nil, err
	}
	return otf.GlyphShape(c)
}

// GlyphAdvance returns the horizontal advance of the glyph for character code c.
func GlyphAdvance(font []byte, c uint16) (sfnt.Units, error) {
	gid, err := ResolveGlyphIndex(font, c)
	if err != nil {
		return 0, err
	}
	hrec, hhea, err := LocateTable(font, TagHHea)
	if err != nil {
		return 0, err
	}
	mrec, hmtx, err := LocateTable(font, TagHMtx)
	if err != nil {
		return 0, err
	}
	h, err := parseHHea(hrec, hhea)
	if err != nil {
		return 0, err
	}
	m, err := parseHMtx(mrec, hmtx, h.NumberOfHMetrics)
	if err != nil {
		return 0, err
	}
	prec, maxp, err := LocateTable(font, TagMaxP)
	if err != nil {
		return 0, err
	}
	p, err := parseMaxP(prec, maxp)
	if err != nil {
		return 0, err
	}
	if int(gid) >= p.NumGlyphs {
		return 0, errBounds(TagMaxP, "glyph index %d, font has %d glyphs", gid, p.NumGlyphs)
	}
	return m.advance(gid)
}
