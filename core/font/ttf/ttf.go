package ttf

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
)

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Tag is a 4-byte table identifier, such as 'glyf' or 'cmap'.
type Tag uint32

// MakeTag creates a Tag from 4 bytes.
// If b is shorter or longer, it will be silently extended or cut as appropriate
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	})
}

// Tags of the tables we need.
var (
	TagCMap = T("cmap")
	TagGlyf = T("glyf")
	TagHead = T("head")
	TagHHea = T("hhea")
	TagHMtx = T("hmtx")
	TagLoca = T("loca")
	TagMaxP = T("maxp")
)

// --- Table directory -------------------------------------------------------

// OffsetSubtable is the header of a TrueType font file. It is immediately
// followed by NumTables table records.
type OffsetSubtable struct {
	ScalerType    uint32
	NumTables     uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

const (
	offsetSubtableSize = 12
	tableRecordSize    = 16
)

// TableRecord is an entry of the table directory.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

func (rec TableRecord) String() string {
	return fmt.Sprintf("'%s' @ %d [%d]", rec.Tag, rec.Offset, rec.Length)
}

func makeTableRecord(b []byte) TableRecord {
	return TableRecord{
		Tag:      MakeTag(b),
		Checksum: u32(b[4:8]),
		Offset:   u32(b[8:12]),
		Length:   u32(b[12:16]),
	}
}

// --- Tables ----------------------------------------------------------------

// tableBase is the common part of all tables: the table's bytes, sliced
// from the font's data, and its position.
type tableBase struct {
	data   binarySegm
	name   Tag
	offset uint32
	length uint32
}

func newTableBase(rec TableRecord, b binarySegm) tableBase {
	return tableBase{data: b, name: rec.Tag, offset: rec.Offset, length: rec.Length}
}

// Tag returns the table's tag.
func (tb tableBase) Tag() Tag {
	return tb.name
}

// Offset returns the table's byte offset within the font.
func (tb tableBase) Offset() uint32 {
	return tb.offset
}

// Len returns the table's length in bytes.
func (tb tableBase) Len() uint32 {
	return tb.length
}

// Binary returns the table's bytes. Clients must not modify them.
func (tb tableBase) Binary() []byte {
	return tb.data
}

// HeadTable gives global information about the font.
// Only the fields needed to decode glyphs are made public.
type HeadTable struct {
	tableBase
	Flags            uint16
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	BBox             BoundingBox
	IndexToLocFormat int16 // needed to interpret loca table
}

// MaxPTable establishes the memory requirements of the font. We only care
// about the number of glyphs.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascent           sfnt.Units
	Descent          sfnt.Units
	LineGap          sfnt.Units
	NumberOfHMetrics int
}

// HMtxTable contains advance widths and left side bearings of glyphs.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
}

// LocaTable maps glyph indices to locations within table 'glyf'.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) (uint32, error)
	locCnt  int // number of locations, = numGlyphs + 1
}

// --- Glyph geometry --------------------------------------------------------

// BoundingBox describes an area in design units. Y-axis is upwards.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY sfnt.Units
}

// Empty returns true if the bounding box has no extent.
func (bbox BoundingBox) Empty() bool {
	return bbox.MinX >= bbox.MaxX || bbox.MinY >= bbox.MaxY
}

// Dx is the width of the bounding box.
func (bbox BoundingBox) Dx() sfnt.Units {
	return bbox.MaxX - bbox.MinX
}

// Dy is the height of the bounding box.
func (bbox BoundingBox) Dy() sfnt.Units {
	return bbox.MaxY - bbox.MinY
}

// GlyphPoint is a point of a glyph's outline in design units.
// Off-curve points are control points of quadratic Bézier curves.
type GlyphPoint struct {
	X, Y    int16
	OnCurve bool
}

// GlyphShape is the decoded outline of a simple glyph.
//
// EndPoints holds one entry per contour: the index of the contour's last
// point within Points. A glyph without outline (e.g., a space) has no
// contours and an empty bounding box.
type GlyphShape struct {
	Glyph       GlyphIndex
	NumContours int
	TotalPoints int
	EndPoints   []uint16
	BBox        BoundingBox
	Points      []GlyphPoint
}

// Contour returns the points of contour i.
func (g *GlyphShape) Contour(i int) []GlyphPoint {
	if i < 0 || i >= g.NumContours {
		return nil
	}
	start := 0
	if i > 0 {
		start = int(g.EndPoints[i-1]) + 1
	}
	return g.Points[start : int(g.EndPoints[i])+1]
}

// Empty returns true for glyphs without any outline.
func (g *GlyphShape) Empty() bool {
	return g.NumContours == 0
}

// GlyphMetrics collects horizontal metrics of a glyph.
type GlyphMetrics struct {
	Advance sfnt.Units
	LSB     sfnt.Units
	BBox    BoundingBox
}
