/*
Package ttftest assembles small TrueType fonts in memory, for testing code
which decodes fonts.

The fonts produced contain tables 'cmap' (one format 4 subtable), 'glyf',
'head', 'hhea', 'hmtx', 'loca' and 'maxp', just enough to exercise glyph
decoding and metrics. Glyph outlines are encoded with short vectors and
flag repetition wherever possible.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ttftest

import (
	"encoding/binary"
	"sort"
)

// Point is an outline point of a test glyph.
type Point struct {
	X, Y int16
	On   bool
}

// On returns an on-curve point.
func On(x, y int16) Point {
	return Point{X: x, Y: y, On: true}
}

// Off returns an off-curve (control) point.
func Off(x, y int16) Point {
	return Point{X: x, Y: y}
}

// Glyph describes a test glyph. A glyph without contours is written without
// any data in 'glyf'. A composite glyph is written as a composite header
// referencing glyph 0.
type Glyph struct {
	Contours     [][]Point
	Advance      uint16
	Instructions []byte
	Composite    bool
}

// Builder collects glyphs and a character mapping and assembles a font.
type Builder struct {
	UnitsPerEm       uint16
	LongLoca         bool              // write loca in long format
	NumberOfHMetrics int               // if 0, one metric per glyph
	Glyphs           []Glyph           // glyph index = position
	Mapping          map[uint16]uint16 // character code → glyph index
	CMapSubtable     []byte            // if set, replaces the generated format 4 subtable
	Omit             []string          // tags of tables not to write
}

// NewBuilder creates a builder with a .notdef glyph at index 0.
func NewBuilder() *Builder {
	return &Builder{
		UnitsPerEm: 1000,
		Glyphs: []Glyph{{
			Contours: [][]Point{{On(10, 0), On(10, 100), On(90, 100), On(90, 0)}},
			Advance:  100,
		}},
		Mapping: make(map[uint16]uint16),
	}
}

// AddGlyph appends a glyph, maps character code c to it and returns its
// glyph index.
func (b *Builder) AddGlyph(c uint16, g Glyph) uint16 {
	gid := uint16(len(b.Glyphs))
	b.Glyphs = append(b.Glyphs, g)
	b.Mapping[c] = gid
	return gid
}

// Triangle returns a builder for a font with a single triangular glyph at
// index 1, mapped from character 'A'.
func Triangle() *Builder {
	b := NewBuilder()
	b.AddGlyph('A', Glyph{
		Contours: [][]Point{{On(0, 50), On(100, 0), On(60, 100)}},
		Advance:  120,
	})
	return b
}

// Build assembles the font's bytes.
func (b *Builder) Build() []byte {
	glyf, loca := b.glyfAndLoca()
	tables := map[string][]byte{
		"cmap": b.cmap(),
		"glyf": glyf,
		"head": b.head(),
		"hhea": b.hhea(),
		"hmtx": b.hmtx(),
		"loca": loca,
		"maxp": b.maxp(),
	}
	for _, t := range b.Omit {
		delete(tables, t)
	}
	tags := make([]string, 0, len(tables))
	for t := range tables {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	out := make([]byte, 12+16*len(tags))
	binary.BigEndian.PutUint32(out[0:], 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(len(tags)))
	for i, tag := range tags {
		data := tables[tag]
		rec := out[12+16*i:]
		copy(rec[0:4], tag)
		binary.BigEndian.PutUint32(rec[4:], checksum(data))
		binary.BigEndian.PutUint32(rec[8:], uint32(len(out)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		out = append(out, pad4(data)...)
	}
	return out
}

func checksum(b []byte) uint32 {
	var sum uint32
	b = pad4(b)
	for i := 0; i < len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i:])
	}
	return sum
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// --- Tables ----------------------------------------------------------------

func (b *Builder) cmap() []byte {
	sub := b.CMapSubtable
	if sub == nil {
		sub = Format4(b.Mapping)
	}
	out := make([]byte, 12)
	binary.BigEndian.PutUint16(out[2:], 1) // one encoding record
	binary.BigEndian.PutUint16(out[4:], 3) // Windows
	binary.BigEndian.PutUint16(out[6:], 1) // Unicode BMP
	binary.BigEndian.PutUint32(out[8:], 12)
	return append(out, sub...)
}

// Segment is a format 4 cmap segment. If GlyphIDs is non-empty, the segment
// uses the glyph ID array (one entry per code from Start to End); otherwise
// glyph indices are computed as code + Delta.
type Segment struct {
	Start, End uint16
	Delta      uint16
	GlyphIDs   []uint16
}

// Format4 creates a format 4 subtable with one segment per mapped character
// code.
func Format4(mapping map[uint16]uint16) []byte {
	codes := make([]int, 0, len(mapping))
	for c := range mapping {
		if c != 0xffff {
			codes = append(codes, int(c))
		}
	}
	sort.Ints(codes)
	segs := make([]Segment, 0, len(codes))
	for _, c := range codes {
		cc := uint16(c)
		segs = append(segs, Segment{Start: cc, End: cc, Delta: mapping[cc] - cc})
	}
	return Format4Segments(segs)
}

// Format4Segments creates a format 4 subtable from explicit segments. A final
// segment for 0xFFFF is appended if missing.
func Format4Segments(segs []Segment) []byte {
	if len(segs) == 0 || segs[len(segs)-1].End != 0xffff {
		segs = append(segs, Segment{Start: 0xffff, End: 0xffff, Delta: 1})
	}
	n := len(segs)
	var glyphIDs []uint16
	rangeOffsets := make([]uint16, n)
	for i, s := range segs {
		if len(s.GlyphIDs) == 0 {
			continue
		}
		// offset from idRangeOffset[i] to the segment's first glyph ID entry
		rangeOffsets[i] = uint16(2*(n-i) + 2*len(glyphIDs))
		glyphIDs = append(glyphIDs, s.GlyphIDs...)
	}
	length := 16 + 8*n + 2*len(glyphIDs)
	out := make([]byte, length)
	be := binary.BigEndian
	be.PutUint16(out[0:], 4)
	be.PutUint16(out[2:], uint16(length))
	be.PutUint16(out[6:], uint16(2*n))
	sr := 2
	for sr*2 <= 2*n {
		sr *= 2
	}
	be.PutUint16(out[8:], uint16(sr))
	p := 14
	for _, s := range segs {
		be.PutUint16(out[p:], s.End)
		p += 2
	}
	p += 2 // reserved pad
	for _, s := range segs {
		be.PutUint16(out[p:], s.Start)
		p += 2
	}
	for _, s := range segs {
		be.PutUint16(out[p:], s.Delta)
		p += 2
	}
	for _, o := range rangeOffsets {
		be.PutUint16(out[p:], o)
		p += 2
	}
	for _, g := range glyphIDs {
		be.PutUint16(out[p:], g)
		p += 2
	}
	return out
}

func (b *Builder) bbox() (xmin, ymin, xmax, ymax int16) {
	first := true
	for _, g := range b.Glyphs {
		gx0, gy0, gx1, gy1, ok := glyphBBox(g)
		if !ok {
			continue
		}
		if first {
			xmin, ymin, xmax, ymax, first = gx0, gy0, gx1, gy1, false
			continue
		}
		xmin, ymin = min16(xmin, gx0), min16(ymin, gy0)
		xmax, ymax = max16(xmax, gx1), max16(ymax, gy1)
	}
	return
}

func (b *Builder) head() []byte {
	out := make([]byte, 54)
	be := binary.BigEndian
	be.PutUint32(out[0:], 0x00010000)
	be.PutUint32(out[12:], 0x5f0f3cf5) // magic number
	be.PutUint16(out[18:], b.UnitsPerEm)
	xmin, ymin, xmax, ymax := b.bbox()
	be.PutUint16(out[36:], uint16(xmin))
	be.PutUint16(out[38:], uint16(ymin))
	be.PutUint16(out[40:], uint16(xmax))
	be.PutUint16(out[42:], uint16(ymax))
	if b.LongLoca {
		be.PutUint16(out[50:], 1)
	}
	return out
}

func (b *Builder) maxp() []byte {
	out := make([]byte, 32)
	binary.BigEndian.PutUint32(out[0:], 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(len(b.Glyphs)))
	return out
}

func (b *Builder) numberOfHMetrics() int {
	if b.NumberOfHMetrics <= 0 || b.NumberOfHMetrics > len(b.Glyphs) {
		return len(b.Glyphs)
	}
	return b.NumberOfHMetrics
}

func (b *Builder) hhea() []byte {
	out := make([]byte, 36)
	be := binary.BigEndian
	be.PutUint32(out[0:], 0x00010000)
	_, ymin, _, ymax := b.bbox()
	be.PutUint16(out[4:], uint16(ymax))
	be.PutUint16(out[6:], uint16(ymin))
	var maxAdv uint16
	for _, g := range b.Glyphs {
		if g.Advance > maxAdv {
			maxAdv = g.Advance
		}
	}
	be.PutUint16(out[10:], maxAdv)
	be.PutUint16(out[34:], uint16(b.numberOfHMetrics()))
	return out
}

func (b *Builder) hmtx() []byte {
	nhm := b.numberOfHMetrics()
	out := make([]byte, 0, 4*len(b.Glyphs))
	for i, g := range b.Glyphs {
		lsb, _, _, _, _ := glyphBBox(g)
		if i < nhm {
			out = append(out, byte(g.Advance>>8), byte(g.Advance))
		}
		out = append(out, byte(uint16(lsb)>>8), byte(lsb))
	}
	return out
}

// --- Glyphs ----------------------------------------------------------------

func (b *Builder) glyfAndLoca() ([]byte, []byte) {
	var glyf []byte
	offsets := make([]int, 0, len(b.Glyphs)+1)
	for _, g := range b.Glyphs {
		offsets = append(offsets, len(glyf))
		glyf = append(glyf, pad4(EncodeGlyph(g))...)
	}
	offsets = append(offsets, len(glyf))
	var loca []byte
	for _, off := range offsets {
		if b.LongLoca {
			loca = binary.BigEndian.AppendUint32(loca, uint32(off))
		} else {
			loca = binary.BigEndian.AppendUint16(loca, uint16(off/2))
		}
	}
	return glyf, loca
}

func glyphBBox(g Glyph) (xmin, ymin, xmax, ymax int16, ok bool) {
	for _, c := range g.Contours {
		for _, p := range c {
			if !ok {
				xmin, ymin, xmax, ymax, ok = p.X, p.Y, p.X, p.Y, true
				continue
			}
			xmin, ymin = min16(xmin, p.X), min16(ymin, p.Y)
			xmax, ymax = max16(xmax, p.X), max16(ymax, p.Y)
		}
	}
	return
}

// Flags of simple glyphs
const (
	flagOnCurve = 0x01
	flagXShort  = 0x02
	flagYShort  = 0x04
	flagRepeat  = 0x08
	flagXSame   = 0x10
	flagYSame   = 0x20
)

// EncodeGlyph returns the 'glyf' data of a single glyph, unpadded.
func EncodeGlyph(g Glyph) []byte {
	if len(g.Contours) == 0 && !g.Composite {
		return nil
	}
	be := binary.BigEndian
	xmin, ymin, xmax, ymax, _ := glyphBBox(g)
	out := make([]byte, 10)
	if g.Composite {
		be.PutUint16(out[0:], 0xffff) // numberOfContours = -1
	} else {
		be.PutUint16(out[0:], uint16(len(g.Contours)))
	}
	be.PutUint16(out[2:], uint16(xmin))
	be.PutUint16(out[4:], uint16(ymin))
	be.PutUint16(out[6:], uint16(xmax))
	be.PutUint16(out[8:], uint16(ymax))
	if g.Composite {
		// one component: flags = 0 (byte arguments), glyph 0, offset (0, 0)
		return append(out, 0, 0, 0, 0, 0, 0)
	}
	var points []Point
	end := -1
	for _, c := range g.Contours {
		end += len(c)
		out = be.AppendUint16(out, uint16(end))
		points = append(points, c...)
	}
	out = be.AppendUint16(out, uint16(len(g.Instructions)))
	out = append(out, g.Instructions...)
	flags := make([]byte, len(points))
	var xs, ys []byte
	var px, py int16
	for i, p := range points {
		var f byte
		if p.On {
			f |= flagOnCurve
		}
		var fx, fy byte
		fx, xs = encodeDelta(int(p.X)-int(px), xs, flagXShort, flagXSame)
		fy, ys = encodeDelta(int(p.Y)-int(py), ys, flagYShort, flagYSame)
		flags[i] = f | fx | fy
		px, py = p.X, p.Y
	}
	out = append(out, compressFlags(flags)...)
	out = append(out, xs...)
	return append(out, ys...)
}

func encodeDelta(d int, buf []byte, short, same byte) (byte, []byte) {
	switch {
	case d == 0:
		return same, buf
	case d > 0 && d < 256:
		return short | same, append(buf, byte(d))
	case d < 0 && d > -256:
		return short, append(buf, byte(-d))
	}
	return 0, binary.BigEndian.AppendUint16(buf, uint16(int16(d)))
}

// compressFlags replaces runs of identical flags by a flag with bit
// flagRepeat set, followed by the number of repetitions.
func compressFlags(flags []byte) []byte {
	var out []byte
	for i := 0; i < len(flags); {
		j := i + 1
		for j < len(flags) && flags[j] == flags[i] && j-i <= 255 {
			j++
		}
		if n := j - i - 1; n > 0 {
			out = append(out, flags[i]|flagRepeat, byte(n))
		} else {
			out = append(out, flags[i])
		}
		i = j
	}
	return out
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}
