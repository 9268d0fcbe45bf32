package atlas

import (
	"fmt"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/engine/raster"
)

// FontAtlas is a coverage bitmap holding the glyphs of a set of characters,
// together with parallel slices describing each glyph: its character code,
// its size and position within the atlas and the pen shifts for placing it.
//
// Pixel rows are stored bottom row first. A FontAtlas is not modified after
// it has been built.
type FontAtlas struct {
	Width, Height int
	Pix           []byte
	CharCodes     []uint16
	Widths        []int
	Heights       []int
	XOffsets      []int
	YOffsets      []int
	XShifts       []float32
	YShifts       []float32
	Divisions     int // design units per atlas pixel
	index         map[uint16]int
}

// GlyphEntry describes one glyph of an atlas.
type GlyphEntry struct {
	CharCode         uint16
	Width, Height    int
	XOffset, YOffset int
	XShift, YShift   float32
}

func (g GlyphEntry) String() string {
	return fmt.Sprintf("0x%04x %d×%d at (%d,%d), shift (%g,%g)", g.CharCode,
		g.Width, g.Height, g.XOffset, g.YOffset, g.XShift, g.YShift)
}

// assemble creates an atlas from placed bitmaps.
func assemble(placements []Placement, w, h, divisions int) *FontAtlas {
	n := len(placements)
	a := &FontAtlas{
		Width:     w,
		Height:    h,
		Pix:       Blit(placements, w, h),
		CharCodes: make([]uint16, n),
		Widths:    make([]int, n),
		Heights:   make([]int, n),
		XOffsets:  make([]int, n),
		YOffsets:  make([]int, n),
		XShifts:   make([]float32, n),
		YShifts:   make([]float32, n),
		Divisions: divisions,
		index:     make(map[uint16]int, n),
	}
	for i, pl := range placements {
		a.CharCodes[i] = pl.Bitmap.CharCode
		a.Widths[i], a.Heights[i] = pl.Width(), pl.Height()
		a.XOffsets[i], a.YOffsets[i] = pl.Left, pl.Bottom
		a.XShifts[i], a.YShifts[i] = pl.Bitmap.XShift, pl.Bitmap.YShift
		a.index[pl.Bitmap.CharCode] = i
	}
	return a
}

// Len is the number of glyphs in the atlas.
func (a *FontAtlas) Len() int {
	return len(a.CharCodes)
}

// Index returns the position of character code c within the parallel slices.
func (a *FontAtlas) Index(c uint16) (int, bool) {
	i, ok := a.index[c]
	return i, ok
}

// Glyph returns the entry at position i.
func (a *FontAtlas) Glyph(i int) GlyphEntry {
	return GlyphEntry{
		CharCode: a.CharCodes[i],
		Width:    a.Widths[i],
		Height:   a.Heights[i],
		XOffset:  a.XOffsets[i],
		YOffset:  a.YOffsets[i],
		XShift:   a.XShifts[i],
		YShift:   a.YShifts[i],
	}
}

// Bitmap copies the glyph at position i out of the atlas.
func (a *FontAtlas) Bitmap(i int) *raster.Bitmap {
	g := a.Glyph(i)
	bmp := raster.NewBitmap(g.Width, g.Height)
	for j := 0; j < g.Height; j++ {
		src := (g.YOffset+j)*a.Width + g.XOffset
		copy(bmp.Pix[j*g.Width:(j+1)*g.Width], a.Pix[src:src+g.Width])
	}
	bmp.CharCode, bmp.XShift, bmp.YShift = g.CharCode, g.XShift, g.YShift
	return bmp
}

// AsBitmap returns the atlas as a bitmap sharing its pixels.
func (a *FontAtlas) AsBitmap() *raster.Bitmap {
	return &raster.Bitmap{Width: a.Width, Height: a.Height, Pix: a.Pix}
}

// --- Rejections ------------------------------------------------------------

// Reason tells why a character code is missing from an atlas.
type Reason int

// Reasons for rejecting a character code.
const (
	Unmapped          Reason = iota // the font does not map the character code
	MalformedTable                  // a table needed for the glyph is absent or inconsistent
	UnsupportedFormat               // e.g., a composite glyph
	OutOfBounds                     // font data points outside of the font
	PackingOverflow                 // the glyph did not fit into the atlas
	Internal
)

func (r Reason) String() string {
	switch r {
	case Unmapped:
		return "Unmapped"
	case MalformedTable:
		return "MalformedTable"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case OutOfBounds:
		return "OutOfBounds"
	case PackingOverflow:
		return "PackingOverflow"
	}
	return "Internal"
}

// ReasonFor derives the rejection reason from the code of an error.
func ReasonFor(err error) Reason {
	switch core.Code(err) {
	case core.EMISSING:
		return Unmapped
	case core.EMALFORMED:
		return MalformedTable
	case core.EUNSUPPORTED:
		return UnsupportedFormat
	case core.EBOUNDS:
		return OutOfBounds
	case core.EOVERFLOW:
		return PackingOverflow
	}
	return Internal
}

// Rejection is a character code which could not be included in an atlas.
type Rejection struct {
	CharCode uint16
	Reason   Reason
	Err      error
}

func (r Rejection) String() string {
	return fmt.Sprintf("0x%04x: %s (%v)", r.CharCode, r.Reason, r.Err)
}

func reject(c uint16, err error) Rejection {
	return Rejection{CharCode: c, Reason: ReasonFor(err), Err: err}
}
