package raster

import (
	"strings"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf"
	"golang.org/x/image/font/sfnt"
)

// Coverage values of bitmap pixels.
const (
	Ink        byte = 255
	Background byte = 0
)

// sampleScale keeps the samples of a block from reaching into the next block.
const sampleScale = 0.9999

// Bitmap is a coverage bitmap of a glyph, one byte per pixel, stored row by
// row. Row 0 is the bottom row.
//
// XShift and YShift are the pen shifts for placing the bitmap: the advance
// width and the bottom of the glyph's bounding box, scaled like the bitmap.
type Bitmap struct {
	Width, Height int
	Pix           []byte
	CharCode      uint16
	XShift        float32
	YShift        float32
}

// NewBitmap allocates a blank bitmap.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{Width: w, Height: h, Pix: make([]byte, w*h)}
}

// Area is width × height.
func (bmp *Bitmap) Area() int {
	return bmp.Width * bmp.Height
}

// At returns the coverage at (x, y), with y counting upwards from the bottom
// row. Positions outside of the bitmap have no coverage.
func (bmp *Bitmap) At(x, y int) byte {
	if x < 0 || y < 0 || x >= bmp.Width || y >= bmp.Height {
		return Background
	}
	return bmp.Pix[y*bmp.Width+x]
}

// String draws the bitmap with its top row first, '#' for ink and '.' for
// background.
func (bmp *Bitmap) String() string {
	var sb strings.Builder
	for y := bmp.Height - 1; y >= 0; y-- {
		for x := 0; x < bmp.Width; x++ {
			if bmp.At(x, y) >= 128 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Rasterize renders a glyph at one pixel per design unit. The bitmap covers
// [xMin,xMax) × [yMin,yMax) of the glyph's bounding box; pixel (i, j) is
// sampled at (xMin+i, yMin+j). Glyphs without outline give an empty bitmap.
func Rasterize(shape *ttf.GlyphShape) (*Bitmap, error) {
	if shape == nil {
		return nil, core.Error(core.EINVALID, "cannot rasterize nil glyph")
	}
	bbox := shape.BBox
	if err := checkBBox(shape); err != nil {
		return nil, err
	}
	if shape.Empty() || bbox.Empty() {
		return NewBitmap(0, 0), nil
	}
	edges := makeEdges(Lines(shape))
	bmp := NewBitmap(int(bbox.Dx()), int(bbox.Dy()))
	x0, y0 := int(bbox.MinX), int(bbox.MinY)
	for j := 0; j < bmp.Height; j++ {
		row := bmp.Pix[j*bmp.Width : (j+1)*bmp.Width]
		for i := range row {
			if winding(float64(x0+i), float64(y0+j), edges) != 0 {
				row[i] = Ink
			}
		}
	}
	tracer().Debugf("rasterized glyph %d to %d×%d pixels", shape.Glyph, bmp.Width, bmp.Height)
	return bmp, nil
}

// RasterizeReduced renders a glyph scaled down by factor divisions. The
// bitmap has (width/divisions)+1 × (height/divisions)+1 pixels. Each pixel
// covers a block of divisions × divisions design units, sampled at integer
// positions; it is marked as ink if any of its samples is inside the glyph.
// This makes reduced glyphs slightly bolder than a coverage-weighted filter
// would.
//
// A glyph without outline results in a single blank pixel.
func RasterizeReduced(shape *ttf.GlyphShape, divisions int) (*Bitmap, error) {
	if shape == nil {
		return nil, core.Error(core.EINVALID, "cannot rasterize nil glyph")
	}
	if divisions < 1 {
		return nil, core.Error(core.EINVALID, "divisions must be at least 1, is %d", divisions)
	}
	bbox := shape.BBox
	if err := checkBBox(shape); err != nil {
		return nil, err
	}
	if shape.Empty() {
		bbox = ttf.BoundingBox{}
	}
	w := int(bbox.Dx())/divisions + 1
	h := int(bbox.Dy())/divisions + 1
	bmp := NewBitmap(w, h)
	edges := makeEdges(Lines(shape))
	if len(edges) == 0 {
		return bmp, nil
	}
	d := float64(divisions) * sampleScale
	xmin, ymin := float64(bbox.MinX), float64(bbox.MinY)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if blockInside(xmin+float64(i)*d, xmin+float64(i+1)*d,
				ymin+float64(j)*d, ymin+float64(j+1)*d, edges) {
				bmp.Pix[j*w+i] = Ink
			}
		}
	}
	tracer().Debugf("rasterized glyph %d to %d×%d pixels, 1:%d", shape.Glyph, w, h, divisions)
	return bmp, nil
}

// checkBBox rejects outlines whose bounding box has its corners swapped.
func checkBBox(shape *ttf.GlyphShape) error {
	bbox := shape.BBox
	if bbox.MinX > bbox.MaxX || bbox.MinY > bbox.MaxY {
		return core.Error(core.EMALFORMED, "glyph %d has inverted bounding box %v", shape.Glyph, bbox)
	}
	return nil
}

// blockInside reports whether any sample of the block [x0,x1) × [y0,y1) is
// inside. Samples are taken at unit steps from (x0, y0), truncated to
// integers. Every row of the block is sampled, not only the first one, so
// thin horizontal strokes in the upper part of a block are not lost.
func blockInside(x0, x1, y0, y1 float64, edges []edge) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if winding(float64(int(x)), float64(int(y)), edges) != 0 {
				return true
			}
		}
	}
	return false
}

// Glyph creates the atlas bitmap of a glyph: the glyph rasterized by
// RasterizeReduced, with XShift = advance/divisions and YShift =
// yMin/divisions.
func Glyph(shape *ttf.GlyphShape, advance sfnt.Units, divisions int) (*Bitmap, error) {
	bmp, err := RasterizeReduced(shape, divisions)
	if err != nil {
		return nil, err
	}
	bmp.XShift = float32(advance) / float32(divisions)
	if !shape.Empty() {
		bmp.YShift = float32(shape.BBox.MinY) / float32(divisions)
	}
	return bmp, nil
}

// FullGlyph creates the atlas bitmap of a glyph at one pixel per design
// unit, with XShift = advance and YShift = yMin.
func FullGlyph(shape *ttf.GlyphShape, advance sfnt.Units) (*Bitmap, error) {
	bmp, err := Rasterize(shape)
	if err != nil {
		return nil, err
	}
	bmp.XShift = float32(advance)
	if !shape.Empty() {
		bmp.YShift = float32(shape.BBox.MinY)
	}
	return bmp, nil
}
