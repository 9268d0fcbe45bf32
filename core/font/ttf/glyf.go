package ttf

import "golang.org/x/image/font/sfnt"

// Flags of simple glyph descriptions, one per point.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#simple-glyph-description
const (
	flagOnCurve = 1 << iota // point is on the outline, not a control point
	flagXShort              // x delta is one unsigned byte
	flagYShort              // y delta is one unsigned byte
	flagRepeat              // next byte is the number of additional repetitions of this flag
	flagXSame               // short: x delta is positive; long: x is unchanged
	flagYSame               // short: y delta is positive; long: y is unchanged
)

const glyphHeaderSize = 10

// GlyphShape decodes the outline of the glyph for character code c.
func (otf *Font) GlyphShape(c uint16) (*GlyphShape, error) {
	gid, err := otf.CMap.GlyphIndex(c)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("character code 0x%04x maps to glyph %d", c, gid)
	return otf.Glyph(gid)
}

// Glyph decodes the outline of glyph gid.
//
// Glyphs without data in table 'glyf' (e.g., spaces) result in a shape with
// zero contours. Composite glyphs are not supported and result in an error
// with code core.EUNSUPPORTED.
func (otf *Font) Glyph(gid GlyphIndex) (*GlyphShape, error) {
	b, err := otf.glyphData(gid)
	if err != nil {
		return nil, err
	}
	return decodeGlyph(gid, b)
}

// glyphData returns the bytes of glyph gid within table 'glyf'.
func (otf *Font) glyphData(gid GlyphIndex) (binarySegm, error) {
	start, end, err := otf.Loca.GlyphRange(gid)
	if err != nil {
		return nil, err
	}
	b, err := otf.glyf.view(int(start), int(end-start))
	if err != nil {
		return nil, errBounds(TagGlyf, "glyph %d at %d…%d, table has %d bytes",
			gid, start, end, len(otf.glyf))
	}
	return b, nil
}

// glyphHeader reads numberOfContours and the bounding box of a glyph.
func glyphHeader(gid GlyphIndex, b binarySegm) (int16, BoundingBox, error) {
	c := newCursor(b, 0)
	n := c.i16()
	bbox := BoundingBox{
		MinX: sfnt.Units(c.i16()),
		MinY: sfnt.Units(c.i16()),
		MaxX: sfnt.Units(c.i16()),
		MaxY: sfnt.Units(c.i16()),
	}
	if c.err != nil {
		return 0, BoundingBox{}, errBounds(TagGlyf, "header of glyph %d", gid)
	}
	return n, bbox, nil
}

// decodeGlyph decodes a simple glyph description:
//
//	int16   numberOfContours
//	int16   xMin, yMin, xMax, yMax
//	uint16  endPtsOfContours[numberOfContours]
//	uint16  instructionLength
//	uint8   instructions[instructionLength]
//	uint8   flags[variable]
//	uint8 or int16  xCoordinates[variable]
//	uint8 or int16  yCoordinates[variable]
func decodeGlyph(gid GlyphIndex, b binarySegm) (*GlyphShape, error) {
	shape := &GlyphShape{Glyph: gid}
	if len(b) == 0 {
		return shape, nil
	}
	n, bbox, err := glyphHeader(gid, b)
	if err != nil {
		return nil, err
	}
	shape.BBox = bbox
	if bbox.MinX > bbox.MaxX || bbox.MinY > bbox.MaxY {
		return nil, errMalformed(TagGlyf, "glyph %d has inverted bounding box %v", gid, bbox)
	}
	if n < 0 {
		return nil, errUnsupported(TagGlyf, "glyph %d is a composite glyph", gid)
	}
	if n == 0 {
		return shape, nil
	}
	c := newCursor(b, glyphHeaderSize)
	shape.NumContours = int(n)
	shape.EndPoints = make([]uint16, n)
	for i := range shape.EndPoints {
		shape.EndPoints[i] = c.u16()
		if c.err == nil && i > 0 && shape.EndPoints[i] <= shape.EndPoints[i-1] {
			return nil, errMalformed(TagGlyf, "glyph %d: contour end points not increasing", gid)
		}
	}
	instructionLength := c.u16()
	c.skip(int(instructionLength))
	if c.err != nil {
		return nil, errBounds(TagGlyf, "glyph %d: contour end points or instructions", gid)
	}
	shape.TotalPoints = int(shape.EndPoints[n-1]) + 1
	flags, err := decodeFlags(c, shape.TotalPoints)
	if err != nil {
		return nil, err
	}
	xs := decodeCoordinates(c, flags, flagXShort, flagXSame)
	ys := decodeCoordinates(c, flags, flagYShort, flagYSame)
	if c.err != nil {
		return nil, errBounds(TagGlyf, "glyph %d: coordinates", gid)
	}
	shape.Points = make([]GlyphPoint, shape.TotalPoints)
	for i := range shape.Points {
		shape.Points[i] = GlyphPoint{X: xs[i], Y: ys[i], OnCurve: flags[i]&flagOnCurve != 0}
	}
	tracer().Debugf("glyph %d has %d contours with %d points", gid, shape.NumContours, shape.TotalPoints)
	return shape, nil
}

// decodeFlags reads the flags of total points. A flag with bit flagRepeat
// set is followed by a count of additional points sharing this flag.
func decodeFlags(c *cursor, total int) ([]uint8, error) {
	flags := make([]uint8, 0, total)
	for len(flags) < total {
		f := c.u8()
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			repeat := int(c.u8())
			if len(flags)+repeat > total {
				return nil, errMalformed(TagGlyf, "flag repeat count %d overshoots %d points", repeat, total)
			}
			for ; repeat > 0; repeat-- {
				flags = append(flags, f)
			}
		}
		if c.err != nil {
			return nil, errBounds(TagGlyf, "flags end after %d of %d points", len(flags)-1, total)
		}
	}
	return flags, nil
}

// decodeCoordinates reads one coordinate per flag as a delta to the previous
// coordinate, starting from 0. With bit short set the delta is an unsigned
// byte, with bit same giving its sign (set = positive). Otherwise bit same
// set means the coordinate is unchanged, and bit same cleared means a signed
// 16-bit delta follows.
//
// Read errors are left in c.err.
func decodeCoordinates(c *cursor, flags []uint8, short, same uint8) []int16 {
	coords := make([]int16, len(flags))
	var v int16
	for i, f := range flags {
		switch {
		case f&short != 0:
			d := int16(c.u8())
			if f&same == 0 {
				d = -d
			}
			v += d
		case f&same == 0:
			v += c.i16()
		}
		coords[i] = v
	}
	return coords
}
