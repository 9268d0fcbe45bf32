/*
Package raster turns glyph outlines into coverage bitmaps.

Outlines are first converted into a list of straight line segments:
quadratic Bézier curves are flattened into a fixed number of segments, with
implied on-curve points inserted between consecutive control points. Pixels
are then classified by the nonzero winding rule.

There are two modes of operation. Rasterize produces one pixel per design
unit, which is mostly useful for inspection. RasterizeReduced scales a glyph
down by an integer factor, marking an output pixel as ink if any design-unit
sample of its block lies inside the outline. Bitmaps for a font atlas are
created by Glyph, which adds the pen shifts for placing the bitmap.

Row 0 of every bitmap is the bottom row of the glyph's bounding box.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package raster

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphatlas.atlas'.
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.atlas")
}
