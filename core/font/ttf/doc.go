/*
Package ttf decodes the parts of a TrueType font needed to turn character
codes into glyph outlines and advance widths.

Supported tables are the table directory, 'cmap' (format 4 subtables only),
'head', 'maxp', 'loca', 'glyf' (simple glyphs only), 'hhea' and 'hmtx'.
Composite glyphs, other cmap formats and hinting instructions are not
interpreted; requesting them yields an error with code core.EUNSUPPORTED.

Font data is never trusted: every offset read from a table is checked against
the bounds of the font's byte slice before use. Errors carry the codes of
package core:

	core.EMALFORMED     a table is missing or its fields are inconsistent
	core.EUNSUPPORTED   cmap format other than 4, composite glyph
	core.EBOUNDS        an offset or index points outside of the font data
	core.EMISSING       a character code is not mapped by the cmap

There are two ways to use the package. Functions LocateTable, ResolveGlyphIndex,
DecodeGlyph and GlyphAdvance operate on the raw font bytes and scan the table
directory on every call. Clients doing more than a handful of lookups should
call Parse once and use the methods of type Font.

	otf, err := ttf.Parse(fontBytes)
	…
	shape, err := otf.GlyphShape('A')

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ttf

import (
	"fmt"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphatlas.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.fonts")
}

func errMalformed(t Tag, format string, v ...interface{}) error {
	return core.Error(core.EMALFORMED, "table '%s': %s", t, fmt.Sprintf(format, v...))
}

func errUnsupported(t Tag, format string, v ...interface{}) error {
	return core.Error(core.EUNSUPPORTED, "table '%s': %s", t, fmt.Sprintf(format, v...))
}

func errBounds(t Tag, format string, v ...interface{}) error {
	return core.WrapError(errBufferBounds, core.EBOUNDS, "table '%s': %s", t, fmt.Sprintf(format, v...))
}

func errUnmapped(c uint16) error {
	return core.Error(core.EMISSING, "character code 0x%04x not mapped by cmap", c)
}
