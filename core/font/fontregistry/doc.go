/*
Package fontregistry manages a registry for loaded fonts and the glyph
atlases built from them.

Fonts are stored under a normalized name (see font.NormalizeFontname).
Atlases are cached per font, build configuration and set of character codes,
so clients rendering the same text with the same font share one atlas.
A Registry is safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'glyphatlas.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.fonts")
}
