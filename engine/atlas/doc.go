/*
Package atlas packs glyph bitmaps into a single texture atlas.

Building an atlas runs three stages. First, the glyph of every requested
character code is decoded and rasterized; glyphs are independent, so this
stage runs on a pool of workers. Second, the bitmaps are packed into a
rectangle by a guillotine packer: bitmaps are inserted in order of
descending area into a binary tree of free rectangles, splitting a free
rectangle along its longer leftover side. Third, the bitmaps are copied
into the atlas buffer at their placements.

Character codes which cannot be included in the atlas are not fatal for the
build. They are reported as rejections, together with a reason:

	atlas, rejections, err := atlas.Build(ctx, fontBytes, codes, atlas.DefaultConfig())

Build fails only if the font cannot be parsed at all, if the configuration is
invalid or if ctx is cancelled.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package atlas

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphatlas.atlas'.
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.atlas")
}
