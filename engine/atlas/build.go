package atlas

import (
	"context"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf"
	"github.com/npillmayer/glyphatlas/engine/raster"
)

// Builder builds atlases with a fixed configuration.
type Builder struct {
	conf Config
}

// NewBuilder creates a builder for conf.
func NewBuilder(conf Config) *Builder {
	return &Builder{conf: conf}
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config {
	return b.conf
}

// Build parses a TrueType font and builds an atlas for codes. See
// Builder.BuildFont.
func Build(ctx context.Context, font []byte, codes []uint16, conf Config) (*FontAtlas, []Rejection, error) {
	if len(font) == 0 {
		return nil, nil, core.Error(core.EINVALID, "empty font data")
	}
	otf, err := ttf.Parse(font)
	if err != nil {
		return nil, nil, err
	}
	return NewBuilder(conf).BuildFont(ctx, otf, codes)
}

// glyphResult is the outcome of rasterizing the glyph of one character code.
type glyphResult struct {
	bmp *raster.Bitmap
	err error
}

// BuildFont builds an atlas for the glyphs of codes in font otf. A character
// code occurring more than once is included once.
//
// Character codes whose glyphs cannot be decoded, rasterized or packed are
// left out of the atlas and reported as rejections. Rejections from decoding
// and rasterization come first, in the order of codes, followed by those
// from packing.
// An error is returned only for an invalid configuration or if ctx is done
// before all glyphs have been rasterized.
func (b *Builder) BuildFont(ctx context.Context, otf *ttf.Font, codes []uint16) (*FontAtlas, []Rejection, error) {
	if err := b.conf.Validate(); err != nil {
		return nil, nil, err
	}
	if otf == nil {
		return nil, nil, core.Error(core.EINVALID, "no font to build atlas from")
	}
	codes = unique(codes)
	results := make([]glyphResult, len(codes))
	err := forEach(ctx, len(codes), b.conf.Workers, func(i int) {
		if ctx.Err() != nil {
			return
		}
		bmp, err := b.rasterize(otf, codes[i])
		results[i] = glyphResult{bmp: bmp, err: err}
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		tracer().Infof("atlas build cancelled: %v", err)
		return nil, nil, err
	}
	var rejections []Rejection
	bitmaps := make([]*raster.Bitmap, 0, len(codes))
	for i, r := range results {
		if r.err != nil {
			tracer().Errorf("glyph for 0x%04x rejected: %v", codes[i], r.err)
			rejections = append(rejections, reject(codes[i], r.err))
			continue
		}
		bitmaps = append(bitmaps, r.bmp)
	}
	placements, w, h, overflow := Pack(bitmaps, b.conf.MaxSide)
	for _, bmp := range overflow {
		err := core.Error(core.EOVERFLOW, "%d×%d bitmap does not fit into %d×%d atlas",
			bmp.Width, bmp.Height, b.conf.MaxSide, b.conf.MaxSide)
		tracer().Errorf("glyph for 0x%04x rejected: %v", bmp.CharCode, err)
		rejections = append(rejections, reject(bmp.CharCode, err))
	}
	divisions := b.conf.Divisions
	if b.conf.Mode == FullMode {
		divisions = 1
	}
	fa := assemble(placements, w, h, divisions)
	tracer().Infof("atlas of %d×%d pixels holds %d glyphs, %d rejected",
		w, h, fa.Len(), len(rejections))
	return fa, rejections, nil
}

// rasterize creates the atlas bitmap for character code c.
func (b *Builder) rasterize(otf *ttf.Font, c uint16) (*raster.Bitmap, error) {
	shape, err := otf.GlyphShape(c)
	if err != nil {
		return nil, err
	}
	advance, err := otf.Advance(shape.Glyph)
	if err != nil {
		return nil, err
	}
	var bmp *raster.Bitmap
	if b.conf.Mode == FullMode {
		bmp, err = raster.FullGlyph(shape, advance)
	} else {
		bmp, err = raster.Glyph(shape, advance, b.conf.Divisions)
	}
	if err != nil {
		return nil, err
	}
	bmp.CharCode = c
	return bmp, nil
}

// unique removes repeated character codes, keeping the first occurrence.
func unique(codes []uint16) []uint16 {
	seen := make(map[uint16]bool, len(codes))
	u := make([]uint16, 0, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			u = append(u, c)
		}
	}
	return u
}
