/*
Package font is for loading TrueType fonts to build glyph atlases from.

A ScalableFont bundles the raw bytes of a font file with two views of it:
the bounds-checked decoder of package ttf, which the atlas builder works on,
and golang.org/x/image/font/sfnt, which is used for the font's name table.

Fonts are loaded from byte slices, from files, or located by name among the
fonts installed on the system. Go Sans is always available as a fallback.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font/ttf"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'glyphatlas.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.fonts")
}

// ScalableFont is a font loaded from a TrueType file.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path, "internal" for the fallback font
	Binary   []byte     // raw data
	TTF      *ttf.Font  // decoder for atlas building
	SFNT     *sfnt.Font // x/image view of the font, not safe for concurrent use
}

// LoadTrueTypeFont reads and parses a font file.
func LoadTrueTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read font file %s", fontfile)
	}
	f, err := ParseTrueTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = path.Base(fontfile)
	}
	return f, nil
}

// ParseTrueTypeFont parses a TrueType font from its bytes. The font's name is
// taken from its name table, if present.
func ParseTrueTypeFont(fbytes []byte) (*ScalableFont, error) {
	otf, err := ttf.Parse(fbytes)
	if err != nil {
		return nil, err
	}
	f := &ScalableFont{Binary: fbytes, TTF: otf}
	if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
		// glyph decoding does not depend on x/image accepting the font
		tracer().Infof("font not accepted by sfnt: %v", err)
	} else {
		f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	}
	tracer().Debugf("parsed font %q with %d glyphs", f.Fontname, otf.NumGlyphs())
	return f, nil
}

// Name returns the font's name, normalized by NormalizeFontname.
func (sf *ScalableFont) Name() string {
	style, weight := GuessStyleAndWeight(sf.Fontname)
	return NormalizeFontname(sf.Fontname, style, weight)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else fails. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	f, err := ParseTrueTypeFont(goregular.TTF)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	f.Fontname, f.Filepath = "Go Sans", "internal"
	return f
}

// --- Locating fonts --------------------------------------------------------

// LocateFont searches the system's font directories for a font file and
// loads it. name is a file name with or without extension, e.g. "DejaVuSans"
// or "Arial.ttf".
func LocateFont(name string) (*ScalableFont, error) {
	fpath, err := findfont.Find(name)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "font %s not found", name)
	}
	tracer().Debugf("%s is a system font at %s", name, fpath)
	return LoadTrueTypeFont(fpath)
}

// NormalizeFontname creates a registry key for a font from its name, style
// and weight.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	for _, suffix := range []string{"-italic", "-oblique", "-bold", "-light", "-regular", "_italic",
		"_oblique", "_bold", "_light", "_regular"} {
		fname = strings.TrimSuffix(fname, suffix)
	}
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}

// GuessStyleAndWeight tries to guess a font's style and weight from the
// font's name or file name.
func GuessStyleAndWeight(fontname string) (xfont.Style, xfont.Weight) {
	fontname = path.Base(fontname)
	if ext := path.Ext(fontname); ext == ".ttf" || ext == ".otf" || ext == ".ttc" {
		fontname = fontname[:len(fontname)-len(ext)]
	}
	fontname = strings.ToLower(fontname)
	s := strings.Split(fontname, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return xfont.StyleNormal, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return xfont.StyleNormal, xfont.WeightNormal
		case "bold", "b":
			return xfont.StyleNormal, xfont.WeightBold
		case "xbold", "black":
			return xfont.StyleNormal, xfont.WeightExtraBold
		}
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontname, "italic") || strings.Contains(fontname, "oblique") {
		style = xfont.StyleItalic
	}
	if strings.Contains(fontname, "light") {
		weight = xfont.WeightLight
	}
	if strings.Contains(fontname, "bold") {
		weight = xfont.WeightBold
	}
	return style, weight
}
