package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/derekparker/trie"
	"github.com/npillmayer/glyphatlas/engine/atlas"
	"github.com/npillmayer/glyphatlas/engine/raster"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

// Op codes of commands
const (
	QUIT int = iota
	HELP
	TABLES
	GLYPH
	RASTER
	ATLAS
	NAME
)

// Command is a parsed command line, e.g. "raster:A:16".
type Command struct {
	code   int
	arg    string
	format string
}

// commands maps command names to op codes. Commands may be abbreviated to
// any unique prefix.
var commands = func() *trie.Trie {
	t := trie.New()
	for name, code := range map[string]int{
		"quit":   QUIT,
		"help":   HELP,
		"tables": TABLES,
		"glyph":  GLYPH,
		"raster": RASTER,
		"atlas":  ATLAS,
		"name":   NAME,
	} {
		t.Add(name, code)
	}
	return t
}()

func parseCommand(line string) (*Command, error) {
	c := strings.SplitN(line, ":", 3) // e.g.  "glyph:A" or "atlas:Hello:64"
	tracer().Debugf("parse command = %v", c)
	word := strings.ToLower(strings.TrimSpace(c[0]))
	if word == "" {
		return nil, errors.New("empty command")
	}
	matches := commands.PrefixSearch(word)
	if len(matches) != 1 {
		if len(matches) > 1 {
			return nil, fmt.Errorf("ambiguous command %q: %v", word, matches)
		}
		return nil, fmt.Errorf("unknown command %q, try 'help'", word)
	}
	node, _ := commands.Find(matches[0])
	return &Command{
		code:   node.Meta().(int),
		arg:    getOptArg(c, 1),
		format: getOptArg(c, 2),
	}, nil
}

func getOptArg(c []string, i int) string {
	if len(c) > i {
		return c[i]
	}
	return ""
}

// parseChars interprets a command argument as a list of character codes.
// "U+0041" and "0x41" denote a single code, anything else is taken
// literally. Characters outside of the BMP cannot be put into an atlas.
func parseChars(arg string) ([]uint16, error) {
	upper := strings.ToUpper(arg)
	if strings.HasPrefix(upper, "U+") || strings.HasPrefix(upper, "0X") {
		n, err := strconv.ParseUint(arg[2:], 16, 16)
		if err != nil {
			return nil, fmt.Errorf("not a character code: %s", arg)
		}
		return []uint16{uint16(n)}, nil
	}
	if arg == "" {
		return nil, errors.New("missing character argument")
	}
	codes := make([]uint16, 0, utf8.RuneCountInString(arg))
	for _, r := range arg {
		if r > 0xffff {
			return nil, fmt.Errorf("character %q is outside of the BMP", r)
		}
		codes = append(codes, uint16(r))
	}
	return codes, nil
}

// parseDivisions reads an optional divisions argument, defaulting to dflt.
func parseDivisions(arg string, dflt int) (int, error) {
	if arg == "" {
		return dflt, nil
	}
	d, err := strconv.Atoi(arg)
	if err != nil || d < 1 {
		return 0, fmt.Errorf("divisions must be a positive number: %s", arg)
	}
	return d, nil
}

func (intp *Intp) execute(ctx context.Context, cmd *Command) (bool, error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case TABLES:
		data := pterm.TableData{{"Tag", "Offset", "Length"}}
		for _, tag := range intp.font.TTF.TableTags() {
			rec, _ := intp.font.TTF.Table(tag)
			data = append(data, []string{tag.String(), strconv.Itoa(int(rec.Offset)), strconv.Itoa(int(rec.Length))})
		}
		return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	case GLYPH:
		codes, err := parseChars(cmd.arg)
		if err != nil {
			return false, err
		}
		for _, c := range codes {
			if err := intp.showGlyph(c); err != nil {
				return false, err
			}
		}
	case RASTER:
		codes, err := parseChars(cmd.arg)
		if err != nil {
			return false, err
		}
		d, err := parseDivisions(cmd.format, intp.conf.Divisions)
		if err != nil {
			return false, err
		}
		for _, c := range codes {
			if err := intp.showRaster(c, d); err != nil {
				return false, err
			}
		}
	case ATLAS:
		codes, err := parseChars(cmd.arg)
		if err != nil {
			return false, err
		}
		conf := intp.conf
		if conf.Divisions, err = parseDivisions(cmd.format, conf.Divisions); err != nil {
			return false, err
		}
		return false, intp.showAtlas(ctx, codes, conf)
	case NAME:
		codes, err := parseChars(cmd.arg)
		if err != nil {
			return false, err
		}
		for _, c := range codes {
			pterm.Printfln("U+%04X %q %s", c, rune(c), runenames.Name(rune(c)))
		}
	}
	return false, nil
}

func (intp *Intp) showGlyph(c uint16) error {
	shape, err := intp.font.TTF.GlyphShape(c)
	if err != nil {
		return err
	}
	m, err := intp.font.TTF.Metrics(shape.Glyph)
	if err != nil {
		return err
	}
	pterm.Printfln("U+%04X %s: glyph %d, %d contours, %d points, bbox %v, advance %d, lsb %d",
		c, runenames.Name(rune(c)), shape.Glyph, shape.NumContours, shape.TotalPoints,
		shape.BBox, m.Advance, m.LSB)
	for i := 0; i < shape.NumContours; i++ {
		pterm.Printfln("  contour %d: %v", i, shape.Contour(i))
	}
	return nil
}

func (intp *Intp) showRaster(c uint16, divisions int) error {
	shape, err := intp.font.TTF.GlyphShape(c)
	if err != nil {
		return err
	}
	advance, err := intp.font.TTF.Advance(shape.Glyph)
	if err != nil {
		return err
	}
	bmp, err := raster.Glyph(shape, advance, divisions)
	if err != nil {
		return err
	}
	pterm.Printfln("U+%04X at 1:%d: %d×%d pixels, shift (%g,%g)", c, divisions,
		bmp.Width, bmp.Height, bmp.XShift, bmp.YShift)
	pterm.Println(bmp.String())
	return nil
}

func (intp *Intp) showAtlas(ctx context.Context, codes []uint16, conf atlas.Config) error {
	fa, rejections, err := intp.registry.Atlas(ctx, intp.fontkey, codes, conf)
	if err != nil {
		return err
	}
	pterm.Printfln("atlas of %d×%d pixels with %d glyphs", fa.Width, fa.Height, fa.Len())
	for i := 0; i < fa.Len(); i++ {
		pterm.Printfln("  %v", fa.Glyph(i))
	}
	for _, r := range rejections {
		pterm.Error.Printfln("rejected %v", r)
	}
	pterm.Println(fa.AsBitmap().String())
	return nil
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	tables               list the font's table directory
	glyph:<chars>        show outlines and metrics of glyphs
	raster:<chars>[:d]   show glyphs rasterized at 1:d
	atlas:<chars>[:d]    build and show an atlas for chars at 1:d
	name:<chars>         show Unicode names of chars
	quit                 leave the CLI

	Characters may be given literally ("atlas:Hello") or as a single
	code ("glyph:U+00E4", "name:0x41"). Commands may be abbreviated.
	`)
}
