/*
Command ttfcli is an interactive inspector for TrueType fonts and the glyph
atlases built from them.

	ttfcli -font DejaVuSans.ttf -divisions 64

Without a font argument, Go Sans is used. Type "help" at the prompt for a
list of commands.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/glyphatlas/core/font"
	"github.com/npillmayer/glyphatlas/core/font/fontregistry"
	"github.com/npillmayer/glyphatlas/engine/atlas"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'glyphatlas.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphatlas.fonts")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file or name of a system font")
	divisions := flag.Int("divisions", 32, "Design units per atlas pixel")
	mode := flag.String("mode", "reduced", "Rasterization mode [reduced|full]")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":        "go",
		"trace.glyphatlas.fonts": *tlevel,
		"trace.glyphatlas.atlas": *tlevel,
		atlas.KeyDivisions:       strconv.Itoa(*divisions),
		atlas.KeyMode:            *mode,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the TrueType atlas CLI")
	tracer().Infof("Trace level is %s", *tlevel)
	atlasConf, err := atlas.ConfigFrom(conf)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	//
	// set up REPL
	repl, err := readline.New("ttf > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{repl: repl, conf: atlasConf, registry: fontregistry.GlobalRegistry()}
	if err := intp.loadFont(*fontname); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL(context.Background())
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	font     *font.ScalableFont
	fontkey  string // registry key of font
	conf     atlas.Config
	registry *fontregistry.Registry
}

// REPL starts interactive mode.
func (intp *Intp) REPL(ctx context.Context) {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		quit, err := intp.execute(ctx, cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// loadFont loads a font file, a system font or, if fontname is empty, the
// fallback font, and stores it in the registry.
func (intp *Intp) loadFont(fontname string) (err error) {
	var f *font.ScalableFont
	switch {
	case fontname == "":
		f = font.FallbackFont()
	case fileExists(fontname):
		f, err = font.LoadTrueTypeFont(fontname)
	default:
		f, err = font.LocateFont(fontname)
	}
	if err != nil {
		return err
	}
	intp.font, intp.fontkey = f, f.Name()
	intp.registry.StoreFont(intp.fontkey, f)
	pterm.Printfln("font %q: %d glyphs, %d units per em, tables %v", f.Fontname,
		f.TTF.NumGlyphs(), f.TTF.UnitsPerEm(), f.TTF.TableTags())
	return nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
