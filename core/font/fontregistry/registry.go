package fontregistry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/glyphatlas/core"
	"github.com/npillmayer/glyphatlas/core/font"
	"github.com/npillmayer/glyphatlas/engine/atlas"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding loaded fonts and the atlases built from
// them.
type Registry struct {
	sync.Mutex
	fonts   map[string]*font.ScalableFont
	atlases map[string]*cachedAtlas
}

type cachedAtlas struct {
	atlas      *atlas.FontAtlas
	rejections []atlas.Rejection
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts and
// atlases.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

func NewRegistry() *Registry {
	return &Registry{
		fonts:   make(map[string]*font.ScalableFont),
		atlases: make(map[string]*cachedAtlas),
	}
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(normalizedName string, f *font.ScalableFont) {
	if f == nil || f.TTF == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[normalizedName]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, normalizedName)
		fr.fonts[normalizedName] = f
	}
}

// Font returns the font stored under key normalizedName.
//
// If no such font has been stored, Font returns the fallback font together
// with an error.
func (fr *Registry) Font(normalizedName string) (*font.ScalableFont, error) {
	fr.Lock()
	defer fr.Unlock()
	if f, ok := fr.fonts[normalizedName]; ok {
		return f, nil
	}
	tracer().Infof("registry does not contain font %s", normalizedName)
	err := core.Error(core.EMISSING, "font %s not found in registry", normalizedName)
	f, ok := fr.fonts["fallback"]
	if !ok {
		f = font.FallbackFont()
		tracer().Infof("font registry caches fallback font %s", f.Fontname)
		fr.fonts["fallback"] = f
	}
	return f, err
}

// Atlas returns an atlas for the glyphs of codes in the font stored under
// key normalizedName, together with the character codes rejected while
// building it. If an atlas has already been built for the same font,
// configuration and codes in the same order (repeated codes aside), Atlas
// returns the cached one.
//
// An unknown font is an error; Atlas does not build atlases from the
// fallback font unless it has been requested as "fallback".
func (fr *Registry) Atlas(ctx context.Context, normalizedName string, codes []uint16,
	conf atlas.Config) (*atlas.FontAtlas, []atlas.Rejection, error) {
	//
	key := atlasKey(normalizedName, codes, conf)
	fr.Lock()
	if a, ok := fr.atlases[key]; ok {
		fr.Unlock()
		tracer().Debugf("registry found atlas %s", key)
		return a.atlas, a.rejections, nil
	}
	fr.Unlock()
	f, err := fr.Font(normalizedName)
	if err != nil && normalizedName != "fallback" {
		return nil, nil, err
	}
	// built outside the lock: concurrent requests for the same atlas may
	// build it twice, the first one stored wins
	fa, rejections, err := atlas.NewBuilder(conf).BuildFont(ctx, f.TTF, codes)
	if err != nil {
		return nil, nil, err
	}
	fr.Lock()
	defer fr.Unlock()
	if a, ok := fr.atlases[key]; ok {
		return a.atlas, a.rejections, nil
	}
	tracer().Infof("font registry caches atlas %s", key)
	fr.atlases[key] = &cachedAtlas{atlas: fa, rejections: rejections}
	return fa, rejections, nil
}

// atlasKey identifies an atlas by font, configuration and the character
// codes in order of first occurrence. Input order decides packing ties and
// the order of rejections, so it is part of the key. The number of workers
// does not change an atlas.
func atlasKey(fname string, codes []uint16, conf atlas.Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s-%s-%d-%d", fname, conf.Mode, conf.Divisions, conf.MaxSide)
	seen := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			fmt.Fprintf(&sb, ":%x", c)
		}
	}
	return sb.String()
}

// LogFontList is a helper function to dump the list of known fonts and
// atlases in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	fr.Lock()
	defer fr.Unlock()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for k, v := range fr.fonts {
		tracer().Infof("font [%s] = %v", k, v.Fontname)
	}
	for k, v := range fr.atlases {
		tracer().Infof("atlas [%s] = %d×%d, %d glyphs", k, v.atlas.Width, v.atlas.Height, v.atlas.Len())
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}
