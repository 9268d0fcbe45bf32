package atlas

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
)

// Mode selects how glyphs are rasterized for the atlas.
type Mode int

const (
	// ReducedMode scales glyphs down by Config.Divisions.
	ReducedMode Mode = iota
	// FullMode renders one pixel per design unit.
	FullMode
)

func (m Mode) String() string {
	switch m {
	case ReducedMode:
		return "reduced"
	case FullMode:
		return "full"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Config holds the parameters of an atlas build.
type Config struct {
	Divisions int  // design units per atlas pixel in reduced mode
	Workers   int  // number of concurrent rasterizers
	MaxSide   int  // maximum side length of the atlas
	Mode      Mode // reduced or full
}

// Configuration keys
const (
	KeyDivisions = "atlas.divisions"
	KeyWorkers   = "atlas.workers"
	KeyMaxSide   = "atlas.maxside"
	KeyMode      = "atlas.mode"
)

// DefaultConfig returns a configuration with 32 design units per pixel, one
// worker per CPU and a maximum atlas side of 16384 pixels.
func DefaultConfig() Config {
	return Config{
		Divisions: 32,
		Workers:   runtime.GOMAXPROCS(0),
		MaxSide:   16384,
		Mode:      ReducedMode,
	}
}

// ConfigError is returned for invalid configuration values.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atlas configuration %q: %s", e.Key, e.Reason)
}

// ConfigFrom reads the atlas configuration from conf. Keys not set keep
// their default values.
func ConfigFrom(conf schuko.Configuration) (Config, error) {
	c := DefaultConfig()
	var err error
	if c.Divisions, err = intValue(conf, KeyDivisions, c.Divisions); err != nil {
		return c, err
	}
	if c.Workers, err = intValue(conf, KeyWorkers, c.Workers); err != nil {
		return c, err
	}
	if c.MaxSide, err = intValue(conf, KeyMaxSide, c.MaxSide); err != nil {
		return c, err
	}
	switch m := strings.ToLower(strings.TrimSpace(conf.GetString(KeyMode))); m {
	case "", "reduced":
		c.Mode = ReducedMode
	case "full":
		c.Mode = FullMode
	default:
		return c, &ConfigError{Key: KeyMode, Reason: fmt.Sprintf("unknown mode %q", m)}
	}
	tracer().Debugf("atlas configuration: %+v", c)
	return c, c.Validate()
}

func intValue(conf schuko.Configuration, key string, dflt int) (int, error) {
	s := strings.TrimSpace(conf.GetString(key))
	if s == "" {
		return dflt, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return dflt, &ConfigError{Key: key, Reason: fmt.Sprintf("not a number: %q", s)}
	}
	return n, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch {
	case c.Divisions < 1:
		return &ConfigError{Key: KeyDivisions, Reason: "must be at least 1"}
	case c.Workers < 1:
		return &ConfigError{Key: KeyWorkers, Reason: "must be at least 1"}
	case c.MaxSide < 1:
		return &ConfigError{Key: KeyMaxSide, Reason: "must be at least 1"}
	case c.Mode != ReducedMode && c.Mode != FullMode:
		return &ConfigError{Key: KeyMode, Reason: "unknown mode " + c.Mode.String()}
	}
	return nil
}
