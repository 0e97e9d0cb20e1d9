// Package config loads flatscss settings from .config/flatscss.{yaml,yml,json}
// or the "flatscss" field of package.json.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
	"bennypowers.dev/flatscss/internal/preview"
	"bennypowers.dev/flatscss/internal/resolver"
	"bennypowers.dev/flatscss/internal/scanner"
	"bennypowers.dev/flatscss/internal/selector"
	"bennypowers.dev/flatscss/internal/units"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrConfig wraps every configuration loading and validation failure
var ErrConfig = errors.New("configuration error")

// PackageJSONKey is the package.json field holding the configuration
const PackageJSONKey = "flatscss"

// Candidates are the configuration files tried, in order, below the workspace root
var Candidates = []string{
	".config/flatscss.yaml",
	".config/flatscss.yml",
	".config/flatscss.json",
}

// Config is the user configuration
type Config struct {
	// Prefixes are the tracked selector prefixes, without hyphen
	Prefixes []string `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`

	// MediaInclude is the mixin invocation that opens a media block
	MediaInclude string `json:"mediaInclude,omitempty" yaml:"mediaInclude,omitempty"`

	// Breakpoints maps media mixin arguments to media queries for previews
	Breakpoints map[string]string `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`

	RootFontSize   float64 `json:"rootFontSize,omitempty" yaml:"rootFontSize,omitempty"`
	ColorThreshold float64 `json:"colorThreshold,omitempty" yaml:"colorThreshold,omitempty"`

	// PerceptualColors matches nearest colors by CIEDE2000 instead of RGB distance
	PerceptualColors bool `json:"perceptualColors,omitempty" yaml:"perceptualColors,omitempty"`

	FallbackColor  string            `json:"fallbackColor,omitempty" yaml:"fallbackColor,omitempty"`
	ColorOverrides map[string]string `json:"colorOverrides,omitempty" yaml:"colorOverrides,omitempty"`

	// Palette holds inline palette entries; they come before PaletteFiles
	Palette palette.Palette `json:"palette,omitempty" yaml:"palette,omitempty"`

	// PaletteFiles are loaded in order; see ResolvePath for the accepted forms
	PaletteFiles []string `json:"paletteFiles,omitempty" yaml:"paletteFiles,omitempty"`

	// Include and Exclude are doublestar globs selecting stylesheets
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Default returns the configuration used when no file is found
func Default() Config {
	return Config{
		Prefixes:       append([]string(nil), selector.DefaultPrefixes...),
		MediaInclude:   scanner.DefaultMediaInclude,
		Breakpoints:    maps.Clone(preview.DefaultBreakpoints),
		RootFontSize:   units.DefaultRootFontSize,
		ColorThreshold: resolver.DefaultThreshold,
		FallbackColor:  resolver.DefaultFallback,
		Include:        []string{"**/*.scss"},
		Exclude:        []string{"**/node_modules/**"},
	}
}

// Load reads a configuration file, choosing the decoder by extension.
// Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-selected configuration file
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to read %s: %w", ErrConfig, path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	default:
		return Config{}, fmt.Errorf("%w: unsupported configuration file %s", ErrConfig, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse %s: %w", ErrConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Discover looks for configuration below root. It returns the defaults and
// an empty path when nothing is found.
func Discover(root string) (Config, string, error) {
	for _, candidate := range Candidates {
		path := filepath.Join(root, candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.Debug("Loading configuration from %s", path)
		cfg, err := Load(path)
		return cfg, path, err
	}

	path := filepath.Join(root, "package.json")
	cfg, found, err := readPackageJSON(path)
	if err != nil {
		return Config{}, path, err
	}
	if found {
		log.Debug("Loading configuration from %s#%s", path, PackageJSONKey)
		return cfg, path, cfg.Validate()
	}
	return Default(), "", nil
}

func readPackageJSON(path string) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: workspace package.json
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("%w: failed to read package.json: %w", ErrConfig, err)
	}

	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return Config{}, false, fmt.Errorf("%w: failed to parse package.json: %w", ErrConfig, err)
	}
	raw, ok := pkg[PackageJSONKey]
	if !ok {
		return Config{}, false, nil
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return Config{}, false, fmt.Errorf("%w: package.json %s must be an object", ErrConfig, PackageJSONKey)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w: failed to parse package.json %s: %w", ErrConfig, PackageJSONKey, err)
	}
	return cfg, true, nil
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var err error
	if c.RootFontSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: rootFontSize must be positive", ErrConfig))
	}
	if c.ColorThreshold <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: colorThreshold must be positive", ErrConfig))
	}
	if _, perr := selector.NewMatcher(c.Prefixes); perr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrConfig, perr))
	}
	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			err = multierr.Append(err, fmt.Errorf("%w: invalid glob %q", ErrConfig, pattern))
		}
	}
	if perr := c.Palette.Validate(); perr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrConfig, perr))
	}
	return err
}

// PipelineOptions converts the configuration to pipeline options
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Prefixes:         c.Prefixes,
		MediaInclude:     c.MediaInclude,
		RootFontSize:     c.RootFontSize,
		ColorThreshold:   c.ColorThreshold,
		PerceptualColors: c.PerceptualColors,
		FallbackColor:    c.FallbackColor,
	}
}

// PreviewOptions converts the configuration to preview options
func (c Config) PreviewOptions() preview.Options {
	return preview.Options{Breakpoints: c.Breakpoints, MediaInclude: c.MediaInclude}
}

// LoadPalette returns the inline palette followed by the entries of every
// palette file, resolved against root. All file errors are reported together.
func (c Config) LoadPalette(root string) (palette.Palette, error) {
	p := append(palette.Palette(nil), c.Palette...)
	var errs error
	for _, ref := range c.PaletteFiles {
		file, err := ResolvePath(ref, root)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		entries, err := palette.Load(file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		p = append(p, entries...)
	}
	return p, errs
}

// Matches reports whether the slash-separated path, relative to the
// configuration root, is selected by Include and not by Exclude
func (c Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(c.Include) == 0 {
		return true
	}
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
