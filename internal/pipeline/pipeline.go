// Package pipeline runs the normalization stages over one generated
// stylesheet and segments the result.
package pipeline

import (
	"strings"

	"bennypowers.dev/flatscss/internal/color"
	"bennypowers.dev/flatscss/internal/denest"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/parser/html"
	"bennypowers.dev/flatscss/internal/resolver"
	"bennypowers.dev/flatscss/internal/scanner"
	"bennypowers.dev/flatscss/internal/segment"
	"bennypowers.dev/flatscss/internal/selector"
	"bennypowers.dev/flatscss/internal/units"
)

// Input is one generated stylesheet with its markup and the caller's palette
type Input struct {
	Stylesheet string
	Markup     string
	Palette    palette.Palette
	// ColorOverrides maps undefined variable names to replacement colors
	ColorOverrides map[string]string
}

// Options tunes the stages
type Options struct {
	Prefixes       []string
	MediaInclude   string
	RootFontSize   float64
	ColorThreshold float64
	// PerceptualColors selects CIEDE2000 instead of RGB distance for nearest matches
	PerceptualColors bool
	FallbackColor    string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Prefixes:       selector.DefaultPrefixes,
		MediaInclude:   scanner.DefaultMediaInclude,
		RootFontSize:   units.DefaultRootFontSize,
		ColorThreshold: resolver.DefaultThreshold,
		FallbackColor:  resolver.DefaultFallback,
	}
}

// Metadata tells the caller which corrections were applied
type Metadata struct {
	WasDenested                bool
	WasUnitConverted           bool
	HexReplacedCount           int
	UndefinedVariablesReplaced []string
	// DroppedSelectors are nesting shorthands removed by the denester
	DroppedSelectors []string
}

// Result is the outcome of one run
type Result struct {
	NormalizedStylesheet string
	Blocks               []*segment.Block
	MarkupClasses        []html.ClassRecord
	Metadata             Metadata
}

// Pipeline holds the validated options. It keeps no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	opts     Options
	scanner  *scanner.Scanner
	matcher  *selector.Matcher
	denester *denest.Denester
	units    *units.Normalizer
}

// New validates opts and creates a Pipeline
func New(opts Options) (*Pipeline, error) {
	if opts.RootFontSize <= 0 {
		return nil, NewArgumentError("root font size", "must be positive", nil)
	}
	if opts.ColorThreshold <= 0 {
		return nil, NewArgumentError("color threshold", "must be positive", nil)
	}
	if len(opts.Prefixes) == 0 {
		opts.Prefixes = selector.DefaultPrefixes
	}
	m, err := selector.NewMatcher(opts.Prefixes)
	if err != nil {
		return nil, NewArgumentError("prefixes", "not a valid prefix list", err)
	}

	sc := scanner.New(opts.MediaInclude)
	opts.MediaInclude = sc.MediaInclude
	return &Pipeline{
		opts:     opts,
		scanner:  sc,
		matcher:  m,
		denester: denest.New(sc),
		units:    units.New(sc, opts.RootFontSize),
	}, nil
}

// Run is a convenience for New(opts) followed by Run(in)
func Run(in Input, opts Options) (*Result, error) {
	p, err := New(opts)
	if err != nil {
		return nil, err
	}
	return p.Run(in)
}

// Resolver returns the color resolver the pipeline uses for a palette
func (p *Pipeline) Resolver(pal palette.Palette, overrides map[string]string) *resolver.Resolver {
	distance := color.RGBDistance
	if p.opts.PerceptualColors {
		distance = color.PerceptualDistance
	}
	return resolver.New(pal, resolver.Options{
		Threshold:    p.opts.ColorThreshold,
		Distance:     distance,
		Fallback:     p.opts.FallbackColor,
		Overrides:    overrides,
		MediaInclude: p.opts.MediaInclude,
	})
}

// Matcher returns the tracked selector matcher
func (p *Pipeline) Matcher() *selector.Matcher {
	return p.matcher
}

// Scanner returns the line scanner configured with the media include token
func (p *Pipeline) Scanner() *scanner.Scanner {
	return p.scanner
}

// Units returns the px to rem normalizer
func (p *Pipeline) Units() *units.Normalizer {
	return p.units
}

// Options returns the validated options
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run normalizes in.Stylesheet, then segments it into blocks, adding stub
// blocks for tracked classes that appear only in the markup. Only invalid
// palette entries fail a run; everything else is reported in Metadata.
func (p *Pipeline) Run(in Input) (*Result, error) {
	if err := in.Palette.Validate(); err != nil {
		return nil, NewArgumentError("palette", "invalid entries", err)
	}

	text := normalizeNewlines(in.Stylesheet)
	var meta Metadata

	denested := p.denester.Denest(text)
	meta.WasDenested = denested.Text != text
	meta.DroppedSelectors = denested.Dropped
	text = denested.Text

	converted := p.units.Normalize(text)
	meta.WasUnitConverted = converted != text
	text = converted

	r := p.Resolver(in.Palette, in.ColorOverrides)
	text, meta.HexReplacedCount = r.ReplaceLiterals(text)
	text, meta.UndefinedVariablesReplaced = r.ReplaceUndefined(text)

	var classes []html.ClassRecord
	if strings.TrimSpace(in.Markup) != "" {
		classes = html.ScanClasses(normalizeNewlines(in.Markup), p.matcher)
	}
	referenced := make([]string, len(classes))
	for i, c := range classes {
		referenced[i] = c.ClassName
	}

	blocks := segment.New(p.matcher, p.scanner).Segment(text, referenced)

	log.Debug("Pipeline: denested=%t units=%t hex=%d undefined=%d blocks=%d",
		meta.WasDenested, meta.WasUnitConverted, meta.HexReplacedCount,
		len(meta.UndefinedVariablesReplaced), len(blocks))

	return &Result{
		NormalizedStylesheet: text,
		Blocks:               blocks,
		MarkupClasses:        classes,
		Metadata:             meta,
	}, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
