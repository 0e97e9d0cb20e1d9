// Package resolver rewrites the colors of a stylesheet against a palette:
// literal hex colors become palette variables, and variables the palette
// does not define become literal colors again.
package resolver

import (
	"math"
	"regexp"
	"strings"

	"bennypowers.dev/flatscss/internal/collections"
	"bennypowers.dev/flatscss/internal/color"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/scanner"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultThreshold is the distance below which a literal snaps to the nearest palette color
	DefaultThreshold = 20.0
	// DefaultFallback replaces undefined variables that have no override
	DefaultFallback = "#808080"
)

// hexToken matches a run of hex digits after #; only runs of exactly 3 or 6
// digits are colors, so #abcd and #aabbccdd are never partially matched.
var hexToken = regexp.MustCompile(`#[0-9A-Fa-f]+`)

var declaration = regexp.MustCompile(`^\s*(\$[A-Za-z_][A-Za-z0-9_-]*)\s*:`)

// Options tunes a Resolver. Zero values select the defaults.
type Options struct {
	// Threshold is the exclusive upper bound for nearest-color matches
	Threshold float64
	// Distance compares colors; RGB Euclidean distance by default
	Distance color.DistanceFunc
	// Fallback replaces undefined variables without an override
	Fallback string
	// Overrides maps undefined variable names to replacement values
	Overrides map[string]string
	// MediaInclude is the media mixin token; its lines keep their variables
	MediaInclude string
}

// Resolver resolves stylesheet colors against a palette. It holds no
// per-call state and may be shared between goroutines.
type Resolver struct {
	palette palette.Palette
	opts    Options
	scanner *scanner.Scanner
}

// New creates a Resolver for the palette
func New(p palette.Palette, opts Options) *Resolver {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Distance == nil {
		opts.Distance = color.RGBDistance
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}
	sc := scanner.New(opts.MediaInclude)
	opts.MediaInclude = sc.MediaInclude
	return &Resolver{palette: p, opts: opts, scanner: sc}
}

// swatch is a palette entry whose value is a literal hex color
type swatch struct {
	variable string
	color    colorful.Color
}

// matcher carries the state of a single resolution pass
type matcher struct {
	index     *collections.OrderedMap[string, string]
	swatches  []swatch
	cache     map[string]string
	threshold float64
	distance  color.DistanceFunc
}

func (r *Resolver) newMatcher() *matcher {
	m := &matcher{
		index:     collections.NewOrderedMap[string, string](),
		cache:     make(map[string]string),
		threshold: r.opts.Threshold,
		distance:  r.opts.Distance,
	}
	for _, e := range r.palette {
		hex, ok := color.NormalizeHex(e.Value)
		if !ok {
			continue
		}
		m.index.SetIfAbsent(hex, e.Variable)
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		m.swatches = append(m.swatches, swatch{variable: e.Variable, color: c})
	}
	return m
}

// resolve returns the variable for a normalized hex, or "" when none is close enough
func (m *matcher) resolve(hex string) string {
	if v, ok := m.cache[hex]; ok {
		return v
	}
	v, ok := m.index.Get(hex)
	if !ok {
		v = m.nearest(hex)
	}
	m.cache[hex] = v
	return v
}

// nearest finds the closest swatch; ties go to the earliest palette entry
func (m *matcher) nearest(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ""
	}
	best, bestDistance := "", math.Inf(1)
	for _, s := range m.swatches {
		if d := m.distance(c, s.color); d < bestDistance {
			best, bestDistance = s.variable, d
		}
	}
	if bestDistance < m.threshold {
		return best
	}
	return ""
}

// Match returns the palette variable a hex literal would be replaced with
func (r *Resolver) Match(hex string) (string, bool) {
	normalized, ok := color.NormalizeHex(hex)
	if !ok {
		return "", false
	}
	v := r.newMatcher().resolve(normalized)
	return v, v != ""
}

// ReplaceLiterals replaces hex color literals with palette variables, by
// exact match first and otherwise by the nearest palette color within the
// threshold. Within one call each distinct literal resolves once, so all of
// its occurrences get the same variable. Comment lines and $variable
// declarations are left as written. It returns the rewritten text and the
// number of literals replaced.
func (r *Resolver) ReplaceLiterals(text string) (string, int) {
	m := r.newMatcher()
	count := 0

	lines := r.scanner.Scan(text)
	out := make([]string, len(lines))
	for i, l := range lines {
		if l.IsComment() || declaration.MatchString(l.Text) {
			out[i] = l.Text
			continue
		}
		out[i] = hexToken.ReplaceAllStringFunc(l.Text, func(tok string) string {
			hex, ok := color.NormalizeHex(tok)
			if !ok {
				return tok
			}
			if v := m.resolve(hex); v != "" {
				count++
				return v
			}
			return tok
		})
	}

	if count > 0 {
		log.Debug("Replaced %d hex literals with palette variables", count)
	}
	return strings.Join(out, "\n"), count
}

// HexLiterals returns the byte ranges of hex color literals in a line
func HexLiterals(line string) [][]int {
	var out [][]int
	for _, loc := range hexToken.FindAllStringIndex(line, -1) {
		if color.IsHexLiteral(line[loc[0]:loc[1]]) {
			out = append(out, loc)
		}
	}
	return out
}

// IsDeclaration reports whether a line declares a $variable
func IsDeclaration(line string) bool {
	return declaration.MatchString(line)
}

// Declared returns the variables a stylesheet declares itself
func Declared(text string) []string {
	set := collections.NewOrderedMap[string, struct{}]()
	for _, line := range strings.Split(text, "\n") {
		if m := declaration.FindStringSubmatch(line); m != nil {
			set.SetIfAbsent(m[1], struct{}{})
		}
	}
	return set.Keys()
}

// Undefined returns, in first-seen order, the variables text references
// that neither the palette nor the stylesheet defines
func (r *Resolver) Undefined(text string) []string {
	defined := collections.NewSet(r.palette.Variables()...)
	defined.Add(Declared(text)...)

	found := collections.NewOrderedMap[string, struct{}]()
	for _, l := range r.scanner.Scan(text) {
		if r.skipsVariables(l) {
			continue
		}
		for _, name := range palette.VariablePattern.FindAllString(l.Text, -1) {
			if !defined.Has(name) {
				found.SetIfAbsent(name, struct{}{})
			}
		}
	}
	return found.Keys()
}

// ReplaceUndefined replaces every reference to an undefined variable with
// its override, or the fallback color. It returns the rewritten text and the
// distinct names replaced, in first-seen order.
func (r *Resolver) ReplaceUndefined(text string) (string, []string) {
	undefined := r.Undefined(text)
	if len(undefined) == 0 {
		return text, nil
	}
	replacements := make(map[string]string, len(undefined))
	for _, name := range undefined {
		replacements[name] = r.Replacement(name)
	}

	lines := r.scanner.Scan(text)
	out := make([]string, len(lines))
	for i, l := range lines {
		if r.skipsVariables(l) {
			out[i] = l.Text
			continue
		}
		out[i] = palette.VariablePattern.ReplaceAllStringFunc(l.Text, func(name string) string {
			if v, ok := replacements[name]; ok {
				return v
			}
			return name
		})
	}

	log.Debug("Replaced undefined variables: %s", strings.Join(undefined, ", "))
	return strings.Join(out, "\n"), undefined
}

// Replacement returns the value substituted for an undefined variable
func (r *Resolver) Replacement(name string) string {
	if v, ok := r.opts.Overrides[name]; ok {
		return v
	}
	if v, ok := r.opts.Overrides[strings.TrimPrefix(name, "$")]; ok {
		return v
	}
	return r.opts.Fallback
}

func (r *Resolver) skipsVariables(l scanner.Line) bool {
	return l.IsComment() || strings.Contains(l.Text, r.opts.MediaInclude)
}
