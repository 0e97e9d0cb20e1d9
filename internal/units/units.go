// Package units converts pixel lengths to root-relative rem lengths.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/flatscss/internal/scanner"
)

// DefaultRootFontSize is the root font size, in px, that 1rem stands for
const DefaultRootFontSize = 16.0

var pxPattern = regexp.MustCompile(`(\d*\.?\d+) ?px\b`)

// Normalizer rewrites px lengths to rem
type Normalizer struct {
	scanner      *scanner.Scanner
	RootFontSize float64
}

// New creates a Normalizer. A nil scanner uses the default media include
// token and a non-positive root size selects DefaultRootFontSize.
func New(sc *scanner.Scanner, rootFontSize float64) *Normalizer {
	if sc == nil {
		sc = scanner.New("")
	}
	if rootFontSize <= 0 {
		rootFontSize = DefaultRootFontSize
	}
	return &Normalizer{scanner: sc, RootFontSize: rootFontSize}
}

// Normalize converts every px length in text that is not exempt.
//
// Exempt lines are left as written: lines in media blocks, comment lines,
// lines mentioning both "border" and "1px", and lines mentioning both
// "box-shadow" and "px". The exemptions match on raw text, so a selector
// such as .border-box with a 1px value is exempt too.
func (n *Normalizer) Normalize(text string) string {
	lines := n.scanner.Scan(text)
	out := make([]string, len(lines))
	for i, l := range lines {
		if Exempt(l) {
			out[i] = l.Text
			continue
		}
		out[i] = n.ConvertLine(l.Text)
	}
	return strings.Join(out, "\n")
}

// Exempt reports whether a line keeps its px values
func Exempt(l scanner.Line) bool {
	if l.IsInsideMediaBlock || l.IsComment() {
		return true
	}
	if strings.Contains(l.Text, "border") && strings.Contains(l.Text, "1px") {
		return true
	}
	return strings.Contains(l.Text, "box-shadow") && strings.Contains(l.Text, "px")
}

// ConvertLine rewrites the px lengths of a single line, with no exemptions
func (n *Normalizer) ConvertLine(line string) string {
	root := n.RootFontSize
	if root <= 0 {
		root = DefaultRootFontSize
	}
	return pxPattern.ReplaceAllStringFunc(line, func(m string) string {
		sub := pxPattern.FindStringSubmatch(m)
		px, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return m
		}
		return FormatRem(px/root) + "rem"
	})
}

// HasConvertible reports whether a line has px values Normalize would rewrite
func HasConvertible(l scanner.Line) bool {
	return !Exempt(l) && pxPattern.MatchString(l.Text)
}

// PxLocations returns the byte offsets of px lengths in a line
func PxLocations(line string) [][]int {
	return pxPattern.FindAllStringIndex(line, -1)
}

// FormatRem rounds v to three decimal places, halves away from zero, and
// trims trailing zeros
func FormatRem(v float64) string {
	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
