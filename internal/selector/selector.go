// Package selector classifies the flat, FLOCSS-style class selectors the
// normalizer works with: blocks (.c-card), elements (.c-card__title) and
// pseudo-class variants (.c-card:hover).
package selector

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the structural role of a selector
type Kind int

const (
	// Block is a top-level component selector such as c-card
	Block Kind = iota
	// Element is a selector nested under a block with the __ separator
	Element
	// PseudoClass is a block selector combined with a :state
	PseudoClass
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "block"
	case Element:
		return "element"
	case PseudoClass:
		return "pseudo-class"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ElementSeparator joins a block name and an element name
const ElementSeparator = "__"

// Selector is a selector discovered while flattening a stylesheet
type Selector struct {
	Raw  string
	Kind Kind
	// OwnerBlockName is the block selector that was active when the selector
	// was written with the nesting operator, empty when there was none.
	OwnerBlockName string
}

// Classify returns the kind of a selector name by its shape.
// A leading dot is ignored.
func Classify(name string) Kind {
	name = Name(name)
	switch {
	case strings.Contains(name, ElementSeparator):
		return Element
	case strings.Contains(name, ":"):
		return PseudoClass
	default:
		return Block
	}
}

// Name strips whitespace and the leading class dot from a selector
func Name(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), ".")
}

// BlockName returns the block part of a selector name: everything before
// the first element separator or pseudo-class colon.
func BlockName(name string) string {
	name = Name(name)
	if i := strings.Index(name, ElementSeparator); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	return name
}

// IsElementOf reports whether name is an element (or an element pseudo-class) of block
func IsElementOf(name, block string) bool {
	return strings.HasPrefix(Name(name), Name(block)+ElementSeparator)
}

// IsPseudoClassOf reports whether name is a pseudo-class variant of owner
func IsPseudoClassOf(name, owner string) bool {
	return strings.HasPrefix(Name(name), Name(owner)+":")
}

// DefaultPrefixes are the FLOCSS layer prefixes: project, component, layout
var DefaultPrefixes = []string{"p", "c", "l"}

// Matcher recognizes class names carrying one of the tracked prefixes
type Matcher struct {
	prefixes []string
	class    *regexp.Regexp
	selector *regexp.Regexp
}

var prefixPattern = regexp.MustCompile(`^[A-Za-z]+$`)

// NewMatcher builds a Matcher for the given prefixes (without the trailing hyphen)
func NewMatcher(prefixes []string) (*Matcher, error) {
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("at least one selector prefix is required")
	}
	quoted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if !prefixPattern.MatchString(p) {
			return nil, fmt.Errorf("invalid selector prefix %q: only letters are allowed", p)
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	alt := strings.Join(quoted, "|")
	return &Matcher{
		prefixes: append([]string(nil), prefixes...),
		class:    regexp.MustCompile(`^(?:` + alt + `)-[A-Za-z0-9_-]+$`),
		selector: regexp.MustCompile(`^(?:` + alt + `)-[A-Za-z0-9_-]+(?::{1,2}[A-Za-z0-9_-]+(?:\([^)]*\))?)*$`),
	}, nil
}

// MustMatcher is like NewMatcher but panics on invalid prefixes
func MustMatcher(prefixes []string) *Matcher {
	m, err := NewMatcher(prefixes)
	if err != nil {
		panic(err)
	}
	return m
}

// Default matches the p-, c- and l- prefixes
var Default = MustMatcher(DefaultPrefixes)

// Prefixes returns the tracked prefixes
func (m *Matcher) Prefixes() []string {
	return append([]string(nil), m.prefixes...)
}

// IsTrackedClass reports whether a bare class token (as found in markup) is tracked
func (m *Matcher) IsTrackedClass(class string) bool {
	return m.class.MatchString(class)
}

// IsTrackedSelector reports whether a selector is a single tracked class,
// optionally followed by pseudo-classes. Compound, descendant and grouped
// selectors are not tracked.
func (m *Matcher) IsTrackedSelector(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, ".") {
		return false
	}
	return m.selector.MatchString(raw[1:])
}
