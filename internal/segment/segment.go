// Package segment partitions a flat stylesheet into named block, element
// and pseudo-class records that can be saved independently.
package segment

import (
	"strings"

	"bennypowers.dev/flatscss/internal/collections"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/scanner"
	"bennypowers.dev/flatscss/internal/selector"
)

// StubComment is the body of a record synthesized for a class that appears
// in markup but has no styles
const StubComment = "// discovered from markup, no styles generated"

// Block is the code of one selector. Segment returns blocks without
// children; Group arranges them into a tree.
type Block struct {
	// Name is the selector without its leading dot, e.g. c-card__title
	Name string
	Kind selector.Kind
	Code string
	// Synthesized is set for stub records of classes found only in markup
	Synthesized   bool
	Elements      []*Block
	PseudoClasses []*Block
}

// Segmenter splits stylesheets into blocks
type Segmenter struct {
	matcher *selector.Matcher
	scanner *scanner.Scanner
}

// New creates a Segmenter. Nil arguments select the default prefixes and
// media include token.
func New(m *selector.Matcher, sc *scanner.Scanner) *Segmenter {
	if m == nil {
		m = selector.Default
	}
	if sc == nil {
		sc = scanner.New("")
	}
	return &Segmenter{matcher: m, scanner: sc}
}

// segmenter is the state of one Segment call
type segmenter struct {
	blocks *collections.OrderedMap[string, *Block]
	// current is the record being read, nil between rules
	current *record
	// last is the most recently completed record
	last *Block
}

type record struct {
	name  string
	lines []string
	// attach is set when the lines belong to an untracked rule and are
	// appended to another block
	attach *Block
	drop   bool
}

// Segment partitions text into blocks in order of first appearance.
//
// Each top-level rule with a tracked selector starts a record holding every
// line up to its closing brace. Other top-level rules, media blocks
// included, are appended to the most recent record, or dropped when there is
// none. A selector seen again replaces the earlier code but keeps its
// position. Referenced class names with no rule of their own get a stub
// record.
func (s *Segmenter) Segment(text string, referenced []string) []*Block {
	g := &segmenter{blocks: collections.NewOrderedMap[string, *Block]()}

	for _, l := range s.scanner.Scan(text) {
		if l.Depth > 0 || g.current != nil {
			g.append(l)
			continue
		}
		if l.IsComment() || l.IsBlank() || !strings.Contains(l.Text, "{") {
			continue
		}
		g.start(l, s.matcher.IsTrackedSelector(l.Header()))
	}
	if g.current != nil {
		g.finish()
	}

	for _, name := range referenced {
		name = selector.Name(name)
		if name == "" || g.blocks.Has(name) {
			continue
		}
		log.Debug("Synthesizing stub block for %s", name)
		g.blocks.Put(name, Stub(name))
	}
	return g.blocks.Values()
}

// Stub returns the placeholder block for a class without styles
func Stub(name string) *Block {
	name = selector.Name(name)
	return &Block{
		Name:        name,
		Kind:        selector.Classify(name),
		Code:        "." + name + " {\n  " + StubComment + "\n}",
		Synthesized: true,
	}
}

func (g *segmenter) start(l scanner.Line, tracked bool) {
	switch {
	case tracked:
		g.current = &record{name: selector.Name(l.Header())}
	case g.last != nil:
		g.current = &record{attach: g.last}
	default:
		log.Debug("Dropping untracked rule %q at line %d", l.Header(), l.Index+1)
		g.current = &record{drop: true}
	}
	g.append(l)
}

func (g *segmenter) append(l scanner.Line) {
	if g.current == nil {
		return
	}
	g.current.lines = append(g.current.lines, l.Text)
	if l.DepthAfter() == 0 && !l.IsComment() && strings.Contains(l.Text, "}") {
		g.finish()
	}
}

func (g *segmenter) finish() {
	r := g.current
	g.current = nil
	code := strings.Join(r.lines, "\n")

	switch {
	case r.drop:
	case r.attach != nil:
		r.attach.Code += "\n" + code
	default:
		b := &Block{Name: r.name, Kind: selector.Classify(r.name), Code: code}
		if g.blocks.Put(r.name, b) {
			log.Debug("Duplicate selector .%s: later rule replaces earlier", r.name)
		}
		g.last = b
	}
}
