// Package denest flattens SCSS nesting-operator selectors (&__element and
// &:pseudo) into top-level selectors.
package denest

import (
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/scanner"
	"bennypowers.dev/flatscss/internal/selector"
)

// Result is the outcome of flattening one stylesheet
type Result struct {
	Text string
	// Selectors lists the selectors produced from nesting shorthand, in output order
	Selectors []selector.Selector
	// Dropped lists nesting shorthands that are not recognized and were removed
	// together with their bodies
	Dropped []string
}

// Denester rewrites nested SCSS into flat SCSS
type Denester struct {
	scanner *scanner.Scanner
}

// New creates a Denester. A nil scanner uses the default media include token.
func New(sc *scanner.Scanner) *Denester {
	if sc == nil {
		sc = scanner.New("")
	}
	return &Denester{scanner: sc}
}

// Denest flattens text. Comments, blank lines and media blocks are copied
// through unchanged; media blocks are the only nesting left in the output.
// Already-flat input is returned unchanged.
func (d *Denester) Denest(text string) Result {
	f := &flattener{}
	for _, l := range d.scanner.Scan(text) {
		f.line(l)
	}
	f.flush()
	return Result{
		Text:      strings.Join(f.out, "\n"),
		Selectors: f.selectors,
		Dropped:   f.dropped,
	}
}

// rule is an open block in the source. Root and promoted rules own their
// output lines; plain nested rules write into the closest owning rule.
type rule struct {
	selector string
	// indent is the leading whitespace of the rule's header in the source
	indent string
	// depth is the brace depth of the rule's body
	depth int
	// shift is how many leading whitespace characters are removed from the
	// rule's lines when it is promoted to the top level
	shift    int
	lines    []string
	children []*rule
	nested   bool
	dropped  bool
	spaced   bool
}

type flattener struct {
	out       []string
	stack     []*rule
	lead      string
	selectors []selector.Selector
	dropped   []string
}

func (f *flattener) top() *rule {
	return f.stack[len(f.stack)-1]
}

// owner returns the innermost rule that owns output lines
func (f *flattener) owner() *rule {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if !f.stack[i].nested {
			return f.stack[i]
		}
	}
	return f.stack[0]
}

func (f *flattener) write(text string) {
	o := f.owner()
	o.lines = append(o.lines, dedent(text, o.shift))
}

func (f *flattener) line(l scanner.Line) {
	if len(f.stack) == 0 {
		f.topLevel(l)
		return
	}

	top := f.top()
	if top.dropped {
		if l.DepthAfter() < top.depth {
			f.close(l)
		}
		return
	}

	switch {
	case l.IsComment(), l.IsBlank(), l.IsInsideMediaBlock:
		f.write(l.Text)

	case strings.HasPrefix(l.Trimmed(), "&") && strings.Contains(l.Text, "{"):
		f.shorthand(l)

	case l.Opens() && l.DepthAfter() > l.Depth:
		// plain nested rule: kept in place, but it becomes the parent for
		// shorthand written inside it
		f.write(l.Text)
		f.stack = append(f.stack, &rule{selector: l.Header(), indent: indent(l), depth: l.DepthAfter(), nested: true})

	case l.DepthAfter() < top.depth:
		f.close(l)

	default:
		f.write(l.Text)
	}
}

func (f *flattener) topLevel(l scanner.Line) {
	if l.IsComment() || l.IsBlank() || l.IsInsideMediaBlock || !l.Opens() || l.DepthAfter() <= l.Depth {
		f.out = append(f.out, l.Text)
		return
	}
	f.lead = indent(l)
	f.stack = append(f.stack, &rule{
		selector: l.Header(),
		indent:   f.lead,
		depth:    l.DepthAfter(),
		lines:    []string{l.Text},
	})
}

// shorthand handles a line starting with the nesting operator
func (f *flattener) shorthand(l scanner.Line) {
	trimmed := l.Trimmed()
	suffix := strings.TrimSpace(strings.TrimPrefix(l.Header(), "&"))
	opensBlock := l.DepthAfter() > l.Depth

	if !strings.HasPrefix(suffix, selector.ElementSeparator) && !strings.HasPrefix(suffix, ":") {
		log.Debug("Dropping unsupported nesting shorthand %q at line %d", "&"+suffix, l.Index+1)
		f.dropped = append(f.dropped, "&"+suffix)
		if opensBlock {
			f.stack = append(f.stack, &rule{indent: indent(l), depth: l.DepthAfter(), dropped: true})
		}
		return
	}

	parent := f.top().selector
	resolved := parent + suffix
	f.selectors = append(f.selectors, selector.Selector{
		Raw:            resolved,
		Kind:           selector.Classify(resolved),
		OwnerBlockName: parent,
	})

	header := f.lead + resolved + " {"
	if i := strings.Index(trimmed, "{"); i >= 0 {
		header += trimmed[i+1:]
	}

	child := &rule{
		selector: resolved,
		indent:   indent(l),
		depth:    l.DepthAfter(),
		shift:    max(0, l.IndentWidth-len(f.lead)),
		lines:    []string{header},
	}
	o := f.owner()
	o.children = append(o.children, child)
	if opensBlock {
		f.stack = append(f.stack, child)
	}
}

// close pops every rule the line l closes. When one line closes several
// rules, as in "}}", the innermost rule keeps the line minus the extra
// braces and each outer rule gets a closing brace at its header's indentation.
func (f *flattener) close(l scanner.Line) {
	n := 0
	for i := len(f.stack) - 1; i >= 0 && l.DepthAfter() < f.stack[i].depth; i-- {
		n++
	}
	if n <= 1 {
		f.pop(l.Text)
		return
	}
	f.pop(stripClosing(l.Text, n-1))
	for range n - 1 {
		f.pop(f.top().indent + "}")
	}
}

// pop closes the innermost rule with the closing line text
func (f *flattener) pop(text string) {
	top := f.top()
	switch {
	case top.dropped:
	case top.nested:
		f.write(text)
	default:
		if len(top.children) > 0 {
			top.trimTrailingBlank()
		}
		top.lines = append(top.lines, dedent(text, top.shift))
	}
	f.stack = f.stack[:len(f.stack)-1]

	if len(f.stack) == 0 {
		f.out = append(f.out, flatten(top)...)
	}
}

// flush emits rules left open at the end of the text
func (f *flattener) flush() {
	if len(f.stack) > 0 {
		f.out = append(f.out, flatten(f.stack[0])...)
		f.stack = nil
	}
}

func (r *rule) trimTrailingBlank() {
	for len(r.lines) > 1 && strings.TrimSpace(r.lines[len(r.lines)-1]) == "" {
		r.lines = r.lines[:len(r.lines)-1]
		r.spaced = true
	}
}

// flatten returns the rule's own lines followed by its promoted rules, depth first
func flatten(r *rule) []string {
	out := append([]string(nil), r.lines...)
	for _, c := range r.children {
		if r.spaced {
			out = append(out, "")
		}
		out = append(out, flatten(c)...)
	}
	return out
}

// stripClosing removes the last n closing braces of s
func stripClosing(s string, n int) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0 && n > 0; i-- {
		if b[i] == '}' {
			b = append(b[:i], b[i+1:]...)
			n--
		}
	}
	return strings.TrimRight(string(b), " \t")
}

func indent(l scanner.Line) string {
	return l.Text[:l.IndentWidth]
}

// dedent removes up to n leading whitespace characters
func dedent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}
