// Package preview compiles the flat SCSS dialect to plain CSS so that
// normalized output can be rendered without a Sass toolchain.
package preview

import (
	"fmt"
	"regexp"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/parser/css"
	"bennypowers.dev/flatscss/internal/scanner"
)

// DefaultBreakpoints maps media mixin arguments to media queries
var DefaultBreakpoints = map[string]string{
	"sp":  "screen and (max-width: 767px)",
	"tab": "screen and (max-width: 1023px)",
	"pc":  "screen and (min-width: 1024px)",
}

var declaration = regexp.MustCompile(`^\s*\$[A-Za-z_][A-Za-z0-9_-]*\s*:\s*(.+?)\s*(?:!default\s*)?;`)

// Options configures Compile
type Options struct {
	// Breakpoints maps media mixin arguments to media queries; nil selects DefaultBreakpoints
	Breakpoints map[string]string
	// MediaInclude is the media mixin token
	MediaInclude string
}

// Result is a compiled stylesheet
type Result struct {
	CSS string
	// Problems are syntax problems of the compiled CSS
	Problems []css.Problem
	// Warnings describe constructs that were compiled on a best-effort basis
	Warnings []string
}

// media is a media block found inside a rule, hoisted after the rule
type media struct {
	query string
	body  []string
}

// Compile converts flat SCSS to CSS: variables are substituted from the
// palette and the stylesheet's own declarations, darken()/lighten() calls are
// evaluated, declarations and // comments are removed, and media mixin
// blocks become @media rules, hoisted out of the rule that contains them.
func Compile(text string, p palette.Palette, opts Options) (*Result, error) {
	resolved, err := p.Resolved()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve palette: %w", err)
	}

	breakpoints := opts.Breakpoints
	if breakpoints == nil {
		breakpoints = DefaultBreakpoints
	}

	c := &compiler{
		sc:          scanner.New(opts.MediaInclude),
		breakpoints: breakpoints,
		vars:        make(map[string]string),
	}
	for _, e := range resolved {
		if _, ok := c.vars[e.Variable]; !ok {
			c.vars[e.Variable] = e.Value
		}
	}
	c.declare(text)
	c.compile(text)

	out := strings.Join(c.out, "\n")
	problems, err := css.Validate(out)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		log.Debug("Preview CSS has %d syntax problems", len(problems))
	}
	return &Result{CSS: out, Problems: problems, Warnings: c.warnings}, nil
}

type compiler struct {
	sc          *scanner.Scanner
	breakpoints map[string]string
	vars        map[string]string
	out         []string
	warnings    []string

	// selector of the open top-level rule
	selector string
	// media blocks of the open rule, emitted when it closes
	pending []media
	// media block being collected inside a rule
	current *media
}

// declare adds the stylesheet's own $declarations, later ones winning
func (c *compiler) declare(text string) {
	var local palette.Palette
	for _, l := range c.sc.Scan(text) {
		if l.IsComment() {
			continue
		}
		if m := declaration.FindStringSubmatch(l.Text); m != nil {
			name := strings.TrimSpace(l.Text[:strings.Index(l.Text, ":")])
			local = append(local, palette.Entry{Variable: name, Value: m[1]})
		}
	}
	lookup := func(name string) (string, bool) {
		v, ok := c.vars[name]
		return v, ok
	}
	// one round per declaration lets references point forward as well as back
	for range local {
		for _, e := range local {
			c.vars[e.Variable] = palette.ResolveValue(e.Value, lookup)
		}
	}
}

func (c *compiler) compile(text string) {
	for _, l := range c.sc.Scan(text) {
		switch {
		case c.current != nil:
			if l.IsInsideMediaBlock && l.IsClose() {
				c.pending = append(c.pending, *c.current)
				c.current = nil
				continue
			}
			if line, ok := c.line(l); ok {
				c.current.body = append(c.current.body, strings.TrimSpace(line))
			}

		case l.IsInsideMediaBlock && !l.IsComment() && strings.Contains(l.Text, c.sc.MediaInclude):
			query := c.query(l.Text)
			if l.Depth == 0 {
				rest := "{"
				if i := strings.Index(l.Text, "{"); i >= 0 {
					rest, _ = c.line(scanner.Line{Index: l.Index, Text: l.Text[i:]})
				}
				c.out = append(c.out, l.Text[:l.IndentWidth]+"@media "+query+" "+rest)
				continue
			}
			if l.BraceDelta() == 0 {
				c.pending = append(c.pending, media{query: query, body: c.inline(l)})
				continue
			}
			c.current = &media{query: query}

		default:
			line, ok := c.line(l)
			if !ok {
				continue
			}
			if l.Depth == 0 && l.Opens() {
				c.selector = l.Header()
			}
			c.out = append(c.out, line)
			if l.Depth > 0 && l.DepthAfter() == 0 {
				c.flush()
			}
		}
	}
	if c.current != nil {
		c.pending = append(c.pending, *c.current)
		c.current = nil
	}
	c.flush()
}

// line converts one source line, reporting false for lines that are dropped
func (c *compiler) line(l scanner.Line) (string, bool) {
	trimmed := l.Trimmed()
	switch {
	case strings.HasPrefix(trimmed, "//") && !l.IsInsideComment:
		return "", false
	case l.IsComment():
		return l.Text, true
	case declaration.MatchString(l.Text):
		return "", false
	}
	lookup := func(name string) (string, bool) {
		v, ok := c.vars[name]
		return v, ok
	}
	line := palette.ResolveValue(l.Text, lookup)
	for _, name := range palette.References(line) {
		c.warn("undefined variable %s on line %d", name, l.Index+1)
	}
	return line, true
}

// inline returns the declarations of a one-line block
func (c *compiler) inline(l scanner.Line) []string {
	t := l.Text
	start, end := strings.Index(t, "{"), strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return nil
	}
	line, ok := c.line(scanner.Line{Index: l.Index, Text: t[start+1 : end]})
	if !ok {
		return nil
	}
	var body []string
	for _, decl := range strings.Split(line, ";") {
		if decl = strings.TrimSpace(decl); decl != "" {
			body = append(body, decl+";")
		}
	}
	return body
}

// query returns the media query for a mixin line such as "@include mq(sp) {"
func (c *compiler) query(text string) string {
	arg := text[strings.Index(text, c.sc.MediaInclude)+len(c.sc.MediaInclude):]
	if i := strings.Index(arg, "{"); i >= 0 {
		arg = arg[:i]
	}
	arg = strings.TrimSpace(arg)
	if strings.HasSuffix(c.sc.MediaInclude, "(") || strings.HasPrefix(arg, "(") {
		arg = strings.TrimSuffix(arg, ")")
		if !strings.HasSuffix(c.sc.MediaInclude, "(") {
			arg = strings.TrimPrefix(arg, "(")
		}
	}
	arg = strings.Trim(strings.TrimSpace(arg), `"'`)
	if q, ok := c.breakpoints[arg]; ok {
		return q
	}
	if strings.HasPrefix(arg, "(") || strings.HasPrefix(arg, "screen") {
		return arg
	}
	c.warn("unknown breakpoint %q", arg)
	return arg
}

// flush emits the media blocks collected for the rule that just closed
func (c *compiler) flush() {
	for _, m := range c.pending {
		c.out = append(c.out, "@media "+m.query+" {", "  "+c.selector+" {")
		for _, line := range m.body {
			if line == "" {
				continue
			}
			c.out = append(c.out, "    "+line)
		}
		c.out = append(c.out, "  }", "}")
	}
	c.pending = nil
}

func (c *compiler) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Debug("Preview: %s", msg)
	c.warnings = append(c.warnings, msg)
}
