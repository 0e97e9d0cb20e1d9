// Package css checks plain CSS with tree-sitter.
package css

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/flatscss/internal/position"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses CSS and reports its rules and syntax problems
func (p *Parser) Parse(source string) (*ParseResult, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	w := &walker{
		source: src,
		lines:  strings.Split(source, "\n"),
		result: &ParseResult{},
	}
	w.walk(tree.RootNode())
	return w.result, nil
}

// Validate parses source with a pooled parser and returns its syntax problems
func Validate(source string) ([]Problem, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	result, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	return result.Problems, nil
}

type walker struct {
	source []byte
	lines  []string
	result *ParseResult
}

func (w *walker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch {
	case node.IsMissing():
		w.result.Problems = append(w.result.Problems, Problem{
			Kind:    MissingSyntax,
			Message: fmt.Sprintf("missing %q", node.Kind()),
			Range:   w.rangeOf(node),
		})
		return
	case node.IsError():
		w.result.Problems = append(w.result.Problems, Problem{
			Kind:    UnexpectedSyntax,
			Message: fmt.Sprintf("unexpected %q", snippet(w.text(node))),
			Range:   w.rangeOf(node),
		})
		return
	}

	switch node.Kind() {
	case "rule_set", "media_statement", "supports_statement", "keyframes_statement", "at_rule":
		w.result.Rules = append(w.result.Rules, Rule{
			Prelude: w.prelude(node),
			Range:   w.rangeOf(node),
		})
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		w.walk(node.Child(i))
	}
}

// prelude returns the text of a rule before its block
func (w *walker) prelude(node *sitter.Node) string {
	text := w.text(node)
	if i := strings.Index(text, "{"); i >= 0 {
		text = text[:i]
	}
	return strings.Join(strings.Fields(text), " ")
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.source[node.StartByte():node.EndByte()])
}

func (w *walker) rangeOf(node *sitter.Node) Range {
	start, end := node.StartPosition(), node.EndPosition()
	return Range{
		Start: w.position(start.Row, start.Column),
		End:   w.position(end.Row, end.Column),
	}
}

// position converts a tree-sitter byte column to UTF-16 code units
func (w *walker) position(row, column uint) Position {
	character := uint32(column) //nolint:gosec // G115: columns are bounded by line length
	if int(row) < len(w.lines) {
		character = position.ByteOffsetToUTF16Uint32(w.lines[row], int(column))
	}
	return Position{
		Line:      uint32(row), //nolint:gosec // G115: rows are bounded by file size
		Character: character,
	}
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
