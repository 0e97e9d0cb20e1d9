// Package html reads the tracked class names of a markup fragment and the
// elements that carry them.
package html

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/flatscss/internal/collections"
	"bennypowers.dev/flatscss/internal/selector"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser scans markup with tree-sitter
type Parser struct {
	parser     *sitter.Parser
	classQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		classQuery, qerr := sitter.NewQuery(htmlLang, `
			(attribute
				(attribute_name) @attr_name
				[
					(quoted_attribute_value (attribute_value) @attr_value)
					(attribute_value) @attr_value
				]
				(#eq? @attr_name "class"))
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile class query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			classQuery: classQuery,
		}
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
	if p.classQuery != nil {
		p.classQuery.Close()
	}
}

// ScanClasses returns the tracked classes of markup, each with the tag name of
// the first element whose class attribute holds it, in order of discovery.
//
// Class tokens are collected from every class attribute first; tag names are
// then resolved by walking the elements. When error recovery leaves a class
// attribute outside any element, the class is recorded with DefaultTag.
func (p *Parser) ScanClasses(markup string, m *selector.Matcher) []ClassRecord {
	if m == nil {
		m = selector.Default
	}
	source := []byte(markup)
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()

	classes := collections.NewOrderedMap[string, string]()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(p.classQuery, root, source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var name, value string
		for _, capture := range match.Captures {
			text := string(source[capture.Node.StartByte():capture.Node.EndByte()])
			switch p.classQuery.CaptureNames()[capture.Index] {
			case "attr_name":
				name = text
			case "attr_value":
				value = text
			}
		}
		if !strings.EqualFold(name, "class") {
			continue
		}
		for _, class := range strings.Fields(value) {
			if m.IsTrackedClass(class) {
				classes.SetIfAbsent(class, DefaultTag)
			}
		}
	}

	records := make([]ClassRecord, 0, classes.Len())
	for _, class := range classes.Keys() {
		tag := DefaultTag
		if el := findElement(root, source, class); el != nil {
			tag = tagName(el, source)
		}
		records = append(records, ClassRecord{ClassName: class, TagName: tag})
	}
	return records
}

// ExtractFragment returns the source of the first element whose class
// attribute holds className
func (p *Parser) ExtractFragment(markup, className string) (string, bool) {
	className = selector.Name(className)
	source := []byte(markup)
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return "", false
	}
	defer tree.Close()

	el := findElement(tree.RootNode(), source, className)
	if el == nil {
		return "", false
	}
	return string(source[el.StartByte():el.EndByte()]), true
}

// ScanClasses scans markup with a pooled parser
func ScanClasses(markup string, m *selector.Matcher) []ClassRecord {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ScanClasses(markup, m)
}

// ExtractFragment extracts a fragment with a pooled parser
func ExtractFragment(markup, className string) (string, bool) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ExtractFragment(markup, className)
}

// findElement returns the first element, in document order, whose opening
// tag's class attribute contains class as a whole word
func findElement(node *sitter.Node, source []byte, class string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == "element" {
		if tag := openingTag(node); tag != nil && slices.Contains(classList(tag, source), class) {
			return node
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := findElement(node.Child(i), source, class); found != nil {
			return found
		}
	}
	return nil
}

// openingTag returns the start_tag or self_closing_tag of an element
func openingTag(element *sitter.Node) *sitter.Node {
	for i := uint(0); i < element.ChildCount(); i++ {
		child := element.Child(i)
		if kind := child.Kind(); kind == "start_tag" || kind == "self_closing_tag" {
			return child
		}
	}
	return nil
}

// classList returns the class tokens of an opening tag
func classList(tag *sitter.Node, source []byte) []string {
	for i := uint(0); i < tag.ChildCount(); i++ {
		attr := tag.Child(i)
		if attr.Kind() != "attribute" {
			continue
		}
		var name, value string
		for j := uint(0); j < attr.ChildCount(); j++ {
			child := attr.Child(j)
			switch child.Kind() {
			case "attribute_name":
				name = text(child, source)
			case "attribute_value":
				value = text(child, source)
			case "quoted_attribute_value":
				value = strings.Trim(text(child, source), `"'`)
			}
		}
		if strings.EqualFold(name, "class") {
			return strings.Fields(value)
		}
	}
	return nil
}

// tagName returns the lower-case tag name of an element
func tagName(element *sitter.Node, source []byte) string {
	tag := openingTag(element)
	if tag == nil {
		return DefaultTag
	}
	for i := uint(0); i < tag.ChildCount(); i++ {
		if child := tag.Child(i); child.Kind() == "tag_name" {
			return strings.ToLower(text(child, source))
		}
	}
	return DefaultTag
}

func text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
