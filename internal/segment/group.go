package segment

import (
	"strings"

	"bennypowers.dev/flatscss/internal/selector"
)

// Related returns, in order, the block named name together with its
// elements, element pseudo-classes and pseudo-classes
func Related(blocks []*Block, name string) []*Block {
	name = selector.Name(name)
	var out []*Block
	for _, b := range blocks {
		if b.Name == name || selector.IsElementOf(b.Name, name) || selector.IsPseudoClassOf(b.Name, name) {
			out = append(out, b)
		}
	}
	return out
}

// Group arranges the family of name into a tree: the block's elements and
// pseudo-classes, with each element's pseudo-classes under that element.
// It returns nil when blocks holds nothing for name. The input blocks are
// not modified.
func Group(blocks []*Block, name string) *Block {
	name = selector.Name(name)
	related := Related(blocks, name)
	if len(related) == 0 {
		return nil
	}

	root := &Block{Name: name, Kind: selector.Block}
	elements := make(map[string]*Block)
	element := func(elementName string) *Block {
		if e, ok := elements[elementName]; ok {
			return e
		}
		e := &Block{Name: elementName, Kind: selector.Element}
		elements[elementName] = e
		root.Elements = append(root.Elements, e)
		return e
	}

	for _, b := range related {
		switch {
		case b.Name == name:
			root.Code = b.Code
			root.Synthesized = b.Synthesized
		case selector.IsElementOf(b.Name, name):
			elementName, _, isPseudo := strings.Cut(b.Name, ":")
			e := element(elementName)
			if isPseudo {
				e.PseudoClasses = append(e.PseudoClasses, detached(b))
			} else {
				e.Code = b.Code
				e.Synthesized = b.Synthesized
			}
		default:
			root.PseudoClasses = append(root.PseudoClasses, detached(b))
		}
	}
	return root
}

// Walk visits b and its descendants depth first: the block, its
// pseudo-classes, then each element followed by its own pseudo-classes
func Walk(b *Block, visit func(*Block)) {
	if b == nil {
		return
	}
	visit(b)
	for _, p := range b.PseudoClasses {
		Walk(p, visit)
	}
	for _, e := range b.Elements {
		Walk(e, visit)
	}
}

func detached(b *Block) *Block {
	c := *b
	c.Elements = nil
	c.PseudoClasses = nil
	return &c
}
