package palette

import (
	"bennypowers.dev/flatscss/internal/color"
)

// Resolved returns a copy of the palette in which variable references are
// replaced by the values they resolve to and darken()/lighten() calls are
// evaluated. Values that cannot be fully resolved keep their unresolved parts.
func (p Palette) Resolved() (Palette, error) {
	order, err := BuildDependencyGraph(p).TopologicalSort()
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(order))
	lookup := func(name string) (string, bool) {
		v, ok := resolved[name]
		return v, ok
	}
	for _, name := range order {
		value, _ := p.Lookup(name)
		resolved[name] = ResolveValue(value, lookup)
	}

	out := make(Palette, len(p))
	for i, e := range p {
		out[i] = Entry{Variable: e.Variable, Value: resolved[e.Variable]}
	}
	return out, nil
}

// ResolveValue substitutes known variables in value and evaluates color functions
func ResolveValue(value string, lookup color.LookupFunc) string {
	value = VariablePattern.ReplaceAllStringFunc(value, func(ref string) string {
		if v, ok := lookup(ref); ok {
			return v
		}
		return ref
	})
	return color.EvaluateFunctions(value, lookup)
}

// Hex returns the resolved color of name as lower-case hex
func (p Palette) Hex(name string) (string, bool) {
	resolved, err := p.Resolved()
	if err != nil {
		return "", false
	}
	value, ok := resolved.Lookup(name)
	if !ok {
		return "", false
	}
	hex, err := color.ToHex(value)
	if err != nil {
		return "", false
	}
	return hex, true
}
