// Package palette models the named color variables a stylesheet may use and
// loads them from YAML, JSON, SCSS and design token files.
package palette

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

// VariablePattern matches a $variable reference
var VariablePattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_-]*`)

var variableName = regexp.MustCompile(`^\$[A-Za-z_][A-Za-z0-9_-]*$`)

// Entry is one palette variable. Variable carries its leading "$";
// Value is a hex literal, another color, a $reference or a darken()/lighten() call.
type Entry struct {
	Variable string `json:"variable" yaml:"variable"`
	Value    string `json:"value" yaml:"value"`
}

// Palette is an ordered list of entries. Earlier entries take precedence
// over later entries with the same variable or the same color.
type Palette []Entry

// Lookup returns the value of the first entry declaring name
func (p Palette) Lookup(name string) (string, bool) {
	for _, e := range p {
		if e.Variable == name {
			return e.Value, true
		}
	}
	return "", false
}

// Has reports whether name is declared
func (p Palette) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Variables returns the declared variable names in order, without duplicates
func (p Palette) Variables() []string {
	seen := make(map[string]bool, len(p))
	names := make([]string, 0, len(p))
	for _, e := range p {
		if !seen[e.Variable] {
			seen[e.Variable] = true
			names = append(names, e.Variable)
		}
	}
	return names
}

// FromPairs builds a palette from name/value pairs given in order. A missing
// leading "$" is added.
func FromPairs(pairs ...string) Palette {
	p := make(Palette, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		p = append(p, Entry{Variable: VariableName(pairs[i]), Value: pairs[i+1]})
	}
	return p
}

// VariableName returns name with exactly one leading "$"
func VariableName(name string) string {
	return "$" + strings.TrimLeft(strings.TrimSpace(name), "$")
}

// Validate checks every entry and returns all problems found, combined.
// Each problem is a *PaletteError.
func (p Palette) Validate() error {
	var err error
	for i, e := range p {
		switch {
		case !strings.HasPrefix(e.Variable, "$"):
			err = multierr.Append(err, NewPaletteError(i, e.Variable, "variable name must start with $"))
		case !variableName.MatchString(e.Variable):
			err = multierr.Append(err, NewPaletteError(i, e.Variable, "invalid variable name"))
		case strings.TrimSpace(e.Value) == "":
			err = multierr.Append(err, NewPaletteError(i, e.Variable, "value is empty"))
		}
	}
	return err
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Variable, e.Value)
}
