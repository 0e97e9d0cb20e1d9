package color

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// functionPattern matches darken() and lighten() calls whose arguments
// contain no nested calls. Nested calls are evaluated innermost first.
var functionPattern = regexp.MustCompile(`\b(darken|lighten)\(\s*([^,()]+?)\s*,\s*(\d*\.?\d+)%\s*\)`)

// LookupFunc resolves a $variable to its value
type LookupFunc func(name string) (string, bool)

// EvaluateFunctions replaces darken(x, N%) and lighten(x, N%) calls with a
// hex literal when x is a hex literal or a variable lookup can resolve.
// Calls that cannot be resolved are left as written.
func EvaluateFunctions(text string, lookup LookupFunc) string {
	for range 8 {
		next := functionPattern.ReplaceAllStringFunc(text, func(call string) string {
			m := functionPattern.FindStringSubmatch(call)
			base, ok := resolveArgument(m[2], lookup)
			if !ok {
				return call
			}
			amount, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return call
			}
			if m[1] == "darken" {
				amount = -amount
			}
			return AdjustLightness(base, amount)
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// HasFunctions reports whether text contains a darken() or lighten() call
func HasFunctions(text string) bool {
	return functionPattern.MatchString(text)
}

// AdjustLightness shifts the HSL lightness of c by percent points, clamped to 0..100
func AdjustLightness(c colorful.Color, percent float64) string {
	h, s, l := c.Hsl()
	l = clamp01(l + percent/100)
	return colorful.Hsl(h, s, l).Clamped().Hex()
}

func resolveArgument(arg string, lookup LookupFunc) (colorful.Color, bool) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "$") {
		if lookup == nil {
			return colorful.Color{}, false
		}
		value, ok := lookup(arg)
		if !ok {
			return colorful.Color{}, false
		}
		arg = strings.TrimSpace(value)
	}
	if !IsHexLiteral(arg) {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(arg)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}
