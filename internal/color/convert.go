// Package color parses and converts the color values found in palettes and
// stylesheets, and implements the color math the normalizer relies on.
package color

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// ErrUnsupportedColor indicates a value that cannot be read as a color
var ErrUnsupportedColor = errors.New("unsupported color value")

// ToHex converts a color value to lower-case #rrggbb form (#rrggbbaa when
// translucent). Strings may use any CSS color syntax; maps are DTCG
// structured colors, of which only the srgb color space can be converted.
func ToHex(value any) (string, error) {
	switch v := value.(type) {
	case string:
		parsed, err := csscolorparser.Parse(strings.TrimSpace(v))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedColor, v)
		}
		return parsed.HexString(), nil
	case map[string]any:
		return objectToHex(v)
	case nil:
		return "", fmt.Errorf("%w: color value is nil", ErrUnsupportedColor)
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedColor, value)
}

// objectToHex converts a structured {colorSpace, components, alpha, hex} color
func objectToHex(c map[string]any) (string, error) {
	if hex, ok := c["hex"].(string); ok && hex != "" {
		return ToHex(hex)
	}

	space, _ := c["colorSpace"].(string)
	if strings.ToLower(space) != "srgb" {
		return "", fmt.Errorf("%w: can only convert sRGB colors to hex, got %q", ErrUnsupportedColor, space)
	}

	components, _ := c["components"].([]any)
	if len(components) < 3 {
		return "", fmt.Errorf("%w: invalid number of components: %d", ErrUnsupportedColor, len(components))
	}

	parsed := csscolorparser.Color{
		R: clamp01(componentToFloat(components[0])),
		G: clamp01(componentToFloat(components[1])),
		B: clamp01(componentToFloat(components[2])),
		A: 1,
	}
	if alpha, ok := c["alpha"]; ok {
		parsed.A = clamp01(componentToFloat(alpha))
	}
	return parsed.HexString(), nil
}

// componentToFloat reads a numeric component; the "none" keyword is zero
func componentToFloat(component any) float64 {
	switch v := component.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Parse reads any CSS color value into a colorful.Color, discarding alpha
func Parse(value string) (colorful.Color, error) {
	parsed, err := csscolorparser.Parse(strings.TrimSpace(value))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrUnsupportedColor, value)
	}
	return colorful.Color{R: parsed.R, G: parsed.G, B: parsed.B}, nil
}

// IsHexLiteral reports whether s is # followed by exactly 3 or 6 hex digits
func IsHexLiteral(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	digits := s[1:]
	if len(digits) != 3 && len(digits) != 6 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return false
		}
	}
	return true
}

// NormalizeHex returns the upper-case six-digit form of a 3 or 6 digit hex
// literal, expanding #abc to #AABBCC.
func NormalizeHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !IsHexLiteral(s) {
		return "", false
	}
	s = strings.ToUpper(s)
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s, true
}

func isHexDigit(b byte) bool {
	return ('0' <= b && b <= '9') || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}
