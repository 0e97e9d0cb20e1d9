package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	asimonimSchema "bennypowers.dev/asimonim/schema"
	"bennypowers.dev/flatscss/internal/color"
	"bennypowers.dev/flatscss/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// GroupMarkers are token names that may also be groups
var GroupMarkers = []string{"_", "@", "DEFAULT"}

var curlyReference = regexp.MustCompile(`\{([^{}]+)\}`)

// parseTokens reads the color tokens of a DTCG tokens file. YAML files are
// converted to JSON first; token references become $variable references.
func parseTokens(data []byte) (Palette, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	content := jsonc.ToJSON(trimmed)
	if trimmed[0] != '{' {
		var doc any
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML tokens: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("tokens cannot be converted to JSON: %w", err)
		}
		content = converted
	}

	version, err := detectVersion(content)
	if err != nil {
		return nil, err
	}

	parser := asimonimParser.NewJSONParser()
	tokens, err := parser.Parse(content, asimonimParser.Options{
		SchemaVersion: version,
		GroupMarkers:  GroupMarkers,
		SkipSort:      true,
	})
	if err != nil {
		return nil, err
	}

	var p Palette
	for _, tok := range tokens {
		if tok.Type != "color" {
			continue
		}
		value, ok := tokenValue(tok.Value, tok.RawValue)
		if !ok {
			log.Debug("Skipping color token %s: unsupported value %v", tok.Name, tok.RawValue)
			continue
		}
		p = append(p, Entry{Variable: VariableName(tok.Name), Value: value})
	}
	return p, nil
}

// tokenValue converts a token's value to a palette value: references become
// $variables and structured colors become hex
func tokenValue(value string, raw any) (string, bool) {
	if m, ok := raw.(map[string]any); ok {
		hex, err := color.ToHex(m)
		return hex, err == nil
	}
	if strings.Contains(value, "{") {
		return curlyReference.ReplaceAllStringFunc(value, func(ref string) string {
			path := strings.Trim(ref, "{}")
			return VariableName(strings.ReplaceAll(path, ".", "-"))
		}), true
	}
	if strings.HasPrefix(value, "#/") {
		return VariableName(strings.ReplaceAll(strings.TrimPrefix(value, "#/"), "/", "-")), true
	}
	if value == "" {
		return "", false
	}
	return value, true
}

// detectVersion reads the schema version from $schema, or recognizes
// structured color objects, falling back to the draft format
func detectVersion(content []byte) (asimonimSchema.Version, error) {
	var data map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		return asimonimSchema.Unknown, fmt.Errorf("invalid tokens JSON: %w", err)
	}
	if url, ok := data["$schema"].(string); ok {
		if version, err := asimonimSchema.FromURL(url); err == nil {
			return version, nil
		}
	}
	if hasStructuredColor(data) {
		return asimonimSchema.V2025_10, nil
	}
	return asimonimSchema.Draft, nil
}

func hasStructuredColor(node map[string]any) bool {
	if v, ok := node["$value"].(map[string]any); ok {
		if _, ok := v["colorSpace"]; ok {
			return true
		}
	}
	for key, child := range node {
		if strings.HasPrefix(key, "$") {
			continue
		}
		if m, ok := child.(map[string]any); ok && hasStructuredColor(m) {
			return true
		}
	}
	return false
}
