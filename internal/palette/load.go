package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/scanner"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is a palette file format
type Format string

const (
	// FormatYAML is a YAML mapping of variable names to values
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON (or JSONC) object of variable names to values
	FormatJSON Format = "json"
	// FormatSCSS is a stylesheet of $name: value; declarations
	FormatSCSS Format = "scss"
	// FormatTokens is a DTCG design tokens file, JSON or YAML
	FormatTokens Format = "tokens"
)

// FormatFromPath picks a format by file name
func FormatFromPath(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	switch {
	case strings.HasSuffix(strings.TrimSuffix(base, ext), ".tokens") || ext == ".tokens":
		return FormatTokens, nil
	case ext == ".yaml" || ext == ".yml":
		return FormatYAML, nil
	case ext == ".json" || ext == ".jsonc":
		return FormatJSON, nil
	case ext == ".scss":
		return FormatSCSS, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads a palette file, choosing the format by file name
func Load(path string) (Palette, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette %s: %w", path, err)
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse palette %s: %w", path, err)
	}
	log.Debug("Loaded %d palette entries from %s", len(p), path)
	return p, nil
}

// Parse reads palette data in the given format
func Parse(data []byte, format Format) (Palette, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatSCSS:
		return parseSCSS(data), nil
	case FormatTokens:
		return parseTokens(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func parseYAML(data []byte) (Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseJSON(data []byte) (Palette, error) {
	var p Palette
	if err := json.Unmarshal(jsonc.ToJSON(data), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalYAML reads a mapping of names to values, keeping document order.
// Nested mappings are flattened by joining keys with "-".
func (p *Palette) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.MappingNode:
		return walkYAML(node, "", p)
	case yaml.SequenceNode:
		var entries []Entry
		if err := node.Decode(&entries); err != nil {
			return err
		}
		for _, e := range entries {
			*p = append(*p, Entry{Variable: VariableName(e.Variable), Value: e.Value})
		}
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
	}
	return fmt.Errorf("palette must be a mapping of names to colors, found %s at line %d", node.Tag, node.Line)
}

func walkYAML(node *yaml.Node, prefix string, p *Palette) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := joinName(prefix, key.Value)
		switch value.Kind {
		case yaml.MappingNode:
			if err := walkYAML(value, name, p); err != nil {
				return err
			}
		case yaml.ScalarNode:
			*p = append(*p, Entry{Variable: VariableName(name), Value: value.Value})
		default:
			return fmt.Errorf("palette entry %q must be a color string (line %d)", name, value.Line)
		}
	}
	return nil
}

// MarshalYAML writes the palette as an ordered mapping
func (p Palette) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Variable},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// UnmarshalJSON reads an object of names to values, keeping document order.
// Nested objects are flattened by joining keys with "-".
func (p *Palette) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("palette must be an object of names to colors")
	}
	return walkJSON(dec, "", p)
}

// walkJSON reads object members up to and including the closing brace
func walkJSON(dec *json.Decoder, prefix string, p *Palette) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fmt.Errorf("unexpected end of palette object")
		}
		if err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in palette", tok)
		}
		name := joinName(prefix, key)

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case string:
			*p = append(*p, Entry{Variable: VariableName(name), Value: v})
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("palette entry %q must be a color string", name)
			}
			if err := walkJSON(dec, name, p); err != nil {
				return err
			}
		default:
			return fmt.Errorf("palette entry %q must be a color string", name)
		}
	}
}

// MarshalJSON writes the palette as an ordered object
func (p Palette) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.Variable)
		v, _ := json.Marshal(e.Value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func joinName(prefix, key string) string {
	key = strings.TrimLeft(key, "$")
	if prefix == "" {
		return key
	}
	return prefix + "-" + key
}

var scssDeclaration = regexp.MustCompile(`^\s*(\$[A-Za-z_][A-Za-z0-9_-]*)\s*:\s*(.+?)\s*(?:!default\s*)?;`)

// parseSCSS collects top-level $name: value; declarations
func parseSCSS(data []byte) Palette {
	var p Palette
	for _, l := range scanner.New("").Scan(string(data)) {
		if l.IsComment() || l.Depth > 0 {
			continue
		}
		if m := scssDeclaration.FindStringSubmatch(l.Text); m != nil {
			p = append(p, Entry{Variable: m[1], Value: m[2]})
		}
	}
	return p
}
