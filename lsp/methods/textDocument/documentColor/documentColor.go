package documentcolor

import (
	"fmt"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/resolver"
	"bennypowers.dev/flatscss/lsp/helpers"
	"bennypowers.dev/flatscss/lsp/types"
	"github.com/mazznoer/csscolorparser"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentColor handles the textDocument/documentColor request. It reports
// hex literals and references to palette variables that resolve to a color.
func DocumentColor(req *types.RequestContext, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	uri := params.TextDocument.URI
	log.Debug("DocumentColor requested: %s", uri)

	doc := req.Server.Document(uri)
	if doc == nil || !doc.IsStylesheet() {
		return nil, nil
	}

	resolved := resolvedPalette(req)
	colors := []protocol.ColorInformation{}
	for _, l := range req.Server.Pipeline().Scanner().Scan(doc.Content()) {
		if l.IsComment() {
			continue
		}
		for _, loc := range resolver.HexLiterals(l.Text) {
			c, err := parseColor(l.Text[loc[0]:loc[1]])
			if err != nil {
				continue
			}
			colors = append(colors, protocol.ColorInformation{Range: helpers.LineRange(l.Index, l.Text, loc), Color: *c})
		}
		for _, loc := range palette.VariablePattern.FindAllStringIndex(l.Text, -1) {
			name := l.Text[loc[0]:loc[1]]
			value, ok := resolved.Lookup(name)
			if !ok {
				continue
			}
			c, err := parseColor(value)
			if err != nil {
				req.AddWarning(fmt.Errorf("palette variable %s (value: %s) is not a color: %w", name, value, err))
				continue
			}
			colors = append(colors, protocol.ColorInformation{Range: helpers.LineRange(l.Index, l.Text, loc), Color: *c})
		}
	}

	log.Debug("Found %d colors", len(colors))
	return colors, nil
}

// ColorPresentation handles the textDocument/colorPresentation request.
// It offers every palette variable with exactly the requested color, then
// the color as a hex literal.
func ColorPresentation(req *types.RequestContext, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	log.Debug("ColorPresentation requested: %s", params.TextDocument.URI)

	requested := csscolorparser.Color{
		R: float64(params.Color.Red),
		G: float64(params.Color.Green),
		B: float64(params.Color.Blue),
		A: float64(params.Color.Alpha),
	}
	requestedHex := requested.HexString()

	presentations := []protocol.ColorPresentation{}
	for _, e := range resolvedPalette(req) {
		c, err := csscolorparser.Parse(strings.TrimSpace(e.Value))
		if err != nil || c.HexString() != requestedHex {
			continue
		}
		presentations = append(presentations, presentation(e.Variable, params.Range))
	}
	presentations = append(presentations, presentation(requestedHex, params.Range))

	log.Debug("Found %d presentations for %s", len(presentations), requestedHex)
	return presentations, nil
}

func presentation(label string, r protocol.Range) protocol.ColorPresentation {
	return protocol.ColorPresentation{
		Label:    label,
		TextEdit: &protocol.TextEdit{Range: r, NewText: label},
	}
}

func resolvedPalette(req *types.RequestContext) palette.Palette {
	resolved, err := req.Server.Palette().Resolved()
	if err != nil {
		req.AddWarning(err)
		return nil
	}
	return resolved
}

// parseColor parses any CSS color (hex, rgb(), hsl(), named colors) into a protocol.Color
func parseColor(value string) (*protocol.Color, error) {
	value = strings.TrimSpace(value)
	parsed, err := csscolorparser.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("unsupported color format: %s", value)
	}
	return &protocol.Color{
		Red:   protocol.Decimal(parsed.R),
		Green: protocol.Decimal(parsed.G),
		Blue:  protocol.Decimal(parsed.B),
		Alpha: protocol.Decimal(parsed.A),
	}, nil
}
