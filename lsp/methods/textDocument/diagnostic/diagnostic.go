package diagnostic

import (
	"fmt"
	"strings"

	"bennypowers.dev/flatscss/internal/collections"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/preview"
	"bennypowers.dev/flatscss/internal/resolver"
	"bennypowers.dev/flatscss/internal/scanner"
	"bennypowers.dev/flatscss/internal/selector"
	"bennypowers.dev/flatscss/internal/units"
	"bennypowers.dev/flatscss/lsp/helpers"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source is the diagnostic source shown by clients
const Source = "flatscss"

// Diagnostic codes. Each one but CodePreviewSyntax marks text that
// normalization rewrites; Data carries the replacement text.
const (
	CodeNesting           = "nesting"
	CodeDroppedNesting    = "dropped-nesting"
	CodePx                = "px"
	CodePaletteColor      = "palette-color"
	CodeUndefinedVariable = "undefined-variable"
	CodePreviewSyntax     = "preview-syntax"
)

// DocumentDiagnostic handles the textDocument/diagnostic request (pull diagnostics).
// glsp only knows LSP 3.16, so CustomHandler routes this method here.
func DocumentDiagnostic(req *types.RequestContext, params *DocumentDiagnosticParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debug("Pull diagnostics requested for: %s", uri)

	diagnostics, err := GetDiagnostics(req.Server, uri)
	if err != nil {
		return nil, err
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	return RelatedFullDocumentDiagnosticReport{
		Kind:  string(DiagnosticFull),
		Items: diagnostics,
	}, nil
}

// GetDiagnostics returns diagnostics for an open stylesheet, in source order,
// followed by syntax problems of its compiled preview
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	doc := ctx.Document(uri)
	if doc == nil || !doc.IsStylesheet() {
		return nil, nil
	}

	pipe := ctx.Pipeline()
	cfg := ctx.GetConfig()
	text := strings.ReplaceAll(doc.Content(), "\r\n", "\n")
	res := pipe.Resolver(ctx.Palette(), cfg.ColorOverrides)
	c := &collector{
		resolver:  res,
		units:     pipe.Units(),
		include:   pipe.Scanner().MediaInclude,
		undefined: collections.NewSet(res.Undefined(text)...),
	}
	for _, l := range pipe.Scanner().Scan(text) {
		c.line(l)
	}

	result, err := ctx.Analyze(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", uri, err)
	}
	compiled, err := preview.Compile(result.NormalizedStylesheet, ctx.Palette(), cfg.PreviewOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to compile preview of %s: %w", uri, err)
	}
	for _, p := range compiled.Problems {
		c.add(protocol.Range{}, protocol.DiagnosticSeverityError, CodePreviewSyntax, nil,
			"compiled CSS line %d: %s", p.Range.Start.Line+1, p.Message)
	}

	log.Debug("Found %d diagnostics for %s", len(c.diagnostics), uri)
	return c.diagnostics, nil
}

type collector struct {
	resolver    *resolver.Resolver
	units       *units.Normalizer
	include     string
	undefined   collections.Set[string]
	diagnostics []protocol.Diagnostic
}

func (c *collector) add(r protocol.Range, severity protocol.DiagnosticSeverity, code string, data any, format string, args ...any) {
	source := Source
	c.diagnostics = append(c.diagnostics, protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  fmt.Sprintf(format, args...),
		Data:     data,
	})
}

func (c *collector) line(l scanner.Line) {
	if l.IsComment() {
		return
	}
	c.nesting(l)
	c.px(l)
	c.colors(l)
	c.variables(l)
}

func (c *collector) nesting(l scanner.Line) {
	trimmed := l.Trimmed()
	if !strings.HasPrefix(trimmed, "&") || !strings.Contains(trimmed, "{") {
		return
	}
	header := l.Header()
	start := l.IndentWidth
	r := helpers.LineRange(l.Index, l.Text, []int{start, start + len(header)})
	suffix := strings.TrimSpace(strings.TrimPrefix(header, "&"))
	if strings.HasPrefix(suffix, selector.ElementSeparator) || strings.HasPrefix(suffix, ":") {
		c.add(r, protocol.DiagnosticSeverityInformation, CodeNesting, nil,
			"%s will be flattened to a top-level selector", header)
		return
	}
	c.add(r, protocol.DiagnosticSeverityWarning, CodeDroppedNesting, nil,
		"unsupported nesting shorthand %s will be dropped with its body", header)
}

func (c *collector) px(l scanner.Line) {
	if !units.HasConvertible(l) {
		return
	}
	for _, loc := range units.PxLocations(l.Text) {
		value := l.Text[loc[0]:loc[1]]
		rem := c.units.ConvertLine(value)
		c.add(helpers.LineRange(l.Index, l.Text, loc), protocol.DiagnosticSeverityInformation, CodePx, rem,
			"%s converts to %s", value, rem)
	}
}

func (c *collector) colors(l scanner.Line) {
	if resolver.IsDeclaration(l.Text) {
		return
	}
	for _, loc := range resolver.HexLiterals(l.Text) {
		hex := l.Text[loc[0]:loc[1]]
		name, ok := c.resolver.Match(hex)
		if !ok {
			continue
		}
		c.add(helpers.LineRange(l.Index, l.Text, loc), protocol.DiagnosticSeverityInformation, CodePaletteColor, name,
			"%s can use palette variable %s", hex, name)
	}
}

func (c *collector) variables(l scanner.Line) {
	if len(c.undefined) == 0 || strings.Contains(l.Text, c.include) {
		return
	}
	for _, loc := range palette.VariablePattern.FindAllStringIndex(l.Text, -1) {
		name := l.Text[loc[0]:loc[1]]
		if !c.undefined.Has(name) {
			continue
		}
		replacement := c.resolver.Replacement(name)
		c.add(helpers.LineRange(l.Index, l.Text, loc), protocol.DiagnosticSeverityWarning, CodeUndefinedVariable, replacement,
			"%s is not defined by the palette or the stylesheet and will be replaced with %s", name, replacement)
	}
}
