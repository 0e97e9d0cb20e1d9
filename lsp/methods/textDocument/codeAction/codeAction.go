package codeaction

import (
	"fmt"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/helpers"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/formatting"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NormalizeTitle is the title of the source.fixAll action that rewrites the whole document
const NormalizeTitle = "Normalize stylesheet"

// CodeActionKindSourceFixAll is not defined by glsp's 3.16 protocol package
const CodeActionKindSourceFixAll protocol.CodeActionKind = "source.fixAll"

// titles for quick fixes, keyed by diagnostic code; each takes the
// original text and its replacement
var titles = map[string]string{
	diagnostic.CodePx:                "Convert %s to %s",
	diagnostic.CodePaletteColor:      "Replace %s with palette variable %s",
	diagnostic.CodeUndefinedVariable: "Replace undefined %s with %s",
}

// CodeAction handles the textDocument/codeAction request. It offers a quick
// fix for every fixable diagnostic in the requested range and, when the
// document is not normalized yet, a source.fixAll action that normalizes it.
func CodeAction(req *types.RequestContext, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debug("CodeAction requested: %s", uri)

	doc := req.Server.Document(uri)
	if doc == nil || !doc.IsStylesheet() {
		return nil, nil
	}

	diags, err := diagnostic.GetDiagnostics(req.Server, uri)
	if err != nil {
		return nil, err
	}

	actions := []protocol.CodeAction{}
	lines := strings.Split(doc.Content(), "\n")
	for _, d := range diags {
		if !touches(params.Range, d.Range) {
			continue
		}
		if action := quickFix(uri, lines, d, params.Context.Diagnostics); action != nil {
			actions = append(actions, *action)
		}
	}

	result, err := req.Server.Analyze(doc)
	if err != nil {
		req.AddWarning(err)
	} else if result.NormalizedStylesheet != strings.ReplaceAll(doc.Content(), "\r\n", "\n") {
		actions = append(actions, normalizeAction(uri))
	}

	return filterKinds(actions, params.Context.Only), nil
}

// CodeActionResolve handles the codeAction/resolve request. Only the
// normalize action is resolved lazily; other actions carry their edit.
func CodeActionResolve(req *types.RequestContext, action *protocol.CodeAction) (*protocol.CodeAction, error) {
	log.Debug("CodeActionResolve requested: %s", action.Title)
	if action.Title != NormalizeTitle || action.Edit != nil {
		return action, nil
	}

	data, ok := action.Data.(map[string]any)
	if !ok {
		return action, nil
	}
	uri, ok := data["uri"].(string)
	if !ok {
		return action, nil
	}

	edits, err := formatting.Edits(req.Server, uri)
	if err != nil {
		return nil, err
	}
	if edits == nil {
		return action, nil
	}
	action.Edit = &protocol.WorkspaceEdit{
		Changes: map[string][]protocol.TextEdit{uri: edits},
	}
	return action, nil
}

// quickFix turns a diagnostic carrying a replacement into a single-edit action.
// The client's copy of the diagnostic is attached when it sent one.
func quickFix(uri string, lines []string, d protocol.Diagnostic, sent []protocol.Diagnostic) *protocol.CodeAction {
	code, _ := d.Code.Value.(string)
	title, ok := titles[code]
	replacement, isText := d.Data.(string)
	if !ok || !isText || int(d.Range.Start.Line) >= len(lines) {
		return nil
	}

	kind := protocol.CodeActionKindQuickFix
	action := protocol.CodeAction{
		Title: fmt.Sprintf(title, original(lines[d.Range.Start.Line], d.Range), replacement),
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {{Range: d.Range, NewText: replacement}},
			},
		},
	}
	for i := range sent {
		sentCode, _ := sent[i].Code.Value.(string)
		if sent[i].Range == d.Range && sentCode == code {
			action.Diagnostics = []protocol.Diagnostic{sent[i]}
			preferred := true
			action.IsPreferred = &preferred
			break
		}
	}
	return &action
}

// normalizeAction creates the source.fixAll action; its edit is computed on resolve
func normalizeAction(uri string) protocol.CodeAction {
	kind := CodeActionKindSourceFixAll
	return protocol.CodeAction{
		Title: NormalizeTitle,
		Kind:  &kind,
		Data:  map[string]any{"uri": uri},
	}
}

// touches reports whether a requested range overlaps a diagnostic; a
// collapsed range (a cursor) touches a diagnostic at either of its ends
func touches(requested, r protocol.Range) bool {
	if requested.Start != requested.End {
		return helpers.RangesIntersect(requested, r)
	}
	p := requested.Start
	return !before(p, r.Start) && !before(r.End, p)
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// original returns the text a single-line range covers
func original(line string, r protocol.Range) string {
	line = strings.TrimSuffix(line, "\r")
	start := helpers.ByteOffset(line, r.Start.Character)
	end := helpers.ByteOffset(line, r.End.Character)
	return line[start:end]
}

// filterKinds keeps actions whose kind equals or falls under one of only.
// An empty only keeps everything.
func filterKinds(actions []protocol.CodeAction, only []protocol.CodeActionKind) []protocol.CodeAction {
	if len(only) == 0 {
		return actions
	}
	kept := actions[:0]
	for _, a := range actions {
		for _, k := range only {
			if *a.Kind == k || strings.HasPrefix(string(*a.Kind), string(k)+".") {
				kept = append(kept, a)
				break
			}
		}
	}
	return kept
}
