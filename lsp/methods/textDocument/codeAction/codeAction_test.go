package codeaction_test

import (
	"testing"

	"bennypowers.dev/flatscss/internal/palette"
	codeaction "bennypowers.dev/flatscss/lsp/methods/textDocument/codeAction"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/flatscss/lsp/testutil"
	"bennypowers.dev/flatscss/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const uri = "file:///workspace/card.scss"

const card = ".c-card {\n" +
	"  padding: 16px;\n" +
	"  color: #ff0000;\n" +
	"  background: $missing;\n" +
	"}"

func newRequest(t *testing.T, content string) *types.RequestContext {
	t.Helper()
	ctx := testutil.NewMockServerContext()
	ctx.SetPalette(palette.FromPairs("$primary", "#ff0000"))
	require.NoError(t, ctx.DocumentManager().DidOpen(uri, "scss", 1, content))
	return types.NewRequestContext(ctx, nil)
}

func cursor(line, char uint32) protocol.Range {
	p := protocol.Position{Line: line, Character: char}
	return protocol.Range{Start: p, End: p}
}

func codeActions(t *testing.T, req *types.RequestContext, params *protocol.CodeActionParams) []protocol.CodeAction {
	t.Helper()
	params.TextDocument = protocol.TextDocumentIdentifier{URI: uri}
	result, err := codeaction.CodeAction(req, params)
	require.NoError(t, err)
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok)
	return actions
}

func titles(actions []protocol.CodeAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Title
	}
	return out
}

func TestCodeAction_QuickFixes(t *testing.T) {
	req := newRequest(t, card)

	tests := []struct {
		name    string
		rng     protocol.Range
		title   string
		newText string
	}{
		{"px", cursor(1, 12), "Convert 16px to 1rem", "1rem"},
		{"cursor at start of px", cursor(1, 11), "Convert 16px to 1rem", "1rem"},
		{"palette color", cursor(2, 10), "Replace #ff0000 with palette variable $primary", "$primary"},
		{"undefined variable", cursor(3, 20), "Replace undefined $missing with #808080", "#808080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := codeActions(t, req, &protocol.CodeActionParams{Range: tt.rng})

			require.Equal(t, []string{tt.title, codeaction.NormalizeTitle}, titles(actions))
			fix := actions[0]
			assert.Equal(t, protocol.CodeActionKindQuickFix, *fix.Kind)
			edits := fix.Edit.Changes[uri]
			require.Len(t, edits, 1)
			assert.Equal(t, tt.newText, edits[0].NewText)
		})
	}
}

func TestCodeAction_SelectionCoversSeveralFixes(t *testing.T) {
	req := newRequest(t, card)

	actions := codeActions(t, req, &protocol.CodeActionParams{
		Range: protocol.Range{End: protocol.Position{Line: 4, Character: 1}},
		Context: protocol.CodeActionContext{
			Only: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
		},
	})
	assert.Len(t, actions, 3)
}

func TestCodeAction_AttachesClientDiagnostic(t *testing.T) {
	req := newRequest(t, card)
	diags, err := diagnostic.GetDiagnostics(req.Server, uri)
	require.NoError(t, err)

	actions := codeActions(t, req, &protocol.CodeActionParams{
		Range:   diags[0].Range,
		Context: protocol.CodeActionContext{Diagnostics: diags[:1]},
	})
	require.NotEmpty(t, actions)
	require.Len(t, actions[0].Diagnostics, 1)
	assert.Equal(t, diags[0].Message, actions[0].Diagnostics[0].Message)
	require.NotNil(t, actions[0].IsPreferred)
	assert.True(t, *actions[0].IsPreferred)
}

func TestCodeAction_OnlySourceFixAll(t *testing.T) {
	req := newRequest(t, card)

	actions := codeActions(t, req, &protocol.CodeActionParams{
		Range:   cursor(1, 12),
		Context: protocol.CodeActionContext{Only: []protocol.CodeActionKind{"source"}},
	})
	require.Len(t, actions, 1)
	assert.Equal(t, codeaction.CodeActionKindSourceFixAll, *actions[0].Kind)
	assert.Nil(t, actions[0].Edit, "edit is computed on resolve")
}

func TestCodeAction_NormalizedDocument(t *testing.T) {
	req := newRequest(t, ".c-card {\n  padding: 1rem;\n}")

	actions := codeActions(t, req, &protocol.CodeActionParams{Range: cursor(1, 3)})
	assert.Empty(t, actions)
}

func TestCodeAction_Ignored(t *testing.T) {
	req := newRequest(t, card)
	require.NoError(t, req.Server.DocumentManager().DidOpen("file:///a.css", "css", 1, ".a { margin: 8px; }"))

	for _, u := range []string{"file:///a.css", "file:///missing.scss"} {
		result, err := codeaction.CodeAction(req, &protocol.CodeActionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: u},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	}
}

func TestCodeActionResolve(t *testing.T) {
	req := newRequest(t, card)
	kind := codeaction.CodeActionKindSourceFixAll

	resolved, err := codeaction.CodeActionResolve(req, &protocol.CodeAction{
		Title: codeaction.NormalizeTitle,
		Kind:  &kind,
		Data:  map[string]any{"uri": uri},
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.Edit)
	edits := resolved.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, ".c-card {\n  padding: 1rem;\n  color: $primary;\n  background: #808080;\n}", edits[0].NewText)

	t.Run("other actions are returned unchanged", func(t *testing.T) {
		action := &protocol.CodeAction{Title: "Convert 16px to 1rem"}
		got, err := codeaction.CodeActionResolve(req, action)
		require.NoError(t, err)
		assert.Same(t, action, got)
		assert.Nil(t, got.Edit)
	})

	t.Run("missing data", func(t *testing.T) {
		action := &protocol.CodeAction{Title: codeaction.NormalizeTitle}
		got, err := codeaction.CodeActionResolve(req, action)
		require.NoError(t, err)
		assert.Nil(t, got.Edit)
	})
}
