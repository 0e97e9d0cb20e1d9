package formatting

import (
	"fmt"
	"strings"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/position"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Formatting handles the textDocument/formatting request by replacing the
// whole document with its normalized form. Formatting options are ignored;
// the normalized layout is fixed.
func Formatting(req *types.RequestContext, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	log.Debug("Formatting requested: %s", params.TextDocument.URI)
	return Edits(req.Server, params.TextDocument.URI)
}

// Edits returns the edit that normalizes a document: nil for documents that
// are not open stylesheets, an empty list for documents already normalized.
// CRLF documents keep their line endings.
func Edits(ctx types.ServerContext, uri string) ([]protocol.TextEdit, error) {
	doc := ctx.Document(uri)
	if doc == nil || !doc.IsStylesheet() {
		return nil, nil
	}

	content := doc.Content()
	result, err := ctx.Analyze(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", uri, err)
	}

	normalized := result.NormalizedStylesheet
	if strings.Contains(content, "\r\n") {
		normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	}
	if normalized == content {
		return []protocol.TextEdit{}, nil
	}

	line, col := position.End(content)
	return []protocol.TextEdit{{
		Range: protocol.Range{
			End: protocol.Position{Line: line, Character: col},
		},
		NewText: normalized,
	}}, nil
}
