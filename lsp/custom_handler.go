package lsp

import (
	"encoding/json"

	"bennypowers.dev/flatscss/lsp/methods/textDocument/diagnostic"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CustomHandler wraps protocol.Handler to support LSP 3.17 methods, which
// glsp v0.2.2 (LSP 3.16) has no handler fields for
type CustomHandler struct {
	*protocol.Handler // Pointer to avoid copying embedded mutex
	server            *Server
}

// Handle implements glsp.Handler
func (h *CustomHandler) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	switch context.Method {
	case protocol.MethodInitialize:
		// the parsed InitializeParams has no 3.17 diagnostic field, so detect it
		// from the raw JSON and let the normal handler continue
		h.server.SetClientDiagnosticCapability(DetectPullDiagnosticsSupport(context.Params))

	case "textDocument/diagnostic":
		var params diagnostic.DocumentDiagnosticParams
		if err := json.Unmarshal(context.Params, &params); err != nil {
			return nil, true, false, err
		}
		result, err := method(h.server, context.Method, diagnostic.DocumentDiagnostic)(context, &params)
		if err != nil {
			return nil, true, true, err
		}
		return result, true, true, nil
	}

	return h.Handler.Handle(context)
}
