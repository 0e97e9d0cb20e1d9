package lifecycle

import (
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/methods/workspace"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the LSP initialized notification: it loads the
// workspace configuration and palette, then diagnoses documents opened so far
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")
	req.Server.SetGLSPContext(req.GLSP)

	if err := req.Server.LoadWorkspaceConfig(); err != nil {
		// keep serving with the defaults
		workspace.LogWarning(req.GLSP, "Failed to load workspace configuration: %v", err)
	}

	if req.Server.UsePullDiagnostics() || req.GLSP == nil {
		return nil
	}
	for _, doc := range req.Server.DocumentManager().Stylesheets() {
		if err := req.Server.PublishDiagnostics(req.GLSP, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}
