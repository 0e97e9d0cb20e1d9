package lifecycle

import (
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/types"
)

// Shutdown handles the LSP shutdown request. Open documents are dropped;
// the process exits on the following exit notification.
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	docs := req.Server.DocumentManager()
	for _, doc := range docs.Stylesheets() {
		if err := docs.DidClose(doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}
