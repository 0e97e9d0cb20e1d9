package lifecycle

import (
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/uriutil"
	"bennypowers.dev/flatscss/internal/version"
	codeaction "bennypowers.dev/flatscss/lsp/methods/textDocument/codeAction"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/flatscss/lsp/methods/workspace"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to clients in serverInfo
const ServerName = "flatscss"

// InitializeResult is protocol.InitializeResult with untyped capabilities,
// so LSP 3.17 fields such as diagnosticProvider can be advertised
type InitializeResult struct {
	Capabilities any                                  `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

// Initialize handles the LSP initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	// CustomHandler detects the capability from the raw params before this runs
	supportsPullDiagnostics := false
	if detected := req.Server.ClientDiagnosticCapability(); detected != nil {
		supportsPullDiagnostics = *detected
	}
	req.Server.SetUsePullDiagnostics(supportsPullDiagnostics)
	if supportsPullDiagnostics {
		log.Info("Using pull diagnostics model (LSP 3.17)")
	} else {
		log.Info("Using push diagnostics model")
	}

	if params.RootURI != nil {
		req.Server.SetRootURI(*params.RootURI)
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
	} else if params.RootPath != nil {
		req.Server.SetRootPath(*params.RootPath)
		req.Server.SetRootURI(uriutil.PathToURI(*params.RootPath))
	}
	if root := req.Server.RootPath(); root != "" {
		log.Info("Workspace root: %s", root)
	}

	settings, err := workspace.ParseSettings(params.InitializationOptions)
	if err != nil {
		req.AddWarning(err)
	} else if settings != nil {
		req.Server.SetClientSettings(settings)
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := map[string]any{
		"textDocumentSync": protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
		},
		"documentFormattingProvider": true,
		"codeActionProvider": protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{
				protocol.CodeActionKindQuickFix,
				codeaction.CodeActionKindSourceFixAll,
			},
			ResolveProvider: boolPtr(true),
		},
		"colorProvider": true,
	}
	if supportsPullDiagnostics {
		capabilities["diagnosticProvider"] = diagnostic.DiagnosticOptions{}
	}

	v := version.Get()
	return InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &v,
		},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}
