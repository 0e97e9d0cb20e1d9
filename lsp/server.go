package lsp

import (
	"errors"
	"sync"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/documents"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
	"bennypowers.dev/flatscss/lsp/methods/lifecycle"
	"bennypowers.dev/flatscss/lsp/methods/textDocument"
	codeaction "bennypowers.dev/flatscss/lsp/methods/textDocument/codeAction"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/diagnostic"
	documentcolor "bennypowers.dev/flatscss/lsp/methods/textDocument/documentColor"
	"bennypowers.dev/flatscss/lsp/methods/textDocument/formatting"
	"bennypowers.dev/flatscss/lsp/methods/workspace"
	"bennypowers.dev/flatscss/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// ErrNoClient is returned when diagnostics are published before the client connected
var ErrNoClient = errors.New("no client context available")

// Server is the flatscss language server. It normalizes open SCSS documents
// with the workspace configuration and reports what normalization changes.
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server

	// configMu protects every field below
	configMu                   sync.RWMutex
	context                    *glsp.Context
	rootURI                    string
	rootPath                   string
	config                     config.Config
	configSource               string
	settings                   []byte
	palette                    palette.Palette
	pipeline                   *pipeline.Pipeline
	clientDiagnosticCapability *bool
	usePullDiagnostics         bool
}

// NewServer creates a server with the default configuration and an empty
// palette; the workspace configuration is loaded once the client is initialized
func NewServer() (*Server, error) {
	pipe, err := pipeline.New(config.Default().PipelineOptions())
	if err != nil {
		return nil, err
	}
	s := &Server{
		documents: documents.NewManager(),
		config:    config.Default(),
		pipeline:  pipe,
	}

	protocolHandler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentFormatting:          method(s, "textDocument/formatting", formatting.Formatting),
		TextDocumentColor:               method(s, "textDocument/documentColor", documentcolor.DocumentColor),
		TextDocumentColorPresentation:   method(s, "textDocument/colorPresentation", documentcolor.ColorPresentation),
		TextDocumentCodeAction:          method(s, "textDocument/codeAction", codeaction.CodeAction),
		CodeActionResolve:               method(s, "codeAction/resolve", codeaction.CodeActionResolve),
	}

	// CustomHandler adds the LSP 3.17 methods glsp's 3.16 handler does not know
	customHandler := &CustomHandler{
		Handler: &protocolHandler,
		server:  s,
	}
	s.glspServer = server.NewServer(customHandler, lifecycle.ServerName, false)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// GLSPContext returns the context of the initialized notification, used to
// notify the client outside of a request
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

// ClientDiagnosticCapability returns whether the client declared pull
// diagnostics support, or nil before initialize
func (s *Server) ClientDiagnosticCapability() *bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.clientDiagnosticCapability
}

// SetClientDiagnosticCapability records the capability CustomHandler detected
func (s *Server) SetClientDiagnosticCapability(hasCapability bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.clientDiagnosticCapability = &hasCapability
}

// UsePullDiagnostics reports whether the client requests diagnostics itself
// (LSP 3.17), in which case nothing is published
func (s *Server) UsePullDiagnostics() bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.usePullDiagnostics
}

// SetUsePullDiagnostics selects the diagnostics model
func (s *Server) SetUsePullDiagnostics(use bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.usePullDiagnostics = use
}

// PublishDiagnostics pushes diagnostics for a document. A nil context falls
// back to the server's; with pull diagnostics it does nothing.
func (s *Server) PublishDiagnostics(context *glsp.Context, uri string) error {
	if context == nil {
		context = s.GLSPContext()
	}
	if context == nil {
		return ErrNoClient
	}
	if s.UsePullDiagnostics() {
		return nil
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	log.Debug("Publishing %d diagnostics for: %s", len(diagnostics), uri)

	if context.Notify != nil {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diagnostics,
		})
	}
	return nil
}
