package types

import (
	"encoding/json"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/documents"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
	"github.com/tliron/glsp"
)

// ServerContext provides all dependencies needed for LSP handlers.
// Handlers depend on this interface rather than on the server, so tests can
// substitute a mock.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration
	GetConfig() config.Config
	// SetClientSettings stores settings sent by the client; they are layered
	// over the workspace configuration file by LoadWorkspaceConfig
	SetClientSettings(settings json.RawMessage)
	LoadWorkspaceConfig() error

	// Normalization
	Palette() palette.Palette
	Pipeline() *pipeline.Pipeline
	// Analyze runs the pipeline over a document, reusing the result cached
	// for the document's current version
	Analyze(doc *documents.Document) (*pipeline.Result, error)

	// LSP context (for publishing diagnostics, etc.)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	// Diagnostics model
	ClientDiagnosticCapability() *bool
	SetClientDiagnosticCapability(hasCapability bool)
	UsePullDiagnostics() bool
	SetUsePullDiagnostics(use bool)
	PublishDiagnostics(context *glsp.Context, uri string) error
}
