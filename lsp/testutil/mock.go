package testutil

import (
	"encoding/json"
	"sync"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/documents"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
	"bennypowers.dev/flatscss/lsp/types"
	"github.com/tliron/glsp"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext implements types.ServerContext for testing. It runs the
// real pipeline over its documents; workspace loading and publishing are
// replaceable through the callback fields.
type MockServerContext struct {
	mu          sync.Mutex
	docs        *documents.Manager
	rootURI     string
	rootPath    string
	config      config.Config
	settings    json.RawMessage
	palette     palette.Palette
	pipeline    *pipeline.Pipeline
	glspContext *glsp.Context
	capability  *bool
	usePull     bool

	// Optional callbacks for custom behavior in tests
	LoadWorkspaceConfigFunc func() error
	PublishDiagnosticsFunc  func(*glsp.Context, string) error

	// Published records the URIs passed to PublishDiagnostics, in call order
	Published []string
	// LoadCalls counts LoadWorkspaceConfig calls
	LoadCalls int
}

// NewMockServerContext creates a mock with the default configuration and an empty palette
func NewMockServerContext() *MockServerContext {
	m := &MockServerContext{docs: documents.NewManager()}
	if err := m.ApplyConfig(config.Default()); err != nil {
		panic(err)
	}
	return m
}

// ApplyConfig validates cfg and builds the palette and pipeline from it.
// Palette files resolve against the mock's root path.
func (m *MockServerContext) ApplyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	pal, err := cfg.LoadPalette(m.RootPath())
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(cfg.PipelineOptions())
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.config, m.palette, m.pipeline = cfg, pal, pipe
	m.mu.Unlock()
	for _, doc := range m.docs.Stylesheets() {
		doc.ClearResult()
	}
	return nil
}

// SetPalette replaces the palette without touching the rest of the configuration
func (m *MockServerContext) SetPalette(p palette.Palette) {
	cfg := m.GetConfig()
	cfg.Palette = p
	cfg.PaletteFiles = nil
	if err := m.ApplyConfig(cfg); err != nil {
		panic(err)
	}
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rootPath = path
}

// GetConfig returns the current configuration
func (m *MockServerContext) GetConfig() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetClientSettings stores client settings
func (m *MockServerContext) SetClientSettings(settings json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
}

// ClientSettings returns the stored client settings
func (m *MockServerContext) ClientSettings() json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// LoadWorkspaceConfig applies the client settings over the default configuration,
// unless LoadWorkspaceConfigFunc replaces it
func (m *MockServerContext) LoadWorkspaceConfig() error {
	m.mu.Lock()
	m.LoadCalls++
	fn, settings := m.LoadWorkspaceConfigFunc, m.settings
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	cfg := config.Default()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return err
		}
	}
	return m.ApplyConfig(cfg)
}

// Palette returns the loaded palette
func (m *MockServerContext) Palette() palette.Palette {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.palette
}

// Pipeline returns the configured pipeline
func (m *MockServerContext) Pipeline() *pipeline.Pipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipeline
}

// Analyze runs the pipeline over a document, caching by version
func (m *MockServerContext) Analyze(doc *documents.Document) (*pipeline.Result, error) {
	if r, ok := doc.Result(); ok {
		return r, nil
	}
	content, version := doc.Snapshot()
	r, err := m.Pipeline().Run(pipeline.Input{
		Stylesheet:     content,
		Palette:        m.Palette(),
		ColorOverrides: m.GetConfig().ColorOverrides,
	})
	if err != nil {
		return nil, err
	}
	doc.SetResult(version, r)
	return r, nil
}

// GLSPContext returns the stored GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.glspContext
}

// SetGLSPContext stores the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.glspContext = ctx
}

// ClientDiagnosticCapability returns the detected capability, nil before detection
func (m *MockServerContext) ClientDiagnosticCapability() *bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capability
}

// SetClientDiagnosticCapability records the detected capability
func (m *MockServerContext) SetClientDiagnosticCapability(hasCapability bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capability = &hasCapability
}

// UsePullDiagnostics reports whether pull diagnostics were selected
func (m *MockServerContext) UsePullDiagnostics() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usePull
}

// SetUsePullDiagnostics selects the diagnostics model
func (m *MockServerContext) SetUsePullDiagnostics(use bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usePull = use
}

// PublishDiagnostics records the call, then defers to PublishDiagnosticsFunc if set
func (m *MockServerContext) PublishDiagnostics(context *glsp.Context, uri string) error {
	m.mu.Lock()
	m.Published = append(m.Published, uri)
	fn := m.PublishDiagnosticsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(context, uri)
	}
	return nil
}
