package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestNewServer(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)

	assert.NotNil(t, s.DocumentManager())
	assert.NotNil(t, s.Pipeline())
	assert.Empty(t, s.Palette())
	assert.Equal(t, config.Default(), s.GetConfig())
	assert.Empty(t, s.ConfigSource())
	assert.Nil(t, s.ClientDiagnosticCapability())
	assert.False(t, s.UsePullDiagnostics())

	s.SetRootURI("file:///workspace")
	s.SetRootPath("/workspace")
	assert.Equal(t, "file:///workspace", s.RootURI())
	assert.Equal(t, "/workspace", s.RootPath())
}

func TestLoadWorkspaceConfig(t *testing.T) {
	captureLog(t, log.LevelInfo)

	root := writeWorkspace(t, map[string]string{
		".config/flatscss.yaml": "rootFontSize: 10\npalette:\n  primary: \"#ff6b35\"\npaletteFiles:\n  - colors.scss\n",
		"colors.scss":           "$text: #333333;\n",
	})

	s, err := NewServer()
	require.NoError(t, err)
	s.SetRootPath(root)

	t.Run("discovers the workspace file", func(t *testing.T) {
		require.NoError(t, s.LoadWorkspaceConfig())
		assert.Equal(t, filepath.Join(root, ".config/flatscss.yaml"), s.ConfigSource())
		assert.Equal(t, 10.0, s.GetConfig().RootFontSize)
		assert.Equal(t, []string{"$primary", "$text"}, s.Palette().Variables())
	})

	t.Run("client settings override the file", func(t *testing.T) {
		s.SetClientSettings([]byte(`{"rootFontSize": 20}`))
		require.NoError(t, s.LoadWorkspaceConfig())
		assert.Equal(t, 20.0, s.GetConfig().RootFontSize)
		assert.Len(t, s.Palette(), 2)
	})

	t.Run("invalid settings keep the previous configuration", func(t *testing.T) {
		s.SetClientSettings([]byte(`{"rootFontSize": -1}`))
		err := s.LoadWorkspaceConfig()
		require.ErrorIs(t, err, config.ErrConfig)
		assert.Equal(t, 20.0, s.GetConfig().RootFontSize)
	})

	t.Run("malformed settings", func(t *testing.T) {
		s.SetClientSettings([]byte(`{"rootFontSize": "big"}`))
		require.ErrorIs(t, s.LoadWorkspaceConfig(), config.ErrConfig)
	})
}

func TestLoadWorkspaceConfig_NoRoot(t *testing.T) {
	captureLog(t, log.LevelInfo)
	s, err := NewServer()
	require.NoError(t, err)

	s.SetClientSettings([]byte(`{"palette": {"brand": "#0055ff"}}`))
	require.NoError(t, s.LoadWorkspaceConfig())
	assert.Empty(t, s.ConfigSource())
	assert.Equal(t, []string{"$brand"}, s.Palette().Variables())
}

func TestAnalyze(t *testing.T) {
	captureLog(t, log.LevelInfo)
	s, err := NewServer()
	require.NoError(t, err)

	dm := s.DocumentManager()
	require.NoError(t, dm.DidOpen("file:///a.scss", "scss", 1, ".c-card {\n  padding: 16px;\n}"))
	doc := s.Document("file:///a.scss")

	first, err := s.Analyze(doc)
	require.NoError(t, err)
	assert.Contains(t, first.NormalizedStylesheet, "padding: 1rem;")

	second, err := s.Analyze(doc)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged documents reuse the cached result")

	require.NoError(t, dm.DidChange("file:///a.scss", 2, []protocol.TextDocumentContentChangeEvent{
		{Text: ".c-card {\n  margin: 8px;\n}"},
	}))
	third, err := s.Analyze(doc)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Contains(t, third.NormalizedStylesheet, "margin: 0.5rem;")

	require.NoError(t, s.LoadWorkspaceConfig())
	fourth, err := s.Analyze(doc)
	require.NoError(t, err)
	assert.NotSame(t, third, fourth, "reloading the configuration drops cached results")
}

func TestPublishDiagnostics(t *testing.T) {
	captureLog(t, log.LevelInfo)
	s, err := NewServer()
	require.NoError(t, err)
	require.NoError(t, s.DocumentManager().DidOpen("file:///a.scss", "scss", 1, ".c-card {\n  padding: 16px;\n}"))

	t.Run("no client", func(t *testing.T) {
		assert.ErrorIs(t, s.PublishDiagnostics(nil, "file:///a.scss"), ErrNoClient)
	})

	var published []protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{Notify: func(method string, params any) {
		if method == protocol.ServerTextDocumentPublishDiagnostics {
			published = append(published, params.(protocol.PublishDiagnosticsParams))
		}
	}}

	t.Run("push", func(t *testing.T) {
		require.NoError(t, s.PublishDiagnostics(ctx, "file:///a.scss"))
		require.Len(t, published, 1)
		assert.Equal(t, "file:///a.scss", published[0].URI)
		assert.Len(t, published[0].Diagnostics, 1)
	})

	t.Run("falls back to the stored context", func(t *testing.T) {
		s.SetGLSPContext(ctx)
		require.NoError(t, s.PublishDiagnostics(nil, "file:///a.scss"))
		assert.Len(t, published, 2)
	})

	t.Run("unknown documents publish an empty list", func(t *testing.T) {
		require.NoError(t, s.PublishDiagnostics(ctx, "file:///missing.scss"))
		require.Len(t, published, 3)
		assert.NotNil(t, published[2].Diagnostics)
		assert.Empty(t, published[2].Diagnostics)
	})

	t.Run("pull diagnostics publish nothing", func(t *testing.T) {
		s.SetUsePullDiagnostics(true)
		require.NoError(t, s.PublishDiagnostics(ctx, "file:///a.scss"))
		assert.Len(t, published, 3)
	})
}
