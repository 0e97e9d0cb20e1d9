package lsp

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/documents"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
)

// GetConfig returns the effective configuration
func (s *Server) GetConfig() config.Config {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// ConfigSource returns the file the configuration was read from, or "" for defaults
func (s *Server) ConfigSource() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.configSource
}

// SetClientSettings stores the client's settings section
func (s *Server) SetClientSettings(settings json.RawMessage) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.settings = append([]byte(nil), settings...)
}

// Palette returns the loaded palette
func (s *Server) Palette() palette.Palette {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.palette
}

// Pipeline returns the pipeline built from the configuration
func (s *Server) Pipeline() *pipeline.Pipeline {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.pipeline
}

// LoadWorkspaceConfig discovers the configuration under the workspace root,
// layers the client settings over it, and loads its palette. On error the
// previous configuration stays in effect.
func (s *Server) LoadWorkspaceConfig() error {
	root := s.RootPath()
	cfg, source := config.Default(), ""
	if root != "" {
		var err error
		if cfg, source, err = config.Discover(root); err != nil {
			return err
		}
	}

	s.configMu.RLock()
	settings := s.settings
	s.configMu.RUnlock()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return fmt.Errorf("%w: invalid client settings: %w", config.ErrConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pal, err := cfg.LoadPalette(root)
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(cfg.PipelineOptions())
	if err != nil {
		return err
	}

	s.configMu.Lock()
	s.config, s.configSource, s.palette, s.pipeline = cfg, source, pal, pipe
	s.configMu.Unlock()

	for _, doc := range s.documents.Stylesheets() {
		doc.ClearResult()
	}
	if source == "" {
		source = "defaults"
	}
	log.Info("Loaded configuration from %s (%d palette entries)", source, len(pal))
	return nil
}

// Analyze runs the pipeline over a document, reusing the result cached for
// the document's current version
func (s *Server) Analyze(doc *documents.Document) (*pipeline.Result, error) {
	if r, ok := doc.Result(); ok {
		return r, nil
	}
	content, version := doc.Snapshot()
	r, err := s.Pipeline().Run(pipeline.Input{
		Stylesheet:     content,
		Palette:        s.Palette(),
		ColorOverrides: s.GetConfig().ColorOverrides,
	})
	if err != nil {
		return nil, err
	}
	doc.SetResult(version, r)
	return r, nil
}
