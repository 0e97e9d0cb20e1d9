package documents

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"bennypowers.dev/flatscss/internal/pipeline"
)

// StylesheetLanguageID is the only language the server processes
const StylesheetLanguageID = "scss"

// Document is an open stylesheet. It caches the latest pipeline result for
// its current version.
type Document struct {
	mu         sync.RWMutex
	uri        string
	languageID string
	content    string
	version    int

	result        *pipeline.Result
	resultVersion int
}

// NewDocument creates a new document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:           uri,
		languageID:    languageID,
		version:       version,
		content:       content,
		resultVersion: -1,
	}
}

// URI returns the document's URI
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Content returns the document's current content
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// IsStylesheet reports whether the document is an SCSS stylesheet
func (d *Document) IsStylesheet() bool {
	return IsStylesheet(d.uri, d.languageID)
}

// SetContent replaces the content. Updates older than the current version
// are rejected.
func (d *Document) SetContent(content string, version int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	d.result = nil
	return nil
}

// Result returns the cached pipeline result if it belongs to the current version
func (d *Document) Result() (*pipeline.Result, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.result == nil || d.resultVersion != d.version {
		return nil, false
	}
	return d.result, true
}

// SetResult caches a pipeline result computed for version
func (d *Document) SetResult(version int, r *pipeline.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if version != d.version {
		return
	}
	d.result = r
	d.resultVersion = version
}

// Snapshot returns the content together with the version it belongs to
func (d *Document) Snapshot() (string, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content, d.version
}

// ClearResult drops the cached pipeline result, e.g. after the configuration changed
func (d *Document) ClearResult() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = nil
}

// IsStylesheet reports whether a document is SCSS, by language id or,
// when the client sends none, by file extension
func IsStylesheet(uri, languageID string) bool {
	if languageID != "" {
		return languageID == StylesheetLanguageID
	}
	return strings.EqualFold(path.Ext(uri), ".scss")
}
