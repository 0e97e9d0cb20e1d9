package diagnostic

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Pull diagnostics types from LSP 3.17, which glsp v0.2.2 does not define.
// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification/#textDocument_diagnostic

// DocumentDiagnosticParams are the parameters of textDocument/diagnostic
type DocumentDiagnosticParams struct {
	TextDocument     protocol.TextDocumentIdentifier `json:"textDocument"`
	Identifier       string                          `json:"identifier,omitempty"`
	PreviousResultID string                          `json:"previousResultId,omitempty"`
}

// DocumentDiagnosticReportKind is the kind of a diagnostic report
type DocumentDiagnosticReportKind string

const (
	// DiagnosticFull is a report carrying every diagnostic of the document
	DiagnosticFull DocumentDiagnosticReportKind = "full"
	// DiagnosticUnchanged tells the client its previous report still holds
	DiagnosticUnchanged DocumentDiagnosticReportKind = "unchanged"
)

// RelatedFullDocumentDiagnosticReport is a full diagnostic report
type RelatedFullDocumentDiagnosticReport struct {
	Kind             string                `json:"kind"`
	ResultID         string                `json:"resultId,omitempty"`
	Items            []protocol.Diagnostic `json:"items"`
	RelatedDocuments map[string]any        `json:"relatedDocuments,omitempty"`
}

// DiagnosticOptions advertises pull diagnostics in the server capabilities
type DiagnosticOptions struct {
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}
