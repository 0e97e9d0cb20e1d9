package workspace

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SettingsKey is the section of client settings that belongs to this server
const SettingsKey = "flatscss"

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification.
// The new settings are layered over the workspace configuration file, the
// palette is reloaded and open documents are diagnosed again.
func DidChangeConfiguration(req *types.RequestContext, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	settings, err := ParseSettings(params.Settings)
	if err != nil {
		// keep the previous settings rather than failing the notification
		req.AddWarning(err)
		return nil
	}
	req.Server.SetClientSettings(settings)

	if err := req.Server.LoadWorkspaceConfig(); err != nil {
		LogWarning(req.GLSP, "Failed to reload configuration: %v", err)
		return nil
	}

	cfg := req.Server.GetConfig()
	log.Debug("New configuration: prefixes=%v rootFontSize=%g palette=%d entries",
		cfg.Prefixes, cfg.RootFontSize, len(req.Server.Palette()))

	glspCtx := req.Server.GLSPContext()
	if glspCtx == nil {
		return nil
	}
	for _, doc := range req.Server.DocumentManager().Stylesheets() {
		if err := req.Server.PublishDiagnostics(glspCtx, doc.URI()); err != nil {
			req.AddWarning(fmt.Errorf("failed to publish diagnostics for %s: %w", doc.URI(), err))
		}
	}
	return nil
}

// ParseSettings extracts this server's section from client settings, which
// arrive as { "flatscss": { ... } }. It returns nil when the section is absent.
// The section is checked by decoding it into a config.Config.
func ParseSettings(settings any) (json.RawMessage, error) {
	if settings == nil {
		return nil, nil
	}
	settingsMap, ok := settings.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: settings is not an object", config.ErrConfig)
	}
	section, ok := settingsMap[SettingsKey]
	if !ok || section == nil {
		return nil, nil
	}

	raw, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal settings: %w", config.ErrConfig, err)
	}
	var probe config.Config
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: invalid %s settings: %w", config.ErrConfig, SettingsKey, err)
	}
	return raw, nil
}
