package lifecycle

import (
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SetTrace handles the $/setTrace notification. "verbose" turns on debug
// logging; "off" and "messages" return to info.
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	log.Info("Trace level set to: %s", params.Value)
	if params.Value == protocol.TraceValueVerbose {
		log.SetLevel(log.LevelDebug)
	} else if log.GetLevel() == log.LevelDebug {
		log.SetLevel(log.LevelInfo)
	}
	return nil
}
