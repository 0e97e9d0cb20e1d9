package workspace_test

import (
	"bytes"
	"testing"
	"time"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/lsp/methods/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type notification struct {
	method string
	params any
}

func recordingContext() (*glsp.Context, chan notification) {
	ch := make(chan notification, 4)
	return &glsp.Context{Notify: func(method string, params any) {
		ch <- notification{method, params}
	}}, ch
}

func receive(t *testing.T, ch chan notification) notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		require.FailNow(t, "no notification sent")
		return notification{}
	}
}

func TestLogWithoutClient(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(nil)

	assert.NotPanics(t, func() {
		workspace.LogError(nil, "palette %s failed", "colors.scss")
		workspace.LogWarning(&glsp.Context{}, "unknown breakpoint %q", "huge")
		workspace.ShowMessage(nil, protocol.MessageTypeInfo, "hello")
	})
	assert.Contains(t, buf.String(), "ERROR: palette colors.scss failed")
	assert.Contains(t, buf.String(), `WARN: unknown breakpoint "huge"`)
}

func TestLogError_NotifiesClient(t *testing.T) {
	log.SetOutput(nil)
	ctx, ch := recordingContext()

	workspace.LogError(ctx, "formatting: %s", "boom")

	n := receive(t, ch)
	assert.Equal(t, protocol.ServerWindowLogMessage, n.method)
	params, ok := n.params.(*protocol.LogMessageParams)
	require.True(t, ok)
	assert.Equal(t, protocol.MessageTypeError, params.Type)
	assert.Equal(t, "formatting: boom", params.Message)
}

func TestLogWarning_NotifiesClient(t *testing.T) {
	log.SetOutput(nil)
	ctx, ch := recordingContext()

	workspace.LogWarning(ctx, "careful")

	params, ok := receive(t, ch).params.(*protocol.LogMessageParams)
	require.True(t, ok)
	assert.Equal(t, protocol.MessageTypeWarning, params.Type)
}

func TestShowMessage_NotifiesClient(t *testing.T) {
	ctx, ch := recordingContext()

	workspace.ShowMessage(ctx, protocol.MessageTypeInfo, "configuration reloaded")

	n := receive(t, ch)
	assert.Equal(t, protocol.ServerWindowShowMessage, n.method)
	params, ok := n.params.(*protocol.ShowMessageParams)
	require.True(t, ok)
	assert.Equal(t, "configuration reloaded", params.Message)
}
