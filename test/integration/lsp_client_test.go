package integration_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// diagnostic is the wire form of a diagnostic with a string code
type diagnostic struct {
	Range    protocol.Range `json:"range"`
	Severity int            `json:"severity"`
	Code     string         `json:"code"`
	Source   string         `json:"source"`
	Message  string         `json:"message"`
	Data     any            `json:"data"`
}

type publishedDiagnostics struct {
	URI         string       `json:"uri"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

// LSPClient is a test client that communicates with an LSP server via stdio
type LSPClient struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	reader    *bufio.Reader
	msgID     int
	responses map[int]chan json.RawMessage
	published chan publishedDiagnostics
	mu        sync.Mutex
	writeMu   sync.Mutex
	t         *testing.T
}

// NewLSPClient builds the server binary and starts it in LSP mode
func NewLSPClient(t *testing.T) *LSPClient {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	projectRoot := filepath.Join(cwd, "..", "..")

	// Build with -cover flag to enable coverage for integration tests (Go 1.20+)
	binary := filepath.Join(t.TempDir(), "flatscss")
	cmd := exec.Command("go", "build", "-cover", "-o", binary, "./cmd/flatscss")
	cmd.Dir = projectRoot
	output, buildErr := cmd.CombinedOutput()
	require.NoError(t, buildErr, "Failed to build server: %s", string(output))

	coverDir := filepath.Join(projectRoot, "coverage", "integration")
	require.NoError(t, os.MkdirAll(coverDir, 0o755))

	serverCmd := exec.Command(binary, "--log-level", "debug", "lsp")
	serverCmd.Env = append(os.Environ(), fmt.Sprintf("GOCOVERDIR=%s", coverDir))
	stdin, err := serverCmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := serverCmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := serverCmd.StderrPipe()
	require.NoError(t, err)
	require.NoError(t, serverCmd.Start())

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			t.Logf("[SERVER] %s", scanner.Text())
		}
	}()

	client := &LSPClient{
		cmd:       serverCmd,
		stdin:     stdin,
		stdout:    stdout,
		reader:    bufio.NewReader(stdout),
		responses: make(map[int]chan json.RawMessage),
		published: make(chan publishedDiagnostics, 16),
		t:         t,
	}
	go client.readResponses()
	t.Cleanup(client.Close)

	return client
}

// Close shuts down the server
func (c *LSPClient) Close() {
	c.Shutdown()
	_ = c.stdin.Close()
	_ = c.cmd.Wait()
}

func (c *LSPClient) sendRequest(method string, params any) int {
	c.mu.Lock()
	c.msgID++
	id := c.msgID
	c.responses[id] = make(chan json.RawMessage, 1)
	c.mu.Unlock()

	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	return id
}

func (c *LSPClient) sendNotification(method string, params any) {
	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (c *LSPClient) sendMessage(msg any) {
	data, err := json.Marshal(msg)
	require.NoError(c.t, err)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = fmt.Fprintf(c.stdin, "Content-Length: %d\r\n\r\n%s", len(data), data)
	require.NoError(c.t, err)
}

func (c *LSPClient) waitForResponse(id int, timeout time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	ch, ok := c.responses[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no response channel for message ID %d", id)
	}

	select {
	case response := <-ch:
		return response, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for response to message %d", id)
	}
}

// request sends a request and decodes its result into out
func (c *LSPClient) request(method string, params any, out any) error {
	id := c.sendRequest(method, params)
	response, err := c.waitForResponse(id, 5*time.Second)
	if err != nil {
		return err
	}
	if out == nil || string(response) == "null" {
		return nil
	}
	return json.Unmarshal(response, out)
}

// readResponses routes responses to their requests and collects
// published diagnostics
func (c *LSPClient) readResponses() {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return
		}
		var contentLength int
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err != nil {
			continue
		}
		if _, err := c.reader.ReadString('\n'); err != nil {
			return
		}
		content := make([]byte, contentLength)
		if _, err := io.ReadFull(c.reader, content); err != nil {
			return
		}

		var message struct {
			ID     *int            `json:"id"`
			Method *string         `json:"method"`
			Params json.RawMessage `json:"params"`
			Result json.RawMessage `json:"result"`
			Error  json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(content, &message); err != nil {
			continue
		}

		if message.Method != nil {
			if *message.Method == protocol.ServerTextDocumentPublishDiagnostics {
				var params publishedDiagnostics
				if err := json.Unmarshal(message.Params, &params); err == nil {
					c.published <- params
				}
			}
			if message.ID != nil {
				msgID := *message.ID
				go c.sendMessage(map[string]any{"jsonrpc": "2.0", "id": msgID, "result": nil})
			}
			continue
		}

		if message.ID != nil {
			c.mu.Lock()
			if ch, ok := c.responses[*message.ID]; ok {
				if message.Error != nil {
					ch <- message.Error
				} else {
					ch <- message.Result
				}
			}
			c.mu.Unlock()
		}
	}
}

// Initialize sends initialize and initialized. With pull set the client
// declares LSP 3.17 pull diagnostics support.
func (c *LSPClient) Initialize(rootURI string, pull bool) map[string]any {
	textDocument := map[string]any{}
	if pull {
		textDocument["diagnostic"] = map[string]any{"dynamicRegistration": false}
	}
	var result map[string]any
	require.NoError(c.t, c.request("initialize", map[string]any{
		"rootUri":      rootURI,
		"capabilities": map[string]any{"textDocument": textDocument},
	}, &result))

	c.sendNotification("initialized", map[string]any{})
	return result
}

// Shutdown sends the shutdown request and the exit notification
func (c *LSPClient) Shutdown() {
	id := c.sendRequest("shutdown", nil)
	_, _ = c.waitForResponse(id, 2*time.Second)
	c.sendNotification("exit", nil)
}

// DidOpen sends a didOpen notification
func (c *LSPClient) DidOpen(uri, text string) {
	c.sendNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "scss",
			"version":    1,
			"text":       text,
		},
	})
}

// DidChange replaces the whole document
func (c *LSPClient) DidChange(uri, text string, version int) {
	c.sendNotification("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": version},
		"contentChanges": []map[string]any{{"text": text}},
	})
}

// DidChangeConfiguration sends client settings
func (c *LSPClient) DidChangeConfiguration(settings map[string]any) {
	c.sendNotification("workspace/didChangeConfiguration", map[string]any{"settings": settings})
}

// WaitForDiagnostics returns the next diagnostics published for uri
func (c *LSPClient) WaitForDiagnostics(uri string) []diagnostic {
	c.t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-c.published:
			if p.URI == uri {
				return p.Diagnostics
			}
		case <-deadline:
			c.t.Fatalf("timeout waiting for diagnostics for %s", uri)
			return nil
		}
	}
}

// Diagnostic sends a textDocument/diagnostic request
func (c *LSPClient) Diagnostic(uri string) []diagnostic {
	c.t.Helper()
	var report struct {
		Kind  string       `json:"kind"`
		Items []diagnostic `json:"items"`
	}
	require.NoError(c.t, c.request("textDocument/diagnostic", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	}, &report))
	require.Equal(c.t, "full", report.Kind)
	return report.Items
}

// Formatting sends a textDocument/formatting request
func (c *LSPClient) Formatting(uri string) []protocol.TextEdit {
	c.t.Helper()
	var edits []protocol.TextEdit
	require.NoError(c.t, c.request("textDocument/formatting", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"options":      map[string]any{"tabSize": 2, "insertSpaces": true},
	}, &edits))
	return edits
}

// DocumentColor sends a textDocument/documentColor request
func (c *LSPClient) DocumentColor(uri string) []protocol.ColorInformation {
	c.t.Helper()
	var colors []protocol.ColorInformation
	require.NoError(c.t, c.request("textDocument/documentColor", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	}, &colors))
	return colors
}
