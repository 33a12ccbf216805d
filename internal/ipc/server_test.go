package ipc

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-sanitizer/host/internal/errs"
	"github.com/prompt-sanitizer/host/internal/types"
)

type fakeCommands struct {
	mu       sync.Mutex
	requests []types.Request
}

func (f *fakeCommands) Sanitize(req types.Request) (types.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if req.Text == "fail" {
		return types.Response{}, errs.New(errs.KindEngine, "sanitize", "engine failed (exit code 1)")
	}
	return types.Response{
		SanitizedText: "[REDACTED]",
		Stats:         types.Stats{ByCategory: map[string]int{}},
		Version:       "0.1.0",
	}, nil
}

func (f *fakeCommands) ReadFile(path string) (string, error) {
	switch path {
	case "note.txt":
		return "电话 13812345678\n", nil
	case "empty":
		return "", nil
	}
	return "", errs.New(errs.KindIO, "read_file", "failed to read file")
}

func (f *fakeCommands) OpenFileDialog() (string, error) {
	return "", errs.New(errs.KindUnimplemented, "open_file_dialog", "file dialog is not configured")
}

// connect runs a Server on an in-memory transport and returns a client
// session bound to it.
func connect(t *testing.T, cmds Commands) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srvTransport, clientTransport := mcp.NewInMemoryTransports()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewServer(cmds, nil, "test").Run(ctx, srvTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-done
	})
	return session
}

func call(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected *TextContent, got %T", res.Content[0])
	return tc.Text
}

func failureOf(t *testing.T, res *mcp.CallToolResult) Failure {
	t.Helper()
	require.True(t, res.IsError)
	b, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var f Failure
	require.NoError(t, json.Unmarshal(b, &f))
	return f
}

const requestDoc = `{"text":"a@b.cn","mode":"sanitize","strategy":"mask","level":"standard","enabled_categories":[],"allowlist":[],"semantic_mode":"off"}`

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, &fakeCommands{})

	var names []string
	for tool, err := range session.Tools(context.Background(), nil) {
		require.NoError(t, err)
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolSanitize, ToolReadFile, ToolOpenFileDialog}, names)
}

func TestServer_Sanitize(t *testing.T) {
	cmds := &fakeCommands{}
	session := connect(t, cmds)

	res := call(t, session, ToolSanitize, map[string]any{"request": json.RawMessage(requestDoc)})
	require.False(t, res.IsError, text(t, res))

	resp, err := types.UnmarshalResponse([]byte(text(t, res)))
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]", resp.SanitizedText)
	assert.NotNil(t, resp.Findings)

	require.Len(t, cmds.requests, 1)
	assert.Equal(t, "a@b.cn", cmds.requests[0].Text)
	assert.Equal(t, types.StrategyMask, cmds.requests[0].Strategy)
}

func TestServer_ReadFile(t *testing.T) {
	session := connect(t, &fakeCommands{})

	res := call(t, session, ToolReadFile, map[string]any{"path": "note.txt"})
	require.False(t, res.IsError)
	assert.Equal(t, "电话 13812345678\n", text(t, res))

	res = call(t, session, ToolReadFile, map[string]any{"path": "empty"})
	require.False(t, res.IsError)
	assert.Empty(t, text(t, res))
}

func TestServer_FailureKinds(t *testing.T) {
	session := connect(t, &fakeCommands{})

	cases := map[string]struct {
		tool string
		args any
		kind string
		msg  string
	}{
		"dialog": {
			tool: ToolOpenFileDialog,
			kind: string(errs.KindUnimplemented),
		},
		"io": {
			tool: ToolReadFile,
			args: map[string]any{"path": "missing"},
			kind: string(errs.KindIO),
			msg:  "failed to read file",
		},
		"engine": {
			tool: ToolSanitize,
			args: map[string]any{"request": json.RawMessage(`{"text":"fail","mode":"sanitize","strategy":"mask","level":"standard","enabled_categories":[],"allowlist":[],"semantic_mode":"off"}`)},
			kind: string(errs.KindEngine),
			msg:  "exit code 1",
		},
		"incomplete request": {
			tool: ToolSanitize,
			args: map[string]any{"request": map[string]any{"text": "x"}},
			kind: KindInvalidCall,
			msg:  "missing required field",
		},
		"wrong-case request": {
			tool: ToolSanitize,
			args: map[string]any{"request": json.RawMessage(`{"TEXT":"x","mode":"sanitize","strategy":"mask","level":"standard","enabled_categories":[],"allowlist":[],"semantic_mode":"off"}`)},
			kind: KindInvalidCall,
			msg:  `must be spelled "text"`,
		},
		"null request": {
			tool: ToolSanitize,
			args: map[string]any{"request": nil},
			kind: KindInvalidCall,
			msg:  `missing argument "request"`,
		},
		"wrong-case path": {
			tool: ToolReadFile,
			args: map[string]any{"PATH": "note.txt", "path": nil},
			kind: KindInvalidCall,
			msg:  `missing argument "path"`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := call(t, session, tc.tool, tc.args)
			f := failureOf(t, res)
			assert.Equal(t, tc.kind, f.Kind)
			assert.NotEmpty(t, f.Message)
			assert.Contains(t, f.Message, tc.msg)
			assert.Equal(t, f.Message, text(t, res))
		})
	}
}

func TestServer_DialogFailsTheSameEveryTime(t *testing.T) {
	session := connect(t, &fakeCommands{})
	first := failureOf(t, call(t, session, ToolOpenFileDialog, nil))
	for range 3 {
		assert.Equal(t, first, failureOf(t, call(t, session, ToolOpenFileDialog, nil)))
	}
}

func TestServer_UnknownTool(t *testing.T) {
	session := connect(t, &fakeCommands{})
	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "format_disk"})
	assert.Error(t, err)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srvTransport, _ := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewServer(&fakeCommands{}, nil, "test").Run(ctx, srvTransport) }()

	cancel()
	select {
	case <-errc:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
