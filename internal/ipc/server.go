// Package ipc exposes the host commands as MCP tools. An embedding
// application starts the host with the serve command and drives it over
// stdio with any MCP client.
//
// A failed call comes back as a tool result with IsError set. Its text
// content is the error message and its structured content is a Failure
// carrying the error kind.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/errs"
	"github.com/prompt-sanitizer/host/internal/types"
)

// Tool names.
const (
	ToolSanitize       = "sanitize"
	ToolReadFile       = "read_file"
	ToolOpenFileDialog = "open_file_dialog"
)

// KindInvalidCall marks a call whose arguments could not be decoded. Every
// other failure kind comes from errs.
const KindInvalidCall = "invalid_call"

// Commands is the surface a Server exposes.
type Commands interface {
	Sanitize(req types.Request) (types.Response, error)
	ReadFile(path string) (string, error)
	OpenFileDialog() (string, error)
}

// Failure is the structured content of a failed tool call.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Server wraps an MCP server with the host tools registered.
type Server struct {
	srv  *mcp.Server
	cmds Commands
	log  *zap.Logger
}

// NewServer creates a Server reporting version in its MCP implementation
// info. A nil logger discards output.
func NewServer(cmds Commands, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		srv:  mcp.NewServer(&mcp.Implementation{Name: "prompt-sanitizer-host", Version: version}, nil),
		cmds: cmds,
		log:  log.With(zap.String("area", "ipc")),
	}

	s.srv.AddTool(&mcp.Tool{
		Name:        ToolSanitize,
		Description: "Send a request document to the sanitization engine and return its response document.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"request": map[string]any{"type": "object", "description": "engine request document"},
			},
			"required": []string{"request"},
		},
	}, s.sanitize)
	s.srv.AddTool(&mcp.Tool{
		Name:        ToolReadFile,
		Description: "Read a UTF-8 text file and return its contents.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string"},
			},
			"required": []string{"path"},
		},
	}, s.readFile)
	s.srv.AddTool(&mcp.Tool{
		Name:        ToolOpenFileDialog,
		Description: "Ask the user to pick a file. Not available in this host.",
		InputSchema: map[string]any{"type": "object"},
	}, s.openFileDialog)
	return s
}

// Run serves tool calls over t and blocks until the client disconnects or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.log.Info("mcp session starting")
	return s.srv.Run(ctx, t)
}

func (s *Server) sanitize(_ context.Context, call *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.callLog(ToolSanitize)
	args, f := arguments(call)
	if f != nil {
		return s.failed(log, *f), nil
	}
	raw, ok := args["request"]
	if !ok || string(raw) == "null" {
		return s.failed(log, invalid("sanitize: missing argument \"request\"")), nil
	}
	req, err := types.UnmarshalRequest(raw)
	if err != nil {
		return s.failed(log, invalid("sanitize: %v", err)), nil
	}

	resp, err := s.cmds.Sanitize(req)
	if err != nil {
		return s.failed(log, failure(err)), nil
	}
	doc, err := types.MarshalResponse(resp)
	if err != nil {
		return s.failed(log, failure(errs.Wrap(errs.KindEncode, "sanitize", err, "failed to serialize response"))), nil
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(doc)}},
		StructuredContent: json.RawMessage(doc),
	}, nil
}

func (s *Server) readFile(_ context.Context, call *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.callLog(ToolReadFile)
	args, f := arguments(call)
	if f != nil {
		return s.failed(log, *f), nil
	}
	var path *string
	if raw, ok := args["path"]; ok {
		if err := json.Unmarshal(raw, &path); err != nil {
			return s.failed(log, invalid("read_file: argument \"path\" must be a string")), nil
		}
	}
	if path == nil {
		return s.failed(log, invalid("read_file: missing argument \"path\"")), nil
	}

	text, err := s.cmds.ReadFile(*path)
	if err != nil {
		return s.failed(log, failure(err)), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil
}

func (s *Server) openFileDialog(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.callLog(ToolOpenFileDialog)
	path, err := s.cmds.OpenFileDialog()
	if err != nil {
		return s.failed(log, failure(err)), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: path}}}, nil
}

func (s *Server) callLog(tool string) *zap.Logger {
	log := s.log.With(zap.String("call_id", uuid.NewString()), zap.String("tool", tool))
	log.Debug("tool call")
	return log
}

func (s *Server) failed(log *zap.Logger, f Failure) *mcp.CallToolResult {
	log.Info("tool call failed", zap.String("kind", f.Kind))
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: f.Message}},
		StructuredContent: f,
		IsError:           true,
	}
}

// arguments splits the call arguments by exact key name.
func arguments(call *mcp.CallToolRequest) (map[string]json.RawMessage, *Failure) {
	args := map[string]json.RawMessage{}
	raw := call.Params.Arguments
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		f := invalid("malformed arguments: %v", err)
		return nil, &f
	}
	return args, nil
}

func invalid(format string, args ...any) Failure {
	return Failure{Kind: KindInvalidCall, Message: fmt.Sprintf(format, args...)}
}

func failure(err error) Failure {
	kind := string(errs.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	return Failure{Kind: kind, Message: err.Error()}
}
