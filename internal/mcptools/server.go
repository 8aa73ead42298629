// Package mcptools exposes the backend operations as MCP tools so agents can
// transcribe, summarize, and ask questions without the TUI.
package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwulff/vidqa/internal/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Backend is the API surface the tools call.
type Backend interface {
	UploadFile(ctx context.Context, path string) (string, error)
	UploadURL(ctx context.Context, url string) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
	Ask(ctx context.Context, transcript, question string) (string, error)
}

type tools struct {
	backend Backend
	timeout time.Duration
}

// NewServer builds an MCP server with the transcribe_file, transcribe_url,
// summarize, and ask tools registered.
func NewServer(b Backend, version string, timeout time.Duration) *server.MCPServer {
	s := server.NewMCPServer("vidqa", version, server.WithToolCapabilities(false))
	t := &tools{backend: b, timeout: timeout}

	s.AddTool(mcp.NewTool("transcribe_file",
		mcp.WithDescription("Upload a local video or audio file to the backend and return its transcript."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the media file")),
	), t.transcribeFile)

	s.AddTool(mcp.NewTool("transcribe_url",
		mcp.WithDescription("Have the backend fetch a YouTube (or similar) URL and return its transcript."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Video URL")),
	), t.transcribeURL)

	s.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summarize a transcript."),
		mcp.WithString("transcript", mcp.Required(), mcp.Description("Transcript text")),
	), t.summarize)

	s.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Answer a question about a transcript."),
		mcp.WithString("transcript", mcp.Required(), mcp.Description("Transcript text")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Free-text question")),
	), t.ask)

	return s
}

// ServeStdio runs s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (t *tools) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

func (t *tools) transcribeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cancel := t.context(ctx)
	defer cancel()
	return result("transcribe_file", func() (string, error) { return t.backend.UploadFile(ctx, path) })
}

func (t *tools) transcribeURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cancel := t.context(ctx)
	defer cancel()
	return result("transcribe_url", func() (string, error) { return t.backend.UploadURL(ctx, url) })
}

func (t *tools) summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cancel := t.context(ctx)
	defer cancel()
	return result("summarize", func() (string, error) { return t.backend.Summarize(ctx, transcript) })
}

func (t *tools) ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cancel := t.context(ctx)
	defer cancel()
	return result("ask", func() (string, error) { return t.backend.Ask(ctx, transcript, question) })
}

// result runs call and maps its outcome to a tool result. Backend and
// transport failures become tool errors, never protocol errors.
func result(tool string, call func() (string, error)) (*mcp.CallToolResult, error) {
	start := time.Now()
	text, err := call()
	if err != nil {
		slog.Info("tool failed", slog.String("tool", tool), slog.Any("error", err))
		if api.IsTransportError(err) {
			return mcp.NewToolResultError(fmt.Sprintf("backend unavailable: %v", err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	slog.Debug("tool done", slog.String("tool", tool), slog.Duration("elapsed", time.Since(start)))
	return mcp.NewToolResultText(text), nil
}
