package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	session   *Session
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance with one conversation session
func NewMCPServer(app *App, version string, logger *slog.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &MCPServer{
		app:       app,
		session:   NewSession(),
		logger:    logger,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("summarize_youtube_video",
		mcp.WithDescription("Summarize a YouTube video from its captions. The summary starts with a title and is kept for follow-up questions with ask_about_summary. Summarizing another video replaces it."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleSummarize)

	s.mcpServer.AddTool(mcp.NewTool("ask_about_summary",
		mcp.WithDescription("Answer a question using the summary produced by the last summarize_youtube_video call. Fails if no video has been summarized yet."),
		mcp.WithString("question",
			mcp.Description("Question about the summarized video"),
			mcp.Required(),
		),
	), s.handleAsk)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Get the existing YouTube captions of a video as plain text, in the first available accepted language. Fails if no captions are available."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Extract video metadata including title, channel, duration, chapters and caption availability."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleGetMetadata)
}

// handleSummarize implements the summarize_youtube_video tool
func (s *MCPServer) handleSummarize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	url = NormalizeArg(strings.TrimSpace(url))

	s.logger.Info("summarize requested", "url", url)
	summarized, err := s.app.Summarize(ctx, s.session, url)
	if err != nil {
		s.logger.Error("summarize failed", "url", url, "error", err)
		return mcp.NewToolResultErrorFromErr(UserMessage(err), err), nil
	}
	if !summarized {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a YouTube video link, nothing to summarize", url)), nil
	}

	s.logger.Info("summarize completed", "video", s.session.VideoID(), "language", s.session.Language())
	return mcp.NewToolResultText(s.session.Summary()), nil
}

// handleAsk implements the ask_about_summary tool
func (s *MCPServer) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required and must be a string"), nil
	}

	s.logger.Info("question asked", "video", s.session.VideoID())
	answer, err := s.app.Ask(ctx, s.session, question)
	if err != nil {
		s.logger.Error("answer failed", "error", err)
		return mcp.NewToolResultErrorFromErr(UserMessage(err), err), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// handleGetTranscript implements the get_youtube_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	transcript, err := s.app.Transcript(ctx, url)
	if err != nil {
		s.logger.Error("transcript failed", "url", url, "error", err)
		return mcp.NewToolResultErrorFromErr(UserMessage(err), err), nil
	}

	return mcp.NewToolResultText(transcript.Text), nil
}

// handleGetMetadata implements the get_youtube_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	metadata, err := s.app.Metadata(ctx, url)
	if err != nil {
		s.logger.Error("metadata failed", "url", url, "error", err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	return mcp.NewToolResultText(FormatMetadata(metadata)), nil
}

// FormatMetadata renders metadata as labeled text lines
func FormatMetadata(metadata *VideoMetadata) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Title: %s\n", metadata.Title)
	fmt.Fprintf(&buf, "Channel: %s\n", metadata.Channel)
	fmt.Fprintf(&buf, "Duration: %.0f seconds\n", metadata.Duration)
	fmt.Fprintf(&buf, "Description: %s\n", metadata.Description)
	fmt.Fprintf(&buf, "Has Captions: %t\n", metadata.HasCaptions)

	if len(metadata.Tags) > 0 {
		fmt.Fprintf(&buf, "Tags: %s\n", strings.Join(metadata.Tags, ", "))
	}

	if len(metadata.Categories) > 0 {
		fmt.Fprintf(&buf, "Categories: %s\n", strings.Join(metadata.Categories, ", "))
	}

	for _, ch := range metadata.Chapters {
		fmt.Fprintf(&buf, "Chapter (%.0f-%.0f): %s\n", ch.StartTime, ch.EndTime, ch.Title)
	}

	return buf.String()
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	s.logger.Info("starting MCP server", "transport", transport, "port", port)

	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Start(addr) }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return httpServer.Shutdown(context.Background())
		}
	}

	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
