// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the mood ledger to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/ledger"
)

const moodsURI = "moodlog://moods"

// Server wraps the MCP server with ledger tools.
type Server struct {
	mcp *server.MCPServer
	svc *ledger.Service
}

// New creates a new MCP server with all ledger tools registered.
func New(svc *ledger.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Moodlog",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_moods",
		mcp.WithDescription("List the selectable moods (emoji and label) in display order."),
	), s.listMoods)

	s.mcp.AddTool(mcp.NewTool("record_mood",
		mcp.WithDescription("Record today's mood, replacing any mood already recorded today. "+
			"The emoji SHOULD be one returned by list_moods."),
		mcp.WithString("emoji", mcp.Required(), mcp.Description("Mood emoji, e.g. 😊")),
	), s.recordMood)

	s.mcp.AddTool(mcp.NewTool("get_ledger",
		mcp.WithDescription("Return every recorded mood entry as JSON."),
	), s.getLedger)

	s.mcp.AddTool(mcp.NewTool("calendar_events",
		mcp.WithDescription("Return the all-day calendar events derived from the ledger."),
	), s.calendarEvents)

	s.mcp.AddTool(mcp.NewTool("inspect_entry",
		mcp.WithDescription("Describe the mood recorded on a given day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
	), s.inspectEntry)

	s.mcp.AddTool(mcp.NewTool("get_ledger_contract",
		mcp.WithDescription("Returns the ledger format and recording rules."),
	), s.getLedgerContract)

	// Resource: current mood set.
	s.mcp.AddResource(
		mcp.NewResource(moodsURI, "Mood Set",
			mcp.WithResourceDescription("Selectable moods in display order."),
			mcp.WithMIMEType("application/json"),
		),
		s.readMoodsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Moods())
}

func (s *Server) recordMood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emoji, err := req.RequireString("emoji")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, _, err := s.svc.RecordEntry(ctx, emoji)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mood was not saved: %v", err)), nil
	}
	return jsonResult(e)
}

func (s *Server) getLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Load(ctx))
}

func (s *Server) calendarEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(ledger.ToCalendarEvents(s.svc.Load(ctx)))
}

func (s *Server) inspectEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := s.svc.Inspect(ctx, date)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultText(fmt.Sprintf("no mood recorded on %s", date)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(in.Message), nil
}

func (s *Server) getLedgerContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LedgerFormatContract), nil
}

func (s *Server) readMoodsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.Marshal(s.svc.Moods())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      moodsURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
