// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the essay review pipeline for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/veritext/veritext/internal/pipeline"
)

// Server wraps the MCP server with Veritext tools.
type Server struct {
	mcp *server.MCPServer
	svc *pipeline.Service
}

// New creates a new MCP server with all Veritext tools registered.
func New(svc *pipeline.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Veritext",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("submit_essay",
		mcp.WithDescription("Submit plain-text essay content for review. Returns the created essay."),
		mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner the essay belongs to")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Essay title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Plain-text essay content")),
	), s.submitEssay)

	s.mcp.AddTool(mcp.NewTool("process_essay",
		mcp.WithDescription("Run the review pipeline (grammar check, plagiarism check) on an essay. "+
			"Returns the essay in its final status."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
		mcp.WithString("ignore_list_id", mcp.Description("Optional ignore-word list id applied to the grammar check")),
	), s.processEssay)

	s.mcp.AddTool(mcp.NewTool("get_essay",
		mcp.WithDescription("Read an essay with its original and processed content and status."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
	), s.getEssay)

	s.mcp.AddTool(mcp.NewTool("get_grammar_findings",
		mcp.WithDescription("List an essay's grammar findings with positions, severity, and suggestions."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
	), s.getGrammarFindings)

	s.mcp.AddTool(mcp.NewTool("get_plagiarism_findings",
		mcp.WithDescription("List an essay's plagiarism findings with matched text, source, and score."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
	), s.getPlagiarismFindings)

	s.mcp.AddTool(mcp.NewTool("get_edit_history",
		mcp.WithDescription("Read an essay's append-only edit history, most recent first."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
	), s.getEditHistory)

	s.mcp.AddTool(mcp.NewTool("update_essay_content",
		mcp.WithDescription("Replace an essay's working content. The edit is recorded in the history ledger."),
		mcp.WithString("essay_id", mcp.Required(), mcp.Description("Essay id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
		mcp.WithString("description", mcp.Description("Change description")),
	), s.updateEssayContent)

	s.mcp.AddTool(mcp.NewTool("mark_finding_fixed",
		mcp.WithDescription("Mark a grammar finding as fixed."),
		mcp.WithString("finding_id", mcp.Required(), mcp.Description("Grammar finding id")),
	), s.markFindingFixed)

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

func (s *Server) submitEssay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner, err := req.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	essay, err := s.svc.Upload(ctx, owner, title+".txt", "txt", title, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(essay)
}

func (s *Server) processEssay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ignoreListID := ""
	if v, err := req.RequireString("ignore_list_id"); err == nil {
		ignoreListID = v
	}

	essay, err := s.svc.Process(ctx, essayID, ignoreListID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(essay)
}

func (s *Server) getEssay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	essay, err := s.svc.Get(ctx, essayID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(essay)
}

func (s *Server) getGrammarFindings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	findings, err := s.svc.GetGrammarFindings(ctx, essayID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(findings)
}

func (s *Server) getPlagiarismFindings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	findings, err := s.svc.GetPlagiarismFindings(ctx, essayID, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(findings)
}

func (s *Server) getEditHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.GetHistory(ctx, essayID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) updateEssayContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	essayID, err := req.RequireString("essay_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := "Edited via MCP"
	if v, err := req.RequireString("description"); err == nil {
		description = v
	}

	essay, err := s.svc.UpdateContent(ctx, essayID, content, description, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(essay)
}

func (s *Server) markFindingFixed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	findingID, err := req.RequireString("finding_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.MarkFixed(ctx, findingID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("marked fixed"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
