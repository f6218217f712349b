package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
)

// ContentReader is the read side of the content store used by the tools.
type ContentReader interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
	ListProjects(ctx context.Context, f config.ProjectFilter) ([]model.Project, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListSkills(ctx context.Context, f config.SkillFilter) ([]model.Skill, error)
	ListQualifications(ctx context.Context, publishedOnly bool) ([]model.Qualification, error)
}

// MCPServer exposes the published portfolio to MCP clients. Every tool and
// resource is read-only and sees exactly what the public site shows.
type MCPServer struct {
	store  ContentReader
	logger *slog.Logger
	server *server.MCPServer
}

// NewMCPServer creates an MCPServer with all portfolio tools and resources
// registered. The returned server is ready to serve over stdio or HTTP.
func NewMCPServer(store ContentReader, version string, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		store:  store,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"Folio Portfolio",
		version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio serves MCP over stdin/stdout, for clients that launch the
// server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// ServeHTTP serves MCP in Streamable HTTP mode on addr (e.g. ":3001").
func (s *MCPServer) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.server)
	s.logger.Info("MCP HTTP server starting", "addr", addr)
	return httpServer.Start(addr)
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint:   boolPtr(true),
		IdempotentHint: boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
