package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folioapp/folio/internal/config"
)

const profileURI = "portfolio://profile"

// registerResources adds the read-only resources LLM clients can load into
// their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			profileURI,
			"Portfolio Owner Profile",
			mcp.WithResourceDescription("Name, bio, contact email and social links of the portfolio owner."),
			mcp.WithMIMEType("application/json"),
		),
		s.handleProfileResource,
	)
}

func (s *MCPServer) handleProfileResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var body interface{}
	p, err := s.store.GetProfile(ctx)
	switch {
	case errors.Is(err, config.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	default:
		body = p
	}

	b, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      profileURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
