package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folioapp/folio/internal/config"
)

const (
	defaultProjectLimit = 25
	maxProjectLimit     = 100
)

// registerTools registers the portfolio tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {
	srv.AddTool(
		mcp.NewTool("portfolio_get_profile",
			mcp.WithDescription(
				"Get the portfolio owner's profile: name, bio, contact email and "+
					"links to GitHub, LinkedIn, Twitter and a resume. Returns null "+
					"when no profile has been written yet.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleGetProfile,
	)

	srv.AddTool(
		mcp.NewTool("portfolio_list_projects",
			mcp.WithDescription(
				"List published portfolio projects, newest first. Each project has a "+
					"title, description, tech stack, category ID, demo and source links "+
					"and image URLs. Use portfolio_list_categories to resolve category IDs.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("category",
				mcp.Description("Only return projects filed under this category ID"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of projects to return (default 25, max 100)"),
			),
		),
		s.handleListProjects,
	)

	srv.AddTool(
		mcp.NewTool("portfolio_list_categories",
			mcp.WithDescription("List project categories with their IDs, names and slugs."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListCategories,
	)

	srv.AddTool(
		mcp.NewTool("portfolio_list_skills",
			mcp.WithDescription(
				"List the owner's skills in display order, with category "+
					"(frontend, backend, data-science, devops, mobile, ui-ux, other) and "+
					"level (beginner, intermediate, advanced, expert).",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithBoolean("featured",
				mcp.Description("Only return featured skills"),
			),
		),
		s.handleListSkills,
	)

	srv.AddTool(
		mcp.NewTool("portfolio_list_qualifications",
			mcp.WithDescription(
				"List published education entries, certifications and awards, most "+
					"recently issued first.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("type",
				mcp.Description("Only return one type: education, certification or award"),
				mcp.Enum("education", "certification", "award"),
			),
		),
		s.handleListQualifications,
	)
}

// --------------------------------------------------------------------------
// Tool handlers
// --------------------------------------------------------------------------

func (s *MCPServer) handleGetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.store.GetProfile(ctx)
	if errors.Is(err, config.ErrNotFound) {
		return successJSON(nil)
	}
	if err != nil {
		s.logger.Error("mcp get profile", "error", err)
		return toolError("failed to load profile: %v", err)
	}
	return successJSON(p)
}

func (s *MCPServer) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clamp(optionalInt(request, "limit", defaultProjectLimit), 1, maxProjectLimit)
	projects, err := s.store.ListProjects(ctx, config.ProjectFilter{
		Category:      optionalString(request, "category"),
		PublishedOnly: true,
		Limit:         limit,
	})
	if err != nil {
		s.logger.Error("mcp list projects", "error", err)
		return toolError("failed to list projects: %v", err)
	}
	return successJSON(map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

func (s *MCPServer) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.logger.Error("mcp list categories", "error", err)
		return toolError("failed to list categories: %v", err)
	}
	return successJSON(map[string]interface{}{"categories": categories})
}

func (s *MCPServer) handleListSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills, err := s.store.ListSkills(ctx, config.SkillFilter{FeaturedOnly: request.GetBool("featured", false)})
	if err != nil {
		s.logger.Error("mcp list skills", "error", err)
		return toolError("failed to list skills: %v", err)
	}
	return successJSON(map[string]interface{}{"skills": skills})
}

func (s *MCPServer) handleListQualifications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := optionalString(request, "type")
	if typ != "" && typ != "education" && typ != "certification" && typ != "award" {
		return toolError("invalid type %q: must be education, certification or award", typ)
	}

	quals, err := s.store.ListQualifications(ctx, true)
	if err != nil {
		s.logger.Error("mcp list qualifications", "error", err)
		return toolError("failed to list qualifications: %v", err)
	}
	if typ != "" {
		filtered := quals[:0]
		for _, q := range quals {
			if q.Type == typ {
				filtered = append(filtered, q)
			}
		}
		quals = filtered
	}
	return successJSON(map[string]interface{}{"qualifications": quals})
}
