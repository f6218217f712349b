package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
)

func newTestServer(t *testing.T) (*MCPServer, *config.Store) {
	t.Helper()
	store, err := config.NewStore("")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewMCPServer(store, "test", slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("got %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		min      int
		max      int
		expected int
	}{
		{"value in range", 5, 1, 10, 5},
		{"value below min", -3, 1, 10, 1},
		{"value above max", 15, 1, 10, 10},
		{"value equals min", 1, 1, 10, 1},
		{"value equals max", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.val, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestReadOnlyAnnotation(t *testing.T) {
	ann := readOnlyAnnotation()
	if ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
		t.Errorf("ReadOnlyHint = %v, want true", ann.ReadOnlyHint)
	}
}

func TestListProjectsHidesDrafts(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	for _, p := range []*model.Project{
		{Title: "Live", Description: "d", Category: "c1", IsPublished: true},
		{Title: "Draft", Description: "d", Category: "c1"},
		{Title: "Other", Description: "d", Category: "c2", IsPublished: true},
	} {
		if err := store.CreateProject(ctx, p); err != nil {
			t.Fatalf("create project: %v", err)
		}
	}

	res, err := s.handleListProjects(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("handleListProjects: %v", err)
	}
	var out struct {
		Projects []model.Project `json:"projects"`
		Count    int             `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("got %d projects, want 2", out.Count)
	}
	for _, p := range out.Projects {
		if p.Title == "Draft" {
			t.Error("unpublished project returned")
		}
	}

	res, _ = s.handleListProjects(ctx, callRequest(map[string]interface{}{"category": "c2"}))
	if text := resultText(t, res); !strings.Contains(text, "Other") || strings.Contains(text, "Live") {
		t.Errorf("category filter not applied: %s", text)
	}
}

func TestGetProfile(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetProfile(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetProfile: %v", err)
	}
	if got := resultText(t, res); got != "null" {
		t.Errorf("got %s, want null before the profile exists", got)
	}

	if err := store.SaveProfile(ctx, &model.Profile{ContactEmail: "me@example.com"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	res, _ = s.handleGetProfile(ctx, callRequest(nil))
	if !strings.Contains(resultText(t, res), "me@example.com") {
		t.Errorf("profile missing contact email: %s", resultText(t, res))
	}

	contents, err := s.handleProfileResource(ctx, mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleProfileResource: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents)
	if text.URI != profileURI || !strings.Contains(text.Text, "me@example.com") {
		t.Errorf("got %+v, want profile resource", text)
	}
}

func TestListQualificationsByType(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	for _, q := range []*model.Qualification{
		{Title: "BSc", Issuer: "Uni", IssueDate: "2020-06-01", Type: model.QualificationEducation, IsPublished: true},
		{Title: "CKA", Issuer: "CNCF", IssueDate: "2023-01-01", Type: model.QualificationCertification, IsPublished: true},
		{Title: "Hidden", Issuer: "X", IssueDate: "2024-01-01", Type: model.QualificationAward},
	} {
		if err := store.CreateQualification(ctx, q); err != nil {
			t.Fatalf("create qualification: %v", err)
		}
	}

	res, _ := s.handleListQualifications(ctx, callRequest(map[string]interface{}{"type": "certification"}))
	text := resultText(t, res)
	if !strings.Contains(text, "CKA") || strings.Contains(text, "BSc") || strings.Contains(text, "Hidden") {
		t.Errorf("got %s, want only CKA", text)
	}

	res, _ = s.handleListQualifications(ctx, callRequest(map[string]interface{}{"type": "hobby"}))
	if !res.IsError {
		t.Error("expected a tool error for an unknown type")
	}
}

func TestListSkillsFeatured(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	for _, sk := range []*model.Skill{
		{Name: "Go", Category: model.SkillBackend, Level: model.LevelExpert, IsFeatured: true},
		{Name: "COBOL", Category: model.SkillOther, Level: model.LevelBeginner},
	} {
		if err := store.CreateSkill(ctx, sk); err != nil {
			t.Fatalf("create skill: %v", err)
		}
	}

	res, _ := s.handleListSkills(ctx, callRequest(map[string]interface{}{"featured": true}))
	if text := resultText(t, res); !strings.Contains(text, "Go") || strings.Contains(text, "COBOL") {
		t.Errorf("got %s, want only featured skills", text)
	}
	res, _ = s.handleListSkills(ctx, callRequest(nil))
	if !strings.Contains(resultText(t, res), "COBOL") {
		t.Error("unfiltered list should include every skill")
	}
}
