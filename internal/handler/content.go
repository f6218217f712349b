package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
)

const recentProjectsLimit = 5

// ContentHandler serves the admin content API under /api/admin. Every route
// sits behind the auth gate.
type ContentHandler struct {
	store  *config.Store
	logger *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(store *config.Store, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{store: store, logger: logger}
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

type projectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TechStack    []string `json:"techStack"`
	Category     string   `json:"category"`
	LiveDemoLink string   `json:"liveDemoLink"`
	GithubLink   string   `json:"githubLink"`
	Images       []string `json:"images"`
	IsPublished  bool     `json:"isPublished"`
}

// ListProjects returns every project, published or not.
// GET /api/admin/projects?category=<id>
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context(), config.ProjectFilter{Category: queryString(r, "category")})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// GetProject returns a single project.
// GET /api/admin/projects/{id}
func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"project": p})
}

// CreateProject adds a project. Title, description and category are required.
// POST /api/admin/projects
func (h *ContentHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Description == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "Title, description, and category are required")
		return
	}

	p := &model.Project{
		Title:        req.Title,
		Description:  req.Description,
		TechStack:    req.TechStack,
		Category:     req.Category,
		LiveDemoLink: req.LiveDemoLink,
		GithubLink:   req.GithubLink,
		Images:       req.Images,
		IsPublished:  req.IsPublished,
	}
	if err := h.store.CreateProject(r.Context(), p); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"project": p})
}

// UpdateProject applies a partial update.
// PUT /api/admin/projects/{id}
func (h *ContentHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var upd model.ProjectUpdate
	if err := readJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"project": p})
}

// DeleteProject removes a project.
// DELETE /api/admin/projects/{id}
func (h *ContentHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Project")
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true})
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories returns all categories.
// GET /api/admin/categories
func (h *ContentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory adds a category. Two names that slugify alike conflict.
// POST /api/admin/categories
func (h *ContentHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	c := &model.Category{Name: req.Name, Description: req.Description}
	if err := h.store.CreateCategory(r.Context(), c); err != nil {
		h.writeCategoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": c})
}

// UpdateCategory renames or redescribes a category.
// PUT /api/admin/categories/{id}
func (h *ContentHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var upd model.CategoryUpdate
	if err := readJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.Name != nil && *upd.Name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	c, err := h.store.UpdateCategory(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": c})
}

// DeleteCategory removes a category.
// DELETE /api/admin/categories/{id}
func (h *ContentHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true})
}

func (h *ContentHandler) writeCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, config.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "Category with this name already exists")
		return
	}
	writeStoreError(w, r, h.logger, err, "Category")
}

// ---------------------------------------------------------------------------
// Skills
// ---------------------------------------------------------------------------

type skillRequest struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Level           string   `json:"level"`
	YearsExperience *float64 `json:"yearsExperience"`
	Description     *string  `json:"description"`
	Icon            *string  `json:"icon"`
	IsFeatured      *bool    `json:"isFeatured"`
	Order           int      `json:"order"`
}

// ListSkills returns every skill.
// GET /api/admin/skills
func (h *ContentHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.store.ListSkills(r.Context(), config.SkillFilter{})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skills": skills})
}

// GetSkill returns a single skill.
// GET /api/admin/skills/{id}
func (h *ContentHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	sk, err := h.store.GetSkill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Skill")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skill": sk})
}

// CreateSkill adds a skill. New skills are featured unless the request says
// otherwise.
// POST /api/admin/skills
func (h *ContentHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Category == "" || req.Level == "" {
		writeError(w, http.StatusBadRequest, "Name, category, and level are required")
		return
	}
	if msg := skillFieldError(&req.Category, &req.Level); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sk := &model.Skill{
		Name:            req.Name,
		Category:        req.Category,
		Level:           req.Level,
		YearsExperience: req.YearsExperience,
		Description:     req.Description,
		Icon:            req.Icon,
		IsFeatured:      req.IsFeatured == nil || *req.IsFeatured,
		Order:           req.Order,
	}
	if err := h.store.CreateSkill(r.Context(), sk); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"skill": sk})
}

// UpdateSkill applies a partial update.
// PUT /api/admin/skills/{id}
func (h *ContentHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	var upd model.SkillUpdate
	if err := readJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := skillFieldError(upd.Category, upd.Level); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sk, err := h.store.UpdateSkill(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Skill")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skill": sk})
}

// DeleteSkill removes a skill.
// DELETE /api/admin/skills/{id}
func (h *ContentHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSkill(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Skill")
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true})
}

// skillFieldError checks the enumerated skill fields that are present.
func skillFieldError(category, level *string) string {
	if category != nil && !model.ValidSkillCategory(*category) {
		return "Invalid category"
	}
	if level != nil && !model.ValidSkillLevel(*level) {
		return "Invalid level"
	}
	return ""
}

// ---------------------------------------------------------------------------
// Qualifications
// ---------------------------------------------------------------------------

type qualificationRequest struct {
	Title            string  `json:"title"`
	Issuer           string  `json:"issuer"`
	IssueDate        string  `json:"issueDate"`
	ExpiryDate       *string `json:"expiryDate"`
	CredentialID     *string `json:"credentialId"`
	CredentialURL    *string `json:"credentialUrl"`
	CertificateImage *string `json:"certificateImage"`
	Description      *string `json:"description"`
	Type             string  `json:"type"`
	IsPublished      bool    `json:"isPublished"`
}

// ListQualifications returns every qualification.
// GET /api/admin/qualifications
func (h *ContentHandler) ListQualifications(w http.ResponseWriter, r *http.Request) {
	quals, err := h.store.ListQualifications(r.Context(), false)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qualifications": quals})
}

// GetQualification returns a single qualification.
// GET /api/admin/qualifications/{id}
func (h *ContentHandler) GetQualification(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.GetQualification(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Qualification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qualification": q})
}

// CreateQualification adds a qualification.
// POST /api/admin/qualifications
func (h *ContentHandler) CreateQualification(w http.ResponseWriter, r *http.Request) {
	var req qualificationRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Issuer == "" || req.IssueDate == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "Title, issuer, issue date, and type are required")
		return
	}
	if msg := qualificationFieldError(&req.Type, &req.IssueDate, req.ExpiryDate); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	q := &model.Qualification{
		Title:            req.Title,
		Issuer:           req.Issuer,
		IssueDate:        req.IssueDate,
		ExpiryDate:       req.ExpiryDate,
		CredentialID:     req.CredentialID,
		CredentialURL:    req.CredentialURL,
		CertificateImage: req.CertificateImage,
		Description:      req.Description,
		Type:             req.Type,
		IsPublished:      req.IsPublished,
	}
	if err := h.store.CreateQualification(r.Context(), q); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"qualification": q})
}

// UpdateQualification applies a partial update.
// PUT /api/admin/qualifications/{id}
func (h *ContentHandler) UpdateQualification(w http.ResponseWriter, r *http.Request) {
	var upd model.QualificationUpdate
	if err := readJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := qualificationFieldError(upd.Type, upd.IssueDate, upd.ExpiryDate); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	q, err := h.store.UpdateQualification(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Qualification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qualification": q})
}

// DeleteQualification removes a qualification.
// DELETE /api/admin/qualifications/{id}
func (h *ContentHandler) DeleteQualification(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteQualification(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Qualification")
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true})
}

// qualificationFieldError checks the type and date fields that are present.
// Dates are calendar days in YYYY-MM-DD form; an empty expiry date is allowed
// and means the qualification does not expire.
func qualificationFieldError(typ, issueDate, expiryDate *string) string {
	if typ != nil && !model.ValidQualificationType(*typ) {
		return "Type must be education, certification, or award"
	}
	if issueDate != nil && !validDate(*issueDate) {
		return "Issue date must be in YYYY-MM-DD format"
	}
	if expiryDate != nil && *expiryDate != "" && !validDate(*expiryDate) {
		return "Expiry date must be in YYYY-MM-DD format"
	}
	return ""
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

type profileRequest struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	GithubLink   *string `json:"githubLink"`
	LinkedinLink *string `json:"linkedinLink"`
	TwitterLink  *string `json:"twitterLink"`
	ResumeLink   *string `json:"resumeLink"`
	ContactEmail string  `json:"contactEmail"`
}

// GetProfile returns the owner profile, or null before it is first saved.
// GET /api/admin/profile
func (h *ContentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeProfile(w, r, h.store, h.logger)
}

// SaveProfile replaces the owner profile.
// PUT /api/admin/profile
func (h *ContentHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ContactEmail == "" {
		writeError(w, http.StatusBadRequest, "Contact email is required")
		return
	}

	p := &model.Profile{
		Name:         req.Name,
		Bio:          req.Bio,
		GithubLink:   req.GithubLink,
		LinkedinLink: req.LinkedinLink,
		TwitterLink:  req.TwitterLink,
		ResumeLink:   req.ResumeLink,
		ContactEmail: req.ContactEmail,
	}
	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": p})
}

// writeProfile answers {"profile": <profile or null>}.
func writeProfile(w http.ResponseWriter, r *http.Request, store *config.Store, logger *slog.Logger) {
	p, err := store.GetProfile(r.Context())
	if errors.Is(err, config.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"profile": nil})
		return
	}
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": p})
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

// Stats summarizes the portfolio for the admin dashboard.
// GET /api/admin/stats
func (h *ContentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := h.store.ProjectStats(ctx)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	recent, err := h.store.ListProjects(ctx, config.ProjectFilter{Limit: recentProjectsLimit})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.StatsResponse{
		Projects:       *projects,
		Categories:     model.CategoriesStats{Total: len(categories), List: categories},
		RecentProjects: recent,
	})
}
