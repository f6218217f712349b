package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/folioapp/folio/internal/config"
)

// PublicHandler serves the read-only site API. Unpublished projects and
// qualifications are never returned from here.
type PublicHandler struct {
	store  *config.Store
	logger *slog.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(store *config.Store, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{store: store, logger: logger}
}

// ListProjects returns published projects, optionally for one category.
// GET /api/projects?category=<id>
func (h *PublicHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context(), config.ProjectFilter{
		Category:      queryString(r, "category"),
		PublishedOnly: true,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// ListCategories returns all categories.
// GET /api/categories
func (h *PublicHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// ListSkills returns skills, only featured ones with ?featured=true.
// GET /api/skills
func (h *PublicHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.store.ListSkills(r.Context(), config.SkillFilter{FeaturedOnly: queryBool(r, "featured")})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skills": skills})
}

// GetProfile returns the owner profile or null.
// GET /api/profile
func (h *PublicHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeProfile(w, r, h.store, h.logger)
}

// ListQualifications returns published qualifications.
// GET /api/qualifications
func (h *PublicHandler) ListQualifications(w http.ResponseWriter, r *http.Request) {
	quals, err := h.store.ListQualifications(r.Context(), true)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qualifications": quals})
}

// GetQualification returns one published qualification. Unpublished ones
// are reported as missing.
// GET /api/qualifications/{id}
func (h *PublicHandler) GetQualification(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.GetQualification(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !q.IsPublished {
		err = config.ErrNotFound
	}
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Qualification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qualification": q})
}
