package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/folioapp/folio/internal/openapi"
)

// OpenAPIHandler serves the API description. The route table is static, so
// the document is rendered once on first request.
type OpenAPIHandler struct {
	version string

	once sync.Once
	body []byte
	err  error
}

// NewOpenAPIHandler creates a new OpenAPIHandler.
func NewOpenAPIHandler(version string) *OpenAPIHandler {
	return &OpenAPIHandler{version: version}
}

// ServeSpec returns the OpenAPI 3.1 document.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.body, h.err = json.Marshal(openapi.Generate("", h.version))
	})
	if h.err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render API description")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(h.body)
}
