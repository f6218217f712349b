package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/server/middleware"
	"github.com/folioapp/folio/internal/service"
)

// maxBodySize caps JSON request bodies. Content is text and URLs only.
const maxBodySize = 1 << 20

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
}

// queryString extracts a string query parameter.
func queryString(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// queryBool extracts a boolean query parameter. Returns false if the parameter
// is missing or not "true"/"1".
func queryBool(r *http.Request, key string) bool {
	val := r.URL.Query().Get(key)
	return val == "true" || val == "1"
}

// serviceErrors maps the service sentinels to their status and client
// message.
var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrAdminExists, http.StatusBadRequest, "Admin already exists"},
	{service.ErrAdminNotFound, http.StatusBadRequest, "Admin account not found"},
	{service.ErrNoActiveReset, http.StatusBadRequest, "No active reset request. Please request a new code."},
	{service.ErrInvalidOrExpiredCode, http.StatusBadRequest, "Invalid or expired code"},
	{service.ErrInvalidCodeOrEmail, http.StatusBadRequest, "Invalid code or email"},
}

// writeServiceError translates an error from the service or store layer into
// a response. Anything unrecognised is logged with the request ID and
// reported to the client as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.message)
			return
		}
	}

	logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// writeStoreError handles the store errors of content endpoints. entity names
// the resource in the 404 message, e.g. "Project".
func writeStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, entity string) {
	if errors.Is(err, config.ErrNotFound) {
		writeError(w, http.StatusNotFound, entity+" not found")
		return
	}
	writeServiceError(w, r, logger, err)
}
