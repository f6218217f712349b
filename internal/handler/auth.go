package handler

import (
	"log/slog"
	"net/http"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/server/middleware"
	"github.com/folioapp/folio/internal/service"
)

// Client-facing messages of the auth flows.
const (
	msgAdminCreated  = "Admin created successfully"
	msgResetSent     = "If this email is registered, a reset code has been sent."
	msgPasswordReset = "Password has been reset. You can now log in with your new password."
)

// AuthHandler serves the /api/auth endpoints: first-run setup, login and
// logout, the session probe and the emailed-code password reset.
type AuthHandler struct {
	auth          *service.AuthService
	setup         *service.SetupService
	reset         *service.ResetService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. secureCookies sets the Secure
// attribute on the session cookie and should be true in production.
func NewAuthHandler(auth *service.AuthService, setup *service.SetupService, reset *service.ResetService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		setup:         setup,
		reset:         reset,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// Setup creates the admin account.
// POST /api/auth/setup
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	// An unreadable body is treated as empty credentials so that once setup
	// has run every caller gets "Admin already exists".
	var req credentialsRequest
	_ = readJSON(w, r, &req)

	admin, err := h.setup.CreateInitialAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("admin account created", "admin", admin.Username, "request_id", middleware.GetRequestID(r.Context()))
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: msgAdminCreated})
}

// Login verifies credentials, sets the session cookie and returns the token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	middleware.SetSessionCookie(w, res.Token, h.secureCookies)
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success: true,
		Admin:   res.Admin,
		Token:   res.Token,
	})
}

// Me returns the admin identified by the session. It must be mounted behind
// middleware.Authenticate.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, model.MeResponse{Admin: p.Summary()})
}

// Logout clears the session cookie. Issued tokens stay valid until they
// expire.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true})
}

// RequestReset emails a reset code when the address matches the configured
// reset target. The response is the same whether or not it matched.
// POST /api/auth/request-reset
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.reset.RequestReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: msgResetSent})
}

// ResetPassword redeems a reset code and sets a new password.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.reset.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("admin password reset", "request_id", middleware.GetRequestID(r.Context()))
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: msgPasswordReset})
}
