package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/service"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testJWTSecret  = "test-secret-for-jwt-integration-tests"
	testUsername   = "owner"
	testPassword   = "supersecretpassword"
	testResetEmail = "owner@example.com"
)

// captureSender records reset codes instead of mailing them.
type captureSender struct {
	mu   sync.Mutex
	sent []sentCode
	fail error
}

type sentCode struct {
	to   string
	code string
}

func (c *captureSender) SendResetCode(ctx context.Context, to, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.sent = append(c.sent, sentCode{to: to, code: code})
	return nil
}

func (c *captureSender) last(t *testing.T) sentCode {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatal("no reset code was sent")
	}
	return c.sent[len(c.sent)-1]
}

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server *Server
	store  *config.Store
	sender *captureSender
}

// newTestEnv creates a fresh environment with an in-memory store and a fully
// wired Server. No admin exists yet.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, DefaultConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	store, err := config.NewStore("") // in-memory SQLite
	if err != nil {
		t.Fatalf("config.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	sender := &captureSender{}
	svc := Services{
		Auth:  service.NewAuthService(store, hasher, testJWTSecret),
		Setup: service.NewSetupService(store, hasher),
		Reset: service.NewResetService(store, hasher, sender, testResetEmail),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		server: New(cfg, store, svc, logger),
		store:  store,
		sender: sender,
	}
}

// do executes an HTTP request against the test server and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// doAuth executes a request carrying the session token as a bearer header.
func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

// setup creates the admin account through the API.
func (e *testEnv) setup(t *testing.T) {
	t.Helper()
	rr := e.do(t, "POST", "/api/auth/setup", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)
}

// login returns the session token for the given credentials.
func (e *testEnv) login(t *testing.T, password string) string {
	t.Helper()
	rr := e.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": password,
	}), nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("login: got empty token")
	}
	return resp.Token
}

// adminToken sets up the admin and logs in.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	e.setup(t)
	return e.login(t, testPassword)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeJSON: %v (body: %s)", err, rr.Body.String())
	}
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("got status %d, want %d (body: %s)", rr.Code, want, rr.Body.String())
	}
}

// assertError checks the status and the message of an error envelope.
func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assertStatus(t, rr, status)
	var resp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Error.Code != status || resp.Error.Message != message {
		t.Fatalf("got error %d %q, want %d %q", resp.Error.Code, resp.Error.Message, status, message)
	}
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "admin_token" {
			return c
		}
	}
	t.Fatal("response did not set admin_token")
	return nil
}

// createResource posts body and returns the decoded "_id" of the created item
// found under key.
func (e *testEnv) createResource(t *testing.T, token, path, key string, body interface{}) string {
	t.Helper()
	rr := e.doAuth(t, "POST", path, jsonBody(t, body), token)
	assertStatus(t, rr, http.StatusCreated)
	var resp map[string]struct {
		ID string `json:"_id"`
	}
	decodeJSON(t, rr, &resp)
	if resp[key].ID == "" {
		t.Fatalf("create %s: missing _id in %s", path, rr.Body.String())
	}
	return resp[key].ID
}

// ---------------------------------------------------------------------------
// Health checks
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("got body %s", rr.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Status != "ok" || resp.Checks["store"] != "ok" || resp.Checks["setup"] != "pending" {
		t.Errorf("got %+v, want ok store and pending setup", resp)
	}

	env.setup(t)
	rr = env.do(t, "GET", "/readyz", nil, nil)
	decodeJSON(t, rr, &resp)
	if resp.Checks["setup"] != "complete" {
		t.Errorf("got setup %q, want complete", resp.Checks["setup"])
	}
}

func TestReadyzStoreDown(t *testing.T) {
	env := newTestEnv(t)
	env.store.Close()

	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusServiceUnavailable)
}

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

func TestSetupOnlyOnce(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/auth/setup", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeJSON(t, rr, &resp)
	if !resp.Success || resp.Message != "Admin created successfully" {
		t.Errorf("got %+v, want success message", resp)
	}

	// Whatever the second caller sends, the answer is the same.
	for _, body := range []string{
		`{"username":"intruder","password":"anotherpassword"}`,
		`{"username":"owner","password":"supersecretpassword"}`,
		`{}`,
		`not json`,
	} {
		rr := env.do(t, "POST", "/api/auth/setup", strings.NewReader(body), nil)
		assertError(t, rr, http.StatusBadRequest, "Admin already exists")
	}

	// The original credentials still work; the intruder's do not.
	env.login(t, testPassword)
	rr = env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": "intruder",
		"password": "anotherpassword",
	}), nil)
	assertError(t, rr, http.StatusUnauthorized, "Invalid credentials")
}

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing password", `{"username":"owner"}`, "Username and password are required"},
		{"missing username", `{"password":"secret123"}`, "Username and password are required"},
		{"empty body", `{}`, "Username and password are required"},
		{"short password", `{"username":"owner","password":"12345"}`, "Password must be at least 6 characters"},
		{"short multibyte password", `{"username":"owner","password":"ééé"}`, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(t, "POST", "/api/auth/setup", strings.NewReader(tt.body), nil)
			assertError(t, rr, http.StatusBadRequest, tt.message)
		})
	}
}

// ---------------------------------------------------------------------------
// Login and session
// ---------------------------------------------------------------------------

func TestLoginSessionFlow(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	rr := env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)

	var login struct {
		Success bool `json:"success"`
		Admin   struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"admin"`
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &login)
	if !login.Success || login.Admin.Username != testUsername || login.Admin.ID == "" {
		t.Fatalf("got %+v, want success for %s", login, testUsername)
	}

	cookie := sessionCookie(t, rr)
	if cookie.Value != login.Token {
		t.Error("cookie and body carry different tokens")
	}
	if !cookie.HttpOnly || cookie.MaxAge != 604800 || cookie.Path != "/" {
		t.Errorf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.Secure {
		t.Error("Secure cookie outside production")
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Errorf("login response leaks password data: %s", rr.Body.String())
	}

	// /me with the cookie.
	rr = env.do(t, "GET", "/api/auth/me", nil, nil, &http.Cookie{Name: "admin_token", Value: cookie.Value})
	assertStatus(t, rr, http.StatusOK)
	var me struct {
		Admin struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"admin"`
	}
	decodeJSON(t, rr, &me)
	if me.Admin.ID != login.Admin.ID || me.Admin.Username != testUsername {
		t.Errorf("got %+v, want %+v", me.Admin, login.Admin)
	}

	// /me with the bearer header.
	rr = env.doAuth(t, "GET", "/api/auth/me", nil, login.Token)
	assertStatus(t, rr, http.StatusOK)

	// /me without credentials.
	rr = env.do(t, "GET", "/api/auth/me", nil, nil)
	assertError(t, rr, http.StatusUnauthorized, "Unauthorized")

	// /me with garbage.
	rr = env.doAuth(t, "GET", "/api/auth/me", nil, "not-a-jwt")
	assertError(t, rr, http.StatusUnauthorized, "Unauthorized")
}

func TestLoginProductionCookieIsSecure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Production = true
	env := newTestEnvWithConfig(t, cfg)
	env.setup(t)

	rr := env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)
	if !sessionCookie(t, rr).Secure {
		t.Error("production cookie should be Secure")
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"wrong password", `{"username":"owner","password":"wrongpassword"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", `{"username":"nobody","password":"supersecretpassword"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", `{"username":"owner"}`, http.StatusBadRequest, "Username and password are required"},
		{"malformed body", `{"username":`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/auth/login", strings.NewReader(tt.body), nil)
			assertError(t, rr, tt.status, tt.message)
			for _, c := range rr.Result().Cookies() {
				if c.Name == "admin_token" {
					t.Error("failed login set a session cookie")
				}
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	// Logout works without a session.
	rr := env.do(t, "POST", "/api/auth/logout", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	c := sessionCookie(t, rr)
	if c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("got %+v, want an expired empty cookie", c)
	}
}

func TestAuthRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthRateLimit = 2
	env := newTestEnvWithConfig(t, cfg)

	body := `{"username":"owner","password":"wrongpassword"}`
	for i := 0; i < 2; i++ {
		rr := env.do(t, "POST", "/api/auth/login", strings.NewReader(body), nil)
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited too early", i+1)
		}
	}
	rr := env.do(t, "POST", "/api/auth/login", strings.NewReader(body), nil)
	assertError(t, rr, http.StatusTooManyRequests, "Too many requests")
}

// ---------------------------------------------------------------------------
// Password reset
// ---------------------------------------------------------------------------

func TestRequestResetResponsesIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	match := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": testResetEmail}), nil)
	other := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": "stranger@example.com"}), nil)

	assertStatus(t, match, http.StatusOK)
	assertStatus(t, other, http.StatusOK)
	if match.Body.String() != other.Body.String() {
		t.Errorf("bodies differ:\n  match: %s\n  other: %s", match.Body.String(), other.Body.String())
	}
	if !strings.Contains(match.Body.String(), "If this email is registered, a reset code has been sent.") {
		t.Errorf("unexpected body %s", match.Body.String())
	}

	if n := len(env.sender.sent); n != 1 {
		t.Fatalf("got %d codes sent, want 1", n)
	}
	if got := env.sender.last(t).to; got != testResetEmail {
		t.Errorf("code sent to %q, want %q", got, testResetEmail)
	}
}

func TestRequestResetErrors(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t)
		rr := env.do(t, "POST", "/api/auth/request-reset", strings.NewReader(`{}`), nil)
		assertError(t, rr, http.StatusBadRequest, "Email is required")
	})

	t.Run("no admin", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": testResetEmail}), nil)
		assertError(t, rr, http.StatusBadRequest, "Admin account not found")
	})

	t.Run("mail failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t)
		env.sender.fail = errors.New("smtp: connection refused")
		rr := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": testResetEmail}), nil)
		assertError(t, rr, http.StatusInternalServerError, "Internal server error")
		if strings.Contains(rr.Body.String(), "smtp") {
			t.Errorf("internal error leaked to client: %s", rr.Body.String())
		}
	})
}

func TestResetPasswordEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	rr := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": testResetEmail}), nil)
	assertStatus(t, rr, http.StatusOK)
	code := env.sender.last(t).code

	const newPassword = "brandnewpassword"
	rr = env.do(t, "POST", "/api/auth/reset-password", jsonBody(t, map[string]string{
		"email":       testResetEmail,
		"otp":         code,
		"newPassword": newPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "Password has been reset. You can now log in with your new password.") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}

	// Old password no longer works; the new one does.
	rr = env.do(t, "POST", "/api/auth/login", jsonBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}), nil)
	assertError(t, rr, http.StatusUnauthorized, "Invalid credentials")
	env.login(t, newPassword)

	// The code is single use.
	rr = env.do(t, "POST", "/api/auth/reset-password", jsonBody(t, map[string]string{
		"email":       testResetEmail,
		"otp":         code,
		"newPassword": "yetanotherpassword",
	}), nil)
	assertError(t, rr, http.StatusBadRequest, "No active reset request. Please request a new code.")
}

func TestResetPasswordWrongCode(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	rr := env.do(t, "POST", "/api/auth/request-reset", jsonBody(t, map[string]string{"email": testResetEmail}), nil)
	assertStatus(t, rr, http.StatusOK)
	code := env.sender.last(t).code

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rr = env.do(t, "POST", "/api/auth/reset-password", jsonBody(t, map[string]string{
		"email":       testResetEmail,
		"otp":         wrong,
		"newPassword": "brandnewpassword",
	}), nil)
	assertError(t, rr, http.StatusBadRequest, "Invalid or expired code")

	// The password is unchanged.
	env.login(t, testPassword)
}

func TestResetPasswordValidation(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing fields", map[string]string{"email": testResetEmail}, "Email, code, and new password are required"},
		{"other email", map[string]string{"email": "x@example.com", "otp": "123456", "newPassword": "longenough"}, "Invalid code or email"},
		{"short password", map[string]string{"email": testResetEmail, "otp": "123456", "newPassword": "123"}, "Password must be at least 6 characters"},
		{"short multibyte password", map[string]string{"email": testResetEmail, "otp": "123456", "newPassword": "ééé"}, "Password must be at least 6 characters"},
		{"no pending reset", map[string]string{"email": testResetEmail, "otp": "123456", "newPassword": "longenough"}, "No active reset request. Please request a new code."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/auth/reset-password", jsonBody(t, tt.body), nil)
			assertError(t, rr, http.StatusBadRequest, tt.message)
		})
	}
}

// ---------------------------------------------------------------------------
// Auth gate on admin routes
// ---------------------------------------------------------------------------

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	env.setup(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/admin/stats"},
		{"GET", "/api/admin/projects"},
		{"POST", "/api/admin/projects"},
		{"GET", "/api/admin/projects/abc"},
		{"PUT", "/api/admin/projects/abc"},
		{"DELETE", "/api/admin/projects/abc"},
		{"GET", "/api/admin/categories"},
		{"POST", "/api/admin/categories"},
		{"PUT", "/api/admin/categories/abc"},
		{"DELETE", "/api/admin/categories/abc"},
		{"GET", "/api/admin/skills"},
		{"POST", "/api/admin/skills"},
		{"GET", "/api/admin/qualifications"},
		{"DELETE", "/api/admin/qualifications/abc"},
		{"GET", "/api/admin/profile"},
		{"PUT", "/api/admin/profile"},
	}
	for _, rt := range routes {
		rr := env.do(t, rt.method, rt.path, strings.NewReader(`{}`), nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", rt.method, rt.path, rr.Code)
		}
	}
}

// ---------------------------------------------------------------------------
// Admin content API
// ---------------------------------------------------------------------------

func TestAdminProjectCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/projects", jsonBody(t, map[string]string{"title": "x"}), token)
	assertError(t, rr, http.StatusBadRequest, "Title, description, and category are required")

	catID := env.createResource(t, token, "/api/admin/categories", "category", map[string]string{"name": "Web Apps"})
	id := env.createResource(t, token, "/api/admin/projects", "project", map[string]interface{}{
		"title":       "Folio",
		"description": "Portfolio CMS",
		"category":    catID,
		"techStack":   []string{"Go", "SQLite"},
	})

	rr = env.doAuth(t, "GET", "/api/admin/projects/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)
	var got struct {
		Project struct {
			Title       string   `json:"title"`
			TechStack   []string `json:"techStack"`
			Images      []string `json:"images"`
			IsPublished bool     `json:"isPublished"`
		} `json:"project"`
	}
	decodeJSON(t, rr, &got)
	if got.Project.Title != "Folio" || len(got.Project.TechStack) != 2 || got.Project.Images == nil {
		t.Errorf("got %+v", got.Project)
	}
	if got.Project.IsPublished {
		t.Error("new projects should be unpublished")
	}

	rr = env.doAuth(t, "PUT", "/api/admin/projects/"+id, jsonBody(t, map[string]interface{}{"isPublished": true}), token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &got)
	if !got.Project.IsPublished || got.Project.Title != "Folio" {
		t.Errorf("partial update: got %+v", got.Project)
	}

	rr = env.doAuth(t, "GET", "/api/admin/projects?category="+catID, nil, token)
	assertStatus(t, rr, http.StatusOK)
	var list struct {
		Projects []json.RawMessage `json:"projects"`
	}
	decodeJSON(t, rr, &list)
	if len(list.Projects) != 1 {
		t.Errorf("got %d projects, want 1", len(list.Projects))
	}

	rr = env.doAuth(t, "DELETE", "/api/admin/projects/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "{\"success\":true}\n" {
		t.Errorf("got delete body %q", rr.Body.String())
	}

	rr = env.doAuth(t, "GET", "/api/admin/projects/"+id, nil, token)
	assertError(t, rr, http.StatusNotFound, "Project not found")
	rr = env.doAuth(t, "PUT", "/api/admin/projects/"+id, jsonBody(t, map[string]string{"title": "y"}), token)
	assertError(t, rr, http.StatusNotFound, "Project not found")
	rr = env.doAuth(t, "DELETE", "/api/admin/projects/"+id, nil, token)
	assertError(t, rr, http.StatusNotFound, "Project not found")
}

func TestAdminCategories(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/categories", jsonBody(t, map[string]string{}), token)
	assertError(t, rr, http.StatusBadRequest, "Category name is required")

	id := env.createResource(t, token, "/api/admin/categories", "category", map[string]string{"name": "Machine Learning"})

	// Names that slugify alike collide.
	rr = env.doAuth(t, "POST", "/api/admin/categories", jsonBody(t, map[string]string{"name": "machine  learning!"}), token)
	assertError(t, rr, http.StatusBadRequest, "Category with this name already exists")

	other := env.createResource(t, token, "/api/admin/categories", "category", map[string]string{"name": "Tools"})
	rr = env.doAuth(t, "PUT", "/api/admin/categories/"+other, jsonBody(t, map[string]string{"name": "Machine Learning"}), token)
	assertError(t, rr, http.StatusBadRequest, "Category with this name already exists")

	rr = env.doAuth(t, "PUT", "/api/admin/categories/"+id, jsonBody(t, map[string]string{"name": "Deep Learning"}), token)
	assertStatus(t, rr, http.StatusOK)
	var got struct {
		Category struct {
			Slug string `json:"slug"`
		} `json:"category"`
	}
	decodeJSON(t, rr, &got)
	if got.Category.Slug != "deep-learning" {
		t.Errorf("got slug %q, want deep-learning", got.Category.Slug)
	}

	rr = env.doAuth(t, "DELETE", "/api/admin/categories/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)
	rr = env.doAuth(t, "DELETE", "/api/admin/categories/"+id, nil, token)
	assertError(t, rr, http.StatusNotFound, "Category not found")
}

func TestAdminSkillValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing level", map[string]string{"name": "Go", "category": "backend"}, "Name, category, and level are required"},
		{"bad category", map[string]string{"name": "Go", "category": "cooking", "level": "expert"}, "Invalid category"},
		{"bad level", map[string]string{"name": "Go", "category": "backend", "level": "guru"}, "Invalid level"},
	}
	for _, tt := range tests {
		rr := env.doAuth(t, "POST", "/api/admin/skills", jsonBody(t, tt.body), token)
		assertError(t, rr, http.StatusBadRequest, tt.message)
	}

	id := env.createResource(t, token, "/api/admin/skills", "skill", map[string]string{
		"name": "Go", "category": "backend", "level": "expert",
	})
	rr := env.doAuth(t, "GET", "/api/admin/skills/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)
	var got struct {
		Skill struct {
			IsFeatured bool `json:"isFeatured"`
		} `json:"skill"`
	}
	decodeJSON(t, rr, &got)
	if !got.Skill.IsFeatured {
		t.Error("new skills should be featured by default")
	}

	rr = env.doAuth(t, "PUT", "/api/admin/skills/"+id, jsonBody(t, map[string]string{"level": "guru"}), token)
	assertError(t, rr, http.StatusBadRequest, "Invalid level")
	rr = env.doAuth(t, "PUT", "/api/admin/skills/missing", jsonBody(t, map[string]string{"level": "advanced"}), token)
	assertError(t, rr, http.StatusNotFound, "Skill not found")
}

func TestAdminQualificationValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/qualifications", jsonBody(t, map[string]string{"title": "BSc"}), token)
	assertError(t, rr, http.StatusBadRequest, "Title, issuer, issue date, and type are required")

	rr = env.doAuth(t, "POST", "/api/admin/qualifications", jsonBody(t, map[string]string{
		"title": "BSc", "issuer": "Uni", "issueDate": "2020-06-01", "type": "hobby",
	}), token)
	assertError(t, rr, http.StatusBadRequest, "Type must be education, certification, or award")

	rr = env.doAuth(t, "POST", "/api/admin/qualifications", jsonBody(t, map[string]string{
		"title": "BSc", "issuer": "Uni", "issueDate": "June 2020", "type": "education",
	}), token)
	assertError(t, rr, http.StatusBadRequest, "Issue date must be in YYYY-MM-DD format")

	id := env.createResource(t, token, "/api/admin/qualifications", "qualification", map[string]string{
		"title": "BSc", "issuer": "Uni", "issueDate": "2020-06-01", "type": "education",
	})
	rr = env.doAuth(t, "PUT", "/api/admin/qualifications/"+id, jsonBody(t, map[string]string{"type": "hobby"}), token)
	assertError(t, rr, http.StatusBadRequest, "Type must be education, certification, or award")
}

func TestAdminProfileAndPublicProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "GET", "/api/admin/profile", nil, token)
	assertStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "{\"profile\":null}\n" {
		t.Errorf("got %q, want null profile", rr.Body.String())
	}

	rr = env.doAuth(t, "PUT", "/api/admin/profile", jsonBody(t, map[string]string{"name": "Owner"}), token)
	assertError(t, rr, http.StatusBadRequest, "Contact email is required")

	rr = env.doAuth(t, "PUT", "/api/admin/profile", jsonBody(t, map[string]string{
		"name": "Owner", "contactEmail": "hello@example.com",
	}), token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(t, "GET", "/api/profile", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var got struct {
		Profile struct {
			Name         string `json:"name"`
			ContactEmail string `json:"contactEmail"`
		} `json:"profile"`
	}
	decodeJSON(t, rr, &got)
	if got.Profile.Name != "Owner" || got.Profile.ContactEmail != "hello@example.com" {
		t.Errorf("got %+v", got.Profile)
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	catID := env.createResource(t, token, "/api/admin/categories", "category", map[string]string{"name": "Web"})
	for i, published := range []bool{true, false, true} {
		env.createResource(t, token, "/api/admin/projects", "project", map[string]interface{}{
			"title":       "P" + string(rune('A'+i)),
			"description": "d",
			"category":    catID,
			"isPublished": published,
		})
	}

	rr := env.doAuth(t, "GET", "/api/admin/stats", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var stats struct {
		Projects struct {
			Total       int `json:"total"`
			Published   int `json:"published"`
			Unpublished int `json:"unpublished"`
			ByCategory  []struct {
				ID    string `json:"_id"`
				Count int    `json:"count"`
			} `json:"byCategory"`
		} `json:"projects"`
		Categories struct {
			Total int `json:"total"`
		} `json:"categories"`
		RecentProjects []json.RawMessage `json:"recentProjects"`
	}
	decodeJSON(t, rr, &stats)
	if stats.Projects.Total != 3 || stats.Projects.Published != 2 || stats.Projects.Unpublished != 1 {
		t.Errorf("got %+v, want 3/2/1", stats.Projects)
	}
	if len(stats.Projects.ByCategory) != 1 || stats.Projects.ByCategory[0].ID != catID || stats.Projects.ByCategory[0].Count != 3 {
		t.Errorf("got byCategory %+v", stats.Projects.ByCategory)
	}
	if stats.Categories.Total != 1 || len(stats.RecentProjects) != 3 {
		t.Errorf("got categories %d, recent %d", stats.Categories.Total, len(stats.RecentProjects))
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	for _, path := range []string{"/api/admin/projects", "/api/admin/categories", "/api/admin/skills", "/api/admin/qualifications"} {
		rr := env.doAuth(t, "POST", path, strings.NewReader(`{"title":`), token)
		assertError(t, rr, http.StatusBadRequest, "Invalid request body")
	}
}

// ---------------------------------------------------------------------------
// Public API
// ---------------------------------------------------------------------------

func TestPublicAPIHidesUnpublished(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	env.createResource(t, token, "/api/admin/projects", "project", map[string]interface{}{
		"title": "Live", "description": "d", "category": "c", "isPublished": true,
	})
	env.createResource(t, token, "/api/admin/projects", "project", map[string]interface{}{
		"title": "Draft", "description": "d", "category": "c",
	})
	published := env.createResource(t, token, "/api/admin/qualifications", "qualification", map[string]interface{}{
		"title": "CKA", "issuer": "CNCF", "issueDate": "2023-01-01", "type": "certification", "isPublished": true,
	})
	hidden := env.createResource(t, token, "/api/admin/qualifications", "qualification", map[string]interface{}{
		"title": "Secret", "issuer": "X", "issueDate": "2024-01-01", "type": "award",
	})

	rr := env.do(t, "GET", "/api/projects", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	if body := rr.Body.String(); !strings.Contains(body, "Live") || strings.Contains(body, "Draft") {
		t.Errorf("public projects: %s", body)
	}

	rr = env.do(t, "GET", "/api/qualifications", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	if body := rr.Body.String(); !strings.Contains(body, "CKA") || strings.Contains(body, "Secret") {
		t.Errorf("public qualifications: %s", body)
	}

	rr = env.do(t, "GET", "/api/qualifications/"+published, nil, nil)
	assertStatus(t, rr, http.StatusOK)
	rr = env.do(t, "GET", "/api/qualifications/"+hidden, nil, nil)
	assertError(t, rr, http.StatusNotFound, "Qualification not found")

	// The admin view sees drafts.
	rr = env.doAuth(t, "GET", "/api/admin/projects", nil, token)
	if !strings.Contains(rr.Body.String(), "Draft") {
		t.Error("admin project list should include drafts")
	}
}

func TestPublicSkillsFeatured(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	env.createResource(t, token, "/api/admin/skills", "skill", map[string]interface{}{
		"name": "Go", "category": "backend", "level": "expert",
	})
	env.createResource(t, token, "/api/admin/skills", "skill", map[string]interface{}{
		"name": "Perl", "category": "other", "level": "beginner", "isFeatured": false,
	})

	rr := env.do(t, "GET", "/api/skills?featured=true", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	if body := rr.Body.String(); !strings.Contains(body, "Go") || strings.Contains(body, "Perl") {
		t.Errorf("featured skills: %s", body)
	}
	rr = env.do(t, "GET", "/api/skills", nil, nil)
	if !strings.Contains(rr.Body.String(), "Perl") {
		t.Error("unfiltered skills should include Perl")
	}
}

// ---------------------------------------------------------------------------
// Misc
// ---------------------------------------------------------------------------

func TestOpenAPIEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/openapi.json", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	decodeJSON(t, rr, &doc)
	if doc.OpenAPI != "3.1.0" {
		t.Errorf("got openapi %q", doc.OpenAPI)
	}
	if _, ok := doc.Paths["/api/auth/reset-password"]; !ok {
		t.Error("document missing /api/auth/reset-password")
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/api/nope", nil, nil)
	assertError(t, rr, http.StatusNotFound, "Not found")
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil, map[string]string{"X-Request-ID": "trace-1"})
	if got := rr.Header().Get("X-Request-ID"); got != "trace-1" {
		t.Errorf("got X-Request-ID %q, want trace-1", got)
	}
}
