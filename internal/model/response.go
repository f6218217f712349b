package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// MessageResponse acknowledges an operation with a human-readable message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned by a successful login. Token is the same value
// that is set in the session cookie, for clients that use bearer auth.
type LoginResponse struct {
	Success bool         `json:"success"`
	Admin   AdminSummary `json:"admin"`
	Token   string       `json:"token"`
}

// MeResponse identifies the admin behind the current session.
type MeResponse struct {
	Admin AdminSummary `json:"admin"`
}

// StatsResponse feeds the admin dashboard.
type StatsResponse struct {
	Projects       ProjectStats    `json:"projects"`
	Categories     CategoriesStats `json:"categories"`
	RecentProjects []Project       `json:"recentProjects"`
}

// CategoriesStats lists every category with its count.
type CategoriesStats struct {
	Total int        `json:"total"`
	List  []Category `json:"list"`
}
