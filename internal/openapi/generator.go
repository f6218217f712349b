package openapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Security scheme names used in the document.
const (
	SchemeBearer = "bearerAuth"
	SchemeCookie = "cookieAuth"
)

// operation describes one route of the API.
type operation struct {
	method  string
	path    string
	tag     string
	id      string
	summary string
	secured bool
	query   openapi3.Parameters
	body    *openapi3.SchemaRef
	status  string
	result  *openapi3.SchemaRef
	errors  []string
}

// Generate builds the OpenAPI 3.1 document for the portfolio API. baseURL may
// be empty, in which case no servers entry is emitted.
func Generate(baseURL, version string) *openapi3.T {
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Folio API",
			Description: "Portfolio content API with a single admin account.",
			Version:     version,
		},
	}
	if baseURL != "" {
		doc.Servers = openapi3.Servers{{URL: strings.TrimRight(baseURL, "/")}}
	}

	components := openapi3.NewComponents()
	components.Schemas = componentSchemas()
	components.SecuritySchemes = openapi3.SecuritySchemes{
		SchemeBearer: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		},
		SchemeCookie: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type: "apiKey",
				In:   "cookie",
				Name: "admin_token",
			},
		},
	}
	doc.Components = &components

	doc.Paths = openapi3.NewPaths()
	for _, op := range operations() {
		addOperation(doc, op)
	}
	return doc
}

func addOperation(doc *openapi3.T, op operation) {
	o := &openapi3.Operation{
		Tags:        []string{op.tag},
		Summary:     op.summary,
		OperationID: op.id,
		Parameters:  append(pathParameters(op.path), op.query...),
		Responses:   newResponses(op.status, op.result, op.errors...),
	}
	if op.body != nil {
		o.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(op.body),
		}
	}
	if op.secured {
		o.Security = &openapi3.SecurityRequirements{
			{SchemeBearer: {}},
			{SchemeCookie: {}},
		}
	}

	item := doc.Paths.Value(op.path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(op.path, item)
	}
	item.SetOperation(op.method, o)
}

// pathParameters declares every {name} segment of path as a required string.
func pathParameters(path string) openapi3.Parameters {
	var params openapi3.Parameters
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := strings.Trim(seg, "{}")
			params = append(params, &openapi3.ParameterRef{
				Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()),
			})
		}
	}
	return params
}

func queryParam(name, description string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter(name).WithDescription(description).WithSchema(schema),
	}
}

// newResponses builds the success response plus the listed error statuses,
// all of which share the ErrorResponse envelope. 500 is always included.
func newResponses(status string, schema *openapi3.SchemaRef, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()

	desc := http.StatusText(statusCode(status))
	responses.Set(status, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := ref("ErrorResponse")
	for _, code := range append(errorCodes, "500") {
		d := http.StatusText(statusCode(code))
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	return responses
}

func statusCode(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ---------------------------------------------------------------------------
// Route table
// ---------------------------------------------------------------------------

func operations() []operation {
	success := ref("MessageResponse")
	ops := []operation{
		{http.MethodPost, "/api/auth/setup", "auth", "setupAdmin", "Create the admin account (first run only)", false,
			nil, ref("Credentials"), "200", success, []string{"400", "429"}},
		{http.MethodPost, "/api/auth/login", "auth", "login", "Log in and receive a session", false,
			nil, ref("Credentials"), "200", ref("LoginResponse"), []string{"400", "401", "429"}},
		{http.MethodGet, "/api/auth/me", "auth", "me", "Identify the current admin", true,
			nil, nil, "200", wrap("admin", ref("AdminSummary")), []string{"401"}},
		{http.MethodPost, "/api/auth/logout", "auth", "logout", "Clear the session cookie", false,
			nil, nil, "200", success, nil},
		{http.MethodPost, "/api/auth/request-reset", "auth", "requestReset", "Email a password reset code", false,
			nil, ref("RequestReset"), "200", success, []string{"400", "429"}},
		{http.MethodPost, "/api/auth/reset-password", "auth", "resetPassword", "Set a new password with a reset code", false,
			nil, ref("ResetPassword"), "200", success, []string{"400", "429"}},

		{http.MethodGet, "/api/admin/stats", "admin", "getStats", "Dashboard statistics", true,
			nil, nil, "200", ref("Stats"), []string{"401"}},
		{http.MethodGet, "/api/admin/profile", "admin", "adminGetProfile", "Get the profile", true,
			nil, nil, "200", wrap("profile", ref("Profile")), []string{"401"}},
		{http.MethodPut, "/api/admin/profile", "admin", "saveProfile", "Create or replace the profile", true,
			nil, ref("Profile"), "200", wrap("profile", ref("Profile")), []string{"400", "401"}},
	}

	ops = append(ops, crudOperations("project", "projects", "Project", true)...)
	ops = append(ops, crudOperations("category", "categories", "Category", false)...)
	ops = append(ops, crudOperations("skill", "skills", "Skill", true)...)
	ops = append(ops, crudOperations("qualification", "qualifications", "Qualification", true)...)

	category := queryParam("category", "Only projects filed under this category ID", openapi3.NewStringSchema())
	for i := range ops {
		if ops[i].id == "listProjects" {
			ops[i].query = openapi3.Parameters{category}
		}
	}

	ops = append(ops,
		operation{http.MethodGet, "/api/projects", "public", "publicListProjects", "Published projects", false,
			openapi3.Parameters{category}, nil, "200", wrap("projects", arrayOf(ref("Project"))), nil},
		operation{http.MethodGet, "/api/categories", "public", "publicListCategories", "All categories", false,
			nil, nil, "200", wrap("categories", arrayOf(ref("Category"))), nil},
		operation{http.MethodGet, "/api/skills", "public", "publicListSkills", "Skills", false,
			openapi3.Parameters{queryParam("featured", "Only featured skills when true", openapi3.NewBoolSchema())},
			nil, "200", wrap("skills", arrayOf(ref("Skill"))), nil},
		operation{http.MethodGet, "/api/profile", "public", "publicGetProfile", "The profile, or null", false,
			nil, nil, "200", wrap("profile", ref("Profile")), nil},
		operation{http.MethodGet, "/api/qualifications", "public", "publicListQualifications", "Published qualifications", false,
			nil, nil, "200", wrap("qualifications", arrayOf(ref("Qualification"))), nil},
		operation{http.MethodGet, "/api/qualifications/{id}", "public", "publicGetQualification", "A published qualification", false,
			nil, nil, "200", wrap("qualification", ref("Qualification")), []string{"404"}},
	)
	return ops
}

// crudOperations describes the admin routes of one content collection.
// Categories have no single-item GET.
func crudOperations(singular, plural, schema string, withGet bool) []operation {
	collection := "/api/admin/" + plural
	item := collection + "/{id}"
	title := strings.ToUpper(plural[:1]) + plural[1:]
	one := wrap(singular, ref(schema))

	ops := []operation{
		{http.MethodGet, collection, "admin", "list" + title, "List " + plural, true,
			nil, nil, "200", wrap(plural, arrayOf(ref(schema))), []string{"401"}},
		{http.MethodPost, collection, "admin", "create" + schema, "Create a " + singular, true,
			nil, ref(schema), "201", one, []string{"400", "401"}},
		{http.MethodPut, item, "admin", "update" + schema, "Update a " + singular, true,
			nil, ref(schema), "200", one, []string{"400", "401", "404"}},
		{http.MethodDelete, item, "admin", "delete" + schema, "Delete a " + singular, true,
			nil, nil, "200", ref("MessageResponse"), []string{"401", "404"}},
	}
	if withGet {
		ops = append(ops, operation{http.MethodGet, item, "admin", "get" + schema, "Get a " + singular, true,
			nil, nil, "200", one, []string{"401", "404"}})
	}
	return ops
}
