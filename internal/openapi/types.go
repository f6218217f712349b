package openapi

import "github.com/getkin/kin-openapi/openapi3"

// Schema builders for the portfolio resources. Property names follow the
// JSON tags of the model package.

func typed(t, format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{t}, Format: format}}
}

func str() *openapi3.SchemaRef      { return typed("string", "") }
func dateTime() *openapi3.SchemaRef { return typed("string", "date-time") }
func date() *openapi3.SchemaRef     { return typed("string", "date") }
func boolean() *openapi3.SchemaRef  { return typed("boolean", "") }
func integer() *openapi3.SchemaRef  { return typed("integer", "int32") }
func number() *openapi3.SchemaRef   { return typed("number", "double") }

func enum(values ...string) *openapi3.SchemaRef {
	ref := str()
	for _, v := range values {
		ref.Value.Enum = append(ref.Value.Enum, v)
	}
	return ref
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: items}}
}

func object(props openapi3.Schemas, required ...string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: props,
		Required:   required,
	}}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

// wrap describes a response of the form {"<key>": <schema>}.
func wrap(key string, schema *openapi3.SchemaRef) *openapi3.SchemaRef {
	return object(openapi3.Schemas{key: schema}, key)
}

// readOnly marks the server-assigned fields of a resource.
func readOnly(s *openapi3.SchemaRef) *openapi3.SchemaRef {
	s.Value.ReadOnly = true
	return s
}

var (
	skillCategories    = []string{"frontend", "backend", "data-science", "devops", "mobile", "ui-ux", "other"}
	skillLevels        = []string{"beginner", "intermediate", "advanced", "expert"}
	qualificationTypes = []string{"education", "certification", "award"}
)

// componentSchemas returns every named schema referenced by the paths.
func componentSchemas() openapi3.Schemas {
	return openapi3.Schemas{
		"ErrorResponse": object(openapi3.Schemas{
			"error": object(openapi3.Schemas{
				"code":    integer(),
				"message": str(),
				"context": object(nil),
			}, "code", "message"),
		}, "error"),
		"MessageResponse": object(openapi3.Schemas{
			"success": boolean(),
			"message": str(),
		}, "success"),
		"AdminSummary": object(openapi3.Schemas{
			"id":       str(),
			"username": str(),
		}, "id", "username"),
		"Credentials": object(openapi3.Schemas{
			"username": str(),
			"password": str(),
		}, "username", "password"),
		"LoginResponse": object(openapi3.Schemas{
			"success": boolean(),
			"admin":   ref("AdminSummary"),
			"token":   str(),
		}, "success", "admin", "token"),
		"RequestReset": object(openapi3.Schemas{
			"email": str(),
		}, "email"),
		"ResetPassword": object(openapi3.Schemas{
			"email":       str(),
			"otp":         str(),
			"newPassword": str(),
		}, "email", "otp", "newPassword"),

		"Category": object(openapi3.Schemas{
			"_id":         readOnly(str()),
			"name":        str(),
			"slug":        readOnly(str()),
			"description": str(),
			"createdAt":   readOnly(dateTime()),
			"updatedAt":   readOnly(dateTime()),
		}, "name"),
		"Project": object(openapi3.Schemas{
			"_id":          readOnly(str()),
			"title":        str(),
			"description":  str(),
			"techStack":    arrayOf(str()),
			"category":     str(),
			"liveDemoLink": str(),
			"githubLink":   str(),
			"images":       arrayOf(str()),
			"isPublished":  boolean(),
			"createdAt":    readOnly(dateTime()),
			"updatedAt":    readOnly(dateTime()),
		}, "title", "description", "category"),
		"Skill": object(openapi3.Schemas{
			"_id":             readOnly(str()),
			"name":            str(),
			"category":        enum(skillCategories...),
			"level":           enum(skillLevels...),
			"yearsExperience": number(),
			"description":     str(),
			"icon":            str(),
			"isFeatured":      boolean(),
			"order":           integer(),
			"createdAt":       readOnly(dateTime()),
			"updatedAt":       readOnly(dateTime()),
		}, "name", "category", "level"),
		"Qualification": object(openapi3.Schemas{
			"_id":              readOnly(str()),
			"title":            str(),
			"issuer":           str(),
			"issueDate":        date(),
			"expiryDate":       date(),
			"credentialId":     str(),
			"credentialUrl":    str(),
			"certificateImage": str(),
			"description":      str(),
			"type":             enum(qualificationTypes...),
			"isPublished":      boolean(),
			"createdAt":        readOnly(dateTime()),
			"updatedAt":        readOnly(dateTime()),
		}, "title", "issuer", "issueDate", "type"),
		"Profile": object(openapi3.Schemas{
			"_id":          readOnly(str()),
			"name":         str(),
			"bio":          str(),
			"githubLink":   str(),
			"linkedinLink": str(),
			"twitterLink":  str(),
			"resumeLink":   str(),
			"contactEmail": str(),
			"updatedAt":    readOnly(dateTime()),
		}, "contactEmail"),
		"Stats": object(openapi3.Schemas{
			"projects": object(openapi3.Schemas{
				"total":       integer(),
				"published":   integer(),
				"unpublished": integer(),
				"byCategory": arrayOf(object(openapi3.Schemas{
					"_id":   str(),
					"count": integer(),
				})),
			}),
			"categories": object(openapi3.Schemas{
				"total": integer(),
				"list":  arrayOf(ref("Category")),
			}),
			"recentProjects": arrayOf(ref("Project")),
		}),
	}
}
