package model

import (
	"regexp"
	"strings"
	"time"
)

// Category groups projects on the public site. Slug is derived from Name and
// must be unique.
type Category struct {
	ID          string    `json:"_id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryUpdate is a sparse update; nil fields are left untouched. Setting
// Name also regenerates the slug.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Project is a portfolio entry. Category holds the owning category's ID.
type Project struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TechStack    []string  `json:"techStack"`
	Category     string    `json:"category"`
	LiveDemoLink string    `json:"liveDemoLink"`
	GithubLink   string    `json:"githubLink"`
	Images       []string  `json:"images"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectUpdate is a sparse update for a project.
type ProjectUpdate struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	TechStack    *[]string `json:"techStack"`
	Category     *string   `json:"category"`
	LiveDemoLink *string   `json:"liveDemoLink"`
	GithubLink   *string   `json:"githubLink"`
	Images       *[]string `json:"images"`
	IsPublished  *bool     `json:"isPublished"`
}

// Skill categories accepted by the admin API.
const (
	SkillFrontend    = "frontend"
	SkillBackend     = "backend"
	SkillDataScience = "data-science"
	SkillDevOps      = "devops"
	SkillMobile      = "mobile"
	SkillUIUX        = "ui-ux"
	SkillOther       = "other"
)

// Skill proficiency levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

var (
	skillCategories = []string{SkillFrontend, SkillBackend, SkillDataScience, SkillDevOps, SkillMobile, SkillUIUX, SkillOther}
	skillLevels     = []string{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}
)

// Skill is one entry of the tech stack shown on the public site.
type Skill struct {
	ID              string    `json:"_id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	Level           string    `json:"level" db:"level"`
	YearsExperience *float64  `json:"yearsExperience,omitempty" db:"years_experience"`
	Description     *string   `json:"description,omitempty" db:"description"`
	Icon            *string   `json:"icon,omitempty" db:"icon"`
	IsFeatured      bool      `json:"isFeatured" db:"is_featured"`
	Order           int       `json:"order" db:"sort_order"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// SkillUpdate is a sparse update for a skill.
type SkillUpdate struct {
	Name            *string  `json:"name"`
	Category        *string  `json:"category"`
	Level           *string  `json:"level"`
	YearsExperience *float64 `json:"yearsExperience"`
	Description     *string  `json:"description"`
	Icon            *string  `json:"icon"`
	IsFeatured      *bool    `json:"isFeatured"`
	Order           *int     `json:"order"`
}

// Qualification types.
const (
	QualificationEducation     = "education"
	QualificationCertification = "certification"
	QualificationAward         = "award"
)

// Qualification is an education entry, certification or award. Dates are
// kept as YYYY-MM-DD strings.
type Qualification struct {
	ID               string    `json:"_id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Issuer           string    `json:"issuer" db:"issuer"`
	IssueDate        string    `json:"issueDate" db:"issue_date"`
	ExpiryDate       *string   `json:"expiryDate,omitempty" db:"expiry_date"`
	CredentialID     *string   `json:"credentialId,omitempty" db:"credential_id"`
	CredentialURL    *string   `json:"credentialUrl,omitempty" db:"credential_url"`
	CertificateImage *string   `json:"certificateImage,omitempty" db:"certificate_image"`
	Description      *string   `json:"description,omitempty" db:"description"`
	Type             string    `json:"type" db:"type"`
	IsPublished      bool      `json:"isPublished" db:"is_published"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// QualificationUpdate is a sparse update for a qualification.
type QualificationUpdate struct {
	Title            *string `json:"title"`
	Issuer           *string `json:"issuer"`
	IssueDate        *string `json:"issueDate"`
	ExpiryDate       *string `json:"expiryDate"`
	CredentialID     *string `json:"credentialId"`
	CredentialURL    *string `json:"credentialUrl"`
	CertificateImage *string `json:"certificateImage"`
	Description      *string `json:"description"`
	Type             *string `json:"type"`
	IsPublished      *bool   `json:"isPublished"`
}

// Profile is the singleton owner profile rendered on the public site.
type Profile struct {
	ID           string    `json:"_id" db:"id"`
	Name         *string   `json:"name,omitempty" db:"name"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`
	GithubLink   *string   `json:"githubLink,omitempty" db:"github_link"`
	LinkedinLink *string   `json:"linkedinLink,omitempty" db:"linkedin_link"`
	TwitterLink  *string   `json:"twitterLink,omitempty" db:"twitter_link"`
	ResumeLink   *string   `json:"resumeLink,omitempty" db:"resume_link"`
	ContactEmail string    `json:"contactEmail" db:"contact_email"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ProjectStats summarizes projects for the admin dashboard.
type ProjectStats struct {
	Total       int             `json:"total"`
	Published   int             `json:"published"`
	Unpublished int             `json:"unpublished"`
	ByCategory  []CategoryCount `json:"byCategory"`
}

// CategoryCount is the number of projects filed under one category ID.
type CategoryCount struct {
	CategoryID string `json:"_id" db:"category"`
	Count      int    `json:"count" db:"count"`
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases name, turns whitespace runs into dashes and drops every
// character outside [a-z0-9-].
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}

// ValidSkillCategory reports whether c is an accepted skill category.
func ValidSkillCategory(c string) bool { return contains(skillCategories, c) }

// ValidSkillLevel reports whether l is an accepted skill level.
func ValidSkillLevel(l string) bool { return contains(skillLevels, l) }

// ValidQualificationType reports whether t is education, certification or award.
func ValidQualificationType(t string) bool {
	return t == QualificationEducation || t == QualificationCertification || t == QualificationAward
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
