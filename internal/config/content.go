package config

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folioapp/folio/internal/model"
)

// setList accumulates the assignments of a sparse UPDATE so that every
// changed column and updated_at land in one statement.
type setList struct {
	cols []string
	args []interface{}
}

func (l *setList) add(col string, v interface{}) {
	l.cols = append(l.cols, col+" = ?")
	l.args = append(l.args, v)
}

// updateByID runs UPDATE table SET ..., updated_at = now WHERE id = ?.
func (s *Store) updateByID(ctx context.Context, table, id string, l setList) error {
	l.add("updated_at", time.Now().UTC())
	q := s.db.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(l.cols, ", ")))
	result, err := s.db.ExecContext(ctx, q, append(l.args, id)...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update %s: %w", table, err)
	}
	return checkAffected(result, "update "+table)
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return checkAffected(result, "delete from "+table)
}

func (s *Store) getByID(ctx context.Context, dest interface{}, table, columns, id string) error {
	q := s.db.Rebind("SELECT " + columns + " FROM " + table + " WHERE id = ?")
	if err := s.db.GetContext(ctx, dest, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s: %w", table, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.SelectContext(ctx, &categories, "SELECT "+categoryColumns+" FROM categories ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := s.getByID(ctx, &c, "categories", categoryColumns, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category. The slug is derived from the name;
// ErrDuplicate is returned when another category already has it.
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	now := time.Now().UTC()
	c.ID = newID()
	c.Slug = model.Slugify(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now

	const q = `INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES (:id, :name, :slug, :description, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, q, c); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// UpdateCategory applies a sparse update and returns the stored category.
func (s *Store) UpdateCategory(ctx context.Context, id string, upd model.CategoryUpdate) (*model.Category, error) {
	var l setList
	if upd.Name != nil {
		l.add("name", *upd.Name)
		l.add("slug", model.Slugify(*upd.Name))
	}
	if upd.Description != nil {
		l.add("description", *upd.Description)
	}
	if err := s.updateByID(ctx, "categories", id, l); err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Projects filed under it keep the
// dangling reference.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "categories", id)
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

const projectColumns = `id, title, description, tech_stack, category, live_demo_link, github_link, images, is_published, created_at, updated_at`

// projectRow maps 1:1 to the projects table. The list fields are stored as
// JSON arrays in text columns so that every backend can hold them.
type projectRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	TechStack    string    `db:"tech_stack"`
	Category     string    `db:"category"`
	LiveDemoLink string    `db:"live_demo_link"`
	GithubLink   string    `db:"github_link"`
	Images       string    `db:"images"`
	IsPublished  bool      `db:"is_published"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func projectRowFromModel(p *model.Project) (projectRow, error) {
	tech, err := encodeList(p.TechStack)
	if err != nil {
		return projectRow{}, fmt.Errorf("marshal tech stack: %w", err)
	}
	images, err := encodeList(p.Images)
	if err != nil {
		return projectRow{}, fmt.Errorf("marshal images: %w", err)
	}
	return projectRow{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		TechStack:    tech,
		Category:     p.Category,
		LiveDemoLink: p.LiveDemoLink,
		GithubLink:   p.GithubLink,
		Images:       images,
		IsPublished:  p.IsPublished,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

func (r projectRow) toModel() (model.Project, error) {
	p := model.Project{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		LiveDemoLink: r.LiveDemoLink,
		GithubLink:   r.GithubLink,
		IsPublished:  r.IsPublished,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.TechStack), &p.TechStack); err != nil {
		return p, fmt.Errorf("unmarshal tech stack for project %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Images), &p.Images); err != nil {
		return p, fmt.Errorf("unmarshal images for project %s: %w", r.ID, err)
	}
	return p, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

// ProjectFilter narrows ListProjects. Zero values match everything.
type ProjectFilter struct {
	Category      string
	PublishedOnly bool
	Limit         int
}

// ListProjects returns projects newest first.
func (s *Store) ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.PublishedOnly {
		where = append(where, "is_published = ?")
		args = append(args, true)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	q := "SELECT " + projectColumns + " FROM projects"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var r projectRow
	if err := s.getByID(ctx, &r, "projects", projectColumns, id); err != nil {
		return nil, err
	}
	p, err := r.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project. ID and timestamps are assigned here.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	row, err := projectRowFromModel(p)
	if err != nil {
		return err
	}

	const q = `INSERT INTO projects
		(id, title, description, tech_stack, category, live_demo_link, github_link, images, is_published, created_at, updated_at)
		VALUES
		(:id, :title, :description, :tech_stack, :category, :live_demo_link, :github_link, :images, :is_published, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// UpdateProject applies a sparse update and returns the stored project.
func (s *Store) UpdateProject(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	var l setList
	if upd.Title != nil {
		l.add("title", *upd.Title)
	}
	if upd.Description != nil {
		l.add("description", *upd.Description)
	}
	if upd.TechStack != nil {
		v, err := encodeList(*upd.TechStack)
		if err != nil {
			return nil, fmt.Errorf("marshal tech stack: %w", err)
		}
		l.add("tech_stack", v)
	}
	if upd.Category != nil {
		l.add("category", *upd.Category)
	}
	if upd.LiveDemoLink != nil {
		l.add("live_demo_link", *upd.LiveDemoLink)
	}
	if upd.GithubLink != nil {
		l.add("github_link", *upd.GithubLink)
	}
	if upd.Images != nil {
		v, err := encodeList(*upd.Images)
		if err != nil {
			return nil, fmt.Errorf("marshal images: %w", err)
		}
		l.add("images", v)
	}
	if upd.IsPublished != nil {
		l.add("is_published", *upd.IsPublished)
	}
	if err := s.updateByID(ctx, "projects", id, l); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "projects", id)
}

// ProjectStats counts projects overall, by publication state and per
// category (largest first).
func (s *Store) ProjectStats(ctx context.Context) (*model.ProjectStats, error) {
	stats := &model.ProjectStats{ByCategory: []model.CategoryCount{}}

	if err := s.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM projects"); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.Published,
		s.db.Rebind("SELECT COUNT(*) FROM projects WHERE is_published = ?"), true); err != nil {
		return nil, fmt.Errorf("count published projects: %w", err)
	}
	stats.Unpublished = stats.Total - stats.Published

	const q = `SELECT category, COUNT(*) AS count FROM projects
		GROUP BY category ORDER BY count DESC, category`
	if err := s.db.SelectContext(ctx, &stats.ByCategory, q); err != nil {
		return nil, fmt.Errorf("count projects by category: %w", err)
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Skills
// ---------------------------------------------------------------------------

const skillColumns = `id, name, category, level, years_experience, description, icon, is_featured, sort_order, created_at, updated_at`

// SkillFilter narrows ListSkills.
type SkillFilter struct {
	FeaturedOnly bool
}

// ListSkills returns skills by display order, then name.
func (s *Store) ListSkills(ctx context.Context, f SkillFilter) ([]model.Skill, error) {
	q := "SELECT " + skillColumns + " FROM skills"
	var args []interface{}
	if f.FeaturedOnly {
		q += " WHERE is_featured = ?"
		args = append(args, true)
	}
	q += " ORDER BY sort_order, name"

	skills := []model.Skill{}
	if err := s.db.SelectContext(ctx, &skills, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// GetSkill returns a skill by ID.
func (s *Store) GetSkill(ctx context.Context, id string) (*model.Skill, error) {
	var sk model.Skill
	if err := s.getByID(ctx, &sk, "skills", skillColumns, id); err != nil {
		return nil, err
	}
	return &sk, nil
}

// CreateSkill inserts a skill.
func (s *Store) CreateSkill(ctx context.Context, sk *model.Skill) error {
	now := time.Now().UTC()
	sk.ID = newID()
	sk.CreatedAt = now
	sk.UpdatedAt = now

	const q = `INSERT INTO skills
		(id, name, category, level, years_experience, description, icon, is_featured, sort_order, created_at, updated_at)
		VALUES
		(:id, :name, :category, :level, :years_experience, :description, :icon, :is_featured, :sort_order, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, q, sk); err != nil {
		return fmt.Errorf("insert skill: %w", err)
	}
	return nil
}

// UpdateSkill applies a sparse update and returns the stored skill.
func (s *Store) UpdateSkill(ctx context.Context, id string, upd model.SkillUpdate) (*model.Skill, error) {
	var l setList
	if upd.Name != nil {
		l.add("name", *upd.Name)
	}
	if upd.Category != nil {
		l.add("category", *upd.Category)
	}
	if upd.Level != nil {
		l.add("level", *upd.Level)
	}
	if upd.YearsExperience != nil {
		l.add("years_experience", *upd.YearsExperience)
	}
	if upd.Description != nil {
		l.add("description", *upd.Description)
	}
	if upd.Icon != nil {
		l.add("icon", *upd.Icon)
	}
	if upd.IsFeatured != nil {
		l.add("is_featured", *upd.IsFeatured)
	}
	if upd.Order != nil {
		l.add("sort_order", *upd.Order)
	}
	if err := s.updateByID(ctx, "skills", id, l); err != nil {
		return nil, err
	}
	return s.GetSkill(ctx, id)
}

// DeleteSkill removes a skill.
func (s *Store) DeleteSkill(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "skills", id)
}

// ---------------------------------------------------------------------------
// Qualifications
// ---------------------------------------------------------------------------

const qualificationColumns = `id, title, issuer, issue_date, expiry_date, credential_id, credential_url,
	certificate_image, description, type, is_published, created_at, updated_at`

// ListQualifications returns qualifications, most recently issued first.
func (s *Store) ListQualifications(ctx context.Context, publishedOnly bool) ([]model.Qualification, error) {
	q := "SELECT " + qualificationColumns + " FROM qualifications"
	var args []interface{}
	if publishedOnly {
		q += " WHERE is_published = ?"
		args = append(args, true)
	}
	q += " ORDER BY issue_date DESC, title"

	quals := []model.Qualification{}
	if err := s.db.SelectContext(ctx, &quals, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list qualifications: %w", err)
	}
	return quals, nil
}

// GetQualification returns a qualification by ID.
func (s *Store) GetQualification(ctx context.Context, id string) (*model.Qualification, error) {
	var q model.Qualification
	if err := s.getByID(ctx, &q, "qualifications", qualificationColumns, id); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQualification inserts a qualification.
func (s *Store) CreateQualification(ctx context.Context, qual *model.Qualification) error {
	now := time.Now().UTC()
	qual.ID = newID()
	qual.CreatedAt = now
	qual.UpdatedAt = now

	const q = `INSERT INTO qualifications
		(id, title, issuer, issue_date, expiry_date, credential_id, credential_url, certificate_image,
		 description, type, is_published, created_at, updated_at)
		VALUES
		(:id, :title, :issuer, :issue_date, :expiry_date, :credential_id, :credential_url, :certificate_image,
		 :description, :type, :is_published, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, q, qual); err != nil {
		return fmt.Errorf("insert qualification: %w", err)
	}
	return nil
}

// UpdateQualification applies a sparse update and returns the stored
// qualification.
func (s *Store) UpdateQualification(ctx context.Context, id string, upd model.QualificationUpdate) (*model.Qualification, error) {
	var l setList
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"title", upd.Title},
		{"issuer", upd.Issuer},
		{"issue_date", upd.IssueDate},
		{"expiry_date", upd.ExpiryDate},
		{"credential_id", upd.CredentialID},
		{"credential_url", upd.CredentialURL},
		{"certificate_image", upd.CertificateImage},
		{"description", upd.Description},
		{"type", upd.Type},
	} {
		if f.v != nil {
			l.add(f.col, *f.v)
		}
	}
	if upd.IsPublished != nil {
		l.add("is_published", *upd.IsPublished)
	}
	if err := s.updateByID(ctx, "qualifications", id, l); err != nil {
		return nil, err
	}
	return s.GetQualification(ctx, id)
}

// DeleteQualification removes a qualification.
func (s *Store) DeleteQualification(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "qualifications", id)
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

const profileColumns = `id, name, bio, github_link, linkedin_link, twitter_link, resume_link, contact_email, updated_at`

// GetProfile returns the owner profile, or ErrNotFound before the first save.
func (s *Store) GetProfile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.GetContext(ctx, &p, "SELECT "+profileColumns+" FROM profiles WHERE singleton = 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// SaveProfile replaces every profile field, creating the row on first use.
func (s *Store) SaveProfile(ctx context.Context, p *model.Profile) error {
	p.UpdatedAt = time.Now().UTC()

	existing, err := s.GetProfile(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		p.ID = newID()
		const q = `INSERT INTO profiles
			(id, singleton, name, bio, github_link, linkedin_link, twitter_link, resume_link, contact_email, updated_at)
			VALUES
			(:id, 1, :name, :bio, :github_link, :linkedin_link, :twitter_link, :resume_link, :contact_email, :updated_at)`
		if _, err := s.db.NamedExecContext(ctx, q, p); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	case err != nil:
		return err
	}

	p.ID = existing.ID
	const q = `UPDATE profiles SET
		name = :name, bio = :bio, github_link = :github_link, linkedin_link = :linkedin_link,
		twitter_link = :twitter_link, resume_link = :resume_link, contact_email = :contact_email,
		updated_at = :updated_at
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, q, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
