package config

import "fmt"

// migrations returns the schema statements for the store's dialect. Column
// types that differ between backends are substituted from the dialect; every
// statement is safe to re-run.
func (s *Store) migrations() []string {
	ts, boolean := s.dialect.timestamp, s.dialect.boolean
	return []string{
		// The singleton column is always 1; its UNIQUE constraint is what keeps
		// a second admin out even when two setup requests race.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS admins (
			id VARCHAR(36) PRIMARY KEY,
			singleton INTEGER NOT NULL UNIQUE,
			username VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			email VARCHAR(320),
			reset_otp VARCHAR(16),
			reset_otp_expires %[1]s NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			description TEXT NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			tech_stack TEXT NOT NULL,
			category VARCHAR(36) NOT NULL,
			live_demo_link TEXT NOT NULL,
			github_link TEXT NOT NULL,
			images TEXT NOT NULL,
			is_published %[2]s NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts, boolean),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS skills (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(32) NOT NULL,
			level VARCHAR(32) NOT NULL,
			years_experience DOUBLE PRECISION NULL,
			description TEXT NULL,
			icon TEXT NULL,
			is_featured %[2]s NOT NULL,
			sort_order INTEGER NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts, boolean),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS qualifications (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			issuer VARCHAR(255) NOT NULL,
			issue_date VARCHAR(10) NOT NULL,
			expiry_date VARCHAR(10) NULL,
			credential_id VARCHAR(255) NULL,
			credential_url TEXT NULL,
			certificate_image TEXT NULL,
			description TEXT NULL,
			type VARCHAR(32) NOT NULL,
			is_published %[2]s NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts, boolean),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS profiles (
			id VARCHAR(36) PRIMARY KEY,
			singleton INTEGER NOT NULL UNIQUE,
			name VARCHAR(255) NULL,
			bio TEXT NULL,
			github_link TEXT NULL,
			linkedin_link TEXT NULL,
			twitter_link TEXT NULL,
			resume_link TEXT NULL,
			contact_email VARCHAR(320) NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),
	}
}

func (s *Store) migrate() error {
	for _, m := range s.migrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
