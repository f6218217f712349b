package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/folioapp/folio/internal/model"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// dialect captures the handful of DDL differences between backends.
type dialect struct {
	name      string
	timestamp string
	boolean   string
}

var dialects = map[string]dialect{
	DriverSQLite:   {name: DriverSQLite, timestamp: "DATETIME", boolean: "INTEGER"},
	DriverPostgres: {name: DriverPostgres, timestamp: "TIMESTAMPTZ", boolean: "BOOLEAN"},
	DriverMySQL:    {name: DriverMySQL, timestamp: "DATETIME(6)", boolean: "BOOLEAN"},
}

// Store persists the admin account and all portfolio content. It is backed by
// an embedded SQLite file by default, or by Postgres or MySQL when configured.
type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// NewStore creates a SQLite-backed store under dataDir. Pass empty string for
// an in-memory database.
func NewStore(dataDir string) (*Store, error) {
	return Open(DriverSQLite, "", dataDir)
}

// Open creates a store for the given driver. For sqlite the database lives in
// dataDir (in memory when empty) and dsn is ignored; postgres and mysql
// require a dsn.
func Open(driver, dsn, dataDir string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q (want sqlite, postgres or mysql)", driver)
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dataDir)
	case DriverPostgres:
		db, err = openPostgres(dsn)
	case DriverMySQL:
		db, err = openMySQL(dsn)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

func openSQLite(dataDir string) (*sqlx.DB, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "folio.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres store requires a dsn")
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres store: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("mysql store requires a dsn")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	// Timestamps must scan into time.Time, and an UPDATE that matches a row
	// must report it as affected even when no value changed.
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC

	db, err := sqlx.Connect("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("connect mysql store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the name of the backend in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ---------------------------------------------------------------------------
// Admin account
// ---------------------------------------------------------------------------

const adminColumns = `id, username, password_hash, email, reset_otp, reset_otp_expires, created_at, updated_at`

// HasAnyAdmin reports whether the admin account has been created. This is
// used by the setup gate for first-run detection.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// CreateAdmin inserts the admin account. The ID, CreatedAt, and UpdatedAt
// fields are populated before the insert. ErrDuplicate is returned when an
// admin already exists.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.ID = newID()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins
		(id, singleton, username, password_hash, email, reset_otp, reset_otp_expires, created_at, updated_at)
		VALUES
		(:id, 1, :username, :password_hash, :email, :reset_otp, :reset_otp_expires, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns the admin with the given username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT " + adminColumns + " FROM admins WHERE username = ?")
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// GetAdmin returns the sole admin account.
func (s *Store) GetAdmin(ctx context.Context) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.GetContext(ctx, &admin, "SELECT "+adminColumns+" FROM admins WHERE singleton = 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// SetAdminResetOTP records a pending password reset, overwriting any earlier
// one, and stores the address the code was sent to.
func (s *Store) SetAdminResetOTP(ctx context.Context, id, otp string, expires time.Time, email string) error {
	q := s.db.Rebind(`UPDATE admins
		SET reset_otp = ?, reset_otp_expires = ?, email = ?, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, q, otp, expires.UTC(), email, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set admin reset otp: %w", err)
	}
	return checkAffected(result, "set admin reset otp")
}

// CompletePasswordReset replaces the password hash and clears the pending
// reset, but only while the stored code still equals otp. ErrNotFound means
// the code was already consumed or replaced.
func (s *Store) CompletePasswordReset(ctx context.Context, id, otp, passwordHash string) error {
	q := s.db.Rebind(`UPDATE admins
		SET password_hash = ?, reset_otp = NULL, reset_otp_expires = NULL, updated_at = ?
		WHERE id = ? AND reset_otp = ?`)
	result, err := s.db.ExecContext(ctx, q, passwordHash, time.Now().UTC(), id, otp)
	if err != nil {
		return fmt.Errorf("complete password reset: %w", err)
	}
	return checkAffected(result, "complete password reset")
}

func checkAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
