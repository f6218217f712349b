package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
)

// SessionTTL is the lifetime of a session. It bounds both the token's exp
// claim and the session cookie's Max-Age.
const SessionTTL = 7 * 24 * time.Hour

const tokenIssuer = "folio"

// AdminStore is the subset of the store the auth services need.
type AdminStore interface {
	HasAnyAdmin(ctx context.Context) (bool, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	GetAdmin(ctx context.Context) (*model.Admin, error)
	SetAdminResetOTP(ctx context.Context, id, otp string, expires time.Time, email string) error
	CompletePasswordReset(ctx context.Context, id, otp, passwordHash string) error
}

// Principal is the admin identity carried by a session token.
type Principal struct {
	AdminID  string
	Username string
}

// Summary returns the client-facing view of the principal.
func (p *Principal) Summary() model.AdminSummary {
	return model.AdminSummary{ID: p.AdminID, Username: p.Username}
}

// Option configures the services in this package.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests that need to move time forward.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AuthService verifies admin credentials and issues and verifies session
// tokens (HS256 JWTs).
type AuthService struct {
	store     AdminStore
	hasher    PasswordHasher
	jwtSecret []byte
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store AdminStore, hasher PasswordHasher, jwtSecret string, opts ...Option) *AuthService {
	o := buildOptions(opts)
	return &AuthService{
		store:     store,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		now:       o.now,
	}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	Admin model.AdminSummary
}

// Login checks username and password and issues a session token. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, invalid("username", "Username and password are required")
	}

	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			s.hasher.Verify(password, s.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	p := Principal{AdminID: admin.ID, Username: admin.Username}
	token, err := s.IssueToken(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Admin: p.Summary()}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("folio-login-timing-placeholder")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// IssueToken creates a signed session token for p that expires after
// SessionTTL.
func (s *AuthService) IssueToken(p Principal) (string, error) {
	now := s.now()
	claims := jwtClaims{
		AdminID:  p.AdminID,
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry of a session token. Every
// failure is reported as ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenStr string) (*Principal, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AdminID == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{AdminID: claims.AdminID, Username: claims.Username}, nil
}

type jwtClaims struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
