package service

import (
	"context"
	"errors"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/model"
)

// SetupService creates the one and only admin account.
type SetupService struct {
	store  AdminStore
	hasher PasswordHasher
}

func NewSetupService(store AdminStore, hasher PasswordHasher) *SetupService {
	return &SetupService{store: store, hasher: hasher}
}

// IsComplete reports whether the admin account already exists.
func (s *SetupService) IsComplete(ctx context.Context) (bool, error) {
	return s.store.HasAnyAdmin(ctx)
}

// CreateInitialAdmin creates the admin account. Once an admin exists every
// call fails with ErrAdminExists, whatever credentials it carries.
func (s *SetupService) CreateInitialAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	exists, err := s.store.HasAnyAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	if username == "" || password == "" {
		return nil, invalid("username", "Username and password are required")
	}
	if err := checkNewPassword("password", password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		// Lost a race with a concurrent setup.
		if errors.Is(err, config.ErrDuplicate) {
			return nil, ErrAdminExists
		}
		return nil, err
	}
	return admin, nil
}
