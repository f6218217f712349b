package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/folioapp/folio/internal/config"
)

// ResetCodeTTL is how long an issued reset code stays redeemable.
const ResetCodeTTL = 10 * time.Minute

// CodeSender delivers a reset code out of band.
type CodeSender interface {
	SendResetCode(ctx context.Context, to, code string) error
}

// ResetService implements the emailed one-time-code password reset. Codes
// are only ever sent to a single configured address.
type ResetService struct {
	store       AdminStore
	hasher      PasswordHasher
	sender      CodeSender
	targetEmail string
	now         func() time.Time
}

func NewResetService(store AdminStore, hasher PasswordHasher, sender CodeSender, targetEmail string, opts ...Option) *ResetService {
	o := buildOptions(opts)
	return &ResetService{
		store:       store,
		hasher:      hasher,
		sender:      sender,
		targetEmail: targetEmail,
		now:         o.now,
	}
}

// RequestReset issues a new code and mails it when email is the configured
// target address. Any other address is accepted silently so callers cannot
// tell whether it is registered.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return invalid("email", "Email is required")
	}
	if email != s.targetEmail {
		return nil
	}

	admin, err := s.store.GetAdmin(ctx)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	expires := s.now().Add(ResetCodeTTL)
	if err := s.store.SetAdminResetOTP(ctx, admin.ID, code, expires, s.targetEmail); err != nil {
		return err
	}

	if err := s.sender.SendResetCode(ctx, s.targetEmail, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

// ResetPassword redeems a code and replaces the admin password. A failed
// attempt leaves the pending code in place; a successful one consumes it.
func (s *ResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return invalid("email", "Email, code, and new password are required")
	}
	if email != s.targetEmail {
		return ErrInvalidCodeOrEmail
	}
	if err := checkNewPassword("newPassword", newPassword); err != nil {
		return err
	}

	admin, err := s.store.GetAdmin(ctx)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}

	if !admin.HasPendingReset() {
		return ErrNoActiveReset
	}
	if s.now().After(*admin.ResetOTPExpires) {
		return ErrInvalidOrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(*admin.ResetOTP)) != 1 {
		return ErrInvalidOrExpiredCode
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// The update only applies while the stored code is still the one we
	// checked, so a code cannot be redeemed twice.
	if err := s.store.CompletePasswordReset(ctx, admin.ID, code, hash); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}
	return nil
}

var otpRange = big.NewInt(900000)

// generateOTP returns a uniformly random six-digit code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
