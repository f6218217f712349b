package model

import "time"

// Admin is the single administrative account that curates the portfolio.
// Exactly one row may exist; the store enforces this with a unique sentinel
// column. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID              string     `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	PasswordHash    string     `json:"-" db:"password_hash"` // bcrypt hash, never expose
	Email           *string    `json:"email,omitempty" db:"email"`
	ResetOTP        *string    `json:"-" db:"reset_otp"`
	ResetOTPExpires *time.Time `json:"-" db:"reset_otp_expires"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPendingReset reports whether a reset code and its expiry are both set.
func (a *Admin) HasPendingReset() bool {
	return a.ResetOTP != nil && a.ResetOTPExpires != nil
}

// AdminSummary is the public identity of the admin returned by login and /me.
type AdminSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
