// Package models defines the server-side domain types. Values hold the
// plaintext view; encrypted columns exist only inside the repositories.
package models

import "time"

// User is the aggregate root of a registration. SSN is plaintext here and
// encrypted at rest.
type User struct {
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	Name              string
	LastName          string
	SSN               string
	IsActive          bool
	IsStaff           bool
	IsSuperuser       bool
	IsTemporal        bool
	IsMilitar         bool
	EmailVerified     bool
	VerificationToken string

	FailedLoginAttempts int
	AccountLockedUntil  *time.Time
	LastLoginIP         string
	LastLogin           *time.Time

	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LockedAt reports whether the account is locked at the given moment.
func (u *User) LockedAt(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}

// CanLogin reports whether the account is allowed to authenticate at all.
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsDeleted
}
