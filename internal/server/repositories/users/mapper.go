package users

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

const userColumns = `id, email, username, password_hash, name, last_name, ssn_enc,
	is_active, is_staff, is_superuser, is_temporal, is_militar, email_verified, verification_token,
	failed_login_attempts, account_locked_until, last_login_ip, last_login,
	is_deleted, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// userRow mirrors the users table: encrypted columns hold ciphertext tokens.
type userRow struct {
	models.User
	ssnEnc      string
	lockedUntil sql.NullTime
	lastLogin   sql.NullTime
}

func encodeUser(c cryptox.FieldCipher, u *models.User) (*userRow, error) {
	ssn, err := c.Encrypt(u.SSN)
	if err != nil {
		return nil, fmt.Errorf("encrypt ssn: %w", err)
	}
	return &userRow{User: *u, ssnEnc: ssn}, nil
}

func decodeUser(c cryptox.FieldCipher, r *userRow) (*models.User, error) {
	ssn, err := c.Decrypt(r.ssnEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt ssn: %w", err)
	}
	u := r.User
	u.SSN = ssn
	u.AccountLockedUntil = nullTime(r.lockedUntil)
	u.LastLogin = nullTime(r.lastLogin)
	return &u, nil
}

func scanUser(s scanner) (*userRow, error) {
	r := &userRow{}
	err := s.Scan(
		&r.ID, &r.Email, &r.Username, &r.PasswordHash, &r.Name, &r.LastName, &r.ssnEnc,
		&r.IsActive, &r.IsStaff, &r.IsSuperuser, &r.IsTemporal, &r.IsMilitar, &r.EmailVerified, &r.VerificationToken,
		&r.FailedLoginAttempts, &r.lockedUntil, &r.LastLoginIP, &r.lastLogin,
		&r.IsDeleted, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
