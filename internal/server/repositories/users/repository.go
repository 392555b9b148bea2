// Package users persists User aggregate roots. The SSN column is encrypted
// by the repository mappers; callers only see plaintext.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already registered")
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// RecordFailedLogin bumps the failure counter. When it reaches threshold
	// the account is locked until lockUntil and the counter starts over.
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (attempts int, lockedUntil *time.Time, err error)
	RecordSuccessfulLogin(ctx context.Context, id, ip string, at time.Time) error
	SoftDelete(ctx context.Context, id string) error
}
