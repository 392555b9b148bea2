package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type PostgresRepository struct {
	db     dbx.DBTX
	cipher cryptox.FieldCipher
}

func NewPostgresRepository(db dbx.DBTX, c cryptox.FieldCipher) *PostgresRepository {
	return &PostgresRepository{db: db, cipher: c}
}

// Create inserts the user and fills in the generated id and timestamps.
// Duplicate email or username yields ErrEmailTaken / ErrUsernameTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	row, err := encodeUser(r.cipher, user)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (email, username, password_hash, name, last_name, ssn_enc,
			is_active, is_staff, is_superuser, is_temporal, is_militar, verification_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		row.Email, row.Username, row.PasswordHash, row.Name, row.LastName, row.ssnEnc,
		row.IsActive, row.IsStaff, row.IsSuperuser, row.IsTemporal, row.IsMilitar, row.VerificationToken,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if name, ok := dbx.UniqueViolation(err); ok {
			switch name {
			case "users_email_key":
				return nil, ErrEmailTaken
			case "users_username_key":
				return nil, ErrUsernameTaken
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByEmail returns a live (not soft-deleted) user.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_deleted = FALSE`
	return r.getOne(ctx, query, email)
}

// GetByID returns a live (not soft-deleted) user.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_deleted = FALSE`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	row, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decodeUser(r.cipher, row)
}

func (r *PostgresRepository) RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	query :=
		`UPDATE users SET
			failed_login_attempts = CASE WHEN failed_login_attempts + 1 >= $2 THEN 0 ELSE failed_login_attempts + 1 END,
			account_locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE account_locked_until END,
			updated_at = now()
		 WHERE id = $1
		 RETURNING failed_login_attempts, account_locked_until`

	var attempts int
	var locked sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, id, threshold, lockUntil).Scan(&attempts, &locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, common.ErrorNotFound
		}
		return 0, nil, fmt.Errorf("db error: %w", err)
	}
	return attempts, nullTime(locked), nil
}

func (r *PostgresRepository) RecordSuccessfulLogin(ctx context.Context, id, ip string, at time.Time) error {
	query :=
		`UPDATE users SET
			failed_login_attempts = 0,
			account_locked_until = NULL,
			last_login_ip = $2,
			last_login = $3,
			updated_at = now()
		 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, ip, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SoftDelete deactivates the user. Rows are never removed.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET is_deleted = TRUE, is_active = FALSE, updated_at = now()
		 WHERE id = $1 AND is_deleted = FALSE`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
